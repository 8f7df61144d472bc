package repo

import (
	"context"
	"errors"

	"github.com/lodestar-ml/lodestar-go/internal/domain"
)

var ErrNotFound = errors.New("not found")

type CollectionFilter struct {
	ProjectID string
	RunID     string
	StepName  string
	Direction string
	Limit     int
}

// CollectionRepository persists serialized artifact collections. Records
// are immutable once written.
type CollectionRepository interface {
	CreateCollection(ctx context.Context, record domain.CollectionRecord) error
	GetCollection(ctx context.Context, projectID, id string) (domain.CollectionRecord, error)
	ListCollections(ctx context.Context, filter CollectionFilter) ([]domain.CollectionRecord, error)
}
