package domain

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// Collection directions. A record either captures what a step consumed or
// what it produced.
const (
	DirectionInput  = "input"
	DirectionOutput = "output"
)

// CollectionRecord is the persisted envelope for a serialized artifact set:
// the channel→artifacts payload a pipeline step consumed or produced,
// pinned to the run and step that owns it.
type CollectionRecord struct {
	ID              string
	ProjectID       string
	RunID           string
	StepName        string
	Direction       string
	Payload         []byte
	Metadata        Metadata
	CreatedAt       time.Time
	CreatedBy       string
	IntegritySHA256 string
}

func (r CollectionRecord) Validate() error {
	if strings.TrimSpace(r.ID) == "" {
		return errors.New("collection id is required")
	}
	if strings.TrimSpace(r.ProjectID) == "" {
		return errors.New("project id is required")
	}
	if strings.TrimSpace(r.RunID) == "" {
		return errors.New("run id is required")
	}
	if strings.TrimSpace(r.StepName) == "" {
		return errors.New("step name is required")
	}
	if r.Direction != DirectionInput && r.Direction != DirectionOutput {
		return fmt.Errorf("direction must be %q or %q (got %q)", DirectionInput, DirectionOutput, r.Direction)
	}
	if len(r.Payload) == 0 {
		return errors.New("payload is required")
	}
	return nil
}
