package lineage

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
)

// Predicates recorded between a run step and an artifact.
const (
	PredicateProduced = "produced"
	PredicateConsumed = "consumed"
)

// Event is one append-only lineage fact: a run step produced or consumed
// an artifact on a named channel.
type Event struct {
	OccurredAt   time.Time
	Actor        string
	RequestID    string
	ProjectID    string
	RunID        string
	StepName     string
	Predicate    string
	Channel      string
	ArtifactType string
	ArtifactURI  string
	Metadata     any
}

type QueryRower interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func (e Event) Validate() error {
	if e.OccurredAt.IsZero() {
		return errors.New("OccurredAt is required")
	}
	if strings.TrimSpace(e.Actor) == "" {
		return errors.New("Actor is required")
	}
	if strings.TrimSpace(e.ProjectID) == "" {
		return errors.New("ProjectID is required")
	}
	if strings.TrimSpace(e.RunID) == "" {
		return errors.New("RunID is required")
	}
	if strings.TrimSpace(e.StepName) == "" {
		return errors.New("StepName is required")
	}
	if e.Predicate != PredicateProduced && e.Predicate != PredicateConsumed {
		return fmt.Errorf("Predicate must be %q or %q", PredicateProduced, PredicateConsumed)
	}
	if strings.TrimSpace(e.Channel) == "" {
		return errors.New("Channel is required")
	}
	if strings.TrimSpace(e.ArtifactType) == "" {
		return errors.New("ArtifactType is required")
	}
	return nil
}

func Insert(ctx context.Context, q QueryRower, event Event) (int64, error) {
	if q == nil {
		return 0, errors.New("queryer is required")
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	if err := event.Validate(); err != nil {
		return 0, err
	}

	metadata := event.Metadata
	if metadata == nil {
		metadata = map[string]any{}
	}
	metadataJSON, err := json.Marshal(metadata)
	if err != nil {
		return 0, fmt.Errorf("marshal metadata: %w", err)
	}

	integrity, err := ComputeIntegritySHA256(event, metadataJSON)
	if err != nil {
		return 0, err
	}

	var requestID sql.NullString
	if strings.TrimSpace(event.RequestID) != "" {
		requestID = sql.NullString{String: strings.TrimSpace(event.RequestID), Valid: true}
	}

	var id int64
	err = q.QueryRowContext(
		ctx,
		`INSERT INTO artifact_lineage_events (
			occurred_at,
			actor,
			request_id,
			project_id,
			run_id,
			step_name,
			predicate,
			channel,
			artifact_type,
			artifact_uri,
			metadata,
			integrity_sha256
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
		RETURNING event_id`,
		event.OccurredAt.UTC(),
		strings.TrimSpace(event.Actor),
		requestID,
		strings.TrimSpace(event.ProjectID),
		strings.TrimSpace(event.RunID),
		strings.TrimSpace(event.StepName),
		event.Predicate,
		strings.TrimSpace(event.Channel),
		strings.TrimSpace(event.ArtifactType),
		strings.TrimSpace(event.ArtifactURI),
		metadataJSON,
		integrity,
	).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert lineage event: %w", err)
	}
	return id, nil
}

func ComputeIntegritySHA256(event Event, metadataJSON []byte) (string, error) {
	type integrityInput struct {
		OccurredAt   time.Time       `json:"occurred_at"`
		Actor        string          `json:"actor"`
		RequestID    string          `json:"request_id,omitempty"`
		ProjectID    string          `json:"project_id"`
		RunID        string          `json:"run_id"`
		StepName     string          `json:"step_name"`
		Predicate    string          `json:"predicate"`
		Channel      string          `json:"channel"`
		ArtifactType string          `json:"artifact_type"`
		ArtifactURI  string          `json:"artifact_uri"`
		Metadata     json.RawMessage `json:"metadata"`
	}

	in := integrityInput{
		OccurredAt:   event.OccurredAt.UTC(),
		Actor:        strings.TrimSpace(event.Actor),
		RequestID:    strings.TrimSpace(event.RequestID),
		ProjectID:    strings.TrimSpace(event.ProjectID),
		RunID:        strings.TrimSpace(event.RunID),
		StepName:     strings.TrimSpace(event.StepName),
		Predicate:    event.Predicate,
		Channel:      strings.TrimSpace(event.Channel),
		ArtifactType: strings.TrimSpace(event.ArtifactType),
		ArtifactURI:  strings.TrimSpace(event.ArtifactURI),
		Metadata:     metadataJSON,
	}

	blob, err := json.Marshal(in)
	if err != nil {
		return "", fmt.Errorf("marshal integrity: %w", err)
	}
	sum := sha256.Sum256(blob)
	return hex.EncodeToString(sum[:]), nil
}
