package postgres

import (
	"context"
	"fmt"
	"strings"

	"github.com/lodestar-ml/lodestar-go/internal/domain"
	"github.com/lodestar-ml/lodestar-go/internal/repo"
)

const collectionColumns = "collection_id, project_id, run_id, step_name, direction, payload, metadata, created_at, created_by, integrity_sha256"

type CollectionStore struct {
	db DB
}

func NewCollectionStore(db DB) *CollectionStore {
	if db == nil {
		return nil
	}
	return &CollectionStore{db: db}
}

func (s *CollectionStore) CreateCollection(ctx context.Context, record domain.CollectionRecord) error {
	if s == nil || s.db == nil {
		return fmt.Errorf("collection store not initialized")
	}
	if err := record.Validate(); err != nil {
		return err
	}
	if err := requireIntegrity(record.IntegritySHA256); err != nil {
		return err
	}
	metadataJSON, err := encodeMetadata(record.Metadata)
	if err != nil {
		return fmt.Errorf("encode metadata: %w", err)
	}
	_, err = s.db.ExecContext(
		ctx,
		`INSERT INTO artifact_collections (
			collection_id,
			project_id,
			run_id,
			step_name,
			direction,
			payload,
			metadata,
			created_at,
			created_by,
			integrity_sha256
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)`,
		strings.TrimSpace(record.ID),
		strings.TrimSpace(record.ProjectID),
		strings.TrimSpace(record.RunID),
		strings.TrimSpace(record.StepName),
		record.Direction,
		record.Payload,
		metadataJSON,
		normalizeTime(record.CreatedAt),
		strings.TrimSpace(record.CreatedBy),
		strings.TrimSpace(record.IntegritySHA256),
	)
	if err != nil {
		return fmt.Errorf("insert collection: %w", err)
	}
	return nil
}

func (s *CollectionStore) GetCollection(ctx context.Context, projectID, id string) (domain.CollectionRecord, error) {
	if s == nil || s.db == nil {
		return domain.CollectionRecord{}, fmt.Errorf("collection store not initialized")
	}
	projectID = strings.TrimSpace(projectID)
	if projectID == "" {
		return domain.CollectionRecord{}, fmt.Errorf("project id is required")
	}
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.CollectionRecord{}, fmt.Errorf("collection id is required")
	}
	row := s.db.QueryRowContext(
		ctx,
		`SELECT `+collectionColumns+`
		 FROM artifact_collections
		 WHERE project_id = $1 AND collection_id = $2`,
		projectID,
		id,
	)
	record, err := scanCollection(row)
	if err != nil {
		return domain.CollectionRecord{}, handleNotFound(err)
	}
	return record, nil
}

func (s *CollectionStore) ListCollections(ctx context.Context, filter repo.CollectionFilter) ([]domain.CollectionRecord, error) {
	if s == nil || s.db == nil {
		return nil, fmt.Errorf("collection store not initialized")
	}
	query, args, err := buildCollectionListQuery(filter)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	defer rows.Close()

	records := make([]domain.CollectionRecord, 0)
	for rows.Next() {
		record, err := scanCollection(rows)
		if err != nil {
			return nil, fmt.Errorf("scan collection: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}
	return records, nil
}

func buildCollectionListQuery(filter repo.CollectionFilter) (string, []any, error) {
	if strings.TrimSpace(filter.ProjectID) == "" {
		return "", nil, fmt.Errorf("project id is required")
	}

	clauses := make([]string, 0, 4)
	args := make([]any, 0, 5)

	args = append(args, strings.TrimSpace(filter.ProjectID))
	clauses = append(clauses, fmt.Sprintf("project_id = $%d", len(args)))

	if strings.TrimSpace(filter.RunID) != "" {
		args = append(args, strings.TrimSpace(filter.RunID))
		clauses = append(clauses, fmt.Sprintf("run_id = $%d", len(args)))
	}
	if strings.TrimSpace(filter.StepName) != "" {
		args = append(args, strings.TrimSpace(filter.StepName))
		clauses = append(clauses, fmt.Sprintf("step_name = $%d", len(args)))
	}
	if strings.TrimSpace(filter.Direction) != "" {
		args = append(args, strings.TrimSpace(filter.Direction))
		clauses = append(clauses, fmt.Sprintf("direction = $%d", len(args)))
	}

	query := `SELECT ` + collectionColumns + ` FROM artifact_collections WHERE ` +
		strings.Join(clauses, " AND ") + " ORDER BY created_at DESC"
	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	return query, args, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCollection(row rowScanner) (domain.CollectionRecord, error) {
	var record domain.CollectionRecord
	var metadataJSON []byte
	var payload []byte
	if err := row.Scan(
		&record.ID,
		&record.ProjectID,
		&record.RunID,
		&record.StepName,
		&record.Direction,
		&payload,
		&metadataJSON,
		&record.CreatedAt,
		&record.CreatedBy,
		&record.IntegritySHA256,
	); err != nil {
		return domain.CollectionRecord{}, err
	}
	record.Payload = payload
	meta, err := decodeMetadata(metadataJSON)
	if err != nil {
		return domain.CollectionRecord{}, fmt.Errorf("decode metadata: %w", err)
	}
	record.Metadata = meta
	return record, nil
}
