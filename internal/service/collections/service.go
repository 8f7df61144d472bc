package collections

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lodestar-ml/lodestar-go/internal/artifactset"
	"github.com/lodestar-ml/lodestar-go/internal/domain"
	"github.com/lodestar-ml/lodestar-go/internal/platform/lineage"
	"github.com/lodestar-ml/lodestar-go/internal/repo"
	"github.com/lodestar-ml/lodestar-go/internal/storage/objectstore"
)

// ErrChannelNotFound reports a channel name absent from a stored collection.
var ErrChannelNotFound = errors.New("channel not found in collection")

const (
	defaultPresignTTL = 10 * time.Minute
	decodeCacheSize   = 1024
)

// LineageAppender records one produced/consumed fact per artifact when a
// collection is written.
type LineageAppender interface {
	Append(ctx context.Context, event lineage.Event) (int64, error)
}

type dbLineageAppender struct {
	q lineage.QueryRower
}

// NewDBLineageAppender wires the append-only lineage table behind the
// LineageAppender interface.
func NewDBLineageAppender(q lineage.QueryRower) LineageAppender {
	return &dbLineageAppender{q: q}
}

func (a *dbLineageAppender) Append(ctx context.Context, event lineage.Event) (int64, error) {
	return lineage.Insert(ctx, a.q, event)
}

type Config struct {
	Repo       repo.CollectionRepository
	Store      objectstore.Store
	Bucket     string
	PresignTTL time.Duration
	Lineage    LineageAppender
}

// Service owns the lifecycle of artifact collections: recording a step's
// channel→artifacts mapping, resolving single artifacts out of it, and
// minting download URLs for split directories.
type Service struct {
	repo       repo.CollectionRepository
	store      objectstore.Store
	bucket     string
	presignTTL time.Duration
	lineage    LineageAppender
	cache      *lru.Cache[string, domain.ArtifactSet]
	now        func() time.Time
}

func New(cfg Config) (*Service, error) {
	if cfg.Repo == nil {
		return nil, errors.New("collection repository is required")
	}
	ttl := cfg.PresignTTL
	if ttl <= 0 {
		ttl = defaultPresignTTL
	}
	cache, err := lru.New[string, domain.ArtifactSet](decodeCacheSize)
	if err != nil {
		return nil, fmt.Errorf("init decode cache: %w", err)
	}
	return &Service{
		repo:       cfg.Repo,
		store:      cfg.Store,
		bucket:     strings.TrimSpace(cfg.Bucket),
		presignTTL: ttl,
		lineage:    cfg.Lineage,
		cache:      cache,
		now:        func() time.Time { return time.Now().UTC() },
	}, nil
}

// RecordRequest is a step's input or output artifact set, pinned to the
// run and step that owns it.
type RecordRequest struct {
	ProjectID string
	RunID     string
	StepName  string
	Direction string
	Set       domain.ArtifactSet
	Metadata  domain.Metadata
	Actor     string
	RequestID string
}

// Record serializes the artifact set, persists it as an immutable
// collection record, and appends one lineage event per artifact.
func (s *Service) Record(ctx context.Context, req RecordRequest) (domain.CollectionRecord, error) {
	if len(req.Set) == 0 {
		return domain.CollectionRecord{}, errors.New("artifact set is required")
	}
	payload, err := artifactset.Marshal(req.Set)
	if err != nil {
		return domain.CollectionRecord{}, fmt.Errorf("encode artifact set: %w", err)
	}

	record := domain.CollectionRecord{
		ID:              uuid.NewString(),
		ProjectID:       strings.TrimSpace(req.ProjectID),
		RunID:           strings.TrimSpace(req.RunID),
		StepName:        strings.TrimSpace(req.StepName),
		Direction:       req.Direction,
		Payload:         payload,
		Metadata:        req.Metadata,
		CreatedAt:       s.now(),
		CreatedBy:       strings.TrimSpace(req.Actor),
		IntegritySHA256: payloadIntegritySHA256(payload),
	}
	if err := record.Validate(); err != nil {
		return domain.CollectionRecord{}, err
	}
	if err := s.repo.CreateCollection(ctx, record); err != nil {
		return domain.CollectionRecord{}, err
	}

	// Lineage must land before the set is published to the cache; a failed
	// append surfaces as an error and the cache must not serve the record
	// as if its lineage facts existed.
	if err := s.appendLineage(ctx, record, req); err != nil {
		return domain.CollectionRecord{}, err
	}

	s.cache.Add(record.ID, req.Set.Clone())
	return record, nil
}

func (s *Service) appendLineage(ctx context.Context, record domain.CollectionRecord, req RecordRequest) error {
	if s.lineage == nil {
		return nil
	}
	predicate := lineage.PredicateConsumed
	if record.Direction == domain.DirectionOutput {
		predicate = lineage.PredicateProduced
	}
	for channel, artifacts := range req.Set {
		for _, artifact := range artifacts {
			_, err := s.lineage.Append(ctx, lineage.Event{
				OccurredAt:   record.CreatedAt,
				Actor:        record.CreatedBy,
				RequestID:    strings.TrimSpace(req.RequestID),
				ProjectID:    record.ProjectID,
				RunID:        record.RunID,
				StepName:     record.StepName,
				Predicate:    predicate,
				Channel:      channel,
				ArtifactType: artifact.Type,
				ArtifactURI:  artifact.URI,
				Metadata:     map[string]any{"collection_id": record.ID},
			})
			if err != nil {
				return fmt.Errorf("append lineage for channel %q: %w", channel, err)
			}
		}
	}
	return nil
}

// Get returns a stored collection record together with its decoded
// artifact set. Records are immutable, so decoded sets are cached by id.
func (s *Service) Get(ctx context.Context, projectID, id string) (domain.CollectionRecord, domain.ArtifactSet, error) {
	record, err := s.repo.GetCollection(ctx, projectID, id)
	if err != nil {
		return domain.CollectionRecord{}, nil, err
	}
	set, err := s.decodeSet(record)
	if err != nil {
		return domain.CollectionRecord{}, nil, err
	}
	return record, set, nil
}

func (s *Service) List(ctx context.Context, filter repo.CollectionFilter) ([]domain.CollectionRecord, error) {
	return s.repo.ListCollections(ctx, filter)
}

func (s *Service) decodeSet(record domain.CollectionRecord) (domain.ArtifactSet, error) {
	if set, ok := s.cache.Get(record.ID); ok {
		return set.Clone(), nil
	}
	if got := payloadIntegritySHA256(record.Payload); got != record.IntegritySHA256 {
		return nil, fmt.Errorf("collection %s payload integrity mismatch", record.ID)
	}
	set, err := artifactset.Unmarshal(record.Payload)
	if err != nil {
		return nil, fmt.Errorf("decode collection %s: %w", record.ID, err)
	}
	s.cache.Add(record.ID, set.Clone())
	return set, nil
}

func (s *Service) channelArtifacts(ctx context.Context, projectID, id, channel string) ([]domain.Artifact, error) {
	_, set, err := s.Get(ctx, projectID, id)
	if err != nil {
		return nil, err
	}
	artifacts, ok := set[channel]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrChannelNotFound, channel)
	}
	return artifacts, nil
}

// SingleArtifact resolves the sole artifact on a channel expected to
// carry exactly one.
func (s *Service) SingleArtifact(ctx context.Context, projectID, id, channel string) (domain.Artifact, error) {
	artifacts, err := s.channelArtifacts(ctx, projectID, id, channel)
	if err != nil {
		return domain.Artifact{}, err
	}
	return artifactset.Single(artifacts)
}

// SingleURI resolves the URI of the sole artifact on a channel.
func (s *Service) SingleURI(ctx context.Context, projectID, id, channel string) (string, error) {
	artifacts, err := s.channelArtifacts(ctx, projectID, id, channel)
	if err != nil {
		return "", err
	}
	return artifactset.SingleURI(artifacts)
}

// SplitDownload resolves the split directory URI on a channel and mints a
// presigned GET URL for it. Only s3:// artifact URIs are downloadable;
// URIs without a scheme are treated as keys in the configured bucket.
func (s *Service) SplitDownload(ctx context.Context, projectID, id, channel, split string) (string, error) {
	if s.store == nil {
		return "", errors.New("object store not configured")
	}
	artifacts, err := s.channelArtifacts(ctx, projectID, id, channel)
	if err != nil {
		return "", err
	}
	uri, err := artifactset.SplitURI(artifacts, split)
	if err != nil {
		return "", err
	}
	bucket, key, err := s.resolveObject(uri)
	if err != nil {
		return "", err
	}
	return s.store.PresignGet(ctx, bucket, key, s.presignTTL)
}

// PresignUpload mints a presigned PUT URL for an artifact object in the
// managed bucket, returning the canonical s3:// URI a step should record
// for it alongside the upload URL.
func (s *Service) PresignUpload(ctx context.Context, key string) (uri, uploadURL string, err error) {
	if s.store == nil {
		return "", "", errors.New("object store not configured")
	}
	if s.bucket == "" {
		return "", "", errors.New("no upload bucket configured")
	}
	key = strings.Trim(strings.TrimSpace(key), "/")
	if key == "" {
		return "", "", errors.New("object key is required")
	}
	for _, segment := range strings.Split(key, "/") {
		if segment == "" || segment == "." || segment == ".." {
			return "", "", fmt.Errorf("object key %q contains an invalid path segment", key)
		}
	}
	uploadURL, err = s.store.PresignPut(ctx, s.bucket, key, s.presignTTL)
	if err != nil {
		return "", "", err
	}
	return "s3://" + s.bucket + "/" + key, uploadURL, nil
}

func (s *Service) resolveObject(uri string) (bucket, key string, err error) {
	if rest, ok := strings.CutPrefix(uri, "s3://"); ok {
		bucket, key, ok = strings.Cut(rest, "/")
		if !ok || bucket == "" || key == "" {
			return "", "", fmt.Errorf("artifact uri %q lacks a bucket/key pair", uri)
		}
		return bucket, key, nil
	}
	if strings.Contains(uri, "://") {
		return "", "", fmt.Errorf("artifact uri %q uses an unsupported scheme", uri)
	}
	if s.bucket == "" {
		return "", "", fmt.Errorf("artifact uri %q is relative and no default bucket is configured", uri)
	}
	return s.bucket, strings.TrimLeft(uri, "/"), nil
}
