package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/lodestar-ml/lodestar-go/internal/artifactset"
	"github.com/lodestar-ml/lodestar-go/internal/channelspec"
	"github.com/lodestar-ml/lodestar-go/internal/domain"
	"github.com/lodestar-ml/lodestar-go/internal/platform/auth"
	"github.com/lodestar-ml/lodestar-go/internal/repo"
	collectionsvc "github.com/lodestar-ml/lodestar-go/internal/service/collections"
)

type artifactRegistryAPI struct {
	logger  *slog.Logger
	service *collectionsvc.Service
}

func newArtifactRegistryAPI(logger *slog.Logger, service *collectionsvc.Service) *artifactRegistryAPI {
	return &artifactRegistryAPI{logger: logger, service: service}
}

func (api *artifactRegistryAPI) register(mux *http.ServeMux) {
	mux.HandleFunc("POST /collections", api.handleRecordCollection)
	mux.HandleFunc("GET /collections", api.handleListCollections)
	mux.HandleFunc("GET /collections/{collection_id}", api.handleGetCollection)

	mux.HandleFunc("GET /collections/{collection_id}/channels/{channel}/single", api.handleSingleArtifact)
	mux.HandleFunc("GET /collections/{collection_id}/channels/{channel}/splits/{split}/download", api.handleSplitDownload)

	mux.HandleFunc("POST /artifacts/upload-url", api.handleArtifactUploadURL)
}

type recordCollectionRequest struct {
	ProjectID   string          `json:"project_id"`
	RunID       string          `json:"run_id"`
	StepName    string          `json:"step_name"`
	Direction   string          `json:"direction"`
	Artifacts   json.RawMessage `json:"artifacts"`
	Metadata    map[string]any  `json:"metadata,omitempty"`
	ChannelSpec string          `json:"channel_spec,omitempty"`
}

type collectionResponse struct {
	CollectionID    string          `json:"collection_id"`
	ProjectID       string          `json:"project_id"`
	RunID           string          `json:"run_id"`
	StepName        string          `json:"step_name"`
	Direction       string          `json:"direction"`
	Artifacts       json.RawMessage `json:"artifacts"`
	Metadata        map[string]any  `json:"metadata,omitempty"`
	CreatedAt       time.Time       `json:"created_at"`
	CreatedBy       string          `json:"created_by"`
	IntegritySHA256 string          `json:"integrity_sha256"`
}

func collectionToResponse(record domain.CollectionRecord) collectionResponse {
	return collectionResponse{
		CollectionID:    record.ID,
		ProjectID:       record.ProjectID,
		RunID:           record.RunID,
		StepName:        record.StepName,
		Direction:       record.Direction,
		Artifacts:       json.RawMessage(record.Payload),
		Metadata:        record.Metadata,
		CreatedAt:       record.CreatedAt,
		CreatedBy:       record.CreatedBy,
		IntegritySHA256: record.IntegritySHA256,
	}
}

func (api *artifactRegistryAPI) handleRecordCollection(w http.ResponseWriter, r *http.Request) {
	var req recordCollectionRequest
	if err := decodeJSON(r, &req); err != nil {
		api.writeError(w, r, http.StatusBadRequest, "invalid_json")
		return
	}
	if strings.TrimSpace(req.ProjectID) == "" {
		api.writeError(w, r, http.StatusBadRequest, "project_id_required")
		return
	}
	if strings.TrimSpace(req.RunID) == "" {
		api.writeError(w, r, http.StatusBadRequest, "run_id_required")
		return
	}
	if strings.TrimSpace(req.StepName) == "" {
		api.writeError(w, r, http.StatusBadRequest, "step_name_required")
		return
	}
	if req.Direction != domain.DirectionInput && req.Direction != domain.DirectionOutput {
		api.writeError(w, r, http.StatusBadRequest, "invalid_direction")
		return
	}
	if len(req.Artifacts) == 0 {
		api.writeError(w, r, http.StatusBadRequest, "artifacts_required")
		return
	}

	set, err := artifactset.Unmarshal(req.Artifacts)
	if err != nil {
		api.logger.Warn("reject artifact payload",
			"request_id", r.Header.Get("X-Request-Id"),
			"error", err,
		)
		api.writeErrorDetail(w, r, http.StatusBadRequest, "invalid_artifacts", err.Error())
		return
	}

	if strings.TrimSpace(req.ChannelSpec) != "" {
		spec, err := channelspec.ParseSpec([]byte(req.ChannelSpec))
		if err != nil {
			api.writeErrorDetail(w, r, http.StatusBadRequest, "invalid_channel_spec", err.Error())
			return
		}
		if err := channelspec.ValidateSet(spec, set); err != nil {
			api.writeErrorDetail(w, r, http.StatusUnprocessableEntity, "channel_spec_violation", err.Error())
			return
		}
	}

	identity, _ := auth.IdentityFromContext(r.Context())
	record, err := api.service.Record(r.Context(), collectionsvc.RecordRequest{
		ProjectID: req.ProjectID,
		RunID:     req.RunID,
		StepName:  req.StepName,
		Direction: req.Direction,
		Set:       set,
		Metadata:  domain.Metadata(req.Metadata),
		Actor:     actor(identity),
		RequestID: r.Header.Get("X-Request-Id"),
	})
	if err != nil {
		api.logger.Error("record collection failed",
			"request_id", r.Header.Get("X-Request-Id"),
			"error", err,
		)
		api.writeError(w, r, http.StatusInternalServerError, "internal_error")
		return
	}

	api.writeJSON(w, http.StatusCreated, collectionToResponse(record))
}

func (api *artifactRegistryAPI) handleListCollections(w http.ResponseWriter, r *http.Request) {
	projectID := strings.TrimSpace(r.URL.Query().Get("project_id"))
	if projectID == "" {
		api.writeError(w, r, http.StatusBadRequest, "project_id_required")
		return
	}

	limit := 100
	if raw := strings.TrimSpace(r.URL.Query().Get("limit")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 || parsed > 1000 {
			api.writeError(w, r, http.StatusBadRequest, "invalid_limit")
			return
		}
		limit = parsed
	}

	records, err := api.service.List(r.Context(), repo.CollectionFilter{
		ProjectID: projectID,
		RunID:     strings.TrimSpace(r.URL.Query().Get("run_id")),
		StepName:  strings.TrimSpace(r.URL.Query().Get("step_name")),
		Direction: strings.TrimSpace(r.URL.Query().Get("direction")),
		Limit:     limit,
	})
	if err != nil {
		api.writeError(w, r, http.StatusInternalServerError, "internal_error")
		return
	}

	out := make([]collectionResponse, 0, len(records))
	for _, record := range records {
		out = append(out, collectionToResponse(record))
	}
	api.writeJSON(w, http.StatusOK, map[string]any{"collections": out})
}

func (api *artifactRegistryAPI) handleGetCollection(w http.ResponseWriter, r *http.Request) {
	projectID, collectionID, ok := api.collectionTarget(w, r)
	if !ok {
		return
	}

	record, _, err := api.service.Get(r.Context(), projectID, collectionID)
	if err != nil {
		api.writeResolveError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusOK, collectionToResponse(record))
}

func (api *artifactRegistryAPI) handleSingleArtifact(w http.ResponseWriter, r *http.Request) {
	projectID, collectionID, ok := api.collectionTarget(w, r)
	if !ok {
		return
	}
	channel := r.PathValue("channel")

	artifact, err := api.service.SingleArtifact(r.Context(), projectID, collectionID, channel)
	if err != nil {
		api.writeResolveError(w, r, err)
		return
	}

	body, err := artifact.ToJSON()
	if err != nil {
		api.writeError(w, r, http.StatusInternalServerError, "internal_error")
		return
	}
	api.writeJSON(w, http.StatusOK, map[string]any{
		"channel":  channel,
		"artifact": body,
	})
}

func (api *artifactRegistryAPI) handleSplitDownload(w http.ResponseWriter, r *http.Request) {
	projectID, collectionID, ok := api.collectionTarget(w, r)
	if !ok {
		return
	}
	channel := r.PathValue("channel")
	split := r.PathValue("split")

	url, err := api.service.SplitDownload(r.Context(), projectID, collectionID, channel, split)
	if err != nil {
		api.writeResolveError(w, r, err)
		return
	}
	api.writeJSON(w, http.StatusOK, map[string]any{
		"channel":      channel,
		"split":        split,
		"download_url": url,
	})
}

type uploadURLRequest struct {
	Key string `json:"key"`
}

// handleArtifactUploadURL mints a presigned PUT for an artifact object so a
// step can write its payload before recording the collection that names it.
func (api *artifactRegistryAPI) handleArtifactUploadURL(w http.ResponseWriter, r *http.Request) {
	var req uploadURLRequest
	if err := decodeJSON(r, &req); err != nil {
		api.writeError(w, r, http.StatusBadRequest, "invalid_json")
		return
	}

	uri, uploadURL, err := api.service.PresignUpload(r.Context(), req.Key)
	if err != nil {
		api.writeErrorDetail(w, r, http.StatusBadRequest, "invalid_object_key", err.Error())
		return
	}
	api.writeJSON(w, http.StatusOK, map[string]any{
		"uri":        uri,
		"upload_url": uploadURL,
	})
}

func (api *artifactRegistryAPI) collectionTarget(w http.ResponseWriter, r *http.Request) (projectID, collectionID string, ok bool) {
	projectID = strings.TrimSpace(r.URL.Query().Get("project_id"))
	if projectID == "" {
		api.writeError(w, r, http.StatusBadRequest, "project_id_required")
		return "", "", false
	}
	collectionID = strings.TrimSpace(r.PathValue("collection_id"))
	if collectionID == "" {
		api.writeError(w, r, http.StatusBadRequest, "collection_id_required")
		return "", "", false
	}
	return projectID, collectionID, true
}

// writeResolveError maps lookup and resolution failures onto HTTP statuses:
// unknown records and channels are 404, cardinality violations are 409.
func (api *artifactRegistryAPI) writeResolveError(w http.ResponseWriter, r *http.Request, err error) {
	var cardErr *artifactset.CardinalityError
	switch {
	case errors.Is(err, repo.ErrNotFound):
		api.writeError(w, r, http.StatusNotFound, "not_found")
	case errors.Is(err, collectionsvc.ErrChannelNotFound):
		api.writeError(w, r, http.StatusNotFound, "channel_not_found")
	case errors.As(err, &cardErr):
		api.writeErrorDetail(w, r, http.StatusConflict, "cardinality_conflict", cardErr.Error())
	default:
		api.logger.Error("collection lookup failed",
			"request_id", r.Header.Get("X-Request-Id"),
			"error", err,
		)
		api.writeError(w, r, http.StatusInternalServerError, "internal_error")
	}
}

func actor(identity auth.Identity) string {
	if identity.Email != "" {
		return identity.Email
	}
	if identity.Subject != "" {
		return identity.Subject
	}
	return "anonymous"
}

func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, 10<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return err
	}
	if dec.More() {
		return fmt.Errorf("unexpected trailing data")
	}
	return nil
}

func (api *artifactRegistryAPI) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(true)
	_ = enc.Encode(body)
}

func (api *artifactRegistryAPI) writeError(w http.ResponseWriter, r *http.Request, status int, code string) {
	api.writeJSON(w, status, map[string]any{
		"error":      code,
		"request_id": r.Header.Get("X-Request-Id"),
	})
}

func (api *artifactRegistryAPI) writeErrorDetail(w http.ResponseWriter, r *http.Request, status int, code, detail string) {
	api.writeJSON(w, status, map[string]any{
		"error":      code,
		"detail":     detail,
		"request_id": r.Header.Get("X-Request-Id"),
	})
}
