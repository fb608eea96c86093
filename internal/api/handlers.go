package api

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"github.com/postmortemhq/postmortem-engine/internal/metrics"
	"github.com/postmortemhq/postmortem-engine/internal/models"
	"github.com/postmortemhq/postmortem-engine/internal/ratelimit"
	"github.com/postmortemhq/postmortem-engine/internal/utils"
)

// AnalysisAPI defines the service behaviour the handlers call.
type AnalysisAPI interface {
	ListIncidents() ([]models.IncidentMeta, error)
	GetIncident(id string) (models.IncidentRecord, error)
	AnalyzeDeterministic(id string) (models.FactBundle, error)
	Analyze(ctx context.Context, id string) (models.AnalysisResult, error)
}

// Handler exposes the analysis service over HTTP/JSON.
type Handler struct {
	logger  *slog.Logger
	service AnalysisAPI
	limiter *ratelimit.Limiter
	now     func() time.Time
}

// NewHandler constructs the HTTP handler set. The limiter guards only the
// AI-analysis route; deterministic analysis is cheap and unmetered.
func NewHandler(logger *slog.Logger, service AnalysisAPI, limiter *ratelimit.Limiter) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{
		logger:  logger,
		service: service,
		limiter: limiter,
		now:     time.Now,
	}
}

// Routes builds the API router.
func (h *Handler) Routes() http.Handler {
	r := mux.NewRouter()
	r.HandleFunc("/api/incidents", h.listIncidents).Methods(http.MethodGet)
	r.HandleFunc("/api/incidents/{id}", h.getIncident).Methods(http.MethodGet)
	r.HandleFunc("/api/analyze/deterministic", h.analyzeDeterministic).Methods(http.MethodPost)
	r.HandleFunc("/api/analyze/ai", h.analyzeAI).Methods(http.MethodPost)
	r.HandleFunc("/healthz", h.health).Methods(http.MethodGet)
	return r
}

type analyzeRequest struct {
	ID string `json:"id"`
}

func (h *Handler) listIncidents(w http.ResponseWriter, r *http.Request) {
	metas, err := h.service.ListIncidents()
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, metas)
}

func (h *Handler) getIncident(w http.ResponseWriter, r *http.Request) {
	record, err := h.service.GetIncident(mux.Vars(r)["id"])
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, record)
}

func (h *Handler) analyzeDeterministic(w http.ResponseWriter, r *http.Request) {
	id, ok := h.decodeAnalyzeRequest(w, r)
	if !ok {
		return
	}

	facts, err := h.service.AnalyzeDeterministic(id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, facts)
}

func (h *Handler) analyzeAI(w http.ResponseWriter, r *http.Request) {
	if h.limiter != nil && !h.limiter.Allow("global", h.now()) {
		metrics.CountRateLimited()
		h.writeError(w, utils.NewRateLimitError("api.analyzeAI", "rate limit exceeded, please wait a moment"))
		return
	}

	id, ok := h.decodeAnalyzeRequest(w, r)
	if !ok {
		return
	}

	result, err := h.service.Analyze(r.Context(), id)
	if err != nil {
		h.writeError(w, err)
		return
	}
	h.writeJSON(w, http.StatusOK, result)
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": h.now().UTC().Format(time.RFC3339),
	})
}

func (h *Handler) decodeAnalyzeRequest(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req analyzeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.writeError(w, utils.NewMalformedInputError("api.decodeAnalyzeRequest", "request body must be JSON with an id field"))
		return "", false
	}
	if req.ID == "" {
		h.writeError(w, utils.NewMalformedInputError("api.decodeAnalyzeRequest", "id is required"))
		return "", false
	}
	return req.ID, true
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		h.logger.Warn("failed to encode response", slog.Any("error", err))
	}
}

// writeError maps the error taxonomy onto HTTP statuses. Every error body has
// the same {error} shape so the client renders them uniformly.
func (h *Handler) writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch utils.KindOf(err) {
	case utils.KindNotFound:
		status = http.StatusNotFound
	case utils.KindMalformedInput:
		status = http.StatusBadRequest
	case utils.KindRateLimited:
		status = http.StatusTooManyRequests
	case utils.KindGeneration:
		status = http.StatusBadGateway
	}

	if status >= http.StatusInternalServerError {
		h.logger.Error("request failed", slog.Int("status", status), slog.Any("error", err))
	} else {
		h.logger.Debug("request rejected", slog.Int("status", status), slog.Any("error", err))
	}

	h.writeJSON(w, status, map[string]string{"error": err.Error()})
}
