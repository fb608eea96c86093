package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/postmortemhq/postmortem-engine/internal/models"
	"github.com/postmortemhq/postmortem-engine/internal/ratelimit"
	"github.com/postmortemhq/postmortem-engine/internal/utils"
)

type stubService struct {
	analyzeErr error
}

func (s *stubService) ListIncidents() ([]models.IncidentMeta, error) {
	return []models.IncidentMeta{{ID: "inc-001", Title: "Database CPU Spike"}}, nil
}

func (s *stubService) GetIncident(id string) (models.IncidentRecord, error) {
	if id != "inc-001" {
		return models.IncidentRecord{}, utils.NewNotFoundError("stub.GetIncident", "incident "+id+" not found")
	}
	return models.IncidentRecord{ID: id, Meta: models.IncidentMeta{ID: id}}, nil
}

func (s *stubService) AnalyzeDeterministic(id string) (models.FactBundle, error) {
	if id != "inc-001" {
		return models.FactBundle{}, utils.NewNotFoundError("stub.AnalyzeDeterministic", "incident "+id+" not found")
	}
	return models.FactBundle{
		Correlations: []models.Correlation{{Rule: "Deploy Correlation", Confidence: models.ConfidenceHigh}},
	}, nil
}

func (s *stubService) Analyze(_ context.Context, id string) (models.AnalysisResult, error) {
	if s.analyzeErr != nil {
		return models.AnalysisResult{}, s.analyzeErr
	}
	return models.AnalysisResult{
		AnalysisID: "a-1",
		Selection:  models.ModelSelection{Provider: "gemini", Model: "gemini-2.5-flash"},
		Report:     models.PostMortem{Summary: "ok", RootCauseHypothesis: "stub"},
	}, nil
}

func newTestHandler(service AnalysisAPI, limiter *ratelimit.Limiter) http.Handler {
	return NewHandler(nil, service, limiter).Routes()
}

func TestListIncidents(t *testing.T) {
	router := newTestHandler(&stubService{}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/incidents", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var metas []models.IncidentMeta
	if err := json.Unmarshal(rec.Body.Bytes(), &metas); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(metas) != 1 || metas[0].ID != "inc-001" {
		t.Fatalf("unexpected listing %+v", metas)
	}
}

func TestGetIncidentNotFound(t *testing.T) {
	router := newTestHandler(&stubService{}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/incidents/inc-404", nil))

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["error"] == "" {
		t.Fatalf("expected error message in body")
	}
}

func TestAnalyzeDeterministicRoute(t *testing.T) {
	router := newTestHandler(&stubService{}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze/deterministic", strings.NewReader(`{"id":"inc-001"}`))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var facts models.FactBundle
	if err := json.Unmarshal(rec.Body.Bytes(), &facts); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if len(facts.Correlations) != 1 {
		t.Fatalf("unexpected facts %+v", facts)
	}
}

func TestAnalyzeRequiresID(t *testing.T) {
	router := newTestHandler(&stubService{}, nil)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/api/analyze/deterministic", strings.NewReader(`{}`))
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestAnalyzeAIRateLimit(t *testing.T) {
	limiter := ratelimit.NewLimiter(1, time.Minute)
	router := newTestHandler(&stubService{}, limiter)

	first := httptest.NewRecorder()
	router.ServeHTTP(first, httptest.NewRequest(http.MethodPost, "/api/analyze/ai", strings.NewReader(`{"id":"inc-001"}`)))
	if first.Code != http.StatusOK {
		t.Fatalf("expected first request to pass, got %d", first.Code)
	}

	second := httptest.NewRecorder()
	router.ServeHTTP(second, httptest.NewRequest(http.MethodPost, "/api/analyze/ai", strings.NewReader(`{"id":"inc-001"}`)))
	if second.Code != http.StatusTooManyRequests {
		t.Fatalf("expected 429, got %d", second.Code)
	}
}

func TestAnalyzeAIGenerationFailure(t *testing.T) {
	service := &stubService{analyzeErr: utils.NewGenerationError("stub", "backend unavailable", nil)}
	router := newTestHandler(service, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/analyze/ai", strings.NewReader(`{"id":"inc-001"}`)))

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("expected 502 for generation failure, got %d", rec.Code)
	}
}

func TestHealthz(t *testing.T) {
	router := newTestHandler(&stubService{}, nil)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if body["status"] != "ok" {
		t.Fatalf("unexpected health body %+v", body)
	}
}
