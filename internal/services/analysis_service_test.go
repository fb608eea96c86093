package services

import (
	"context"
	"testing"

	"github.com/postmortemhq/postmortem-engine/internal/engine"
	"github.com/postmortemhq/postmortem-engine/internal/models"
	"github.com/postmortemhq/postmortem-engine/internal/utils"
)

type stubStore struct {
	records map[string]models.IncidentRecord
}

func (s *stubStore) ListIncidents() ([]models.IncidentMeta, error) {
	metas := make([]models.IncidentMeta, 0, len(s.records))
	for _, record := range s.records {
		metas = append(metas, record.Meta)
	}
	return metas, nil
}

func (s *stubStore) LoadIncident(id string) (models.IncidentRecord, error) {
	record, ok := s.records[id]
	if !ok {
		return models.IncidentRecord{}, utils.NewNotFoundError("stub.LoadIncident", "incident "+id+" not found")
	}
	return record, nil
}

type stubGenerator struct{}

func (stubGenerator) GeneratePostMortem(context.Context, models.FactBundle, models.ModelSelection) (models.PostMortem, error) {
	return models.PostMortem{Summary: "generated", RootCauseHypothesis: "stub"}, nil
}

func newTestService(t *testing.T) *AnalysisService {
	t.Helper()
	policy, err := engine.NewStaticPolicy("gemini", "gemini-2.5-flash")
	if err != nil {
		t.Fatalf("policy: %v", err)
	}
	store := &stubStore{records: map[string]models.IncidentRecord{
		"inc-003": {
			ID:   "inc-003",
			Meta: models.IncidentMeta{ID: "inc-003", Title: "Auth Service 500s after Canary Deploy"},
			Metrics: map[string][]float64{
				"error_rate_percent": {0.1, 0.1, 0.2, 12.0, 15.0, 4.0, 0.1},
			},
			Logs: "[ERROR] 09:00:06 ReferenceError: jwt_secret is not defined",
		},
	}}
	return NewAnalysisService(nil, store, engine.NewPipeline(nil, policy, stubGenerator{}))
}

func TestAnalyzeDeterministic(t *testing.T) {
	service := newTestService(t)

	facts, err := service.AnalyzeDeterministic("inc-003")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(facts.Correlations) != 1 || facts.Correlations[0].Rule != "Deploy Correlation" {
		t.Fatalf("expected deploy correlation from title, got %+v", facts.Correlations)
	}
	if len(facts.Metrics.Breaches) != 1 || facts.Metrics.Breaches[0].Kind != models.BreachElevated {
		t.Fatalf("expected elevated breach, got %+v", facts.Metrics.Breaches)
	}
}

func TestAnalyzeFullRun(t *testing.T) {
	service := newTestService(t)

	result, err := service.Analyze(context.Background(), "inc-003")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.AnalysisID == "" {
		t.Fatalf("expected analysis id")
	}
	if result.Report.Summary != "generated" {
		t.Fatalf("expected generated report, got %+v", result.Report)
	}
	if result.Selection.Model != "gemini-2.5-flash" {
		t.Fatalf("unexpected selection %+v", result.Selection)
	}
}

func TestAnalyzeNotFoundPassesThrough(t *testing.T) {
	service := newTestService(t)

	_, err := service.Analyze(context.Background(), "inc-missing")
	if err == nil {
		t.Fatalf("expected error")
	}
	if utils.KindOf(err) != utils.KindNotFound {
		t.Fatalf("expected not-found kind, got %v", utils.KindOf(err))
	}
}
