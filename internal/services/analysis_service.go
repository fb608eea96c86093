package services

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/postmortemhq/postmortem-engine/internal/engine"
	"github.com/postmortemhq/postmortem-engine/internal/metrics"
	"github.com/postmortemhq/postmortem-engine/internal/models"
	"github.com/postmortemhq/postmortem-engine/internal/utils"
)

// IncidentSupplier defines the store behaviour the service needs.
type IncidentSupplier interface {
	ListIncidents() ([]models.IncidentMeta, error)
	LoadIncident(id string) (models.IncidentRecord, error)
}

// AnalysisService is the facade the transport layer calls: it loads incident
// records, runs the pipeline, and owns observability around each analysis.
type AnalysisService struct {
	logger    *slog.Logger
	store     IncidentSupplier
	pipeline  *engine.Pipeline
	latencies *utils.LatencyTracker
}

// NewAnalysisService constructs the service facade.
func NewAnalysisService(logger *slog.Logger, store IncidentSupplier, pipeline *engine.Pipeline) *AnalysisService {
	if logger == nil {
		logger = slog.Default()
	}
	return &AnalysisService{
		logger:    logger,
		store:     store,
		pipeline:  pipeline,
		latencies: utils.NewLatencyTracker(1024),
	}
}

// ListIncidents returns metadata for every stored incident.
func (s *AnalysisService) ListIncidents() ([]models.IncidentMeta, error) {
	return s.store.ListIncidents()
}

// GetIncident returns one incident record whole.
func (s *AnalysisService) GetIncident(id string) (models.IncidentRecord, error) {
	return s.store.LoadIncident(id)
}

// AnalyzeDeterministic runs only the pure stages and returns the fact bundle.
// No generation call is made, so the result is free and always consistent.
func (s *AnalysisService) AnalyzeDeterministic(id string) (models.FactBundle, error) {
	record, err := s.store.LoadIncident(id)
	if err != nil {
		return models.FactBundle{}, err
	}
	return s.pipeline.ExtractFacts(record), nil
}

// Analyze runs the full pipeline including narrative generation. Each call
// recomputes from scratch; a generation failure surfaces with its own error
// kind so callers can distinguish it from a failed incident load.
func (s *AnalysisService) Analyze(ctx context.Context, id string) (models.AnalysisResult, error) {
	record, err := s.store.LoadIncident(id)
	if err != nil {
		return models.AnalysisResult{}, err
	}

	start := time.Now()
	analysis, err := s.pipeline.Analyze(ctx, record)
	duration := time.Since(start)
	if err != nil {
		metrics.ObserveAnalysis(duration, metrics.OutcomeError)
		s.logger.Error("analysis failed", slog.String("incident_id", id), slog.Any("error", err))
		return models.AnalysisResult{}, err
	}

	s.latencies.Observe(duration)
	metrics.ObserveAnalysis(duration, metrics.OutcomeSuccess)
	if count := s.latencies.Count(); count >= 20 && count%20 == 0 {
		s.logger.Info("analysis latency", slog.Duration("p95", s.latencies.Percentile(95)), slog.Int("samples", count))
	}

	s.logger.Info("analysis complete",
		slog.String("incident_id", id),
		slog.String("level", string(analysis.Complexity.Level)),
		slog.String("model", analysis.Selection.Model),
		slog.Int("correlations", len(analysis.Facts.Correlations)),
	)

	return models.AnalysisResult{
		AnalysisID: uuid.NewString(),
		Facts:      analysis.Facts,
		Complexity: analysis.Complexity,
		Selection:  analysis.Selection,
		Report:     analysis.Report,
	}, nil
}

// LatencyP95 returns the current p95 analysis latency.
func (s *AnalysisService) LatencyP95() time.Duration {
	return s.latencies.Percentile(95)
}
