package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/postmortemhq/postmortem-engine/internal/extractors"
	"github.com/postmortemhq/postmortem-engine/internal/metrics"
	"github.com/postmortemhq/postmortem-engine/internal/models"
	"github.com/postmortemhq/postmortem-engine/internal/utils"
)

// Generator is the narrative backend invoked with the fact bundle and the
// routing decision. It is the only suspension point in an analysis run.
type Generator interface {
	GeneratePostMortem(ctx context.Context, facts models.FactBundle, selection models.ModelSelection) (models.PostMortem, error)
}

// Analysis is the output of one full pipeline run.
type Analysis struct {
	Facts      models.FactBundle
	Complexity models.ComplexityAssessment
	Selection  models.ModelSelection
	Report     models.PostMortem
}

// Pipeline sequences extraction, correlation, scoring, and routing, then hands
// the bundle to the generation backend. Every stage before generation is a
// pure function of the incident record, so repeated runs over the same input
// produce identical bundles.
type Pipeline struct {
	logger            *slog.Logger
	timelineExtractor *extractors.TimelineExtractor
	logsExtractor     *extractors.LogsExtractor
	metricExtractor   *extractors.MetricExtractor
	correlator        *Correlator
	scorer            *ComplexityScorer
	policy            RoutingPolicy
	generator         Generator
}

// NewPipeline constructs an analysis pipeline.
func NewPipeline(logger *slog.Logger, policy RoutingPolicy, generator Generator) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		logger:            logger,
		timelineExtractor: extractors.NewTimelineExtractor(),
		logsExtractor:     extractors.NewLogsExtractor(),
		metricExtractor:   extractors.NewMetricExtractor(),
		correlator:        NewCorrelator(),
		scorer:            NewComplexityScorer(),
		policy:            policy,
		generator:         generator,
	}
}

// ExtractFacts runs the deterministic stages only: the three extractors and
// the correlator. No I/O, no error paths; absent sections of the record reduce
// to empty facts.
func (p *Pipeline) ExtractFacts(incident models.IncidentRecord) models.FactBundle {
	timelineFacts := p.timelineExtractor.Extract(incident.Timeline)
	logFacts := p.logsExtractor.Extract(incident.Logs)
	metricFacts := p.metricExtractor.Extract(incident.Metrics)

	return models.FactBundle{
		Timeline:     timelineFacts,
		Logs:         logFacts,
		Metrics:      metricFacts,
		Correlations: p.correlator.Correlate(incident.Meta, logFacts, metricFacts),
	}
}

// Analyze executes the full run: facts, assessment, routing decision, then
// exactly one generation call. The bundle and selection come back alongside
// the backend's report unmodified. No stage retries and nothing is cached;
// a failed generation leaves no state behind, so the whole run is safe to
// repeat.
func (p *Pipeline) Analyze(ctx context.Context, incident models.IncidentRecord) (Analysis, error) {
	if p.policy == nil {
		return Analysis{}, utils.NewConfigurationError("engine.Analyze", "routing policy not configured")
	}
	if p.generator == nil {
		return Analysis{}, utils.NewConfigurationError("engine.Analyze", "generation backend not configured")
	}

	facts := p.ExtractFacts(incident)
	assessment := p.scorer.Assess(facts)
	selection := p.policy.SelectModel(assessment)

	p.logger.Debug("pipeline facts computed",
		slog.String("incident_id", incident.ID),
		slog.Int("signals", assessment.SignalCount),
		slog.Int("ambiguity", assessment.AmbiguityScore),
		slog.String("level", string(assessment.Level)),
		slog.String("model", selection.Model),
	)

	start := time.Now()
	report, err := p.generator.GeneratePostMortem(ctx, facts, selection)
	metrics.ObserveGeneration(time.Since(start))
	if err != nil {
		return Analysis{}, utils.NewGenerationError("engine.Analyze", "post-mortem generation failed", err)
	}

	return Analysis{
		Facts:      facts,
		Complexity: assessment,
		Selection:  selection,
		Report:     report,
	}, nil
}
