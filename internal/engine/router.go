package engine

import (
	"fmt"

	"github.com/postmortemhq/postmortem-engine/internal/models"
	"github.com/postmortemhq/postmortem-engine/internal/utils"
)

// RoutingPolicy picks the generation backend for an assessed incident.
// Callers only see the interface, so a cost- or complexity-based policy can
// replace the static one without touching the pipeline.
type RoutingPolicy interface {
	SelectModel(assessment models.ComplexityAssessment) models.ModelSelection
}

// StaticPolicy routes every incident to one configured provider/model pair.
type StaticPolicy struct {
	provider string
	model    string
}

// NewStaticPolicy validates the configured pair up front. An unset provider
// or model is a configuration error and must fail boot, not the first
// analysis request.
func NewStaticPolicy(provider, model string) (*StaticPolicy, error) {
	if provider == "" || model == "" {
		return nil, utils.NewConfigurationError("engine.NewStaticPolicy",
			fmt.Sprintf("generation provider and model must be configured (provider=%q, model=%q)", provider, model))
	}
	return &StaticPolicy{provider: provider, model: model}, nil
}

// SelectModel returns the fixed selection with a reason echoing the
// assessment, so the decision stays inspectable even while degenerate.
func (p *StaticPolicy) SelectModel(assessment models.ComplexityAssessment) models.ModelSelection {
	return models.ModelSelection{
		Provider: p.provider,
		Model:    p.model,
		Reason:   fmt.Sprintf("Static %s selection (model: %s). Complexity: %s", p.provider, p.model, assessment.Level),
	}
}
