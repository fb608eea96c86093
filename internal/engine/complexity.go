package engine

import (
	"strings"

	"github.com/postmortemhq/postmortem-engine/internal/models"
)

// Scoring weights and thresholds for the complexity classification.
const (
	ambiguityNoCorrelations = 3
	ambiguityMixedSignals   = 2
	ambiguityHardErrors     = 3

	tokensPerLogLine = 15
	tokensPerSignal  = 50

	highAmbiguityThreshold = 5
	highTokenThreshold     = 4000
)

// ComplexityScorer turns a fact bundle into an ambiguity score, a crude token
// estimate, and a two-valued LOW/HIGH classification.
type ComplexityScorer struct{}

// NewComplexityScorer constructs a complexity scorer.
func NewComplexityScorer() *ComplexityScorer {
	return &ComplexityScorer{}
}

// Assess scores the bundle. The token estimate is a linear proxy over log
// lines and signals, not a tokenizer. Classification is strictly
// greater-than on both thresholds: a score of 5 or an estimate of exactly
// 4000 stays LOW.
func (s *ComplexityScorer) Assess(facts models.FactBundle) models.ComplexityAssessment {
	signalCount := facts.Timeline.EventsCount + len(facts.Logs.UniqueErrors) + len(facts.Metrics.Breaches)
	ambiguity := ambiguityScore(facts)
	estimatedTokens := facts.Logs.LineCount*tokensPerLogLine + signalCount*tokensPerSignal

	level := models.ComplexityLow
	if ambiguity > highAmbiguityThreshold || estimatedTokens > highTokenThreshold {
		level = models.ComplexityHigh
	}

	return models.ComplexityAssessment{
		SignalCount:     signalCount,
		AmbiguityScore:  ambiguity,
		EstimatedTokens: estimatedTokens,
		Level:           level,
	}
}

// ambiguityScore accumulates without an upper cap.
func ambiguityScore(facts models.FactBundle) int {
	score := 0

	// No correlation hypothesis at all means the narrative has nothing firm
	// to anchor on.
	if len(facts.Correlations) == 0 {
		score += ambiguityNoCorrelations
	}

	// Mixed memory and timeout symptoms point in different directions.
	if facts.Logs.HasOOM && facts.Logs.HasTimeout {
		score += ambiguityMixedSignals
	}

	for _, msg := range facts.Logs.UniqueErrors {
		if strings.Contains(msg, "segfault") || strings.Contains(msg, "deadlock") {
			score += ambiguityHardErrors
			break
		}
	}

	return score
}
