package engine

import (
	"strings"

	"github.com/postmortemhq/postmortem-engine/internal/models"
)

// Correlator evaluates a fixed, ordered list of cross-signal rules. Rules are
// independent: every rule that matches appends its finding, and no rule
// mutates the facts it reads.
type Correlator struct{}

// NewCorrelator constructs a correlator.
func NewCorrelator() *Correlator {
	return &Correlator{}
}

// Correlate returns findings in rule declaration order.
func (c *Correlator) Correlate(meta models.IncidentMeta, logs models.LogFacts, metrics models.MetricFacts) []models.Correlation {
	findings := []models.Correlation{}

	if strings.Contains(strings.ToLower(meta.Title), "deploy") || logs.HasOOM {
		findings = append(findings, models.Correlation{
			Confidence:  models.ConfidenceHigh,
			Rule:        "Deploy Correlation",
			Description: "Incident coincides with deployment activity.",
		})
	}

	if logs.HasOOM && hasBreachKind(metrics.Breaches, models.BreachLeakSuspect) {
		findings = append(findings, models.Correlation{
			Confidence:  models.ConfidenceHigh,
			Rule:        "Memory Leak",
			Description: "Log patterns indicate OOM coupled with memory saturation.",
		})
	}

	if logs.HasTimeout && hasBreachKind(metrics.Breaches, models.BreachSlowness) {
		findings = append(findings, models.Correlation{
			Confidence:  models.ConfidenceMedium,
			Rule:        "Cascading Failure",
			Description: "High latency correlating with service timeouts.",
		})
	}

	return findings
}

func hasBreachKind(breaches []models.MetricBreach, kind models.BreachKind) bool {
	for _, breach := range breaches {
		if breach.Kind == kind {
			return true
		}
	}
	return false
}
