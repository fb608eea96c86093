package engine

import (
	"testing"

	"github.com/postmortemhq/postmortem-engine/internal/models"
)

func TestCorrelatorDeployRuleFromTitle(t *testing.T) {
	correlator := NewCorrelator()

	meta := models.IncidentMeta{Title: "Auth Service 500s after Canary Deploy"}
	findings := correlator.Correlate(meta, models.LogFacts{}, models.MetricFacts{})

	if len(findings) != 1 {
		t.Fatalf("expected one finding, got %d", len(findings))
	}
	if findings[0].Rule != "Deploy Correlation" || findings[0].Confidence != models.ConfidenceHigh {
		t.Fatalf("unexpected finding %+v", findings[0])
	}
}

func TestCorrelatorDeployRuleNoMatch(t *testing.T) {
	correlator := NewCorrelator()

	meta := models.IncidentMeta{Title: "Product Catalog Latency (Cache Miss Storm)"}
	findings := correlator.Correlate(meta, models.LogFacts{HasOOM: false}, models.MetricFacts{})

	if len(findings) != 0 {
		t.Fatalf("expected no findings, got %+v", findings)
	}
}

func TestCorrelatorMemoryLeakRule(t *testing.T) {
	correlator := NewCorrelator()

	logs := models.LogFacts{HasOOM: true}
	metrics := models.MetricFacts{Breaches: []models.MetricBreach{
		{Metric: "memory", Kind: models.BreachLeakSuspect, Value: 2048, Threshold: 768},
	}}

	findings := correlator.Correlate(models.IncidentMeta{Title: "Image Processor OOM Crash Loop"}, logs, metrics)

	// hasOOM alone also fires the deploy rule; both must be present, in
	// declaration order.
	if len(findings) != 2 {
		t.Fatalf("expected two findings, got %d: %+v", len(findings), findings)
	}
	if findings[0].Rule != "Deploy Correlation" {
		t.Fatalf("expected deploy rule first, got %q", findings[0].Rule)
	}
	if findings[1].Rule != "Memory Leak" || findings[1].Confidence != models.ConfidenceHigh {
		t.Fatalf("unexpected second finding %+v", findings[1])
	}
}

func TestCorrelatorCascadingFailureRule(t *testing.T) {
	correlator := NewCorrelator()

	logs := models.LogFacts{HasTimeout: true}
	metrics := models.MetricFacts{Breaches: []models.MetricBreach{
		{Metric: "latency", Kind: models.BreachSlowness, Value: 5000, Threshold: 2000},
	}}

	findings := correlator.Correlate(models.IncidentMeta{Title: "Database CPU Spike & Query Timeouts"}, logs, metrics)

	if len(findings) != 1 {
		t.Fatalf("expected one finding, got %d: %+v", len(findings), findings)
	}
	if findings[0].Rule != "Cascading Failure" || findings[0].Confidence != models.ConfidenceMedium {
		t.Fatalf("unexpected finding %+v", findings[0])
	}
}

func TestCorrelatorTimeoutWithoutSlownessBreach(t *testing.T) {
	correlator := NewCorrelator()

	logs := models.LogFacts{HasTimeout: true}
	findings := correlator.Correlate(models.IncidentMeta{Title: "Slow checkout"}, logs, models.MetricFacts{})

	if len(findings) != 0 {
		t.Fatalf("expected no findings without a slowness breach, got %+v", findings)
	}
}
