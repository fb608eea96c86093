package extractors

import "github.com/postmortemhq/postmortem-engine/internal/models"

// Static thresholds for the per-series breach rules.
const (
	cpuSaturationThreshold = 85
	memoryLeakFactor       = 1.5
	errorRateThreshold     = 1
	latencyThresholdMillis = 2000
)

// MetricExtractor evaluates fixed threshold rules against named metric series.
type MetricExtractor struct{}

// NewMetricExtractor constructs a metric extractor.
func NewMetricExtractor() *MetricExtractor {
	return &MetricExtractor{}
}

// Extract applies each rule to its named series when present. Absent series
// are skipped silently; unrecognised series still count toward DataPoints.
// Rule order is fixed so the breach slice is reproducible for a given input.
func (e *MetricExtractor) Extract(metrics map[string][]float64) models.MetricFacts {
	facts := models.MetricFacts{
		Breaches:   []models.MetricBreach{},
		DataPoints: len(metrics),
	}

	if series, ok := nonEmpty(metrics, "cpu"); ok {
		if max := maxSample(series); max > cpuSaturationThreshold {
			facts.Breaches = append(facts.Breaches, models.MetricBreach{
				Metric:    "cpu",
				Kind:      models.BreachSaturation,
				Value:     max,
				Threshold: cpuSaturationThreshold,
			})
		}
	}

	if series, ok := nonEmpty(metrics, "memory_mb"); ok {
		// A single-sample series compares first against itself and never
		// breaches; no special case needed.
		first, last := series[0], series[len(series)-1]
		if last > first*memoryLeakFactor {
			facts.Breaches = append(facts.Breaches, models.MetricBreach{
				Metric:    "memory",
				Kind:      models.BreachLeakSuspect,
				Value:     last,
				Threshold: first * memoryLeakFactor,
			})
		}
	}

	if series, ok := errorRateSeries(metrics); ok {
		if max := maxSample(series); max > errorRateThreshold {
			facts.Breaches = append(facts.Breaches, models.MetricBreach{
				Metric:    "error_rate",
				Kind:      models.BreachElevated,
				Value:     max,
				Threshold: errorRateThreshold,
			})
		}
	}

	if series, ok := nonEmpty(metrics, "latency"); ok {
		if max := maxSample(series); max > latencyThresholdMillis {
			facts.Breaches = append(facts.Breaches, models.MetricBreach{
				Metric:    "latency",
				Kind:      models.BreachSlowness,
				Value:     max,
				Threshold: latencyThresholdMillis,
			})
		}
	}

	return facts
}

// errorRateSeries prefers "error_rate" over "error_rate_percent" when both
// series were recorded.
func errorRateSeries(metrics map[string][]float64) ([]float64, bool) {
	if series, ok := nonEmpty(metrics, "error_rate"); ok {
		return series, true
	}
	return nonEmpty(metrics, "error_rate_percent")
}

func nonEmpty(metrics map[string][]float64, name string) ([]float64, bool) {
	series, ok := metrics[name]
	if !ok || len(series) == 0 {
		return nil, false
	}
	return series, true
}

func maxSample(series []float64) float64 {
	max := series[0]
	for _, v := range series[1:] {
		if v > max {
			max = v
		}
	}
	return max
}
