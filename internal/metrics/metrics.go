package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

const (
	// OutcomeSuccess labels completed analyses.
	OutcomeSuccess = "success"
	// OutcomeError labels failed analyses (pipeline or generation issues).
	OutcomeError = "error"
	// OutcomeRateLimited labels requests rejected before the pipeline ran.
	OutcomeRateLimited = "rate_limited"
)

var (
	analysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "postmortem_engine",
			Name:      "analyses_total",
			Help:      "Total number of AI analyses handled, partitioned by outcome.",
		},
		[]string{"outcome"},
	)

	analysisDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "postmortem_engine",
			Name:      "analysis_seconds",
			Help:      "Full analysis latency in seconds, generation included.",
			Buckets:   []float64{0.25, 0.5, 1, 2, 3, 4, 5, 6, 8, 10, 15, 30},
		},
	)

	generationDurationSeconds = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "postmortem_engine",
			Name:      "generation_seconds",
			Help:      "Narrative generation call latency in seconds.",
			Buckets:   []float64{0.5, 1, 2, 4, 8, 15, 30, 60},
		},
	)
)

// Register attaches the engine's collectors to the supplied registerer.
func Register(reg prometheus.Registerer) error {
	collectors := []prometheus.Collector{
		analysesTotal,
		analysisDurationSeconds,
		generationDurationSeconds,
	}

	for _, collector := range collectors {
		if err := reg.Register(collector); err != nil {
			if _, ok := err.(prometheus.AlreadyRegisteredError); ok {
				continue
			}
			return err
		}
	}
	return nil
}

// ObserveAnalysis records a full analysis duration and outcome label.
func ObserveAnalysis(duration time.Duration, outcome string) {
	analysesTotal.WithLabelValues(outcome).Inc()
	if duration < 0 {
		duration = 0
	}
	analysisDurationSeconds.Observe(duration.Seconds())
}

// CountRateLimited records a request rejected by the limiter.
func CountRateLimited() {
	analysesTotal.WithLabelValues(OutcomeRateLimited).Inc()
}

// ObserveGeneration records the generation backend call latency.
func ObserveGeneration(duration time.Duration) {
	if duration < 0 {
		duration = 0
	}
	generationDurationSeconds.Observe(duration.Seconds())
}
