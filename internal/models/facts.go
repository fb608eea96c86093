package models

// TimelineFacts summarises the incident timeline. Role markers hold the
// timestamp string of the first matching event, or "" when no event matched.
// "First" means first in recorded order, not earliest by clock value.
type TimelineFacts struct {
	StartTime      string `json:"startTime"`
	DetectionTime  string `json:"detectionTime"`
	MitigationTime string `json:"mitigationTime"`
	ResolutionTime string `json:"resolutionTime"`
	EventsCount    int    `json:"eventsCount"`
}

// LogFacts summarises the raw log blob.
type LogFacts struct {
	LineCount          int      `json:"lineCount"`
	ErrorCount         int      `json:"errorCount"`
	WarnCount          int      `json:"warnCount"`
	UniqueErrors       []string `json:"uniqueErrors"`
	HasOOM             bool     `json:"hasOOM"`
	HasTimeout         bool     `json:"hasTimeout"`
	HasConnectionError bool     `json:"hasConnectionError"`
}

// BreachKind enumerates threshold-violation categories.
type BreachKind string

const (
	BreachSaturation  BreachKind = "saturation"
	BreachLeakSuspect BreachKind = "leak_suspect"
	BreachElevated    BreachKind = "elevated"
	BreachSlowness    BreachKind = "slowness"
)

// MetricBreach records a metric series crossing its static threshold.
type MetricBreach struct {
	Metric    string     `json:"metric"`
	Kind      BreachKind `json:"kind"`
	Value     float64    `json:"value"`
	Threshold float64    `json:"threshold"`
}

// MetricFacts summarises the metric series of an incident.
type MetricFacts struct {
	Breaches   []MetricBreach `json:"breaches"`
	DataPoints int            `json:"dataPoints"`
}

// Confidence is the tier attached to a correlation finding.
type Confidence string

const (
	ConfidenceLow    Confidence = "low"
	ConfidenceMedium Confidence = "medium"
	ConfidenceHigh   Confidence = "high"
)

// Correlation is a heuristic hypothesis linking facts across signal sources.
type Correlation struct {
	Confidence  Confidence `json:"confidence"`
	Rule        string     `json:"rule"`
	Description string     `json:"description"`
}

// FactBundle aggregates every derived fact for one incident. It is the single
// value handed to the complexity scorer, the model router, and the prompt
// builder.
type FactBundle struct {
	Timeline     TimelineFacts `json:"timelineAnalysis"`
	Logs         LogFacts      `json:"logAnalysis"`
	Metrics      MetricFacts   `json:"metricAnalysis"`
	Correlations []Correlation `json:"correlations"`
}

// ComplexityLevel is the coarse two-valued classification of an incident.
type ComplexityLevel string

const (
	ComplexityLow  ComplexityLevel = "LOW"
	ComplexityHigh ComplexityLevel = "HIGH"
)

// ComplexityAssessment is the scorer's verdict on an incident's context size
// and ambiguity.
type ComplexityAssessment struct {
	SignalCount     int             `json:"signalCount"`
	AmbiguityScore  int             `json:"ambiguityScore"`
	EstimatedTokens int             `json:"estimatedTokens"`
	Level           ComplexityLevel `json:"complexityLevel"`
}

// ModelSelection names the generation backend chosen for an incident.
type ModelSelection struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`
	Reason   string `json:"reason"`
}
