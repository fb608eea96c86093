package models

// IncidentMeta describes a recorded incident.
type IncidentMeta struct {
	ID            string `json:"id"`
	Title         string `json:"title"`
	Severity      string `json:"severity"`
	Service       string `json:"service"`
	Status        string `json:"status"`
	PrimaryMetric string `json:"primary_metric"`
	Timestamp     string `json:"timestamp"`
}

// TimelineEvent is a single entry in an incident timeline. Timestamps are
// opaque strings; events keep the order they were recorded in.
type TimelineEvent struct {
	Timestamp string    `json:"timestamp"`
	Event     string    `json:"event"`
	Type      EventType `json:"type"`
}

// EventType classifies a timeline event's role in the incident.
type EventType string

const (
	EventTrigger    EventType = "trigger"
	EventAlert      EventType = "alert"
	EventHuman      EventType = "human"
	EventMitigation EventType = "mitigation"
	EventResolution EventType = "resolution"
	EventInfo       EventType = "info"
)

// IncidentRecord is the immutable input to the analysis pipeline. The store
// supplies it whole; no pipeline stage mutates it.
type IncidentRecord struct {
	ID       string               `json:"id"`
	Meta     IncidentMeta         `json:"meta"`
	Timeline []TimelineEvent      `json:"timeline"`
	Metrics  map[string][]float64 `json:"metrics"`
	Logs     string               `json:"logs"`
}
