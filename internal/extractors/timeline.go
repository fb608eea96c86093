package extractors

import "github.com/postmortemhq/postmortem-engine/internal/models"

// TimelineExtractor derives phase markers from an incident timeline.
type TimelineExtractor struct{}

// NewTimelineExtractor constructs a timeline extractor.
func NewTimelineExtractor() *TimelineExtractor {
	return &TimelineExtractor{}
}

// Extract records the first event filling each incident role. Events are
// scanned in recorded order; timestamp strings are never parsed or compared,
// so out-of-order input keeps its recorded precedence. An empty timeline is a
// valid input and yields empty markers.
func (e *TimelineExtractor) Extract(timeline []models.TimelineEvent) models.TimelineFacts {
	facts := models.TimelineFacts{EventsCount: len(timeline)}

	for _, event := range timeline {
		switch event.Type {
		case models.EventTrigger:
			if facts.StartTime == "" {
				facts.StartTime = event.Timestamp
			}
		case models.EventAlert, models.EventHuman:
			if facts.DetectionTime == "" {
				facts.DetectionTime = event.Timestamp
			}
		case models.EventMitigation:
			if facts.MitigationTime == "" {
				facts.MitigationTime = event.Timestamp
			}
		case models.EventResolution:
			if facts.ResolutionTime == "" {
				facts.ResolutionTime = event.Timestamp
			}
		}
	}

	return facts
}
