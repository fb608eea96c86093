package extractors

import (
	"strings"

	"github.com/postmortemhq/postmortem-engine/internal/models"
)

// maxUniqueErrors caps the distinct error messages carried into the bundle.
const maxUniqueErrors = 5

// LogsExtractor derives counts, flags, and distinct error messages from a raw
// log blob. All matching is case-sensitive literal substring search.
type LogsExtractor struct{}

// NewLogsExtractor constructs a log extractor.
func NewLogsExtractor() *LogsExtractor {
	return &LogsExtractor{}
}

// Extract scans the blob once per concern. ERROR and WARN counts cover the
// whole blob, so a line repeating a marker counts each occurrence. Note an
// empty blob still reports one line: splitting "" yields a single empty
// element, and the downstream token estimate depends on that count staying put.
func (e *LogsExtractor) Extract(logs string) models.LogFacts {
	lines := strings.Split(logs, "\n")

	facts := models.LogFacts{
		LineCount:          len(lines),
		ErrorCount:         strings.Count(logs, "ERROR"),
		WarnCount:          strings.Count(logs, "WARN"),
		HasOOM:             strings.Contains(logs, "Out of memory") || strings.Contains(logs, "heap limit"),
		HasTimeout:         strings.Contains(logs, "Timeout") || strings.Contains(logs, "timed out"),
		HasConnectionError: strings.Contains(logs, "Connection refused") || strings.Contains(logs, "reset by peer"),
	}

	facts.UniqueErrors = uniqueErrorMessages(lines)
	return facts
}

// uniqueErrorMessages pulls the message tail of each ERROR line: the text
// after the last "]" (the whole line when no bracket is present), trimmed.
// Duplicates collapse to their first occurrence.
func uniqueErrorMessages(lines []string) []string {
	seen := make(map[string]struct{})
	unique := make([]string, 0, maxUniqueErrors)

	for _, line := range lines {
		if !strings.Contains(line, "ERROR") {
			continue
		}
		message := line
		if idx := strings.LastIndex(line, "]"); idx >= 0 {
			message = line[idx+1:]
		}
		message = strings.TrimSpace(message)
		if _, ok := seen[message]; ok {
			continue
		}
		seen[message] = struct{}{}
		unique = append(unique, message)
		if len(unique) == maxUniqueErrors {
			break
		}
	}

	return unique
}
