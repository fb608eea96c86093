package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/postmortemhq/postmortem-engine/internal/models"
)

// BuildPrompt renders the fact bundle into the generation prompt. Only
// pipeline-derived facts go in; raw logs and metrics never reach the backend.
func BuildPrompt(facts models.FactBundle, selection models.ModelSelection) string {
	factsJSON, err := json.MarshalIndent(facts, "", "  ")
	if err != nil {
		// FactBundle marshalling cannot fail for the types involved; fall
		// back to the sparse rendering rather than aborting generation.
		factsJSON = []byte(fmt.Sprintf("%+v", facts))
	}

	var b strings.Builder
	b.WriteString("You are an SRE writing a blameless post-mortem for a production incident.\n")
	b.WriteString("The following facts were extracted deterministically from the incident record:\n\n")
	b.Write(factsJSON)
	b.WriteString("\n\nRouting decision: ")
	b.WriteString(selection.Reason)
	b.WriteString("\n\nRespond with a single JSON object and nothing else, using exactly these keys:\n")
	b.WriteString(`{"summary": string, "root_cause_hypothesis": string, "what_went_wrong": [string], "what_went_right": [string], "action_items": [string], "aside": string}`)
	b.WriteString("\nGround every statement in the facts above; do not invent signals that are not present.")
	return b.String()
}

// ParseReport decodes a backend's text response into the post-mortem shape.
// Code fences around the JSON body are tolerated since several backends add
// them regardless of instructions.
func ParseReport(text string) (models.PostMortem, error) {
	cleaned := strings.TrimSpace(text)
	cleaned = strings.TrimPrefix(cleaned, "```json")
	cleaned = strings.TrimPrefix(cleaned, "```")
	cleaned = strings.TrimSuffix(cleaned, "```")
	cleaned = strings.TrimSpace(cleaned)

	var report models.PostMortem
	if err := json.Unmarshal([]byte(cleaned), &report); err != nil {
		return models.PostMortem{}, fmt.Errorf("decode report: %w", err)
	}
	if report.Summary == "" || report.RootCauseHypothesis == "" {
		return models.PostMortem{}, fmt.Errorf("report missing required fields")
	}
	return report, nil
}
