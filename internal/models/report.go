package models

// PostMortem is the structured narrative returned by a generation backend.
type PostMortem struct {
	Summary             string   `json:"summary"`
	RootCauseHypothesis string   `json:"root_cause_hypothesis"`
	WhatWentWrong       []string `json:"what_went_wrong"`
	WhatWentRight       []string `json:"what_went_right"`
	ActionItems         []string `json:"action_items"`
	Aside               string   `json:"aside,omitempty"`
}

// AnalysisResult is the full output of one pipeline run plus the generated
// narrative, returned to the presentation layer read-only.
type AnalysisResult struct {
	AnalysisID string               `json:"analysisId"`
	Facts      FactBundle           `json:"facts"`
	Complexity ComplexityAssessment `json:"complexity"`
	Selection  ModelSelection       `json:"modelSelection"`
	Report     PostMortem           `json:"result"`
}
