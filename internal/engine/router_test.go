package engine

import (
	"strings"
	"testing"

	"github.com/postmortemhq/postmortem-engine/internal/models"
	"github.com/postmortemhq/postmortem-engine/internal/utils"
)

func TestStaticPolicySelectModel(t *testing.T) {
	policy, err := NewStaticPolicy("gemini", "gemini-2.5-flash")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	selection := policy.SelectModel(models.ComplexityAssessment{Level: models.ComplexityHigh})

	if selection.Provider != "gemini" || selection.Model != "gemini-2.5-flash" {
		t.Fatalf("unexpected selection %+v", selection)
	}
	if !strings.Contains(selection.Reason, "HIGH") {
		t.Fatalf("expected reason to echo complexity level, got %q", selection.Reason)
	}
	if !strings.Contains(selection.Reason, "gemini-2.5-flash") {
		t.Fatalf("expected reason to echo model name, got %q", selection.Reason)
	}
}

func TestStaticPolicyRequiresConfiguration(t *testing.T) {
	if _, err := NewStaticPolicy("", "gemini-2.5-flash"); err == nil {
		t.Fatalf("expected error for empty provider")
	}

	_, err := NewStaticPolicy("gemini", "")
	if err == nil {
		t.Fatalf("expected error for empty model")
	}
	if utils.KindOf(err) != utils.KindConfiguration {
		t.Fatalf("expected configuration kind, got %v", utils.KindOf(err))
	}
}
