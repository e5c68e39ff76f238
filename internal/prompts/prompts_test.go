package prompts

import (
	"encoding/json"
	"strings"
	"testing"

	"interview-prep-simulator/internal/config"
	"interview-prep-simulator/internal/storage"
)

func intPtr(v int) *int { return &v }

func TestHintForBoundaries(t *testing.T) {
	tests := []struct {
		name     string
		previous *int
		want     DifficultyHint
	}{
		{"no previous score", nil, HintNone},
		{"perfect", intPtr(100), HintIncrease},
		{"at increase threshold", intPtr(85), HintIncrease},
		{"just below increase threshold", intPtr(84), HintNone},
		{"at decrease threshold", intPtr(60), HintNone},
		{"just below decrease threshold", intPtr(59), HintDecrease},
		{"zero", intPtr(0), HintDecrease},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HintFor(tt.previous); got != tt.want {
				t.Errorf("HintFor = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDirectiveOnlyForAdjustments(t *testing.T) {
	if HintNone.Directive() != "" {
		t.Error("HintNone must not add a directive")
	}
	if !strings.Contains(HintIncrease.Directive(), "Increase difficulty") {
		t.Errorf("increase directive = %q", HintIncrease.Directive())
	}
	if !strings.Contains(HintDecrease.Directive(), "more fundamental") {
		t.Errorf("decrease directive = %q", HintDecrease.Directive())
	}
}

func TestGenerateQuestionPrompt(t *testing.T) {
	p := QuestionPrompt{
		InterviewType:   storage.InterviewTechnical,
		Role:            "Backend Engineer",
		ExperienceLevel: storage.LevelIntermediate,
		Domain:          "distributed systems",
		Hint:            HintIncrease,
	}

	got := GenerateQuestionPrompt(p, []string{"algorithms", "coding"})

	for _, want := range []string{
		"technical interview question for a intermediate-level Backend Engineer with focus on distributed systems",
		HintIncrease.Directive(),
		"Areas worth probing: algorithms, coding.",
		"time_limit_seconds",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("prompt missing %q:\n%s", want, got)
		}
	}

	p.Domain = ""
	p.Hint = HintNone
	got = GenerateQuestionPrompt(p, nil)
	if strings.Contains(got, "with focus on") || strings.Contains(got, "Areas worth probing") {
		t.Errorf("optional parts leaked into prompt:\n%s", got)
	}
}

func TestQuestionSystemPromptUsesCatalog(t *testing.T) {
	got := QuestionSystemPrompt(config.DefaultConfig())
	if !strings.Contains(got, "For technical interviews: Focus on algorithms") {
		t.Errorf("system prompt missing technical focus:\n%s", got)
	}
	if !strings.Contains(got, "For system design interviews:") {
		t.Errorf("system prompt missing system design focus:\n%s", got)
	}
}

func TestGenerateEvaluationPrompt(t *testing.T) {
	got := GenerateEvaluationPrompt(EvaluationPrompt{
		Question:       "What is a mutex?",
		Answer:         "A lock.",
		ExpectedTopics: []string{"mutual exclusion", "critical section"},
		InterviewType:  storage.InterviewTechnical,
	})
	if !strings.Contains(got, "EXPECTED TOPICS: mutual exclusion, critical section") {
		t.Errorf("topics not embedded:\n%s", got)
	}

	got = GenerateEvaluationPrompt(EvaluationPrompt{Question: "q", Answer: "a", InterviewType: storage.InterviewHR})
	if !strings.Contains(got, "EXPECTED TOPICS: none specified") {
		t.Errorf("empty topics not handled:\n%s", got)
	}
}

func TestSchemasAreValidJSON(t *testing.T) {
	for name, schema := range map[string]json.RawMessage{
		QuestionSchemaName: QuestionSchema,
		FeedbackSchemaName: FeedbackSchema,
	} {
		if !json.Valid(schema) {
			t.Errorf("%s schema is not valid JSON", name)
		}
	}
}
