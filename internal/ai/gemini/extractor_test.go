package gemini

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

type stubGenerator struct {
	response string
	err      error
	prompts  []string
}

func (s *stubGenerator) GenerateJSON(_ context.Context, prompt string) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.response, s.err
}

func (s *stubGenerator) Model() string { return "stub-model" }

func TestExtractorParsesProfile(t *testing.T) {
	gen := &stubGenerator{response: "```json\n" + `{
		"name": " Jane Doe ",
		"email": "jane@example.com",
		"phone": null,
		"summary": "Backend engineer.",
		"skills": ["Go", " ", "PostgreSQL"],
		"education": "BSc Computer Science, MSc Data Science",
		"experience": []
	}` + "\n```"}

	core, observed := observer.New(zapcore.DebugLevel)
	extractor := NewExtractor(gen, zap.New(core), 0)

	profile, err := extractor.Extract(context.Background(), "Jane Doe\njane@example.com\nGo developer")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if profile.Name != "Jane Doe" || profile.Email != "jane@example.com" || profile.Phone != "" {
		t.Fatalf("unexpected contact fields: %+v", profile)
	}
	if len(profile.Skills) != 2 || profile.Skills[0] != "Go" || profile.Skills[1] != "PostgreSQL" {
		t.Fatalf("unexpected skills: %v", profile.Skills)
	}
	if len(profile.Education) != 2 || profile.Education[1] != "MSc Data Science" {
		t.Fatalf("unexpected education: %v", profile.Education)
	}
	if profile.Experience != nil {
		t.Fatalf("expected nil experience, got %v", profile.Experience)
	}

	if len(gen.prompts) != 1 || !strings.Contains(gen.prompts[0], "Go developer") {
		t.Fatalf("resume text not placed in prompt: %v", gen.prompts)
	}
	if strings.Contains(gen.prompts[0], "{{RESUME_TEXT}}") {
		t.Fatalf("placeholder left in prompt")
	}

	entries := observed.FilterMessage("gemini generate content request").All()
	if len(entries) != 1 {
		t.Fatalf("expected request log entry, got %d", len(entries))
	}
	if entries[0].ContextMap()["ai_model"] != "stub-model" {
		t.Fatalf("expected model field, got %v", entries[0].ContextMap())
	}
}

func TestExtractorErrors(t *testing.T) {
	t.Run("empty text", func(t *testing.T) {
		extractor := NewExtractor(&stubGenerator{}, nil, 0)
		if _, err := extractor.Extract(context.Background(), "   "); err == nil {
			t.Fatal("expected error for empty resume text")
		}
	})

	t.Run("generator failure", func(t *testing.T) {
		boom := errors.New("quota exceeded")
		extractor := NewExtractor(&stubGenerator{err: boom}, nil, 0)
		if _, err := extractor.Extract(context.Background(), "text"); !errors.Is(err, boom) {
			t.Fatalf("expected generator error, got %v", err)
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		extractor := NewExtractor(&stubGenerator{response: "not json"}, nil, 0)
		if _, err := extractor.Extract(context.Background(), "text"); err == nil {
			t.Fatal("expected parse error")
		}
	})
}

func TestExtractorTruncatesInput(t *testing.T) {
	gen := &stubGenerator{response: `{}`}
	extractor := NewExtractor(gen, nil, 0)
	extractor.maxInput = 5

	if _, err := extractor.Extract(context.Background(), "abcdefghij"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if strings.Contains(gen.prompts[0], "abcdef") || !strings.Contains(gen.prompts[0], "abcde") {
		t.Fatalf("expected truncated resume text in prompt")
	}
}

func TestNewGeneratorRequiresKey(t *testing.T) {
	if _, err := NewGenerator(context.Background(), "  ", ""); err == nil {
		t.Fatal("expected error for empty api key")
	}
}
