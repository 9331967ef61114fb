package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	_ "embed"

	"go.uber.org/zap"

	"github.com/spigell/careerpath/internal/ai"
	"github.com/spigell/careerpath/internal/logger"
)

type contentGenerator interface {
	GenerateJSON(ctx context.Context, prompt string) (string, error)
	Model() string
}

// Extractor turns resume text into an ai.Profile with a Gemini model.
type Extractor struct {
	generator contentGenerator
	logger    *zap.Logger
	maxLogLen int
	maxInput  int
}

//go:embed prompt.md
var promptTemplate string

const (
	defaultMaxLogLength = 200
	// resumes longer than this are cut before prompting
	defaultMaxInputRunes = 20000
)

func NewExtractor(generator contentGenerator, log *zap.Logger, maxLogLength int) *Extractor {
	if maxLogLength <= 0 {
		maxLogLength = defaultMaxLogLength
	}

	return &Extractor{
		generator: generator,
		logger:    logger.WithFields(log, logger.AIFields("gemini", generator.Model())...),
		maxLogLen: maxLogLength,
		maxInput:  defaultMaxInputRunes,
	}
}

func (e *Extractor) Extract(ctx context.Context, resumeText string) (*ai.Profile, error) {
	resumeText = strings.TrimSpace(resumeText)
	if resumeText == "" {
		return nil, errors.New("resume text is empty")
	}

	if runes := []rune(resumeText); len(runes) > e.maxInput {
		e.logger.Debug("truncating resume text for prompt",
			zap.Int("runes", len(runes)),
			zap.Int("limit", e.maxInput),
		)
		resumeText = string(runes[:e.maxInput])
	}

	prompt := buildPrompt(resumeText)

	e.logger.Debug("gemini generate content request",
		zap.Int("prompt_length", utf8.RuneCountInString(prompt)),
		zap.String("prompt_preview", logger.TruncateForLog(prompt, e.maxLogLen)),
	)

	raw, err := e.generator.GenerateJSON(ctx, prompt)
	if err != nil {
		return nil, err
	}

	e.logger.Debug("gemini generate content response",
		zap.Int("response_length", utf8.RuneCountInString(raw)),
		zap.String("response_preview", logger.TruncateForLog(raw, e.maxLogLen)),
	)

	return parseResponse(raw)
}

func buildPrompt(resumeText string) string {
	template := promptTemplate
	if strings.TrimSpace(template) == "" {
		template = "Resume text:\n{{RESUME_TEXT}}\n\nJSON Response:"
	}
	return strings.ReplaceAll(template, "{{RESUME_TEXT}}", resumeText)
}

func parseResponse(raw string) (*ai.Profile, error) {
	cleaned := extractJSON(raw)

	var data map[string]any
	if err := json.Unmarshal([]byte(cleaned), &data); err != nil {
		return nil, fmt.Errorf("parse gemini response: %w", err)
	}

	return &ai.Profile{
		Name:       coerceString(data["name"]),
		Email:      coerceString(data["email"]),
		Phone:      coerceString(data["phone"]),
		Summary:    coerceString(data["summary"]),
		Skills:     coerceStrings(data["skills"]),
		Education:  coerceStrings(data["education"]),
		Experience: coerceStrings(data["experience"]),
	}, nil
}

func extractJSON(raw string) string {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "```") {
		raw = strings.TrimPrefix(raw, "```json")
		raw = strings.TrimPrefix(raw, "```")
		raw = strings.TrimSpace(raw)
		if idx := strings.LastIndex(raw, "```"); idx != -1 {
			raw = raw[:idx]
		}
	}
	raw = strings.Trim(raw, "`")
	return strings.TrimSpace(raw)
}

func coerceString(v any) string {
	switch val := v.(type) {
	case string:
		return strings.TrimSpace(val)
	case fmt.Stringer:
		return strings.TrimSpace(val.String())
	default:
		if v == nil {
			return ""
		}
		bytes, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}
		return string(bytes)
	}
}

// coerceStrings accepts a list or a single comma separated string.
func coerceStrings(v any) []string {
	var items []string
	switch val := v.(type) {
	case []any:
		for _, item := range val {
			items = append(items, coerceString(item))
		}
	case string:
		items = strings.Split(val, ",")
	default:
		return nil
	}

	result := make([]string, 0, len(items))
	for _, item := range items {
		if item = strings.TrimSpace(item); item != "" {
			result = append(result, item)
		}
	}
	if len(result) == 0 {
		return nil
	}
	return result
}
