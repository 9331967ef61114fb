// Package gemini implements resume profile extraction on the Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	defaultModel = "gemini-2.5-flash"
	jsonMIMEType = "application/json"

	systemInstruction = "You are a precise resume parser. Answer with JSON only."
	// extraction should be repeatable, not creative
	temperature float32 = 0.1
)

// ErrEmptyResponse is returned when Gemini answers without any text.
var ErrEmptyResponse = errors.New("gemini api returned empty response")

// Generator asks a Gemini model for JSON answers.
type Generator struct {
	models    *genai.Models
	modelName string
	config    *genai.GenerateContentConfig
}

// NewGenerator connects to the Gemini API backend. An empty model selects gemini-2.5-flash.
func NewGenerator(ctx context.Context, apiKey, model string) (*Generator, error) {
	if apiKey = strings.TrimSpace(apiKey); apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model = strings.TrimSpace(model); model == "" {
		model = defaultModel
	}

	return &Generator{
		models:    client.Models,
		modelName: model,
		config: &genai.GenerateContentConfig{
			ResponseMIMEType:  jsonMIMEType,
			Temperature:       genai.Ptr(temperature),
			SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		},
	}, nil
}

// GenerateJSON sends prompt and returns the model's JSON text.
func (g *Generator) GenerateJSON(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.models == nil {
		return "", errors.New("gemini generator is not initialized")
	}
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("prompt must not be empty")
	}

	resp, err := g.models.GenerateContent(ctx, g.modelName, genai.Text(prompt), g.config)
	if err != nil {
		return "", fmt.Errorf("generate content with %s: %w", g.modelName, err)
	}

	if resp.PromptFeedback != nil && resp.PromptFeedback.BlockReason != "" {
		return "", fmt.Errorf("prompt blocked: %s", resp.PromptFeedback.BlockReason)
	}

	output := strings.TrimSpace(resp.Text())
	if output == "" {
		return "", ErrEmptyResponse
	}

	return output, nil
}

func (g *Generator) Model() string {
	if g == nil {
		return ""
	}
	return g.modelName
}
