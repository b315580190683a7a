// Package genai adapts the Gemini API to ports.Generator.
package genai

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

const systemInstruction = "You write concise morning briefings. Never invent headlines or weather values that were not given to you."

// ContentGenerator is the subset of *genai.Models used by the Generator.
type ContentGenerator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator produces briefing text with a Gemini model.
type Generator struct {
	models      ContentGenerator
	model       string
	temperature float32
}

// Option configures the Generator.
type Option func(*Generator)

// WithModel sets the model name.
func WithModel(model string) Option {
	return func(g *Generator) {
		if model != "" {
			g.model = model
		}
	}
}

// WithTemperature sets the sampling temperature.
func WithTemperature(t float32) Option {
	return func(g *Generator) { g.temperature = t }
}

// New creates a Generator backed by the Gemini API.
func New(ctx context.Context, apiKey string, opts ...Option) (*Generator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key is required")
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	return NewWithModels(client.Models, opts...), nil
}

// NewWithModels creates a Generator around an existing model service.
func NewWithModels(models ContentGenerator, opts ...Option) *Generator {
	g := &Generator{models: models, model: DefaultModel, temperature: 0.4}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Name returns the backend label recorded in the briefing payload.
func (g *Generator) Name() string { return "genai:" + g.model }

// Generate sends prompt to the model and returns the response text.
func (g *Generator) Generate(ctx context.Context, prompt string) (string, error) {
	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr(g.temperature),
	}
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), config)
	if err != nil {
		return "", fmt.Errorf("genai generate: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 {
		return "", fmt.Errorf("genai generate: empty response")
	}
	return resp.Text(), nil
}
