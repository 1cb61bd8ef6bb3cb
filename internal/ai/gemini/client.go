package gemini

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const (
	defaultPrimaryModel  = "gemini-2.5-pro"
	defaultFallbackModel = "gemini-2.5-flash"
)

// modelCaller matches the genai Models surface used by the generator.
type modelCaller interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Generator wraps the Google GenAI client with an immutable ordered list of
// model endpoints. Every call walks the list from the start; the first model
// returning usable text wins. The generator holds no mutable per-call state,
// so concurrent calls only share read-only configuration.
type Generator struct {
	caller modelCaller
	models []string
}

// NewGenerator creates a Generator configured for the Gemini API backend.
// When models is empty, the default primary/fallback pair is used.
func NewGenerator(ctx context.Context, apiKey string, models []string) (*Generator, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	cfg := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}

	client, err := genai.NewClient(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return newGenerator(client.Models, models)
}

func newGenerator(caller modelCaller, models []string) (*Generator, error) {
	cleaned := make([]string, 0, len(models))
	for _, model := range models {
		if model = strings.TrimSpace(model); model != "" {
			cleaned = append(cleaned, model)
		}
	}

	if len(cleaned) == 0 {
		cleaned = []string{defaultPrimaryModel, defaultFallbackModel}
	}

	return &Generator{caller: caller, models: cleaned}, nil
}

// GenerateContent sends the prompt to each configured model in order and
// returns the first textual response. An error is returned only when every
// model fails.
func (g *Generator) GenerateContent(ctx context.Context, prompt string) (string, error) {
	if g == nil || g.caller == nil {
		return "", errors.New("gemini generator is not initialized")
	}

	prompt = strings.TrimSpace(prompt)
	if prompt == "" {
		return "", errors.New("prompt must not be empty")
	}

	var errs []error
	for _, model := range g.models {
		resp, err := g.caller.GenerateContent(ctx, model, genai.Text(prompt), nil)
		if err != nil {
			errs = append(errs, fmt.Errorf("model %s: %w", model, err))
			continue
		}

		output := collectText(resp)
		if output == "" {
			errs = append(errs, fmt.Errorf("model %s: empty response", model))
			continue
		}

		return output, nil
	}

	return "", fmt.Errorf("all gemini models failed: %w", errors.Join(errs...))
}

// Models returns the configured model list, primary first.
func (g *Generator) Models() []string {
	if g == nil {
		return nil
	}
	return g.models
}

func collectText(resp *genai.GenerateContentResponse) string {
	if resp == nil {
		return ""
	}

	var builder strings.Builder
	for _, candidate := range resp.Candidates {
		if candidate == nil || candidate.Content == nil {
			continue
		}
		for _, part := range candidate.Content.Parts {
			if part == nil {
				continue
			}
			text := strings.TrimSpace(part.Text)
			if text == "" {
				continue
			}
			if builder.Len() > 0 {
				builder.WriteString("\n")
			}
			builder.WriteString(text)
		}
	}

	return strings.TrimSpace(builder.String())
}
