// Package codegen asks a language model for Python code and pulls the code
// out of its markdown reply.
package codegen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is the model named by the default config.
const DefaultModel = "gemini-2.5-flash"

// ErrNoResponse is returned when the model replies without any text.
var ErrNoResponse = errors.New("model returned no content")

// Generator produces a markdown reply for a prompt.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiGenerator calls the Gemini API.
type GeminiGenerator struct {
	cli   *genai.Client
	model string
}

// NewGemini returns a GeminiGenerator. An empty model falls back to
// DefaultModel. An empty apiKey lets the client read GEMINI_API_KEY or
// GOOGLE_API_KEY itself.
func NewGemini(ctx context.Context, apiKey, model string) (*GeminiGenerator, error) {
	if model == "" {
		model = DefaultModel
	}
	cli, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &GeminiGenerator{cli: cli, model: model}, nil
}

// Model reports the model name requests are sent to.
func (g *GeminiGenerator) Model() string { return g.model }

// Generate sends prompt as a single user turn and returns the reply text.
func (g *GeminiGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: prompt}}}},
		&genai.GenerateContentConfig{ResponseMIMEType: "text/plain"},
	)
	if err != nil {
		return "", fmt.Errorf("generating with %s: %w", g.model, err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrNoResponse
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		b.WriteString(p.Text)
	}
	if b.Len() == 0 {
		return "", ErrNoResponse
	}
	return b.String(), nil
}

// Prompt wraps a user request with instructions to answer in one fenced
// python block of top-level code.
func Prompt(request, existing string) string {
	var b strings.Builder
	b.WriteString("Write Python code for the following request. Reply with a single ```python fenced block ")
	b.WriteString("containing only import statements and top-level function or class definitions.\n\n")
	b.WriteString("Request:\n")
	b.WriteString(strings.TrimSpace(request))
	b.WriteString("\n")
	if strings.TrimSpace(existing) != "" {
		b.WriteString("\nExisting module:\n```python\n")
		b.WriteString(strings.TrimRight(existing, "\n"))
		b.WriteString("\n```\n")
	}
	return b.String()
}

// Ask sends request to gen and extracts the python code from the reply.
func Ask(ctx context.Context, gen Generator, request, existing string) (*Snippet, error) {
	reply, err := gen.Generate(ctx, Prompt(request, existing))
	if err != nil {
		return nil, err
	}
	return Extract(ctx, reply)
}
