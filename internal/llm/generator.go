// Package llm abstracts the generative-language backend behind a single
// stateless operation: generate(prompt) → raw text. The concrete
// implementation talks to Gemini via google.golang.org/genai; tests inject
// fakes through the Generator interface.
//
// The client imposes no timeout of its own — latency is backend-controlled
// and the caller's context bounds the call if desired.
package llm

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is the generation model used when none is configured.
const DefaultModel = "gemini-1.5-pro"

// Generator produces freeform text for a prompt. Implementations are
// stateless: every call is independent, with no memory of prior prompts.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Gemini is the production Generator backed by the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini constructs a Gemini generator with the given API key and model
// name. An empty model falls back to DefaultModel.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("gemini api key is required")
	}
	if model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey: apiKey,
	})
	if err != nil {
		return nil, err
	}
	return &Gemini{client: client, model: model}, nil
}

// Generate sends the prompt as a single user turn and returns the
// concatenated text of the response. Transport and quota failures are
// returned raw; classification happens in the report service.
func (g *Gemini) Generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	text := resp.Text()
	if strings.TrimSpace(text) == "" {
		return "", errors.New("empty response from model")
	}
	return text, nil
}
