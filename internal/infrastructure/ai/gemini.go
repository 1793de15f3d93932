package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

const DefaultGeminiModel = "gemini-2.0-flash"

type GeminiProvider struct {
	client *genai.Client
	model  string
}

func NewGeminiProvider(ctx context.Context, apiKey, model string) (*GeminiProvider, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: missing API key")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &GeminiProvider{client: client, model: model}, nil
}

func (p *GeminiProvider) Name() string {
	return "gemini"
}

// Complete asks the model for JSON constrained by a response schema that
// enumerates the categories and conditions.
func (p *GeminiProvider) Complete(ctx context.Context, req Request) ([]byte, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:      genai.Ptr[float32](0),
		ResponseMIMEType: "application/json",
		ResponseSchema:   ResponseSchema(req.Schema),
	}

	resp, err := p.client.Models.GenerateContent(ctx, p.model, genai.Text(req.Prompt), cfg)
	if err != nil {
		return nil, fmt.Errorf("gemini: generate: %w", err)
	}

	text := responseText(resp)
	if text == "" {
		return nil, errors.New("gemini: empty response")
	}
	return []byte(text), nil
}

func ResponseSchema(s OutputSchema) *genai.Schema {
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"searchTerm": {Type: genai.TypeString, Description: "Core item the user is looking for."},
			"category":   {Type: genai.TypeString, Enum: s.Categories, Description: "Product category, if it can be inferred."},
			"condition":  {Type: genai.TypeString, Enum: s.Conditions, Description: "Product condition, if mentioned."},
			"minPrice":   {Type: genai.TypeNumber, Description: "Minimum price in pesos."},
			"maxPrice":   {Type: genai.TypeNumber, Description: "Maximum price in pesos."},
		},
	}
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part != nil && part.Text != "" {
			sb.WriteString(part.Text)
		}
	}
	return sb.String()
}
