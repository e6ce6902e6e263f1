package assistant

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const DefaultModelName = "gemini-2.5-flash"

// Gemini is the Model backed by the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a client for the Gemini API with the given key.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: api key is required")
	}
	if model == "" {
		model = DefaultModelName
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini: create client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Generate(ctx context.Context, system, input string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(input), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(system, genai.RoleUser),
		ResponseMIMEType:  "application/json",
		ResponseSchema:    replySchema,
	})
	if err != nil {
		return "", fmt.Errorf("gemini: generate content: %w", err)
	}
	text := resp.Text()
	if text == "" {
		return "", errors.New("gemini: empty response")
	}
	return text, nil
}

var replySchema = &genai.Schema{
	Type: genai.TypeObject,
	Properties: map[string]*genai.Schema{
		"action": {Type: genai.TypeString, Description: "One of 'create', 'analysis', 'chat'"},
		"text":   {Type: genai.TypeString, Description: "Helpful response text"},
		"data": {
			Type: genai.TypeObject,
			Properties: map[string]*genai.Schema{
				"amount":    {Type: genai.TypeNumber},
				"type":      {Type: genai.TypeString},
				"accountId": {Type: genai.TypeString},
				"tags":      {Type: genai.TypeArray, Items: &genai.Schema{Type: genai.TypeString}},
				"note":      {Type: genai.TypeString},
			},
		},
	},
	Required: []string{"action", "text"},
}
