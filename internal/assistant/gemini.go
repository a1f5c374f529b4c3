package assistant

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"google.golang.org/genai"
)

const DefaultModel = "gemini-2.5-flash"

var ErrNoAnswer = errors.New("assistant returned no answer")

const instructions = "You are a bookkeeping assistant for a small business.\n" +
	"Answer the question using only the transactions in the JSON below.\n" +
	"Amounts are in the given currency. \"cash-in\" is income, \"expense\" and \"cash-out\" are money out, \"asset\" is a purchase of equipment.\n" +
	"Be concise. If the data cannot answer the question, say so.\n\n"

// Gemini answers with a Gemini model through the Gen AI SDK.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini creates a client for the Gemini API. An empty model selects DefaultModel.
func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	if model == "" {
		model = DefaultModel
	}

	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Answer(ctx context.Context, req Request) (string, error) {
	prompt, err := Prompt(req)
	if err != nil {
		return "", err
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", fmt.Errorf("generate content: %w", err)
	}

	text := resp.Text()
	if text == "" {
		return "", ErrNoAnswer
	}

	return text, nil
}

// Prompt is the full text sent to the model for req.
func Prompt(req Request) (string, error) {
	body, err := json.MarshalIndent(req, "", "  ")
	if err != nil {
		return "", fmt.Errorf("encode request: %w", err)
	}

	return instructions + string(body), nil
}
