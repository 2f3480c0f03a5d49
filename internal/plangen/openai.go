package plangen

import (
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
)

// Generator produces raw plan-pair text for a goal/level request. The text is
// expected to be JSON but callers must treat it as untrusted and run it
// through Parse.
type Generator interface {
	Generate(ctx context.Context, goal, level string) (string, error)
}

// OpenAIGenerator calls a chat-completion endpoint to generate the plan pair.
type OpenAIGenerator struct {
	client *openai.Client
	model  string
}

// NewOpenAIGenerator creates a generator bound to the given credential and
// model. Model defaults to gpt-4o-mini when empty.
func NewOpenAIGenerator(apiKey, model string) *OpenAIGenerator {
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &OpenAIGenerator{
		client: openai.NewClient(apiKey),
		model:  model,
	}
}

// BuildPrompt constructs the generation instruction embedding goal and level.
// Unrecognized levels are passed through verbatim; the model decides what to
// make of them.
func BuildPrompt(goal, level string) string {
	if goal == "" {
		goal = "Full Body"
	}
	if level == "" {
		level = "base"
	}
	return fmt.Sprintf(`Sei un personal trainer.
Genera 1 scheda ALLENAMENTO + 1 piano ALIMENTAZIONE.

Vincoli:
- Output: JSON puro (senza markdown, senza testo extra).
- workout.days: array di giorni con label e lista esercizi.
- Ogni esercizio: name, sets (numero), reps (stringa), rest (stringa).
- nutrition.meals: array di pasti con label e items.
- Ogni item: item, calories, protein_g, carbs_g, fats_g (numeri, opzionali).

Obiettivo: %s
Livello: %s

JSON schema:
{ "workout": {"title":"...","notes":"...","days":[{"label":"A","exercises":[{"name":"...","sets":3,"reps":"8-12","rest":"60s"}]}]},
  "nutrition": {"title":"...","notes":"...","meals":[{"label":"Colazione","items":[{"item":"...","calories":400,"protein_g":30,"carbs_g":40,"fats_g":10}]}]} }`, goal, level)
}

// Generate runs one chat completion and returns the raw response text.
func (g *OpenAIGenerator) Generate(ctx context.Context, goal, level string) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: g.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: BuildPrompt(goal, level)},
		},
	}

	resp, err := g.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("chat completion failed: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
