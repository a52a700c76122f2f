package advisor

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"google.golang.org/genai"

	"github.com/masteringmarket/server/internal/modules/game"
)

// geminiModel is the default model for scenario and advisory generation.
const geminiModel = "gemini-2.5-flash"

// maxImpact clamps AI-generated impacts to the scenario convention.
const maxImpact = 0.25

// Gemini generates scenarios and advisory text with the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	log    zerolog.Logger
}

// NewGemini wraps an existing Gemini API client for scenario and advisory
// generation.
func NewGemini(client *genai.Client, log zerolog.Logger) *Gemini {
	return &Gemini{
		client: client,
		model:  geminiModel,
		log:    log.With().Str("client", "gemini").Logger(),
	}
}

// scenarioPayload is the JSON shape we ask the model for.
type scenarioPayload struct {
	Text    string             `json:"text"`
	Impacts map[string]float64 `json:"impacts"`
}

// GenerateScenario asks the model for a market event over the given symbols.
func (g *Gemini) GenerateScenario(ctx context.Context, symbols []string) (game.Scenario, error) {
	prompt := fmt.Sprintf(`Invent one short fictional stock-market event for a trading simulation game.
Available symbols: %s.
Respond with JSON only, shaped as {"text": "...", "impacts": {"SYMBOL": fraction}}.
"text" is one sentence describing the event. "impacts" maps 1 to 3 of the
available symbols to a fractional price impact between -0.25 and 0.25
(e.g. -0.1 means the price falls 10%% while the event lasts).`,
		strings.Join(symbols, ", "))

	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return game.Scenario{}, fmt.Errorf("scenario generation failed: %w", err)
	}

	var payload scenarioPayload
	if err := json.Unmarshal([]byte(resp.Text()), &payload); err != nil {
		return game.Scenario{}, fmt.Errorf("failed to decode scenario JSON: %w", err)
	}
	if payload.Text == "" || len(payload.Impacts) == 0 {
		return game.Scenario{}, fmt.Errorf("scenario response incomplete")
	}

	// Keep only known symbols and clamp impacts to the convention.
	known := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		known[s] = true
	}

	impacts := make(map[string]float64)
	for symbol, impact := range payload.Impacts {
		if !known[symbol] {
			continue
		}
		if impact > maxImpact {
			impact = maxImpact
		}
		if impact < -maxImpact {
			impact = -maxImpact
		}
		impacts[symbol] = impact
	}
	if len(impacts) == 0 {
		return game.Scenario{}, fmt.Errorf("scenario response named no known symbols")
	}

	return game.Scenario{Text: payload.Text, Impacts: impacts}, nil
}

// generate runs a plain-text prompt through the model.
func (g *Gemini) generate(ctx context.Context, prompt string) (string, error) {
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(prompt), nil)
	if err != nil {
		return "", err
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return "", fmt.Errorf("empty model response")
	}
	return text, nil
}

// Recommendation asks the model for advice on an active scenario.
func (g *Gemini) Recommendation(ctx context.Context, scenario game.Scenario) (string, error) {
	prompt := fmt.Sprintf(`A trading-simulation player is in the middle of this market event: %q.
In 2-3 sentences, give beginner-friendly advice on how to handle it.
Educational tone, no real investment advice.`, scenario.Text)
	return g.generate(ctx, prompt)
}

// Feedback asks the model to review the player's trades during a scenario.
func (g *Gemini) Feedback(ctx context.Context, scenario game.Scenario, trades []game.Trade, startValue, endValue float64) (string, error) {
	var lines []string
	for _, t := range trades {
		lines = append(lines, fmt.Sprintf("%s %d %s at %.2f", t.Side, t.Shares, t.Symbol, t.Price))
	}
	if len(lines) == 0 {
		lines = append(lines, "no trades")
	}

	prompt := fmt.Sprintf(`A trading-simulation scenario just ended: %q.
Portfolio value went from %.2f to %.2f. Trades during the scenario: %s.
In 2-3 sentences, give the player constructive feedback on how they handled it.
Educational tone, no real investment advice.`,
		scenario.Text, startValue, endValue, strings.Join(lines, "; "))
	return g.generate(ctx, prompt)
}
