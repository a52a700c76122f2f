// Package chat implements the stock-market-only assistant. Questions go to
// Gemini with a restrictive system prompt; any failure degrades to a canned
// reply rather than an error.
package chat

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"google.golang.org/genai"
)

// systemPrompt keeps the assistant on topic: stock-market questions only.
const systemPrompt = `You are a Stock Market Expert Chatbot.
You must answer only questions related to the stock market, including: stocks, indices, trading strategies, technical analysis, fundamental analysis, risk management, financial news, investor psychology, and market instruments.

If the user asks anything outside the stock market, you must respond with:
"Sorry, I can only answer stock-market-related questions."

Keep answers simple, clear, and accurate.`

// unavailableReply is returned whenever the model cannot answer.
const unavailableReply = "Sorry, the assistant is unavailable right now. Please try again in a moment."

const (
	chatModel   = "gemini-2.5-flash"
	chatTimeout = 20 * time.Second
)

// QuoteSource supplies current prices for the optional stock comparison.
type QuoteSource interface {
	Price(ctx context.Context, symbol string) float64
}

// Service answers chat questions.
type Service struct {
	client *genai.Client // nil when no API key is configured
	quotes QuoteSource
	log    zerolog.Logger
}

// NewService creates a chat service. client may be nil, in which case every
// question gets the canned unavailable reply.
func NewService(client *genai.Client, quotes QuoteSource, log zerolog.Logger) *Service {
	return &Service{
		client: client,
		quotes: quotes,
		log:    log.With().Str("service", "chat").Logger(),
	}
}

// comparisonContext renders current prices for up to two symbols the user
// wants compared, to be injected into the prompt.
func (s *Service) comparisonContext(ctx context.Context, symbols []string) string {
	if len(symbols) == 0 || s.quotes == nil {
		return "No additional comparison data was provided."
	}
	if len(symbols) > 2 {
		symbols = symbols[:2]
	}

	var b strings.Builder
	b.WriteString("STOCK COMPARISON:\n")
	for _, symbol := range symbols {
		fmt.Fprintf(&b, "- %s current price: %.2f\n", symbol, s.quotes.Price(ctx, symbol))
	}
	return b.String()
}

// Ask answers a user question. Never returns an error: model failures
// degrade to the canned reply.
func (s *Service) Ask(ctx context.Context, question string, compare []string) string {
	question = strings.TrimSpace(question)
	if question == "" {
		return "Please enter a valid stock-market-related question."
	}
	if s.client == nil {
		return unavailableReply
	}

	prompt := fmt.Sprintf("User question:\n%s\n\nAdditional data for comparison (if any):\n%s",
		question, s.comparisonContext(ctx, compare))

	askCtx, cancel := context.WithTimeout(ctx, chatTimeout)
	defer cancel()

	resp, err := s.client.Models.GenerateContent(askCtx, chatModel, genai.Text(prompt), &genai.GenerateContentConfig{
		SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: systemPrompt}}},
	})
	if err != nil {
		s.log.Warn().Err(err).Msg("Chat generation failed")
		return unavailableReply
	}

	answer := strings.TrimSpace(resp.Text())
	if answer == "" {
		return unavailableReply
	}
	return answer
}
