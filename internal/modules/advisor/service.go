package advisor

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/masteringmarket/server/internal/modules/game"
)

// aiTimeout bounds every Gemini call; on expiry the deterministic path
// answers instead.
const aiTimeout = 15 * time.Second

// Service selects between the Gemini path and the deterministic fallback.
// It implements game.ScenarioSource and game.AdvisorSource: no method ever
// fails or blocks past the AI timeout.
type Service struct {
	ai       *Gemini // nil when no API key is configured
	fallback *Fallback
	log      zerolog.Logger
}

// NewService creates an advisor service. ai may be nil.
func NewService(ai *Gemini, fallback *Fallback, log zerolog.Logger) *Service {
	return &Service{
		ai:       ai,
		fallback: fallback,
		log:      log.With().Str("service", "advisor").Logger(),
	}
}

// GenerateScenario returns an AI scenario when possible, otherwise a
// deterministic one. Always returns a valid scenario.
func (s *Service) GenerateScenario(ctx context.Context, symbols []string) game.Scenario {
	if s.ai != nil {
		aiCtx, cancel := context.WithTimeout(ctx, aiTimeout)
		defer cancel()

		scenario, err := s.ai.GenerateScenario(aiCtx, symbols)
		if err == nil {
			return scenario
		}
		s.log.Warn().Err(err).Msg("AI scenario generation failed, using fallback generator")
	}

	return s.fallback.GenerateScenario(symbols)
}

// Recommendation returns advice for an active scenario, degrading to a
// canned string.
func (s *Service) Recommendation(ctx context.Context, scenario game.Scenario) string {
	if s.ai != nil {
		aiCtx, cancel := context.WithTimeout(ctx, aiTimeout)
		defer cancel()

		text, err := s.ai.Recommendation(aiCtx, scenario)
		if err == nil {
			return text
		}
		s.log.Warn().Err(err).Msg("AI recommendation failed, using canned text")
	}

	return s.fallback.Recommendation(scenario)
}

// Feedback returns post-scenario feedback, degrading to a canned string.
func (s *Service) Feedback(ctx context.Context, scenario game.Scenario, trades []game.Trade, startValue, endValue float64) string {
	if s.ai != nil {
		aiCtx, cancel := context.WithTimeout(ctx, aiTimeout)
		defer cancel()

		text, err := s.ai.Feedback(aiCtx, scenario, trades, startValue, endValue)
		if err == nil {
			return text
		}
		s.log.Warn().Err(err).Msg("AI feedback failed, using canned text")
	}

	return s.fallback.Feedback(scenario, trades, startValue, endValue)
}
