package advisor

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masteringmarket/server/internal/modules/game"
)

// Without a Gemini client the service must route everything through the
// deterministic fallback and never fail.
func TestService_WithoutAI(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	svc := NewService(nil, NewFallback(42), log)

	ctx := context.Background()
	symbols := []string{"AAPL", "MSFT"}

	scenario := svc.GenerateScenario(ctx, symbols)
	require.NotEmpty(t, scenario.Text)
	require.NotEmpty(t, scenario.Impacts)

	assert.Equal(t, cannedRecommendation, svc.Recommendation(ctx, scenario))

	feedback := svc.Feedback(ctx, scenario, nil, 10000, 9000)
	assert.NotEmpty(t, feedback)
}

func TestService_SatisfiesGameInterfaces(t *testing.T) {
	log := zerolog.New(nil).Level(zerolog.Disabled)
	svc := NewService(nil, NewFallback(1), log)

	var _ game.ScenarioSource = svc
	var _ game.AdvisorSource = svc
}
