package advisor

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masteringmarket/server/internal/modules/game"
)

func TestFallback_ImpactsWithinBounds(t *testing.T) {
	f := NewFallback(42)
	symbols := []string{"AAPL", "GOOGL", "MSFT", "TSLA", "AMZN", "NVDA"}

	for i := 0; i < 50; i++ {
		scenario := f.GenerateScenario(symbols)

		require.NotEmpty(t, scenario.Impacts)
		assert.LessOrEqual(t, len(scenario.Impacts), 3)
		for symbol, impact := range scenario.Impacts {
			assert.Contains(t, symbols, symbol)
			assert.LessOrEqual(t, impact, fallbackMaxImpact)
			assert.GreaterOrEqual(t, impact, -fallbackMaxImpact)
		}
	}
}

func TestFallback_TextMatchesImpacts(t *testing.T) {
	f := NewFallback(42)
	symbols := []string{"AAPL", "MSFT"}

	for i := 0; i < 50; i++ {
		scenario := f.GenerateScenario(symbols)

		hasNegative := false
		for symbol, impact := range scenario.Impacts {
			assert.Contains(t, scenario.Text, symbol)
			if impact < 0 {
				hasNegative = true
			}
		}

		// Any scenario with a dropping symbol must read as a crash so the
		// Survivor challenge can fire on it.
		if hasNegative {
			assert.True(t, scenario.IsCrash(), scenario.Text)
		}
	}
}

func TestFallback_AllNegativeIsShock(t *testing.T) {
	f := NewFallback(7)

	for i := 0; i < 200; i++ {
		scenario := f.GenerateScenario([]string{"AAPL", "MSFT", "TSLA"})

		if allNegative(scenario.Impacts) {
			assert.True(t, strings.HasPrefix(scenario.Text, "Market shock!"), scenario.Text)
			return
		}
	}
	t.Fatal("never generated an all-negative scenario")
}

func TestFallback_Deterministic(t *testing.T) {
	symbols := []string{"AAPL", "MSFT", "TSLA"}
	a := NewFallback(99).GenerateScenario(symbols)
	b := NewFallback(99).GenerateScenario(symbols)

	assert.Equal(t, a.Text, b.Text)
	assert.Equal(t, a.Impacts, b.Impacts)
}

func TestFallback_NoSymbols(t *testing.T) {
	scenario := NewFallback(1).GenerateScenario(nil)

	assert.NotEmpty(t, scenario.Text)
	assert.Empty(t, scenario.Impacts)
	assert.False(t, scenario.IsCrash())
}

func TestFallback_Feedback(t *testing.T) {
	f := NewFallback(1)

	ahead := f.Feedback(game.Scenario{}, nil, 10000, 11000)
	assert.Contains(t, ahead, "ahead")

	behind := f.Feedback(game.Scenario{}, []game.Trade{{Symbol: "AAPL"}}, 10000, 9000)
	assert.Contains(t, behind, "down")
	assert.Contains(t, behind, "Trades during scenario: 1")
}
