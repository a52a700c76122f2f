// Package advisor generates market-event scenarios and advisory text for
// the trading game. The primary path is Gemini; a deterministic local
// generator and canned strings cover every failure, so callers never see an
// error from this package.
package advisor

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/masteringmarket/server/internal/modules/game"
)

// fallbackMaxImpact bounds the local generator's price impacts.
const fallbackMaxImpact = 0.15

// Fallback is the deterministic scenario generator used when the AI path is
// unavailable. It perturbs up to three symbols with impacts in
// [-fallbackMaxImpact, fallbackMaxImpact].
type Fallback struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewFallback creates a fallback generator. A zero seed derives one from the
// clock; tests pass a fixed seed for reproducible scenarios.
func NewFallback(seed int64) *Fallback {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Fallback{rng: rand.New(rand.NewSource(seed))}
}

// GenerateScenario produces a random market event over the given symbols.
func (f *Fallback) GenerateScenario(symbols []string) game.Scenario {
	f.mu.Lock()
	defer f.mu.Unlock()

	if len(symbols) == 0 {
		return game.Scenario{Text: "Quiet day on the markets. Nothing moves.", Impacts: map[string]float64{}}
	}

	count := 1 + f.rng.Intn(3)
	if count > len(symbols) {
		count = len(symbols)
	}

	picked := f.rng.Perm(len(symbols))[:count]
	impacts := make(map[string]float64, count)
	var parts []string

	for _, idx := range picked {
		symbol := symbols[idx]
		impact := (f.rng.Float64()*2 - 1) * fallbackMaxImpact
		impacts[symbol] = impact

		pct := int(impact*100 + 0.5)
		if impact < 0 {
			pct = int(impact*100 - 0.5)
			parts = append(parts, fmt.Sprintf("%s drops %d%%", symbol, -pct))
		} else {
			parts = append(parts, fmt.Sprintf("%s rallies %d%%", symbol, pct))
		}
	}

	var headline string
	if allNegative(impacts) {
		headline = "Market shock!"
	} else {
		headline = "Market news!"
	}

	return game.Scenario{
		Text:    headline + " " + strings.Join(parts, ", ") + ".",
		Impacts: impacts,
	}
}

func allNegative(impacts map[string]float64) bool {
	for _, v := range impacts {
		if v >= 0 {
			return false
		}
	}
	return len(impacts) > 0
}

// Canned advisory strings returned when the AI path is down.
const (
	cannedRecommendation = "Markets get volatile during events like this. Stay calm, avoid panic selling, and keep positions small enough that no single move can wipe out your portfolio."
	cannedFeedbackAhead  = "You came out of the scenario ahead. Remember that fees eat into every round trip, so frequent trading needs conviction behind it."
	cannedFeedbackBehind = "You ended the scenario down. Losses during sharp moves are normal; what matters is keeping them small and not doubling down out of frustration."
)

// Recommendation returns canned advice for an active scenario.
func (f *Fallback) Recommendation(_ game.Scenario) string {
	return cannedRecommendation
}

// Feedback returns canned feedback comparing start and end value.
func (f *Fallback) Feedback(_ game.Scenario, trades []game.Trade, startValue, endValue float64) string {
	base := cannedFeedbackAhead
	if endValue < startValue {
		base = cannedFeedbackBehind
	}
	return fmt.Sprintf("%s (Trades during scenario: %d, value %.2f -> %.2f.)",
		base, len(trades), startValue, endValue)
}
