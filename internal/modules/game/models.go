// Package game implements the paper-trading simulation: a per-session
// portfolio ledger, scenario-driven price overlays, achievement tracking
// and a persisted leaderboard.
package game

import (
	"errors"
	"strings"
	"time"
)

// FeeRate is the flat transaction fee applied on both buys and sells (0.5%).
const FeeRate = 0.005

// DefaultStartingCash is the starting balance when none is configured.
const DefaultStartingCash = 10000.0

// Errors surfaced to the user as rejections of the requested action.
// None of them mutate session state.
var (
	ErrInsufficientFunds  = errors.New("not enough cash for this purchase")
	ErrInsufficientShares = errors.New("not enough shares to sell")
	ErrInvalidShares      = errors.New("share count must be a positive integer")
	ErrScenarioActive     = errors.New("a scenario is already active")
	ErrNoScenario         = errors.New("no scenario is active")
)

// Side identifies the direction of a trade.
type Side string

const (
	SideBuy  Side = "Buy"
	SideSell Side = "Sell"
)

// Trade is an immutable record of a single executed order.
// Price is the per-share execution price before fees.
type Trade struct {
	Symbol string    `json:"symbol"`
	Side   Side      `json:"side"`
	Shares int       `json:"shares"`
	Price  float64   `json:"price"`
	Time   time.Time `json:"time"`
}

// Scenario is a named market event with per-symbol fractional price impacts.
// An impact of 0.2 means the symbol trades 20% above its base price while
// the scenario is active.
type Scenario struct {
	Text    string             `json:"text"`
	Impacts map[string]float64 `json:"impacts"`
}

// crashKeywords gates the Survivor challenge. The match is a case-insensitive
// substring test on the scenario text, not a scenario-level flag.
var crashKeywords = []string{"crash", "down", "fall", "drop", "decline", "plunge", "collapse"}

// IsCrash reports whether the scenario counts as a market crash for the
// Survivor challenge.
func (s Scenario) IsCrash() bool {
	text := strings.ToLower(s.Text)
	for _, kw := range crashKeywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

// Challenge is a named achievement. Completed is monotonic for the lifetime
// of a session: once set it is never cleared.
type Challenge struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Completed   bool   `json:"completed"`
}
