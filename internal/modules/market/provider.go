// Package market supplies current and historical prices for the app.
// Live data comes from the Yahoo Finance chart API; a TTL cache, persisted
// snapshots and a fixed default price make sure price lookups never fail
// and never block the game.
package market

import "context"

// Bar is one OHLCV bar of a historical series.
type Bar struct {
	Date   string  `json:"date"` // YYYY-MM-DD
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume int64   `json:"volume"`
}

// Provider fetches live market data. Calls must honor the context deadline.
type Provider interface {
	CurrentPrice(ctx context.Context, symbol string) (float64, error)
	History(ctx context.Context, symbol, rng string) ([]Bar, error)
}

// GameSymbols is the tradeable universe of the simulation.
var GameSymbols = []string{"AAPL", "GOOGL", "MSFT", "TSLA", "AMZN", "NVDA"}

// DefaultPrice is the last-resort fallback when a symbol has never been
// fetched successfully.
const DefaultPrice = 100.0
