// Package charts builds chart series from historical prices: OHLCV points,
// moving-average overlays and simple return statistics. Display-only; the
// game ledger never depends on this package.
package charts

import (
	"context"
	"fmt"
	"math"

	"github.com/markcheno/go-talib"
	"github.com/rs/zerolog"
	"gonum.org/v1/gonum/stat"

	"github.com/masteringmarket/server/internal/modules/market"
)

// tradingDaysPerYear annualizes daily volatility.
const tradingDaysPerYear = 252

// validRanges are the accepted chart ranges (Yahoo chart API vocabulary).
var validRanges = map[string]bool{
	"1mo": true, "3mo": true, "6mo": true,
	"1y": true, "2y": true, "5y": true, "10y": true, "max": true,
}

// HistorySource supplies daily bars for a symbol.
type HistorySource interface {
	History(ctx context.Context, symbol, rng string) ([]market.Bar, error)
}

// Point is one dated value of an overlay series.
type Point struct {
	Date  string  `json:"date"`
	Value float64 `json:"value"`
}

// Summary holds headline numbers for a chart.
type Summary struct {
	LastClose            float64 `json:"last_close"`
	Change               float64 `json:"change"`
	ChangePct            float64 `json:"change_pct"`
	MeanDailyReturn      float64 `json:"mean_daily_return"`
	AnnualizedVolatility float64 `json:"annualized_volatility"`
}

// Series is the full chart payload for one symbol.
type Series struct {
	Symbol  string       `json:"symbol"`
	Range   string       `json:"range"`
	Bars    []market.Bar `json:"bars"`
	SMA50   []Point      `json:"sma_50,omitempty"`
	SMA200  []Point      `json:"sma_200,omitempty"`
	Summary Summary      `json:"summary"`
}

// Service builds chart series.
type Service struct {
	history HistorySource
	log     zerolog.Logger
}

// NewService creates a charts service.
func NewService(history HistorySource, log zerolog.Logger) *Service {
	return &Service{
		history: history,
		log:     log.With().Str("service", "charts").Logger(),
	}
}

// GetChart fetches history for a symbol and derives overlays and stats.
func (s *Service) GetChart(ctx context.Context, symbol, rng string) (*Series, error) {
	if rng == "" {
		rng = "1y"
	}
	if !validRanges[rng] {
		return nil, fmt.Errorf("invalid range: %s", rng)
	}

	bars, err := s.history.History(ctx, symbol, rng)
	if err != nil {
		return nil, fmt.Errorf("failed to get history for %s: %w", symbol, err)
	}

	closes := make([]float64, len(bars))
	for i, b := range bars {
		closes[i] = b.Close
	}

	series := &Series{
		Symbol:  symbol,
		Range:   rng,
		Bars:    bars,
		SMA50:   smaOverlay(bars, closes, 50),
		SMA200:  smaOverlay(bars, closes, 200),
		Summary: summarize(closes),
	}

	return series, nil
}

// smaOverlay computes a simple moving average overlay aligned with the bars.
// Returns nil when the series is shorter than the period.
func smaOverlay(bars []market.Bar, closes []float64, period int) []Point {
	if len(closes) < period {
		return nil
	}

	sma := talib.Sma(closes, period)

	// talib pads the warm-up window with zeroes; skip it.
	points := make([]Point, 0, len(sma)-period+1)
	for i := period - 1; i < len(sma); i++ {
		points = append(points, Point{Date: bars[i].Date, Value: sma[i]})
	}
	return points
}

// summarize derives headline numbers from the close series.
func summarize(closes []float64) Summary {
	var s Summary
	if len(closes) == 0 {
		return s
	}

	s.LastClose = closes[len(closes)-1]
	if len(closes) >= 2 {
		prev := closes[len(closes)-2]
		s.Change = s.LastClose - prev
		if prev > 0 {
			s.ChangePct = s.Change / prev * 100
		}
	}

	if len(closes) >= 3 {
		returns := make([]float64, 0, len(closes)-1)
		for i := 1; i < len(closes); i++ {
			if closes[i-1] > 0 {
				returns = append(returns, closes[i]/closes[i-1]-1)
			}
		}
		if len(returns) >= 2 {
			s.MeanDailyReturn = stat.Mean(returns, nil)
			s.AnnualizedVolatility = stat.StdDev(returns, nil) * math.Sqrt(tradingDaysPerYear)
		}
	}

	return s
}
