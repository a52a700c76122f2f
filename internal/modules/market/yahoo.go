package market

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"
)

// YahooClient fetches quotes and history from the unauthenticated Yahoo
// Finance chart API.
type YahooClient struct {
	httpClient *http.Client
	baseURL    string
	log        zerolog.Logger
}

// NewYahooClient creates a Yahoo chart API client with a bounded timeout.
func NewYahooClient(log zerolog.Logger) *YahooClient {
	return &YahooClient{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    "https://query1.finance.yahoo.com",
		log:        log.With().Str("client", "yahoo").Logger(),
	}
}

// chartResponse mirrors the subset of the chart API payload we read.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Meta struct {
				RegularMarketPrice float64 `json:"regularMarketPrice"`
			} `json:"meta"`
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []float64 `json:"open"`
					High   []float64 `json:"high"`
					Low    []float64 `json:"low"`
					Close  []float64 `json:"close"`
					Volume []int64   `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *struct {
			Code        string `json:"code"`
			Description string `json:"description"`
		} `json:"error"`
	} `json:"chart"`
}

// fetchChart calls /v8/finance/chart/{symbol} and decodes the response.
func (c *YahooClient) fetchChart(ctx context.Context, symbol, rng, interval string) (*chartResponse, error) {
	endpoint := fmt.Sprintf("%s/v8/finance/chart/%s?range=%s&interval=%s",
		c.baseURL, url.PathEscape(symbol), url.QueryEscape(rng), url.QueryEscape(interval))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build chart request: %w", err)
	}
	// Yahoo rejects requests without a browser-ish user agent.
	req.Header.Set("User-Agent", "Mozilla/5.0 (compatible; masteringmarket/1.0)")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("chart request failed for %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chart request for %s returned status %d", symbol, resp.StatusCode)
	}

	var payload chartResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("failed to decode chart response for %s: %w", symbol, err)
	}

	if payload.Chart.Error != nil {
		return nil, fmt.Errorf("chart API error for %s: %s", symbol, payload.Chart.Error.Description)
	}
	if len(payload.Chart.Result) == 0 {
		return nil, fmt.Errorf("chart API returned no result for %s", symbol)
	}

	return &payload, nil
}

// CurrentPrice returns the latest price for a symbol.
func (c *YahooClient) CurrentPrice(ctx context.Context, symbol string) (float64, error) {
	payload, err := c.fetchChart(ctx, symbol, "1d", "1d")
	if err != nil {
		return 0, err
	}

	result := payload.Chart.Result[0]
	if result.Meta.RegularMarketPrice > 0 {
		return result.Meta.RegularMarketPrice, nil
	}

	// Fall back to the last close of the day.
	if len(result.Indicators.Quote) > 0 {
		closes := result.Indicators.Quote[0].Close
		for i := len(closes) - 1; i >= 0; i-- {
			if closes[i] > 0 {
				return closes[i], nil
			}
		}
	}

	return 0, fmt.Errorf("no price in chart response for %s", symbol)
}

// History returns daily OHLCV bars for a symbol over a range such as
// "1mo", "6mo", "1y", "5y" or "max".
func (c *YahooClient) History(ctx context.Context, symbol, rng string) ([]Bar, error) {
	payload, err := c.fetchChart(ctx, symbol, rng, "1d")
	if err != nil {
		return nil, err
	}

	result := payload.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return nil, fmt.Errorf("no quote data in chart response for %s", symbol)
	}
	quote := result.Indicators.Quote[0]

	bars := make([]Bar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		// Skip rows the API padded with zeroes (holidays, halts).
		if i >= len(quote.Close) || quote.Close[i] <= 0 {
			continue
		}

		bar := Bar{
			Date:  time.Unix(ts, 0).UTC().Format("2006-01-02"),
			Close: quote.Close[i],
		}
		if i < len(quote.Open) {
			bar.Open = quote.Open[i]
		}
		if i < len(quote.High) {
			bar.High = quote.High[i]
		}
		if i < len(quote.Low) {
			bar.Low = quote.Low[i]
		}
		if i < len(quote.Volume) {
			bar.Volume = quote.Volume[i]
		}

		bars = append(bars, bar)
	}

	if len(bars) == 0 {
		return nil, fmt.Errorf("empty history for %s over %s", symbol, rng)
	}

	return bars, nil
}
