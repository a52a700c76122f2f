package charts

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/masteringmarket/server/internal/modules/market"
)

type fakeHistory struct {
	bars []market.Bar
	err  error
}

func (f *fakeHistory) History(_ context.Context, _ string, _ string) ([]market.Bar, error) {
	return f.bars, f.err
}

func makeBars(n int, close func(i int) float64) []market.Bar {
	bars := make([]market.Bar, n)
	start := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := range bars {
		c := close(i)
		bars[i] = market.Bar{
			Date:   start.AddDate(0, 0, i).Format("2006-01-02"),
			Open:   c,
			High:   c,
			Low:    c,
			Close:  c,
			Volume: 1000,
		}
	}
	return bars
}

func testLog() zerolog.Logger {
	return zerolog.New(nil).Level(zerolog.Disabled)
}

func TestGetChart_SMAOverlays(t *testing.T) {
	// 60 flat closes: SMA-50 exists and equals the close, SMA-200 is absent
	history := &fakeHistory{bars: makeBars(60, func(int) float64 { return 100 })}
	svc := NewService(history, testLog())

	series, err := svc.GetChart(context.Background(), "AAPL", "6mo")
	require.NoError(t, err)

	assert.Len(t, series.Bars, 60)
	require.Len(t, series.SMA50, 11) // 60 - 50 + 1
	assert.InDelta(t, 100.0, series.SMA50[0].Value, 1e-9)
	assert.Equal(t, series.Bars[49].Date, series.SMA50[0].Date)
	assert.Nil(t, series.SMA200)
}

func TestGetChart_Summary(t *testing.T) {
	closes := []float64{100, 102, 101, 103, 105}
	history := &fakeHistory{bars: makeBars(len(closes), func(i int) float64 { return closes[i] })}
	svc := NewService(history, testLog())

	series, err := svc.GetChart(context.Background(), "AAPL", "1mo")
	require.NoError(t, err)

	assert.Equal(t, 105.0, series.Summary.LastClose)
	assert.InDelta(t, 2.0, series.Summary.Change, 1e-9)
	assert.InDelta(t, 2.0/103*100, series.Summary.ChangePct, 1e-9)
	assert.Greater(t, series.Summary.AnnualizedVolatility, 0.0)
}

func TestGetChart_DefaultRange(t *testing.T) {
	history := &fakeHistory{bars: makeBars(5, func(int) float64 { return 100 })}
	svc := NewService(history, testLog())

	series, err := svc.GetChart(context.Background(), "AAPL", "")
	require.NoError(t, err)
	assert.Equal(t, "1y", series.Range)
}

func TestGetChart_InvalidRange(t *testing.T) {
	svc := NewService(&fakeHistory{}, testLog())

	_, err := svc.GetChart(context.Background(), "AAPL", "7d")
	assert.Error(t, err)
}

func TestGetChart_ProviderError(t *testing.T) {
	svc := NewService(&fakeHistory{err: errors.New("upstream down")}, testLog())

	_, err := svc.GetChart(context.Background(), "AAPL", "1y")
	assert.Error(t, err)
}

func TestHandleChart(t *testing.T) {
	history := &fakeHistory{bars: makeBars(10, func(i int) float64 { return 100 + float64(i) })}
	handler := NewHandler(NewService(history, testLog()), testLog())

	router := chi.NewRouter()
	router.Get("/api/charts/{symbol}", handler.HandleChart)

	tests := []struct {
		path   string
		status int
	}{
		{"/api/charts/aapl?range=1mo", http.StatusOK},
		{"/api/charts/AAPL", http.StatusOK},
		{"/api/charts/AAPL?range=bogus", http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)
			assert.Equal(t, tt.status, rec.Code, rec.Body.String())
		})
	}
}

func TestHandleChart_UpstreamFailure(t *testing.T) {
	handler := NewHandler(NewService(&fakeHistory{err: fmt.Errorf("boom")}, testLog()), testLog())

	router := chi.NewRouter()
	router.Get("/api/charts/{symbol}", handler.HandleChart)

	req := httptest.NewRequest(http.MethodGet, "/api/charts/AAPL", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadGateway, rec.Code)
}
