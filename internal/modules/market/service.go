package market

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// cacheTTL is how long a fetched quote stays fresh.
const cacheTTL = 5 * time.Minute

// fetchTimeout bounds a single upstream price fetch so the game never waits
// on the provider.
const fetchTimeout = 5 * time.Second

type cachedQuote struct {
	price     float64
	fetchedAt time.Time
}

// Service layers caching and fallback over a Provider. Price lookups always
// succeed: fresh cache, live fetch, stale cache (including the persisted
// snapshot from a previous run), then DefaultPrice, in that order.
type Service struct {
	provider  Provider
	snapshots *SnapshotRepository // optional
	symbols   []string
	log       zerolog.Logger

	mu    sync.RWMutex
	cache map[string]cachedQuote
}

// NewService creates a market service for the given symbol universe. When a
// snapshot repository is supplied, the last persisted quotes seed the cache
// as stale entries.
func NewService(provider Provider, snapshots *SnapshotRepository, symbols []string, log zerolog.Logger) *Service {
	s := &Service{
		provider:  provider,
		snapshots: snapshots,
		symbols:   symbols,
		cache:     make(map[string]cachedQuote),
		log:       log.With().Str("service", "market").Logger(),
	}

	if snapshots != nil {
		if quotes, err := snapshots.Load(); err != nil {
			s.log.Warn().Err(err).Msg("Failed to load quote snapshot, starting cold")
		} else if quotes != nil {
			for symbol, price := range quotes {
				// Zero fetchedAt marks the entry stale but usable.
				s.cache[symbol] = cachedQuote{price: price}
			}
			s.log.Info().Int("symbols", len(quotes)).Msg("Seeded price cache from persisted snapshot")
		}
	}

	return s
}

// Symbols returns the tradeable symbol universe.
func (s *Service) Symbols() []string {
	out := make([]string, len(s.symbols))
	copy(out, s.symbols)
	return out
}

// Price returns the current base price for a symbol. Never fails: falls back
// to the last known price, then to DefaultPrice.
func (s *Service) Price(ctx context.Context, symbol string) float64 {
	s.mu.RLock()
	cached, ok := s.cache[symbol]
	s.mu.RUnlock()

	if ok && time.Since(cached.fetchedAt) < cacheTTL {
		return cached.price
	}

	fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	price, err := s.provider.CurrentPrice(fetchCtx, symbol)
	if err != nil {
		s.log.Warn().Err(err).Str("symbol", symbol).Msg("Price fetch failed, using fallback")
		if ok {
			return cached.price
		}
		return DefaultPrice
	}

	s.mu.Lock()
	s.cache[symbol] = cachedQuote{price: price, fetchedAt: time.Now()}
	s.mu.Unlock()

	return price
}

// Prices returns current base prices for the whole symbol universe.
func (s *Service) Prices(ctx context.Context) map[string]float64 {
	prices := make(map[string]float64, len(s.symbols))
	for _, symbol := range s.symbols {
		prices[symbol] = s.Price(ctx, symbol)
	}
	return prices
}

// History returns daily bars for a symbol. Unlike quotes, history is
// display-only, so upstream errors surface to the caller.
func (s *Service) History(ctx context.Context, symbol, rng string) ([]Bar, error) {
	return s.provider.History(ctx, symbol, rng)
}

// Refresh fetches fresh quotes for every symbol and persists the snapshot.
// Symbols that fail keep their previous cache entry.
func (s *Service) Refresh(ctx context.Context) error {
	quotes := make(map[string]float64, len(s.symbols))

	for _, symbol := range s.symbols {
		fetchCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
		price, err := s.provider.CurrentPrice(fetchCtx, symbol)
		cancel()

		if err != nil {
			s.log.Warn().Err(err).Str("symbol", symbol).Msg("Refresh fetch failed")
			continue
		}

		s.mu.Lock()
		s.cache[symbol] = cachedQuote{price: price, fetchedAt: time.Now()}
		s.mu.Unlock()

		quotes[symbol] = price
	}

	if s.snapshots != nil && len(quotes) > 0 {
		if err := s.snapshots.Save(quotes); err != nil {
			s.log.Warn().Err(err).Msg("Failed to persist quote snapshot")
		}
	}

	return nil
}

// RefreshJob adapts Service.Refresh to the scheduler's Job interface.
type RefreshJob struct {
	service *Service
}

// NewRefreshJob creates the periodic price refresh job.
func NewRefreshJob(service *Service) *RefreshJob {
	return &RefreshJob{service: service}
}

// Name implements scheduler.Job.
func (j *RefreshJob) Name() string {
	return "market-price-refresh"
}

// Run implements scheduler.Job.
func (j *RefreshJob) Run() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()
	return j.service.Refresh(ctx)
}
