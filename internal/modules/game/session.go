package game

import (
	"sort"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// Session owns the full game state for one authenticated user: account,
// scenario engine and challenges. All mutations go through the session,
// which serializes access and re-evaluates challenges after every state
// transition.
type Session struct {
	mu           sync.Mutex
	userID       string
	startingCash float64
	account      *Account
	engine       *Engine
	challenges   *ChallengeSet
	createdAt    time.Time
}

// NewSession creates a fresh session for a user.
func NewSession(userID string, startingCash float64) *Session {
	return &Session{
		userID:       userID,
		startingCash: startingCash,
		account:      NewAccount(startingCash),
		engine:       NewEngine(),
		challenges:   NewChallengeSet(),
		createdAt:    time.Now(),
	}
}

// UserID returns the owning user's identifier.
func (s *Session) UserID() string {
	return s.userID
}

// overlayValue computes the total portfolio value using the scenario overlay
// on top of the given base prices. Callers must hold s.mu.
func (s *Session) overlayValue(prices map[string]float64) float64 {
	return s.account.TotalValue(func(symbol string) float64 {
		return s.engine.PriceOverlay(symbol, prices[symbol])
	})
}

// reevaluate re-runs the challenge predicates. Callers must hold s.mu.
func (s *Session) reevaluate(prices map[string]float64) {
	total := s.overlayValue(prices)
	roi := (total - s.startingCash) / s.startingCash * 100

	survived := false
	if outcome, ok := s.engine.Last(); ok {
		survived = outcome.Survived
	}

	s.challenges.Evaluate(ChallengeState{
		TradeCount: s.account.TradeCount(),
		ROI:        roi,
		Survived:   survived,
	})
}

// ExecuteTrade runs a buy or sell at the overlay price derived from the
// given base prices, records it with the scenario engine when one is active,
// and re-evaluates challenges. On error no state changes.
func (s *Session) ExecuteTrade(symbol string, side Side, shares int, prices map[string]float64) (Trade, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	price := s.engine.PriceOverlay(symbol, prices[symbol])

	var (
		trade Trade
		err   error
	)
	switch side {
	case SideSell:
		trade, err = s.account.Sell(symbol, shares, price)
	default:
		trade, err = s.account.Buy(symbol, shares, price)
	}
	if err != nil {
		return Trade{}, err
	}

	s.engine.RecordTrade(trade)
	s.reevaluate(prices)

	return trade, nil
}

// TriggerScenario activates a scenario, recording the portfolio value at the
// moment of transition as the scenario's start value.
func (s *Session) TriggerScenario(scenario Scenario, prices map[string]float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	// The engine is still inactive here, so overlayValue yields base prices.
	return s.engine.Trigger(scenario, s.overlayValue(prices))
}

// EndScenario deactivates the current scenario, capturing the end value with
// the overlay still applied, and re-evaluates challenges (Survivor).
func (s *Session) EndScenario(prices map[string]float64) (Outcome, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	outcome, err := s.engine.End(s.overlayValue(prices), s.startingCash)
	if err != nil {
		return Outcome{}, err
	}

	s.reevaluate(prices)

	return outcome, nil
}

// ActiveScenario returns the running scenario, if any.
func (s *Session) ActiveScenario() (Scenario, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Current()
}

// LastOutcome returns the outcome of the most recently ended scenario.
func (s *Session) LastOutcome() (Outcome, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.engine.Last()
}

// TotalValue returns the current portfolio value at overlay prices.
func (s *Session) TotalValue(prices map[string]float64) float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.overlayValue(prices)
}

// Holding is one position in a session snapshot, valued at the overlay price.
type Holding struct {
	Symbol string  `json:"symbol"`
	Shares int     `json:"shares"`
	Price  float64 `json:"price"`
	Value  float64 `json:"value"`
}

// Snapshot is the full session view rendered by the state endpoint.
type Snapshot struct {
	Cash           float64            `json:"cash"`
	StartingCash   float64            `json:"starting_cash"`
	PortfolioValue float64            `json:"portfolio_value"`
	TotalValue     float64            `json:"total_value"`
	ROI            float64            `json:"roi"`
	Prices         map[string]float64 `json:"prices"`
	Holdings       []Holding          `json:"holdings"`
	Trades         []Trade            `json:"trades"`
	Challenges     []Challenge        `json:"challenges"`
	ScenarioActive bool               `json:"scenario_active"`
	ScenarioText   string             `json:"scenario_text,omitempty"`
}

// Snapshot renders the session against the given base prices. All prices in
// the snapshot include the scenario overlay, so cash, holdings and totals
// are consistent within this one evaluation pass.
func (s *Session) Snapshot(prices map[string]float64) Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	overlay := make(map[string]float64, len(prices))
	for symbol, base := range prices {
		overlay[symbol] = s.engine.PriceOverlay(symbol, base)
	}

	var holdings []Holding
	for symbol, shares := range s.account.Holdings() {
		holdings = append(holdings, Holding{
			Symbol: symbol,
			Shares: shares,
			Price:  overlay[symbol],
			Value:  float64(shares) * overlay[symbol],
		})
	}
	sort.Slice(holdings, func(i, j int) bool { return holdings[i].Symbol < holdings[j].Symbol })

	total := s.overlayValue(prices)

	snap := Snapshot{
		Cash:           s.account.Cash(),
		StartingCash:   s.startingCash,
		PortfolioValue: total - s.account.Cash(),
		TotalValue:     total,
		ROI:            (total - s.startingCash) / s.startingCash * 100,
		Prices:         overlay,
		Holdings:       holdings,
		Trades:         s.account.Trades(),
		Challenges:     s.challenges.List(),
	}

	if scenario, ok := s.engine.Current(); ok {
		snap.ScenarioActive = true
		snap.ScenarioText = scenario.Text
	}

	return snap
}

// Manager creates and tracks sessions, one per user. Sessions live for the
// duration of the login and are discarded on logout.
type Manager struct {
	mu           sync.RWMutex
	sessions     map[string]*Session
	startingCash float64
	log          zerolog.Logger
}

// NewManager creates a session manager. startingCash <= 0 falls back to the
// default starting balance.
func NewManager(startingCash float64, log zerolog.Logger) *Manager {
	if startingCash <= 0 {
		startingCash = DefaultStartingCash
	}
	return &Manager{
		sessions:     make(map[string]*Session),
		startingCash: startingCash,
		log:          log.With().Str("component", "game_sessions").Logger(),
	}
}

// Get returns the user's session, creating one on first access.
func (m *Manager) Get(userID string) *Session {
	m.mu.RLock()
	session, ok := m.sessions[userID]
	m.mu.RUnlock()
	if ok {
		return session
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if session, ok := m.sessions[userID]; ok {
		return session
	}

	session = NewSession(userID, m.startingCash)
	m.sessions[userID] = session
	m.log.Debug().Str("user", userID).Msg("Game session created")

	return session
}

// Drop discards the user's session, if any.
func (m *Manager) Drop(userID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, userID)
}
