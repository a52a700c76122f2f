package game

// Engine is a two-state machine (inactive / active) that applies a scenario's
// price impacts as a multiplicative overlay on live prices and tracks the
// trades executed while the scenario runs.
//
// At most one scenario is active at a time. Like Account, the engine is
// serialized by its owning Session.
type Engine struct {
	active     bool
	scenario   Scenario
	startValue float64
	trades     []Trade
	last       *Outcome
}

// Outcome captures a finished scenario for feedback generation and the
// Survivor challenge.
type Outcome struct {
	Scenario   Scenario
	Trades     []Trade
	StartValue float64
	EndValue   float64
	// Survived is true when the scenario was a crash and the portfolio value
	// at the end was still above 90% of the starting cash.
	Survived bool
}

// NewEngine creates an engine in the inactive state.
func NewEngine() *Engine {
	return &Engine{}
}

// Active reports whether a scenario is currently running.
func (e *Engine) Active() bool {
	return e.active
}

// Current returns the active scenario, if any.
func (e *Engine) Current() (Scenario, bool) {
	if !e.active {
		return Scenario{}, false
	}
	return e.scenario, true
}

// Last returns the most recently ended scenario's outcome, if any.
func (e *Engine) Last() (Outcome, bool) {
	if e.last == nil {
		return Outcome{}, false
	}
	return *e.last, true
}

// Trigger activates a scenario. totalValue must be the portfolio value at
// the moment of transition; it becomes the scenario's start value. Returns
// ErrScenarioActive if a scenario is already running.
func (e *Engine) Trigger(s Scenario, totalValue float64) error {
	if e.active {
		return ErrScenarioActive
	}

	e.scenario = s
	e.startValue = totalValue
	e.trades = nil
	e.active = true

	return nil
}

// RecordTrade appends a trade to the scenario-scoped log. No-op while
// inactive.
func (e *Engine) RecordTrade(t Trade) {
	if !e.active {
		return
	}
	e.trades = append(e.trades, t)
}

// PriceOverlay returns the price to use for a symbol: base*(1+impact) while
// a scenario with an impact entry for the symbol is active, the base price
// otherwise.
func (e *Engine) PriceOverlay(symbol string, basePrice float64) float64 {
	if !e.active {
		return basePrice
	}
	impact, ok := e.scenario.Impacts[symbol]
	if !ok {
		return basePrice
	}
	return basePrice * (1 + impact)
}

// End deactivates the current scenario. totalValue must be the portfolio
// value at the moment of capture (overlay still applied); startingCash is
// the session's initial balance, used for the crash-survival threshold.
// Returns ErrNoScenario if nothing is active.
func (e *Engine) End(totalValue, startingCash float64) (Outcome, error) {
	if !e.active {
		return Outcome{}, ErrNoScenario
	}

	outcome := Outcome{
		Scenario:   e.scenario,
		Trades:     e.trades,
		StartValue: e.startValue,
		EndValue:   totalValue,
		Survived:   e.scenario.IsCrash() && totalValue > 0.9*startingCash,
	}

	e.last = &outcome
	e.active = false
	e.scenario = Scenario{}
	e.startValue = 0
	e.trades = nil

	return outcome, nil
}
