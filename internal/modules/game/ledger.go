package game

import "time"

// Account holds the cash balance, share holdings and trade history for one
// session. It is not safe for concurrent use; the owning Session serializes
// access.
type Account struct {
	cash     float64
	holdings map[string]int
	trades   []Trade
}

// NewAccount creates an account with the given starting cash and no holdings.
func NewAccount(startingCash float64) *Account {
	return &Account{
		cash:     startingCash,
		holdings: make(map[string]int),
	}
}

// Cash returns the current cash balance.
func (a *Account) Cash() float64 {
	return a.cash
}

// Shares returns the number of shares held for a symbol (0 if none).
func (a *Account) Shares(symbol string) int {
	return a.holdings[symbol]
}

// Holdings returns a copy of the holdings map, omitting zero positions.
func (a *Account) Holdings() map[string]int {
	out := make(map[string]int, len(a.holdings))
	for symbol, shares := range a.holdings {
		if shares > 0 {
			out[symbol] = shares
		}
	}
	return out
}

// Trades returns a copy of the trade history in chronological order.
func (a *Account) Trades() []Trade {
	out := make([]Trade, len(a.trades))
	copy(out, a.trades)
	return out
}

// TradeCount returns the number of executed trades.
func (a *Account) TradeCount() int {
	return len(a.trades)
}

// Buy purchases shares at unitPrice plus the transaction fee. The mutation is
// atomic: on error nothing changes.
func (a *Account) Buy(symbol string, shares int, unitPrice float64) (Trade, error) {
	if shares <= 0 {
		return Trade{}, ErrInvalidShares
	}

	cost := float64(shares) * unitPrice * (1 + FeeRate)
	if cost > a.cash {
		return Trade{}, ErrInsufficientFunds
	}

	a.cash -= cost
	a.holdings[symbol] += shares

	trade := Trade{
		Symbol: symbol,
		Side:   SideBuy,
		Shares: shares,
		Price:  unitPrice,
		Time:   time.Now(),
	}
	a.trades = append(a.trades, trade)

	return trade, nil
}

// Sell disposes of shares at unitPrice minus the transaction fee. The
// mutation is atomic: on error nothing changes.
func (a *Account) Sell(symbol string, shares int, unitPrice float64) (Trade, error) {
	if shares <= 0 {
		return Trade{}, ErrInvalidShares
	}

	if a.holdings[symbol] < shares {
		return Trade{}, ErrInsufficientShares
	}

	a.holdings[symbol] -= shares
	a.cash += float64(shares) * unitPrice * (1 - FeeRate)

	trade := Trade{
		Symbol: symbol,
		Side:   SideSell,
		Shares: shares,
		Price:  unitPrice,
		Time:   time.Now(),
	}
	a.trades = append(a.trades, trade)

	return trade, nil
}

// TotalValue returns cash plus the market value of all holdings, using the
// supplied price lookup. Pure: no side effects.
func (a *Account) TotalValue(price func(symbol string) float64) float64 {
	total := a.cash
	for symbol, shares := range a.holdings {
		if shares > 0 {
			total += float64(shares) * price(symbol)
		}
	}
	return total
}
