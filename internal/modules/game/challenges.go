package game

// ChallengeState is the snapshot of session state a challenge predicate is
// evaluated against.
type ChallengeState struct {
	TradeCount int
	ROI        float64 // percent
	Survived   bool    // crash survival from the last ended scenario
}

// ChallengeSet holds the fixed set of achievements for one session.
// Completion flags only ever go from false to true.
type ChallengeSet struct {
	items []*Challenge
}

// NewChallengeSet creates the fixed challenge list in display order.
func NewChallengeSet() *ChallengeSet {
	return &ChallengeSet{
		items: []*Challenge{
			{Name: "Beginner", Description: "Make your first trade"},
			{Name: "Profit Seeker", Description: "Achieve 5% ROI"},
			{Name: "Trader", Description: "Complete 10 trades"},
			{Name: "Survivor", Description: "Keep total portfolio value above 90% of your starting cash during a market crash scenario"},
		},
	}
}

// Evaluate re-runs every predicate against the given state. A predicate
// going false after being true never un-completes a challenge.
func (c *ChallengeSet) Evaluate(state ChallengeState) {
	predicates := map[string]bool{
		"Beginner":      state.TradeCount >= 1,
		"Profit Seeker": state.ROI >= 5,
		"Trader":        state.TradeCount >= 10,
		"Survivor":      state.Survived,
	}

	for _, ch := range c.items {
		if !ch.Completed && predicates[ch.Name] {
			ch.Completed = true
		}
	}
}

// List returns a copy of the challenges in display order.
func (c *ChallengeSet) List() []Challenge {
	out := make([]Challenge, len(c.items))
	for i, ch := range c.items {
		out[i] = *ch
	}
	return out
}

// Completed reports whether the named challenge has been completed.
func (c *ChallengeSet) Completed(name string) bool {
	for _, ch := range c.items {
		if ch.Name == name {
			return ch.Completed
		}
	}
	return false
}
