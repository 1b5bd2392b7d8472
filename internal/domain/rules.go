package domain

import "fmt"

// Direction is the seating rotation used for bidding and play.
type Direction int

const (
	// Clockwise advances turns in ascending seat order.
	Clockwise Direction = iota
	// CounterClockwise advances turns in descending seat order.
	CounterClockwise
)

// Rules parameterizes one table's ruleset. All engine arithmetic flows
// from these values; nothing in the engine hard-codes deck or bid sizes.
type Rules struct {
	Ranks            []Rank       // ranks present in the deck, one card per rank per suit
	Points           map[Rank]int // trick point value per rank
	HandSize         int          // cards per player after the exchange
	KittySize        int          // undealt reserve size
	MinBid           int          // lowest legal opening bid
	BidStep          int          // minimum raise over the standing bid
	MaxBid           int          // highest legal bid
	PenaltyScale     int          // game-score credit per shortfall point on a failed bid
	KittyToLastTrick bool         // credit discard-pile points to the last trick's winner
	Direction        Direction
}

// DefaultRules returns the standard twenty-eight preset: a 36-card deck
// (6 through ace), hands of 8 with a kitty of 4, bids from 16 to 28.
func DefaultRules() Rules {
	return Rules{
		Ranks: []Rank{Rank6, Rank7, Rank8, Rank9, Rank10, RankJ, RankQ, RankK, RankA},
		Points: map[Rank]int{
			RankJ:  3,
			Rank9:  2,
			RankA:  1,
			Rank10: 1,
		},
		HandSize:         8,
		KittySize:        4,
		MinBid:           16,
		BidStep:          1,
		MaxBid:           28,
		PenaltyScale:     1,
		KittyToLastTrick: true,
		Direction:        Clockwise,
	}
}

// DeckSize returns the number of cards the ruleset deals.
func (r Rules) DeckSize() int {
	return len(r.Ranks) * len(Suits)
}

// TotalPoints returns the fixed point total of the deck.
func (r Rules) TotalPoints() int {
	total := 0
	for _, rank := range r.Ranks {
		total += r.Points[rank] * len(Suits)
	}
	return total
}

// PointsFor returns the trick point value of a card under this ruleset.
func (r Rules) PointsFor(c Card) int {
	return r.Points[c.Rank]
}

// Validate rejects rulesets that cannot satisfy the conservation
// invariant: dealt hands plus the kitty must exhaust the deck exactly,
// and the bid range must be reachable from the deck's point total.
func (r Rules) Validate() error {
	if len(r.Ranks) == 0 {
		return fmt.Errorf("rules: empty deck")
	}
	seen := make(map[Rank]bool, len(r.Ranks))
	for _, rank := range r.Ranks {
		if seen[rank] {
			return fmt.Errorf("rules: duplicate rank %s in deck", rank)
		}
		seen[rank] = true
	}
	if r.HandSize <= 0 || r.KittySize < 0 {
		return fmt.Errorf("rules: invalid hand/kitty sizes %d/%d", r.HandSize, r.KittySize)
	}
	if r.HandSize*NumSeats+r.KittySize != r.DeckSize() {
		return fmt.Errorf("rules: %d hands of %d plus kitty of %d do not exhaust a %d-card deck",
			NumSeats, r.HandSize, r.KittySize, r.DeckSize())
	}
	if r.BidStep <= 0 {
		return fmt.Errorf("rules: bid step must be positive")
	}
	if r.MinBid <= 0 || r.MaxBid < r.MinBid {
		return fmt.Errorf("rules: invalid bid range %d..%d", r.MinBid, r.MaxBid)
	}
	if r.MaxBid > r.TotalPoints() {
		return fmt.Errorf("rules: max bid %d exceeds deck point total %d", r.MaxBid, r.TotalPoints())
	}
	if r.PenaltyScale <= 0 {
		return fmt.Errorf("rules: penalty scale must be positive")
	}
	return nil
}
