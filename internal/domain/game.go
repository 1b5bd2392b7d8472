package domain

import (
	"fmt"
	"math/rand"
)

// NumSeats is the fixed number of player positions at a table.
const NumSeats = 4

// Seat identifies a player position, 0..3.
type Seat int

// Side pairs opposing seats: seats 0 and 2 form SideEvens, 1 and 3 SideOdds.
type Side int

const (
	SideEvens Side = iota
	SideOdds
)

// SideOf returns the side a seat belongs to.
func SideOf(s Seat) Side {
	if s%2 == 0 {
		return SideEvens
	}
	return SideOdds
}

// Opponent returns the other side.
func (s Side) Opponent() Side {
	return 1 - s
}

// Phase is the lifecycle stage of a game session.
type Phase string

const (
	PhaseCreated        Phase = "created"
	PhaseDealing        Phase = "dealing"
	PhaseBidding        Phase = "bidding"
	PhaseTrumpSelection Phase = "trump_selection"
	PhaseCardExchange   Phase = "card_exchange"
	PhasePlaying        Phase = "playing"
	PhaseScoring        Phase = "scoring"
	PhaseCompleted      Phase = "completed"
	// PhaseVoid is the absorbing state reached when every player passes
	// without a bid. The table redeals by starting a fresh game.
	PhaseVoid Phase = "void"
)

// BidKind tags the three bid variants.
type BidKind string

const (
	// BidNumeric raises the standing bid to Amount.
	BidNumeric BidKind = "bid"
	// BidPass exits bidding permanently for this hand.
	BidPass BidKind = "pass"
	// BidCheck re-affirms the standing bid without raising.
	BidCheck BidKind = "check"
)

// Bid is one entry in the bidding history.
type Bid struct {
	Seat   Seat    `json:"seat"`
	Kind   BidKind `json:"kind"`
	Amount int     `json:"amount,omitempty"` // set only for BidNumeric
}

// TrickPlay is a single (seat, card) play inside a trick.
type TrickPlay struct {
	Seat Seat `json:"seat"`
	Card Card `json:"card"`
}

// Trick is one completed or in-progress round of plays.
type Trick struct {
	Leader  Seat        `json:"leader"`
	LedSuit *Suit       `json:"led_suit,omitempty"`
	Plays   []TrickPlay `json:"plays"`
	Winner  *Seat       `json:"winner,omitempty"` // set once the trick resolves
	Points  int         `json:"points"`           // set once the trick resolves
}

// ScoreRecord is the immutable outcome of a completed hand.
type ScoreRecord struct {
	BidWinner   Seat         `json:"bid_winner"`
	BiddingSide Side         `json:"bidding_side"`
	BidValue    int          `json:"bid_value"`
	PointsTaken int          `json:"points_taken"`
	Won         bool         `json:"won"`
	Margin      int          `json:"margin"`    // points over the bid when won
	Shortfall   int          `json:"shortfall"` // points under the bid when lost
	SideCredits map[Side]int `json:"side_credits"`
}

// Game is the aggregate root for one hand at a table. It is mutated only
// by the engine functions in this package, always behind the owning
// session's critical section.
type Game struct {
	ID      string
	TableID string
	Rules   Rules
	Phase   Phase

	Dealer Seat
	Hands  [NumSeats][]Card
	Kitty  []Card // reserve; after the exchange, the discard pile

	// Bidding
	BidHistory  []Bid
	Passed      [NumSeats]bool
	BidTurn     Seat
	StandingBid int  // 0 until the first numeric bid
	BidWinner   Seat // valid once StandingBid > 0
	// ChecksSince counts consecutive checks since the last numeric bid;
	// a full answer from every active non-leading bidder resolves bidding.
	ChecksSince int

	Trump        *Suit
	CurrentTrick *Trick
	Tricks       []Trick
	SidePoints   map[Side]int

	Score *ScoreRecord
}

// NewGame deals a fresh hand for the table: full deck shuffled, hands and
// kitty split per the rules, bidding opened left of the dealer.
func NewGame(id, tableID string, rules Rules, dealer Seat, rng *rand.Rand) (*Game, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	g := &Game{
		ID:      id,
		TableID: tableID,
		Rules:   rules,
		Phase:   PhaseDealing,
		Dealer:  dealer,
		SidePoints: map[Side]int{
			SideEvens: 0,
			SideOdds:  0,
		},
	}

	deck := ShuffleDeck(NewDeck(rules), rng)
	idx := 0
	for seat := 0; seat < NumSeats; seat++ {
		g.Hands[seat] = append([]Card(nil), deck[idx:idx+rules.HandSize]...)
		idx += rules.HandSize
	}
	g.Kitty = append([]Card(nil), deck[idx:]...)

	g.BidTurn = g.NextSeat(dealer)
	g.Phase = PhaseBidding
	return g, nil
}

// NextSeat returns the seat after s in the rotation direction.
func (g *Game) NextSeat(s Seat) Seat {
	if g.Rules.Direction == CounterClockwise {
		return (s + NumSeats - 1) % NumSeats
	}
	return (s + 1) % NumSeats
}

// ActiveBidders returns the number of seats still in the bidding.
func (g *Game) ActiveBidders() int {
	n := 0
	for seat := 0; seat < NumSeats; seat++ {
		if !g.Passed[seat] {
			n++
		}
	}
	return n
}

// CurrentTurn returns the seat expected to act in the current phase and
// whether any seat is expected to act at all.
func (g *Game) CurrentTurn() (Seat, bool) {
	switch g.Phase {
	case PhaseBidding:
		return g.BidTurn, true
	case PhaseTrumpSelection, PhaseCardExchange:
		return g.BidWinner, true
	case PhasePlaying:
		if g.CurrentTrick == nil {
			return 0, false
		}
		seat := g.CurrentTrick.Leader
		for i := 0; i < len(g.CurrentTrick.Plays); i++ {
			seat = g.NextSeat(seat)
		}
		return seat, true
	default:
		return 0, false
	}
}

// Clone returns a deep copy of the game. Callers that hold a clone may
// read it freely while the original keeps mutating.
func (g *Game) Clone() *Game {
	c := *g
	for seat := 0; seat < NumSeats; seat++ {
		c.Hands[seat] = append([]Card(nil), g.Hands[seat]...)
	}
	c.Kitty = append([]Card(nil), g.Kitty...)
	c.BidHistory = append([]Bid(nil), g.BidHistory...)
	if g.Trump != nil {
		t := *g.Trump
		c.Trump = &t
	}
	if g.CurrentTrick != nil {
		ct := cloneTrick(*g.CurrentTrick)
		c.CurrentTrick = &ct
	}
	c.Tricks = make([]Trick, len(g.Tricks))
	for i, t := range g.Tricks {
		c.Tricks[i] = cloneTrick(t)
	}
	c.SidePoints = map[Side]int{
		SideEvens: g.SidePoints[SideEvens],
		SideOdds:  g.SidePoints[SideOdds],
	}
	if g.Score != nil {
		sc := *g.Score
		sc.SideCredits = map[Side]int{
			SideEvens: g.Score.SideCredits[SideEvens],
			SideOdds:  g.Score.SideCredits[SideOdds],
		}
		c.Score = &sc
	}
	return &c
}

func cloneTrick(t Trick) Trick {
	c := t
	c.Plays = append([]TrickPlay(nil), t.Plays...)
	if t.LedSuit != nil {
		led := *t.LedSuit
		c.LedSuit = &led
	}
	if t.Winner != nil {
		w := *t.Winner
		c.Winner = &w
	}
	return c
}

// CardCount returns the total cards across hands, kitty and tricks.
// It must equal the deck size at every phase.
func (g *Game) CardCount() int {
	n := len(g.Kitty)
	for seat := 0; seat < NumSeats; seat++ {
		n += len(g.Hands[seat])
	}
	for _, t := range g.Tricks {
		n += len(t.Plays)
	}
	if g.CurrentTrick != nil {
		n += len(g.CurrentTrick.Plays)
	}
	return n
}

// requirePhase returns ErrIllegalPhase unless the game is in the phase.
func (g *Game) requirePhase(p Phase) error {
	if g.Phase != p {
		return fmt.Errorf("%w: action requires %s, game is %s", ErrIllegalPhase, p, g.Phase)
	}
	return nil
}
