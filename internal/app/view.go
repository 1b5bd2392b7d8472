package app

import "twentyeight/internal/domain"

// SpectatorSeat builds views with every hand redacted.
const SpectatorSeat domain.Seat = -1

// TrickView is the externally visible form of a trick.
type TrickView struct {
	Leader  domain.Seat  `json:"leader"`
	LedSuit *domain.Suit `json:"led_suit,omitempty"`
	Plays   []PlayView   `json:"plays"`
	Winner  *domain.Seat `json:"winner,omitempty"`
	Points  int          `json:"points,omitempty"`
}

type PlayView struct {
	Seat domain.Seat `json:"seat"`
	Card string      `json:"card"`
}

// View is the redacted, externally visible snapshot of a game. Only the
// viewer's own unplayed hand is included; the kitty is visible to the
// bid winner once bidding has resolved.
type View struct {
	GameID  string       `json:"game_id"`
	TableID string       `json:"table_id"`
	Phase   domain.Phase `json:"phase"`
	Dealer  domain.Seat  `json:"dealer"`
	Turn    *domain.Seat `json:"turn,omitempty"`

	HandCounts [domain.NumSeats]int `json:"hand_counts"`
	Hand       []string             `json:"hand,omitempty"`

	BidHistory  []domain.Bid `json:"bid_history"`
	StandingBid int          `json:"standing_bid"`
	BidWinner   *domain.Seat `json:"bid_winner,omitempty"`

	Trump      *domain.Suit `json:"trump,omitempty"`
	KittyCount int          `json:"kitty_count"`
	Kitty      []string     `json:"kitty,omitempty"`

	CurrentTrick *TrickView          `json:"current_trick,omitempty"`
	Tricks       []TrickView         `json:"tricks"`
	SidePoints   map[domain.Side]int `json:"side_points"`

	Score *domain.ScoreRecord `json:"score,omitempty"`
}

// BuildView renders the game for one viewer seat. SpectatorSeat yields
// a fully redacted view.
func BuildView(g *domain.Game, viewer domain.Seat) *View {
	v := &View{
		GameID:      g.ID,
		TableID:     g.TableID,
		Phase:       g.Phase,
		Dealer:      g.Dealer,
		BidHistory:  append([]domain.Bid(nil), g.BidHistory...),
		StandingBid: g.StandingBid,
		KittyCount:  len(g.Kitty),
		Tricks:      make([]TrickView, 0, len(g.Tricks)),
		SidePoints: map[domain.Side]int{
			domain.SideEvens: g.SidePoints[domain.SideEvens],
			domain.SideOdds:  g.SidePoints[domain.SideOdds],
		},
		Score: g.Score,
	}

	if turn, ok := g.CurrentTurn(); ok {
		t := turn
		v.Turn = &t
	}
	if g.StandingBid > 0 {
		w := g.BidWinner
		v.BidWinner = &w
	}
	if g.Trump != nil {
		t := *g.Trump
		v.Trump = &t
	}

	for seat := 0; seat < domain.NumSeats; seat++ {
		v.HandCounts[seat] = len(g.Hands[seat])
	}
	if viewer >= 0 && viewer < domain.NumSeats {
		v.Hand = cardIDs(g.Hands[viewer])
	}
	if kittyVisible(g, viewer) {
		v.Kitty = cardIDs(g.Kitty)
	}

	if g.CurrentTrick != nil {
		tv := trickView(*g.CurrentTrick)
		v.CurrentTrick = &tv
	}
	for _, t := range g.Tricks {
		v.Tricks = append(v.Tricks, trickView(t))
	}
	return v
}

// kittyVisible implements the reserve's redaction rule: bid winner only,
// once bidding has resolved, and only until the exchange replaces the
// kitty with the discard pile.
func kittyVisible(g *domain.Game, viewer domain.Seat) bool {
	if g.StandingBid == 0 || viewer != g.BidWinner {
		return false
	}
	return g.Phase == domain.PhaseTrumpSelection || g.Phase == domain.PhaseCardExchange
}

func trickView(t domain.Trick) TrickView {
	tv := TrickView{
		Leader:  t.Leader,
		LedSuit: t.LedSuit,
		Winner:  t.Winner,
		Points:  t.Points,
		Plays:   make([]PlayView, 0, len(t.Plays)),
	}
	for _, p := range t.Plays {
		tv.Plays = append(tv.Plays, PlayView{Seat: p.Seat, Card: p.Card.ID()})
	}
	return tv
}

func cardIDs(cards []domain.Card) []string {
	out := make([]string, 0, len(cards))
	for _, c := range cards {
		out = append(out, c.ID())
	}
	return out
}
