package domain

import (
	"math/rand"
	"testing"
)

func newTestGame(t *testing.T, dealer Seat) *Game {
	t.Helper()
	g, err := NewGame("game-1", "table-1", DefaultRules(), dealer, rand.New(rand.NewSource(1)))
	if err != nil {
		t.Fatalf("NewGame returned error: %v", err)
	}
	return g
}

func TestNewGameDeal(t *testing.T) {
	g := newTestGame(t, 0)

	if g.Phase != PhaseBidding {
		t.Fatalf("Phase = %s, want %s", g.Phase, PhaseBidding)
	}
	if g.BidTurn != 1 {
		t.Errorf("BidTurn = %d, want dealer's left (1)", g.BidTurn)
	}
	for seat := 0; seat < NumSeats; seat++ {
		if len(g.Hands[seat]) != g.Rules.HandSize {
			t.Errorf("seat %d dealt %d cards, want %d", seat, len(g.Hands[seat]), g.Rules.HandSize)
		}
	}
	if len(g.Kitty) != g.Rules.KittySize {
		t.Errorf("kitty has %d cards, want %d", len(g.Kitty), g.Rules.KittySize)
	}

	seen := make(map[Card]bool, g.Rules.DeckSize())
	for seat := 0; seat < NumSeats; seat++ {
		for _, c := range g.Hands[seat] {
			if seen[c] {
				t.Fatalf("card %v dealt twice", c)
			}
			seen[c] = true
		}
	}
	for _, c := range g.Kitty {
		if seen[c] {
			t.Fatalf("card %v dealt twice", c)
		}
		seen[c] = true
	}
	if len(seen) != g.Rules.DeckSize() {
		t.Errorf("dealt %d distinct cards, want %d", len(seen), g.Rules.DeckSize())
	}
	if got := g.CardCount(); got != g.Rules.DeckSize() {
		t.Errorf("CardCount = %d, want %d", got, g.Rules.DeckSize())
	}
}

func TestNewGameRejectsInvalidRules(t *testing.T) {
	rules := DefaultRules()
	rules.KittySize = 3
	if _, err := NewGame("game-1", "table-1", rules, 0, rand.New(rand.NewSource(1))); err == nil {
		t.Fatal("Expected invalid rules to be rejected")
	}
}

func TestNextSeat(t *testing.T) {
	g := newTestGame(t, 0)

	if got := g.NextSeat(3); got != 0 {
		t.Errorf("clockwise NextSeat(3) = %d, want 0", got)
	}

	g.Rules.Direction = CounterClockwise
	if got := g.NextSeat(0); got != 3 {
		t.Errorf("counterclockwise NextSeat(0) = %d, want 3", got)
	}
	if got := g.NextSeat(2); got != 1 {
		t.Errorf("counterclockwise NextSeat(2) = %d, want 1", got)
	}
}

func TestCurrentTurnByPhase(t *testing.T) {
	g := newTestGame(t, 0)

	turn, ok := g.CurrentTurn()
	if !ok || turn != g.BidTurn {
		t.Fatalf("bidding turn = %d/%t, want %d/true", turn, ok, g.BidTurn)
	}

	g.Phase = PhaseTrumpSelection
	g.BidWinner = 2
	if turn, ok := g.CurrentTurn(); !ok || turn != 2 {
		t.Fatalf("trump selection turn = %d/%t, want 2/true", turn, ok)
	}

	g.Phase = PhasePlaying
	g.CurrentTrick = &Trick{Leader: 2}
	if turn, ok := g.CurrentTurn(); !ok || turn != 2 {
		t.Fatalf("trick leader turn = %d/%t, want 2/true", turn, ok)
	}
	g.CurrentTrick.Plays = append(g.CurrentTrick.Plays, TrickPlay{Seat: 2})
	if turn, ok := g.CurrentTurn(); !ok || turn != 3 {
		t.Fatalf("turn after one play = %d/%t, want 3/true", turn, ok)
	}

	g.Phase = PhaseCompleted
	if _, ok := g.CurrentTurn(); ok {
		t.Fatal("completed game should have no active turn")
	}
}

func TestCloneIsIndependent(t *testing.T) {
	g := newTestGame(t, 0)
	if err := ApplyBid(g, g.BidTurn, Bid{Kind: BidNumeric, Amount: 16}); err != nil {
		t.Fatalf("ApplyBid returned error: %v", err)
	}

	c := g.Clone()
	c.Hands[0] = c.Hands[0][:1]
	c.BidHistory = append(c.BidHistory, Bid{Seat: 2, Kind: BidPass})
	c.SidePoints[SideEvens] = 99

	if len(g.Hands[0]) != g.Rules.HandSize {
		t.Errorf("mutating clone hand changed original: %d cards", len(g.Hands[0]))
	}
	if len(g.BidHistory) != 1 {
		t.Errorf("mutating clone bid history changed original: %d entries", len(g.BidHistory))
	}
	if g.SidePoints[SideEvens] != 0 {
		t.Errorf("mutating clone side points changed original: %d", g.SidePoints[SideEvens])
	}
}

func TestSideOf(t *testing.T) {
	if SideOf(0) != SideEvens || SideOf(2) != SideEvens {
		t.Error("seats 0 and 2 should be on the even side")
	}
	if SideOf(1) != SideOdds || SideOf(3) != SideOdds {
		t.Error("seats 1 and 3 should be on the odd side")
	}
	if SideEvens.Opponent() != SideOdds || SideOdds.Opponent() != SideEvens {
		t.Error("sides should oppose each other")
	}
}
