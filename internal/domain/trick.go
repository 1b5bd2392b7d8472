package domain

import "fmt"

// PlayCard applies one play to the current trick. Legality: it must be
// the seat's turn, the card must be in their hand, and the card must
// follow the suit led when the hand holds that suit. A completed trick
// is resolved immediately; when all hands are empty the game moves to
// scoring.
func PlayCard(g *Game, seat Seat, card Card) error {
	if err := g.requirePhase(PhasePlaying); err != nil {
		return err
	}
	turn, ok := g.CurrentTurn()
	if !ok || seat != turn {
		return fmt.Errorf("%w: seat %d played out of turn (turn is %d)", ErrIllegalPlayer, seat, turn)
	}
	hand := g.Hands[seat]
	if IndexOfCard(hand, card) < 0 {
		return fmt.Errorf("%w: seat %d does not hold %s", ErrIllegalCard, seat, card)
	}
	trick := g.CurrentTrick
	if trick.LedSuit != nil && card.Suit != *trick.LedSuit && HasSuit(hand, *trick.LedSuit) {
		return fmt.Errorf("%w: seat %d must follow %s", ErrIllegalCard, seat, *trick.LedSuit)
	}

	// Validation done; commit.
	g.Hands[seat], _ = RemoveCard(hand, card)
	if trick.LedSuit == nil {
		led := card.Suit
		trick.LedSuit = &led
	}
	trick.Plays = append(trick.Plays, TrickPlay{Seat: seat, Card: card})

	if len(trick.Plays) < NumSeats {
		return nil
	}
	resolveTrick(g)
	return nil
}

// resolveTrick closes the current trick, credits its points to the
// winning side and either opens the next trick or ends the hand.
func resolveTrick(g *Game) {
	trick := g.CurrentTrick
	winner := trickWinner(g.Rules, *trick, g.Trump)
	points := 0
	for _, p := range trick.Plays {
		points += g.Rules.PointsFor(p.Card)
	}

	handDone := true
	for seat := 0; seat < NumSeats; seat++ {
		if len(g.Hands[seat]) > 0 {
			handDone = false
			break
		}
	}
	if handDone && g.Rules.KittyToLastTrick {
		for _, c := range g.Kitty {
			points += g.Rules.PointsFor(c)
		}
	}

	trick.Winner = &winner
	trick.Points = points
	g.SidePoints[SideOf(winner)] += points
	g.Tricks = append(g.Tricks, *trick)

	if handDone {
		g.CurrentTrick = nil
		g.Phase = PhaseScoring
		return
	}
	g.CurrentTrick = &Trick{Leader: winner}
}

// trickWinner returns the seat that takes the trick: the highest trump
// played, or the highest card of the suit led when no trump appeared.
// Rank order makes ties impossible.
func trickWinner(rules Rules, trick Trick, trump *Suit) Seat {
	best := 0
	for i := 1; i < len(trick.Plays); i++ {
		if beats(trick.Plays[i].Card, trick.Plays[best].Card, *trick.LedSuit, trump) {
			best = i
		}
	}
	return trick.Plays[best].Seat
}

// beats reports whether card a outranks card b given the suit led and
// the trump suit.
func beats(a, b Card, led Suit, trump *Suit) bool {
	if trump != nil {
		if a.Suit == *trump && b.Suit != *trump {
			return true
		}
		if b.Suit == *trump && a.Suit != *trump {
			return false
		}
		if a.Suit == *trump && b.Suit == *trump {
			return a.Rank > b.Rank
		}
	}
	if a.Suit == led && b.Suit != led {
		return true
	}
	if b.Suit == led && a.Suit != led {
		return false
	}
	if a.Suit == led && b.Suit == led {
		return a.Rank > b.Rank
	}
	return false
}
