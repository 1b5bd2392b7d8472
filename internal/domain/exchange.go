package domain

import "fmt"

// DeclareTrump sets the trump suit for the hand. Only the bid winner may
// declare, exactly once, during trump selection.
func DeclareTrump(g *Game, seat Seat, suit Suit) error {
	if err := g.requirePhase(PhaseTrumpSelection); err != nil {
		return err
	}
	if seat != g.BidWinner {
		return fmt.Errorf("%w: seat %d is not the bid winner", ErrIllegalPlayer, seat)
	}
	s := suit
	g.Trump = &s
	g.Phase = PhaseCardExchange
	return nil
}

// SelectCards finalizes the bid winner's hand: exactly HandSize cards
// chosen from the union of their dealt hand and the kitty. The remainder
// becomes the discard pile, which stays out of play. On success the game
// enters the playing phase with the bid winner leading the first trick.
func SelectCards(g *Game, seat Seat, selection []Card) error {
	if err := g.requirePhase(PhaseCardExchange); err != nil {
		return err
	}
	if seat != g.BidWinner {
		return fmt.Errorf("%w: seat %d is not the bid winner", ErrIllegalPlayer, seat)
	}
	if len(selection) != g.Rules.HandSize {
		return fmt.Errorf("%w: selected %d cards, hand size is %d",
			ErrInvalidSelectionSize, len(selection), g.Rules.HandSize)
	}

	pool := make([]Card, 0, len(g.Hands[seat])+len(g.Kitty))
	pool = append(pool, g.Hands[seat]...)
	pool = append(pool, g.Kitty...)

	remainder := pool
	for _, c := range selection {
		var ok bool
		remainder, ok = RemoveCard(remainder, c)
		if !ok {
			return fmt.Errorf("%w: %s is not available to seat %d", ErrIllegalCard, c, seat)
		}
	}

	g.Hands[seat] = append([]Card(nil), selection...)
	g.Kitty = remainder
	g.CurrentTrick = &Trick{Leader: g.BidWinner}
	g.Phase = PhasePlaying
	return nil
}
