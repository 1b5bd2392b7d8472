package bot

import "twentyeight/internal/domain"

// Action is a single move a bot wants to make. Exactly one field is set,
// matching the phase the bot was asked to act in.
type Action struct {
	Bid       *domain.Bid
	Trump     *domain.Suit
	Selection []domain.Card
	Card      *domain.Card
}

// Brain decides a bot's move from the authoritative game state.
type Brain interface {
	// ChooseAction returns a legal action for the seat in the game's
	// current phase.
	ChooseAction(g *domain.Game, seat domain.Seat) (Action, error)
}
