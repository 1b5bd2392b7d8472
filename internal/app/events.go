package app

import "twentyeight/internal/domain"

// EventKind identifies emitted game events for dispatch to clients.
type EventKind string

const (
	EventGameStarted    EventKind = "game_started"
	EventHandDealt      EventKind = "hand_dealt"
	EventBidPlaced      EventKind = "bid_placed"
	EventBiddingWon     EventKind = "bidding_won"
	EventHandVoided     EventKind = "hand_voided"
	EventKittyRevealed  EventKind = "kitty_revealed"
	EventTrumpDeclared  EventKind = "trump_declared"
	EventCardsExchanged EventKind = "cards_exchanged"
	EventCardPlayed     EventKind = "card_played"
	EventTrickWon       EventKind = "trick_won"
	EventHandScored     EventKind = "hand_scored"
)

// Event is a game event with optional targeted recipients. An empty
// Recipients slice means broadcast; otherwise delivery is restricted to
// the listed seats (private hands, the kitty reveal).
type Event struct {
	Kind       EventKind
	Payload    any
	Recipients []domain.Seat
}

type GameStartedPayload struct {
	GameID  string      `json:"game_id"`
	TableID string      `json:"table_id"`
	Dealer  domain.Seat `json:"dealer"`
	BidTurn domain.Seat `json:"bid_turn"`
}

type HandDealtPayload struct {
	Seat  domain.Seat `json:"seat"`
	Cards []string    `json:"cards"`
}

type BidPlacedPayload struct {
	Seat        domain.Seat    `json:"seat"`
	Kind        domain.BidKind `json:"kind"`
	Amount      int            `json:"amount,omitempty"`
	StandingBid int            `json:"standing_bid"`
	NextTurn    *domain.Seat   `json:"next_turn,omitempty"`
}

type BiddingWonPayload struct {
	Seat domain.Seat `json:"seat"`
	Bid  int         `json:"bid"`
}

type KittyRevealedPayload struct {
	Cards []string `json:"cards"`
}

type TrumpDeclaredPayload struct {
	Seat domain.Seat `json:"seat"`
	Suit domain.Suit `json:"suit"`
}

type CardsExchangedPayload struct {
	Seat domain.Seat `json:"seat"`
}

type CardPlayedPayload struct {
	Seat     domain.Seat  `json:"seat"`
	Card     string       `json:"card"`
	NextTurn *domain.Seat `json:"next_turn,omitempty"`
}

type TrickWonPayload struct {
	Winner domain.Seat `json:"winner"`
	Points int         `json:"points"`
	Number int         `json:"number"` // 1-based trick index
}

type HandScoredPayload struct {
	Record domain.ScoreRecord `json:"record"`
}
