package nakama

import (
	"fmt"

	"twentyeight/internal/domain"
)

// Client request payloads, JSON-encoded in match data messages.

// PlaceBidRequest carries one bidding action. Value is a number, "pass"
// or "check".
type PlaceBidRequest struct {
	Kind   string `json:"kind"`
	Amount int    `json:"amount,omitempty"`
}

// DeclareTrumpRequest names the trump suit by its one-letter code.
type DeclareTrumpRequest struct {
	Suit string `json:"suit"`
}

// SelectCardsRequest lists the card ids the bid winner keeps.
type SelectCardsRequest struct {
	CardIDs []string `json:"card_ids"`
}

// PlayCardRequest plays a single card by id.
type PlayCardRequest struct {
	CardID string `json:"card_id"`
}

// GameErrorEvent reports a rejected action back to its sender.
type GameErrorEvent struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// PlayerJoinedEvent announces a seat assignment.
type PlayerJoinedEvent struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name"`
	Seat        int    `json:"seat"`
	Owner       bool   `json:"owner"`
}

// PlayerLeftEvent announces a vacated (or reserved) seat.
type PlayerLeftEvent struct {
	UserID   string `json:"user_id"`
	Seat     int    `json:"seat"`
	Reserved bool   `json:"reserved"` // seat held for rejoin during a live hand
}

// Label is the match label advertised for quick-match queries.
type Label struct {
	Open  int    `json:"open"`
	Game  string `json:"game"`
	Phase string `json:"phase"`
}

func bidFromRequest(req PlaceBidRequest) (domain.Bid, error) {
	switch req.Kind {
	case "bid":
		return domain.Bid{Kind: domain.BidNumeric, Amount: req.Amount}, nil
	case "pass":
		return domain.Bid{Kind: domain.BidPass}, nil
	case "check":
		return domain.Bid{Kind: domain.BidCheck}, nil
	default:
		return domain.Bid{}, fmt.Errorf("unknown bid kind %q", req.Kind)
	}
}
