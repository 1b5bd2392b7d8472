package domain

import "fmt"

// Suit is one of the four card suits.
type Suit string

const (
	SuitSpades   Suit = "S"
	SuitHearts   Suit = "H"
	SuitDiamonds Suit = "D"
	SuitClubs    Suit = "C"
)

// Suits lists all suits in canonical order.
var Suits = []Suit{SuitSpades, SuitHearts, SuitDiamonds, SuitClubs}

// ParseSuit converts a one-letter suit code into a Suit.
func ParseSuit(s string) (Suit, error) {
	switch Suit(s) {
	case SuitSpades, SuitHearts, SuitDiamonds, SuitClubs:
		return Suit(s), nil
	default:
		return "", fmt.Errorf("unknown suit %q", s)
	}
}

// Rank is a card rank. Values are ordered by trick-taking strength,
// not pip order: the jack is the strongest card of a suit, then the
// nine, then ace, ten, king, queen, eight, seven, six.
type Rank int

const (
	Rank6 Rank = iota
	Rank7
	Rank8
	RankQ
	RankK
	Rank10
	RankA
	Rank9
	RankJ
)

func (r Rank) String() string {
	switch r {
	case Rank6:
		return "6"
	case Rank7:
		return "7"
	case Rank8:
		return "8"
	case Rank9:
		return "9"
	case Rank10:
		return "10"
	case RankJ:
		return "J"
	case RankQ:
		return "Q"
	case RankK:
		return "K"
	case RankA:
		return "A"
	default:
		return "?"
	}
}

// Card is a single playing card. Immutable once created.
type Card struct {
	Suit Suit `json:"suit"`
	Rank Rank `json:"rank"`
}

// ID returns the compact wire identity of the card, e.g. "JH" or "10S".
func (c Card) ID() string {
	return c.Rank.String() + string(c.Suit)
}

func (c Card) String() string { return c.ID() }

// ParseCard converts a wire card id back into a Card.
func ParseCard(id string) (Card, error) {
	if len(id) < 2 {
		return Card{}, fmt.Errorf("malformed card id %q", id)
	}
	suit, err := ParseSuit(id[len(id)-1:])
	if err != nil {
		return Card{}, fmt.Errorf("malformed card id %q: %w", id, err)
	}
	var rank Rank
	switch id[:len(id)-1] {
	case "6":
		rank = Rank6
	case "7":
		rank = Rank7
	case "8":
		rank = Rank8
	case "9":
		rank = Rank9
	case "10":
		rank = Rank10
	case "J":
		rank = RankJ
	case "Q":
		rank = RankQ
	case "K":
		rank = RankK
	case "A":
		rank = RankA
	default:
		return Card{}, fmt.Errorf("malformed card id %q", id)
	}
	return Card{Suit: suit, Rank: rank}, nil
}

// ParseCards converts a slice of wire card ids, rejecting duplicates.
func ParseCards(ids []string) ([]Card, error) {
	out := make([]Card, 0, len(ids))
	seen := make(map[Card]bool, len(ids))
	for _, id := range ids {
		c, err := ParseCard(id)
		if err != nil {
			return nil, err
		}
		if seen[c] {
			return nil, fmt.Errorf("duplicate card id %q", id)
		}
		seen[c] = true
		out = append(out, c)
	}
	return out, nil
}
