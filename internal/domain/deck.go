package domain

import "math/rand"

// NewDeck returns the ordered deck for a ruleset.
func NewDeck(rules Rules) []Card {
	deck := make([]Card, 0, rules.DeckSize())
	for _, s := range Suits {
		for _, r := range rules.Ranks {
			deck = append(deck, Card{Suit: s, Rank: r})
		}
	}
	return deck
}

// ShuffleDeck returns a shuffled copy of the given deck.
func ShuffleDeck(deck []Card, rng *rand.Rand) []Card {
	out := make([]Card, len(deck))
	copy(out, deck)
	rng.Shuffle(len(out), func(i, j int) { out[i], out[j] = out[j], out[i] })
	return out
}

// HasSuit reports whether the hand holds at least one card of the suit.
func HasSuit(hand []Card, suit Suit) bool {
	for _, c := range hand {
		if c.Suit == suit {
			return true
		}
	}
	return false
}

// IndexOfCard returns the position of the card in the hand, or -1.
func IndexOfCard(hand []Card, target Card) int {
	for i, c := range hand {
		if c == target {
			return i
		}
	}
	return -1
}

// RemoveCard removes one occurrence of the card, returning the updated
// hand and whether the card was present.
func RemoveCard(hand []Card, target Card) ([]Card, bool) {
	i := IndexOfCard(hand, target)
	if i < 0 {
		return hand, false
	}
	out := make([]Card, 0, len(hand)-1)
	out = append(out, hand[:i]...)
	out = append(out, hand[i+1:]...)
	return out, true
}
