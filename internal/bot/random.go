package bot

import (
	"fmt"
	"math/rand"

	"twentyeight/internal/domain"
)

// RandomBrain plays uniformly random legal actions: it opens bidding at
// the minimum, otherwise passes; declares its longest suit as trump;
// keeps a random legal selection on exchange; and follows suit with a
// random eligible card.
type RandomBrain struct {
	rng *rand.Rand
}

// NewRandomBrain constructs a RandomBrain with the provided rng.
func NewRandomBrain(rng *rand.Rand) *RandomBrain {
	return &RandomBrain{rng: rng}
}

// ChooseAction implements Brain.
func (b *RandomBrain) ChooseAction(g *domain.Game, seat domain.Seat) (Action, error) {
	switch g.Phase {
	case domain.PhaseBidding:
		return b.chooseBid(g), nil
	case domain.PhaseTrumpSelection:
		suit := longestSuit(g.Hands[seat], b.rng)
		return Action{Trump: &suit}, nil
	case domain.PhaseCardExchange:
		return Action{Selection: b.chooseSelection(g, seat)}, nil
	case domain.PhasePlaying:
		card, err := b.chooseCard(g, seat)
		if err != nil {
			return Action{}, err
		}
		return Action{Card: &card}, nil
	default:
		return Action{}, fmt.Errorf("no bot action for phase %s", g.Phase)
	}
}

func (b *RandomBrain) chooseBid(g *domain.Game) Action {
	if g.StandingBid == 0 && b.rng.Intn(2) == 0 {
		return Action{Bid: &domain.Bid{Kind: domain.BidNumeric, Amount: g.Rules.MinBid}}
	}
	return Action{Bid: &domain.Bid{Kind: domain.BidPass}}
}

func (b *RandomBrain) chooseSelection(g *domain.Game, seat domain.Seat) []domain.Card {
	pool := make([]domain.Card, 0, len(g.Hands[seat])+len(g.Kitty))
	pool = append(pool, g.Hands[seat]...)
	pool = append(pool, g.Kitty...)
	b.rng.Shuffle(len(pool), func(i, j int) { pool[i], pool[j] = pool[j], pool[i] })
	return pool[:g.Rules.HandSize]
}

func (b *RandomBrain) chooseCard(g *domain.Game, seat domain.Seat) (domain.Card, error) {
	hand := g.Hands[seat]
	if len(hand) == 0 {
		return domain.Card{}, fmt.Errorf("seat %d has no cards to play", seat)
	}
	eligible := hand
	if t := g.CurrentTrick; t != nil && t.LedSuit != nil && domain.HasSuit(hand, *t.LedSuit) {
		eligible = nil
		for _, c := range hand {
			if c.Suit == *t.LedSuit {
				eligible = append(eligible, c)
			}
		}
	}
	return eligible[b.rng.Intn(len(eligible))], nil
}

func longestSuit(hand []domain.Card, rng *rand.Rand) domain.Suit {
	counts := make(map[domain.Suit]int, len(domain.Suits))
	for _, c := range hand {
		counts[c.Suit]++
	}
	best := domain.Suits[rng.Intn(len(domain.Suits))]
	for _, s := range domain.Suits {
		if counts[s] > counts[best] {
			best = s
		}
	}
	return best
}
