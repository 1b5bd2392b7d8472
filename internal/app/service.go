package app

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"twentyeight/internal/domain"

	"github.com/google/uuid"
)

// Service coordinates game sessions across tables. It is the sole
// mutation entry point: every action is validated against the current
// phase inside the owning table's critical section, so concurrent calls
// for the same table serialize while unrelated tables proceed in
// parallel.
type Service struct {
	rules domain.Rules

	rngMu sync.Mutex
	rng   *rand.Rand

	mu     sync.RWMutex
	tables map[string]*table
	games  map[string]*table
}

// table owns at most one live game and the dealer rotation pointer that
// survives across successive games at the same table.
type table struct {
	mu     sync.Mutex
	id     string
	dealer domain.Seat
	dealt  bool // true once the first hand has been dealt
	game   *domain.Game
}

// NewService constructs a Service with the given ruleset and rng; a nil
// rng uses a time-seeded default.
func NewService(rules domain.Rules, rng *rand.Rand) (*Service, error) {
	if err := rules.Validate(); err != nil {
		return nil, err
	}
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{
		rules:  rules,
		rng:    rng,
		tables: make(map[string]*table),
		games:  make(map[string]*table),
	}, nil
}

// Rules returns the ruleset the service was built with.
func (s *Service) Rules() domain.Rules { return s.rules }

// CreateGame deals a fresh hand for the table. Any prior incomplete game
// for the table is retired; the dealer rotates one seat per hand. The
// returned view is a spectator view; hands travel in private events.
func (s *Service) CreateGame(tableID string) (*View, []Event, error) {
	t := s.tableFor(tableID)
	t.mu.Lock()
	defer t.mu.Unlock()

	dealer := t.dealer
	if t.dealt {
		dealer = (t.dealer + 1) % domain.NumSeats
	}

	game, err := domain.NewGame(uuid.NewString(), tableID, s.rules, dealer, s.deckRng())
	if err != nil {
		return nil, nil, err
	}

	s.mu.Lock()
	if t.game != nil {
		delete(s.games, t.game.ID)
	}
	s.games[game.ID] = t
	s.mu.Unlock()

	t.game = game
	t.dealer = dealer
	t.dealt = true

	events := make([]Event, 0, domain.NumSeats+1)
	events = append(events, Event{
		Kind: EventGameStarted,
		Payload: GameStartedPayload{
			GameID:  game.ID,
			TableID: tableID,
			Dealer:  dealer,
			BidTurn: game.BidTurn,
		},
	})
	for seat := domain.Seat(0); seat < domain.NumSeats; seat++ {
		events = append(events, Event{
			Kind:       EventHandDealt,
			Payload:    HandDealtPayload{Seat: seat, Cards: cardIDs(game.Hands[seat])},
			Recipients: []domain.Seat{seat},
		})
	}
	return BuildView(game, SpectatorSeat), events, nil
}

// GetGame returns the redacted view of a game for one viewer.
func (s *Service) GetGame(gameID string, viewer domain.Seat) (*View, error) {
	t, err := s.gameTable(gameID)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.game == nil || t.game.ID != gameID {
		return nil, fmt.Errorf("%w: %s", domain.ErrGameNotFound, gameID)
	}
	return BuildView(t.game, viewer), nil
}

// GetGameByTable returns the view of the table's live game.
func (s *Service) GetGameByTable(tableID string, viewer domain.Seat) (*View, error) {
	s.mu.RLock()
	t, ok := s.tables[tableID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: no game for table %s", domain.ErrGameNotFound, tableID)
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.game == nil {
		return nil, fmt.Errorf("%w: no game for table %s", domain.ErrGameNotFound, tableID)
	}
	return BuildView(t.game, viewer), nil
}

// PlaceBid records a bidding action for the seat.
func (s *Service) PlaceBid(gameID string, seat domain.Seat, bid domain.Bid) (*View, []Event, error) {
	return s.mutate(gameID, seat, func(g *domain.Game) ([]Event, error) {
		if err := domain.ApplyBid(g, seat, bid); err != nil {
			return nil, err
		}
		payload := BidPlacedPayload{
			Seat:        seat,
			Kind:        bid.Kind,
			Amount:      bid.Amount,
			StandingBid: g.StandingBid,
		}
		if turn, ok := g.CurrentTurn(); ok && g.Phase == domain.PhaseBidding {
			next := turn
			payload.NextTurn = &next
		}
		events := []Event{{Kind: EventBidPlaced, Payload: payload}}

		switch g.Phase {
		case domain.PhaseVoid:
			events = append(events, Event{Kind: EventHandVoided, Payload: struct{}{}})
		case domain.PhaseTrumpSelection:
			events = append(events,
				Event{
					Kind:    EventBiddingWon,
					Payload: BiddingWonPayload{Seat: g.BidWinner, Bid: g.StandingBid},
				},
				Event{
					Kind:       EventKittyRevealed,
					Payload:    KittyRevealedPayload{Cards: cardIDs(g.Kitty)},
					Recipients: []domain.Seat{g.BidWinner},
				})
		}
		return events, nil
	})
}

// DeclareTrump sets the trump suit; bid winner only.
func (s *Service) DeclareTrump(gameID string, seat domain.Seat, suit domain.Suit) (*View, []Event, error) {
	return s.mutate(gameID, seat, func(g *domain.Game) ([]Event, error) {
		if err := domain.DeclareTrump(g, seat, suit); err != nil {
			return nil, err
		}
		return []Event{{
			Kind:    EventTrumpDeclared,
			Payload: TrumpDeclaredPayload{Seat: seat, Suit: suit},
		}}, nil
	})
}

// SelectCards finalizes the bid winner's hand from hand plus kitty. The
// selection itself stays private; other seats only learn that the
// exchange happened.
func (s *Service) SelectCards(gameID string, seat domain.Seat, cards []domain.Card) (*View, []Event, error) {
	return s.mutate(gameID, seat, func(g *domain.Game) ([]Event, error) {
		if err := domain.SelectCards(g, seat, cards); err != nil {
			return nil, err
		}
		events := []Event{
			{Kind: EventCardsExchanged, Payload: CardsExchangedPayload{Seat: seat}},
			{
				Kind:       EventHandDealt,
				Payload:    HandDealtPayload{Seat: seat, Cards: cardIDs(g.Hands[seat])},
				Recipients: []domain.Seat{seat},
			},
		}
		return events, nil
	})
}

// PlayCard applies one play to the current trick.
func (s *Service) PlayCard(gameID string, seat domain.Seat, card domain.Card) (*View, []Event, error) {
	return s.mutate(gameID, seat, func(g *domain.Game) ([]Event, error) {
		tricksBefore := len(g.Tricks)
		if err := domain.PlayCard(g, seat, card); err != nil {
			return nil, err
		}
		payload := CardPlayedPayload{Seat: seat, Card: card.ID()}
		if turn, ok := g.CurrentTurn(); ok {
			next := turn
			payload.NextTurn = &next
		}
		events := []Event{{Kind: EventCardPlayed, Payload: payload}}

		if len(g.Tricks) > tricksBefore {
			trick := g.Tricks[len(g.Tricks)-1]
			events = append(events, Event{
				Kind: EventTrickWon,
				Payload: TrickWonPayload{
					Winner: *trick.Winner,
					Points: trick.Points,
					Number: len(g.Tricks),
				},
			})
		}
		return events, nil
	})
}

// ScoreHand computes the final score record for a hand in the scoring
// phase and completes the game.
func (s *Service) ScoreHand(gameID string) (*View, []Event, error) {
	return s.mutate(gameID, SpectatorSeat, func(g *domain.Game) ([]Event, error) {
		if err := domain.ScoreHand(g); err != nil {
			return nil, err
		}
		return []Event{{Kind: EventHandScored, Payload: HandScoredPayload{Record: *g.Score}}}, nil
	})
}

// SnapshotGame returns a deep copy of the game taken inside its table
// critical section, for callers that need full unredacted state such as
// bot decision making.
func (s *Service) SnapshotGame(gameID string) (*domain.Game, error) {
	t, err := s.gameTable(gameID)
	if err != nil {
		return nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.game == nil || t.game.ID != gameID {
		return nil, fmt.Errorf("%w: %s", domain.ErrGameNotFound, gameID)
	}
	return t.game.Clone(), nil
}

// mutate runs one action inside the game's table critical section and
// returns the post-mutation view for the acting seat. A failed action
// returns before any state change was committed.
func (s *Service) mutate(gameID string, viewer domain.Seat, fn func(*domain.Game) ([]Event, error)) (*View, []Event, error) {
	t, err := s.gameTable(gameID)
	if err != nil {
		return nil, nil, err
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.game == nil || t.game.ID != gameID {
		return nil, nil, fmt.Errorf("%w: %s", domain.ErrGameNotFound, gameID)
	}
	events, err := fn(t.game)
	if err != nil {
		return nil, nil, err
	}
	return BuildView(t.game, viewer), events, nil
}

func (s *Service) tableFor(tableID string) *table {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.tables[tableID]; ok {
		return t
	}
	t := &table{id: tableID}
	s.tables[tableID] = t
	return t
}

func (s *Service) gameTable(gameID string) (*table, error) {
	s.mu.RLock()
	t, ok := s.games[gameID]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrGameNotFound, gameID)
	}
	return t, nil
}

// deckRng derives a fresh deal seed; the shared rng is guarded so that
// unrelated tables can deal concurrently.
func (s *Service) deckRng() *rand.Rand {
	s.rngMu.Lock()
	seed := s.rng.Int63()
	s.rngMu.Unlock()
	return rand.New(rand.NewSource(seed))
}
