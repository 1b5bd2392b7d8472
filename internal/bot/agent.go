package bot

import (
	"math/rand"
	"time"

	"twentyeight/internal/domain"
)

// Agent represents an autonomous bot player occupying a seat.
type Agent struct {
	ID       string
	Name     string
	Strategy Brain
}

// NewAgent constructs an agent for the bot user id with the default
// random strategy.
func NewAgent(userID string) *Agent {
	return &Agent{
		ID:       userID,
		Name:     UsernameFor(userID),
		Strategy: NewRandomBrain(rand.New(rand.NewSource(time.Now().UnixNano()))),
	}
}

// Act asks the agent to calculate its move for the seat.
func (a *Agent) Act(g *domain.Game, seat domain.Seat) (Action, error) {
	return a.Strategy.ChooseAction(g, seat)
}
