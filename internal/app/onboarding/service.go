package onboarding

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"twentyeight/internal/ports"
)

// startingBankroll is the one-time chip grant for a fresh account.
const startingBankroll = 10000

// Result reports the parts of onboarding that can fail without aborting
// the whole flow.
type Result struct {
	// ProfileUpdateErr is non-nil when the display name could not be set.
	ProfileUpdateErr error
	// WelcomeBonusGranted is false when this account was seeded before.
	WelcomeBonusGranted bool
}

// Service prepares freshly created accounts: a generated table name and
// the starting bankroll.
type Service struct {
	accounts ports.AccountPort
	bonuses  ports.WelcomeBonusPort
	rng      *rand.Rand
}

// NewService wires the onboarding ports. A nil rng falls back to a
// time-seeded source.
func NewService(accounts ports.AccountPort, bonuses ports.WelcomeBonusPort, rng *rand.Rand) *Service {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &Service{accounts: accounts, bonuses: bonuses, rng: rng}
}

// OnboardNewUser names the account and seeds its wallet. A failed name
// update is recorded in the Result but does not block the chip grant; a
// failed grant is the only fatal outcome.
func (s *Service) OnboardNewUser(ctx context.Context, userID string) (Result, error) {
	if s.accounts == nil || s.bonuses == nil {
		return Result{}, fmt.Errorf("onboarding service not configured")
	}

	var result Result
	name := s.tableName()
	if err := s.accounts.UpdateProfile(ctx, userID, name, name); err != nil {
		result.ProfileUpdateErr = err
	}

	granted, err := s.bonuses.GrantWelcomeBonusOnce(ctx, userID, startingBankroll, map[string]interface{}{
		"reason": "welcome_bonus",
	})
	if err != nil {
		return result, fmt.Errorf("failed to seed bankroll: %w", err)
	}
	result.WelcomeBonusGranted = granted
	return result, nil
}

// tableName builds a readable default handle like "BoldHeron4821".
func (s *Service) tableName() string {
	adjectives := []string{"Bold", "Quiet", "Lucky", "Keen", "Steady", "Sharp", "Quick", "Merry", "Stern", "Deft"}
	birds := []string{"Heron", "Magpie", "Kestrel", "Plover", "Swift", "Crane", "Finch", "Raven", "Teal", "Shrike"}

	return fmt.Sprintf("%s%s%d",
		adjectives[s.rng.Intn(len(adjectives))],
		birds[s.rng.Intn(len(birds))],
		s.rng.Intn(9000)+1000)
}
