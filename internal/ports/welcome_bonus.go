package ports

import "context"

// WelcomeBonusPort seeds a new account's bankroll exactly once.
type WelcomeBonusPort interface {
	// GrantWelcomeBonusOnce credits amount chips to a fresh account.
	// A repeat call for the same user is a no-op returning granted=false.
	GrantWelcomeBonusOnce(ctx context.Context, userID string, amount int64, metadata map[string]interface{}) (bool, error)
}
