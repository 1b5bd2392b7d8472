package ports

import "context"

// WalletUpdate is one signed chip movement on a player's wallet.
type WalletUpdate struct {
	UserID   string
	Amount   int64
	Metadata map[string]interface{}
}

// EconomyPort moves chips between the table and player wallets.
type EconomyPort interface {
	// GetBalance reports the user's current chip count.
	GetBalance(ctx context.Context, userID string) (int64, error)

	// UpdateBalances applies a batch of wallet movements, used when a
	// completed hand settles its score credits.
	UpdateBalances(ctx context.Context, updates []WalletUpdate) error
}
