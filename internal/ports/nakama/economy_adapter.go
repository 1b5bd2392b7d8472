package nakama

import (
	"context"
	"encoding/json"
	"fmt"

	"twentyeight/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// walletChipKey is the wallet currency used for table stakes.
const walletChipKey = "chips"

// NakamaEconomyAdapter backs ports.EconomyPort with Nakama wallets.
type NakamaEconomyAdapter struct {
	nk runtime.NakamaModule
}

func NewNakamaEconomyAdapter(nk runtime.NakamaModule) *NakamaEconomyAdapter {
	return &NakamaEconomyAdapter{nk: nk}
}

// GetBalance reads the chip entry out of the account's wallet JSON. A
// wallet without the entry reports zero.
func (a *NakamaEconomyAdapter) GetBalance(ctx context.Context, userID string) (int64, error) {
	account, err := a.nk.AccountGetId(ctx, userID)
	if err != nil {
		return 0, fmt.Errorf("failed to load account %s: %w", userID, err)
	}

	var wallet map[string]int64
	if err := json.Unmarshal([]byte(account.Wallet), &wallet); err != nil {
		return 0, fmt.Errorf("failed to decode wallet for %s: %w", userID, err)
	}
	return wallet[walletChipKey], nil
}

// UpdateBalances applies each movement in turn. Zero-amount entries are
// skipped rather than written as empty changesets.
func (a *NakamaEconomyAdapter) UpdateBalances(ctx context.Context, updates []ports.WalletUpdate) error {
	for _, u := range updates {
		if u.Amount == 0 {
			continue
		}
		changeset := map[string]int64{walletChipKey: u.Amount}
		if _, _, err := a.nk.WalletUpdate(ctx, u.UserID, changeset, u.Metadata, true); err != nil {
			return fmt.Errorf("failed to settle wallet for %s: %w", u.UserID, err)
		}
	}
	return nil
}

var _ ports.EconomyPort = (*NakamaEconomyAdapter)(nil)
