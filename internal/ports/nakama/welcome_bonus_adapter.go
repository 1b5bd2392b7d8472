package nakama

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"twentyeight/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const (
	welcomeBonusCollection = "onboarding"
	welcomeBonusKey        = "welcome_bonus_v1"
)

// NakamaWelcomeBonusAdapter seeds a new account's bankroll through a
// single MultiUpdate: a storage marker written with version "*" plus the
// wallet credit. When the marker already exists the whole update is
// rejected and no chips move.
type NakamaWelcomeBonusAdapter struct {
	nk runtime.NakamaModule
}

func NewNakamaWelcomeBonusAdapter(nk runtime.NakamaModule) *NakamaWelcomeBonusAdapter {
	return &NakamaWelcomeBonusAdapter{nk: nk}
}

// GrantWelcomeBonusOnce credits the starting chips and records the grant
// marker in one transaction.
func (a *NakamaWelcomeBonusAdapter) GrantWelcomeBonusOnce(ctx context.Context, userID string, amount int64, metadata map[string]interface{}) (bool, error) {
	if userID == "" {
		return false, fmt.Errorf("userID is required")
	}
	if amount <= 0 {
		return false, fmt.Errorf("amount must be positive, got %d", amount)
	}

	marker, err := json.Marshal(map[string]interface{}{
		"amount":     amount,
		"granted_at": time.Now().UTC().Format(time.RFC3339),
	})
	if err != nil {
		return false, fmt.Errorf("failed to encode grant marker: %w", err)
	}

	writes := []*runtime.StorageWrite{{
		Collection:      welcomeBonusCollection,
		Key:             welcomeBonusKey,
		UserID:          userID,
		Value:           string(marker),
		Version:         "*",
		PermissionRead:  runtime.STORAGE_PERMISSION_NO_READ,
		PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
	}}
	credits := []*runtime.WalletUpdate{{
		UserID:    userID,
		Changeset: map[string]int64{walletChipKey: amount},
		Metadata:  metadata,
	}}

	if _, _, err := a.nk.MultiUpdate(ctx, nil, writes, nil, credits, true); err != nil {
		if errors.Is(err, runtime.ErrStorageRejectedVersion) {
			return false, nil
		}
		return false, fmt.Errorf("failed to grant starting chips: %w", err)
	}
	return true, nil
}

var _ ports.WelcomeBonusPort = (*NakamaWelcomeBonusAdapter)(nil)
