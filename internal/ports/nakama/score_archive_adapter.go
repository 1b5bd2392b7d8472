package nakama

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"twentyeight/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

const scoreArchiveCollection = "hand_scores"

// NakamaScoreArchiveAdapter persists completed hand scores to Nakama storage.
type NakamaScoreArchiveAdapter struct {
	nk runtime.NakamaModule
}

// NewNakamaScoreArchiveAdapter creates a new score archive adapter.
func NewNakamaScoreArchiveAdapter(nk runtime.NakamaModule) *NakamaScoreArchiveAdapter {
	return &NakamaScoreArchiveAdapter{nk: nk}
}

// ArchiveScore writes one hand's score record keyed by game id. Records
// are system-owned and readable by clients for match history screens.
func (a *NakamaScoreArchiveAdapter) ArchiveScore(ctx context.Context, entry ports.ScoreArchiveEntry) error {
	payload := map[string]interface{}{
		"game_id":     entry.GameID,
		"table_id":    entry.TableID,
		"record":      entry.Record,
		"archived_at": time.Now().UTC().Format(time.RFC3339),
	}
	value, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal score record: %w", err)
	}

	writes := []*runtime.StorageWrite{
		{
			Collection:      scoreArchiveCollection,
			Key:             entry.GameID,
			Value:           string(value),
			PermissionRead:  runtime.STORAGE_PERMISSION_PUBLIC_READ,
			PermissionWrite: runtime.STORAGE_PERMISSION_NO_WRITE,
		},
	}
	if _, err := a.nk.StorageWrite(ctx, writes); err != nil {
		return fmt.Errorf("failed to archive score for game %s: %w", entry.GameID, err)
	}
	return nil
}

var _ ports.ScoreArchivePort = (*NakamaScoreArchiveAdapter)(nil)
