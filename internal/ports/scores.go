package ports

import (
	"context"

	"twentyeight/internal/domain"
)

// ScoreArchiveEntry is one completed hand's outcome as persisted for a
// table's history.
type ScoreArchiveEntry struct {
	GameID  string
	TableID string
	Record  domain.ScoreRecord
}

// ScoreArchivePort persists immutable score records for completed hands.
type ScoreArchivePort interface {
	// ArchiveScore stores the final score record of a completed game.
	ArchiveScore(ctx context.Context, entry ScoreArchiveEntry) error
}
