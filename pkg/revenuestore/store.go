// Package revenuestore persists the history of revenue snapshots in PostgreSQL.
package revenuestore

import (
	"context"

	"github.com/chainsafe/revenue-middleware/pkg/revenue"
)

// DefaultHistoryLimit caps SnapshotHistory when the caller passes no limit.
const DefaultHistoryLimit = 50

// MaxHistoryLimit is the largest page SnapshotHistory returns.
const MaxHistoryLimit = 500

// Store defines snapshot history persistence.
type Store interface {
	RecordSnapshot(ctx context.Context, rec *SnapshotRecord) error
	// SnapshotHistory returns the newest records of an entity first.
	SnapshotHistory(ctx context.Context, account revenue.AccountID, entity revenue.EntityID, limit int) ([]*SnapshotRecord, error)
}

func normalizeLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultHistoryLimit
	case limit > MaxHistoryLimit:
		return MaxHistoryLimit
	default:
		return limit
	}
}
