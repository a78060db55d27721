package revenuestore

import (
	"context"
	"errors"
	"fmt"

	"github.com/uptrace/bun"

	"github.com/chainsafe/revenue-middleware/pkg/revenue"
)

type pgStore struct {
	db *bun.DB
}

// NewStore creates a postgres implementation of the snapshot history store.
func NewStore(db *bun.DB) *pgStore {
	return &pgStore{db: db}
}

func (s *pgStore) RecordSnapshot(ctx context.Context, rec *SnapshotRecord) error {
	if rec == nil {
		return errors.New("nil snapshot record")
	}
	dao := toSnapshotDao(rec)

	_, err := s.db.NewInsert().
		Model(dao).
		Returning("id").
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("failed to record snapshot: %w", err)
	}
	rec.ID = dao.ID
	return nil
}

func (s *pgStore) SnapshotHistory(
	ctx context.Context,
	account revenue.AccountID,
	entity revenue.EntityID,
	limit int,
) ([]*SnapshotRecord, error) {
	var daos []SnapshotDao
	err := s.db.NewSelect().
		Model(&daos).
		Where("account_id = ?", int64(account)).
		Where("entity_id = ?", int64(entity)).
		Order("recorded_at DESC", "id DESC").
		Limit(normalizeLimit(limit)).
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list snapshot history: %w", err)
	}

	out := make([]*SnapshotRecord, len(daos))
	for i := range daos {
		out[i] = toSnapshotRecord(&daos[i])
	}
	return out, nil
}
