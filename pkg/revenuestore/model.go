package revenuestore

import (
	"time"

	"github.com/uptrace/bun"

	"github.com/chainsafe/revenue-middleware/pkg/revenue"
)

// SnapshotDao maps to the 'snapshot_history' table. Currency and AvailableNano are
// denormalized from Status for querying; both are NULL when the snapshot was cleared.
type SnapshotDao struct {
	bun.BaseModel     `bun:"table:snapshot_history,alias:sh"`
	ID                int64           `bun:"id,pk,autoincrement"`
	AccountID         int64           `bun:"account_id,notnull"`
	EntityID          int64           `bun:"entity_id,notnull"`
	Currency          *string         `bun:"currency,type:varchar(8)"`
	AvailableNano     *int64          `bun:"available_nano"`
	WithdrawalEnabled bool            `bun:"withdrawal_enabled,notnull"`
	Status            *revenue.Status `bun:"status,type:jsonb"`
	RecordedAt        time.Time       `bun:"recorded_at,notnull"`
}

// SnapshotRecord is one observed state of an entity's revenue snapshot.
// A nil Status records that the cached snapshot was dropped after a failed fetch.
type SnapshotRecord struct {
	ID         int64             `json:"id"`
	Account    revenue.AccountID `json:"account"`
	EntityID   revenue.EntityID  `json:"entity_id"`
	Status     *revenue.Status   `json:"status"`
	RecordedAt time.Time         `json:"recorded_at"`
}

func toSnapshotDao(rec *SnapshotRecord) *SnapshotDao {
	dao := &SnapshotDao{
		AccountID:  int64(rec.Account),
		EntityID:   int64(rec.EntityID),
		Status:     rec.Status,
		RecordedAt: rec.RecordedAt.UTC(),
	}
	if rec.Status != nil {
		available := rec.Status.Balances.Available
		currency := available.Currency().String()
		nano := available.Nano()
		dao.Currency = &currency
		dao.AvailableNano = &nano
		dao.WithdrawalEnabled = rec.Status.WithdrawalEnabled
	}
	return dao
}

func toSnapshotRecord(dao *SnapshotDao) *SnapshotRecord {
	return &SnapshotRecord{
		ID:         dao.ID,
		Account:    revenue.AccountID(dao.AccountID),
		EntityID:   revenue.EntityID(dao.EntityID),
		Status:     dao.Status,
		RecordedAt: dao.RecordedAt,
	}
}
