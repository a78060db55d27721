package revenuedb

import (
	"context"

	"github.com/uptrace/bun"

	mghelper "github.com/chainsafe/revenue-middleware/pkg/pgutil/migrations"
	"github.com/chainsafe/revenue-middleware/pkg/revenuestore"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		if err := mghelper.CreateSchema(ctx, db, &revenuestore.SnapshotDao{}); err != nil {
			return err
		}
		return mghelper.CreateModelIndexes(ctx, db, &revenuestore.SnapshotDao{}, "account_id, entity_id, recorded_at")
	}, func(ctx context.Context, db *bun.DB) error {
		return mghelper.DropTables(ctx, db, &revenuestore.SnapshotDao{})
	})
}
