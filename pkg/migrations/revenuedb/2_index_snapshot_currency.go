package revenuedb

import (
	"context"

	"github.com/uptrace/bun"

	mghelper "github.com/chainsafe/revenue-middleware/pkg/pgutil/migrations"
	"github.com/chainsafe/revenue-middleware/pkg/revenuestore"
)

func init() {
	Migrations.MustRegister(func(ctx context.Context, db *bun.DB) error {
		return mghelper.CreateModelIndexes(ctx, db, &revenuestore.SnapshotDao{}, "currency")
	}, func(ctx context.Context, db *bun.DB) error {
		return mghelper.DropModelIndexes(ctx, db, &revenuestore.SnapshotDao{}, "currency")
	})
}
