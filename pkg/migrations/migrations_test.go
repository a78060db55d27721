package migrations

import (
	"context"
	"testing"

	"github.com/uptrace/bun/migrate"

	"github.com/chainsafe/revenue-middleware/pkg/migrations/revenuedb"
	mghelper "github.com/chainsafe/revenue-middleware/pkg/pgutil"
)

func TestRevenueDBMigrations_Apply(t *testing.T) {
	db, cleanup := mghelper.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	migrator := migrate.NewMigrator(db, revenuedb.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}
	if group.IsZero() {
		t.Error("Expected migrations to run, but none were applied")
	}

	for _, table := range []string{"snapshot_history", "bun_migrations"} {
		mghelper.AssertTableExists(t, db, table)
	}
	mghelper.AssertIndexExists(t, db, "idx_snapshot_history_account_id_entity_id_recorded_at")
	mghelper.AssertIndexExists(t, db, "idx_snapshot_history_currency")
}

func TestRevenueDBMigrations_Idempotency(t *testing.T) {
	db, cleanup := mghelper.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	migrator := migrate.NewMigrator(db, revenuedb.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("First Migrate() failed: %v", err)
	}

	group, err := migrator.Migrate(ctx)
	if err != nil {
		t.Fatalf("Second Migrate() failed: %v", err)
	}
	if !group.IsZero() {
		t.Error("Expected no new migrations on second run")
	}
	mghelper.AssertTableExists(t, db, "snapshot_history")
}

func TestRevenueDBMigrations_Rollback(t *testing.T) {
	db, cleanup := mghelper.SetupTestDB(t)
	defer cleanup()
	ctx := context.Background()

	migrator := migrate.NewMigrator(db, revenuedb.Migrations)
	if err := migrator.Init(ctx); err != nil {
		t.Fatalf("Init() failed: %v", err)
	}
	if _, err := migrator.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() failed: %v", err)
	}

	// Migrate applies everything as one group, so one rollback reverts it all.
	group, err := migrator.Rollback(ctx)
	if err != nil {
		t.Fatalf("Rollback() failed: %v", err)
	}
	if group.IsZero() {
		t.Error("Expected rollback to process a migration")
	}
	mghelper.AssertTableNotExists(t, db, "snapshot_history")
}
