// Package migrations holds bun schema helpers shared by the migration sets.
package migrations

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/migrate"
	"go.uber.org/zap"
)

// Commands lists the migration commands understood by Run.
var Commands = []string{"init", "up", "down", "status"}

// ErrUnknownCommand is returned by Run for a command outside Commands.
var ErrUnknownCommand = errors.New("unknown migration command")

// CreateSchema creates a table per model, skipping ones that already exist.
func CreateSchema(ctx context.Context, db bun.IDB, models ...any) error {
	for _, model := range models {
		if _, err := db.NewCreateTable().
			Model(model).
			IfNotExists().
			Exec(ctx); err != nil {
			return fmt.Errorf("create table for %T: %w", model, err)
		}
	}
	return nil
}

// DropTables drops the tables backing models.
func DropTables(ctx context.Context, db bun.IDB, models ...any) error {
	for _, model := range models {
		if _, err := db.NewDropTable().
			Model(model).
			IfExists().
			Cascade().
			Exec(ctx); err != nil {
			return fmt.Errorf("drop table for %T: %w", model, err)
		}
	}
	return nil
}

// TruncateTables removes every row from the tables backing models.
func TruncateTables(ctx context.Context, db bun.IDB, models ...any) error {
	for _, model := range models {
		if _, err := db.NewDelete().
			Model(model).
			Where("1=1").
			Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

// CreateModelIndexes creates one index per column, named idx_<table>_<column>.
// A column may be a comma separated list for a composite index.
func CreateModelIndexes(ctx context.Context, db bun.IDB, model any, columns ...string) error {
	for _, column := range columns {
		indexName, err := modelIndexName(db, model, column)
		if err != nil {
			return err
		}
		if _, err = db.NewCreateIndex().
			Model(model).
			Index(indexName).
			ColumnExpr(column).
			IfNotExists().
			Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

// DropModelIndexes drops indexes created by CreateModelIndexes.
func DropModelIndexes(ctx context.Context, db bun.IDB, model any, columns ...string) error {
	for _, column := range columns {
		indexName, err := modelIndexName(db, model, column)
		if err != nil {
			return err
		}
		if _, err = db.NewDropIndex().
			Model(model).
			Index(indexName).
			IfExists().
			Exec(ctx); err != nil {
			return err
		}
	}
	return nil
}

func modelIndexName(db bun.IDB, model any, column string) (string, error) {
	if model == nil {
		return "", fmt.Errorf("model cannot be nil")
	}
	tableName := db.NewCreateIndex().Model(model).GetTableName()
	if tableName == "" {
		return "", fmt.Errorf("failed to resolve table name for model %T", model)
	}

	r := strings.NewReplacer(`"`, "", ".", "_", ",", "_", " ", "")
	return fmt.Sprintf("idx_%s_%s", r.Replace(tableName), r.Replace(column)), nil
}

// Run executes one migration command against migrator.
func Run(ctx context.Context, migrator *migrate.Migrator, logger *zap.Logger, command string) error {
	switch command {
	case "init":
		if err := migrator.Init(ctx); err != nil {
			return err
		}
		logger.Info("migration tables created")
		return nil

	case "up":
		return withLock(ctx, migrator, logger, func() error {
			group, err := migrator.Migrate(ctx)
			if err != nil {
				return err
			}
			if group.IsZero() {
				logger.Info("no new migrations to run, database is up to date")
			} else {
				logger.Info("migrated", zap.Stringer("group", group))
			}
			return nil
		})

	case "down":
		return withLock(ctx, migrator, logger, func() error {
			group, err := migrator.Rollback(ctx)
			if err != nil {
				return err
			}
			if group.IsZero() {
				logger.Info("no migrations to roll back")
			} else {
				logger.Info("rolled back", zap.Stringer("group", group))
			}
			return nil
		})

	case "status":
		ms, err := migrator.MigrationsWithStatus(ctx)
		if err != nil {
			return err
		}
		logger.Info("migration status",
			zap.Stringer("migrations", ms),
			zap.Stringer("unapplied", ms.Unapplied()),
			zap.Stringer("last_group", ms.LastGroup()))
		return nil

	default:
		return fmt.Errorf("%w: %q", ErrUnknownCommand, command)
	}
}

func withLock(ctx context.Context, migrator *migrate.Migrator, logger *zap.Logger, fn func() error) error {
	if err := migrator.Lock(ctx); err != nil {
		return fmt.Errorf("failed to acquire migration lock: %w", err)
	}
	defer func() {
		if err := migrator.Unlock(ctx); err != nil {
			logger.Warn("failed to release migration lock", zap.Error(err))
		}
	}()
	return fn()
}
