package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"github.com/uptrace/bun/migrate"

	"github.com/chainsafe/revenue-middleware/pkg/config"
	"github.com/chainsafe/revenue-middleware/pkg/migrations/revenuedb"
	"github.com/chainsafe/revenue-middleware/pkg/pgutil"
	mghelper "github.com/chainsafe/revenue-middleware/pkg/pgutil/migrations"
)

func newMigrateCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [" + strings.Join(mghelper.Commands, "|") + "]",
		Short:     "Run snapshot history database migrations",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: mghelper.Commands,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if cfg.Database == nil {
				return errors.New("no database configured")
			}

			logger, err := config.NewLogger(cfg.Logging)
			if err != nil {
				return fmt.Errorf("setup logger: %w", err)
			}
			defer func() { _ = logger.Sync() }()

			ctx := cmd.Context()
			db, err := pgutil.ConnectDB(ctx, cfg.Database, logger)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			migrator := migrate.NewMigrator(db, revenuedb.Migrations)
			return mghelper.Run(ctx, migrator, logger, args[0])
		},
	}
}
