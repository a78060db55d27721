// Package pgutil connects to PostgreSQL through bun and provides test helpers.
package pgutil

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/driver/pgdriver"
	"go.uber.org/zap"

	"github.com/chainsafe/revenue-middleware/pkg/config"
)

const pingTimeout = 10 * time.Second

// ConnectDB opens the history database and verifies it answers a ping.
func ConnectDB(ctx context.Context, cfg *config.DatabaseConfig, logger *zap.Logger) (*bun.DB, error) {
	if cfg == nil {
		return nil, fmt.Errorf("database config is required")
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	// functional options escape special characters in credentials
	connector := pgdriver.NewConnector(
		pgdriver.WithNetwork("tcp"),
		pgdriver.WithAddr(fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)),
		pgdriver.WithUser(cfg.User),
		pgdriver.WithPassword(cfg.Password),
		pgdriver.WithDatabase(cfg.Database),
		pgdriver.WithInsecure(cfg.SSLMode == "" || cfg.SSLMode == "disable"),
		pgdriver.WithApplicationName("revenue-middleware"),
	)

	db := bun.NewDB(sql.OpenDB(connector), pgdialect.New())

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to connect to database %s: %w", cfg.Database, err)
	}

	logger.Info("connected to database",
		zap.String("host", cfg.Host),
		zap.Int("port", cfg.Port),
		zap.String("database", cfg.Database))
	return db, nil
}
