// Package warmer keeps configured entities warm by periodically preloading their
// snapshots and transaction streams.
package warmer

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"

	"github.com/chainsafe/revenue-middleware/internal/metrics"
	"github.com/chainsafe/revenue-middleware/pkg/config"
	"github.com/chainsafe/revenue-middleware/pkg/revenue"
	"github.com/chainsafe/revenue-middleware/pkg/revenue/controller"
)

// Registry hands out account controllers.
type Registry interface {
	Controller(account revenue.AccountID) (*controller.Controller, error)
}

// Target is an entity of an account kept warm.
type Target struct {
	Account revenue.AccountID
	Entity  revenue.EntityID
}

// Warmer runs a preload pass over its targets on a cron schedule
type Warmer struct {
	registry Registry
	targets  []Target
	cron     *cron.Cron
	logger   *zap.Logger

	mu      sync.Mutex
	started bool
}

// New creates a warmer for cfg. The schedule accepts the standard five field
// cron syntax and the @every/@hourly descriptors.
func New(registry Registry, cfg *config.WarmerConfig, logger *zap.Logger) (*Warmer, error) {
	if cfg == nil {
		return nil, errors.New("warmer config is required")
	}
	logger = logger.Named("warmer")

	targets := make([]Target, 0, len(cfg.Entities))
	for _, e := range cfg.Entities {
		targets = append(targets, Target{Account: revenue.AccountID(e.Account), Entity: revenue.EntityID(e.Entity)})
	}

	w := &Warmer{
		registry: registry,
		targets:  targets,
		logger:   logger,
		cron:     cron.New(cron.WithChain(cron.Recover(cronLogger{logger}))),
	}
	if _, err := w.cron.AddFunc(cfg.Schedule, w.run); err != nil {
		return nil, fmt.Errorf("invalid warmer schedule %q: %w", cfg.Schedule, err)
	}
	return w, nil
}

// Targets returns the entities the warmer preloads.
func (w *Warmer) Targets() []Target {
	return append([]Target(nil), w.targets...)
}

// WarmAll queues a snapshot preload and a stream preload for every target.
// It keeps going past failing targets and returns their errors joined.
func (w *Warmer) WarmAll(ctx context.Context) error {
	var errs []error
	for _, t := range w.targets {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := w.warm(t); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (w *Warmer) warm(t Target) error {
	c, err := w.registry.Controller(t.Account)
	if err != nil {
		return fmt.Errorf("account %s: %w", t.Account, err)
	}
	if err := c.PreloadSnapshot(t.Entity); err != nil {
		return fmt.Errorf("preload snapshot %s/%s: %w", t.Account, t.Entity, err)
	}
	if err := c.PreloadStreams(t.Entity); err != nil {
		return fmt.Errorf("preload streams %s/%s: %w", t.Account, t.Entity, err)
	}
	return nil
}

func (w *Warmer) run() {
	metrics.WarmerRuns.Inc()
	if err := w.WarmAll(context.Background()); err != nil {
		metrics.ErrorsTotal.WithLabelValues("warmer", "preload").Inc()
		w.logger.Warn("warm-up pass incomplete", zap.Error(err))
		return
	}
	w.logger.Debug("warm-up pass queued", zap.Int("targets", len(w.targets)))
}

// Start runs one pass immediately and then follows the schedule.
func (w *Warmer) Start() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.started {
		return
	}
	w.started = true

	w.logger.Info("starting warmer", zap.Int("targets", len(w.targets)))
	w.run()
	w.cron.Start()
}

// Stop halts the schedule. The returned context is done once a running pass finishes.
func (w *Warmer) Stop() context.Context {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.started = false
	return w.cron.Stop()
}

// cronLogger adapts zap to cron.Logger.
type cronLogger struct {
	logger *zap.Logger
}

func (l cronLogger) Info(msg string, keysAndValues ...any) {
	l.logger.Debug(msg, zap.Any("details", keysAndValues))
}

func (l cronLogger) Error(err error, msg string, keysAndValues ...any) {
	l.logger.Error(msg, zap.Error(err), zap.Any("details", keysAndValues))
}
