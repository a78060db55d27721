package service

import (
	"context"
	"time"

	"go.uber.org/zap"

	apperrors "github.com/chainsafe/revenue-middleware/pkg/app/errors"
	"github.com/chainsafe/revenue-middleware/pkg/notify"
	"github.com/chainsafe/revenue-middleware/pkg/revenue"
	"github.com/chainsafe/revenue-middleware/pkg/revenue/controller"
	"github.com/chainsafe/revenue-middleware/pkg/revenue/history"
	"github.com/chainsafe/revenue-middleware/pkg/revenuestore"
)

const serviceName = "RevenueService"

// logService wraps Service with logging of every method call
type logService struct {
	svc    Service
	logger *zap.Logger
}

// NewLog creates a logging decorator for the revenue Service.
// It logs method entry at debug level and the outcome with its duration.
func NewLog(svc Service, logger *zap.Logger) Service {
	return &logService{svc: svc, logger: logger}
}

// done logs the outcome of a call. Client errors are logged at info level,
// internal ones at error level.
func (ls *logService) done(method string, start time.Time, err error, fields ...zap.Field) {
	fields = append(fields,
		zap.String("service", serviceName),
		zap.String("method", method),
		zap.Duration("duration", time.Since(start)),
	)
	switch {
	case err == nil:
		ls.logger.Debug(method+" completed", fields...)
	case apperrors.IsInternalError(err):
		ls.logger.Error(method+" failed", append(fields, zap.Error(err))...)
	default:
		ls.logger.Info(method+" rejected", append(fields, zap.Error(err))...)
	}
}

func (ls *logService) started(method string, fields ...zap.Field) {
	ls.logger.Debug(method+" started", append(fields,
		zap.String("service", serviceName),
		zap.String("method", method),
	)...)
}

func ids(account revenue.AccountID, entity revenue.EntityID) []zap.Field {
	return []zap.Field{zap.Stringer("account", account), zap.Stringer("entity_id", entity)}
}

// GetSnapshot wraps the service method with logging
func (ls *logService) GetSnapshot(
	ctx context.Context,
	account revenue.AccountID,
	entity revenue.EntityID,
	read bool,
) (view *SnapshotView, err error) {
	start := time.Now()
	fields := append(ids(account, entity), zap.Bool("read", read))
	ls.started("GetSnapshot", fields...)
	defer func() {
		if view != nil {
			fields = append(fields, zap.Bool("in_flight", view.InFlight))
		}
		ls.done("GetSnapshot", start, err, fields...)
	}()
	return ls.svc.GetSnapshot(ctx, account, entity, read)
}

// RefreshSnapshot wraps the service method with logging
func (ls *logService) RefreshSnapshot(
	ctx context.Context,
	account revenue.AccountID,
	entity revenue.EntityID,
	mode RefreshMode,
) (err error) {
	start := time.Now()
	fields := append(ids(account, entity), zap.Int("mode", int(mode)))
	ls.started("RefreshSnapshot", fields...)
	defer func() { ls.done("RefreshSnapshot", start, err, fields...) }()
	return ls.svc.RefreshSnapshot(ctx, account, entity, mode)
}

// HandleBalanceUpdate wraps the service method with logging
func (ls *logService) HandleBalanceUpdate(
	ctx context.Context,
	account revenue.AccountID,
	update revenue.BalanceUpdate,
) (err error) {
	start := time.Now()
	fields := append(ids(account, update.EntityID), zap.Stringer("kind", update.Kind))
	ls.started("HandleBalanceUpdate", fields...)
	defer func() { ls.done("HandleBalanceUpdate", start, err, fields...) }()
	return ls.svc.HandleBalanceUpdate(ctx, account, update)
}

// SnapshotHistory wraps the service method with logging
func (ls *logService) SnapshotHistory(
	ctx context.Context,
	account revenue.AccountID,
	entity revenue.EntityID,
	limit int,
) (records []*revenuestore.SnapshotRecord, err error) {
	start := time.Now()
	fields := append(ids(account, entity), zap.Int("limit", limit))
	ls.started("SnapshotHistory", fields...)
	defer func() {
		ls.done("SnapshotHistory", start, err, append(fields, zap.Int("records", len(records)))...)
	}()
	return ls.svc.SnapshotHistory(ctx, account, entity, limit)
}

// CheckWithdrawal wraps the service method with logging
func (ls *logService) CheckWithdrawal(
	ctx context.Context,
	account revenue.AccountID,
	entity revenue.EntityID,
) (check *controller.WithdrawalCheck, err error) {
	start := time.Now()
	fields := ids(account, entity)
	ls.started("CheckWithdrawal", fields...)
	defer func() {
		if check != nil {
			fields = append(fields, zap.Bool("allowed", check.Allowed), zap.String("reason", check.Reason))
		}
		ls.done("CheckWithdrawal", start, err, fields...)
	}()
	return ls.svc.CheckWithdrawal(ctx, account, entity)
}

// GetStream wraps the service method with logging
func (ls *logService) GetStream(
	ctx context.Context,
	account revenue.AccountID,
	entity revenue.EntityID,
	stream revenue.StreamType,
) (view *history.View, err error) {
	start := time.Now()
	fields := append(ids(account, entity), zap.Stringer("stream", stream))
	ls.started("GetStream", fields...)
	defer func() {
		if view != nil {
			fields = append(fields, zap.Int("transactions", len(view.Transactions)))
		}
		ls.done("GetStream", start, err, fields...)
	}()
	return ls.svc.GetStream(ctx, account, entity, stream)
}

// LoadStream wraps the service method with logging
func (ls *logService) LoadStream(
	ctx context.Context,
	account revenue.AccountID,
	entity revenue.EntityID,
	stream revenue.StreamType,
) (err error) {
	start := time.Now()
	fields := append(ids(account, entity), zap.Stringer("stream", stream))
	ls.started("LoadStream", fields...)
	defer func() { ls.done("LoadStream", start, err, fields...) }()
	return ls.svc.LoadStream(ctx, account, entity, stream)
}

// InvalidateStreams wraps the service method with logging
func (ls *logService) InvalidateStreams(
	ctx context.Context,
	account revenue.AccountID,
	entity revenue.EntityID,
	reload bool,
) (err error) {
	start := time.Now()
	fields := append(ids(account, entity), zap.Bool("reload", reload))
	ls.started("InvalidateStreams", fields...)
	defer func() { ls.done("InvalidateStreams", start, err, fields...) }()
	return ls.svc.InvalidateStreams(ctx, account, entity, reload)
}

// PreloadStreams wraps the service method with logging
func (ls *logService) PreloadStreams(ctx context.Context, account revenue.AccountID, entity revenue.EntityID) (err error) {
	start := time.Now()
	fields := ids(account, entity)
	ls.started("PreloadStreams", fields...)
	defer func() { ls.done("PreloadStreams", start, err, fields...) }()
	return ls.svc.PreloadStreams(ctx, account, entity)
}

// Subscribe wraps the service method with logging
func (ls *logService) Subscribe(ctx context.Context, account revenue.AccountID) (sub *notify.Subscription, err error) {
	start := time.Now()
	fields := []zap.Field{zap.Stringer("account", account)}
	ls.started("Subscribe", fields...)
	defer func() { ls.done("Subscribe", start, err, fields...) }()
	return ls.svc.Subscribe(ctx, account)
}
