// Package service exposes the account controllers to HTTP clients.
package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/chainsafe/revenue-middleware/pkg/amount"
	apperrors "github.com/chainsafe/revenue-middleware/pkg/app/errors"
	"github.com/chainsafe/revenue-middleware/pkg/notify"
	"github.com/chainsafe/revenue-middleware/pkg/revenue"
	"github.com/chainsafe/revenue-middleware/pkg/revenue/controller"
	"github.com/chainsafe/revenue-middleware/pkg/revenue/history"
	"github.com/chainsafe/revenue-middleware/pkg/revenuestore"
)

// RefreshMode selects the freshness rule of a snapshot refresh.
type RefreshMode int

const (
	// RefreshDefault fetches when the snapshot is older than the read window.
	RefreshDefault RefreshMode = iota
	// RefreshForce fetches unless a fetch is already in flight.
	RefreshForce
	// RefreshPreload fetches when the snapshot is older than the preload window.
	RefreshPreload
)

// SnapshotView is the cached status of an entity plus its cache bookkeeping.
type SnapshotView struct {
	EntityID     revenue.EntityID `json:"entity_id"`
	Status       *revenue.Status  `json:"status"`
	AvailableUSD string           `json:"available_usd"`
	LastFetched  *time.Time       `json:"last_fetched,omitempty"`
	InFlight     bool             `json:"in_flight"`
}

// Registry hands out account controllers.
type Registry interface {
	Controller(account revenue.AccountID) (*controller.Controller, error)
}

// Service defines the revenue query API
//
//go:generate mockery --name Service --output mocks --outpkg mocks --filename mock_service.go --with-expecter
type Service interface {
	GetSnapshot(ctx context.Context, account revenue.AccountID, entity revenue.EntityID, read bool) (*SnapshotView, error)
	RefreshSnapshot(ctx context.Context, account revenue.AccountID, entity revenue.EntityID, mode RefreshMode) error
	HandleBalanceUpdate(ctx context.Context, account revenue.AccountID, update revenue.BalanceUpdate) error
	SnapshotHistory(
		ctx context.Context,
		account revenue.AccountID,
		entity revenue.EntityID,
		limit int,
	) ([]*revenuestore.SnapshotRecord, error)
	CheckWithdrawal(ctx context.Context, account revenue.AccountID, entity revenue.EntityID) (*controller.WithdrawalCheck, error)
	GetStream(
		ctx context.Context,
		account revenue.AccountID,
		entity revenue.EntityID,
		stream revenue.StreamType,
	) (*history.View, error)
	LoadStream(ctx context.Context, account revenue.AccountID, entity revenue.EntityID, stream revenue.StreamType) error
	InvalidateStreams(ctx context.Context, account revenue.AccountID, entity revenue.EntityID, reload bool) error
	PreloadStreams(ctx context.Context, account revenue.AccountID, entity revenue.EntityID) error
	Subscribe(ctx context.Context, account revenue.AccountID) (*notify.Subscription, error)
}

type revenueService struct {
	registry Registry
	bus      *notify.Bus
	limits   *amount.Limits
	history  revenuestore.Store
}

// NewService creates the revenue service. history may be nil when no database is configured.
func NewService(registry Registry, bus *notify.Bus, limits *amount.Limits, history revenuestore.Store) Service {
	return &revenueService{
		registry: registry,
		bus:      bus,
		limits:   limits,
		history:  history,
	}
}

func (s *revenueService) controller(account revenue.AccountID) (*controller.Controller, error) {
	c, err := s.registry.Controller(account)
	if err != nil {
		return nil, mapError(err)
	}
	return c, nil
}

func (s *revenueService) GetSnapshot(
	_ context.Context,
	account revenue.AccountID,
	entity revenue.EntityID,
	read bool,
) (*SnapshotView, error) {
	c, err := s.controller(account)
	if err != nil {
		return nil, err
	}

	var st *revenue.Status
	if read {
		st = c.ReadSnapshot(entity)
	} else {
		st = c.GetSnapshot(entity)
	}
	if st == nil {
		return nil, apperrors.ResourceNotFoundError(nil, "no data")
	}

	view := &SnapshotView{
		EntityID:     entity,
		Status:       st,
		AvailableUSD: st.Balances.Available.USDValue(st.USDRate).StringFixed(2),
	}
	if e, ok := c.SnapshotEntry(entity); ok {
		view.InFlight = e.InFlight
		if e.Fetched() {
			fetched := e.LastFetched
			view.LastFetched = &fetched
		}
	}
	return view, nil
}

func (s *revenueService) RefreshSnapshot(
	_ context.Context,
	account revenue.AccountID,
	entity revenue.EntityID,
	mode RefreshMode,
) error {
	c, err := s.controller(account)
	if err != nil {
		return err
	}
	switch mode {
	case RefreshPreload:
		err = c.PreloadSnapshot(entity)
	case RefreshForce:
		err = c.RefreshSnapshot(entity, true)
	default:
		err = c.RefreshSnapshot(entity, false)
	}
	return mapError(err)
}

func (s *revenueService) HandleBalanceUpdate(
	_ context.Context,
	account revenue.AccountID,
	update revenue.BalanceUpdate,
) error {
	if update.Kind == revenue.PeerBot && update.Status == nil {
		return apperrors.BadRequestError(nil, "status is required for bot updates")
	}
	c, err := s.controller(account)
	if err != nil {
		return err
	}
	return mapError(c.HandleBalanceUpdate(update))
}

func (s *revenueService) SnapshotHistory(
	ctx context.Context,
	account revenue.AccountID,
	entity revenue.EntityID,
	limit int,
) ([]*revenuestore.SnapshotRecord, error) {
	if s.history == nil {
		return nil, apperrors.NotSupportedError(nil, "snapshot history requires a database")
	}
	records, err := s.history.SnapshotHistory(ctx, account, entity, limit)
	if err != nil {
		return nil, apperrors.DependencyFailureError(err, "failed to read snapshot history")
	}
	return records, nil
}

func (s *revenueService) CheckWithdrawal(
	_ context.Context,
	account revenue.AccountID,
	entity revenue.EntityID,
) (*controller.WithdrawalCheck, error) {
	c, err := s.controller(account)
	if err != nil {
		return nil, err
	}
	check, err := c.CanWithdraw(entity, s.limits)
	if err != nil {
		return nil, mapError(err)
	}
	return &check, nil
}

func (s *revenueService) GetStream(
	_ context.Context,
	account revenue.AccountID,
	entity revenue.EntityID,
	stream revenue.StreamType,
) (*history.View, error) {
	c, err := s.controller(account)
	if err != nil {
		return nil, err
	}
	v := c.GetStream(entity, stream)
	return &v, nil
}

func (s *revenueService) LoadStream(
	_ context.Context,
	account revenue.AccountID,
	entity revenue.EntityID,
	stream revenue.StreamType,
) error {
	c, err := s.controller(account)
	if err != nil {
		return err
	}
	return mapError(c.LoadStream(entity, stream))
}

func (s *revenueService) InvalidateStreams(
	_ context.Context,
	account revenue.AccountID,
	entity revenue.EntityID,
	reload bool,
) error {
	c, err := s.controller(account)
	if err != nil {
		return err
	}
	return mapError(c.InvalidateStreams(entity, reload))
}

func (s *revenueService) PreloadStreams(_ context.Context, account revenue.AccountID, entity revenue.EntityID) error {
	c, err := s.controller(account)
	if err != nil {
		return err
	}
	return mapError(c.PreloadStreams(entity))
}

func (s *revenueService) Subscribe(_ context.Context, account revenue.AccountID) (*notify.Subscription, error) {
	if s.bus == nil {
		return nil, apperrors.NotSupportedError(nil, "event stream is disabled")
	}
	return s.bus.Subscribe(notify.ForAccount(account)), nil
}

func mapError(err error) error {
	if err == nil {
		return nil
	}
	var svcErr *apperrors.ServiceError
	switch {
	case errors.As(err, &svcErr):
		return err
	case errors.Is(err, controller.ErrControllerStopped):
		return apperrors.RecoveringError(err, "service is shutting down")
	case errors.Is(err, amount.ErrLimitsNotSet):
		return apperrors.NotSupportedError(err, "withdrawal limits are not configured")
	case errors.Is(err, amount.ErrInvalidAmount), errors.Is(err, amount.ErrCurrencyMismatch):
		return apperrors.BadRequestError(err, "invalid amount")
	case errors.Is(err, revenue.ErrUnknownStream):
		return apperrors.BadRequestError(err, "unknown stream")
	default:
		return apperrors.GeneralError(fmt.Errorf("revenue service: %w", err))
	}
}
