package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/chainsafe/revenue-middleware/pkg/amount"
	apperrors "github.com/chainsafe/revenue-middleware/pkg/app/errors"
	"github.com/chainsafe/revenue-middleware/pkg/gateway"
	"github.com/chainsafe/revenue-middleware/pkg/notify"
	"github.com/chainsafe/revenue-middleware/pkg/revenue"
	"github.com/chainsafe/revenue-middleware/pkg/revenue/controller"
	"github.com/chainsafe/revenue-middleware/pkg/revenuestore"
)

const (
	account = revenue.AccountID(1)
	entity  = revenue.EntityID(77)
)

type failingHistory struct{}

func (failingHistory) RecordSnapshot(context.Context, *revenuestore.SnapshotRecord) error { return nil }

func (failingHistory) SnapshotHistory(
	context.Context, revenue.AccountID, revenue.EntityID, int,
) ([]*revenuestore.SnapshotRecord, error) {
	return nil, errors.New("connection refused")
}

func status(t *testing.T, available string) revenue.Status {
	t.Helper()
	a, err := amount.FromDecimal(available, amount.Token)
	require.NoError(t, err)
	return revenue.Status{
		Balances:          revenue.Balances{Current: a, Available: a, Overall: a},
		WithdrawalEnabled: true,
		USDRate:           decimal.RequireFromString("0.5"),
	}
}

// fakeGateway answers every status request with st and every page request with
// a single transaction.
func fakeGateway(st revenue.Status) gateway.Gateway {
	return gateway.Func(func(_ context.Context, req gateway.Request) (gateway.Response, error) {
		switch r := req.(type) {
		case *gateway.StatusRequest:
			return &gateway.StatusResponse{Status: st}, nil
		case *gateway.TransactionsRequest:
			return &gateway.TransactionsResponse{Transactions: []revenue.Transaction{{
				ID:        "tx-" + r.Stream.String(),
				Direction: revenue.DirectionIncoming,
				Amount:    st.Balances.Available,
			}}}, nil
		default:
			return nil, errors.New("unexpected request")
		}
	})
}

type fixture struct {
	svc      Service
	registry *controller.Registry
	sub      *notify.Subscription
}

func setup(t *testing.T, limits *amount.Limits, history revenuestore.Store) *fixture {
	t.Helper()
	bus := notify.NewBus(32, zap.NewNop())
	registry := controller.NewRegistry(fakeGateway(status(t, "1000")), bus)
	sub := bus.Subscribe(notify.ForAccount(account))
	t.Cleanup(func() {
		sub.Close()
		registry.Close()
		bus.Close()
	})
	return &fixture{svc: NewService(registry, bus, limits, history), registry: registry, sub: sub}
}

func (f *fixture) waitFor(t *testing.T, topic notify.Topic) notify.Event {
	t.Helper()
	deadline := time.After(2 * time.Second)
	for {
		select {
		case ev := <-f.sub.C:
			if ev.Topic == topic {
				return ev
			}
		case <-deadline:
			t.Fatalf("timed out waiting for %s", topic)
		}
	}
}

func TestService_SnapshotLifecycle(t *testing.T) {
	f := setup(t, nil, nil)
	ctx := context.Background()

	_, err := f.svc.GetSnapshot(ctx, account, entity, false)
	assert.True(t, apperrors.Is(err, apperrors.CategoryResourceNotFound))

	require.NoError(t, f.svc.RefreshSnapshot(ctx, account, entity, RefreshForce))
	f.waitFor(t, notify.TopicSnapshotChanged)

	view, err := f.svc.GetSnapshot(ctx, account, entity, false)
	require.NoError(t, err)
	assert.Equal(t, entity, view.EntityID)
	require.NotNil(t, view.Status)
	assert.Equal(t, "1000", view.Status.Balances.Available.DecimalString())
	assert.Equal(t, "500.00", view.AvailableUSD)
	assert.NotNil(t, view.LastFetched)
	assert.False(t, view.InFlight)
}

func TestService_WithdrawalCheck(t *testing.T) {
	limits := amount.NewLimits()
	minimum, err := amount.FromWhole(100, amount.Token)
	require.NoError(t, err)
	maximum, err := amount.FromWhole(1_000_000, amount.Token)
	require.NoError(t, err)
	require.NoError(t, limits.Set(amount.Token, minimum, maximum))
	require.NoError(t, limits.Set(amount.Chain, amount.Zero(amount.Chain), amount.FromNano(1_000_000_000_000, amount.Chain)))

	f := setup(t, limits, nil)
	ctx := context.Background()

	check, err := f.svc.CheckWithdrawal(ctx, account, entity)
	require.NoError(t, err)
	assert.False(t, check.Allowed)
	assert.Equal(t, controller.ReasonNoData, check.Reason)

	require.NoError(t, f.svc.RefreshSnapshot(ctx, account, entity, RefreshPreload))
	f.waitFor(t, notify.TopicSnapshotChanged)

	check, err = f.svc.CheckWithdrawal(ctx, account, entity)
	require.NoError(t, err)
	assert.True(t, check.Allowed)
}

func TestService_WithdrawalWithoutLimits(t *testing.T) {
	f := setup(t, nil, nil)
	_, err := f.svc.CheckWithdrawal(context.Background(), account, entity)
	assert.True(t, apperrors.Is(err, apperrors.CategoryNotSupported))
}

func TestService_Streams(t *testing.T) {
	f := setup(t, nil, nil)
	ctx := context.Background()

	require.NoError(t, f.svc.LoadStream(ctx, account, entity, revenue.StreamIncoming))
	f.waitFor(t, notify.TopicTransactionsChanged)

	view, err := f.svc.GetStream(ctx, account, entity, revenue.StreamIncoming)
	require.NoError(t, err)
	require.Len(t, view.Transactions, 1)
	assert.Equal(t, "tx-incoming", view.Transactions[0].ID)
	assert.True(t, view.EndReached)

	require.NoError(t, f.svc.InvalidateStreams(ctx, account, entity, false))
	f.waitFor(t, notify.TopicTransactionsChanged)
	view, err = f.svc.GetStream(ctx, account, entity, revenue.StreamIncoming)
	require.NoError(t, err)
	assert.Empty(t, view.Transactions)
	assert.True(t, view.EverHadData)

	require.NoError(t, f.svc.PreloadStreams(ctx, account, entity))
	for range 3 {
		f.waitFor(t, notify.TopicTransactionsChanged)
	}
	view, err = f.svc.GetStream(ctx, account, entity, revenue.StreamAll)
	require.NoError(t, err)
	assert.Len(t, view.Transactions, 1)
}

func TestService_BalanceUpdate(t *testing.T) {
	f := setup(t, nil, nil)
	ctx := context.Background()

	err := f.svc.HandleBalanceUpdate(ctx, account, revenue.BalanceUpdate{Kind: revenue.PeerBot, EntityID: entity})
	assert.True(t, apperrors.Is(err, apperrors.CategoryDataError))

	st := status(t, "42")
	require.NoError(t, f.svc.HandleBalanceUpdate(ctx, account, revenue.BalanceUpdate{
		Kind: revenue.PeerBot, EntityID: entity, Status: &st,
	}))
	ev := f.waitFor(t, notify.TopicSnapshotChanged)
	require.NotNil(t, ev.Status)
	assert.Equal(t, "42", ev.Status.Balances.Available.DecimalString())

	require.NoError(t, f.svc.HandleBalanceUpdate(ctx, account, revenue.BalanceUpdate{
		Kind: revenue.PeerChannel, EntityID: 5, Status: &st,
	}))
	ev = f.waitFor(t, notify.TopicChannelBalanceChanged)
	assert.Equal(t, revenue.EntityID(5), ev.EntityID)
}

func TestService_SnapshotHistory(t *testing.T) {
	ctx := context.Background()

	_, err := setup(t, nil, nil).svc.SnapshotHistory(ctx, account, entity, 10)
	assert.True(t, apperrors.Is(err, apperrors.CategoryNotSupported))

	_, err = setup(t, nil, failingHistory{}).svc.SnapshotHistory(ctx, account, entity, 10)
	assert.True(t, apperrors.Is(err, apperrors.CategoryDependencyFailure))
}

func TestService_Subscribe(t *testing.T) {
	f := setup(t, nil, nil)
	sub, err := f.svc.Subscribe(context.Background(), account)
	require.NoError(t, err)
	defer sub.Close()

	require.NoError(t, f.svc.RefreshSnapshot(context.Background(), account, entity, RefreshDefault))
	select {
	case ev := <-sub.C:
		assert.Equal(t, account, ev.Account)
	case <-time.After(2 * time.Second):
		t.Fatal("no event delivered")
	}

	_, err = NewService(f.registry, nil, nil, nil).Subscribe(context.Background(), account)
	assert.True(t, apperrors.Is(err, apperrors.CategoryNotSupported))
}

func TestService_StoppedRegistry(t *testing.T) {
	f := setup(t, nil, nil)
	f.registry.Close()

	err := f.svc.RefreshSnapshot(context.Background(), account, entity, RefreshForce)
	assert.True(t, apperrors.Is(err, apperrors.CategoryRecovering))
}

func TestMapError(t *testing.T) {
	assert.NoError(t, mapError(nil))
	assert.True(t, apperrors.Is(mapError(amount.ErrInvalidAmount), apperrors.CategoryDataError))
	assert.True(t, apperrors.Is(mapError(revenue.ErrUnknownStream), apperrors.CategoryDataError))
	assert.True(t, apperrors.Is(mapError(errors.New("boom")), apperrors.CategoryGeneralError))

	notFound := apperrors.ResourceNotFoundError(nil, "x")
	assert.Same(t, notFound, mapError(notFound))
}
