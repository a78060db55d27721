package snapshot

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/chainsafe/revenue-middleware/pkg/amount"
	"github.com/chainsafe/revenue-middleware/pkg/revenue"
)

const entity = revenue.EntityID(42)

var t0 = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

func status(available int64) *revenue.Status {
	a, _ := amount.FromWhole(available, amount.Token)
	return &revenue.Status{Balances: revenue.Balances{Available: a, Current: a, Overall: a}}
}

func TestCache_GetUnknownEntity(t *testing.T) {
	c := New()
	assert.Nil(t, c.Get(entity))
	_, ok := c.Entry(entity)
	assert.False(t, ok)
}

func TestCache_InFlightDeduplication(t *testing.T) {
	c := New()

	require.True(t, c.BeginRefresh(entity, WindowRead, false, t0))
	assert.False(t, c.BeginRefresh(entity, WindowRead, false, t0))
	assert.False(t, c.BeginRefresh(entity, WindowRead, true, t0), "force does not bypass in-flight")

	e, ok := c.Entry(entity)
	require.True(t, ok)
	assert.True(t, e.InFlight)
	assert.False(t, e.Fetched())
}

func TestCache_FreshnessWindows(t *testing.T) {
	tests := []struct {
		name   string
		window Window
		age    time.Duration
		force  bool
		want   bool
	}{
		{"read inside window", WindowRead, 4 * time.Minute, false, false},
		{"read after window", WindowRead, 5 * time.Minute, false, true},
		{"preload inside window", WindowPreload, 29 * time.Second, false, false},
		{"preload after window", WindowPreload, 30 * time.Second, false, true},
		{"preload is stricter than read", WindowPreload, time.Minute, false, true},
		{"force bypasses read window", WindowRead, time.Second, true, true},
		{"force bypasses preload window", WindowPreload, 0, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New()
			require.True(t, c.BeginRefresh(entity, tt.window, false, t0))
			c.Complete(entity, status(1), t0)

			assert.Equal(t, tt.want, c.BeginRefresh(entity, tt.window, tt.force, t0.Add(tt.age)))
		})
	}
}

func TestCache_CustomWindows(t *testing.T) {
	c := New(WithWindows(time.Second, 0))
	c.Complete(entity, status(1), t0)

	assert.True(t, c.BeginRefresh(entity, WindowPreload, false, t0.Add(time.Second)))
	c.Complete(entity, status(1), t0)
	assert.False(t, c.BeginRefresh(entity, WindowRead, false, t0.Add(DefaultReadWindow-time.Millisecond)))
}

func TestCache_CompleteReplacesStatus(t *testing.T) {
	c := New()
	first := status(100)
	second := &revenue.Status{WithdrawalEnabled: true}

	c.BeginRefresh(entity, WindowRead, true, t0)
	c.Complete(entity, first, t0)
	require.Same(t, first, c.Get(entity))

	c.BeginRefresh(entity, WindowRead, true, t0.Add(time.Second))
	c.Complete(entity, second, t0.Add(time.Second))

	got := c.Get(entity)
	require.Same(t, second, got)
	assert.True(t, got.Balances.Available.IsZero(), "no field of the previous status survives")

	e, _ := c.Entry(entity)
	assert.False(t, e.InFlight)
	assert.Equal(t, t0.Add(time.Second), e.LastFetched)
}

func TestCache_FailureAfterSuccessDropsStatus(t *testing.T) {
	c := New()
	c.BeginRefresh(entity, WindowRead, true, t0)
	c.Complete(entity, status(100), t0)

	c.BeginRefresh(entity, WindowRead, true, t0.Add(time.Minute))
	c.Fail(entity, t0.Add(time.Minute))

	assert.Nil(t, c.Get(entity))
	e, _ := c.Entry(entity)
	assert.False(t, e.InFlight)
	assert.Equal(t, t0.Add(time.Minute), e.LastFetched)

	assert.False(t, c.BeginRefresh(entity, WindowRead, false, t0.Add(2*time.Minute)), "failure still stamps the entry")
}

func TestCache_ApplyLiveKeepsInFlight(t *testing.T) {
	c := New()
	require.True(t, c.BeginRefresh(entity, WindowRead, true, t0))

	pushed := status(7)
	c.ApplyLive(entity, pushed, t0.Add(time.Second))

	assert.Same(t, pushed, c.Get(entity))
	e, _ := c.Entry(entity)
	assert.True(t, e.InFlight)
	assert.Equal(t, t0.Add(time.Second), e.LastFetched)
	assert.Equal(t, 1, c.Len())
}
