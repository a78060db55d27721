package controller

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chainsafe/revenue-middleware/pkg/gateway"
	"github.com/chainsafe/revenue-middleware/pkg/notify"
	"github.com/chainsafe/revenue-middleware/pkg/revenue"
)

const waitTimeout = 2 * time.Second

type reply struct {
	resp gateway.Response
	err  error
}

// pendingCall is a gateway request held until the test answers it.
type pendingCall struct {
	req   gateway.Request
	reply chan reply
}

func (p *pendingCall) respond(resp gateway.Response) { p.reply <- reply{resp: resp} }
func (p *pendingCall) fail(err error)                { p.reply <- reply{err: err} }

// MockGateway parks every request until the test completes it, so the order of
// completions is fully controlled by the test.
type MockGateway struct {
	calls chan *pendingCall
}

func newMockGateway() *MockGateway {
	return &MockGateway{calls: make(chan *pendingCall, 64)}
}

func (g *MockGateway) Send(ctx context.Context, req gateway.Request) (gateway.Response, error) {
	call := &pendingCall{req: req, reply: make(chan reply, 1)}
	g.calls <- call
	select {
	case r := <-call.reply:
		return r.resp, r.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (g *MockGateway) next(t *testing.T) *pendingCall {
	t.Helper()
	select {
	case call := <-g.calls:
		return call
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for a gateway request")
		return nil
	}
}

func (g *MockGateway) expectNone(t *testing.T) {
	t.Helper()
	select {
	case call := <-g.calls:
		t.Fatalf("unexpected gateway request %s", call.req.Method())
	case <-time.After(50 * time.Millisecond):
	}
}

// MockClock is a settable time source.
type MockClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *MockClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *MockClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// MockChannelForwarder records forwarded channel updates.
type MockChannelForwarder struct {
	ForwardChannelBalanceFunc func(account revenue.AccountID, update revenue.BalanceUpdate)
}

func (m *MockChannelForwarder) ForwardChannelBalance(account revenue.AccountID, update revenue.BalanceUpdate) {
	if m.ForwardChannelBalanceFunc != nil {
		m.ForwardChannelBalanceFunc(account, update)
	}
}

func nextEvent(t *testing.T, sub *notify.Subscription) notify.Event {
	t.Helper()
	select {
	case ev, ok := <-sub.C:
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(waitTimeout):
		t.Fatal("timed out waiting for notification")
		return notify.Event{}
	}
}

func noEvent(t *testing.T, sub *notify.Subscription) {
	t.Helper()
	select {
	case ev := <-sub.C:
		t.Fatalf("unexpected notification %s for %s", ev.Topic, ev.EntityID)
	case <-time.After(50 * time.Millisecond):
	}
}
