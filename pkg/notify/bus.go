// Package notify is the change notification bus between the revenue controllers
// and their subscribers (SSE clients, the snapshot recorder, the AMQP forwarder).
package notify

import (
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/revenue-middleware/internal/metrics"
	"github.com/chainsafe/revenue-middleware/pkg/revenue"
)

// Topic names the kind of change.
type Topic string

const (
	TopicSnapshotChanged       Topic = "snapshot-changed"
	TopicTransactionsChanged   Topic = "transactions-changed"
	TopicChannelBalanceChanged Topic = "channel-balance-changed"
)

// Event announces that cached state of an entity changed. Subscribers re-read the
// controller to get the new state; Status is only set when the change carried one.
type Event struct {
	Topic    Topic               `json:"topic"`
	Account  revenue.AccountID   `json:"account"`
	EntityID revenue.EntityID    `json:"entity_id"`
	Stream   *revenue.StreamType `json:"stream,omitempty"`
	Status   *revenue.Status     `json:"status,omitempty"`
	At       time.Time           `json:"at"`
}

// Publisher publishes events. Publish never blocks.
type Publisher interface {
	Publish(ev Event)
}

// Filter selects the events a subscription receives. A nil filter receives everything.
type Filter func(Event) bool

// ForAccount keeps the events of one account.
func ForAccount(account revenue.AccountID) Filter {
	return func(ev Event) bool { return ev.Account == account }
}

// Subscription receives events until it is closed.
type Subscription struct {
	C      <-chan Event
	ch     chan Event
	filter Filter
	bus    *Bus
}

// Close unsubscribes and closes C.
func (s *Subscription) Close() {
	s.bus.unsubscribe(s)
}

// Bus fans out events to all subscribers via buffered channels, dropping events
// for subscribers whose buffer is full.
type Bus struct {
	mu     sync.RWMutex
	subs   map[*Subscription]struct{}
	buffer int
	closed bool
	logger *zap.Logger
}

// NewBus creates a bus with the given per-subscriber buffer.
func NewBus(buffer int, logger *zap.Logger) *Bus {
	if buffer < 1 {
		buffer = 64
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		subs:   make(map[*Subscription]struct{}),
		buffer: buffer,
		logger: logger.Named("notify"),
	}
}

// Publish delivers ev to every matching subscriber without blocking.
func (b *Bus) Publish(ev Event) {
	if ev.At.IsZero() {
		ev.At = time.Now()
	}
	metrics.EventsPublished.WithLabelValues(string(ev.Topic)).Inc()

	b.mu.RLock()
	defer b.mu.RUnlock()
	for s := range b.subs {
		if s.filter != nil && !s.filter(ev) {
			continue
		}
		select {
		case s.ch <- ev:
		default:
			metrics.EventsDropped.WithLabelValues(string(ev.Topic)).Inc()
			b.logger.Debug("dropping event for slow subscriber",
				zap.String("topic", string(ev.Topic)),
				zap.Stringer("account", ev.Account),
				zap.Stringer("entity_id", ev.EntityID))
		}
	}
}

// Subscribe returns a subscription receiving the events accepted by filter.
// Subscribing to a closed bus returns an already closed subscription.
func (b *Bus) Subscribe(filter Filter) *Subscription {
	ch := make(chan Event, b.buffer)
	s := &Subscription{C: ch, ch: ch, filter: filter, bus: b}

	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		close(ch)
		return s
	}
	b.subs[s] = struct{}{}
	return s
}

// Subscribers returns the number of open subscriptions.
func (b *Bus) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Close closes every subscription. Later publishes are discarded.
func (b *Bus) Close() {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return
	}
	b.closed = true
	for s := range b.subs {
		delete(b.subs, s)
		close(s.ch)
	}
}

func (b *Bus) unsubscribe(s *Subscription) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[s]; ok {
		delete(b.subs, s)
		close(s.ch)
	}
}
