package revenuestore

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/revenue-middleware/internal/metrics"
	"github.com/chainsafe/revenue-middleware/pkg/notify"
)

const recordTimeout = 5 * time.Second

// Recorder writes every snapshot change published on the bus to the store.
type Recorder struct {
	bus    *notify.Bus
	store  Store
	logger *zap.Logger
}

// NewRecorder creates a recorder. Call Run to start consuming events.
func NewRecorder(bus *notify.Bus, store Store, logger *zap.Logger) *Recorder {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Recorder{bus: bus, store: store, logger: logger.Named("recorder")}
}

// Run records snapshot events until ctx is done or the bus closes.
func (r *Recorder) Run(ctx context.Context) error {
	sub := r.bus.Subscribe(func(ev notify.Event) bool {
		return ev.Topic == notify.TopicSnapshotChanged
	})
	defer sub.Close()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev, ok := <-sub.C:
			if !ok {
				return nil
			}
			r.record(ctx, ev)
		}
	}
}

func (r *Recorder) record(ctx context.Context, ev notify.Event) {
	ctx, cancel := context.WithTimeout(ctx, recordTimeout)
	defer cancel()

	rec := &SnapshotRecord{
		Account:    ev.Account,
		EntityID:   ev.EntityID,
		Status:     ev.Status,
		RecordedAt: ev.At,
	}
	if err := r.store.RecordSnapshot(ctx, rec); err != nil {
		metrics.SnapshotsRecorded.WithLabelValues("failure").Inc()
		metrics.ErrorsTotal.WithLabelValues("recorder", "store").Inc()
		r.logger.Warn("failed to record snapshot",
			zap.Stringer("account", ev.Account),
			zap.Stringer("entity_id", ev.EntityID),
			zap.Error(err))
		return
	}
	metrics.SnapshotsRecorded.WithLabelValues("success").Inc()
}
