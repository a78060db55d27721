// Package controller owns the revenue state of one account.
//
// Each Controller is an actor: a single goroutine applies every mutation of its
// snapshot cache and transaction store, in the order messages reach its mailbox.
// Public methods post a message and return; gateway calls run on their own
// goroutines and post their completion back to the mailbox. Outcomes are
// announced on the notification bus.
package controller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/chainsafe/revenue-middleware/internal/metrics"
	"github.com/chainsafe/revenue-middleware/pkg/amount"
	"github.com/chainsafe/revenue-middleware/pkg/gateway"
	"github.com/chainsafe/revenue-middleware/pkg/notify"
	"github.com/chainsafe/revenue-middleware/pkg/revenue"
	"github.com/chainsafe/revenue-middleware/pkg/revenue/history"
	"github.com/chainsafe/revenue-middleware/pkg/revenue/snapshot"
)

// ErrControllerStopped is returned once the controller or its registry was closed.
var ErrControllerStopped = errors.New("controller stopped")

// ChannelForwarder receives balance updates of broadcast channels, which are not
// tracked by the revenue snapshot cache.
type ChannelForwarder interface {
	ForwardChannelBalance(account revenue.AccountID, update revenue.BalanceUpdate)
}

// Controller is the per-account revenue state owner.
type Controller struct {
	account  revenue.AccountID
	gw       gateway.Gateway
	bus      notify.Publisher
	channels ChannelForwarder
	logger   *zap.Logger

	now            func() time.Time
	pageSize       int
	requestTimeout time.Duration

	// owned by the actor goroutine
	cache *snapshot.Cache
	store *history.Store

	box      *mailbox
	ctx      context.Context
	cancel   context.CancelFunc
	quit     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// New creates and starts a controller for account.
func New(account revenue.AccountID, gw gateway.Gateway, bus notify.Publisher, opts ...Option) *Controller {
	return newController(account, gw, bus, applyOptions(opts))
}

func newController(account revenue.AccountID, gw gateway.Gateway, bus notify.Publisher, s settings) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	c := &Controller{
		account:        account,
		gw:             gw,
		bus:            bus,
		channels:       s.channels,
		logger:         s.logger.With(zap.Stringer("account", account)),
		now:            s.clock,
		pageSize:       s.pageSize,
		requestTimeout: s.requestTimeout,
		cache:          snapshot.New(snapshot.WithWindows(s.preloadWindow, s.readWindow)),
		store:          history.New(),
		box:            newMailbox(),
		ctx:            ctx,
		cancel:         cancel,
		quit:           make(chan struct{}),
		done:           make(chan struct{}),
	}
	if c.channels == nil {
		c.channels = &busChannelForwarder{bus: bus}
	}

	go c.run()
	return c
}

// Account returns the account the controller belongs to.
func (c *Controller) Account() revenue.AccountID { return c.account }

// Stop stops the actor, cancels in-flight gateway calls and waits for them to return.
// Completions arriving after Stop are discarded.
func (c *Controller) Stop() {
	c.stopOnce.Do(func() {
		c.box.close()
		close(c.quit)
		c.cancel()
	})
	<-c.done
	c.wg.Wait()
}

func (c *Controller) run() {
	defer close(c.done)
	for {
		select {
		case <-c.quit:
			return
		case <-c.box.wake:
			for _, fn := range c.box.drain() {
				fn()
			}
		}
	}
}

// post schedules fn on the actor. It reports false once the controller is stopped.
func (c *Controller) post(fn func()) bool {
	return c.box.post(fn)
}

// query runs fn on the actor and waits for it. Only used for in-memory reads.
func (c *Controller) query(fn func()) bool {
	finished := make(chan struct{})
	if !c.post(func() {
		fn()
		close(finished)
	}) {
		return false
	}
	select {
	case <-finished:
		return true
	case <-c.done:
		select {
		case <-finished:
			return true
		default:
			return false
		}
	}
}

// GetSnapshot returns a copy of the cached status, or nil when there is no data.
// It never triggers a fetch.
func (c *Controller) GetSnapshot(id revenue.EntityID) *revenue.Status {
	var st *revenue.Status
	c.query(func() { st = c.cache.Get(id).Clone() })
	return st
}

// SnapshotEntry returns a copy of the entity's cache entry, telling "never fetched"
// apart from "fetched, no data".
func (c *Controller) SnapshotEntry(id revenue.EntityID) (snapshot.Entry, bool) {
	var (
		e  snapshot.Entry
		ok bool
	)
	c.query(func() {
		e, ok = c.cache.Entry(id)
		e.Status = e.Status.Clone()
	})
	return e, ok
}

// ReadSnapshot returns the cached status and schedules a refresh if it is older
// than the read window.
func (c *Controller) ReadSnapshot(id revenue.EntityID) *revenue.Status {
	var st *revenue.Status
	c.query(func() {
		st = c.cache.Get(id).Clone()
		c.refresh(id, snapshot.WindowRead, false)
	})
	return st
}

// RefreshSnapshot fetches the status unless a fetch is in flight or, without force,
// the cached status is younger than the read window.
func (c *Controller) RefreshSnapshot(id revenue.EntityID, force bool) error {
	if !c.post(func() { c.refresh(id, snapshot.WindowRead, force) }) {
		return ErrControllerStopped
	}
	return nil
}

// PreloadSnapshot is RefreshSnapshot without force, checked against the preload window.
func (c *Controller) PreloadSnapshot(id revenue.EntityID) error {
	if !c.post(func() { c.refresh(id, snapshot.WindowPreload, false) }) {
		return ErrControllerStopped
	}
	return nil
}

// ApplyLiveUpdate stores a pushed status and reloads the entity's transaction streams.
func (c *Controller) ApplyLiveUpdate(id revenue.EntityID, status *revenue.Status) error {
	status = status.Clone()
	if !c.post(func() { c.applyLive(id, status) }) {
		return ErrControllerStopped
	}
	return nil
}

// HandleBalanceUpdate routes a pushed balance update: bot updates go to the
// snapshot cache, channel updates to the channel forwarder.
func (c *Controller) HandleBalanceUpdate(update revenue.BalanceUpdate) error {
	metrics.LiveUpdates.WithLabelValues(update.Kind.String()).Inc()
	switch update.Kind {
	case revenue.PeerBot:
		return c.ApplyLiveUpdate(update.EntityID, update.Status)
	case revenue.PeerChannel:
		update.Status = update.Status.Clone()
		c.channels.ForwardChannelBalance(c.account, update)
		return nil
	default:
		return fmt.Errorf("unsupported peer kind %d for entity %s", int(update.Kind), update.EntityID)
	}
}

// IsBalanceAvailable reports whether a status is cached for the entity.
func (c *Controller) IsBalanceAvailable(id revenue.EntityID) bool {
	var ok bool
	c.query(func() { ok = c.cache.Get(id) != nil })
	return ok
}

// WithdrawalCheck explains whether the entity's balance can be withdrawn now.
type WithdrawalCheck struct {
	Allowed   bool           `json:"allowed"`
	Reason    string         `json:"reason,omitempty"`
	Available *amount.Amount `json:"available,omitempty"`
	Limits    *amount.Range  `json:"limits,omitempty"`
	UnlockAt  *time.Time     `json:"unlock_at,omitempty"`
}

const (
	ReasonNoData       = "no_data"
	ReasonDisabled     = "disabled"
	ReasonLocked       = "locked"
	ReasonBelowMinimum = "below_minimum"
)

// CanWithdraw checks the cached status against the configured limits.
func (c *Controller) CanWithdraw(id revenue.EntityID, limits *amount.Limits) (WithdrawalCheck, error) {
	if limits == nil {
		return WithdrawalCheck{}, amount.ErrLimitsNotSet
	}
	st := c.GetSnapshot(id)
	if st == nil {
		return WithdrawalCheck{Reason: ReasonNoData}, nil
	}

	available := st.Balances.Available
	r, err := limits.Get(available.Currency())
	if err != nil {
		return WithdrawalCheck{}, err
	}
	check := WithdrawalCheck{Available: &available, Limits: &r}
	if !st.NextWithdrawalAt.IsZero() {
		unlock := st.NextWithdrawalAt
		check.UnlockAt = &unlock
	}

	switch {
	case !st.WithdrawalEnabled:
		check.Reason = ReasonDisabled
	case check.UnlockAt != nil && c.now().Before(*check.UnlockAt):
		check.Reason = ReasonLocked
	case available.Less(r.Min):
		check.Reason = ReasonBelowMinimum
	default:
		check.Allowed = true
	}
	return check, nil
}

// GetStream returns a copy of one transaction stream.
func (c *Controller) GetStream(id revenue.EntityID, st revenue.StreamType) history.View {
	v := history.View{Entity: id, Stream: st, Transactions: []revenue.Transaction{}}
	c.query(func() { v = c.store.View(id, st) })
	return v
}

// LoadStream fetches the next page of the stream unless it is loading or ended.
func (c *Controller) LoadStream(id revenue.EntityID, st revenue.StreamType) error {
	if !c.post(func() { c.load(id, st) }) {
		return ErrControllerStopped
	}
	return nil
}

// InvalidateStreams resets every idle stream of the entity and optionally reloads them.
func (c *Controller) InvalidateStreams(id revenue.EntityID, reload bool) error {
	if !c.post(func() { c.invalidate(id, reload) }) {
		return ErrControllerStopped
	}
	return nil
}

// PreloadStreams loads the first page of every stream that was never started.
func (c *Controller) PreloadStreams(id revenue.EntityID) error {
	if !c.post(func() {
		for _, st := range c.store.PreloadCandidates(id) {
			c.load(id, st)
		}
	}) {
		return ErrControllerStopped
	}
	return nil
}

// IsLoading reports whether a page of the stream is being fetched.
func (c *Controller) IsLoading(id revenue.EntityID, st revenue.StreamType) bool {
	var ok bool
	c.query(func() { ok = c.store.IsLoading(id, st) })
	return ok
}

// IsFullyLoaded reports whether the stream reached its end.
func (c *Controller) IsFullyLoaded(id revenue.EntityID, st revenue.StreamType) bool {
	var ok bool
	c.query(func() { ok = c.store.IsFullyLoaded(id, st) })
	return ok
}

// HasAny reports whether the stream holds any transaction.
func (c *Controller) HasAny(id revenue.EntityID, st revenue.StreamType) bool {
	var ok bool
	c.query(func() { ok = c.store.HasAny(id, st) })
	return ok
}

// HasTransactions reports whether any stream of the entity holds a transaction.
func (c *Controller) HasTransactions(id revenue.EntityID) bool {
	var ok bool
	c.query(func() { ok = c.store.HasAnyStream(id) })
	return ok
}

// EverHadTransactions reports whether the stream ever received a non-empty page.
func (c *Controller) EverHadTransactions(id revenue.EntityID, st revenue.StreamType) bool {
	var ok bool
	c.query(func() { ok = c.store.EverHadData(id, st) })
	return ok
}

// actor-side handlers below

func (c *Controller) refresh(id revenue.EntityID, w snapshot.Window, force bool) {
	if !c.cache.BeginRefresh(id, w, force, c.now()) {
		metrics.SnapshotRefreshes.WithLabelValues(w.String(), "skipped").Inc()
		return
	}
	metrics.SnapshotRefreshes.WithLabelValues(w.String(), "issued").Inc()

	req := &gateway.StatusRequest{RequestID: uuid.New(), Account: c.account, EntityID: id}
	c.send(req, func(resp gateway.Response, err error) { c.onStatus(id, req, resp, err) })
}

func (c *Controller) onStatus(id revenue.EntityID, req *gateway.StatusRequest, resp gateway.Response, err error) {
	if err == nil {
		if r, ok := resp.(*gateway.StatusResponse); ok && r != nil {
			st := r.Status
			c.cache.Complete(id, &st, c.now())
			metrics.SnapshotFetches.WithLabelValues("success").Inc()
			c.publishSnapshot(id)
			return
		}
		err = fmt.Errorf("%w: %T", revenue.ErrUnexpectedResponseType, resp)
	}

	c.logger.Warn("revenue status fetch failed",
		zap.Stringer("entity_id", id),
		zap.Stringer("request_id", req.RequestID),
		zap.Error(err))
	metrics.SnapshotFetches.WithLabelValues("failure").Inc()
	c.cache.Fail(id, c.now())
	c.publishSnapshot(id)
}

func (c *Controller) applyLive(id revenue.EntityID, status *revenue.Status) {
	c.cache.ApplyLive(id, status, c.now())
	c.publishSnapshot(id)
	c.invalidate(id, true)
}

func (c *Controller) load(id revenue.EntityID, st revenue.StreamType) {
	cursor, ok := c.store.BeginLoad(id, st)
	if !ok {
		return
	}

	req := &gateway.TransactionsRequest{
		RequestID: uuid.New(),
		Account:   c.account,
		EntityID:  id,
		Stream:    st,
		Cursor:    cursor,
		Limit:     c.pageSize,
	}
	c.send(req, func(resp gateway.Response, err error) { c.onPage(id, req, resp, err) })
}

func (c *Controller) onPage(id revenue.EntityID, req *gateway.TransactionsRequest, resp gateway.Response, err error) {
	if err == nil {
		if r, ok := resp.(*gateway.TransactionsResponse); ok && r != nil {
			c.store.Complete(id, req.Stream, r.Transactions, r.More, r.NextCursor)
			metrics.PageLoads.WithLabelValues(req.Stream.String(), "success").Inc()
			c.publishTransactions(id, &req.Stream)
			return
		}
		err = fmt.Errorf("%w: %T", revenue.ErrUnexpectedResponseType, resp)
	}

	c.logger.Warn("transaction page fetch failed",
		zap.Stringer("entity_id", id),
		zap.Stringer("stream", req.Stream),
		zap.Stringer("request_id", req.RequestID),
		zap.Error(err))
	metrics.PageLoads.WithLabelValues(req.Stream.String(), "failure").Inc()
	c.store.Fail(id, req.Stream)
	c.publishTransactions(id, &req.Stream)
}

func (c *Controller) invalidate(id revenue.EntityID, reload bool) {
	reset := c.store.Invalidate(id)
	if len(reset) == 0 {
		return
	}
	c.publishTransactions(id, nil)
	if !reload {
		return
	}
	for _, st := range reset {
		c.load(id, st)
	}
}

// send runs the gateway call off the actor and posts the completion back.
func (c *Controller) send(req gateway.Request, complete func(gateway.Response, error)) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()

		ctx, cancel := context.WithTimeout(c.ctx, c.requestTimeout)
		defer cancel()

		start := time.Now()
		resp, err := c.gw.Send(ctx, req)
		metrics.GatewayRequestDuration.WithLabelValues(req.Method()).Observe(time.Since(start).Seconds())
		status := "success"
		if err != nil {
			status = "failure"
			err = fmt.Errorf("%w: %s: %w", revenue.ErrFetchFailed, req.Method(), err)
		}
		metrics.GatewayRequestsTotal.WithLabelValues(req.Method(), status).Inc()

		if !c.post(func() { complete(resp, err) }) {
			c.logger.Debug("dropping completion of stopped controller",
				zap.String("method", req.Method()),
				zap.Stringer("request_id", req.ID()))
		}
	}()
}

func (c *Controller) publishSnapshot(id revenue.EntityID) {
	c.bus.Publish(notify.Event{
		Topic:    notify.TopicSnapshotChanged,
		Account:  c.account,
		EntityID: id,
		Status:   c.cache.Get(id).Clone(),
		At:       c.now(),
	})
}

func (c *Controller) publishTransactions(id revenue.EntityID, st *revenue.StreamType) {
	var stream *revenue.StreamType
	if st != nil {
		v := *st
		stream = &v
	}
	c.bus.Publish(notify.Event{
		Topic:    notify.TopicTransactionsChanged,
		Account:  c.account,
		EntityID: id,
		Stream:   stream,
		At:       c.now(),
	})
}

type busChannelForwarder struct {
	bus notify.Publisher
}

func (f *busChannelForwarder) ForwardChannelBalance(account revenue.AccountID, update revenue.BalanceUpdate) {
	f.bus.Publish(notify.Event{
		Topic:    notify.TopicChannelBalanceChanged,
		Account:  account,
		EntityID: update.EntityID,
		Status:   update.Status,
	})
}
