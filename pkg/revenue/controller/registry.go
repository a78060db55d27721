package controller

import (
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/chainsafe/revenue-middleware/internal/metrics"
	"github.com/chainsafe/revenue-middleware/pkg/gateway"
	"github.com/chainsafe/revenue-middleware/pkg/notify"
	"github.com/chainsafe/revenue-middleware/pkg/revenue"
)

// Registry hands out one controller per account, creating it on first access.
type Registry struct {
	gw       gateway.Gateway
	bus      notify.Publisher
	settings settings

	mu          sync.Mutex
	controllers map[revenue.AccountID]*Controller
	closed      bool
}

// NewRegistry creates an empty registry. The options apply to every controller it creates.
func NewRegistry(gw gateway.Gateway, bus notify.Publisher, opts ...Option) *Registry {
	return &Registry{
		gw:          gw,
		bus:         bus,
		settings:    applyOptions(opts),
		controllers: make(map[revenue.AccountID]*Controller),
	}
}

// Controller returns the account's controller, creating and starting it if needed.
func (r *Registry) Controller(account revenue.AccountID) (*Controller, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, ErrControllerStopped
	}
	if c, ok := r.controllers[account]; ok {
		return c, nil
	}

	c := newController(account, r.gw, r.bus, r.settings)
	r.controllers[account] = c
	metrics.Controllers.Inc()
	r.settings.logger.Debug("controller created", zap.Stringer("account", account))
	return c, nil
}

// Accounts lists the accounts that have a controller, in ascending order.
func (r *Registry) Accounts() []revenue.AccountID {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]revenue.AccountID, 0, len(r.controllers))
	for id := range r.controllers {
		out = append(out, id)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}

// Closed reports whether Close was called.
func (r *Registry) Closed() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.closed
}

// Close stops every controller. Later calls to Controller fail with ErrControllerStopped.
func (r *Registry) Close() {
	r.mu.Lock()
	if r.closed {
		r.mu.Unlock()
		return
	}
	r.closed = true
	controllers := r.controllers
	r.controllers = make(map[revenue.AccountID]*Controller)
	r.mu.Unlock()

	var wg sync.WaitGroup
	for _, c := range controllers {
		wg.Add(1)
		go func(c *Controller) {
			defer wg.Done()
			c.Stop()
		}(c)
	}
	wg.Wait()
	metrics.Controllers.Sub(float64(len(controllers)))
}
