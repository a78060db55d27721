// Package snapshot holds the per-entity revenue status cache of one account.
//
// The cache is a plain state machine: it decides whether a fetch must be issued
// and records fetch outcomes, but never talks to the network itself. It is not
// safe for concurrent use; the owning controller serializes every call.
package snapshot

import (
	"time"

	"github.com/chainsafe/revenue-middleware/pkg/revenue"
)

const (
	// DefaultPreloadWindow is the freshness window applied to view-entry preloads.
	DefaultPreloadWindow = 30 * time.Second
	// DefaultReadWindow is the freshness window applied to regular reads.
	DefaultReadWindow = 5 * time.Minute
)

// Window selects which freshness window a refresh is checked against.
type Window int

const (
	WindowRead Window = iota
	WindowPreload
)

func (w Window) String() string {
	if w == WindowPreload {
		return "preload"
	}
	return "read"
}

// Entry is the cached state of one entity.
type Entry struct {
	Status      *revenue.Status
	LastFetched time.Time
	InFlight    bool
}

// Fetched reports whether the entity was ever fetched or pushed.
func (e Entry) Fetched() bool { return !e.LastFetched.IsZero() }

// Cache maps entity ids to their cached status.
type Cache struct {
	entries       map[revenue.EntityID]*Entry
	preloadWindow time.Duration
	readWindow    time.Duration
}

// Option configures a Cache.
type Option func(*Cache)

// WithWindows overrides the preload and read freshness windows. Non-positive values keep the default.
func WithWindows(preload, read time.Duration) Option {
	return func(c *Cache) {
		if preload > 0 {
			c.preloadWindow = preload
		}
		if read > 0 {
			c.readWindow = read
		}
	}
}

// New creates an empty cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		entries:       make(map[revenue.EntityID]*Entry),
		preloadWindow: DefaultPreloadWindow,
		readWindow:    DefaultReadWindow,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get returns the cached status, or nil when the entity has no data.
func (c *Cache) Get(id revenue.EntityID) *revenue.Status {
	if e, ok := c.entries[id]; ok {
		return e.Status
	}
	return nil
}

// Entry returns a copy of the entity's entry.
func (c *Cache) Entry(id revenue.EntityID) (Entry, bool) {
	e, ok := c.entries[id]
	if !ok {
		return Entry{}, false
	}
	return *e, true
}

// BeginRefresh decides whether a fetch must be issued for the entity and, if so,
// marks it in flight. A fetch is skipped while another one is in flight, and when
// force is false and the entry is younger than the selected window.
func (c *Cache) BeginRefresh(id revenue.EntityID, w Window, force bool, now time.Time) bool {
	e := c.entry(id)
	if e.InFlight {
		return false
	}
	if !force && e.Fetched() && now.Sub(e.LastFetched) < c.window(w) {
		return false
	}
	e.InFlight = true
	return true
}

// Complete records a successful fetch. The status replaces the previous one as a whole.
func (c *Cache) Complete(id revenue.EntityID, status *revenue.Status, now time.Time) {
	e := c.entry(id)
	e.Status = status
	e.LastFetched = now
	e.InFlight = false
}

// Fail records a failed fetch. The previous status is dropped and the entry is
// still stamped, so the next non-forced refresh waits for the window to expire.
func (c *Cache) Fail(id revenue.EntityID, now time.Time) {
	e := c.entry(id)
	e.Status = nil
	e.LastFetched = now
	e.InFlight = false
}

// ApplyLive overwrites the status with a pushed one. The in-flight flag is left alone.
func (c *Cache) ApplyLive(id revenue.EntityID, status *revenue.Status, now time.Time) {
	e := c.entry(id)
	e.Status = status
	e.LastFetched = now
}

// Len returns the number of known entities.
func (c *Cache) Len() int { return len(c.entries) }

func (c *Cache) entry(id revenue.EntityID) *Entry {
	e, ok := c.entries[id]
	if !ok {
		e = &Entry{}
		c.entries[id] = e
	}
	return e
}

func (c *Cache) window(w Window) time.Duration {
	if w == WindowPreload {
		return c.preloadWindow
	}
	return c.readWindow
}
