package controller

import (
	"time"

	"go.uber.org/zap"

	"github.com/chainsafe/revenue-middleware/pkg/revenue/snapshot"
)

const (
	defaultPageSize       = 20
	defaultRequestTimeout = 30 * time.Second
)

// Option configures controllers using the functional options pattern.
type Option func(*settings)

// settings holds the configurable dependencies shared by every controller of a registry.
type settings struct {
	logger         *zap.Logger
	clock          func() time.Time
	pageSize       int
	requestTimeout time.Duration
	preloadWindow  time.Duration
	readWindow     time.Duration
	channels       ChannelForwarder // optional override, defaults to the bus
}

// WithLogger sets a custom logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *settings) { s.logger = l }
}

// WithClock overrides the time source, primarily for tests.
func WithClock(now func() time.Time) Option {
	return func(s *settings) { s.clock = now }
}

// WithPageSize sets the number of transactions requested per page.
func WithPageSize(n int) Option {
	return func(s *settings) { s.pageSize = n }
}

// WithRequestTimeout bounds every gateway call.
func WithRequestTimeout(d time.Duration) Option {
	return func(s *settings) { s.requestTimeout = d }
}

// WithFreshnessWindows overrides the snapshot preload and read windows.
func WithFreshnessWindows(preload, read time.Duration) Option {
	return func(s *settings) {
		s.preloadWindow = preload
		s.readWindow = read
	}
}

// WithChannelForwarder sets the collaborator receiving channel balance updates.
func WithChannelForwarder(f ChannelForwarder) Option {
	return func(s *settings) { s.channels = f }
}

// applyOptions applies the provided options and returns the resulting settings.
// Defaults are applied before user-defined options.
func applyOptions(opts []Option) settings {
	s := settings{
		logger:         zap.NewNop(),
		clock:          time.Now,
		pageSize:       defaultPageSize,
		requestTimeout: defaultRequestTimeout,
		preloadWindow:  snapshot.DefaultPreloadWindow,
		readWindow:     snapshot.DefaultReadWindow,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(&s)
		}
	}
	if s.pageSize <= 0 {
		s.pageSize = defaultPageSize
	}
	if s.requestTimeout <= 0 {
		s.requestTimeout = defaultRequestTimeout
	}
	if s.logger == nil {
		s.logger = zap.NewNop()
	}
	return s
}
