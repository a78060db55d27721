// Package api implements app.Runner for the revenue server process.
package api

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"go.uber.org/zap"

	apphttp "github.com/chainsafe/revenue-middleware/pkg/app/http"
	"github.com/chainsafe/revenue-middleware/pkg/auth"
	"github.com/chainsafe/revenue-middleware/pkg/config"
	"github.com/chainsafe/revenue-middleware/pkg/gateway/grpcgw"
	"github.com/chainsafe/revenue-middleware/pkg/notify"
	"github.com/chainsafe/revenue-middleware/pkg/pgutil"
	"github.com/chainsafe/revenue-middleware/pkg/revenue/controller"
	"github.com/chainsafe/revenue-middleware/pkg/revenue/service"
	"github.com/chainsafe/revenue-middleware/pkg/revenuestore"
	"github.com/chainsafe/revenue-middleware/pkg/warmer"
)

// Server holds cfg to init the revenue server.
type Server struct {
	cfg *config.Config
}

// NewServer initializes new revenue server.
func NewServer(cfg *config.Config) *Server {
	return &Server{cfg: cfg}
}

// Run wires the gateway client, the controller registry and the background
// workers, then serves the API until an OS shutdown signal arrives.
func (s *Server) Run() error {
	if s.cfg == nil {
		return fmt.Errorf("revenue server config is nil")
	}
	cfg := s.cfg

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logger, err := config.NewLogger(cfg.Logging)
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting revenue server",
		zap.String("host", cfg.Server.Host),
		zap.Int("port", cfg.Server.Port),
		zap.String("gateway", cfg.Gateway.URL),
	)

	limits, err := cfg.Limits.Build()
	if err != nil {
		return fmt.Errorf("withdrawal limits: %w", err)
	}

	gw, err := grpcgw.New(gatewayConfig(&cfg.Gateway), grpcgw.WithLogger(logger))
	if err != nil {
		return fmt.Errorf("create gateway client: %w", err)
	}
	defer func() { _ = gw.Close() }()

	bus := notify.NewBus(cfg.Notify.Buffer, logger)
	registry := controller.NewRegistry(gw, bus,
		controller.WithLogger(logger),
		controller.WithPageSize(cfg.Gateway.PageSize),
		controller.WithRequestTimeout(cfg.Gateway.RequestTimeout),
		controller.WithFreshnessWindows(cfg.Cache.PreloadWindow, cfg.Cache.ReadWindow),
	)

	var workers sync.WaitGroup
	runWorker := func(name string, run func(context.Context) error) {
		workers.Add(1)
		go func() {
			defer workers.Done()
			if err := run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				logger.Error("worker stopped", zap.String("worker", name), zap.Error(err))
			}
		}()
	}

	var history revenuestore.Store
	if cfg.Database != nil {
		db, err := pgutil.ConnectDB(ctx, cfg.Database, logger)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()

		history = revenuestore.NewStore(db)
		runWorker("recorder", revenuestore.NewRecorder(bus, history, logger).Run)
	} else {
		logger.Info("No database configured, snapshot history disabled")
	}

	if cfg.Notify.AMQPURL != "" {
		producer := s.openProducer(logger)
		defer producer.Close()
		runWorker("forwarder", notify.NewForwarder(bus, producer, cfg.Notify.Exchange, logger).Run)
	}

	var warm *warmer.Warmer
	if cfg.Warmer.Enabled {
		warm, err = warmer.New(registry, &cfg.Warmer, logger)
		if err != nil {
			return err
		}
		warm.Start()
	}

	validator := auth.NewJWTValidator([]byte(cfg.Auth.Secret), cfg.Auth.Issuer, cfg.Auth.Leeway)
	svc := service.NewLog(service.NewService(registry, bus, limits, history), logger)
	router := newRouter(svc, validator, registry, cfg.Monitoring.Enabled, logger)

	err = apphttp.ServeAndWait(ctx, router, logger, &cfg.Server, cfg.Shutdown.Timeout)

	// Stop producers of events before closing the bus so workers drain and exit.
	if warm != nil {
		<-warm.Stop().Done()
	}
	registry.Close()
	bus.Close()
	workers.Wait()

	return err
}

// openProducer connects to the broker. An unreachable broker disables
// forwarding instead of failing startup.
func (s *Server) openProducer(logger *zap.Logger) notify.Producer {
	producer, err := notify.NewAMQPProducer(s.cfg.Notify.AMQPURL, s.cfg.Notify.AMQPDialTimeout)
	if err != nil {
		logger.Warn("Failed to connect to broker (event forwarding disabled)", zap.Error(err))
		return &notify.NopProducer{Logger: logger.Named("forwarder")}
	}
	logger.Info("Broker connection established", zap.String("exchange", s.cfg.Notify.Exchange))
	return producer
}

func gatewayConfig(cfg *config.GatewayConfig) *grpcgw.Config {
	out := &grpcgw.Config{
		URL:            cfg.URL,
		MaxMessageSize: cfg.MaxMessageSize,
	}
	if cfg.TLS != nil {
		out.TLS = &grpcgw.TLSConfig{
			Enabled:            cfg.TLS.Enabled,
			CertFile:           cfg.TLS.CertFile,
			KeyFile:            cfg.TLS.KeyFile,
			CAFile:             cfg.TLS.CAFile,
			InsecureSkipVerify: cfg.TLS.InsecureSkipVerify,
		}
	}
	if cfg.OAuth != nil {
		out.Auth = &grpcgw.AuthConfig{
			ClientID:     cfg.OAuth.ClientID,
			ClientSecret: cfg.OAuth.ClientSecret,
			Audience:     cfg.OAuth.Audience,
			TokenURL:     cfg.OAuth.TokenURL,
			ExpiryLeeway: cfg.OAuth.ExpiryLeeway,
		}
	}
	return out
}
