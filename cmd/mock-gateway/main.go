// Command mock-gateway runs a local revenue service and OAuth2 token endpoint
// for development against revenue-server.
//
// Usage:
//
//	go run ./cmd/mock-gateway --grpc-addr :9090 --oauth-addr :8088
package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/chainsafe/revenue-middleware/internal/mockgw"
	"github.com/chainsafe/revenue-middleware/pkg/config"
)

func main() {
	_ = godotenv.Load()

	var (
		grpcAddr     string
		oauthAddr    string
		cfg          mockgw.Config
		secret       string
		logLevel     string
		transactions int
	)

	cmd := &cobra.Command{
		Use:          "mock-gateway",
		Short:        "Local revenue service for development (not for production use)",
		Args:         cobra.NoArgs,
		SilenceUsage: true,
		RunE: func(*cobra.Command, []string) error {
			logger, err := config.NewLogger(config.LoggingConfig{Level: logLevel, Format: "console"})
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			cfg.Secret = []byte(secret)
			cfg.Transactions = transactions
			return run(grpcAddr, oauthAddr, mockgw.New(cfg, logger), logger)
		},
	}

	flags := cmd.Flags()
	flags.StringVar(&grpcAddr, "grpc-addr", ":9090", "gRPC listen address")
	flags.StringVar(&oauthAddr, "oauth-addr", ":8088", "OAuth2 token endpoint listen address, empty to disable")
	flags.StringVar(&secret, "secret", os.Getenv("MOCK_GATEWAY_SECRET"), "Token signing secret, empty disables authentication")
	flags.StringVar(&cfg.Issuer, "issuer", "http://localhost:8088", "Issuer of the tokens")
	flags.StringVar(&cfg.ClientSecret, "client-secret", "", "Required client_secret, empty accepts any")
	flags.DurationVar(&cfg.TokenTTL, "token-ttl", time.Hour, "Lifetime of issued tokens")
	flags.IntVar(&transactions, "transactions", 45, "Length of every entity's transaction history")
	flags.StringVar(&logLevel, "log-level", "info", "Log level")

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(grpcAddr, oauthAddr string, srv *mockgw.Server, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	lis, err := net.Listen("tcp", grpcAddr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", grpcAddr, err)
	}
	gs := srv.GRPCServer()
	errCh := make(chan error, 2)
	go func() {
		logger.Info("gRPC server listening", zap.String("address", lis.Addr().String()))
		errCh <- gs.Serve(lis)
	}()
	defer gs.GracefulStop()

	if oauthAddr != "" {
		hs := &http.Server{Addr: oauthAddr, Handler: srv.TokenHandler(), ReadHeaderTimeout: 5 * time.Second}
		go func() {
			logger.Info("OAuth2 token endpoint listening", zap.String("address", oauthAddr))
			if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
		}()
		defer func() { _ = hs.Close() }()
	}

	select {
	case <-ctx.Done():
		logger.Info("Shutdown signal received")
		return nil
	case err := <-errCh:
		return err
	}
}
