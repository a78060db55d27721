package main

import (
	"github.com/spf13/cobra"

	"github.com/chainsafe/revenue-middleware/pkg/app"
	"github.com/chainsafe/revenue-middleware/pkg/app/api"
)

func newServeCmd(load configLoader) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the revenue API server",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if err := cfg.RequireAuthSecret(); err != nil {
				return err
			}
			var runner app.Runner = api.NewServer(cfg)
			return runner.Run()
		},
	}
}
