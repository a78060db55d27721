// Command revenue-server serves cached revenue snapshots and transaction
// history of bots and channels, and manages the snapshot history database.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/chainsafe/revenue-middleware/pkg/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	root := &cobra.Command{
		Use:           "revenue-server",
		Short:         "Revenue middleware server",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(*cobra.Command, []string) {
			// A missing .env file is normal outside local development.
			_ = godotenv.Load()
		},
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "",
		fmt.Sprintf("Path to configuration file (env %s, default %s)", config.EnvConfigPath, config.DefaultConfigPath))

	load := func() (*config.Config, error) {
		path := config.ResolvePath(configPath)
		cfg, err := config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load configuration %s: %w", path, err)
		}
		return cfg, nil
	}

	root.AddCommand(newServeCmd(load), newMigrateCmd(load), newTokenCmd(load))
	return root
}

type configLoader func() (*config.Config, error)
