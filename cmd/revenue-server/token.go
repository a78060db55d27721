package main

import (
	"fmt"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/chainsafe/revenue-middleware/pkg/auth"
	"github.com/chainsafe/revenue-middleware/pkg/revenue"
)

func newTokenCmd(load configLoader) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "token <account>",
		Short: "Issue an API token for an account (development)",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := load()
			if err != nil {
				return err
			}
			if err := cfg.RequireAuthSecret(); err != nil {
				return err
			}
			account, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid account %q: %w", args[0], err)
			}

			validator := auth.NewJWTValidator([]byte(cfg.Auth.Secret), cfg.Auth.Issuer, cfg.Auth.Leeway)
			token, err := validator.Issue(revenue.AccountID(account), ttl)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 24*time.Hour, "Token lifetime")
	return cmd
}
