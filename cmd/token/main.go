package main

import (
	"fmt"
	"log"
	"time"

	"graphboard/internal/common/security"
	"graphboard/internal/platform/config"

	"github.com/spf13/cobra"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("Failed to load config:", err)
	}

	if err := rootCmd(cfg).Execute(); err != nil {
		log.Fatal(err)
	}
}

func rootCmd(cfg *config.Config) *cobra.Command {
	var (
		subject string
		ttl     time.Duration
	)

	cmd := &cobra.Command{
		Use:   "token",
		Short: "issues an admin bearer token for the graphboard API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cfg.AuthEnabled() {
				return fmt.Errorf("JWT_SECRET is not set, the API accepts unauthenticated requests")
			}
			if subject == "" {
				return fmt.Errorf("--subject must not be empty")
			}
			if ttl <= 0 {
				return fmt.Errorf("--ttl must be positive, got %s", ttl)
			}

			token, err := security.GenerateToken(security.NewTokenAuth(cfg.JWTKey), subject, security.RoleAdmin, ttl)
			if err != nil {
				return fmt.Errorf("signing token: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&subject, "subject", "admin", "subject (sub claim) of the token")
	cmd.Flags().DurationVar(&ttl, "ttl", cfg.JWTExp, "token lifetime")
	return cmd
}
