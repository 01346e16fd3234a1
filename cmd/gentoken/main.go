// Command gentoken mints a signed operator token for pricectl or direct API use.
//
//	JWT_SECRET=... go run ./cmd/gentoken --user ana --role manager
package main

import (
	"fmt"
	"os"
	"time"

	"pricedesk/internal/config"
	"pricedesk/internal/middleware"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

func main() {
	var (
		username, role, userID string
		ttl                    time.Duration
	)
	cmd := &cobra.Command{
		Use:          "gentoken",
		Short:        "Print a signed HS256 token for the price store API",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			if ttl == 0 {
				ttl = time.Duration(cfg.JWTExpirationHours) * time.Hour
			}
			if userID == "" {
				userID = uuid.NewString()
			}
			token, err := middleware.NewToken(cfg.JWTSecret, userID, username, role, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&username, "user", "", "username recorded as the actor (required)")
	cmd.Flags().StringVar(&role, "role", "manager", "operator | manager | admin")
	cmd.Flags().StringVar(&userID, "id", "", "user id (default random)")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (default JWT_EXPIRATION_HOURS)")
	_ = cmd.MarkFlagRequired("user")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
