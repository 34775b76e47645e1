package cli

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/auth"
	"github.com/shubhamsinghsisodiya01/tacnique-quiz/internal/config"
)

var errNoAdminSecret = errors.New("admin.jwt_secret (or ADMIN_JWT_SECRET) is not set")

// NewAdminTokenCmd prints a signed admin token for calling the authoring routes.
func NewAdminTokenCmd(configPath *string) *cobra.Command {
	var (
		sub string
		ttl time.Duration
	)
	cmd := &cobra.Command{
		Use:   "admin-token",
		Short: "Print a bearer token for the admin API",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			tok, err := issueAdminToken(cfg, sub, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), tok)
			return nil
		},
	}
	cmd.Flags().StringVar(&sub, "sub", "admin", "subject recorded in the token")
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "token lifetime (defaults to admin.token_ttl)")
	return cmd
}

func issueAdminToken(cfg config.Config, sub string, ttl time.Duration) (string, error) {
	a := auth.NewService(cfg.Admin.JWTSecret)
	if a == nil {
		return "", errNoAdminSecret
	}
	if ttl <= 0 {
		ttl = config.TTLDuration(cfg.Admin.TokenTTL, 8*time.Hour)
	}
	return a.Issue(sub, auth.RoleAdmin, ttl)
}
