package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/kozaktomas/smart-attendance/internal/config"
	"github.com/kozaktomas/smart-attendance/internal/web/middleware"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token <client-name>",
	Short: "Issue a bearer token for a kiosk or API client",
	Long: `Issue an HS256 token signed with WEB_JWT_SECRET. Send it as
"Authorization: Bearer <token>" on register, check-in, check-out and camera requests.`,
	Args: cobra.ExactArgs(1),
	RunE: runToken,
}

func init() {
	rootCmd.AddCommand(tokenCmd)

	tokenCmd.Flags().Duration("ttl", 24*time.Hour, "Token lifetime")
}

func runToken(cmd *cobra.Command, args []string) error {
	cfg := config.Load()
	if cfg.Web.JWTSecret == "" {
		return errors.New("WEB_JWT_SECRET environment variable is required")
	}

	token, err := middleware.IssueToken(cfg.Web.JWTSecret, args[0], mustGetDuration(cmd, "ttl"))
	if err != nil {
		return fmt.Errorf("signing token: %w", err)
	}
	fmt.Println(token)
	return nil
}
