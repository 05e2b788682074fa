package cmd

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"studybuddy/model"
	"studybuddy/services"
)

var (
	tokenUser model.Identity
	tokenTTL  time.Duration
)

var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Mint a development bearer token for auth.mode jwt",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		if tokenUser.UID == "" {
			return errors.New("--user is required")
		}
		token, err := services.CreateAccessToken(cfg.Auth.JWTSecret, tokenUser, tokenTTL)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), token)
		return nil
	},
}

func init() {
	f := tokenCmd.Flags()
	f.StringVar(&tokenUser.UID, "user", "", "user id")
	f.StringVar(&tokenUser.Email, "email", "", "email claim")
	f.StringVar(&tokenUser.Name, "name", "", "display name claim")
	f.DurationVar(&tokenTTL, "ttl", 24*time.Hour, "token lifetime")
	rootCmd.AddCommand(tokenCmd)
}
