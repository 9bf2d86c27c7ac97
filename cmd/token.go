package cmd

import (
	"fmt"

	"github.com/highlog/interviewer/internal/server"
	"github.com/spf13/cobra"
)

var tokenCmd = &cobra.Command{
	Use:   "token <user-id>",
	Short: "Issue an API bearer token for a user",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if err := cfg.ValidateServer(); err != nil {
			return err
		}
		if ttl, _ := cmd.Flags().GetDuration("ttl"); ttl > 0 {
			cfg.Server.TokenTTL = ttl
		}
		tok, err := server.NewTokenService(cfg.Server.JWTSecret, cfg.Server.TokenTTL).Issue(args[0])
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), tok)
		return nil
	},
}

func init() {
	tokenCmd.Flags().Duration("ttl", 0, "Token lifetime (default server.token_ttl)")
}
