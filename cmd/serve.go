package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/highlog/interviewer/internal/server"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the interview HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := buildDeps(cmd)
		if err != nil {
			return err
		}
		defer d.close()

		if addr, _ := cmd.Flags().GetString("addr"); addr != "" {
			d.cfg.Server.Addr = addr
		}
		if err := d.cfg.ValidateServer(); err != nil {
			return fmt.Errorf("invalid server configuration: %w", err)
		}

		ctrl, err := d.controller()
		if err != nil {
			return err
		}
		srv := server.New(server.Config{
			Addr:         d.cfg.Server.Addr,
			ReadTimeout:  d.cfg.Server.ReadTimeout,
			WriteTimeout: d.cfg.Server.WriteTimeout,
		}, ctrl, d.reports(), server.NewTokenService(d.cfg.Server.JWTSecret, d.cfg.Server.TokenTTL), d.logger)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return srv.Run(ctx)
	},
}

func init() {
	serveCmd.Flags().String("addr", "", "Listen address (overrides server.addr)")
}
