// Copyright 2025 The HistoriaViva Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jcodagnone/historiaviva/functions"
	"github.com/jcodagnone/historiaviva/logging"
	"github.com/jcodagnone/historiaviva/server"
	"github.com/spf13/cobra"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the API as a long running server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		addr := cfg.Server.Addr
		if cmd.Flags().Changed("addr") {
			addr = listenAddr
		}

		gin.SetMode(gin.ReleaseMode)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return server.NewServer(newService(cfg)).Run(ctx, addr)
	},
}

var functionsCmd = &cobra.Command{
	Use:   "functions",
	Short: "Run the per-endpoint handlers locally",
	Long: `Serves the same handlers a request scoped runtime would invoke, one per
endpoint, on a plain net/http mux.`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		addr := cfg.Functions.Addr
		if cmd.Flags().Changed("addr") {
			addr = listenAddr
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		srv := &http.Server{
			Addr:              addr,
			Handler:           functions.Mux(newService(cfg)),
			ReadHeaderTimeout: 10 * time.Second,
		}

		go func() {
			<-ctx.Done()

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()

			_ = srv.Shutdown(shutdownCtx)
		}()

		logging.Info().Str("addr", addr).Msg("functions listening")

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serving: %w", err)
		}

		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintln(cmd.OutOrStdout(), Version)
	},
}

func init() {
	for _, c := range []*cobra.Command{serveCmd, functionsCmd} {
		c.Flags().StringVar(&listenAddr, "addr", "", "listen address, overrides the configured one")
		rootCmd.AddCommand(c)
	}

	rootCmd.AddCommand(versionCmd)
}
