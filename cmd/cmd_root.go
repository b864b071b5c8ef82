// Copyright 2025 The HistoriaViva Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os"

	"github.com/jcodagnone/historiaviva/config"
	"github.com/jcodagnone/historiaviva/history"
	"github.com/jcodagnone/historiaviva/logging"
	"github.com/jcodagnone/historiaviva/wikipedia"
	"github.com/spf13/cobra"
)

var (
	configPath string
	logLevel   string
	logFormat  string

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "historiaviva",
	Short: "history of the places around you",
	Long: `
historiaviva finds Wikipedia articles about the places near a coordinate,
sorted by distance, and the events that happened on the current day.
`,
	SilenceUsage: true,
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		var err error

		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}

		if logLevel != "" {
			cfg.Log.Level = logLevel
		}

		if logFormat != "" {
			cfg.Log.Format = logFormat
		}

		logging.Init(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format})

		return nil
	},
}

var Version = "dev"

func Execute(version string) {
	Version = version

	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default "+config.DefaultConfigPath+" if present)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: trace, debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "", "log format: json or console")
}

func userAgent(c *config.Config) string {
	if c.Wikipedia.UserAgent != "" {
		return c.Wikipedia.UserAgent
	}

	return fmt.Sprintf("historiaviva/%s (+https://github.com/jcodagnone/historiaviva)", Version)
}

// newService wires the Wikipedia client and the history service from c.
func newService(c *config.Config) *history.Service {
	client := wikipedia.NewClient(&wikipedia.ClientOptions{
		BaseURL:   c.Wikipedia.BaseURL,
		UserAgent: userAgent(c),
		Timeout:   c.Wikipedia.Timeout,
		RateLimit: c.Wikipedia.RateLimit,
		Burst:     c.Wikipedia.Burst,
		Trace:     c.Wikipedia.HTTPTrace,
	})

	return history.NewService(client, &history.ServiceOptions{Concurrency: c.Wikipedia.Concurrency})
}
