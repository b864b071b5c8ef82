// Copyright 2025 The HistoriaViva Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/goccy/go-json"
	"github.com/jcodagnone/historiaviva/history"
	"github.com/mattn/go-isatty"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
)

var debugLang string

func isTerminal(f *os.File) bool {
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

var debugCmd = &cobra.Command{
	Use:   "debug",
	Short: "Dev tools",
}

var debugNearbyCmd = &cobra.Command{
	Use:   "nearby [lat lon]",
	Short: "Print the location history of a coordinate",
	Long: `Prints the location history of the given coordinate as JSON. Without
arguments it reads one "lat lon" pair per line and prints the pair followed by
its history.

$ echo "38.6916 -9.2160" | historiaviva debug nearby
38.6916 -9.2160		[{"title":"Torre de Belém", …}]
`,
	Args: func(_ *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("expected no arguments or lat and lon, got %d arguments", len(args))
		}

		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		service := newService(cfg)
		lang := history.ParseLanguage(debugLang)
		out := cmd.OutOrStdout()

		if len(args) == 2 {
			coord, err := history.ParseCoordinate(args[0], args[1])
			if err != nil {
				return err
			}

			return printJSON(out, "", service.Discover(cmd.Context(), coord, lang))
		}

		input := os.Stdin
		if isTerminal(input) {
			fmt.Fprintln(os.Stderr, "Enter coordinates to look up, one \"lat lon\" pair per line…")
		}

		var bar *progressbar.ProgressBar
		if !isTerminal(input) && isTerminal(os.Stderr) {
			bar = progressbar.Default(-1, "looking up")
		}

		scanner := bufio.NewScanner(input)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" {
				continue
			}

			fields := strings.Fields(line)
			if len(fields) != 2 {
				fmt.Fprintf(out, "%s\t%q\n", line, "expected lat and lon")

				continue
			}

			coord, err := history.ParseCoordinate(fields[0], fields[1])
			if err != nil {
				fmt.Fprintf(out, "%s\t%q\n", line, err)

				continue
			}

			if err := printJSON(out, line+"\t\t", service.Discover(cmd.Context(), coord, lang)); err != nil {
				return err
			}

			if bar != nil {
				_ = bar.Add(1)
			}
		}

		if bar != nil {
			_ = bar.Finish()
		}

		if err := scanner.Err(); err != nil {
			return fmt.Errorf("reading input: %w", err)
		}

		return nil
	},
}

var debugTodayCmd = &cobra.Command{
	Use:   "today",
	Short: "Print the events and births of the current day",
	RunE: func(cmd *cobra.Command, _ []string) error {
		service := newService(cfg)

		return printJSON(cmd.OutOrStdout(), "", service.TodayInHistory(cmd.Context(), history.ParseLanguage(debugLang)))
	},
}

func printJSON(w io.Writer, prefix string, v any) error {
	s, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}

	_, err = fmt.Fprintf(w, "%s%s\n", prefix, s)

	return err
}

func init() {
	rootCmd.AddCommand(debugCmd)
	debugCmd.PersistentFlags().StringVar(&debugLang, "lang", string(history.DefaultLanguage), "Wikipedia language: pt, en or it")
	debugCmd.AddCommand(debugNearbyCmd)
	debugCmd.AddCommand(debugTodayCmd)
}
