// Command devana is the headless CLI surface spec.md §6 describes for a
// GUI-less re-implementation: one subcommand per engine plus the FRF,
// Sobol, and omega-points-convergence analyses, all driven by a shared
// `--config` JSON document. Grounded on the cryptorun example's
// cmd/cryptorun main.go (root command construction, zerolog console
// writer setup) and its per-subcommand-file layout (cmd_health.go,
// cmd_scan.go, ...).
package main

import (
	"os"
	"runtime"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/devana-go/dva/dvaerr"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "devana",
	Short: "Headless DVA parameter-optimization engine runner",
	Long: `devana runs dynamic-vibration-absorber parameter-optimization
campaigns without the GUI: one subcommand per optimization engine, plus
frequency-response, Sobol sensitivity, and omega-points-convergence
analyses, all driven by a shared --config JSON document.`,
}

func init() {
	zerolog.TimeFieldFormat = time.RFC3339
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})

	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to the campaign JSON config document (required)")
}

// workerCount resolves the DEVANA_THREADS override (spec.md §6
// "Environment") against GOMAXPROCS.
func workerCount() int {
	if v := os.Getenv("DEVANA_THREADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return runtime.GOMAXPROCS(0)
}

func requireConfigPath() error {
	if configPath == "" {
		return dvaerr.New(dvaerr.InvalidInput, "--config is required")
	}
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error().Err(err).Msg("devana command failed")
		os.Exit(dvaerr.ExitCode(err))
	}
}
