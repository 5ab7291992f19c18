package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wonny/ipo-scorecard/pkg/config"
	"github.com/wonny/ipo-scorecard/pkg/logger"
)

var (
	// Global flags
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "scorecard",
	Short: "IPO Scorecard - DRHP/RHP 재무 분석 및 투자 판단",
	Long: `IPO Scorecard CLI

Offer document (PDF) → 재무제표 추출 → 지표 계산 → Apply / Neutral / Avoid 판단.

Usage:
  go run ./cmd/scorecard [command]

Examples:
  go run ./cmd/scorecard api
  go run ./cmd/scorecard score rows.json
  go run ./cmd/scorecard analyze acme_drhp.pdf --slug acme
  go run ./cmd/scorecard config check config/scoring/default.yaml
  go run ./cmd/scorecard scheduler run upload_retention`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output (debug logs)")
}

// loadConfig loads env config and applies global flags
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// cliLogger writes to stderr so command output on stdout stays machine-readable
func cliLogger(cfg *config.Config) *logger.Logger {
	return logger.NewWithWriter(cfg, os.Stderr)
}
