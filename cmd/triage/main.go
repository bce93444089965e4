// Package main provides the triage CLI entry point.
package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

// Version is set at build time via ldflags
var Version = "dev"

var (
	flagConfig  string
	flagVerbose bool
	flagLogMode string
)

func main() {
	_ = godotenv.Load()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(ExitError)
	}
}

var rootCmd = &cobra.Command{
	Use:   "triage",
	Short: "Text triage for systematic-review PDF corpora",
	Long: `triage decides, per PDF, whether extracted text is trustworthy, runs an
OCR fallback when it is not, detects proceedings-style container documents,
and trims containers down to the single abstract matching the review's
reference list. Every decision lands in an idempotent registry.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Path to YAML config file (defaults apply when absent)")
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagLogMode, "log-mode", "dev", "Log encoder: dev or prod")
	rootCmd.Version = Version
}
