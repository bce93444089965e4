package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/ManfrediC/sps-review/internal/config"
	"github.com/ManfrediC/sps-review/internal/logger"
)

// outputJSON writes a value as formatted JSON to stdout.
func outputJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

// exitWithError writes an error message to stderr and exits.
func exitWithError(code int, format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "error: "+format+"\n", args...)
	os.Exit(code)
}

// mustLoadConfig loads the effective configuration, applying environment
// overrides on top of the file and defaults.
func mustLoadConfig() config.Config {
	cfg, err := config.Load(flagConfig)
	if err != nil {
		exitWithError(ExitConfigError, "loading config: %v", err)
	}
	// OCR tool and language come from the environment when set, so a corpus
	// run can swap tools without editing the config file.
	if tool := os.Getenv("TRIAGE_OCR_TOOL"); tool != "" {
		cfg.OCR.Tool = tool
	}
	if lang := os.Getenv("TRIAGE_OCR_LANG"); lang != "" {
		cfg.OCR.Language = lang
	}
	return cfg
}

// mustNewLogger builds the process logger from the root flags.
func mustNewLogger() *logger.Logger {
	log, err := logger.New(flagLogMode, flagVerbose)
	if err != nil {
		exitWithError(ExitError, "initializing logger: %v", err)
	}
	return log
}
