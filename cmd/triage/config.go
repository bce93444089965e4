package main

import (
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/ManfrediC/sps-review/internal/config"
)

var configInitPath string

func init() {
	configInitCmd.Flags().StringVar(&configInitPath, "path", "triage.yaml", "Where to write the config file")
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configShowCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage triage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a config file with all thresholds at their defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		if _, err := os.Stat(configInitPath); err == nil {
			exitWithError(ExitConfigError, "config file already exists: %s", configInitPath)
		}
		if err := config.Default().Save(configInitPath); err != nil {
			exitWithError(ExitError, "%v", err)
		}
		return outputJSON(map[string]string{"status": "ok", "path": configInitPath})
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration as YAML",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := mustLoadConfig()
		data, err := yaml.Marshal(cfg)
		if err != nil {
			exitWithError(ExitError, "encoding config: %v", err)
		}
		os.Stdout.Write(data)
		return nil
	},
}
