package main

import (
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ManfrediC/sps-review/internal/registry"
)

var (
	registryOutDir  string
	registryCSVPath string
)

func init() {
	registryCmd.PersistentFlags().StringVar(&registryOutDir, "out", "triage-out", "Output directory holding the registry")
	registryExportCmd.Flags().StringVar(&registryCSVPath, "csv", "", "Write CSV to this path instead of stdout")
	registryCmd.AddCommand(registryExportCmd)
	registryCmd.AddCommand(registryShowCmd)
	rootCmd.AddCommand(registryCmd)
}

var registryCmd = &cobra.Command{
	Use:   "registry",
	Short: "Inspect and export the decision registry",
}

var registryExportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the decision registry as CSV",
	RunE:  runRegistryExport,
}

var registryShowCmd = &cobra.Command{
	Use:   "show <paper_id>",
	Short: "Show one paper's registry entry as JSON",
	Args:  cobra.ExactArgs(1),
	RunE:  runRegistryShow,
}

func openRegistry() *registry.Registry {
	reg, err := registry.Open(filepath.Join(registryOutDir, "decisions.db"))
	if err != nil {
		exitWithError(ExitError, "opening decision registry: %v", err)
	}
	return reg
}

func runRegistryExport(cmd *cobra.Command, args []string) error {
	reg := openRegistry()
	defer reg.Close()

	out := os.Stdout
	if registryCSVPath != "" {
		f, err := os.Create(registryCSVPath)
		if err != nil {
			exitWithError(ExitError, "creating export file: %v", err)
		}
		defer f.Close()
		out = f
	}
	if err := reg.ExportCSV(out); err != nil {
		exitWithError(ExitError, "exporting registry: %v", err)
	}
	return nil
}

func runRegistryShow(cmd *cobra.Command, args []string) error {
	reg := openRegistry()
	defer reg.Close()

	entry, ok, err := reg.Get(args[0])
	if err != nil {
		exitWithError(ExitError, "reading registry: %v", err)
	}
	if !ok {
		exitWithError(ExitDataError, "no registry entry for %s", args[0])
	}
	return outputJSON(entry)
}
