package cmd

import (
	"os"

	"github.com/spf13/cobra"

	"molard/internal/app"
)

var (
	rootDebug      bool
	rootConfigPath string
	rootStatePath  string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "molard",
	Short: "Run and control the clinic application's local services",
	Long: `molard starts and stops the local database and API backend when this
machine is the clinic server, reports their status, stores whether the
application runs as server or client, and captures the browser sign-in
redirect on a loopback port.`,
	// SilenceUsage is set to true to prevent printing usage message on errors
	// handled by us (e.g. failed starts, port conflicts)
	SilenceUsage: true,
}

// SetVersion sets the version for the root command
func SetVersion(v string) {
	rootCmd.Version = v
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	rootCmd.SetVersionTemplate(`{{printf "molard version %s\n" .Version}}`)

	err := rootCmd.Execute()
	if err != nil {
		// Cobra prints the error, we just exit non-zero
		os.Exit(1)
	}
}

// newApplication bootstraps the application from the global flags.
func newApplication() (*app.Application, error) {
	return app.NewApplication(app.NewConfig(rootDebug, rootConfigPath, rootStatePath))
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&rootDebug, "debug", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&rootConfigPath, "config-path", "", "Load settings from this file instead of the layered user and project files")
	rootCmd.PersistentFlags().StringVar(&rootStatePath, "state-path", "", "Location of the persisted state file (default ~/.config/molard/state.yaml)")
}
