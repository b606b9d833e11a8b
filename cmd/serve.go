package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var serveMetricsAddr string

// serveCmd starts the local services in the foreground.
var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"start"},
	Short:   "Start the local database and API backend and keep them running",
	Long: `Starts the bundled database engine, waits for it to accept connections,
then launches the API backend. The command stays in the foreground until it
receives Ctrl+C or SIGTERM, then stops the backend and the database in that
order.

Use --metrics-addr to expose Prometheus metrics while serving.`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	application, err := newApplication()
	if err != nil {
		return fmt.Errorf("failed to initialize application: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return application.RunServe(ctx, serveMetricsAddr)
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address (e.g. 127.0.0.1:9464)")
}
