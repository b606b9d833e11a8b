package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"molard/internal/config"
	apperrors "molard/internal/errors"
)

var (
	setupMode        string
	setupServerIP    string
	setupMetricsAddr string
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Complete first-run setup",
	Long: `Records the chosen mode and marks first-run setup as done.

In server mode setup then serves the local services in the foreground, like
'molard serve', until Ctrl+C or SIGTERM. In client mode pass the clinic
server's address with --server-ip; nothing is started.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := newApplication()
		if err != nil {
			return err
		}

		mode, err := application.Commands().RecordSetup(setupMode, setupServerIP)
		if err != nil {
			return fmt.Errorf("%s", apperrors.UserMessage(err))
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Setup complete (%s mode)\n", mode)

		if mode != config.ModeServer {
			return nil
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		return application.RunServe(ctx, setupMetricsAddr)
	},
}

var firstRunCmd = &cobra.Command{
	Use:   "first-run",
	Short: "Print true when first-run setup has not been completed",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := newApplication()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), application.Commands().IsFirstRun())
		return nil
	},
}

func init() {
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(firstRunCmd)

	setupCmd.Flags().StringVar(&setupMode, "mode", "", "server or client")
	setupCmd.Flags().StringVar(&setupServerIP, "server-ip", "", "Address of the clinic server (client mode)")
	setupCmd.Flags().StringVar(&setupMetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address while serving (server mode)")
	_ = setupCmd.MarkFlagRequired("mode")
}
