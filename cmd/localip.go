package cmd

import (
	"fmt"

	"github.com/atotto/clipboard"
	"github.com/spf13/cobra"

	"molard/internal/app"
	"molard/pkg/logging"
)

var localIPCopy bool

var localIPCmd = &cobra.Command{
	Use:   "local-ip",
	Short: "Print this machine's LAN address for client machines to use",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ip, err := app.LocalIP()
		if err != nil {
			return fmt.Errorf("could not determine local address: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), ip)

		if localIPCopy {
			if err := clipboard.WriteAll(ip); err != nil {
				logging.Warn("CLI", "Could not copy address to clipboard: %v", err)
				return nil
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "Copied to clipboard")
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(localIPCmd)

	localIPCmd.Flags().BoolVar(&localIPCopy, "copy", false, "Also copy the address to the clipboard")
}
