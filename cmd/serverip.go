package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var serverIPCmd = &cobra.Command{
	Use:   "server-ip [get|set <address>]",
	Short: "Show or change the address of the clinic server used in client mode",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := newApplication()
		if err != nil {
			return err
		}
		c := application.Commands()

		switch {
		case len(args) == 0 || (len(args) == 1 && args[0] == "get"):
			ip, ok := c.GetServerIP()
			if !ok {
				fmt.Fprintln(cmd.ErrOrStderr(), "No server address set")
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), ip)
			return nil
		case len(args) == 2 && args[0] == "set":
			if err := c.SetServerIP(args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Server address set to %s\n", args[1])
			return nil
		default:
			return fmt.Errorf("usage: %s", cmd.Use)
		}
	},
}

func init() {
	rootCmd.AddCommand(serverIPCmd)
}
