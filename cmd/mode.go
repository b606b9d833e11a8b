package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var modeCmd = &cobra.Command{
	Use:   "mode [get|set <server|client>]",
	Short: "Show or change whether this machine runs as server or client",
	Args:  cobra.MaximumNArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := newApplication()
		if err != nil {
			return err
		}
		c := application.Commands()

		switch {
		case len(args) == 0 || (len(args) == 1 && args[0] == "get"):
			fmt.Fprintln(cmd.OutOrStdout(), c.GetMode())
			return nil
		case len(args) == 2 && args[0] == "set":
			if err := c.SetMode(args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Mode set to %s\n", c.GetMode())
			return nil
		default:
			return fmt.Errorf("usage: %s", cmd.Use)
		}
	},
}

func init() {
	rootCmd.AddCommand(modeCmd)
}
