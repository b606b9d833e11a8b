package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the local API backend and database",
	Long: `Stops the backend and then the database, including ones left running by an
earlier 'molard serve' that did not shut down cleanly. The backend is found
through its pid file, or through its port when no pid was recorded; the
database is stopped with a fast shutdown of the data directory.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := newApplication()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		if err := application.RunStop(ctx); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Services stopped")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(stopCmd)
}
