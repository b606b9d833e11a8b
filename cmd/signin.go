package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var signInNoTUI bool

var signInCmd = &cobra.Command{
	Use:   "signin <authorization-url>",
	Short: "Sign in through the system browser and print the redirect fragment",
	Long: `Opens the identity provider's authorization URL in the default browser and
waits for the provider to redirect back to the local callback listener. The
captured URL fragment is printed on stdout for the caller to parse.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := newApplication()
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		fragment, err := application.RunSignIn(ctx, cmd.ErrOrStderr(), args[0], signInNoTUI)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), fragment)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(signInCmd)

	signInCmd.Flags().BoolVar(&signInNoTUI, "no-tui", false, "Do not show the progress view while waiting")
}
