package cli

import (
	"github.com/spf13/cobra"
)

// NewClearCommand creates the clear command, which empties the cart.
func NewClearCommand(opts *RootOptions) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:           "clear",
		Short:         "Empty the cart",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return NewExitError(ExitCommandError, "refusing to clear the cart without --yes")
			}

			app, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer finish(cmd, app)

			res := app.Coord.ClearCart(cmd.Context())
			if !res.Success {
				return NewExitError(ExitFailure, res.Message)
			}
			return writeResult(cmd.OutOrStdout(), opts.Format, nil, res.Message)
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm clearing the cart")
	return cmd
}
