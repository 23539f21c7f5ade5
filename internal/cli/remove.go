package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewRemoveCommand creates the remove command, which deletes a cart line.
func NewRemoveCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "remove <product-id>",
		Short:         "Remove a product from the cart",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := strconv.Atoi(args[0])
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid product id %q", args[0]))
			}

			app, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer finish(cmd, app)

			res := app.Coord.RemoveItem(cmd.Context(), productID)
			if !res.Success {
				return NewExitError(ExitFailure, res.Message)
			}
			return writeResult(cmd.OutOrStdout(), opts.Format,
				map[string]any{"productId": productID}, res.Message)
		},
	}
}
