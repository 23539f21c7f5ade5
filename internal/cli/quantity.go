package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewQuantityCommand creates the quantity command, which sets the
// quantity of a cart line. Zero removes the line.
func NewQuantityCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "quantity <product-id> <qty>",
		Aliases:       []string{"qty"},
		Short:         "Set the quantity of a cart line",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := strconv.Atoi(args[0])
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid product id %q", args[0]))
			}
			qty, err := strconv.Atoi(args[1])
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid quantity %q", args[1]))
			}

			app, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer finish(cmd, app)

			res := app.Coord.UpdateQuantity(cmd.Context(), productID, qty)
			if !res.Success {
				return NewExitError(ExitFailure, res.Message)
			}
			return writeResult(cmd.OutOrStdout(), opts.Format,
				map[string]any{"productId": productID, "quantity": qty}, res.Message)
		},
	}
}
