package cli

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
)

// NewAddCommand creates the add command, which looks up a product and
// adds it to the cart.
func NewAddCommand(opts *RootOptions) *cobra.Command {
	var qty int

	cmd := &cobra.Command{
		Use:   "add <product-id>",
		Short: "Add a product to the cart",
		Long: `Look up a product in the catalog and add it to the cart.

The change applies immediately and is confirmed against the remote cart
in the background.`,
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			productID, err := strconv.Atoi(args[0])
			if err != nil {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid product id %q", args[0]))
			}
			if qty < 1 {
				return NewExitError(ExitCommandError, "quantity must be at least 1")
			}

			app, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer finish(cmd, app)

			product, err := app.Products.FetchProduct(cmd.Context(), productID)
			if err != nil {
				return WrapExitError(ExitFailure, fmt.Sprintf("look up product %d", productID), err)
			}
			if !product.Available {
				return NewExitError(ExitFailure, fmt.Sprintf("%s is currently unavailable", product.Title))
			}

			candidate := product.Candidate()
			// The store adds one unit per call; repeat for the requested
			// quantity and stop at the stock bound.
			var added int
			for i := 0; i < qty; i++ {
				res := app.Coord.AddItem(cmd.Context(), candidate)
				if !res.Success {
					if added == 0 {
						return NewExitError(ExitFailure, res.Message)
					}
					fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %s; added %d of %d\n", res.Message, added, qty)
					break
				}
				added++
			}

			msg := fmt.Sprintf("%s added to cart (x%d)", candidate.Name, added)
			return writeResult(cmd.OutOrStdout(), opts.Format,
				map[string]any{"productId": productID, "added": added}, msg)
		},
	}

	cmd.Flags().IntVar(&qty, "qty", 1, "units to add")
	return cmd
}
