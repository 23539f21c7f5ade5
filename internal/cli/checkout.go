package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewCheckoutCommand creates the checkout command, which turns the cart
// into an order.
func NewCheckoutCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "checkout",
		Short: "Create an order from the cart",
		Long: `Push the local cart to the server and create an order from it.

Checkout is synchronous. On success the local cart is cleared; on
failure it is left untouched.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			if app.Store.Len() == 0 {
				return NewExitError(ExitFailure, "the cart is empty")
			}

			order, err := app.Coord.Checkout(cmd.Context())
			if err != nil {
				return WrapExitError(ExitFailure, "checkout failed, cart kept", err)
			}

			p := newPrinter(app.Config.Currency)
			msg := fmt.Sprintf("Order %s created (%s)", order.Number, money(p, order.Total))
			return writeResult(cmd.OutOrStdout(), opts.Format, order, msg)
		},
	}
}
