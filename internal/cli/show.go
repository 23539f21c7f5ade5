package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// NewShowCommand creates the show command, which prints the local cart.
func NewShowCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "show",
		Short:         "Show the cart",
		Long:          `Print the locally persisted cart with per-line and total pricing.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			items := app.Store.Items()
			if opts.Format == "json" {
				return json.NewEncoder(cmd.OutOrStdout()).Encode(
					CLIResponse{Status: "ok", Data: newCartView(items)})
			}
			p := newPrinter(app.Config.Currency)
			return renderCart(cmd.OutOrStdout(), p, items)
		},
	}
}
