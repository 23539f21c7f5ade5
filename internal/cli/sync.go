package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

// NewSyncCommand creates the sync command, which reconciles the local
// cart with the remote cart service.
func NewSyncCommand(opts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Reconcile the cart with the server",
		Long: `Fetch the remote cart and reconcile it with the local one.

A populated remote cart replaces the local cart. An empty remote cart
leaves a populated local cart alone, so items added while offline or as
a guest are never wiped.`,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := opts.openApp(cmd)
			if err != nil {
				return err
			}
			defer app.Close()

			if err := app.Coord.SyncCart(cmd.Context()); err != nil {
				return WrapExitError(ExitFailure, "sync failed, local cart kept", err)
			}

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
