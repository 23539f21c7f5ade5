package cli

import (
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/mercadito/storefront/internal/cart"
	"github.com/mercadito/storefront/internal/config"
	"github.com/mercadito/storefront/internal/gateway"
	"github.com/mercadito/storefront/internal/persist"
	"github.com/mercadito/storefront/internal/syncer"
)

// App wires the cart engine together for one command invocation:
// config, snapshot database, store, gateway and sync coordinator.
type App struct {
	Config   config.Config
	Store    *cart.Store
	Gateway  gateway.Gateway
	Products gateway.ProductFetcher
	Coord    *syncer.Coordinator

	// Swept reports that the startup migration discarded an outdated
	// snapshot; the user must re-add their items.
	Swept bool

	db *persist.DB
}

// Close drains in-flight sync confirmations and releases the snapshot
// database. Safe to call on a test-injected App without a database.
func (a *App) Close() {
	if a.Coord != nil {
		a.Coord.Wait()
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			slog.Error("close snapshot database", "error", err)
		}
	}
}

// finish drains in-flight confirmations and reports any surfaced sync
// failure on stderr. The local mutation already settled (kept or
// reverted), so the command itself still succeeds.
func finish(cmd *cobra.Command, app *App) {
	app.Close()
	if app.Coord == nil {
		return
	}
	if err := app.Coord.LastSyncError(); err != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "Warning: %v\n", err)
	}
}

// openApp returns the injected App (tests) or builds one from
// configuration: load config, open and sweep the snapshot, load it into
// the store, and stand up gateway and coordinator.
func (opts *RootOptions) openApp(cmd *cobra.Command) (*App, error) {
	if opts.App != nil {
		return opts.App, nil
	}

	path := opts.ConfigPath
	explicit := path != ""
	if !explicit {
		path = config.DefaultPath()
	}
	cfg, err := config.Load(path, explicit)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "load configuration", err)
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Database), 0o755); err != nil {
		return nil, WrapExitError(ExitCommandError, "create data directory", err)
	}

	db, err := persist.Open(cfg.Database)
	if err != nil {
		return nil, WrapExitError(ExitCommandError, "open cart snapshot", err)
	}

	items, err := db.Load(cmd.Context())
	if err != nil {
		db.Close()
		return nil, WrapExitError(ExitCommandError, "load cart snapshot", err)
	}

	logger := slog.Default()
	store := cart.NewStore(items, db, logger)

	client, err := gateway.NewClient(cfg.APIBaseURL,
		&http.Client{Timeout: cfg.Timeout.Std()},
		func() string { return cfg.Token() },
		logger)
	if err != nil {
		db.Close()
		return nil, WrapExitError(ExitCommandError, "configure gateway", err)
	}

	app := &App{
		Config:   cfg,
		Store:    store,
		Gateway:  client,
		Products: client,
		Coord:    syncer.New(store, client, logger),
		Swept:    db.Swept(),
		db:       db,
	}

	if app.Swept {
		fmt.Fprintln(cmd.ErrOrStderr(), "The cart storage format changed and your saved cart was reset. Please re-add your items.")
	}

	return app, nil
}
