package syncer

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/mercadito/storefront/internal/cart"
	"github.com/mercadito/storefront/internal/gateway"
)

// Coordinator orchestrates optimistic-apply-then-confirm flows between
// the cart store and the remote gateway. It owns no cart state itself;
// it only calls store operations or requests a full replace.
type Coordinator struct {
	store  *cart.Store
	gw     gateway.Gateway
	logger *slog.Logger

	wg sync.WaitGroup

	mu            sync.Mutex
	lastSyncErr   error
	sessionSynced bool
}

// New creates a Coordinator. A nil logger falls back to slog.Default.
func New(store *cart.Store, gw gateway.Gateway, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Coordinator{store: store, gw: gw, logger: logger}
}

// Wait blocks until every in-flight confirmation has settled.
func (c *Coordinator) Wait() {
	c.wg.Wait()
}

// LastSyncError returns the most recent surfaced sync failure, or nil.
// Keep-local failures are never recorded here; they are log-only.
func (c *Coordinator) LastSyncError() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastSyncErr
}

func (c *Coordinator) setSyncErr(err error) {
	c.mu.Lock()
	c.lastSyncErr = err
	c.mu.Unlock()
}

// AddItem applies the candidate locally and confirms the resulting line
// quantity remotely. A validation failure on the remote add usually
// means the line already exists server-side, so the confirmation falls
// back to setting the quantity before giving up.
func (c *Coordinator) AddItem(ctx context.Context, candidate cart.Item) cart.Result {
	prev := c.store.Items()

	res := c.store.AddItem(ctx, candidate)
	if !res.Success {
		return res
	}

	quantity := 1
	for _, it := range c.store.Items() {
		if it.ID == candidate.ID {
			quantity = it.Quantity
			break
		}
	}

	c.confirm(ctx, func(ctx context.Context) {
		err := c.gw.AddItem(ctx, candidate.ID, quantity)
		if err != nil && gateway.KindOf(err) == gateway.KindValidation {
			var snapshot []cart.Item
			snapshot, err = c.gw.SetItemQuantity(ctx, candidate.ID, quantity)
			if err == nil && snapshot != nil {
				c.store.SetItems(ctx, snapshot)
			}
		}
		if err != nil {
			c.settleFailure(ctx, "add item", err, prev)
			return
		}
		c.logger.Debug("item add confirmed", "product", candidate.ID, "quantity", quantity)
	})

	return res
}

// UpdateQuantity applies the quantity change locally and confirms it
// remotely. The returned Result reflects only local validation; remote
// outcome is settled asynchronously per the classification rules.
func (c *Coordinator) UpdateQuantity(ctx context.Context, productID, quantity int) cart.Result {
	prev := c.store.Items()

	res := c.store.UpdateQuantity(ctx, productID, quantity)
	if !res.Success {
		return res
	}

	c.confirm(ctx, func(ctx context.Context) {
		snapshot, err := c.gw.SetItemQuantity(ctx, productID, quantity)
		if err != nil {
			c.settleFailure(ctx, "update quantity", err, prev)
			return
		}
		if snapshot != nil {
			// Absorb server-recomputed stock bounds and pricing.
			c.store.SetItems(ctx, snapshot)
		}
		c.logger.Debug("quantity change confirmed", "product", productID, "quantity", quantity)
	})

	return res
}

// RemoveItem removes the line locally and confirms remotely.
func (c *Coordinator) RemoveItem(ctx context.Context, productID int) cart.Result {
	prev := c.store.Items()

	res := c.store.RemoveItem(ctx, productID)
	if !res.Success {
		return res
	}

	c.confirm(ctx, func(ctx context.Context) {
		if err := c.gw.RemoveItem(ctx, productID); err != nil {
			c.settleFailure(ctx, "remove item", err, prev)
			return
		}
		c.logger.Debug("item removal confirmed", "product", productID)
	})

	return res
}

// ClearCart empties the cart locally and confirms remotely.
func (c *Coordinator) ClearCart(ctx context.Context) cart.Result {
	prev := c.store.Items()

	res := c.store.Clear(ctx)
	if !res.Success {
		return res
	}

	c.confirm(ctx, func(ctx context.Context) {
		if err := c.gw.ClearCart(ctx); err != nil {
			c.settleFailure(ctx, "clear cart", err, prev)
			return
		}
		c.logger.Debug("cart clear confirmed")
	})

	return res
}

// confirm runs fn on a tracked goroutine. The confirmation outlives the
// caller's context deliberately: cancelling a CLI command must not turn
// a committed optimistic change into a half-settled one.
func (c *Coordinator) confirm(ctx context.Context, fn func(context.Context)) {
	bg := context.WithoutCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn(bg)
	}()
}

// settleFailure classifies a confirmation failure. Validation kinds are
// revert-worthy: the pre-mutation snapshot is restored and the error
// recorded. Everything else keeps the optimistic change and is logged
// only - losing user intent over an unreachable or confused server is
// the worse trade.
func (c *Coordinator) settleFailure(ctx context.Context, op string, err error, prev []cart.Item) {
	kind := gateway.KindOf(err)
	if kind == gateway.KindValidation {
		c.store.SetItems(ctx, prev)
		c.setSyncErr(fmt.Errorf("%s rejected: %w", op, err))
		c.logger.Warn("remote rejected change, rolled back", "op", op, "error", err)
		return
	}
	c.logger.Info("remote unavailable, keeping local change", "op", op, "kind", kind.String(), "error", err)
}

// SyncCart fetches the remote cart and reconciles it with local state.
//
// Merge rule: the remote snapshot replaces local state when it has items
// or when the local cart is empty. A populated local cart is kept when
// the remote one is empty - this protects a guest-built cart from being
// wiped by an empty server cart on first login.
//
// A fetch failure leaves local state untouched and is recorded; the cart
// stays usable offline.
func (c *Coordinator) SyncCart(ctx context.Context) error {
	remote, err := c.gw.FetchCart(ctx)
	if err != nil {
		c.setSyncErr(err)
		c.logger.Warn("cart sync failed, keeping local cart",
			"kind", gateway.KindOf(err).String(), "error", err)
		return fmt.Errorf("sync cart: %w", err)
	}

	if len(remote) > 0 || c.store.Len() == 0 {
		c.store.SetItems(ctx, remote)
		c.logger.Debug("cart replaced with remote snapshot", "items", len(remote))
	} else {
		c.logger.Info("remote cart empty, keeping local cart", "localLines", c.store.Len())
	}

	c.setSyncErr(nil)
	return nil
}

// EnsureSynced runs SyncCart once per authenticated session. Repeated
// calls within the same session are no-ops; SessionEnded re-arms it for
// the next login. A failed fetch does not consume the arming, so the
// next session activation retries.
func (c *Coordinator) EnsureSynced(ctx context.Context) error {
	c.mu.Lock()
	if c.sessionSynced {
		c.mu.Unlock()
		return nil
	}
	c.mu.Unlock()

	if err := c.SyncCart(ctx); err != nil {
		return err
	}

	c.mu.Lock()
	c.sessionSynced = true
	c.mu.Unlock()
	return nil
}

// SessionEnded re-arms the one-shot full sync after a logout.
func (c *Coordinator) SessionEnded() {
	c.mu.Lock()
	c.sessionSynced = false
	c.mu.Unlock()
}

// PushCart uploads every local line to the server cart. A validation
// conflict on add (line already present) falls back to setting the
// quantity. Used before checkout so a guest-built cart reaches the
// server.
func (c *Coordinator) PushCart(ctx context.Context) error {
	for _, it := range c.store.Items() {
		err := c.gw.AddItem(ctx, it.ID, it.Quantity)
		if err == nil {
			continue
		}
		if gateway.KindOf(err) != gateway.KindValidation {
			return fmt.Errorf("push %q: %w", it.Name, err)
		}
		if _, err := c.gw.SetItemQuantity(ctx, it.ID, it.Quantity); err != nil {
			return fmt.Errorf("push %q quantity: %w", it.Name, err)
		}
	}
	return nil
}

// Checkout pushes the local cart, creates the order remotely, and on
// success clears the local cart. Checkout is synchronous: there is no
// optimistic window for order creation.
func (c *Coordinator) Checkout(ctx context.Context) (gateway.Order, error) {
	if err := c.PushCart(ctx); err != nil {
		return gateway.Order{}, fmt.Errorf("checkout: %w", err)
	}

	order, err := c.gw.Checkout(ctx)
	if err != nil {
		return gateway.Order{}, fmt.Errorf("checkout: %w", err)
	}

	c.store.Clear(ctx)
	return order, nil
}
