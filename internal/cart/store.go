package cart

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
)

// Persister writes the full item list to durable storage. The Store
// calls it after every successful in-memory mutation, never before.
// Implemented by persist.DB (production) and recorders in tests.
type Persister interface {
	Replace(ctx context.Context, items []Item) error
}

// Store is the canonical cart state container.
//
// It is constructed once at process start with the loaded snapshot and
// injected wherever cart access is needed; there is no package-level
// instance. Every mutation is atomic with respect to the others, and the
// persisted snapshot matches the in-memory one after each returns.
//
// Thread-safety model:
//   - all methods are safe from any goroutine
//   - subscribers are invoked after the mutation completes, outside the
//     store lock, so they may read the store freely
type Store struct {
	mu        sync.Mutex
	items     []Item
	persister Persister
	logger    *slog.Logger

	subMu   sync.Mutex
	subs    map[int]func()
	nextSub int
}

// NewStore creates a Store seeded with the persisted snapshot.
// A nil logger falls back to slog.Default.
func NewStore(items []Item, persister Persister, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &Store{
		items:     cloneItems(items),
		persister: persister,
		logger:    logger,
		subs:      make(map[int]func()),
	}
}

// Subscribe registers fn to run after every completed mutation.
// The returned function removes the subscription.
func (s *Store) Subscribe(fn func()) (unsubscribe func()) {
	s.subMu.Lock()
	defer s.subMu.Unlock()
	id := s.nextSub
	s.nextSub++
	s.subs[id] = fn
	return func() {
		s.subMu.Lock()
		defer s.subMu.Unlock()
		delete(s.subs, id)
	}
}

func (s *Store) notify() {
	s.subMu.Lock()
	fns := make([]func(), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.subMu.Unlock()
	for _, fn := range fns {
		fn()
	}
}

// persistLocked writes the current item list through the persister.
// Called with s.mu held so the durable snapshot can never interleave
// with another mutation. A write failure keeps the in-memory mutation
// applied and is logged; the next successful mutation rewrites the
// full snapshot anyway.
func (s *Store) persistLocked(ctx context.Context) {
	if s.persister == nil {
		return
	}
	if err := s.persister.Replace(ctx, cloneItems(s.items)); err != nil {
		s.logger.Error("persist cart snapshot", "error", err, "items", len(s.items))
	}
}

// AddItem inserts the candidate with quantity 1, or increments an
// existing line by 1 when the stock bound allows it.
//
// The candidate's Quantity is ignored; its Stock is treated as the
// freshest known bound and refreshes the stored line on a duplicate
// add. Failures (capacity reached, no stock at all) leave the cart
// unchanged.
func (s *Store) AddItem(ctx context.Context, candidate Item) Result {
	s.mu.Lock()

	for i := range s.items {
		if s.items[i].ID != candidate.ID {
			continue
		}
		// candidate.Stock is the freshest observed bound; the stored
		// line picks it up when the increment goes through.
		if s.items[i].Quantity >= candidate.Stock {
			name := s.items[i].Name
			s.mu.Unlock()
			return fail(fmt.Sprintf("no more stock available for %s", name))
		}
		s.items[i].Quantity++
		s.items[i].Stock = candidate.Stock
		s.persistLocked(ctx)
		s.mu.Unlock()
		s.notify()
		return ok(fmt.Sprintf("%s added to cart", candidate.Name))
	}

	if candidate.Stock <= 0 {
		s.mu.Unlock()
		return fail(fmt.Sprintf("no stock available for %s", candidate.Name))
	}

	candidate.Quantity = 1
	s.items = append(s.items, candidate)
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()
	return ok(fmt.Sprintf("%s added to cart", candidate.Name))
}

// RemoveItem deletes the line with the given product ID. Removing an
// absent ID is a no-op; the operation always succeeds.
func (s *Store) RemoveItem(ctx context.Context, productID int) Result {
	s.mu.Lock()
	removed := false
	for i := range s.items {
		if s.items[i].ID == productID {
			s.items = append(s.items[:i], s.items[i+1:]...)
			removed = true
			break
		}
	}
	if removed {
		s.persistLocked(ctx)
	}
	s.mu.Unlock()
	if removed {
		s.notify()
	}
	return ok("item removed from cart")
}

// UpdateQuantity sets the quantity for a line. A quantity of zero or
// less removes the line. A quantity above the last known stock bound
// fails and leaves the line unchanged.
func (s *Store) UpdateQuantity(ctx context.Context, productID, quantity int) Result {
	if quantity <= 0 {
		return s.RemoveItem(ctx, productID)
	}

	s.mu.Lock()
	for i := range s.items {
		if s.items[i].ID != productID {
			continue
		}
		if quantity > s.items[i].Stock {
			name := s.items[i].Name
			stock := s.items[i].Stock
			s.mu.Unlock()
			return fail(fmt.Sprintf("only %d in stock for %s", stock, name))
		}
		s.items[i].Quantity = quantity
		s.persistLocked(ctx)
		s.mu.Unlock()
		s.notify()
		return ok("quantity updated")
	}
	s.mu.Unlock()
	return fail(fmt.Sprintf("product %d is not in the cart", productID))
}

// Clear empties the cart unconditionally.
func (s *Store) Clear(ctx context.Context) Result {
	s.mu.Lock()
	s.items = nil
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()
	return ok("cart cleared")
}

// SetItems replaces the whole item list with a server-provided snapshot.
// The remote cart is authoritative at this point, so per-item validation
// is bypassed. Only the sync coordinator should call this.
func (s *Store) SetItems(ctx context.Context, items []Item) {
	s.mu.Lock()
	s.items = cloneItems(items)
	s.persistLocked(ctx)
	s.mu.Unlock()
	s.notify()
}

// Items returns a copy of the current item list.
func (s *Store) Items() []Item {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneItems(s.items)
}

// Len returns the number of distinct lines in the cart.
func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// ItemStock returns the last known stock bound for a product, or false
// when the product is not in the cart.
func (s *Store) ItemStock(productID int) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, it := range s.items {
		if it.ID == productID {
			return it.Stock, true
		}
	}
	return 0, false
}

// Totals computes the derived aggregates for the current snapshot.
func (s *Store) Totals() Totals {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Totalize(s.items)
}

// TotalItems returns the summed quantity across all lines.
func (s *Store) TotalItems() int { return s.Totals().Items }

// TotalPrice returns the discount-applied cart total.
func (s *Store) TotalPrice() float64 { return s.Totals().Price }

// Subtotal returns the cart total at listed prices, before discounts.
func (s *Store) Subtotal() float64 { return s.Totals().Subtotal }

// Savings returns the amount saved through discounts.
func (s *Store) Savings() float64 { return s.Totals().Savings }
