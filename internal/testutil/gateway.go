// Package testutil provides deterministic test doubles shared across
// packages.
package testutil

import (
	"context"
	"sync"

	"github.com/mercadito/storefront/internal/cart"
	"github.com/mercadito/storefront/internal/gateway"
)

// FakeGateway is a scripted in-memory gateway.Gateway. Each operation
// records its call, returns the scripted error for its name if one is
// set, and otherwise answers from the configured fields.
//
// Operation names for Fail: "fetch", "set", "add", "remove", "clear",
// "checkout", "product".
type FakeGateway struct {
	mu sync.Mutex

	// Remote answers.
	Cart        []cart.Item // FetchCart result
	SetSnapshot []cart.Item // SetItemQuantity result; nil means ack-only
	Order       gateway.Order
	Products    map[int]gateway.Product

	// Fail scripts an error per operation name.
	Fail map[string]error

	// Blocking, when non-nil, is received from before an operation
	// returns. Lets tests hold a confirmation in flight.
	Blocking chan struct{}

	calls []string
}

// Calls returns the recorded operation names in order.
func (f *FakeGateway) Calls() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.calls))
	copy(out, f.calls)
	return out
}

// CallCount returns how many times the named operation ran.
func (f *FakeGateway) CallCount(op string) int {
	n := 0
	for _, c := range f.Calls() {
		if c == op {
			n++
		}
	}
	return n
}

func (f *FakeGateway) begin(op string) error {
	f.mu.Lock()
	f.calls = append(f.calls, op)
	err := f.Fail[op]
	blocking := f.Blocking
	f.mu.Unlock()
	if blocking != nil {
		<-blocking
	}
	return err
}

func (f *FakeGateway) FetchCart(_ context.Context) ([]cart.Item, error) {
	if err := f.begin("fetch"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]cart.Item, len(f.Cart))
	copy(out, f.Cart)
	return out, nil
}

func (f *FakeGateway) SetItemQuantity(_ context.Context, productID, quantity int) ([]cart.Item, error) {
	if err := f.begin("set"); err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.SetSnapshot == nil {
		return nil, nil
	}
	out := make([]cart.Item, len(f.SetSnapshot))
	copy(out, f.SetSnapshot)
	return out, nil
}

func (f *FakeGateway) AddItem(_ context.Context, productID, quantity int) error {
	return f.begin("add")
}

func (f *FakeGateway) RemoveItem(_ context.Context, productID int) error {
	return f.begin("remove")
}

func (f *FakeGateway) ClearCart(_ context.Context) error {
	return f.begin("clear")
}

func (f *FakeGateway) Checkout(_ context.Context) (gateway.Order, error) {
	if err := f.begin("checkout"); err != nil {
		return gateway.Order{}, err
	}
	return f.Order, nil
}

// FetchProduct satisfies the catalog lookup used by the CLI add command.
func (f *FakeGateway) FetchProduct(_ context.Context, productID int) (gateway.Product, error) {
	if err := f.begin("product"); err != nil {
		return gateway.Product{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	p, found := f.Products[productID]
	if !found {
		return gateway.Product{}, &gateway.Error{Kind: gateway.KindValidation, Status: 404, Message: "product not found"}
	}
	return p, nil
}
