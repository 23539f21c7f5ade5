package gateway

import (
	"context"

	"github.com/mercadito/storefront/internal/cart"
)

// Gateway is the consumed contract of the remote cart service.
// Implemented by Client (production) and testutil.FakeGateway (tests).
type Gateway interface {
	// FetchCart returns the server cart. An absent cart is an empty
	// item list, not an error.
	FetchCart(ctx context.Context) ([]cart.Item, error)

	// SetItemQuantity upserts a line quantity and returns the
	// server-recomputed cart snapshot.
	SetItemQuantity(ctx context.Context, productID, quantity int) ([]cart.Item, error)

	// AddItem proposes a new line. Fails with a validation kind when
	// the product is already in the server cart.
	AddItem(ctx context.Context, productID, quantity int) error

	// RemoveItem deletes a line. Acknowledgment only.
	RemoveItem(ctx context.Context, productID int) error

	// ClearCart empties the server cart. Acknowledgment only.
	ClearCart(ctx context.Context) error

	// Checkout creates an order from the server cart.
	Checkout(ctx context.Context) (Order, error)
}

// ProductFetcher looks up catalog details for a single product.
// Satisfied by Client; kept separate from Gateway because the catalog
// is a different collaborator than the cart service.
type ProductFetcher interface {
	FetchProduct(ctx context.Context, productID int) (Product, error)
}

// Order is the reference returned by a successful checkout.
type Order struct {
	ID     int     `json:"id"`
	Number string  `json:"number"`
	Status string  `json:"status"`
	Total  float64 `json:"total"`
}

// Product is the catalog detail used to build an add candidate.
// Price arrives as a display string and is parsed client-side.
type Product struct {
	ID          int
	Title       string
	Description string
	ImageURL    string
	Price       float64
	Discount    float64 // percent, 0 when none
	Stock       int
	Available   bool
}

// Candidate converts a catalog product into a cart line candidate.
// Quantity is left unset; the store assigns it on add.
func (p Product) Candidate() cart.Item {
	it := cart.Item{
		ID:          p.ID,
		Name:        p.Title,
		Description: p.Description,
		ImageURL:    p.ImageURL,
		Price:       p.Price,
		Stock:       p.Stock,
	}
	if p.Discount > 0 {
		d := p.Discount
		it.Discount = &d
	}
	return it
}
