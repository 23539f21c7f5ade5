package cart

// Item is one line of the cart, keyed by product ID.
//
// Display fields (Name, Description, ImageURL) are copied from the
// product at add time and not re-fetched. Price is the listed unit price
// before any discount and must never be overwritten with a discounted
// value. Stock is the last observed upper bound on Quantity; it is
// refreshed whenever the item is re-added or replaced by a server
// snapshot, so it is a soft ceiling rather than a guarantee.
type Item struct {
	ID          int      `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description"`
	ImageURL    string   `json:"imageUrl"`
	Price       float64  `json:"price"`
	Quantity    int      `json:"quantity"`
	Stock       int      `json:"stock"`
	Discount    *float64 `json:"discount,omitempty"` // percent in [0,100], nil when none
}

// Discounted reports whether the item carries a discount percentage.
func (it Item) Discounted() bool {
	return it.Discount != nil && *it.Discount > 0
}

// Result is the synchronous outcome of a Store mutation.
// Mutations never return error; a failed mutation leaves state untouched
// and carries a user-presentable message.
type Result struct {
	Success bool
	Message string
}

func ok(msg string) Result   { return Result{Success: true, Message: msg} }
func fail(msg string) Result { return Result{Success: false, Message: msg} }

// cloneItems returns a deep-enough copy of the item list. Discount
// pointers are duplicated so a held snapshot cannot alias live state.
func cloneItems(items []Item) []Item {
	if items == nil {
		return nil
	}
	out := make([]Item, len(items))
	copy(out, items)
	for i := range out {
		if out[i].Discount != nil {
			d := *out[i].Discount
			out[i].Discount = &d
		}
	}
	return out
}
