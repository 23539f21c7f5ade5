package cart

// Pricing is pure and stateless: raw item data in, derived aggregates
// out. Input validity (quantity >= 1, discount in [0,100]) is the
// Store's responsibility, enforced before items ever reach these
// functions.

// EffectiveUnitPrice returns the unit price with the item's discount
// applied, or the listed price when there is none.
func EffectiveUnitPrice(it Item) float64 {
	if it.Discounted() {
		return it.Price * (1 - *it.Discount/100)
	}
	return it.Price
}

// Totals are the derived aggregates for a cart snapshot.
type Totals struct {
	Items    int     // sum of quantities
	Price    float64 // discount-applied total
	Subtotal float64 // total at listed prices, before discounts
	Savings  float64 // Subtotal - Price
}

// Totalize computes all aggregates for the given items in one pass.
func Totalize(items []Item) Totals {
	var t Totals
	for _, it := range items {
		qty := float64(it.Quantity)
		t.Items += it.Quantity
		t.Price += EffectiveUnitPrice(it) * qty
		t.Subtotal += it.Price * qty
	}
	t.Savings = t.Subtotal - t.Price
	return t
}
