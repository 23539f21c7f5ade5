package cli

import (
	"fmt"
	"io"
	"text/tabwriter"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/mercadito/storefront/internal/cart"
)

// newPrinter builds a locale-aware number printer from the configured
// currency locale. An unparseable tag falls back to Spanish (Chile),
// the store's home market.
func newPrinter(locale string) *message.Printer {
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse("es-CL")
	}
	return message.NewPrinter(tag)
}

// money formats an amount with locale grouping. Prices are whole pesos.
func money(p *message.Printer, amount float64) string {
	return p.Sprintf("$%.0f", amount)
}

// cartView is the JSON shape of a cart snapshot with its aggregates.
type cartView struct {
	Items  []cart.Item `json:"items"`
	Totals totalsView  `json:"totals"`
}

type totalsView struct {
	Items    int     `json:"items"`
	Price    float64 `json:"price"`
	Subtotal float64 `json:"subtotal"`
	Savings  float64 `json:"savings"`
}

func newCartView(items []cart.Item) cartView {
	t := cart.Totalize(items)
	if items == nil {
		items = []cart.Item{}
	}
	return cartView{
		Items: items,
		Totals: totalsView{
			Items:    t.Items,
			Price:    t.Price,
			Subtotal: t.Subtotal,
			Savings:  t.Savings,
		},
	}
}

// renderCart writes the cart as an aligned line table followed by the
// derived totals. Discounted lines show the percentage and the
// effective unit price.
func renderCart(w io.Writer, p *message.Printer, items []cart.Item) error {
	if len(items) == 0 {
		_, err := fmt.Fprintln(w, "Your cart is empty.")
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tPRODUCT\tQTY\tUNIT\tLINE")
	for _, it := range items {
		name := it.Name
		if it.Discounted() {
			name = fmt.Sprintf("%s (-%.0f%%)", name, *it.Discount)
		}
		unit := cart.EffectiveUnitPrice(it)
		fmt.Fprintf(tw, "%d\t%s\t%d\t%s\t%s\n",
			it.ID, name, it.Quantity,
			money(p, unit), money(p, unit*float64(it.Quantity)))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	t := cart.Totalize(items)
	fmt.Fprintln(w)
	if t.Savings > 0 {
		fmt.Fprintf(w, "Subtotal: %s\n", money(p, t.Subtotal))
		fmt.Fprintf(w, "Savings:  %s\n", money(p, t.Savings))
	}
	_, err := fmt.Fprintf(w, "Total:    %s (%d items)\n", money(p, t.Price), t.Items)
	return err
}
