// Package render draws the board and ordering views as plain text.
package render

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/xenking/cafe-lumiere/internal/board"
	"github.com/xenking/cafe-lumiere/internal/customer"
	"github.com/xenking/cafe-lumiere/internal/display"
	"github.com/xenking/cafe-lumiere/internal/domain/menu"
	"github.com/xenking/cafe-lumiere/internal/domain/order"
	"github.com/xenking/cafe-lumiere/internal/kitchen"
)

// Money formats an amount in euros with two decimals.
func Money(d decimal.Decimal) string {
	return "€" + d.StringFixed(2)
}

// Clock formats a timestamp as HH:MM in local time.
func Clock(t time.Time) string {
	if t.IsZero() {
		return "--:--"
	}
	return t.Local().Format("15:04")
}

// Items formats order lines as "Name xN" joined by commas.
func Items(items []order.Item) string {
	parts := make([]string, len(items))
	for i, it := range items {
		parts[i] = fmt.Sprintf("%s x%d", it.Name, it.Quantity)
	}
	return strings.Join(parts, ", ")
}

func flush(w io.Writer, b *strings.Builder) error {
	_, err := io.WriteString(w, b.String())
	return err
}

func placeholder(b *strings.Builder, col board.Column) bool {
	if !col.Empty() {
		return false
	}
	fmt.Fprintf(b, "  %s\n", col.Placeholder)
	return true
}

// Kitchen draws the kitchen board.
func Kitchen(w io.Writer, v kitchen.View) error {
	var b strings.Builder
	b.WriteString("=== Kitchen ===")
	if v.Loaded {
		fmt.Fprintf(&b, "  (updated %s)", Clock(v.UpdatedAt))
	}
	b.WriteString("\n")
	for _, col := range v.Columns {
		fmt.Fprintf(&b, "\n[%s] (%d)\n", col.Title, len(col.Cards))
		if placeholder(&b, col) {
			continue
		}
		for _, c := range col.Cards {
			fmt.Fprintf(&b, "  %s  %s  👤 %s\n", c.Number, Clock(c.CreatedAt), c.CustomerName)
			for _, it := range c.Items {
				fmt.Fprintf(&b, "    - %s x%d\n", it.Name, it.Quantity)
			}
			fmt.Fprintf(&b, "    Total: %s", Money(c.Total))
			if label := c.ActionLabel(); label != "" {
				fmt.Fprintf(&b, "  -> %s", label)
			}
			b.WriteString("\n")
		}
	}
	return flush(w, &b)
}

// Display draws the pickup board with its error banner.
func Display(w io.Writer, v display.View) error {
	var b strings.Builder
	if v.Banner != "" {
		fmt.Fprintf(&b, "!! %s\n\n", v.Banner)
	}
	sections := []struct {
		col     board.Column
		caption string
	}{
		{v.Ready, "✅ Ready!"},
		{v.Preparing, "👨‍🍳 Preparing..."},
	}
	for i, s := range sections {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "=== %s ===\n", s.col.Title)
		if placeholder(&b, s.col) {
			continue
		}
		for _, c := range s.col.Cards {
			fmt.Fprintf(&b, "  %-18s %-20s %s\n", c.Number, c.CustomerName, s.caption)
		}
	}
	return flush(w, &b)
}

// Menu draws the catalog grouped by category, with cart quantities as
// badges.
func Menu(w io.Writer, c *menu.Catalog, badges map[int]int) error {
	var b strings.Builder
	for i, cat := range c.Categories() {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "--- %s ---\n", cat.Title())
		for _, it := range c.ByCategory(cat) {
			fmt.Fprintf(&b, "  %2d. %s %-22s %8s", it.ID, it.Icon, it.Name, Money(it.Price))
			if n := badges[it.ID]; n > 0 {
				fmt.Fprintf(&b, "  (%d)", n)
			}
			b.WriteString("\n")
		}
	}
	return flush(w, &b)
}

// Customer draws the cart or, once an order is placed, its progress.
func Customer(w io.Writer, v customer.View) error {
	var b strings.Builder
	switch v.Stage {
	case customer.StageConfirmation:
		o := v.Order
		fmt.Fprintf(&b, "Order %s for %s\n", o.Number, o.CustomerName)
		for _, st := range v.Steps {
			mark := " "
			if st.Active {
				mark = "x"
			}
			fmt.Fprintf(&b, "  [%s] %s\n", mark, st.Label)
		}
		if o.Status.Terminal() {
			b.WriteString("Enjoy! Type 'new' to place another order.\n")
		}
	default:
		b.WriteString("Your cart:\n")
		if len(v.Lines) == 0 {
			b.WriteString("  Your cart is empty\n")
		}
		for _, l := range v.Lines {
			fmt.Fprintf(&b, "  %2d. %-22s x%-3d %8s\n", l.ID, l.Name, l.Quantity, Money(l.Subtotal()))
		}
		fmt.Fprintf(&b, "Total: %s\n", Money(v.Total))
	}
	return flush(w, &b)
}
