// Package cart holds the client-local, pre-submission collection of selected
// menu items.
package cart

import (
	"strings"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"

	"github.com/xenking/cafe-lumiere/internal/domain/order"
)

// Submission validation errors. Both are checked before any request is sent.
var (
	ErrNameRequired = errors.New("customer name required")
	ErrCartEmpty    = errors.New("cart is empty")
)

// Line is one cart entry. Quantity is always at least 1.
type Line struct {
	ID       int
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// Subtotal returns price × quantity at full precision.
func (l Line) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is an insertion-ordered set of lines, unique by item id. The zero
// value is an empty cart ready to use.
type Cart struct {
	lines []Line
}

// New returns an empty cart.
func New() *Cart {
	return &Cart{}
}

// AddItem increments the quantity of id, inserting it with quantity 1 when
// absent. Name and price of an existing line are left untouched.
func (c *Cart) AddItem(id int, name string, price decimal.Decimal) {
	if i := c.index(id); i >= 0 {
		c.lines[i].Quantity++
		return
	}
	c.lines = append(c.lines, Line{ID: id, Name: name, Price: price, Quantity: 1})
}

// RemoveItem drops the whole line for id. Removing an absent id is a no-op.
func (c *Cart) RemoveItem(id int) {
	if i := c.index(id); i >= 0 {
		c.lines = append(c.lines[:i], c.lines[i+1:]...)
	}
}

// Quantity returns how many units of id are in the cart.
func (c *Cart) Quantity(id int) int {
	if i := c.index(id); i >= 0 {
		return c.lines[i].Quantity
	}
	return 0
}

// Total returns the exact sum of line subtotals. Round only for display.
func (c *Cart) Total() decimal.Decimal {
	total := decimal.Zero
	for _, l := range c.lines {
		total = total.Add(l.Subtotal())
	}
	return total
}

// Lines returns a copy of the cart lines in insertion order.
func (c *Cart) Lines() []Line {
	out := make([]Line, len(c.lines))
	copy(out, c.lines)
	return out
}

// Len returns the number of distinct lines.
func (c *Cart) Len() int { return len(c.lines) }

// Empty reports whether the cart has no lines.
func (c *Cart) Empty() bool { return len(c.lines) == 0 }

// Clear removes every line.
func (c *Cart) Clear() { c.lines = nil }

func (c *Cart) index(id int) int {
	for i, l := range c.lines {
		if l.ID == id {
			return i
		}
	}
	return -1
}

// ValidateSubmission checks the pre-submission rules: a non-blank customer
// name, then a non-empty cart.
func ValidateSubmission(name string, c *Cart) error {
	if strings.TrimSpace(name) == "" {
		return ErrNameRequired
	}
	if c == nil || c.Empty() {
		return ErrCartEmpty
	}
	return nil
}

// NewOrderRequest validates the submission and builds the order body. The
// name is trimmed; the total keeps full precision.
func NewOrderRequest(name string, c *Cart) (order.NewOrder, error) {
	if err := ValidateSubmission(name, c); err != nil {
		return order.NewOrder{}, err
	}
	items := make([]order.LineItem, len(c.lines))
	for i, l := range c.lines {
		items[i] = order.LineItem{
			ID:       l.ID,
			Name:     l.Name,
			Price:    l.Price,
			Quantity: l.Quantity,
		}
	}
	return order.NewOrder{
		CustomerName: strings.TrimSpace(name),
		Items:        items,
		TotalPrice:   c.Total(),
	}, nil
}
