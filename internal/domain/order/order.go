package order

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// Order is a read-only snapshot of an order as reported by the order
// service. Clients never mutate it; every poll replaces it.
type Order struct {
	Number       string
	CustomerName string
	Items        []Item
	TotalPrice   decimal.Decimal
	Status       Status
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Item is a single line of a placed order.
type Item struct {
	Name     string
	Quantity int
}

// NewOrder is the submission body for placing an order.
type NewOrder struct {
	CustomerName string
	Items        []LineItem
	TotalPrice   decimal.Decimal
}

// LineItem is a cart line as submitted with a new order.
type LineItem struct {
	ID       int
	Name     string
	Price    decimal.Decimal
	Quantity int
}

// Subtotal returns price × quantity for the line.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Repository is the order source of truth as seen by the gateway. Status
// updates are unconditional; transition ordering is enforced by callers.
type Repository interface {
	List(ctx context.Context) ([]Order, error)
	Get(ctx context.Context, number string) (*Order, error)
	Create(ctx context.Context, req NewOrder) (*Order, error)
	SetStatus(ctx context.Context, number string, status Status) (*Order, error)
}
