package order

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-faster/errors"
)

// Sentinel errors for order placement and lookup.
var (
	ErrNotFound     = errors.New("order not found")
	ErrInvalidOrder = errors.New("customer name and items are required")
)

// InvalidQuantityError indicates a submitted line with quantity below 1.
type InvalidQuantityError struct {
	Name     string
	Quantity int
}

func (e *InvalidQuantityError) Error() string {
	return fmt.Sprintf("quantity must be at least 1 for %q (got %d)", e.Name, e.Quantity)
}

// Service is the gateway's view of the order lifecycle: it filters orders
// for the kitchen and display boards and turns transition commands into
// status updates, refusing commands that do not match the current status.
type Service struct {
	orders Repository
}

// NewService creates an order Service backed by the order source of truth.
func NewService(orders Repository) *Service {
	return &Service{orders: orders}
}

// List returns every order.
func (s *Service) List(ctx context.Context) ([]Order, error) {
	orders, err := s.orders.List(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "list orders")
	}
	return orders, nil
}

// Get returns a single order.
func (s *Service) Get(ctx context.Context, number string) (*Order, error) {
	o, err := s.orders.Get(ctx, number)
	if err != nil {
		return nil, errors.Wrapf(err, "get order %s", number)
	}
	return o, nil
}

// Kitchen returns orders the kitchen still has to act on.
func (s *Service) Kitchen(ctx context.Context) ([]Order, error) {
	orders, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(orders, KitchenStatuses()...), nil
}

// Display returns orders shown on the pickup board.
func (s *Service) Display(ctx context.Context) ([]Order, error) {
	orders, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return Filter(orders, DisplayStatuses()...), nil
}

// Place validates a submission and creates the order.
func (s *Service) Place(ctx context.Context, req NewOrder) (*Order, error) {
	req.CustomerName = strings.TrimSpace(req.CustomerName)
	if req.CustomerName == "" || len(req.Items) == 0 {
		return nil, ErrInvalidOrder
	}
	for _, li := range req.Items {
		if li.Quantity < 1 {
			return nil, &InvalidQuantityError{Name: li.Name, Quantity: li.Quantity}
		}
	}
	o, err := s.orders.Create(ctx, req)
	if err != nil {
		return nil, errors.Wrap(err, "create order")
	}
	return o, nil
}

// Advance applies transition t to the order. It returns a *TransitionError
// when the order is not in t's source status, so a repeated or out-of-order
// command never skips or rewinds a status.
func (s *Service) Advance(ctx context.Context, number string, t Transition) (*Order, error) {
	if !t.Valid() {
		return nil, errors.Wrap(ErrUnknownTransition, string(t))
	}
	cur, err := s.Get(ctx, number)
	if err != nil {
		return nil, err
	}
	if err := t.Check(cur.Status); err != nil {
		return nil, err
	}
	o, err := s.orders.SetStatus(ctx, number, t.To())
	if err != nil {
		return nil, errors.Wrapf(err, "%s order %s", t, number)
	}
	return o, nil
}
