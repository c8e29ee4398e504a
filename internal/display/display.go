// Package display is the view-model behind the customer-facing pickup
// board.
package display

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-faster/errors"

	"github.com/xenking/cafe-lumiere/internal/board"
	"github.com/xenking/cafe-lumiere/internal/domain/order"
	"github.com/xenking/cafe-lumiere/internal/orderapi"
)

// DefaultInterval is how often the display board refreshes.
const DefaultInterval = 3 * time.Second

// MsgConnection is the banner shown when the orders could not be fetched
// or read.
const MsgConnection = "Connection error: Unable to load orders"

var (
	// ReadyLane lists orders waiting for pickup.
	ReadyLane = board.Lane{Status: order.StatusReady, Title: "Ready for Pickup", Placeholder: "No orders ready"}
	// PreparingLane lists orders the kitchen is working on.
	PreparingLane = board.Lane{Status: order.StatusPreparing, Title: "Now Preparing", Placeholder: "No orders being prepared"}
)

// Source is the slice of the order API the display board needs.
type Source interface {
	DisplayOrders(ctx context.Context) ([]order.Order, error)
}

// View is what the display board shows.
type View struct {
	Ready     board.Column
	Preparing board.Column
	// Banner is the last refresh error, empty once a refresh succeeds.
	Banner    string
	Loaded    bool
	UpdatedAt time.Time
}

// Board holds the last server-reported display orders.
type Board struct {
	src      Source
	onUpdate func()
	now      func() time.Time

	mu      sync.Mutex
	orders  []order.Order
	banner  string
	loaded  bool
	updated time.Time
}

// New creates a display board. onUpdate, if not nil, runs after every
// refresh attempt.
func New(src Source, onUpdate func()) *Board {
	return &Board{src: src, onUpdate: onUpdate, now: time.Now}
}

// Refresh replaces the board with the server's orders and clears the
// banner. On failure the previous orders stay and the banner explains why.
func (b *Board) Refresh(ctx context.Context) error {
	orders, err := b.src.DisplayOrders(ctx)

	b.mu.Lock()
	if err != nil {
		b.banner = Banner(err)
	} else {
		b.orders = orders
		b.banner = ""
		b.loaded = true
		b.updated = b.now()
	}
	b.mu.Unlock()

	if b.onUpdate != nil {
		b.onUpdate()
	}
	if err != nil {
		return errors.Wrap(err, "refresh display")
	}
	return nil
}

// Banner returns the banner text for a refresh error.
func Banner(err error) string {
	var se *orderapi.StatusError
	if errors.As(err, &se) {
		return fmt.Sprintf("Error: %d %s", se.Code, se.Text)
	}
	return MsgConnection
}

// View returns the ready and preparing columns.
func (b *Board) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	cols := board.Columns(b.orders, []board.Lane{ReadyLane, PreparingLane})
	return View{
		Ready:     cols[0],
		Preparing: cols[1],
		Banner:    b.banner,
		Loaded:    b.loaded,
		UpdatedAt: b.updated,
	}
}
