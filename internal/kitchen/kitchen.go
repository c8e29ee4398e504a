// Package kitchen is the view-model behind the kitchen board: active orders
// grouped by status, each with the one command that advances it.
package kitchen

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"go.uber.org/zap"

	"github.com/xenking/cafe-lumiere/internal/board"
	"github.com/xenking/cafe-lumiere/internal/domain/order"
	"github.com/xenking/cafe-lumiere/internal/notify"
	"github.com/xenking/cafe-lumiere/internal/orderapi"
)

// DefaultInterval is how often the kitchen board refreshes.
const DefaultInterval = 5 * time.Second

// Messages shown when a command fails.
const (
	MsgUpdateRejected = "Failed to update order status"
	MsgUpdateFailed   = "Error updating order"
)

// ErrNotOnBoard is returned when a command names an order the board does not
// currently show.
var ErrNotOnBoard = errors.New("order not on board")

// Lanes are the kitchen columns, left to right.
var Lanes = []board.Lane{
	{Status: order.StatusOrdered, Title: "New Orders", Placeholder: "No new orders", Actions: true},
	{Status: order.StatusPreparing, Title: "Preparing", Placeholder: "Nothing preparing", Actions: true},
	{Status: order.StatusReady, Title: "Ready", Placeholder: "No orders ready", Actions: true},
}

// Source is the slice of the order API the kitchen board needs.
type Source interface {
	KitchenOrders(ctx context.Context) ([]order.Order, error)
	Advance(ctx context.Context, number string, t order.Transition) (*order.Order, error)
}

// Options configures a Board.
type Options struct {
	Notifier notify.Notifier
	Logger   *zap.Logger
	// OnUpdate is called after every successful refresh.
	OnUpdate func()
}

// View is what the kitchen board displays.
type View struct {
	Columns []board.Column
	// Loaded is false until the first successful refresh.
	Loaded    bool
	UpdatedAt time.Time
}

// Board holds the last server-reported kitchen orders.
type Board struct {
	src      Source
	notifier notify.Notifier
	lg       *zap.Logger
	onUpdate func()
	now      func() time.Time

	mu      sync.Mutex
	orders  []order.Order
	loaded  bool
	updated time.Time
}

// New creates a kitchen board.
func New(src Source, opts Options) *Board {
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Board{
		src:      src,
		notifier: opts.Notifier,
		lg:       opts.Logger,
		onUpdate: opts.OnUpdate,
		now:      time.Now,
	}
}

// Refresh replaces the board with the server's active orders. On failure the
// previous orders stay on screen and the error is returned.
func (b *Board) Refresh(ctx context.Context) error {
	orders, err := b.src.KitchenOrders(ctx)
	if err != nil {
		return errors.Wrap(err, "refresh kitchen")
	}
	orders = order.Filter(orders, order.KitchenStatuses()...)

	b.mu.Lock()
	b.orders = orders
	b.loaded = true
	b.updated = b.now()
	b.mu.Unlock()

	if b.onUpdate != nil {
		b.onUpdate()
	}
	return nil
}

// StartPreparing moves an ordered order to preparing.
func (b *Board) StartPreparing(ctx context.Context, number string) error {
	return b.command(ctx, number, order.TransitionStart)
}

// MarkReady moves a preparing order to ready.
func (b *Board) MarkReady(ctx context.Context, number string) error {
	return b.command(ctx, number, order.TransitionReady)
}

// Serve moves a ready order to served, taking it off the board.
func (b *Board) Serve(ctx context.Context, number string) error {
	return b.command(ctx, number, order.TransitionServe)
}

// Act issues the command shown on the order's card.
func (b *Board) Act(ctx context.Context, number string) error {
	card, ok := board.Find(b.View().Columns, number)
	if !ok || card.Action == "" {
		return errors.Wrap(ErrNotOnBoard, number)
	}
	return b.command(ctx, number, card.Action)
}

// command sends t for the order. The board is not changed locally: a success
// triggers a refresh, a failure notifies and leaves the board as it was.
func (b *Board) command(ctx context.Context, number string, t order.Transition) error {
	lg := b.lg.With(zap.String("order_number", number), zap.Stringer("transition", t))
	if _, err := b.src.Advance(ctx, number, t); err != nil {
		var se *orderapi.StatusError
		if errors.As(err, &se) {
			b.notifier.Notify(MsgUpdateRejected)
		} else {
			b.notifier.Notify(MsgUpdateFailed)
		}
		lg.Warn("Command failed", zap.Error(err))
		return errors.Wrapf(err, "%s %s", t, number)
	}
	lg.Info("Command applied")

	if err := b.Refresh(ctx); err != nil {
		lg.Warn("Refresh after command failed", zap.Error(err))
	}
	return nil
}

// View returns the columns for the current orders.
func (b *Board) View() View {
	b.mu.Lock()
	defer b.mu.Unlock()
	return View{
		Columns:   board.Columns(b.orders, Lanes),
		Loaded:    b.loaded,
		UpdatedAt: b.updated,
	}
}
