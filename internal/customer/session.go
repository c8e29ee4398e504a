// Package customer is the view-model behind the ordering screen: cart,
// submission and live status tracking of the placed order.
package customer

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/cafe-lumiere/internal/domain/cart"
	"github.com/xenking/cafe-lumiere/internal/domain/menu"
	"github.com/xenking/cafe-lumiere/internal/domain/order"
	"github.com/xenking/cafe-lumiere/internal/notify"
	"github.com/xenking/cafe-lumiere/internal/orderapi"
	"github.com/xenking/cafe-lumiere/internal/poll"
)

// DefaultInterval is how often a placed order's status is checked.
const DefaultInterval = 3 * time.Second

// Messages shown to the customer.
const (
	MsgNameRequired  = "Please enter your name"
	MsgCartEmpty     = "Please add items to your cart"
	MsgOrderRejected = "Failed to place order. Please try again."
	MsgOrderFailed   = "Error placing order. Please try again."
)

// API is the slice of the order API a session needs.
type API interface {
	PlaceOrder(ctx context.Context, req order.NewOrder) (*order.Order, error)
	GetOrder(ctx context.Context, number string) (*order.Order, error)
}

// Options configures a Session.
type Options struct {
	// Interval between status checks. Zero means DefaultInterval.
	Interval time.Duration
	Notifier notify.Notifier
	Logger   *zap.Logger
	// OnUpdate is called whenever the view may have changed.
	OnUpdate func()

	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
}

// Stage is which screen the session is on.
type Stage int

const (
	// StageOrdering is the menu and cart.
	StageOrdering Stage = iota
	// StageConfirmation tracks a placed order.
	StageConfirmation
)

// Step is one status indicator on the confirmation screen.
type Step struct {
	Status order.Status
	Label  string
	Active bool
}

// View is what the ordering screen displays.
type View struct {
	Stage Stage
	Lines []cart.Line
	Total decimal.Decimal
	// Badges maps menu item id to its quantity in the cart.
	Badges map[int]int
	// Order is the tracked order on the confirmation stage.
	Order   *order.Order
	Steps   []Step
	Polling bool
}

// Session is one customer's ordering flow. All methods are safe for
// concurrent use.
type Session struct {
	api      API
	notifier notify.Notifier
	lg       *zap.Logger
	onUpdate func()
	interval time.Duration
	pollOpts []poll.Option

	mu      sync.Mutex
	cart    *cart.Cart
	current *order.Order
	handle  *poll.Handle
}

// New creates a session with an empty cart.
func New(api API, opts Options) *Session {
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Notifier == nil {
		opts.Notifier = notify.Discard
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	return &Session{
		api:      api,
		notifier: opts.Notifier,
		lg:       opts.Logger,
		onUpdate: opts.OnUpdate,
		interval: opts.Interval,
		pollOpts: []poll.Option{
			poll.WithLogger(opts.Logger),
			poll.WithTracerProvider(opts.TracerProvider),
			poll.WithMeterProvider(opts.MeterProvider),
		},
		cart: cart.New(),
	}
}

func (s *Session) updated() {
	if s.onUpdate != nil {
		s.onUpdate()
	}
}

// AddItem puts one more unit of it in the cart.
func (s *Session) AddItem(it menu.Item) { s.AddItems(it, 1) }

// AddItems puts qty units of it in the cart with a single update. A
// non-positive qty does nothing.
func (s *Session) AddItems(it menu.Item, qty int) {
	if qty < 1 {
		return
	}
	s.mu.Lock()
	for range qty {
		s.cart.AddItem(it.ID, it.Name, it.Price)
	}
	s.mu.Unlock()
	s.updated()
}

// RemoveItem drops the item's line from the cart.
func (s *Session) RemoveItem(id int) {
	s.mu.Lock()
	s.cart.RemoveItem(id)
	s.mu.Unlock()
	s.updated()
}

// PlaceOrder submits the cart for name. Validation failures are reported to
// the notifier without a request. On success the cart is cleared and the
// order's status is polled until it is served, NewOrder is called or ctx is
// done.
func (s *Session) PlaceOrder(ctx context.Context, name string) (*order.Order, error) {
	s.mu.Lock()
	req, err := cart.NewOrderRequest(name, s.cart)
	s.mu.Unlock()
	switch {
	case errors.Is(err, cart.ErrNameRequired):
		s.notifier.Notify(MsgNameRequired)
		return nil, err
	case errors.Is(err, cart.ErrCartEmpty):
		s.notifier.Notify(MsgCartEmpty)
		return nil, err
	case err != nil:
		return nil, err
	}

	placed, err := s.api.PlaceOrder(ctx, req)
	if err != nil {
		var se *orderapi.StatusError
		if errors.As(err, &se) {
			s.notifier.Notify(MsgOrderRejected)
		} else {
			s.notifier.Notify(MsgOrderFailed)
		}
		s.lg.Warn("Place order failed", zap.Error(err))
		return nil, errors.Wrap(err, "place order")
	}
	s.lg.Info("Order placed",
		zap.String("order_number", placed.Number),
		zap.Stringer("status", placed.Status),
	)

	p, err := poll.New("order-status", s.interval, s.CheckStatus, s.pollOpts...)
	if err != nil {
		return nil, errors.Wrap(err, "status poller")
	}

	snapshot := *placed
	s.mu.Lock()
	s.handle.Stop()
	s.current = &snapshot
	s.cart.Clear()
	s.handle = p.Start(ctx)
	s.mu.Unlock()

	s.updated()
	return placed, nil
}

// CheckStatus fetches the tracked order and replaces the local snapshot with
// the server's. It returns poll.ErrStop once the order is served or no
// longer tracked. Fetch errors leave the snapshot untouched.
func (s *Session) CheckStatus(ctx context.Context) error {
	s.mu.Lock()
	cur := s.current
	s.mu.Unlock()
	if cur == nil {
		return poll.ErrStop
	}
	number := cur.Number

	o, err := s.api.GetOrder(ctx, number)
	if err != nil {
		return errors.Wrapf(err, "check status of %s", number)
	}

	s.mu.Lock()
	if s.current == nil || s.current.Number != number {
		s.mu.Unlock()
		return poll.ErrStop
	}
	s.current = o
	s.mu.Unlock()
	s.updated()

	if o.Status.Terminal() {
		s.lg.Info("Order served", zap.String("order_number", number))
		return poll.ErrStop
	}
	return nil
}

// NewOrder stops tracking the current order and returns to an empty cart.
func (s *Session) NewOrder() {
	s.mu.Lock()
	s.handle.Stop()
	s.handle = nil
	s.current = nil
	s.cart.Clear()
	s.mu.Unlock()
	s.updated()
}

var closed = func() chan struct{} {
	c := make(chan struct{})
	close(c)
	return c
}()

// Done is closed when the status poll for the current order has ended. With
// no order tracked it is already closed.
func (s *Session) Done() <-chan struct{} {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.handle == nil {
		return closed
	}
	return s.handle.Done()
}

// View returns the current screen state.
func (s *Session) View() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := View{
		Stage:  StageOrdering,
		Lines:  s.cart.Lines(),
		Total:  s.cart.Total(),
		Badges: make(map[int]int, s.cart.Len()),
	}
	for _, l := range v.Lines {
		v.Badges[l.ID] = l.Quantity
	}

	var reached []order.Status
	if s.current != nil {
		o := *s.current
		v.Stage = StageConfirmation
		v.Order = &o
		reached = order.Progress(o.Status)
	}
	for _, st := range order.Statuses() {
		v.Steps = append(v.Steps, Step{
			Status: st,
			Label:  st.Label(),
			Active: len(reached) > st.Index(),
		})
	}
	if s.handle != nil {
		select {
		case <-s.handle.Done():
		default:
			v.Polling = true
		}
	}
	return v
}
