package customer

import (
	"context"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xenking/cafe-lumiere/internal/domain/cart"
	"github.com/xenking/cafe-lumiere/internal/domain/menu"
	"github.com/xenking/cafe-lumiere/internal/domain/order"
	"github.com/xenking/cafe-lumiere/internal/notify"
	"github.com/xenking/cafe-lumiere/internal/orderapi"
)

const (
	interval = 10 * time.Millisecond
	waitFor  = 2 * time.Second
)

var (
	espresso  = menu.Item{ID: 1, Name: "Espresso", Price: decimal.RequireFromString("3.50"), Category: menu.CategoryCoffee}
	americano = menu.Item{ID: 4, Name: "Americano", Price: decimal.RequireFromString("2.00"), Category: menu.CategoryCoffee}
)

// mockAPI serves statuses from a script: the n-th GetOrder returns
// statuses[n], repeating the last one.
type mockAPI struct {
	mu       sync.Mutex
	placeErr error
	getErr   error
	statuses []order.Status
	placed   []order.NewOrder
	gets     atomic.Int32
}

func (m *mockAPI) PlaceOrder(_ context.Context, req order.NewOrder) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.placed = append(m.placed, req)
	if m.placeErr != nil {
		return nil, m.placeErr
	}
	return &order.Order{
		Number:       "CL20240102150405",
		CustomerName: req.CustomerName,
		TotalPrice:   req.TotalPrice,
		Status:       order.StatusOrdered,
	}, nil
}

func (m *mockAPI) GetOrder(_ context.Context, number string) (*order.Order, error) {
	n := int(m.gets.Add(1)) - 1
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return nil, m.getErr
	}
	if n >= len(m.statuses) {
		n = len(m.statuses) - 1
	}
	return &order.Order{Number: number, Status: m.statuses[n]}, nil
}

func newSession(t *testing.T, api API) (*Session, *notify.Recorder) {
	t.Helper()
	rec := &notify.Recorder{}
	s := New(api, Options{
		Interval: interval,
		Notifier: rec,
		Logger:   zaptest.NewLogger(t),
	})
	t.Cleanup(s.NewOrder)
	return s, rec
}

func waitDone(t *testing.T, s *Session) {
	t.Helper()
	select {
	case <-s.Done():
	case <-time.After(waitFor):
		t.Fatal("status poll did not stop")
	}
}

func TestCartView(t *testing.T) {
	s, _ := newSession(t, &mockAPI{})

	s.AddItem(espresso)
	s.AddItem(espresso)
	s.AddItem(americano)

	v := s.View()
	assert.Equal(t, StageOrdering, v.Stage)
	assert.Equal(t, "9.00", v.Total.StringFixed(2))
	assert.Equal(t, map[int]int{1: 2, 4: 1}, v.Badges)
	assert.False(t, v.Polling)

	s.RemoveItem(1)
	s.RemoveItem(99)
	v = s.View()
	assert.Equal(t, map[int]int{4: 1}, v.Badges)
	assert.Equal(t, "2.00", v.Total.StringFixed(2))
}

func TestAddItems_SingleUpdate(t *testing.T) {
	updates := 0
	s := New(&mockAPI{}, Options{Interval: interval, OnUpdate: func() { updates++ }})
	t.Cleanup(s.NewOrder)

	s.AddItems(espresso, 3)
	assert.Equal(t, 1, updates)
	assert.Equal(t, map[int]int{1: 3}, s.View().Badges)
	assert.Equal(t, "10.50", s.View().Total.StringFixed(2))

	s.AddItems(espresso, 0)
	s.AddItems(espresso, -2)
	assert.Equal(t, 1, updates)
	assert.Equal(t, map[int]int{1: 3}, s.View().Badges)
}

func TestPlaceOrder_Validation(t *testing.T) {
	tests := []struct {
		name    string
		custom  string
		items   []menu.Item
		wantErr error
		wantMsg string
	}{
		{name: "no name", custom: " ", items: []menu.Item{espresso}, wantErr: cart.ErrNameRequired, wantMsg: MsgNameRequired},
		{name: "empty cart", custom: "Amélie", wantErr: cart.ErrCartEmpty, wantMsg: MsgCartEmpty},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			api := &mockAPI{}
			s, rec := newSession(t, api)
			for _, it := range tt.items {
				s.AddItem(it)
			}

			_, err := s.PlaceOrder(context.Background(), tt.custom)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, []string{tt.wantMsg}, rec.Messages())
			assert.Empty(t, api.placed, "no request sent")
		})
	}
}

func TestPlaceOrder_Failure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "rejected", err: &orderapi.StatusError{Code: http.StatusBadRequest, Text: "Bad Request"}, want: MsgOrderRejected},
		{name: "unreachable", err: &orderapi.TransportError{Op: "place order", Err: errors.New("refused")}, want: MsgOrderFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, rec := newSession(t, &mockAPI{placeErr: tt.err})
			s.AddItem(espresso)

			_, err := s.PlaceOrder(context.Background(), "Amélie")
			require.Error(t, err)
			assert.Equal(t, []string{tt.want}, rec.Messages())

			v := s.View()
			assert.Equal(t, StageOrdering, v.Stage)
			assert.Equal(t, 1, v.Badges[1], "cart kept for retry")
		})
	}
}

func TestPlaceOrder_PollsUntilServed(t *testing.T) {
	api := &mockAPI{statuses: []order.Status{
		order.StatusOrdered, order.StatusPreparing, order.StatusReady, order.StatusServed,
	}}
	s, rec := newSession(t, api)
	s.AddItem(espresso)
	s.AddItem(espresso)
	s.AddItem(americano)

	placed, err := s.PlaceOrder(context.Background(), "  Amélie ")
	require.NoError(t, err)
	assert.Equal(t, order.StatusOrdered, placed.Status)

	require.Len(t, api.placed, 1)
	assert.Equal(t, "Amélie", api.placed[0].CustomerName)
	assert.Equal(t, "9.00", api.placed[0].TotalPrice.StringFixed(2))

	waitDone(t, s)
	gets := api.gets.Load()
	assert.Equal(t, int32(4), gets)

	time.Sleep(5 * interval)
	assert.Equal(t, gets, api.gets.Load(), "no status requests after served")

	v := s.View()
	assert.Equal(t, StageConfirmation, v.Stage)
	require.NotNil(t, v.Order)
	assert.Equal(t, order.StatusServed, v.Order.Status)
	assert.False(t, v.Polling)
	assert.Empty(t, v.Lines, "cart cleared after placing")
	for _, st := range v.Steps {
		assert.True(t, st.Active, st.Status)
	}
	assert.Empty(t, rec.Messages())
}

func TestCheckStatus_ErrorKeepsSnapshot(t *testing.T) {
	api := &mockAPI{statuses: []order.Status{order.StatusPreparing}}
	s, _ := newSession(t, api)
	s.AddItem(espresso)

	_, err := s.PlaceOrder(context.Background(), "Léa")
	require.NoError(t, err)
	require.Eventually(t, func() bool {
		return s.View().Order.Status == order.StatusPreparing
	}, waitFor, interval)

	api.mu.Lock()
	api.getErr = errors.New("connection refused")
	api.mu.Unlock()
	before := api.gets.Load()
	require.Eventually(t, func() bool { return api.gets.Load() >= before+2 }, waitFor, interval,
		"poll keeps firing after errors")

	v := s.View()
	assert.Equal(t, order.StatusPreparing, v.Order.Status)
	assert.True(t, v.Polling)

	var active []order.Status
	for _, st := range v.Steps {
		if st.Active {
			active = append(active, st.Status)
		}
	}
	assert.Equal(t, []order.Status{order.StatusOrdered, order.StatusPreparing}, active)
}

func TestNewOrder_StopsPoll(t *testing.T) {
	api := &mockAPI{statuses: []order.Status{order.StatusOrdered}}
	s, _ := newSession(t, api)
	s.AddItem(espresso)

	_, err := s.PlaceOrder(context.Background(), "Jules")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return api.gets.Load() >= 1 }, waitFor, interval)
	done := s.Done()

	s.NewOrder()
	s.NewOrder()

	select {
	case <-done:
	case <-time.After(waitFor):
		t.Fatal("status poll did not stop")
	}
	n := api.gets.Load()
	time.Sleep(5 * interval)
	assert.Equal(t, n, api.gets.Load())

	v := s.View()
	assert.Equal(t, StageOrdering, v.Stage)
	assert.Nil(t, v.Order)
	assert.Empty(t, v.Lines)
	for _, st := range v.Steps {
		assert.False(t, st.Active)
	}
}

func TestCheckStatus_Untracked(t *testing.T) {
	s, _ := newSession(t, &mockAPI{})
	require.Error(t, s.CheckStatus(context.Background()))
	select {
	case <-s.Done():
	default:
		t.Fatal("Done must be closed without a tracked order")
	}
}
