package kitchen

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"github.com/xenking/cafe-lumiere/internal/domain/order"
	"github.com/xenking/cafe-lumiere/internal/notify"
	"github.com/xenking/cafe-lumiere/internal/orderapi"
)

type advanceCall struct {
	number     string
	transition order.Transition
}

type mockSource struct {
	mu         sync.Mutex
	orders     []order.Order
	listErr    error
	advanceErr error
	lists      int
	advanced   []advanceCall
}

func (m *mockSource) KitchenOrders(context.Context) ([]order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lists++
	if m.listErr != nil {
		return nil, m.listErr
	}
	return append([]order.Order(nil), m.orders...), nil
}

func (m *mockSource) Advance(_ context.Context, number string, t order.Transition) (*order.Order, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.advanced = append(m.advanced, advanceCall{number, t})
	if m.advanceErr != nil {
		return nil, m.advanceErr
	}
	for i := range m.orders {
		if m.orders[i].Number == number {
			m.orders[i].Status = t.To()
			o := m.orders[i]
			return &o, nil
		}
	}
	return nil, &orderapi.StatusError{Op: "advance", Code: http.StatusNotFound, Text: "Not Found"}
}

func newBoard(t *testing.T, src Source) (*Board, *notify.Recorder) {
	t.Helper()
	rec := &notify.Recorder{}
	return New(src, Options{Notifier: rec, Logger: zaptest.NewLogger(t)}), rec
}

func counts(v View) []int {
	out := make([]int, len(v.Columns))
	for i, c := range v.Columns {
		out[i] = len(c.Cards)
	}
	return out
}

func TestRefresh_Groups(t *testing.T) {
	src := &mockSource{orders: []order.Order{
		{Number: "CL1", Status: order.StatusOrdered},
		{Number: "CL2", Status: order.StatusPreparing},
		{Number: "CL3", Status: order.StatusPreparing},
		{Number: "CL4", Status: order.StatusReady},
	}}
	b, _ := newBoard(t, src)

	require.NoError(t, b.Refresh(context.Background()))
	v := b.View()

	assert.True(t, v.Loaded)
	assert.Equal(t, []int{1, 2, 1}, counts(v))
	assert.Equal(t, "Start Preparing", v.Columns[0].Cards[0].ActionLabel())
	assert.Equal(t, "Mark Ready", v.Columns[1].Cards[0].ActionLabel())
	assert.Equal(t, "Serve Order", v.Columns[2].Cards[0].ActionLabel())
}

func TestRefresh_DropsServed(t *testing.T) {
	src := &mockSource{orders: []order.Order{
		{Number: "CL1", Status: order.StatusServed},
		{Number: "CL2", Status: order.StatusReady},
	}}
	b, _ := newBoard(t, src)

	require.NoError(t, b.Refresh(context.Background()))
	assert.Equal(t, []int{0, 0, 1}, counts(b.View()))
}

func TestRefresh_FailureKeepsView(t *testing.T) {
	src := &mockSource{orders: []order.Order{{Number: "CL1", Status: order.StatusOrdered}}}
	b, rec := newBoard(t, src)
	require.NoError(t, b.Refresh(context.Background()))
	before := b.View()

	src.listErr = errors.New("connection refused")
	require.Error(t, b.Refresh(context.Background()))

	assert.Equal(t, before, b.View())
	assert.Empty(t, rec.Messages(), "poll failures are not alerted")
}

func TestEmptyPlaceholders(t *testing.T) {
	b, _ := newBoard(t, &mockSource{})
	require.NoError(t, b.Refresh(context.Background()))

	var got []string
	for _, c := range b.View().Columns {
		require.True(t, c.Empty())
		got = append(got, c.Placeholder)
	}
	assert.Equal(t, []string{"No new orders", "Nothing preparing", "No orders ready"}, got)
}

func TestCommands(t *testing.T) {
	src := &mockSource{orders: []order.Order{{Number: "CL1", Status: order.StatusOrdered}}}
	b, rec := newBoard(t, src)
	ctx := context.Background()
	require.NoError(t, b.Refresh(ctx))

	require.NoError(t, b.StartPreparing(ctx, "CL1"))
	assert.Equal(t, []int{0, 1, 0}, counts(b.View()), "refreshed after command")

	require.NoError(t, b.MarkReady(ctx, "CL1"))
	require.NoError(t, b.Serve(ctx, "CL1"))
	assert.Equal(t, []int{0, 0, 0}, counts(b.View()))

	assert.Equal(t, []advanceCall{
		{"CL1", order.TransitionStart},
		{"CL1", order.TransitionReady},
		{"CL1", order.TransitionServe},
	}, src.advanced)
	assert.Equal(t, 4, src.lists)
	assert.Empty(t, rec.Messages())
}

func TestCommand_Rejected(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{
			name: "conflict",
			err:  &orderapi.StatusError{Op: "serve order", Code: http.StatusConflict, Text: "Conflict"},
			want: MsgUpdateRejected,
		},
		{
			name: "network",
			err:  &orderapi.TransportError{Op: "serve order", Err: errors.New("connection reset")},
			want: MsgUpdateFailed,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := &mockSource{orders: []order.Order{{Number: "CL1", Status: order.StatusReady}}}
			b, rec := newBoard(t, src)
			ctx := context.Background()
			require.NoError(t, b.Refresh(ctx))
			before := b.View()

			src.advanceErr = tt.err
			err := b.Serve(ctx, "CL1")
			require.ErrorIs(t, err, tt.err)

			assert.Equal(t, []string{tt.want}, rec.Messages())
			assert.Equal(t, before, b.View(), "no optimistic change")
			assert.Equal(t, 1, src.lists, "no refresh after failure")
		})
	}
}

func TestAct(t *testing.T) {
	src := &mockSource{orders: []order.Order{
		{Number: "CL1", Status: order.StatusPreparing},
	}}
	b, _ := newBoard(t, src)
	ctx := context.Background()
	require.NoError(t, b.Refresh(ctx))

	require.NoError(t, b.Act(ctx, "CL1"))
	assert.Equal(t, order.TransitionReady, src.advanced[0].transition)

	require.ErrorIs(t, b.Act(ctx, "CL9"), ErrNotOnBoard)
}
