package poll

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	tick    = 10 * time.Millisecond
	waitFor = 2 * time.Second
)

func TestNew_Validation(t *testing.T) {
	_, err := New("bad", 0, func(context.Context) error { return nil })
	require.Error(t, err)

	_, err = New("bad", time.Second, nil)
	require.Error(t, err)
}

func TestPoller_FirstTickIsImmediate(t *testing.T) {
	called := make(chan struct{}, 1)
	p, err := New("immediate", time.Hour, func(context.Context) error {
		select {
		case called <- struct{}{}:
		default:
		}
		return nil
	})
	require.NoError(t, err)

	h := p.Start(context.Background())
	defer h.Stop()

	select {
	case <-called:
	case <-time.After(waitFor):
		t.Fatal("first poll did not run immediately")
	}
}

func TestPoller_KeepsPollingAfterFailure(t *testing.T) {
	var (
		calls  atomic.Int32
		mu     sync.Mutex
		errs   []error
		failed = errors.New("connection refused")
	)
	p, err := New("flaky", tick, func(context.Context) error {
		if calls.Add(1) == 1 {
			return failed
		}
		return nil
	},
		WithLogger(zaptest.NewLogger(t)),
		WithOnError(func(err error) {
			mu.Lock()
			errs = append(errs, err)
			mu.Unlock()
		}),
	)
	require.NoError(t, err)

	h := p.Start(context.Background())
	defer h.Stop()

	require.Eventually(t, func() bool { return calls.Load() >= 3 }, waitFor, tick)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, errs, 1)
	assert.ErrorIs(t, errs[0], failed)
}

func TestPoller_ErrStopEndsLoop(t *testing.T) {
	var calls atomic.Int32
	onError := false
	p, err := New("terminal", tick, func(context.Context) error {
		if calls.Add(1) == 2 {
			return errors.Wrap(ErrStop, "served")
		}
		return nil
	}, WithOnError(func(error) { onError = true }))
	require.NoError(t, err)

	h := p.Start(context.Background())
	select {
	case <-h.Done():
	case <-time.After(waitFor):
		t.Fatal("poller did not stop")
	}

	time.Sleep(5 * tick)
	assert.Equal(t, int32(2), calls.Load(), "no polls after stop")
	assert.False(t, onError, "stop is not a failure")
}

func TestHandle_StopIsIdempotent(t *testing.T) {
	var calls atomic.Int32
	p, err := New("stoppable", tick, func(context.Context) error {
		calls.Add(1)
		return nil
	})
	require.NoError(t, err)

	h := p.Start(context.Background())
	require.Eventually(t, func() bool { return calls.Load() >= 1 }, waitFor, tick)

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			h.Stop()
		}()
	}
	wg.Wait()
	h.Stop()

	select {
	case <-h.Done():
	case <-time.After(waitFor):
		t.Fatal("poller did not stop")
	}
	n := calls.Load()
	time.Sleep(5 * tick)
	assert.Equal(t, n, calls.Load())

	var nilHandle *Handle
	assert.NotPanics(t, nilHandle.Stop)
}

func TestPoller_RunReturnsOnCancel(t *testing.T) {
	p, err := New("cancel", tick, func(context.Context) error { return nil })
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- p.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(waitFor):
		t.Fatal("Run did not return")
	}
}

func TestPoller_CancelledTickIsNotFailure(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var failures atomic.Int32
	p, err := New("inflight", tick, func(ctx context.Context) error {
		cancel()
		<-ctx.Done()
		return ctx.Err()
	}, WithOnError(func(error) { failures.Add(1) }))
	require.NoError(t, err)

	require.NoError(t, p.Run(ctx))
	assert.Zero(t, failures.Load())
}
