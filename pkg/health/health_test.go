package health

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func passing() CheckFunc { return func(context.Context) error { return nil } }

func failing(msg string) CheckFunc {
	return func(context.Context) error { return errors.New(msg) }
}

type pingerFunc func(ctx context.Context) error

func (f pingerFunc) Ping(ctx context.Context) error { return f(ctx) }

type probeBody struct {
	Status string
	Checks map[string]string
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) probeBody {
	t.Helper()
	var b probeBody
	require.NoError(t, jx.DecodeBytes(w.Body.Bytes()).ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "status":
			s, err := d.Str()
			b.Status = s
			return err
		case "checks":
			b.Checks = map[string]string{}
			return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
				s, err := d.Str()
				b.Checks[string(key)] = s
				return err
			})
		default:
			return d.Skip()
		}
	}))
	return b
}

func probe(c *Checker, kind Kind) *probeState {
	return c.snapshot(kind)[0]
}

func TestLive(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]CheckFunc
		runs   int
		code   int
		failed []string
	}{
		{name: "no probes", code: http.StatusOK},
		{
			name:   "all passing",
			checks: map[string]CheckFunc{"a": passing(), "b": passing()},
			runs:   3,
			code:   http.StatusOK,
		},
		{
			name:   "below threshold",
			checks: map[string]CheckFunc{"goroutines": failing("too many")},
			runs:   2,
			code:   http.StatusOK,
		},
		{
			name:   "past threshold",
			checks: map[string]CheckFunc{"goroutines": failing("too many"), "ok": passing()},
			runs:   3,
			code:   http.StatusServiceUnavailable,
			failed: []string{"goroutines"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := New(nil)
			for name, fn := range tt.checks {
				c.Add(Probe{Name: name, Kind: Liveness, Check: fn})
			}
			for _, p := range c.snapshot(Liveness) {
				for range tt.runs {
					p.observe(context.Background())
				}
			}

			w := httptest.NewRecorder()
			c.Live(w, httptest.NewRequest(http.MethodGet, "/livez", nil))

			assert.Equal(t, tt.code, w.Code)
			assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
			body := decodeBody(t, w)
			if len(tt.failed) == 0 {
				assert.Equal(t, "ok", body.Status)
				assert.Empty(t, body.Checks)
				return
			}
			assert.Equal(t, "unhealthy", body.Status)
			for _, name := range tt.failed {
				assert.Contains(t, body.Checks, name)
			}
			assert.Len(t, body.Checks, len(tt.failed))
		})
	}
}

func TestReadyz_RequiresFlag(t *testing.T) {
	c := New(nil)
	c.Add(Probe{Name: "order-service", Kind: Readiness, Check: passing()})

	w := httptest.NewRecorder()
	c.Readyz(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "service is not ready", decodeBody(t, w).Checks["_readiness"])
	assert.False(t, c.Ready())

	c.SetReady(true)
	w = httptest.NewRecorder()
	c.Readyz(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, c.Ready())

	c.SetReady(false)
	assert.False(t, c.Ready())
}

func TestReadyz_UpstreamDown(t *testing.T) {
	var mu sync.Mutex
	down := true
	c := New(nil)
	c.SetReady(true)
	c.Add(Probe{
		Name: "order-service",
		Kind: Readiness,
		Check: Upstream("order service", pingerFunc(func(context.Context) error {
			mu.Lock()
			defer mu.Unlock()
			if down {
				return errors.New("connection refused")
			}
			return nil
		})),
	})
	p := probe(c, Readiness)
	for range 3 {
		p.observe(context.Background())
	}

	w := httptest.NewRecorder()
	c.Readyz(w, httptest.NewRequest(http.MethodGet, "/readyz", nil))
	require.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Equal(t, "order service unreachable: connection refused", decodeBody(t, w).Checks["order-service"])
	assert.False(t, c.Ready())

	mu.Lock()
	down = false
	mu.Unlock()
	assert.True(t, p.observe(context.Background()), "one pass recovers")
	assert.True(t, c.Ready())
	assert.NoError(t, p.err())
}

func TestProbe_Thresholds(t *testing.T) {
	calls := 0
	c := New(nil)
	c.Add(Probe{
		Name:             "flaky",
		Kind:             Readiness,
		SuccessThreshold: 2,
		FailureThreshold: 1,
		Check: func(context.Context) error {
			calls++
			if calls == 1 {
				return errors.New("down")
			}
			return nil
		},
	})
	p := probe(c, Readiness)

	assert.True(t, p.observe(context.Background()))
	assert.False(t, p.healthy.Load())
	assert.False(t, p.observe(context.Background()), "one success is not enough")
	assert.True(t, p.observe(context.Background()))
	assert.True(t, p.healthy.Load())
}

func TestProbe_Timeout(t *testing.T) {
	c := New(nil)
	c.Add(Probe{
		Name:             "slow",
		Kind:             Readiness,
		Timeout:          10 * time.Millisecond,
		FailureThreshold: 1,
		Check: func(ctx context.Context) error {
			<-ctx.Done()
			return ctx.Err()
		},
	})
	p := probe(c, Readiness)
	p.observe(context.Background())
	assert.ErrorIs(t, p.err(), context.DeadlineExceeded)
	assert.False(t, p.healthy.Load())
}

func TestChecker_StartLogsTransitions(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	c := New(zap.New(core))
	c.Add(Probe{Name: "down", Kind: Liveness, FailureThreshold: 1, Check: failing("boom")})

	c.Start(context.Background(), 10*time.Millisecond)
	defer c.Stop()

	require.Eventually(t, func() bool {
		return logs.FilterMessage("Probe unhealthy").Len() == 1
	}, 2*time.Second, 10*time.Millisecond)

	entry := logs.FilterMessage("Probe unhealthy").All()[0]
	assert.Equal(t, "down", entry.ContextMap()["probe"])
	assert.Equal(t, "liveness", entry.ContextMap()["kind"])

	c.Stop()
	c.Stop()
}

func TestChecker_ConcurrentAccess(t *testing.T) {
	c := New(nil)
	c.SetReady(true)
	c.Add(Probe{Name: "a", Kind: Readiness, Check: passing()})
	c.Add(Probe{Name: "b", Kind: Liveness, Check: passing()})
	c.Start(context.Background(), time.Millisecond)
	defer c.Stop()

	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 50 {
				_ = c.Ready()
				c.Live(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/livez", nil))
				c.Readyz(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/readyz", nil))
			}
		}()
	}
	wg.Wait()
}

func TestGoroutineCount(t *testing.T) {
	assert.NoError(t, GoroutineCount(100000)(context.Background()))
	assert.Error(t, GoroutineCount(0)(context.Background()))
}
