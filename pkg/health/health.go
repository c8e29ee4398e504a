// Package health serves the gateway's liveness and readiness probes.
//
// Every registered probe runs on its own ticker. A probe turns unhealthy
// after FailureThreshold consecutive failures and healthy again after
// SuccessThreshold consecutive passes, so a single slow upstream call does
// not flap readiness.
package health

import (
	"context"
	"net/http"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/go-faster/jx"
	"go.uber.org/zap"
)

// CheckFunc returns nil when the probed component is usable.
type CheckFunc func(ctx context.Context) error

// Kind selects the endpoint a probe contributes to.
type Kind int

const (
	Liveness Kind = iota
	Readiness
)

func (k Kind) String() string {
	if k == Liveness {
		return "liveness"
	}
	return "readiness"
}

// Probe describes a registered check.
type Probe struct {
	Name    string
	Kind    Kind
	Timeout time.Duration
	Check   CheckFunc

	// Zero means 3.
	FailureThreshold int
	// Zero means 1.
	SuccessThreshold int
}

type probeState struct {
	Probe

	healthy atomic.Bool
	lastErr atomic.Pointer[error]

	// Owned by the probe's goroutine.
	fails int
	oks   int
}

func (p *probeState) err() error {
	if e := p.lastErr.Load(); e != nil {
		return *e
	}
	return nil
}

// observe runs the check once. It reports whether health flipped.
func (p *probeState) observe(ctx context.Context) (changed bool) {
	ctx, cancel := context.WithTimeout(ctx, p.Timeout)
	defer cancel()

	err := p.Check(ctx)
	p.lastErr.Store(&err)

	was := p.healthy.Load()
	if err != nil {
		p.oks = 0
		p.fails++
		if p.fails >= p.FailureThreshold {
			p.healthy.Store(false)
		}
	} else {
		p.fails = 0
		p.oks++
		if p.oks >= p.SuccessThreshold {
			p.healthy.Store(true)
		}
	}
	return was != p.healthy.Load()
}

// Checker holds the probes and the manual ready flag.
type Checker struct {
	lg    *zap.Logger
	ready atomic.Bool

	mu     sync.RWMutex
	probes []*probeState
	cancel context.CancelFunc
}

// New creates a Checker that is not ready until SetReady(true).
func New(lg *zap.Logger) *Checker {
	if lg == nil {
		lg = zap.NewNop()
	}
	return &Checker{lg: lg}
}

// Add registers a probe. Probes start healthy.
func (c *Checker) Add(p Probe) {
	if p.FailureThreshold <= 0 {
		p.FailureThreshold = 3
	}
	if p.SuccessThreshold <= 0 {
		p.SuccessThreshold = 1
	}
	if p.Timeout <= 0 {
		p.Timeout = time.Second
	}
	s := &probeState{Probe: p}
	s.healthy.Store(true)

	c.mu.Lock()
	c.probes = append(c.probes, s)
	c.mu.Unlock()
}

func (c *Checker) snapshot(kind Kind) []*probeState {
	c.mu.RLock()
	defer c.mu.RUnlock()
	var out []*probeState
	for _, p := range c.probes {
		if p.Kind == kind {
			out = append(out, p)
		}
	}
	return out
}

// Start runs every probe in the background until Stop or ctx is done.
func (c *Checker) Start(ctx context.Context, interval time.Duration) {
	ctx, cancel := context.WithCancel(ctx)

	c.mu.Lock()
	c.cancel = cancel
	probes := append([]*probeState(nil), c.probes...)
	c.mu.Unlock()

	for _, p := range probes {
		go c.loop(ctx, p, interval)
	}
}

func (c *Checker) loop(ctx context.Context, p *probeState, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		if p.observe(ctx) {
			c.report(p)
		}
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (c *Checker) report(p *probeState) {
	fields := []zap.Field{
		zap.String("probe", p.Name),
		zap.Stringer("kind", p.Kind),
	}
	if p.healthy.Load() {
		c.lg.Info("Probe recovered", fields...)
		return
	}
	c.lg.Warn("Probe unhealthy", append(fields, zap.Error(p.err()))...)
}

// Stop cancels the probe goroutines. Safe to call more than once.
func (c *Checker) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
}

// SetReady flips the manual readiness flag. The gateway clears it on
// shutdown so load balancers drain it first.
func (c *Checker) SetReady(ready bool) { c.ready.Store(ready) }

// Ready reports whether the flag is set and every readiness probe passes.
func (c *Checker) Ready() bool {
	if !c.ready.Load() {
		return false
	}
	for _, p := range c.snapshot(Readiness) {
		if !p.healthy.Load() {
			return false
		}
	}
	return true
}

// Live serves /livez.
func (c *Checker) Live(w http.ResponseWriter, _ *http.Request) {
	writeStatus(w, failures(c.snapshot(Liveness)))
}

// Readyz serves /readyz.
func (c *Checker) Readyz(w http.ResponseWriter, _ *http.Request) {
	f := failures(c.snapshot(Readiness))
	if !c.ready.Load() {
		f["_readiness"] = "service is not ready"
	}
	writeStatus(w, f)
}

func failures(probes []*probeState) map[string]string {
	out := make(map[string]string)
	for _, p := range probes {
		if p.healthy.Load() {
			continue
		}
		if err := p.err(); err != nil {
			out[p.Name] = err.Error()
		} else {
			out[p.Name] = "check is unhealthy"
		}
	}
	return out
}

func writeStatus(w http.ResponseWriter, failed map[string]string) {
	var e jx.Encoder
	e.ObjStart()
	code := http.StatusOK
	if len(failed) == 0 {
		e.FieldStart("status")
		e.Str("ok")
	} else {
		code = http.StatusServiceUnavailable
		e.FieldStart("status")
		e.Str("unhealthy")
		e.FieldStart("checks")
		e.ObjStart()
		names := make([]string, 0, len(failed))
		for n := range failed {
			names = append(names, n)
		}
		sort.Strings(names)
		for _, n := range names {
			e.FieldStart(n)
			e.Str(failed[n])
		}
		e.ObjEnd()
	}
	e.ObjEnd()

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, _ = w.Write(e.Bytes())
}
