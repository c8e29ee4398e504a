// Package poll runs a function on a fixed interval until stopped.
package poll

import (
	"context"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	metricnoop "go.opentelemetry.io/otel/metric/noop"
	"go.opentelemetry.io/otel/trace"
	tracenoop "go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

// ErrStop, returned from a poll function, ends the loop without being
// reported as a failure.
var ErrStop = errors.New("poll: stop")

// Func is one poll tick.
type Func func(ctx context.Context) error

// Option configures a Poller.
type Option func(*Poller)

// WithLogger sets the logger failed ticks are reported to.
func WithLogger(lg *zap.Logger) Option {
	return func(p *Poller) { p.lg = lg }
}

// WithOnError registers a callback invoked with every failed tick.
func WithOnError(fn func(error)) Option {
	return func(p *Poller) { p.onError = fn }
}

// WithTracerProvider sets the provider ticks are traced with.
func WithTracerProvider(tp trace.TracerProvider) Option {
	return func(p *Poller) { p.tp = tp }
}

// WithMeterProvider sets the provider tick counters are recorded with.
func WithMeterProvider(mp metric.MeterProvider) Option {
	return func(p *Poller) { p.mp = mp }
}

// Poller calls Func immediately and then every Interval. A failed call is
// logged and counted and the loop keeps the same interval; there is no
// backoff. Calls never overlap.
type Poller struct {
	name     string
	interval time.Duration
	fn       Func

	lg      *zap.Logger
	onError func(error)
	tp      trace.TracerProvider
	mp      metric.MeterProvider

	tracer   trace.Tracer
	total    metric.Int64Counter
	failures metric.Int64Counter
	attrs    metric.MeasurementOption
}

// New creates a poller. The name labels logs, spans and metrics.
func New(name string, interval time.Duration, fn Func, opts ...Option) (*Poller, error) {
	if interval <= 0 {
		return nil, errors.Errorf("poll %s: interval %s must be positive", name, interval)
	}
	if fn == nil {
		return nil, errors.Errorf("poll %s: nil func", name)
	}
	p := &Poller{
		name:     name,
		interval: interval,
		fn:       fn,
	}
	for _, o := range opts {
		o(p)
	}
	if p.lg == nil {
		p.lg = zap.NewNop()
	}
	if p.tp == nil {
		p.tp = tracenoop.NewTracerProvider()
	}
	if p.mp == nil {
		p.mp = metricnoop.NewMeterProvider()
	}
	p.lg = p.lg.With(zap.String("poller", name))
	p.tracer = p.tp.Tracer("github.com/xenking/cafe-lumiere/internal/poll")

	meter := p.mp.Meter("github.com/xenking/cafe-lumiere/internal/poll")
	var err error
	if p.total, err = meter.Int64Counter("cafe.poll.total",
		metric.WithDescription("Poll ticks executed"),
	); err != nil {
		return nil, errors.Wrap(err, "poll total counter")
	}
	if p.failures, err = meter.Int64Counter("cafe.poll.failures",
		metric.WithDescription("Poll ticks that returned an error"),
	); err != nil {
		return nil, errors.Wrap(err, "poll failures counter")
	}
	p.attrs = metric.WithAttributes(attribute.String("poller", name))
	return p, nil
}

// Run polls until ctx is done or the poll function returns ErrStop. It
// returns nil in both cases.
func (p *Poller) Run(ctx context.Context) error {
	if p.tick(ctx) {
		return nil
	}
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			if p.tick(ctx) {
				return nil
			}
		}
	}
}

// tick runs the poll function once and reports whether the loop must end.
func (p *Poller) tick(ctx context.Context) (stop bool) {
	if ctx.Err() != nil {
		return true
	}
	ctx, span := p.tracer.Start(ctx, "poll."+p.name)
	defer span.End()

	p.total.Add(ctx, 1, p.attrs)
	err := p.fn(ctx)
	switch {
	case err == nil:
		return false
	case errors.Is(err, ErrStop):
		p.lg.Debug("Poll stopped")
		return true
	case ctx.Err() != nil:
		// Cancelled mid-tick; not a failure.
		return true
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
	p.failures.Add(ctx, 1, p.attrs)
	p.lg.Warn("Poll failed", zap.Error(err))
	if p.onError != nil {
		p.onError(err)
	}
	return false
}

// Start runs the poller in a new goroutine.
func (p *Poller) Start(ctx context.Context) *Handle {
	ctx, cancel := context.WithCancel(ctx)
	h := &Handle{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(h.done)
		defer cancel()
		_ = p.Run(ctx)
	}()
	return h
}

// Handle controls a started poller.
type Handle struct {
	once   sync.Once
	cancel context.CancelFunc
	done   chan struct{}
}

// Stop cancels the poller. It is safe to call more than once and from
// several goroutines; only the first call has an effect. Stop does not wait
// for an in-flight tick, use Done for that.
func (h *Handle) Stop() {
	if h == nil {
		return
	}
	h.once.Do(h.cancel)
}

// Done is closed once the poll loop has exited.
func (h *Handle) Done() <-chan struct{} { return h.done }
