// Package orderservice implements order.Repository on top of the order
// service's REST API.
package orderservice

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/go-resty/resty/v2"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	"github.com/xenking/cafe-lumiere/internal/domain/order"
	"github.com/xenking/cafe-lumiere/internal/orderapi"
	"github.com/xenking/cafe-lumiere/pkg/httpmiddleware"
)

var _ order.Repository = (*Repository)(nil)

// Config controls how the order service is reached.
type Config struct {
	URL          string        `default:"http://localhost:5001" usage:"Order service base URL"`
	Timeout      time.Duration `default:"5s" usage:"Per-attempt request timeout"`
	RetryCount   int           `default:"3" usage:"Retries for idempotent requests on 500/502/504 and network errors"`
	RetryWait    time.Duration `default:"300ms" usage:"Initial retry backoff"`
	RetryMaxWait time.Duration `default:"2s" usage:"Maximum retry backoff"`
}

// Options carries non-config dependencies.
type Options struct {
	Logger         *zap.Logger
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	Transport      http.RoundTripper
}

// Repository talks to the order service. GET and PUT requests are retried
// on 500, 502 and 504 responses and on network errors; POST is not.
type Repository struct {
	rest *resty.Client
}

// New creates a Repository for the configured order service.
func New(cfg Config, opts Options) *Repository {
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}
	if opts.Transport == nil {
		opts.Transport = http.DefaultTransport
	}
	var otelOpts []otelhttp.Option
	if opts.TracerProvider != nil {
		otelOpts = append(otelOpts, otelhttp.WithTracerProvider(opts.TracerProvider))
	}
	if opts.MeterProvider != nil {
		otelOpts = append(otelOpts, otelhttp.WithMeterProvider(opts.MeterProvider))
	}
	hc := &http.Client{Transport: otelhttp.NewTransport(opts.Transport, otelOpts...)}

	rest := resty.NewWithClient(hc).
		SetBaseURL(cfg.URL).
		SetTimeout(cfg.Timeout).
		SetRetryCount(cfg.RetryCount).
		SetRetryWaitTime(cfg.RetryWait).
		SetRetryMaxWaitTime(cfg.RetryMaxWait).
		AddRetryCondition(retryable).
		SetLogger(opts.Logger.Named("orderservice").Sugar()).
		SetHeader("Accept", "application/json").
		OnBeforeRequest(func(_ *resty.Client, r *resty.Request) error {
			if id := httpmiddleware.RequestIDFromContext(r.Context()); id != "" {
				r.SetHeader("X-Request-ID", id)
			}
			return nil
		})

	return &Repository{rest: rest}
}

func retryable(resp *resty.Response, err error) bool {
	if resp == nil || resp.Request == nil {
		return false
	}
	switch resp.Request.Method {
	case http.MethodGet, http.MethodPut:
	default:
		return false
	}
	if err != nil {
		return !errors.Is(err, context.Canceled)
	}
	switch resp.StatusCode() {
	case http.StatusInternalServerError, http.StatusBadGateway, http.StatusGatewayTimeout:
		return true
	}
	return false
}

func (r *Repository) do(ctx context.Context, op, method, path string, body []byte) ([]byte, error) {
	req := r.rest.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err := orderapi.Classify(op, resp, err); err != nil {
		if orderapi.IsStatus(err, http.StatusNotFound) {
			return nil, errors.Wrap(order.ErrNotFound, op)
		}
		return nil, err
	}
	return resp.Body(), nil
}

func (r *Repository) single(ctx context.Context, op, method, path string, body []byte) (*order.Order, error) {
	data, err := r.do(ctx, op, method, path, body)
	if err != nil {
		return nil, err
	}
	var o order.Order
	if err := o.Decode(jx.DecodeBytes(data)); err != nil {
		return nil, &orderapi.PayloadError{Op: op, Err: err}
	}
	return &o, nil
}

func orderPath(number string) string {
	return "/orders/" + url.PathEscape(number)
}

// List returns every order, newest first as the service orders them.
func (r *Repository) List(ctx context.Context) ([]order.Order, error) {
	const op = "list orders"
	data, err := r.do(ctx, op, http.MethodGet, "/orders", nil)
	if err != nil {
		return nil, err
	}
	orders, err := order.DecodeList(jx.DecodeBytes(data))
	if err != nil {
		return nil, &orderapi.PayloadError{Op: op, Err: err}
	}
	return orders, nil
}

// Get returns order.ErrNotFound for unknown order numbers.
func (r *Repository) Get(ctx context.Context, number string) (*order.Order, error) {
	return r.single(ctx, "get order", http.MethodGet, orderPath(number), nil)
}

// Create submits a new order. The service assigns the order number.
func (r *Repository) Create(ctx context.Context, req order.NewOrder) (*order.Order, error) {
	var e jx.Encoder
	req.Encode(&e)
	return r.single(ctx, "create order", http.MethodPost, "/orders", e.Bytes())
}

// SetStatus overwrites the order's status unconditionally.
func (r *Repository) SetStatus(ctx context.Context, number string, status order.Status) (*order.Order, error) {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("status")
	e.Str(status.String())
	e.ObjEnd()
	return r.single(ctx, "update order", http.MethodPut, orderPath(number), e.Bytes())
}

// Ping checks the service's health endpoint.
func (r *Repository) Ping(ctx context.Context) error {
	_, err := r.do(ctx, "health", http.MethodGet, "/health", nil)
	return err
}
