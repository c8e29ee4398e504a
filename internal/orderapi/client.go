// Package orderapi is the REST client the café front-ends use to talk to the
// gateway.
package orderapi

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

	"github.com/xenking/cafe-lumiere/internal/domain/menu"
	"github.com/xenking/cafe-lumiere/internal/domain/order"
)

// Paths are the gateway endpoints, relative to the base URL.
type Paths struct {
	Orders  string `default:"/api/orders"`
	Kitchen string `default:"/api/kitchen/orders"`
	Display string `default:"/api/display/orders"`
	Menu    string `default:"/api/menu"`
}

func (p *Paths) setDefaults() {
	if p.Orders == "" {
		p.Orders = "/api/orders"
	}
	if p.Kitchen == "" {
		p.Kitchen = "/api/kitchen/orders"
	}
	if p.Display == "" {
		p.Display = "/api/display/orders"
	}
	if p.Menu == "" {
		p.Menu = "/api/menu"
	}
}

// Options configures a Client.
type Options struct {
	// Timeout bounds each request. Zero means 10s.
	Timeout time.Duration
	Paths   Paths

	Logger         *zap.Logger
	TracerProvider trace.TracerProvider
	MeterProvider  metric.MeterProvider
	// Transport overrides the base round tripper.
	Transport http.RoundTripper
}

func (o *Options) setDefaults() {
	if o.Timeout == 0 {
		o.Timeout = 10 * time.Second
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Transport == nil {
		o.Transport = http.DefaultTransport
	}
	o.Paths.setDefaults()
}

// Client calls the gateway's order, kitchen, display and menu endpoints.
// Calls are never retried: the next poll is the retry.
type Client struct {
	rest  *resty.Client
	paths Paths
}

// New creates a client for the gateway at baseURL.
func New(baseURL string, opts Options) *Client {
	opts.setDefaults()

	var otelOpts []otelhttp.Option
	if opts.TracerProvider != nil {
		otelOpts = append(otelOpts, otelhttp.WithTracerProvider(opts.TracerProvider))
	}
	if opts.MeterProvider != nil {
		otelOpts = append(otelOpts, otelhttp.WithMeterProvider(opts.MeterProvider))
	}
	hc := &http.Client{Transport: otelhttp.NewTransport(opts.Transport, otelOpts...)}

	rest := resty.NewWithClient(hc).
		SetBaseURL(baseURL).
		SetTimeout(opts.Timeout).
		SetLogger(opts.Logger.Named("resty").Sugar()).
		SetHeader("Accept", "application/json")

	return &Client{rest: rest, paths: opts.Paths}
}

func (c *Client) do(ctx context.Context, op, method, path string, body []byte) ([]byte, error) {
	req := c.rest.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}
	resp, err := req.Execute(method, path)
	if err := Classify(op, resp, err); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

func (c *Client) list(ctx context.Context, op, path string) ([]order.Order, error) {
	body, err := c.do(ctx, op, http.MethodGet, path, nil)
	if err != nil {
		return nil, err
	}
	orders, err := order.DecodeList(jx.DecodeBytes(body))
	if err != nil {
		return nil, &PayloadError{Op: op, Err: err}
	}
	return orders, nil
}

func (c *Client) single(ctx context.Context, op, method, path string, reqBody []byte) (*order.Order, error) {
	body, err := c.do(ctx, op, method, path, reqBody)
	if err != nil {
		return nil, err
	}
	var o order.Order
	if err := o.Decode(jx.DecodeBytes(body)); err != nil {
		return nil, &PayloadError{Op: op, Err: err}
	}
	return &o, nil
}

// ListOrders returns every order.
func (c *Client) ListOrders(ctx context.Context) ([]order.Order, error) {
	return c.list(ctx, "list orders", c.paths.Orders)
}

// KitchenOrders returns orders that are ordered, preparing or ready.
func (c *Client) KitchenOrders(ctx context.Context) ([]order.Order, error) {
	return c.list(ctx, "kitchen orders", c.paths.Kitchen)
}

// DisplayOrders returns orders that are preparing or ready.
func (c *Client) DisplayOrders(ctx context.Context) ([]order.Order, error) {
	return c.list(ctx, "display orders", c.paths.Display)
}

// GetOrder fetches a single order snapshot.
func (c *Client) GetOrder(ctx context.Context, number string) (*order.Order, error) {
	return c.single(ctx, "get order", http.MethodGet, c.paths.Orders+"/"+url.PathEscape(number), nil)
}

// PlaceOrder submits a new order and returns it as created.
func (c *Client) PlaceOrder(ctx context.Context, req order.NewOrder) (*order.Order, error) {
	var e jx.Encoder
	req.Encode(&e)
	return c.single(ctx, "place order", http.MethodPost, c.paths.Orders, e.Bytes())
}

// Advance sends a transition command for the order. The server decides
// whether the command applies; the returned snapshot is informational and
// callers refresh from the next poll.
func (c *Client) Advance(ctx context.Context, number string, t order.Transition) (*order.Order, error) {
	if !t.Valid() {
		return nil, errors.Wrap(order.ErrUnknownTransition, string(t))
	}
	path := c.paths.Kitchen + "/" + url.PathEscape(number) + "/" + string(t)
	return c.single(ctx, t.String()+" order", http.MethodPost, path, []byte("{}"))
}

// Menu fetches the catalog.
func (c *Client) Menu(ctx context.Context) (*menu.Catalog, error) {
	const op = "get menu"
	body, err := c.do(ctx, op, http.MethodGet, c.paths.Menu, nil)
	if err != nil {
		return nil, err
	}
	catalog, err := menu.Decode(jx.DecodeBytes(body))
	if err != nil {
		return nil, &PayloadError{Op: op, Err: err}
	}
	return catalog, nil
}
