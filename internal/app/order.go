package app

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-faster/sdk/app"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/cafe-lumiere/internal/customer"
	"github.com/xenking/cafe-lumiere/internal/domain/menu"
	"github.com/xenking/cafe-lumiere/internal/render"
)

const orderHelp = `Commands:
  menu                 show the menu
  add <item> [qty]     add an item by number
  remove <item>        remove an item from the cart
  cart                 show the cart
  order <your name>    place the order
  status               show the order status
  new                  start a new order
  quit
`

// menuSource fetches the catalog.
type menuSource interface {
	Menu(ctx context.Context) (*menu.Catalog, error)
}

// orderAPI is what the order CLI needs from the gateway client.
type orderAPI interface {
	customer.API
	menuSource
}

type orderCLI struct {
	lg      *zap.Logger
	out     io.Writer
	catalog *menu.Catalog
	session *customer.Session
}

// RunOrder runs the customer ordering CLI against the gateway.
func RunOrder(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *ClientConfig, in io.Reader, out io.Writer) error {
	return runOrder(ctx, lg, newClient(cfg, lg, m), in, out,
		interval(cfg.Interval, customer.DefaultInterval), m.TracerProvider(), m.MeterProvider())
}

func runOrder(
	ctx context.Context,
	lg *zap.Logger,
	api orderAPI,
	in io.Reader,
	out io.Writer,
	every time.Duration,
	tp trace.TracerProvider,
	mp metric.MeterProvider,
) error {
	scr := &screen{w: out}
	catalog, err := api.Menu(ctx)
	if err != nil {
		lg.Warn("Menu unavailable, using built-in menu", zap.Error(err))
		catalog = menu.Default()
	}

	cli := &orderCLI{lg: lg, out: scr, catalog: catalog}
	cli.session = customer.New(api, customer.Options{
		Interval:       every,
		Notifier:       notifier(lg, scr),
		Logger:         lg,
		OnUpdate:       cli.draw,
		TracerProvider: tp,
		MeterProvider:  mp,
	})
	defer cli.session.NewOrder()

	if err := render.Menu(scr, catalog, nil); err != nil {
		return err
	}
	_, _ = io.WriteString(scr, orderHelp)

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		return interact(gCtx, lg, readLines(gCtx, in), scr, cli.exec, cli.untilServed)
	})
	return quitOK(g.Wait())
}

func (c *orderCLI) draw() {
	if err := render.Customer(c.out, c.session.View()); err != nil {
		c.lg.Warn("Render failed", zap.Error(err))
	}
}

// untilServed keeps tracking a placed order after input ends.
func (c *orderCLI) untilServed(ctx context.Context) error {
	select {
	case <-ctx.Done():
		return nil
	case <-c.session.Done():
		return errQuit
	}
}

func (c *orderCLI) item(arg string) (menu.Item, error) {
	id, err := strconv.Atoi(arg)
	if err != nil {
		return menu.Item{}, usageError(fmt.Sprintf("%q is not an item number", arg))
	}
	it, err := c.catalog.Find(id)
	if err != nil {
		return menu.Item{}, usageError(fmt.Sprintf("no menu item %d", id))
	}
	return it, nil
}

func (c *orderCLI) exec(ctx context.Context, cmd command) error {
	switch cmd.name {
	case "menu":
		return render.Menu(c.out, c.catalog, c.session.View().Badges)
	case "add":
		if len(cmd.args) < 1 || len(cmd.args) > 2 {
			return usageError("usage: add <item> [qty]")
		}
		it, err := c.item(cmd.args[0])
		if err != nil {
			return err
		}
		qty := 1
		if len(cmd.args) == 2 {
			if qty, err = strconv.Atoi(cmd.args[1]); err != nil || qty < 1 {
				return usageError("quantity must be a positive number")
			}
		}
		c.session.AddItems(it, qty)
		return nil
	case "remove", "rm":
		if len(cmd.args) != 1 {
			return usageError("usage: remove <item>")
		}
		it, err := c.item(cmd.args[0])
		if err != nil {
			return err
		}
		c.session.RemoveItem(it.ID)
		return nil
	case "cart", "status":
		c.draw()
		return nil
	case "order":
		_, err := c.session.PlaceOrder(ctx, strings.Join(cmd.args, " "))
		return err
	case "new":
		c.session.NewOrder()
		return nil
	case "help", "?":
		_, err := io.WriteString(c.out, orderHelp)
		return err
	default:
		return usageError(fmt.Sprintf("unknown command %q, type help", cmd.name))
	}
}
