package app

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/cafe-lumiere/internal/kitchen"
	"github.com/xenking/cafe-lumiere/internal/poll"
	"github.com/xenking/cafe-lumiere/internal/render"
)

const kitchenHelp = `Commands:
  start <order>   start preparing
  ready <order>   mark ready
  serve <order>   serve
  do <order>      run the action shown on the card
  refresh         reload now
  quit
`

// RunKitchen runs the kitchen board against the gateway, reading commands
// from in and drawing to out.
func RunKitchen(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *ClientConfig, in io.Reader, out io.Writer) error {
	return runKitchen(ctx, lg, newClient(cfg, lg, m), in, out,
		interval(cfg.Interval, kitchen.DefaultInterval), pollOptions(lg, m)...)
}

func runKitchen(ctx context.Context, lg *zap.Logger, src kitchen.Source, in io.Reader, out io.Writer, every time.Duration, opts ...poll.Option) error {
	scr := &screen{w: out}
	var b *kitchen.Board
	b = kitchen.New(src, kitchen.Options{
		Notifier: notifier(lg, scr),
		Logger:   lg,
		OnUpdate: func() {
			if err := render.Kitchen(scr, b.View()); err != nil {
				lg.Warn("Render failed", zap.Error(err))
			}
		},
	})

	p, err := poll.New("kitchen", every, b.Refresh, opts...)
	if err != nil {
		return errors.Wrap(err, "kitchen poller")
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error { return p.Run(gCtx) })
	g.Go(func() error {
		_, _ = io.WriteString(scr, kitchenHelp)
		return interact(gCtx, lg, readLines(gCtx, in), scr,
			func(ctx context.Context, cmd command) error { return kitchenCommand(ctx, b, scr, cmd) },
			waitCtx,
		)
	})
	return quitOK(g.Wait())
}

func kitchenCommand(ctx context.Context, b *kitchen.Board, out io.Writer, cmd command) error {
	var action func(context.Context, string) error
	switch cmd.name {
	case "start":
		action = b.StartPreparing
	case "ready":
		action = b.MarkReady
	case "serve":
		action = b.Serve
	case "do":
		action = b.Act
	case "refresh", "r":
		return b.Refresh(ctx)
	case "help", "?":
		_, err := io.WriteString(out, kitchenHelp)
		return err
	default:
		return usageError(fmt.Sprintf("unknown command %q, type help", cmd.name))
	}
	if len(cmd.args) != 1 {
		return usageError(fmt.Sprintf("usage: %s <order>", cmd.name))
	}
	return action(ctx, cmd.args[0])
}
