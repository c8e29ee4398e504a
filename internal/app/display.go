package app

import (
	"context"
	"io"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	"github.com/xenking/cafe-lumiere/internal/display"
	"github.com/xenking/cafe-lumiere/internal/poll"
	"github.com/xenking/cafe-lumiere/internal/render"
)

// RunDisplay redraws the pickup board to out on every poll until ctx is
// done.
func RunDisplay(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *ClientConfig, out io.Writer) error {
	return runDisplay(ctx, lg, newClient(cfg, lg, m), out,
		interval(cfg.Interval, display.DefaultInterval), pollOptions(lg, m)...)
}

func runDisplay(ctx context.Context, lg *zap.Logger, src display.Source, out io.Writer, every time.Duration, opts ...poll.Option) error {
	var b *display.Board
	b = display.New(src, func() {
		if err := render.Display(out, b.View()); err != nil {
			lg.Warn("Render failed", zap.Error(err))
		}
	})
	p, err := poll.New("display", every, b.Refresh, opts...)
	if err != nil {
		return errors.Wrap(err, "display poller")
	}
	return p.Run(ctx)
}
