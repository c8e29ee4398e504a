package app

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	"github.com/xenking/cafe-lumiere/internal/notify"
	"github.com/xenking/cafe-lumiere/internal/orderapi"
	"github.com/xenking/cafe-lumiere/internal/poll"
)

var errQuit = errors.New("quit")

// usageError is a malformed command line; it is shown to the operator.
type usageError string

func (e usageError) Error() string { return string(e) }

// screen serializes writes from the poll goroutine and the input loop.
type screen struct {
	mu sync.Mutex
	w  io.Writer
}

func (s *screen) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.w.Write(p)
}

type command struct {
	name string
	args []string
}

func parseCommand(line string) (command, bool) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return command{}, false
	}
	return command{name: strings.ToLower(fields[0]), args: fields[1:]}, true
}

// readLines feeds in line by line until EOF or ctx is done.
func readLines(ctx context.Context, in io.Reader) <-chan string {
	ch := make(chan string)
	go func() {
		defer close(ch)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case ch <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()
	return ch
}

// interact runs exec for every input line until quit or ctx is done. At EOF
// it hands over to onEOF.
func interact(
	ctx context.Context,
	lg *zap.Logger,
	lines <-chan string,
	out io.Writer,
	exec func(ctx context.Context, cmd command) error,
	onEOF func(ctx context.Context) error,
) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		case line, ok := <-lines:
			if !ok {
				return onEOF(ctx)
			}
			cmd, ok := parseCommand(line)
			if !ok {
				continue
			}
			if cmd.name == "quit" || cmd.name == "exit" {
				return errQuit
			}
			err := exec(ctx, cmd)
			var ue usageError
			switch {
			case err == nil:
			case errors.Is(err, errQuit):
				return err
			case errors.As(err, &ue):
				fmt.Fprintf(out, "! %s\n", ue)
			default:
				lg.Debug("Command failed", zap.String("command", cmd.name), zap.Error(err))
			}
		}
	}
}

// waitCtx blocks until ctx is done.
func waitCtx(ctx context.Context) error {
	<-ctx.Done()
	return nil
}

func quitOK(err error) error {
	if errors.Is(err, errQuit) {
		return nil
	}
	return err
}

func interval(override, def time.Duration) time.Duration {
	if override > 0 {
		return override
	}
	return def
}

func newClient(cfg *ClientConfig, lg *zap.Logger, m *app.Telemetry) *orderapi.Client {
	return orderapi.New(cfg.GatewayURL, orderapi.Options{
		Timeout:        cfg.Timeout,
		Logger:         lg,
		TracerProvider: m.TracerProvider(),
		MeterProvider:  m.MeterProvider(),
	})
}

// notifier shows messages on the screen and records them in the log.
func notifier(lg *zap.Logger, w io.Writer) notify.Notifier {
	return notify.Tee(
		notify.NewWriter(w),
		notify.Func(func(msg string) { lg.Debug("Notice shown", zap.String("message", msg)) }),
	)
}

func pollOptions(lg *zap.Logger, m *app.Telemetry) []poll.Option {
	return []poll.Option{
		poll.WithLogger(lg),
		poll.WithTracerProvider(m.TracerProvider()),
		poll.WithMeterProvider(m.MeterProvider()),
	}
}
