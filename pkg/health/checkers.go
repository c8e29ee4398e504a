package health

import (
	"context"
	"runtime"

	"github.com/go-faster/errors"
)

// Pinger is anything with a cheap reachability call, such as the order
// service repository.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Upstream returns a readiness CheckFunc that pings p.
func Upstream(name string, p Pinger) CheckFunc {
	return func(ctx context.Context) error {
		if err := p.Ping(ctx); err != nil {
			return errors.Wrapf(err, "%s unreachable", name)
		}
		return nil
	}
}

// GoroutineCount reports unhealthy once more than limit goroutines are live.
func GoroutineCount(limit int) CheckFunc {
	return func(context.Context) error {
		if n := runtime.NumGoroutine(); n > limit {
			return errors.Errorf("goroutine count %d exceeds threshold %d", n, limit)
		}
		return nil
	}
}
