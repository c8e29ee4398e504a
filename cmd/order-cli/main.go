// Command order-cli lets a customer build a cart, place an order and follow
// it until it is served.
package main

import (
	"context"
	"os"

	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	appkg "github.com/xenking/cafe-lumiere/internal/app"
)

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, m *app.Telemetry) error {
		cfg, err := appkg.LoadClientConfig()
		if err != nil {
			return err
		}
		return appkg.RunOrder(ctx, lg, m, cfg, os.Stdin, os.Stdout)
	})
}
