// Command kitchen-board shows active orders by status and advances them
// through preparation.
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
		return appkg.RunKitchen(ctx, lg, m, cfg, os.Stdin, os.Stdout)
	})
}
