// Command gateway serves the café API to the order, kitchen and display
// clients and forwards order traffic to the order service.
package main

import (
	"context"

	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"

	appkg "github.com/xenking/cafe-lumiere/internal/app"
)

func main() {
	app.Run(func(ctx context.Context, lg *zap.Logger, m *app.Telemetry) error {
		cfg, err := appkg.LoadGatewayConfig()
		if err != nil {
			return err
		}
		return appkg.RunGateway(ctx, lg, m, cfg)
	})
}
