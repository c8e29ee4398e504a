// Package app wires the café binaries together.
package app

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"github.com/go-faster/errors"
	"github.com/go-faster/sdk/app"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/xenking/cafe-lumiere/internal/domain/menu"
	"github.com/xenking/cafe-lumiere/internal/domain/order"
	"github.com/xenking/cafe-lumiere/internal/handler"
	"github.com/xenking/cafe-lumiere/internal/storage/orderservice"
	"github.com/xenking/cafe-lumiere/pkg/health"
	"github.com/xenking/cafe-lumiere/pkg/httpmiddleware"
)

// NewRouter builds the gateway's HTTP surface: health probes at the root and
// the café API under /api.
func NewRouter(ctx context.Context, lg *zap.Logger, t httpmiddleware.Telemetry, cfg *GatewayConfig, h *handler.Handler, checker *health.Checker) http.Handler {
	r := chi.NewRouter()
	// Route-aware middleware runs inside chi and reads the pattern after routing.
	r.Use(
		httpmiddleware.Instrument("cafe-gateway", t),
		httpmiddleware.LogRequests(),
	)

	r.Get("/livez", checker.Live)
	r.Get("/readyz", checker.Readyz)

	r.Route("/api", func(r chi.Router) {
		r.Use(
			cors.Handler(cors.Options{
				AllowedOrigins:   cfg.CORS.Origins,
				AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodOptions},
				AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
				ExposedHeaders:   []string{"X-Request-ID", "Retry-After"},
				AllowCredentials: cfg.CORS.AllowCredentials,
				MaxAge:           300,
			}),
			httpmiddleware.RateLimitWithCleanup(ctx, httpmiddleware.RateLimitConfig{
				Rate:    cfg.RateLimit.Rate,
				Burst:   cfg.RateLimit.Burst,
				IdleTTL: cfg.RateLimit.IdleTTL,
			}),
		)
		h.RegisterRoutes(r)
	})
	return httpmiddleware.Wrap(r,
		httpmiddleware.RequestID(),
		httpmiddleware.InjectLogger(lg),
		httpmiddleware.Recovery(),
	)
}

// RunGateway starts the gateway and blocks until ctx is cancelled and the
// server has drained.
func RunGateway(ctx context.Context, lg *zap.Logger, m *app.Telemetry, cfg *GatewayConfig) error {
	lg.Info("Initializing",
		zap.String("addr", cfg.Addr),
		zap.String("order_service", cfg.Upstream.URL),
	)

	upstream := orderservice.New(cfg.Upstream, orderservice.Options{
		Logger:         lg,
		TracerProvider: m.TracerProvider(),
		MeterProvider:  m.MeterProvider(),
	})

	checker := health.New(lg.Named("health"))
	checker.Add(health.Probe{
		Name:    "order-service",
		Kind:    health.Readiness,
		Timeout: cfg.Upstream.Timeout,
		Check:   health.Upstream("order service", upstream),
	})
	checker.Add(health.Probe{
		Name:  "goroutines",
		Kind:  health.Liveness,
		Check: health.GoroutineCount(cfg.Health.GoroutineLimit),
	})

	h := handler.New(order.NewService(upstream), menu.Default())

	server := &http.Server{
		ReadHeaderTimeout: time.Second,
		ReadTimeout:       5 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
		MaxHeaderBytes:    1 << 20,
		Addr:              cfg.Addr,
		Handler:           NewRouter(ctx, lg, m, cfg, h, checker),
	}

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(func() error {
		checker.Start(gCtx, cfg.Health.Interval)
		checker.SetReady(true)
		<-gCtx.Done()

		checker.SetReady(false)
		lg.Info("Readiness set to false, draining", zap.Duration("delay", cfg.Graceful.ReadinessDelay))
		time.Sleep(cfg.Graceful.ReadinessDelay)

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Graceful.ShutdownTimeout)
		defer cancel()

		lg.Info("Shutting down server", zap.Duration("timeout", cfg.Graceful.ShutdownTimeout))
		defer checker.Stop()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return errors.Wrap(err, "shutdown")
		}
		return nil
	})
	g.Go(func() error {
		lg.Info("Server listening", zap.String("addr", cfg.Addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return errors.Wrap(err, "server")
		}
		return nil
	})
	return g.Wait()
}
