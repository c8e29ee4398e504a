package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"

	"github.com/xenking/cafe-lumiere/internal/storage/orderservice"
)

const defaultAddr = "0.0.0.0:5000"

// GatewayConfig configures the gateway, loadable from environment variables
// (CAFE_ prefix), flags or YAML config files.
type GatewayConfig struct {
	Addr      string `default:"0.0.0.0:5000" usage:"Gateway listen address"`
	Upstream  orderservice.Config
	RateLimit RateLimitConfig
	CORS      CORSConfig
	Health    HealthConfig
	Graceful  GracefulConfig
}

// RateLimitConfig controls the per-client token bucket.
type RateLimitConfig struct {
	Rate    float64       `default:"20" usage:"Sustained requests per second per client"`
	Burst   int           `default:"40" usage:"Burst size per client"`
	IdleTTL time.Duration `default:"10m" usage:"Forget clients idle for this long" flag:"rate-limit-idle-ttl"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// HealthConfig controls probe scheduling.
type HealthConfig struct {
	Interval       time.Duration `default:"10s" usage:"Probe interval"`
	GoroutineLimit int           `default:"10000" usage:"Liveness fails above this many goroutines" flag:"goroutine-limit"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// ClientConfig configures the order, kitchen and display CLIs.
type ClientConfig struct {
	GatewayURL string        `default:"http://localhost:5000" usage:"Gateway base URL" flag:"gateway-url"`
	Timeout    time.Duration `default:"10s" usage:"Per-request timeout"`
	// Zero keeps each client's own default.
	Interval time.Duration `usage:"Poll interval override"`
}

func load(dst any) error {
	loader := aconfig.LoaderFor(dst, aconfig.Config{
		EnvPrefix: "CAFE",
		Files:     []string{"config.yaml", "/etc/cafe/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return errors.Wrap(err, "load config")
	}
	return nil
}

// LoadGatewayConfig loads the gateway configuration and applies
// platform-specific defaults.
func LoadGatewayConfig() (*GatewayConfig, error) {
	var cfg GatewayConfig
	if err := load(&cfg); err != nil {
		return nil, err
	}
	cfg.applyPlatformDefaults()

	if cfg.Upstream.URL == "" {
		return nil, errors.New("order service URL is required: set CAFE_UPSTREAM_URL or ORDER_SERVICE_URL")
	}
	if cfg.RateLimit.Rate <= 0 || cfg.RateLimit.Burst <= 0 {
		return nil, errors.Errorf("invalid rate limit %v/%d", cfg.RateLimit.Rate, cfg.RateLimit.Burst)
	}
	return &cfg, nil
}

// applyPlatformDefaults maps the plain ORDER_SERVICE_URL and PORT variables
// used by container platforms onto the CAFE_-prefixed configuration.
func (c *GatewayConfig) applyPlatformDefaults() {
	if v := os.Getenv("ORDER_SERVICE_URL"); v != "" && os.Getenv("CAFE_UPSTREAM_URL") == "" {
		c.Upstream.URL = v
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == defaultAddr {
		c.Addr = "0.0.0.0:" + port
	}
}

// LoadClientConfig loads the configuration shared by the CLI clients.
func LoadClientConfig() (*ClientConfig, error) {
	var cfg ClientConfig
	if err := load(&cfg); err != nil {
		return nil, err
	}
	if cfg.GatewayURL == "" {
		return nil, errors.New("gateway URL is required: set CAFE_GATEWAY_URL")
	}
	if cfg.Interval < 0 {
		return nil, errors.Errorf("negative poll interval %s", cfg.Interval)
	}
	return &cfg, nil
}
