package fetchstore_sdk

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/Ratio1/fetchstore_sdk_go/internal/devseed"
	"github.com/Ratio1/fetchstore_sdk_go/internal/sandbox"
	"github.com/Ratio1/fetchstore_sdk_go/internal/telemetry"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/fetch"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/fetch/mock"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/mac"
)

// Runtime is a configured client plus the pieces it was assembled from.
type Runtime struct {
	Mode    string
	Client  *fetch.Client
	Logger  *slog.Logger
	Timeout time.Duration

	// Metrics is nil unless enabled.
	Metrics *telemetry.Metrics
	// Transport and Sandbox are set in mock mode only.
	Transport *mock.Transport
	Sandbox   *sandbox.Server
}

// NewFromEnv reads FETCHSTORE_* variables and ./.env.
func NewFromEnv() (*Runtime, error) {
	cfg, err := LoadConfig("", ".env")
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

// NewFromConfig reads path, then ./.env and the environment.
func NewFromConfig(path string) (*Runtime, error) {
	cfg, err := LoadConfig(path, ".env")
	if err != nil {
		return nil, err
	}
	return New(cfg)
}

// New assembles a Runtime from cfg.
func New(cfg Config) (*Runtime, error) {
	mode, err := cfg.ResolveMode()
	if err != nil {
		return nil, err
	}
	logger := NewLogger(cfg.LogLevel)
	rt := &Runtime{Mode: mode, Logger: logger, Timeout: cfg.Timeout}

	opts := []fetch.Option{fetch.WithLogger(logger)}
	var key *mac.HMAC
	if cfg.MACKey != "" {
		key, err = mac.NewHMACFromHex(cfg.MACKey)
		if err != nil {
			return nil, fmt.Errorf("fetchstore_sdk: %s: %w", KeyMACKey, err)
		}
		opts = append(opts, fetch.WithSigner(key), fetch.WithVerifier(key))
	}
	if cfg.Metrics {
		rt.Metrics, err = telemetry.New(telemetry.DefaultMeterName)
		if err != nil {
			return nil, err
		}
		opts = append(opts, fetch.WithObserver(rt.Metrics))
	}

	switch mode {
	case ModeHTTP:
		base, err := fetch.ParseBaseURL(cfg.APIURL)
		if err != nil {
			return nil, fmt.Errorf("fetchstore_sdk: %s: %w", KeyAPIURL, err)
		}
		opts = append(opts, fetch.WithBaseURL(base))
	case ModeMock:
		sbCfg := sandbox.Config{Logger: logger}
		if key != nil {
			sbCfg.Signer, sbCfg.Verifier = key, key
		}
		rt.Sandbox = sandbox.New(sbCfg)
		if cfg.MockSeed != "" {
			seed, err := devseed.Load(cfg.MockSeed)
			if err != nil {
				return nil, fmt.Errorf("fetchstore_sdk: load mock seed: %w", err)
			}
			if err := rt.Sandbox.Seed(seed); err != nil {
				return nil, fmt.Errorf("fetchstore_sdk: apply mock seed: %w", err)
			}
		}
		rt.Transport = mock.New(mock.WithHandler(rt.Sandbox.Handler()))
		opts = append(opts, fetch.WithTransport(rt.Transport))
	}

	rt.Client = fetch.NewClient(opts...)
	logger.Debug("fetchstore runtime ready", "mode", mode, "api_url", cfg.APIURL, "metrics", cfg.Metrics, "signed", key != nil)
	return rt, nil
}

// Request returns a GET request carrying the configured timeout.
func (r *Runtime) Request(url string) fetch.Request {
	req := fetch.NewRequest(url)
	if r.Timeout > 0 {
		req = req.WithTimeout(r.Timeout)
	}
	return req
}

// MetricsHandler serves Prometheus metrics, or 404 when metrics are off.
func (r *Runtime) MetricsHandler() http.Handler {
	if r.Metrics == nil {
		return http.NotFoundHandler()
	}
	return r.Metrics.Handler()
}

// Close releases the metrics provider.
func (r *Runtime) Close(ctx context.Context) error {
	if r.Metrics == nil {
		return nil
	}
	return r.Metrics.Shutdown(ctx)
}
