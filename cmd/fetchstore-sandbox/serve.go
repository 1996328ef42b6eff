package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/Ratio1/fetchstore_sdk_go/internal/devseed"
	"github.com/Ratio1/fetchstore_sdk_go/internal/sandbox"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/fetchstore_sdk"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/mac"
)

type serveOptions struct {
	addr    string
	seed    string
	latency time.Duration
	fail    string
	macKey  string
}

func newServeCmd() *cobra.Command {
	opts := &serveOptions{}
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve seeded collections over HTTP",
		RunE: func(cmd *cobra.Command, _ []string) error {
			level, _ := cmd.Flags().GetString("log-level")
			srv, err := buildSandbox(opts, level)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cmd, opts.addr, srv)
		},
	}
	cmd.Flags().StringVar(&opts.addr, "addr", ":8787", "listen address")
	cmd.Flags().StringVar(&opts.seed, "seed", "", "path to a YAML or JSON seed document")
	cmd.Flags().DurationVar(&opts.latency, "latency", 0, "artificial latency to inject per request")
	cmd.Flags().StringVar(&opts.fail, "fail", "", "failure injection (rate=<float>,code=<httpStatus>)")
	cmd.Flags().StringVar(&opts.macKey, "mac-key", "", "hex HMAC key for signing responses and verifying requests")
	return cmd
}

func buildSandbox(opts *serveOptions, level string) (*sandbox.Server, error) {
	failCfg, err := sandbox.ParseFailConfig(opts.fail)
	if err != nil {
		return nil, fmt.Errorf("parse --fail: %w", err)
	}
	cfg := sandbox.Config{
		Latency: opts.latency,
		Fail:    failCfg,
		Logger:  fetchstore_sdk.NewLogger(level),
	}
	if opts.macKey != "" {
		key, err := mac.NewHMACFromHex(opts.macKey)
		if err != nil {
			return nil, fmt.Errorf("parse --mac-key: %w", err)
		}
		cfg.Signer, cfg.Verifier = key, key
	}
	srv := sandbox.New(cfg)
	if opts.seed != "" {
		seed, err := devseed.Load(opts.seed)
		if err != nil {
			return nil, err
		}
		if err := srv.Seed(seed); err != nil {
			return nil, err
		}
	}
	return srv, nil
}

func serve(ctx context.Context, cmd *cobra.Command, addr string, srv *sandbox.Server) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("listen %s: %w", addr, err)
	}
	server := &http.Server{
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	host := ln.Addr().String()
	if strings.HasPrefix(addr, ":") {
		host = "localhost" + addr
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "fetchstore-sandbox listening on %s\n\n", ln.Addr())
	fmt.Fprintf(out, "export FETCHSTORE_RUNTIME_MODE=%s\n", fetchstore_sdk.ModeHTTP)
	fmt.Fprintf(out, "export FETCHSTORE_API_URL=http://%s\n\n", host)

	errc := make(chan error, 1)
	go func() { errc <- server.Serve(ln) }()

	select {
	case err := <-errc:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	}
}
