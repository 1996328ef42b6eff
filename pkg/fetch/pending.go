package fetch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/net/http/httpguts"

	"github.com/Ratio1/fetchstore_sdk_go/internal/httpx"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/status"
)

type outcome struct {
	resp *http.Response
	err  error
}

// PendingFetch is a started request that has not been awaited yet.
type PendingFetch struct {
	id       string
	url      string
	method   Method
	timeout  time.Duration
	started  time.Time
	done     chan outcome
	cancel   context.CancelFunc
	once     sync.Once
	logger   *slog.Logger
	observer Observer
}

// Start validates the request and launches the transport call on its own
// goroutine. Construction errors never reach the network.
func (r Request) Start(ctx context.Context, c *Client) (*PendingFetch, error) {
	if c == nil {
		return nil, ErrNilClient
	}
	if !r.method.valid() {
		return nil, fmt.Errorf("fetch: unsupported method %q", r.method)
	}
	header := make(http.Header, len(r.headers))
	for _, h := range r.headers {
		if !httpguts.ValidHeaderFieldName(h.Name) {
			return nil, fmt.Errorf("fetch: invalid header name %q", h.Name)
		}
		if !httpguts.ValidHeaderFieldValue(h.Value) {
			return nil, fmt.Errorf("fetch: invalid value for header %q", h.Name)
		}
		header.Set(h.Name, h.Value)
	}

	target, err := url.Parse(r.url)
	if err != nil {
		return nil, fmt.Errorf("fetch: parse url %q: %w", r.url, err)
	}
	if c.baseURL != nil {
		if target, err = httpx.ResolveURL(c.baseURL, r.url); err != nil {
			return nil, fmt.Errorf("fetch: %w", err)
		}
	}

	var body io.Reader
	switch {
	case r.file != nil:
		rc, err := r.file.Open()
		if err != nil {
			return nil, err
		}
		body = rc
		if header.Get(HeaderContentType) == "" {
			header.Set(HeaderContentType, r.file.MediaType.String())
		}
	case r.body != nil:
		body = bytes.NewReader(r.body)
	}

	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithCancel(ctx)
	req, err := http.NewRequestWithContext(ctx, string(r.method), target.String(), body)
	if err != nil {
		cancel()
		if rc, ok := body.(io.Closer); ok {
			_ = rc.Close()
		}
		return nil, fmt.Errorf("fetch: build request: %w", err)
	}
	req.Header = header

	id := uuid.NewString()
	logger := c.LoggerFor(r).With("request_id", id, "method", string(r.method), "url", target.String())
	for _, mt := range r.degraded {
		logger.Warn("unsupported media type requested, degrading to application/json", "media_type", mt.String())
	}

	pf := &PendingFetch{
		id:       id,
		url:      r.url,
		method:   r.method,
		timeout:  r.effectiveTimeout(),
		started:  time.Now(),
		done:     make(chan outcome, 1),
		cancel:   cancel,
		logger:   logger,
		observer: c.observer,
	}
	c.observer.FetchStarted(r.method)
	logger.Debug("fetch started")

	transport := c.transport
	go func() {
		resp, err := transport.Do(req)
		pf.done <- outcome{resp: resp, err: err}
	}()
	return pf, nil
}

// ID returns the request id used for log correlation.
func (pf *PendingFetch) ID() string { return pf.id }

// URL returns the request URL as given to the builder.
func (pf *PendingFetch) URL() string { return pf.url }

// Logger returns the request scoped logger.
func (pf *PendingFetch) Logger() *slog.Logger { return pf.logger }

// Abort cancels the in-flight network call. Only the first call has an
// effect.
func (pf *PendingFetch) Abort() {
	pf.once.Do(func() {
		pf.cancel()
		pf.observer.FetchAborted(pf.method)
	})
}

// release frees the request context once the body has been consumed.
func (pf *PendingFetch) release() {
	pf.once.Do(pf.cancel)
}

// WaitCompletion races the network call against the timeout.
func (pf *PendingFetch) WaitCompletion() Result[*http.Response] {
	timer := time.NewTimer(pf.timeout)
	defer timer.Stop()

	select {
	case out := <-pf.done:
		switch {
		case out.err != nil:
			pf.release()
			return failed[*http.Response](fail(status.FetchFailed, "Fetch failed (%v)", out.err))
		case out.resp == nil:
			pf.release()
			return failed[*http.Response](fail(status.FetchFailed, "Fetch network error"))
		default:
			return Result[*http.Response]{
				Status:   status.FromHTTP(out.resp.StatusCode),
				Value:    out.resp,
				HasValue: true,
			}
		}
	case <-timer.C:
		pf.Abort()
		go func() {
			if out := <-pf.done; out.resp != nil {
				httpx.DrainAndClose(out.resp.Body)
			}
		}()
		return failed[*http.Response](&Failure{Status: status.FetchTimeout, Hint: pf.url})
	}
}

func (pf *PendingFetch) finish(code status.Code) {
	elapsed := time.Since(pf.started)
	pf.observer.FetchFinished(pf.method, code, elapsed)
	pf.logger.Debug("fetch finished", "status", code.String(), "elapsed", elapsed)
}

type discard struct{}

func (discard) Enabled(context.Context, slog.Level) bool  { return false }
func (discard) Handle(context.Context, slog.Record) error { return nil }
func (d discard) WithAttrs([]slog.Attr) slog.Handler      { return d }
func (d discard) WithGroup(string) slog.Handler           { return d }
