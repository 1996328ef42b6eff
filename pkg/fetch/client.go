// Package fetch starts network requests and turns their responses into
// status codes and decoded payloads. It never returns transport errors to
// callers: every outcome resolves to a status.Code with an optional hint.
package fetch

import (
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/Ratio1/fetchstore_sdk_go/internal/httpx"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/codec"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/mac"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/status"
)

// ErrNilClient is returned when a request is started without a client.
var ErrNilClient = errors.New("fetch: client is nil")

// Transport performs one network round trip.
type Transport interface {
	Do(req *http.Request) (*http.Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(req *http.Request) (*http.Response, error)

func (f TransportFunc) Do(req *http.Request) (*http.Response, error) { return f(req) }

// Observer receives fetch lifecycle events, typically for metrics.
type Observer interface {
	FetchStarted(method Method)
	FetchFinished(method Method, code status.Code, elapsed time.Duration)
	FetchAborted(method Method)
}

type nopObserver struct{}

func (nopObserver) FetchStarted(Method)                              {}
func (nopObserver) FetchFinished(Method, status.Code, time.Duration) {}
func (nopObserver) FetchAborted(Method)                              {}

// Option configures a Client.
type Option func(*Client)

// WithTransport replaces the network transport. Relative request URLs are
// still resolved against WithBaseURL before reaching it.
func WithTransport(t Transport) Option {
	return func(c *Client) {
		if t != nil {
			c.transport = t
		}
	}
}

// WithHTTPClient sets the http.Client used by the default transport.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		c.httpClient = h
	}
}

// ParseBaseURL validates an absolute base URL for WithBaseURL.
func ParseBaseURL(raw string) (*url.URL, error) {
	return httpx.ParseBaseURL(raw)
}

// WithBaseURL sets the URL relative request targets resolve against.
func WithBaseURL(base *url.URL) Option {
	return func(c *Client) {
		c.baseURL = base
	}
}

// WithHeaders adds default headers to every request.
func WithHeaders(h http.Header) Option {
	return func(c *Client) {
		for k, values := range h {
			for _, v := range values {
				c.headers.Add(k, v)
			}
		}
	}
}

// WithSigner sets the policy used to sign outbound bodies.
func WithSigner(s mac.Signer) Option {
	return func(c *Client) {
		if s != nil {
			c.signer = s
		}
	}
}

// WithVerifier sets the policy used to verify response bodies.
func WithVerifier(v mac.Verifier) Option {
	return func(c *Client) {
		if v != nil {
			c.verifier = v
		}
	}
}

// WithCodecs replaces the codec registry.
func WithCodecs(r codec.Registry) Option {
	return func(c *Client) {
		if r != nil {
			c.codecs = r
		}
	}
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithObserver sets the lifecycle observer.
func WithObserver(o Observer) Option {
	return func(c *Client) {
		if o != nil {
			c.observer = o
		}
	}
}

// Client bundles the capabilities the fetch pipeline needs. It is safe for
// concurrent use.
type Client struct {
	transport  Transport
	httpClient *http.Client
	baseURL    *url.URL
	headers    http.Header
	signer     mac.Signer
	verifier   mac.Verifier
	codecs     codec.Registry
	logger     *slog.Logger
	observer   Observer
}

// NewClient builds a Client. Without WithTransport it talks HTTP through
// internal/httpx.
func NewClient(opts ...Option) *Client {
	c := &Client{
		headers:  make(http.Header),
		signer:   mac.NoMAC{},
		verifier: mac.NoMAC{},
		codecs:   codec.Default(),
		logger:   slog.New(discard{}),
		observer: nopObserver{},
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.transport == nil {
		c.transport = httpx.NewClient(
			httpx.WithHTTPClient(c.httpClient),
			httpx.WithBaseURL(c.baseURL),
			httpx.WithHeaders(c.headers),
		)
	} else if len(c.headers) > 0 {
		c.transport = headerTransport{next: c.transport, headers: c.headers}
	}
	return c
}

func (c *Client) Signer() mac.Signer     { return c.signer }
func (c *Client) Verifier() mac.Verifier { return c.verifier }
func (c *Client) Codecs() codec.Registry { return c.codecs }
func (c *Client) Logger() *slog.Logger   { return c.logger }
func (c *Client) BaseURL() *url.URL      { return c.baseURL }

type headerTransport struct {
	next    Transport
	headers http.Header
}

func (t headerTransport) Do(req *http.Request) (*http.Response, error) {
	for k, values := range t.headers {
		if _, ok := req.Header[k]; !ok {
			req.Header[k] = append([]string(nil), values...)
		}
	}
	return t.next.Do(req)
}

// LoggerFor returns the client logger, or a discarding logger when r has
// logging disabled.
func (c *Client) LoggerFor(r Request) *slog.Logger {
	if !r.logging {
		return slog.New(discard{})
	}
	return c.logger
}
