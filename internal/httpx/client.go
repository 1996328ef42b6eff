package httpx

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the HTTP client used by the helper.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpClient = h
		}
	}
}

// WithHeaders assigns default headers added to every request unless the
// request already carries a value for the same name.
func WithHeaders(h http.Header) Option {
	return func(c *Client) {
		for k, values := range h {
			for _, v := range values {
				c.headers.Add(k, v)
			}
		}
	}
}

// WithBaseURL sets the URL relative request targets are resolved against.
func WithBaseURL(base *url.URL) Option {
	return func(c *Client) {
		c.baseURL = base
	}
}

// Client wraps http.Client with base URL resolution and default headers. It
// never retries: every Do is a single round trip.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	headers    http.Header
}

// NewClient creates a Client.
func NewClient(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{},
		headers:    make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// ParseBaseURL validates an absolute base URL.
func ParseBaseURL(raw string) (*url.URL, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, errors.New("httpx: base URL is required")
	}
	u, err := url.Parse(raw)
	if err != nil {
		return nil, fmt.Errorf("httpx: parse base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("httpx: base URL %q must be absolute", raw)
	}
	if !strings.HasSuffix(u.Path, "/") {
		u.Path += "/"
	}
	return u, nil
}

// ResolveURL resolves ref against base. Absolute refs are returned unchanged;
// a nil base requires an absolute ref.
func ResolveURL(base *url.URL, ref string) (*url.URL, error) {
	parsed, err := url.Parse(ref)
	if err != nil {
		return nil, fmt.Errorf("httpx: parse url %q: %w", ref, err)
	}
	if parsed.IsAbs() {
		return parsed, nil
	}
	if base == nil {
		return nil, fmt.Errorf("httpx: relative url %q without base URL", ref)
	}
	parsed.Path = strings.TrimPrefix(parsed.Path, "/")
	return base.ResolveReference(parsed), nil
}

// BaseURL returns the configured base URL, or nil.
func (c *Client) BaseURL() *url.URL {
	return c.baseURL
}

// Do resolves the request URL, applies default headers and performs a single
// round trip.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("httpx: request is nil")
	}
	if req.URL != nil && !req.URL.IsAbs() {
		full, err := ResolveURL(c.baseURL, req.URL.String())
		if err != nil {
			return nil, err
		}
		req.URL = full
		req.Host = ""
	}
	for k, values := range c.headers {
		if _, ok := req.Header[k]; ok {
			continue
		}
		req.Header[k] = append([]string(nil), values...)
	}
	return c.httpClient.Do(req)
}

// ReadAllAndClose drains the reader and ensures it is closed.
func ReadAllAndClose(rc io.ReadCloser) ([]byte, error) {
	if rc == nil {
		return nil, nil
	}
	defer closeBody(rc)
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, err
	}
	return data, nil
}

// DrainAndClose discards what is left of rc so the connection can be reused.
func DrainAndClose(rc io.ReadCloser) {
	if rc == nil {
		return
	}
	_, _ = io.Copy(io.Discard, rc)
	closeBody(rc)
}

func closeBody(rc io.ReadCloser) {
	if rc != nil {
		_ = rc.Close()
	}
}

// CloneHeader deep copies src.
func CloneHeader(src http.Header) http.Header {
	dst := make(http.Header, len(src))
	for k, values := range src {
		vCopy := make([]string, len(values))
		copy(vCopy, values)
		dst[k] = vCopy
	}
	return dst
}
