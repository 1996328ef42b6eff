// Package mock provides a scripted fetch.Transport for tests and the mock
// runtime mode. Responses are matched by method and path; requests, call
// counts and aborts are recorded.
package mock

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"sync"
	"time"

	"github.com/fxamacker/cbor/v2"

	"github.com/Ratio1/fetchstore_sdk_go/internal/devseed"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/mac"
)

// ErrNoRoute is returned for requests that match no script and no handler.
var ErrNoRoute = errors.New("mock: no route")

// Response is one scripted reply.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
	// Err makes the transport fail with this error.
	Err error
	// Hang blocks until the request context is canceled.
	Hang bool
	// Empty makes the transport return neither a response nor an error.
	Empty bool
	Delay time.Duration
}

// Recorded is a request seen by the transport.
type Recorded struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte
}

// Option configures the transport.
type Option func(*Transport)

// WithHandler serves unmatched requests through h.
func WithHandler(h http.Handler) Option {
	return func(t *Transport) {
		t.handler = h
	}
}

// WithSigner signs every scripted response body into the signature header.
func WithSigner(s mac.Signer) Option {
	return func(t *Transport) {
		t.signer = s
	}
}

type script struct {
	queue []Response
}

// next pops the head of the queue; the last response repeats.
func (s *script) next() Response {
	r := s.queue[0]
	if len(s.queue) > 1 {
		s.queue = s.queue[1:]
	}
	return r
}

// Transport implements fetch.Transport in memory.
type Transport struct {
	mu       sync.Mutex
	routes   map[string]*script
	calls    map[string]int
	requests []Recorded
	aborts   int
	handler  http.Handler
	signer   mac.Signer
}

// New creates an empty transport.
func New(opts ...Option) *Transport {
	t := &Transport{
		routes: make(map[string]*script),
		calls:  make(map[string]int),
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func key(method, path string) string {
	return method + " " + path
}

// On scripts responses for method and path.
func (t *Transport) On(method, path string, responses ...Response) *Transport {
	if len(responses) == 0 {
		responses = []Response{{Status: http.StatusOK}}
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	t.routes[key(method, path)] = &script{queue: append([]Response(nil), responses...)}
	return t
}

// Seed scripts the canned routes of a seed document.
func (t *Transport) Seed(seed *devseed.Seed) error {
	if seed == nil {
		return nil
	}
	for _, r := range seed.Routes {
		body, contentType, err := r.Payload()
		if err != nil {
			return err
		}
		header := make(http.Header)
		if contentType != "" {
			header.Set("Content-Type", contentType)
		}
		for k, v := range r.Headers {
			header.Set(k, v)
		}
		t.On(r.Method, r.Path, Response{
			Status: r.Status,
			Header: header,
			Body:   body,
			Delay:  time.Duration(r.Delay),
		})
	}
	return nil
}

// Do implements fetch.Transport.
func (t *Transport) Do(req *http.Request) (*http.Response, error) {
	var body []byte
	if req.Body != nil {
		data, err := io.ReadAll(req.Body)
		_ = req.Body.Close()
		if err != nil {
			return nil, fmt.Errorf("mock: read request body: %w", err)
		}
		body = data
	}

	k := key(req.Method, req.URL.Path)
	t.mu.Lock()
	t.calls[k]++
	t.requests = append(t.requests, Recorded{
		Method: req.Method,
		Path:   req.URL.Path,
		Header: req.Header.Clone(),
		Body:   body,
	})
	s, scripted := t.routes[k]
	var resp Response
	if scripted {
		resp = s.next()
	}
	handler := t.handler
	t.mu.Unlock()

	if !scripted {
		if handler == nil {
			return nil, fmt.Errorf("%w for %s", ErrNoRoute, k)
		}
		return t.serve(handler, req, body)
	}

	ctx := req.Context()
	if resp.Hang {
		<-ctx.Done()
		t.mu.Lock()
		t.aborts++
		t.mu.Unlock()
		return nil, ctx.Err()
	}
	if resp.Delay > 0 {
		timer := time.NewTimer(resp.Delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			t.mu.Lock()
			t.aborts++
			t.mu.Unlock()
			return nil, ctx.Err()
		case <-timer.C:
		}
	}
	if resp.Err != nil {
		return nil, resp.Err
	}
	if resp.Empty {
		return nil, nil
	}
	return t.build(req, resp), nil
}

func (t *Transport) build(req *http.Request, r Response) *http.Response {
	code := r.Status
	if code == 0 {
		code = http.StatusOK
	}
	header := r.Header.Clone()
	if header == nil {
		header = make(http.Header)
	}
	if t.signer != nil && len(r.Body) > 0 && header.Get(mac.Header) == "" {
		if sig, ok := t.signer.Sign(r.Body); ok {
			header.Set(mac.Header, sig)
		}
	}
	return &http.Response{
		Status:        fmt.Sprintf("%d %s", code, http.StatusText(code)),
		StatusCode:    code,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(r.Body)),
		ContentLength: int64(len(r.Body)),
		Request:       req,
	}
}

func (t *Transport) serve(h http.Handler, req *http.Request, body []byte) (*http.Response, error) {
	clone := req.Clone(req.Context())
	clone.Body = io.NopCloser(bytes.NewReader(body))
	clone.RequestURI = req.URL.RequestURI()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, clone)
	if err := req.Context().Err(); err != nil {
		t.mu.Lock()
		t.aborts++
		t.mu.Unlock()
		return nil, err
	}
	resp := rec.Result()
	resp.Request = req
	return resp, nil
}

// Calls returns how often method and path were requested.
func (t *Transport) Calls(method, path string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.calls[key(method, path)]
}

// TotalCalls returns the number of requests seen.
func (t *Transport) TotalCalls() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.requests)
}

// Aborts returns how many in-flight requests observed cancellation.
func (t *Transport) Aborts() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.aborts
}

// Requests returns a copy of the recorded requests.
func (t *Transport) Requests() []Recorded {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]Recorded(nil), t.requests...)
}

// LastRequest returns the most recent request.
func (t *Transport) LastRequest() (Recorded, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if len(t.requests) == 0 {
		return Recorded{}, false
	}
	return t.requests[len(t.requests)-1], true
}

// Routes lists scripted routes in sorted order.
func (t *Transport) Routes() []string {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]string, 0, len(t.routes))
	for k := range t.routes {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

// JSON builds a response with a JSON body.
func JSON(status int, v any) Response {
	data, err := json.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("mock: encode json: %v", err))
	}
	return Raw(status, "application/json", data)
}

// CBOR builds a response with a CBOR body.
func CBOR(status int, v any) Response {
	data, err := cbor.Marshal(v)
	if err != nil {
		panic(fmt.Sprintf("mock: encode cbor: %v", err))
	}
	return Raw(status, "application/cbor", data)
}

// Raw builds a response with an explicit content type. An empty content type
// omits the header.
func Raw(status int, contentType string, body []byte) Response {
	header := make(http.Header)
	if contentType != "" {
		header.Set("Content-Type", contentType)
	}
	return Response{Status: status, Header: header, Body: body}
}

// Hang builds a response that never completes on its own.
func Hang() Response {
	return Response{Hang: true}
}

// Fail builds a transport error.
func Fail(err error) Response {
	return Response{Err: err}
}
