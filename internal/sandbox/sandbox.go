// Package sandbox is a development server speaking the entity and collection
// envelope protocol. Collections live in memory and are addressed as
// /{collection} and /{collection}/{id}; canned routes from a seed document
// take precedence.
package sandbox

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"math/rand/v2"
	"net/http"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/Ratio1/fetchstore_sdk_go/internal/devseed"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/codec"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/envelope"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/fetch"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/mac"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/mediatype"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/messages"
)

// Item is a stored entity. Items are matched by their "id" field.
type Item = map[string]any

// Config tunes the server.
type Config struct {
	// Latency delays every response.
	Latency time.Duration
	Fail    FailConfig
	// Signer signs response bodies. Verifier checks request bodies.
	Signer   mac.Signer
	Verifier mac.Verifier
	Logger   *slog.Logger
	// MaxBody bounds request bodies; zero means 1 MiB.
	MaxBody int64
}

// Server serves in-memory collections.
type Server struct {
	cfg    Config
	logger *slog.Logger
	codecs codec.Registry
	rand   func() float64

	mu          sync.RWMutex
	collections map[string][]Item
	canned      []devseed.Route

	router *mux.Router
	once   sync.Once
}

// New returns a server with no collections.
func New(cfg Config) *Server {
	if cfg.Signer == nil {
		cfg.Signer = mac.NoMAC{}
	}
	if cfg.Verifier == nil {
		cfg.Verifier = mac.NoMAC{}
	}
	if cfg.MaxBody <= 0 {
		cfg.MaxBody = 1 << 20
	}
	logger := cfg.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Server{
		cfg:         cfg,
		logger:      logger,
		codecs:      codec.Default(),
		rand:        rand.Float64,
		collections: make(map[string][]Item),
	}
}

// Seed loads collections and canned routes. Seed must be called before
// Handler.
func (s *Server) Seed(seed *devseed.Seed) error {
	if seed == nil {
		return nil
	}
	if err := seed.Validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for name, items := range seed.Collections {
		list := make([]Item, 0, len(items))
		for _, it := range items {
			list = append(list, cloneItem(it))
		}
		s.collections[name] = list
	}
	s.canned = append(s.canned, seed.Routes...)
	return nil
}

// Collection returns a copy of the named collection.
func (s *Server) Collection(name string) ([]Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items, ok := s.collections[name]
	if !ok {
		return nil, false
	}
	out := make([]Item, len(items))
	for i, it := range items {
		out[i] = cloneItem(it)
	}
	return out, true
}

// Handler returns the router. It is built once.
func (s *Server) Handler() http.Handler {
	s.once.Do(s.buildRouter)
	return s.router
}

func (s *Server) buildRouter() {
	r := mux.NewRouter()
	r.Use(s.logging, s.latency, s.failures)

	r.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}).Methods(http.MethodGet)

	s.mu.RLock()
	for _, route := range s.canned {
		r.Handle(route.Path, s.cannedHandler(route)).Methods(route.Method)
	}
	s.mu.RUnlock()

	r.HandleFunc("/{collection}", s.listCollection).Methods(http.MethodGet)
	r.HandleFunc("/{collection}", s.replaceCollection).Methods(http.MethodPut)
	r.HandleFunc("/{collection}", s.createItem).Methods(http.MethodPost)
	r.HandleFunc("/{collection}/{id}", s.getItem).Methods(http.MethodGet)
	r.HandleFunc("/{collection}/{id}", s.updateItem).Methods(http.MethodPut)
	r.HandleFunc("/{collection}/{id}", s.deleteItem).Methods(http.MethodDelete)

	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		s.respond(w, req, http.StatusNotFound, envelope.NewEntityResponse[Item](
			messages.FromServiceError("No route for {0} {1}", req.Method, req.URL.Path), nil))
	})
	s.router = r
}

func (s *Server) cannedHandler(route devseed.Route) http.Handler {
	body, contentType, err := route.Payload()
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}
		if d := time.Duration(route.Delay); d > 0 {
			timer := time.NewTimer(d)
			select {
			case <-r.Context().Done():
				timer.Stop()
				return
			case <-timer.C:
			}
		}
		for k, v := range route.Headers {
			w.Header().Set(k, v)
		}
		if contentType != "" {
			w.Header().Set(fetch.HeaderContentType, contentType)
		}
		if sig, ok := s.cfg.Signer.Sign(body); ok && len(body) > 0 && w.Header().Get(mac.Header) == "" {
			w.Header().Set(mac.Header, sig)
		}
		w.WriteHeader(route.Status)
		_, _ = w.Write(body)
	})
}

// accept picks the response encoding from the Accept header.
func (s *Server) accept(r *http.Request) mediatype.MediaType {
	if mediatype.FromHeader(r.Header.Get(fetch.HeaderAccept)) == mediatype.Cbor {
		return mediatype.Cbor
	}
	return mediatype.Json
}

func (s *Server) respond(w http.ResponseWriter, r *http.Request, code int, payload any) {
	mt := s.accept(r)
	data, err := s.codecs.Marshal(mt, payload)
	if err != nil {
		s.logger.Error("encode response", "error", err)
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set(fetch.HeaderContentType, mt.String())
	if sig, ok := s.cfg.Signer.Sign(data); ok {
		w.Header().Set(mac.Header, sig)
	}
	w.WriteHeader(code)
	_, _ = w.Write(data)
}

func (s *Server) fail(w http.ResponseWriter, r *http.Request, code int, msgs *messages.Messages) {
	s.respond(w, r, code, envelope.NewEntityResponse[Item](msgs, nil))
}

var errBodyRejected = errors.New("request body rejected")

// decodeBody reads, verifies and decodes the request body into v. On failure
// the response has already been written.
func (s *Server) decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	_, err := s.decodeOptionalBody(w, r, v, false)
	return err
}

// decodeOptionalBody is decodeBody that, with allowEmpty, reports an empty
// body instead of rejecting it. Empty bodies carry no signature.
func (s *Server) decodeOptionalBody(w http.ResponseWriter, r *http.Request, v any, allowEmpty bool) (empty bool, err error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.cfg.MaxBody))
	if err != nil {
		var tooBig *http.MaxBytesError
		if errors.As(err, &tooBig) {
			s.fail(w, r, http.StatusRequestEntityTooLarge, messages.FromServiceError("Request body exceeds {0} bytes", strconv.FormatInt(s.cfg.MaxBody, 10)))
			return false, errBodyRejected
		}
		s.fail(w, r, http.StatusBadRequest, messages.FromServiceError("Reading request body failed"))
		return false, errBodyRejected
	}
	if len(data) == 0 && allowEmpty {
		return true, nil
	}
	mt := mediatype.FromHeader(r.Header.Get(fetch.HeaderContentType))
	if !s.codecs.Supports(mt) {
		s.fail(w, r, http.StatusUnsupportedMediaType, messages.FromServiceError("Unsupported media type {0}", mt.String()))
		return false, errBodyRejected
	}
	ok, err := s.cfg.Verifier.Verify(data, r.Header.Get(mac.Header))
	if err != nil || !ok {
		s.fail(w, r, http.StatusUnauthorized, messages.FromServiceError("Request signature is invalid"))
		return false, errBodyRejected
	}
	if len(data) == 0 {
		s.fail(w, r, http.StatusBadRequest, messages.FromServiceError("Request body is empty"))
		return false, errBodyRejected
	}
	if err := s.codecs.Unmarshal(mt, data, v); err != nil {
		s.fail(w, r, http.StatusBadRequest, messages.FromServiceError("Request body is malformed: {0}", err.Error()))
		return false, errBodyRejected
	}
	return false, nil
}

func cloneItem(it Item) Item {
	out := make(Item, len(it))
	for k, v := range it {
		out[k] = v
	}
	return out
}

func indexOf(items []Item, id string) int {
	return slices.IndexFunc(items, func(it Item) bool { return devseed.ItemID(it) == id })
}

func newID() string { return uuid.NewString() }

func pageLink(collection string, cursor, limit int) string {
	return fmt.Sprintf("/%s?cursor=%d&limit=%d", collection, cursor, limit)
}
