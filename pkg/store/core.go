// Package store binds fetch results to observable state. EntityStore holds a
// single optional value, CollectionStore an ordered list with paging, and
// UploadStore only a transfer state.
//
// Load, Store and Execute return immediately. The network call and the
// result application run on a goroutine; the terminal transfer state is
// written before the callback fires. Each fetch takes a generation number and
// only the most recently issued fetch of a store applies its result: stale
// completions still invoke their callback but leave the store untouched.
package store

import (
	"context"
	"log/slog"
	"sync"

	"github.com/sourcegraph/conc"

	"github.com/Ratio1/fetchstore_sdk_go/pkg/fetch"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/mac"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/messages"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/reactive"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/status"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/transfer"
)

const msgUnsupportedMediaType = "Request failed as unsupported media type is requested"

// Option configures a store.
type Option func(*core)

// WithContext sets the parent context of every fetch the store starts.
func WithContext(ctx context.Context) Option {
	return func(c *core) {
		if ctx != nil {
			c.ctx = ctx
		}
	}
}

// core is the fetch orchestration shared by all stores.
type core struct {
	client *fetch.Client
	ctx    context.Context
	state  *reactive.Cell[transfer.State]

	mu  sync.Mutex
	gen uint64

	wg conc.WaitGroup
}

func newCore(client *fetch.Client, opts []Option) *core {
	if client == nil {
		client = fetch.NewClient()
	}
	c := &core{
		client: client,
		ctx:    context.Background(),
		state:  reactive.NewCell(transfer.Empty()),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// supersede discards the results of every fetch issued so far.
func (c *core) supersede() {
	c.mu.Lock()
	c.gen++
	c.mu.Unlock()
}

// abortPreflight records a failure that happened before any network call.
func (c *core) abortPreflight(isLoad bool, code status.Code) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	if isLoad {
		c.state.Set(transfer.Loaded(code))
	} else {
		c.state.Set(transfer.Stored(code))
	}
}

func (c *core) stop(code status.Code, logger *slog.Logger) {
	var from transfer.State
	var ok bool
	c.state.Update(func(s transfer.State) transfer.State {
		from = s
		var next transfer.State
		next, ok = s.Stopped(code)
		return next
	})
	if !ok {
		logger.Error("transfer stopped from a non-pending state", "state", from.String(), "status", code.String())
	}
}

func callback(cb fetch.Callback) fetch.Callback {
	if cb == nil {
		return fetch.None
	}
	return cb
}

// run starts req and, on completion, hands a decoded payload to apply while
// the store generation is still current.
func run[R any](c *core, req fetch.Request, cb fetch.Callback, apply func(R)) {
	cb = callback(cb)
	logger := c.client.LoggerFor(req)

	pf, err := req.Start(c.ctx, c.client)
	if err != nil {
		logger.Debug("request failed at init", "url", req.URL(), "error", err)
		c.abortPreflight(req.IsLoad(), status.FetchFailed)
		cb(status.BadRequest)
		return
	}
	logger = pf.Logger()

	c.mu.Lock()
	c.gen++
	gen := c.gen
	if req.IsLoad() {
		c.state.Update(transfer.State.StartLoad)
	} else {
		c.state.Update(transfer.State.StartStore)
	}
	c.mu.Unlock()

	c.wg.Go(func() {
		res := fetch.Execute[R](pf, c.client)
		switch res.Status {
		case status.FetchTimeout:
			logger.Debug("timeout accessing", "hint", res.Hint)
		case status.FetchFailed:
			logger.Debug("request failed in execution", "hint", res.Hint)
		case status.DecodeFailed:
			logger.Warn("response decoding failed", "hint", res.Hint)
		}

		c.mu.Lock()
		if gen == c.gen {
			if res.HasValue && apply != nil {
				apply(res.Value)
			}
			c.stop(res.Status, logger)
		} else {
			logger.Debug("superseded fetch completed, result dropped", "status", res.Status.String())
		}
		c.mu.Unlock()

		cb(res.Status)
	})
}

func logIntent(logger *slog.Logger, op string, req fetch.Request, wantLoad bool) {
	m := req.Method()
	switch {
	case wantLoad && !m.IsLoad():
		logger.Warn(op+" request unexpectedly uses store verb", "method", string(m), "url", req.URL())
	case !wantLoad && m.IsLoad():
		logger.Warn(op+" request unexpectedly uses load verb", "method", string(m), "url", req.URL())
	}
}

// encodeBody serializes payload for the request's declared media type and
// attaches signature and body. ok is false when the request was aborted.
func encodeBody(c *core, req fetch.Request, msgs *messages.Messages, payload any, cb fetch.Callback) (fetch.Request, bool) {
	if !guardMediaType(c, req, msgs, cb) {
		return req, false
	}
	return marshalBody(c, req, msgs, payload, cb)
}

// guardMediaType aborts req when it declares no media type the client can
// encode. It reports whether the request may proceed.
func guardMediaType(c *core, req fetch.Request, msgs *messages.Messages, cb fetch.Callback) bool {
	mt, declared := req.MediaType()
	if declared && c.client.Codecs().Supports(mt) {
		return true
	}
	c.client.LoggerFor(req).Warn(msgUnsupportedMediaType, "url", req.URL())
	msgs.Replace(messages.FromServiceError(msgUnsupportedMediaType))
	c.abortPreflight(req.IsLoad(), status.UnsupportedMediaType)
	callback(cb)(status.UnsupportedMediaType)
	return false
}

// marshalBody is encodeBody for a request whose media type already passed
// guardMediaType.
func marshalBody(c *core, req fetch.Request, msgs *messages.Messages, payload any, cb fetch.Callback) (fetch.Request, bool) {
	logger := c.client.LoggerFor(req)
	mt, _ := req.MediaType()
	data, err := c.client.Codecs().Marshal(mt, payload)
	if err != nil {
		logger.Error("request serialization failed", "url", req.URL(), "error", err)
		msgs.Replace(messages.FromServiceError("Request serialization failed: " + err.Error()))
		c.abortPreflight(req.IsLoad(), status.BadRequest)
		callback(cb)(status.BadRequest)
		return req, false
	}
	if sig, ok := c.client.Signer().Sign(data); ok {
		req = req.WithHeader(mac.Header, sig)
	}
	return req.WithBody(data), true
}

// transferAccessors are shared by every store type.
type transferAccessors struct {
	c *core
}

// TransferState returns the current transfer state.
func (t transferAccessors) TransferState() transfer.State { return t.c.state.Get() }

// TransferStateCell exposes the transfer state for subscription.
func (t transferAccessors) TransferStateCell() *reactive.Cell[transfer.State] { return t.c.state }

// SetTransferState overwrites the transfer state when it differs.
func (t transferAccessors) SetTransferState(s transfer.State) { reactive.SetNeq(t.c.state, s) }

// ResetTransferError clears a failure code on a terminal state.
func (t transferAccessors) ResetTransferError() { t.c.state.Update(transfer.State.ResetError) }

func (t transferAccessors) Pending() bool { return t.c.state.Get().Pending() }
func (t transferAccessors) Loaded() bool  { return t.c.state.Get().Loaded() }
func (t transferAccessors) Stored() bool  { return t.c.state.Get().Stored() }

func (t transferAccessors) LoadedStatus() (status.Code, bool) { return t.c.state.Get().LoadedStatus() }
func (t transferAccessors) StoredStatus() (status.Code, bool) { return t.c.state.Get().StoredStatus() }

// Wait blocks until every fetch started by the store has completed and its
// callback returned.
func (t transferAccessors) Wait() { t.c.wg.Wait() }
