package store

import (
	"github.com/Ratio1/fetchstore_sdk_go/pkg/envelope"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/fetch"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/messages"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/reactive"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/status"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/transfer"
)

// EntityStore binds a single optional entity to fetch results.
type EntityStore[E any] struct {
	transferAccessors
	core     *core
	messages *messages.Messages
	entity   *reactive.Cell[reactive.Maybe[E]]
}

// NewEntityStore returns an empty store.
func NewEntityStore[E any](client *fetch.Client, opts ...Option) *EntityStore[E] {
	c := newCore(client, opts)
	return &EntityStore[E]{
		transferAccessors: transferAccessors{c: c},
		core:              c,
		messages:          messages.New(),
		entity:            reactive.NewOption(reactive.None[E]()),
	}
}

// NewEntityStoreWithValue returns a store holding entity.
func NewEntityStoreWithValue[E any](client *fetch.Client, entity E, opts ...Option) *EntityStore[E] {
	s := NewEntityStore[E](client, opts...)
	s.entity.Set(reactive.Some(entity))
	return s
}

// Messages returns the store messages.
func (s *EntityStore[E]) Messages() *messages.Messages { return s.messages }

// Entity exposes the value cell for subscription.
func (s *EntityStore[E]) Entity() *reactive.Cell[reactive.Maybe[E]] { return s.entity }

// Get returns the entity and whether one is present.
func (s *EntityStore[E]) Get() (E, bool) { return s.entity.Get().Get() }

// Set stores entity.
func (s *EntityStore[E]) Set(entity E) { s.entity.Set(reactive.Some(entity)) }

// SetMaybe stores an optional entity.
func (s *EntityStore[E]) SetMaybe(entity reactive.Maybe[E]) { s.entity.Set(entity) }

// SetIfChanged stores entity when equal reports a difference.
func (s *EntityStore[E]) SetIfChanged(entity E, equal func(a, b E) bool) bool {
	return s.entity.SetIfChanged(reactive.Some(entity), reactive.MaybeEqual(equal))
}

// Replace stores entity and returns the previous value.
func (s *EntityStore[E]) Replace(entity reactive.Maybe[E]) reactive.Maybe[E] {
	return s.entity.Replace(entity)
}

// Reset removes the entity.
func (s *EntityStore[E]) Reset() { s.entity.Set(reactive.None[E]()) }

// Empty reports whether no entity is present.
func (s *EntityStore[E]) Empty() bool { return !s.entity.Get().Valid }

// Inspect calls fn with the entity when present.
func (s *EntityStore[E]) Inspect(fn func(E)) {
	s.entity.Read(func(m reactive.Maybe[E]) {
		if m.Valid {
			fn(m.Value)
		}
	})
}

// InspectMut lets fn modify the entity in place when present.
func (s *EntityStore[E]) InspectMut(fn func(*E)) {
	s.entity.Update(func(m reactive.Maybe[E]) reactive.Maybe[E] {
		if m.Valid {
			fn(&m.Value)
		}
		return m
	})
}

// SetExternallyLoaded stores entity and marks the store Loaded(Ok) without a
// fetch.
func (s *EntityStore[E]) SetExternallyLoaded(entity reactive.Maybe[E]) {
	s.entity.Set(entity)
	s.SetTransferState(transfer.Loaded(status.Ok))
}

// Invalidate forces the next Load to fetch. Results of fetches still in flight
// are dropped.
func (s *EntityStore[E]) Invalidate() {
	s.core.supersede()
	s.core.state.Set(transfer.Empty())
}

// ResetToEmpty clears state, messages and value.
func (s *EntityStore[E]) ResetToEmpty() {
	s.reset(reactive.None[E]())
}

// ResetToDefault clears state and messages and stores the zero entity.
func (s *EntityStore[E]) ResetToDefault() {
	var zero E
	s.reset(reactive.Some(zero))
}

// ResetToValue clears state and messages and stores entity.
func (s *EntityStore[E]) ResetToValue(entity E) {
	s.reset(reactive.Some(entity))
}

func (s *EntityStore[E]) reset(entity reactive.Maybe[E]) {
	s.core.supersede()
	s.core.state.Set(transfer.Empty())
	s.messages.ClearAll()
	s.entity.Set(entity)
}

// Load fetches the entity unless the store is already loaded. A cache hit
// issues no request and fires no callback.
func (s *EntityStore[E]) Load(req fetch.Request, cb fetch.Callback) {
	if s.Loaded() {
		logger := s.core.client.LoggerFor(req)
		logger.Debug("request to load skipped, using cache", "url", req.URL())
		logIntent(logger, "load", req, true)
		return
	}
	s.LoadSkipCache(req, cb)
}

// LoadSkipCache fetches the entity unconditionally.
func (s *EntityStore[E]) LoadSkipCache(req fetch.Request, cb fetch.Callback) {
	logger := s.core.client.LoggerFor(req)
	logger.Debug("request to load", "url", req.URL())
	logIntent(logger, "load", req, true)
	fetchEntity(s.core, req.WithIsLoad(true), s.messages, s.entity, cb)
}

// Store sends the current entity. When the request wants a response, the
// returned entity replaces the stored one.
func (s *EntityStore[E]) Store(req fetch.Request, cb fetch.Callback) {
	var target *reactive.Cell[reactive.Maybe[E]]
	if req.WantsResponse() {
		target = s.entity
	}
	storeEntity(s.core, req.WithIsLoad(false), s.messages, s.entity, target, cb)
}

// Execute sends a store-verb request without payload; only messages are
// applied from the response.
func (s *EntityStore[E]) Execute(req fetch.Request, cb fetch.Callback) {
	logger := s.core.client.LoggerFor(req)
	logger.Debug("request to execute", "url", req.URL())
	logIntent(logger, "execute", req, false)
	fetchEntity[any](s.core, req.WithIsLoad(false), s.messages, nil, cb)
}

// LoadWithRequest sends request as the payload of a load and stores the
// returned entity in s.
func LoadWithRequest[E, Q any](s *EntityStore[E], req fetch.Request, request *reactive.Cell[reactive.Maybe[Q]], cb fetch.Callback) {
	storeEntity(s.core, req.WithIsLoad(true), s.messages, request, s.entity, cb)
}

// StoreWithResponse sends the entity of s and writes the returned entity into
// response.
func StoreWithResponse[E, R any](s *EntityStore[E], req fetch.Request, response *reactive.Cell[reactive.Maybe[R]], cb fetch.Callback) {
	storeEntity(s.core, req.WithIsLoad(false), s.messages, s.entity, response, cb)
}

// ExecuteWithResponse sends a store-verb request without payload and writes
// the returned entity into response.
func ExecuteWithResponse[E, R any](s *EntityStore[E], req fetch.Request, response *reactive.Cell[reactive.Maybe[R]], cb fetch.Callback) {
	logger := s.core.client.LoggerFor(req)
	logger.Debug("request to execute", "url", req.URL())
	logIntent(logger, "execute", req, false)
	if !req.WantsResponse() {
		logger.Warn("execute expects a response, but the request does not ask for one", "url", req.URL())
	}
	fetchEntity(s.core, req.WithIsLoad(false), s.messages, response, cb)
}

func storeEntity[Q, R any](c *core, req fetch.Request, msgs *messages.Messages, payload *reactive.Cell[reactive.Maybe[Q]], target *reactive.Cell[reactive.Maybe[R]], cb fetch.Callback) {
	logger := c.client.LoggerFor(req)
	logger.Debug("request to store", "url", req.URL())
	if !req.IsLoad() {
		logIntent(logger, "store", req, false)
	}
	if target == nil && req.WantsResponse() {
		logger.Warn("store request wants a response but defines no response entity", "url", req.URL())
	}

	if !guardMediaType(c, req, msgs, cb) {
		return
	}
	entity, ok := payload.Get().Get()
	if !ok {
		logger.Error("cannot store a nonexistent entity", "url", req.URL())
		return
	}
	req, ok = marshalBody(c, req, msgs, entity, cb)
	if !ok {
		return
	}
	fetchEntity(c, req, msgs, target, cb)
}

func fetchEntity[R any](c *core, req fetch.Request, msgs *messages.Messages, target *reactive.Cell[reactive.Maybe[R]], cb fetch.Callback) {
	logger := c.client.LoggerFor(req)
	run(c, req, cb, func(resp envelope.EntityResponse[R]) {
		msgs.Replace(resp.MessagesOrEmpty())
		if resp.Entity != nil && target != nil {
			logger.Debug("request successfully loaded entity", "url", req.URL())
			target.Set(reactive.Some(*resp.Entity))
		}
	})
}
