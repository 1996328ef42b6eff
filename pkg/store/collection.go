package store

import (
	"context"
	"slices"

	"github.com/Ratio1/fetchstore_sdk_go/pkg/envelope"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/fetch"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/messages"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/reactive"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/transfer"
)

// CollectionStore binds an ordered list of entities and its paging to fetch
// results.
type CollectionStore[E any] struct {
	transferAccessors
	core       *core
	messages   *messages.Messages
	paging     *reactive.Cell[envelope.Paging]
	collection *reactive.List[E]
}

// NewCollectionStore returns an empty store.
func NewCollectionStore[E any](client *fetch.Client, opts ...Option) *CollectionStore[E] {
	c := newCore(client, opts)
	return &CollectionStore[E]{
		transferAccessors: transferAccessors{c: c},
		core:              c,
		messages:          messages.New(),
		paging:            reactive.NewCell(envelope.DefaultPaging()),
		collection:        reactive.NewList[E](),
	}
}

// NewCollectionStoreWithValues returns a store holding values.
func NewCollectionStoreWithValues[E any](client *fetch.Client, values []E, opts ...Option) *CollectionStore[E] {
	s := NewCollectionStore[E](client, opts...)
	s.collection.Replace(values)
	return s
}

func (s *CollectionStore[E]) Messages() *messages.Messages           { return s.messages }
func (s *CollectionStore[E]) Paging() *reactive.Cell[envelope.Paging] { return s.paging }
func (s *CollectionStore[E]) Collection() *reactive.List[E]          { return s.collection }

// Get returns a snapshot of the collection.
func (s *CollectionStore[E]) Get() []E { return s.collection.Snapshot() }

func (s *CollectionStore[E]) Len() int      { return s.collection.Len() }
func (s *CollectionStore[E]) IsEmpty() bool { return s.collection.IsEmpty() }

// Any reports whether an item matches pred.
func (s *CollectionStore[E]) Any(pred func(E) bool) bool {
	found := false
	s.collection.Read(func(items []E) {
		found = slices.ContainsFunc(items, pred)
	})
	return found
}

// All reports whether every item matches pred.
func (s *CollectionStore[E]) All(pred func(E) bool) bool {
	all := true
	s.collection.Read(func(items []E) {
		for _, it := range items {
			if !pred(it) {
				all = false
				return
			}
		}
	})
	return all
}

// Find returns the first item matching pred.
func (s *CollectionStore[E]) Find(pred func(E) bool) (E, bool) {
	var out E
	ok := false
	s.collection.Read(func(items []E) {
		if i := slices.IndexFunc(items, pred); i >= 0 {
			out, ok = items[i], true
		}
	})
	return out, ok
}

// SetWhere replaces the first item matching pred.
func (s *CollectionStore[E]) SetWhere(pred func(E) bool, item E) {
	s.collection.Mutate(func(items []E) []E {
		if i := slices.IndexFunc(items, pred); i >= 0 {
			items[i] = item
		}
		return items
	})
}

// SetOrAdd replaces the first item matching pred or appends item.
func (s *CollectionStore[E]) SetOrAdd(pred func(E) bool, item E) {
	s.collection.Mutate(func(items []E) []E {
		if i := slices.IndexFunc(items, pred); i >= 0 {
			items[i] = item
			return items
		}
		return append(items, item)
	})
}

// SetOrInsert keeps a collection sorted by cmp: an equal item is replaced,
// otherwise item is inserted at its position.
func (s *CollectionStore[E]) SetOrInsert(item E, cmp func(a, b E) int) {
	s.collection.Mutate(func(items []E) []E {
		i, found := slices.BinarySearchFunc(items, item, cmp)
		if found {
			items[i] = item
			return items
		}
		return slices.Insert(items, i, item)
	})
}

// RemoveWhere removes the first item matching pred.
func (s *CollectionStore[E]) RemoveWhere(pred func(E) bool) {
	s.collection.Mutate(func(items []E) []E {
		if i := slices.IndexFunc(items, pred); i >= 0 {
			return slices.Delete(items, i, i+1)
		}
		return items
	})
}

// Replace swaps the collection and returns the previous items.
func (s *CollectionStore[E]) Replace(values []E) []E { return s.collection.Replace(values) }

// Reset clears the collection.
func (s *CollectionStore[E]) Reset() { s.collection.Clear() }

// Inspect calls fn with the items under the read lock.
func (s *CollectionStore[E]) Inspect(fn func([]E)) { s.collection.Read(fn) }

// InspectMut lets fn rewrite the items.
func (s *CollectionStore[E]) InspectMut(fn func([]E) []E) { s.collection.Mutate(fn) }

// Invalidate forces the next Load to fetch. Results of fetches still in flight
// are dropped.
func (s *CollectionStore[E]) Invalidate() {
	s.core.supersede()
	reactive.SetNeq(s.core.state, transfer.Empty())
}

// ResetToEmpty clears state, messages, paging and items.
func (s *CollectionStore[E]) ResetToEmpty() {
	s.core.supersede()
	reactive.SetNeq(s.core.state, transfer.Empty())
	s.messages.ClearAll()
	s.paging.Set(envelope.DefaultPaging())
	s.collection.Clear()
}

// CollectionState derives Empty, NotEmpty or Pending.
func (s *CollectionStore[E]) CollectionState() CollectionState {
	return CollectionStateOf(s.Pending(), s.IsEmpty())
}

// SubscribeCollectionState streams the derived collection state, emitting
// only on change.
func (s *CollectionStore[E]) SubscribeCollectionState(ctx context.Context) <-chan CollectionState {
	return deriveCollectionState(ctx, s.core.state, s.collection)
}

// Load fetches the collection unless the store is already loaded. A cache
// hit issues no request and fires no callback.
func (s *CollectionStore[E]) Load(req fetch.Request, cb fetch.Callback) {
	if s.Loaded() {
		logger := s.core.client.LoggerFor(req)
		logger.Debug("request to load skipped, using cache", "url", req.URL())
		logIntent(logger, "load", req, true)
		return
	}
	s.LoadSkipCache(req, cb)
}

// LoadSkipCache fetches the collection unconditionally.
func (s *CollectionStore[E]) LoadSkipCache(req fetch.Request, cb fetch.Callback) {
	logger := s.core.client.LoggerFor(req)
	logger.Debug("request to load", "url", req.URL())
	logIntent(logger, "load", req, true)
	s.fetch(req.WithIsLoad(true), cb)
}

// Store sends the whole collection. An empty collection is sent without body
// and without signature.
func (s *CollectionStore[E]) Store(req fetch.Request, cb fetch.Callback) {
	req = req.WithIsLoad(false)
	logger := s.core.client.LoggerFor(req)
	logger.Debug("request to update", "url", req.URL())
	logIntent(logger, "store", req, false)

	if items := s.collection.Snapshot(); len(items) > 0 {
		var ok bool
		if req, ok = encodeBody(s.core, req, s.messages, items, cb); !ok {
			return
		}
	}
	s.fetch(req, cb)
}

func (s *CollectionStore[E]) fetch(req fetch.Request, cb fetch.Callback) {
	logger := s.core.client.LoggerFor(req)
	run(s.core, req, cb, func(resp envelope.CollectionResponse[E]) {
		s.messages.Replace(resp.MessagesOrEmpty())
		if resp.Collection != nil {
			logger.Debug("request successfully fetched collection", "url", req.URL(), "items", len(resp.Collection))
			s.collection.Replace(resp.Collection)
		}
		s.paging.Set(resp.PagingOrDefault())
	})
}
