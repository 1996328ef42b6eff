// Package envelope defines the payload wrappers exchanged with the server:
// messages plus an optional entity, or messages, paging and an optional
// collection.
package envelope

import (
	"github.com/Ratio1/fetchstore_sdk_go/pkg/messages"
)

// DefaultLimit is the page size used when the server sends no paging.
const DefaultLimit = 25

// Paging describes the position of a collection page.
type Paging struct {
	Limit int    `json:"limit" cbor:"limit"`
	Prev  string `json:"prev,omitempty" cbor:"prev,omitempty"`
	Next  string `json:"next,omitempty" cbor:"next,omitempty"`
}

// DefaultPaging returns Paging{Limit: 25}.
func DefaultPaging() Paging {
	return Paging{Limit: DefaultLimit}
}

// HasPrev reports whether a previous page exists.
func (p Paging) HasPrev() bool { return p.Prev != "" }

// HasNext reports whether a next page exists.
func (p Paging) HasNext() bool { return p.Next != "" }

// EntityResponse wraps a single entity.
type EntityResponse[E any] struct {
	Messages *messages.Messages `json:"messages" cbor:"messages"`
	Entity   *E                 `json:"entity,omitempty" cbor:"entity,omitempty"`
}

// NewEntityResponse returns a response carrying entity.
func NewEntityResponse[E any](msgs *messages.Messages, entity *E) EntityResponse[E] {
	if msgs == nil {
		msgs = messages.New()
	}
	return EntityResponse[E]{Messages: msgs, Entity: entity}
}

// MessagesOrEmpty never returns nil.
func (r *EntityResponse[E]) MessagesOrEmpty() *messages.Messages {
	if r == nil || r.Messages == nil {
		return messages.New()
	}
	return r.Messages
}

// CollectionResponse wraps a page of entities. Collection is nil when the
// server omitted it or sent null; an empty page decodes as an empty slice.
type CollectionResponse[E any] struct {
	Messages   *messages.Messages `json:"messages" cbor:"messages"`
	Paging     *Paging            `json:"paging,omitempty" cbor:"paging,omitempty"`
	Collection []E                `json:"collection" cbor:"collection"`
}

// NewCollectionResponse returns a response carrying collection.
func NewCollectionResponse[E any](msgs *messages.Messages, paging Paging, collection []E) CollectionResponse[E] {
	if msgs == nil {
		msgs = messages.New()
	}
	return CollectionResponse[E]{Messages: msgs, Paging: &paging, Collection: collection}
}

// MessagesOrEmpty never returns nil.
func (r *CollectionResponse[E]) MessagesOrEmpty() *messages.Messages {
	if r == nil || r.Messages == nil {
		return messages.New()
	}
	return r.Messages
}

// PagingOrDefault returns the server paging or DefaultPaging.
func (r *CollectionResponse[E]) PagingOrDefault() Paging {
	if r == nil || r.Paging == nil {
		return DefaultPaging()
	}
	return *r.Paging
}
