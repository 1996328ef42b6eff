package store

import (
	"context"

	"github.com/Ratio1/fetchstore_sdk_go/pkg/reactive"
)

// Dirty is implemented by entities that track unsaved local edits.
type Dirty interface {
	IsDirty() bool
}

// Fresh is implemented by entities that know whether the server has stored
// them yet.
type Fresh interface {
	IsNew() bool
}

// asDirty finds a Dirty implementation on v or, for pointer receivers, on &v.
func asDirty[E any](v E) (Dirty, bool) {
	if d, ok := any(v).(Dirty); ok {
		return d, true
	}
	d, ok := any(&v).(Dirty)
	return d, ok
}

func asFresh[E any](v E) (Fresh, bool) {
	if f, ok := any(v).(Fresh); ok {
		return f, true
	}
	f, ok := any(&v).(Fresh)
	return f, ok
}

func entityDirty[E any](m reactive.Maybe[E]) bool {
	if !m.Valid {
		return false
	}
	d, ok := asDirty(m.Value)
	return ok && d.IsDirty()
}

// Dirty reports whether the entity is present and has unsaved edits. Entities
// that do not implement Dirty are never dirty.
func (s *EntityStore[E]) Dirty() bool { return entityDirty(s.entity.Get()) }

// IsNew reports whether the entity is present and not yet known to the
// server. Entities that do not implement Fresh are never new.
func (s *EntityStore[E]) IsNew() bool {
	m := s.entity.Get()
	if !m.Valid {
		return false
	}
	f, ok := asFresh(m.Value)
	return ok && f.IsNew()
}

// MessagesError reports whether the store messages hold an error.
func (s *EntityStore[E]) MessagesError() bool { return s.messages.Error() }

// CanCommit reports whether the entity is dirty and no message is an error.
func (s *EntityStore[E]) CanCommit() bool { return s.Dirty() && !s.MessagesError() }

// SubscribeDirty streams Dirty after every change of the entity. Repeated
// values are dropped.
func (s *EntityStore[E]) SubscribeDirty(ctx context.Context) <-chan bool {
	return deriveCommit(ctx, s.entity, s.messages.ErrorCell(), func(dirty, _ bool) bool { return dirty })
}

// SubscribeCanCommit streams CanCommit after every change of the entity or
// the message error flag. Repeated values are dropped.
func (s *EntityStore[E]) SubscribeCanCommit(ctx context.Context) <-chan bool {
	return deriveCommit(ctx, s.entity, s.messages.ErrorCell(), func(dirty, failed bool) bool { return dirty && !failed })
}

func deriveCommit[E any](ctx context.Context, entity *reactive.Cell[reactive.Maybe[E]], errs *reactive.Cell[bool], fn func(dirty, failed bool) bool) <-chan bool {
	ctx, cancel := context.WithCancel(ctx)
	entities := entity.Subscribe(ctx)
	failures := errs.Subscribe(ctx)
	dirty, failed := entityDirty(entity.Get()), errs.Get()
	out := reactive.NewCell(fn(dirty, failed))
	ch := out.Subscribe(ctx)

	go func() {
		defer cancel()
		for {
			select {
			case <-ctx.Done():
				return
			case m, ok := <-entities:
				if !ok {
					return
				}
				dirty = entityDirty(m)
			case f, ok := <-failures:
				if !ok {
					return
				}
				failed = f
			}
			reactive.SetNeq(out, fn(dirty, failed))
		}
	}()
	return ch
}
