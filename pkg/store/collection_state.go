package store

import (
	"context"

	"github.com/Ratio1/fetchstore_sdk_go/pkg/reactive"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/transfer"
)

// CollectionState summarizes a collection for presentation.
type CollectionState int

const (
	CollectionEmpty CollectionState = iota
	CollectionNotEmpty
	CollectionPending
)

func (s CollectionState) Empty() bool           { return s == CollectionEmpty }
func (s CollectionState) EmptyPending() bool    { return s == CollectionEmpty || s == CollectionPending }
func (s CollectionState) NotEmpty() bool        { return s == CollectionNotEmpty }
func (s CollectionState) NotEmptyPending() bool { return s == CollectionNotEmpty || s == CollectionPending }
func (s CollectionState) Pending() bool         { return s == CollectionPending }

func (s CollectionState) String() string {
	switch s {
	case CollectionNotEmpty:
		return "NotEmpty"
	case CollectionPending:
		return "Pending"
	default:
		return "Empty"
	}
}

// CollectionStateOf derives the state; pending wins over emptiness.
func CollectionStateOf(pending, empty bool) CollectionState {
	switch {
	case pending:
		return CollectionPending
	case empty:
		return CollectionEmpty
	default:
		return CollectionNotEmpty
	}
}

// CombineCollectionStates folds several states: any Pending makes the result
// Pending, otherwise any NotEmpty makes it NotEmpty.
func CombineCollectionStates(states ...CollectionState) CollectionState {
	out := CollectionEmpty
	for _, s := range states {
		switch s {
		case CollectionPending:
			return CollectionPending
		case CollectionNotEmpty:
			out = CollectionNotEmpty
		}
	}
	return out
}

func deriveCollectionState[E any](ctx context.Context, state *reactive.Cell[transfer.State], list *reactive.List[E]) <-chan CollectionState {
	ctx, cancel := context.WithCancel(ctx)
	states := state.Subscribe(ctx)
	items := list.Subscribe(ctx)
	out := reactive.NewCell(CollectionStateOf(state.Get().Pending(), list.IsEmpty()))
	ch := out.Subscribe(ctx)

	go func() {
		defer cancel()
		pending, empty := state.Get().Pending(), list.IsEmpty()
		for {
			select {
			case <-ctx.Done():
				return
			case s, ok := <-states:
				if !ok {
					return
				}
				pending = s.Pending()
			case v, ok := <-items:
				if !ok {
					return
				}
				empty = len(v) == 0
			}
			reactive.SetNeq(out, CollectionStateOf(pending, empty))
		}
	}()
	return ch
}
