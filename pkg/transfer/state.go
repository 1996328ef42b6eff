// Package transfer tracks the lifecycle of a single fetch owned by a store.
package transfer

import "github.com/Ratio1/fetchstore_sdk_go/pkg/status"

// Kind enumerates the variants of State.
type Kind int

const (
	KindEmpty Kind = iota
	KindPendingLoad
	KindPendingStore
	KindLoaded
	KindStored
)

func (k Kind) String() string {
	switch k {
	case KindEmpty:
		return "Empty"
	case KindPendingLoad:
		return "PendingLoad"
	case KindPendingStore:
		return "PendingStore"
	case KindLoaded:
		return "Loaded"
	case KindStored:
		return "Stored"
	default:
		return "Unknown"
	}
}

// State is a value type; Status is only meaningful for Loaded and Stored.
// The zero value is Empty.
type State struct {
	Kind   Kind
	Status status.Code
}

// Empty returns the initial state.
func Empty() State { return State{Kind: KindEmpty} }

// PendingLoad returns a state with a load in flight.
func PendingLoad() State { return State{Kind: KindPendingLoad} }

// PendingStore returns a state with a store in flight.
func PendingStore() State { return State{Kind: KindPendingStore} }

// Loaded returns a terminal load state carrying code.
func Loaded(code status.Code) State { return State{Kind: KindLoaded, Status: code} }

// Stored returns a terminal store state carrying code.
func Stored(code status.Code) State { return State{Kind: KindStored, Status: code} }

// Pending reports whether a fetch is in flight.
func (s State) Pending() bool {
	return s.Kind == KindPendingLoad || s.Kind == KindPendingStore
}

// Loaded reports a completed load with a success status. Loaded(BadRequest)
// is not loaded.
func (s State) Loaded() bool {
	return s.Kind == KindLoaded && s.Status.IsSuccess()
}

// Stored reports a completed store with a success status.
func (s State) Stored() bool {
	return s.Kind == KindStored && s.Status.IsSuccess()
}

// LoadedStatus returns the wrapped code when the state is Loaded.
func (s State) LoadedStatus() (status.Code, bool) {
	if s.Kind == KindLoaded {
		return s.Status, true
	}
	return 0, false
}

// StoredStatus returns the wrapped code when the state is Stored.
func (s State) StoredStatus() (status.Code, bool) {
	if s.Kind == KindStored {
		return s.Status, true
	}
	return 0, false
}

// NotCompleted reports whether the state is neither Loaded nor Stored.
func (s State) NotCompleted() bool {
	return s.Kind != KindLoaded && s.Kind != KindStored
}

// NotError reports whether the state does not carry a failure code.
func (s State) NotError() bool {
	if s.Kind == KindLoaded || s.Kind == KindStored {
		return s.Status.IsSuccess()
	}
	return true
}

// ResetError forces the wrapped code of a Loaded or Stored state to Ok.
// Other states are returned unchanged.
func (s State) ResetError() State {
	switch s.Kind {
	case KindLoaded:
		return Loaded(status.Ok)
	case KindStored:
		return Stored(status.Ok)
	default:
		return s
	}
}

// StartLoad returns PendingLoad regardless of the current state.
func (s State) StartLoad() State { return PendingLoad() }

// StartStore returns PendingStore regardless of the current state.
func (s State) StartStore() State { return PendingStore() }

// Stop performs the terminal transition. Stopping from Empty yields
// Loaded(FetchFailed); see Stopped to detect that fallback.
func (s State) Stop(code status.Code) State {
	next, _ := s.Stopped(code)
	return next
}

// Stopped is Stop that also reports whether the transition followed the
// protocol. A false result means the caller stopped a state that was never
// started.
func (s State) Stopped(code status.Code) (State, bool) {
	switch s.Kind {
	case KindPendingLoad, KindLoaded:
		return Loaded(code), true
	case KindPendingStore, KindStored:
		return Stored(code), true
	default:
		return Loaded(status.FetchFailed), false
	}
}

func (s State) String() string {
	switch s.Kind {
	case KindLoaded, KindStored:
		return s.Kind.String() + "(" + s.Status.String() + ")"
	default:
		return s.Kind.String()
	}
}
