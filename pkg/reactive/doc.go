// Package reactive provides the observable state primitives the stores are
// built on: a mutable Cell with change subscriptions, an optional value
// wrapper (Maybe) and an ordered List. Subscriptions deliver the current value
// first and then coalesced snapshots of every later change, so a slow reader
// always sees the latest value rather than a backlog.
//
// Locks are scoped to a single statement. Callbacks passed to Read or Update
// run under the cell lock and must not call back into the same cell.
package reactive
