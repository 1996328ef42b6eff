// Package messages holds keyed validation, information and error messages
// with an observable aggregate error flag.
package messages

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/fxamacker/cbor/v2"
	"golang.org/x/text/language"

	"github.com/Ratio1/fetchstore_sdk_go/pkg/reactive"
)

// Conventional category keys.
const (
	Service = "service"
	Entity  = "entity"
)

// Messages maps a category key to an ordered list of messages. The zero value
// is ready to use. Messages must not be copied after first use.
type Messages struct {
	once    sync.Once
	entries *reactive.Cell[map[string][]Message]
	err     *reactive.Cell[bool]
}

// New returns empty Messages.
func New() *Messages {
	return &Messages{}
}

// FromMap builds Messages from a category map.
func FromMap(entries map[string][]Message) *Messages {
	m := New()
	m.store(cloneEntries(entries))
	return m
}

// FromServiceError returns Messages holding one service error.
func FromServiceError(text string, parameters ...string) *Messages {
	m := New()
	m.Add(Service, Error, text, parameters...)
	return m
}

// FromEntityError returns Messages holding one entity error.
func FromEntityError(text string, parameters ...string) *Messages {
	m := New()
	m.Add(Entity, Error, text, parameters...)
	return m
}

func (m *Messages) cells() {
	m.once.Do(func() {
		m.entries = reactive.NewCell(map[string][]Message(nil))
		m.err = reactive.NewCell(false)
	})
}

// mutate applies fn to a private copy of the entries and recomputes the error
// flag from scratch while the entries lock is held.
func (m *Messages) mutate(fn func(entries map[string][]Message) map[string][]Message) {
	m.cells()
	m.entries.Update(func(current map[string][]Message) map[string][]Message {
		next := fn(cloneEntries(current))
		reactive.SetNeq(m.err, anyError(next))
		return next
	})
}

func (m *Messages) store(entries map[string][]Message) {
	m.mutate(func(map[string][]Message) map[string][]Message { return entries })
}

// Add appends a message to the category key.
func (m *Messages) Add(key string, kind Kind, text string, parameters ...string) {
	msg := NewMessage(kind, text, parameters...)
	m.mutate(func(entries map[string][]Message) map[string][]Message {
		entries[key] = append(entries[key], msg)
		return entries
	})
}

// Set replaces the category key with a single message.
func (m *Messages) Set(key string, kind Kind, text string, parameters ...string) {
	msg := NewMessage(kind, text, parameters...)
	m.mutate(func(entries map[string][]Message) map[string][]Message {
		entries[key] = []Message{msg}
		return entries
	})
}

// Clear removes the category key.
func (m *Messages) Clear(key string) {
	m.mutate(func(entries map[string][]Message) map[string][]Message {
		delete(entries, key)
		return entries
	})
}

// ClearAll removes every category.
func (m *Messages) ClearAll() {
	m.store(nil)
}

// Replace copies the content of with into m. A nil with clears m.
func (m *Messages) Replace(with *Messages) {
	if with == nil {
		m.ClearAll()
		return
	}
	if with == m {
		return
	}
	m.store(with.Snapshot())
}

// AddServiceError appends an error to the service category.
func (m *Messages) AddServiceError(text string) { m.Add(Service, Error, text) }

// AddServiceInfo appends information to the service category.
func (m *Messages) AddServiceInfo(text string) { m.Add(Service, Information, text) }

// AddEntityError appends an error to the entity category.
func (m *Messages) AddEntityError(text string) { m.Add(Entity, Error, text) }

// AddEntityInfo appends information to the entity category.
func (m *Messages) AddEntityInfo(text string) { m.Add(Entity, Information, text) }

// Error reports whether any category holds an Error message.
func (m *Messages) Error() bool {
	m.cells()
	return m.err.Get()
}

// ErrorCell exposes the aggregate error flag for subscription.
func (m *Messages) ErrorCell() *reactive.Cell[bool] {
	m.cells()
	return m.err
}

// Subscribe streams snapshots of the category map after every change.
func (m *Messages) Subscribe(ctx context.Context) <-chan map[string][]Message {
	m.cells()
	return m.entries.Subscribe(ctx)
}

// Snapshot returns a deep copy of the category map.
func (m *Messages) Snapshot() map[string][]Message {
	m.cells()
	return cloneEntries(m.entries.Get())
}

// Get returns a copy of the messages under key.
func (m *Messages) Get(key string) []Message {
	m.cells()
	return append([]Message(nil), m.entries.Get()[key]...)
}

// Keys returns the category keys in sorted order.
func (m *Messages) Keys() []string {
	m.cells()
	entries := m.entries.Get()
	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// Len returns the total number of messages across categories.
func (m *Messages) Len() int {
	m.cells()
	n := 0
	for _, list := range m.entries.Get() {
		n += len(list)
	}
	return n
}

// HasKey reports whether the category key holds at least one message.
func (m *Messages) HasKey(key string) bool {
	m.cells()
	return len(m.entries.Get()[key]) > 0
}

// ErrorForKey reports whether the category key holds an Error message.
func (m *Messages) ErrorForKey(key string) bool {
	m.cells()
	for _, msg := range m.entries.Get()[key] {
		if msg.IsError() {
			return true
		}
	}
	return false
}

// Translator maps a message text to its localized form.
type Translator func(locale language.Tag, text string) string

// Localize returns a copy of m with every text translated for locale and
// positional parameters expanded.
func (m *Messages) Localize(locale string, translate Translator) (*Messages, error) {
	tag, err := language.Parse(locale)
	if err != nil {
		return nil, fmt.Errorf("messages: parse locale %q: %w", locale, err)
	}
	entries := m.Snapshot()
	for key, list := range entries {
		for i, msg := range list {
			text := msg.Text
			if translate != nil {
				text = translate(tag, text)
			}
			list[i] = Message{Kind: msg.Kind, Text: msg.Expand(text)}
		}
		entries[key] = list
	}
	return FromMap(entries), nil
}

// String renders the debug form, e.g. "entity: [E: EE], service: [I: SI]".
func (m *Messages) String() string {
	entries := m.Snapshot()
	var b strings.Builder
	for i, key := range m.Keys() {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(key)
		b.WriteString(": [")
		for j, msg := range entries[key] {
			if j > 0 {
				b.WriteString(", ")
			}
			b.WriteString(msg.shortKind())
			b.WriteString(": ")
			b.WriteString(msg.Text)
		}
		b.WriteString("]")
	}
	return b.String()
}

// MarshalJSON encodes the category map. Empty Messages encode as {}.
func (m *Messages) MarshalJSON() ([]byte, error) {
	entries := m.Snapshot()
	if entries == nil {
		entries = map[string][]Message{}
	}
	return json.Marshal(entries)
}

// UnmarshalJSON replaces the content with the decoded category map.
func (m *Messages) UnmarshalJSON(data []byte) error {
	var entries map[string][]Message
	if err := json.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("messages: decode json: %w", err)
	}
	m.store(entries)
	return nil
}

// MarshalCBOR encodes the category map.
func (m *Messages) MarshalCBOR() ([]byte, error) {
	entries := m.Snapshot()
	if entries == nil {
		entries = map[string][]Message{}
	}
	return cbor.Marshal(entries)
}

// UnmarshalCBOR replaces the content with the decoded category map.
func (m *Messages) UnmarshalCBOR(data []byte) error {
	var entries map[string][]Message
	if err := cbor.Unmarshal(data, &entries); err != nil {
		return fmt.Errorf("messages: decode cbor: %w", err)
	}
	m.store(entries)
	return nil
}

func anyError(entries map[string][]Message) bool {
	for _, list := range entries {
		for _, msg := range list {
			if msg.IsError() {
				return true
			}
		}
	}
	return false
}

func cloneEntries(entries map[string][]Message) map[string][]Message {
	out := make(map[string][]Message, len(entries))
	for k, list := range entries {
		cp := make([]Message, len(list))
		for i, msg := range list {
			cp[i] = msg
			cp[i].Parameters = append([]string(nil), msg.Parameters...)
		}
		out[k] = cp
	}
	return out
}
