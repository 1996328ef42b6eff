package messages

import (
	"fmt"
	"strings"
)

// Kind classifies a Message. The zero value is Information, so a wire
// message without a kind never counts as an error.
type Kind int

const (
	Information Kind = iota
	Error
	Section
)

func (k Kind) String() string {
	switch k {
	case Error:
		return "error"
	case Information:
		return "info"
	case Section:
		return "section"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// MarshalText encodes the kind as "error", "info" or "section".
func (k Kind) MarshalText() ([]byte, error) {
	switch k {
	case Error, Information, Section:
		return []byte(k.String()), nil
	default:
		return nil, fmt.Errorf("messages: unknown kind %d", int(k))
	}
}

// UnmarshalText decodes the textual kind.
func (k *Kind) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "error":
		*k = Error
	case "info", "information":
		*k = Information
	case "section":
		*k = Section
	default:
		return fmt.Errorf("messages: unknown kind %q", string(text))
	}
	return nil
}

// Message is a single validation or information entry. Parameters are
// interpolated into Text by position ({0}, {1}, ...) during localization.
type Message struct {
	Kind       Kind     `json:"kind" cbor:"kind"`
	Text       string   `json:"text" cbor:"text"`
	Parameters []string `json:"parameters,omitempty" cbor:"parameters,omitempty"`
}

// NewMessage builds a Message.
func NewMessage(kind Kind, text string, parameters ...string) Message {
	return Message{Kind: kind, Text: text, Parameters: append([]string(nil), parameters...)}
}

// IsError reports whether the message has Error kind.
func (m Message) IsError() bool {
	return m.Kind == Error
}

// Expand substitutes positional parameters into text.
func (m Message) Expand(text string) string {
	for i, p := range m.Parameters {
		text = strings.ReplaceAll(text, fmt.Sprintf("{%d}", i), p)
	}
	return text
}

func (m Message) shortKind() string {
	switch m.Kind {
	case Error:
		return "E"
	case Section:
		return "S"
	default:
		return "I"
	}
}
