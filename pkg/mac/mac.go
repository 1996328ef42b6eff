// Package mac signs outbound request bodies and verifies response bodies.
package mac

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"
)

// Header carries the body signature in both directions.
const Header = "Content-Signature"

// ErrEmptyKey is returned when an HMAC key is empty.
var ErrEmptyKey = errors.New("mac: key is empty")

// Signer produces a signature for an outbound body. ok is false when the
// policy does not sign.
type Signer interface {
	Sign(message []byte) (signature string, ok bool)
}

// Verifier checks a body against the signature header. signature is empty
// when the header was absent.
type Verifier interface {
	Verify(message []byte, signature string) (bool, error)
}

// NoMAC never signs and always accepts.
type NoMAC struct{}

func (NoMAC) Sign([]byte) (string, bool) { return "", false }

func (NoMAC) Verify([]byte, string) (bool, error) { return true, nil }

// HMAC signs with HMAC-SHA256 and encodes the sum with standard base64.
type HMAC struct {
	key []byte
}

// NewHMAC returns an HMAC policy for the raw key.
func NewHMAC(key []byte) (*HMAC, error) {
	if len(key) == 0 {
		return nil, ErrEmptyKey
	}
	return &HMAC{key: append([]byte(nil), key...)}, nil
}

// NewHMACFromHex decodes a hex encoded key.
func NewHMACFromHex(key string) (*HMAC, error) {
	raw, err := hex.DecodeString(strings.TrimSpace(key))
	if err != nil {
		return nil, fmt.Errorf("mac: decode hex key: %w", err)
	}
	return NewHMAC(raw)
}

func (h *HMAC) sum(message []byte) []byte {
	m := hmac.New(sha256.New, h.key)
	m.Write(message)
	return m.Sum(nil)
}

// Sign returns the base64 HMAC of message.
func (h *HMAC) Sign(message []byte) (string, bool) {
	return base64.StdEncoding.EncodeToString(h.sum(message)), true
}

// Verify reports whether signature matches message. A missing signature is
// invalid; a malformed one is an error.
func (h *HMAC) Verify(message []byte, signature string) (bool, error) {
	if signature == "" {
		return false, nil
	}
	got, err := base64.StdEncoding.DecodeString(signature)
	if err != nil {
		return false, fmt.Errorf("malformed signature: %w", err)
	}
	return hmac.Equal(got, h.sum(message)), nil
}

// VerifierFunc adapts a function to Verifier.
type VerifierFunc func(message []byte, signature string) (bool, error)

func (f VerifierFunc) Verify(message []byte, signature string) (bool, error) {
	return f(message, signature)
}
