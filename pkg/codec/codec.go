// Package codec serializes request and response payloads for the structured
// media types.
package codec

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"

	"github.com/Ratio1/fetchstore_sdk_go/pkg/mediatype"
)

// Codec marshals values for one media type.
type Codec interface {
	Marshal(v any) ([]byte, error)
	Unmarshal(data []byte, v any) error
}

// JSON encodes without HTML escaping and without a trailing newline.
type JSON struct{}

func (JSON) Marshal(v any) ([]byte, error) {
	buf := &bytes.Buffer{}
	enc := json.NewEncoder(buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return bytes.TrimRight(buf.Bytes(), "\n"), nil
}

func (JSON) Unmarshal(data []byte, v any) error {
	return json.Unmarshal(data, v)
}

// CBOR is the binary codec.
type CBOR struct{}

func (CBOR) Marshal(v any) ([]byte, error) {
	return cbor.Marshal(v)
}

func (CBOR) Unmarshal(data []byte, v any) error {
	return cbor.Unmarshal(data, v)
}

// Registry maps structured media types to codecs.
type Registry map[mediatype.MediaType]Codec

// Default returns the registry with JSON and CBOR installed.
func Default() Registry {
	return Registry{
		mediatype.Json: JSON{},
		mediatype.Cbor: CBOR{},
	}
}

// Lookup returns the codec for mt.
func (r Registry) Lookup(mt mediatype.MediaType) (Codec, bool) {
	c, ok := r[mt]
	return c, ok
}

// Supports reports whether mt is decodable.
func (r Registry) Supports(mt mediatype.MediaType) bool {
	_, ok := r[mt]
	return ok
}

// Marshal encodes v for mt.
func (r Registry) Marshal(mt mediatype.MediaType, v any) ([]byte, error) {
	c, ok := r[mt]
	if !ok {
		return nil, fmt.Errorf("codec: unsupported media type %s", mt)
	}
	return c.Marshal(v)
}

// Unmarshal decodes data for mt into v.
func (r Registry) Unmarshal(mt mediatype.MediaType, data []byte, v any) error {
	c, ok := r[mt]
	if !ok {
		return fmt.Errorf("codec: unsupported media type %s", mt)
	}
	return c.Unmarshal(data, v)
}
