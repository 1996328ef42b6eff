package fetch

import (
	"slices"
	"strings"
	"time"

	"github.com/Ratio1/fetchstore_sdk_go/pkg/mediatype"
)

// Header names used on the wire.
const (
	HeaderAccept        = "Accept"
	HeaderContentType   = "Content-Type"
	HeaderWantsResponse = "Wants-Response"
)

// DefaultTimeout applies to requests that do not override it.
const DefaultTimeout = 5 * time.Second

// MaxTimeout caps requests that disable the explicit timeout.
const MaxTimeout = 15 * time.Minute

// Method is an HTTP verb.
type Method string

const (
	Head    Method = "HEAD"
	Get     Method = "GET"
	Post    Method = "POST"
	Put     Method = "PUT"
	Delete  Method = "DELETE"
	Options Method = "OPTIONS"
)

// IsLoad reports whether the verb only reads (HEAD, GET, OPTIONS).
func (m Method) IsLoad() bool {
	switch m {
	case Head, Get, Options:
		return true
	}
	return false
}

func (m Method) valid() bool {
	switch m {
	case Head, Get, Post, Put, Delete, Options:
		return true
	}
	return false
}

// Header is a single request header.
type Header struct {
	Name  string
	Value string
}

// Request describes one outbound call. It is an immutable builder: every
// With method returns a modified copy.
type Request struct {
	logging       bool
	method        Method
	isLoad        bool
	url           string
	headers       []Header
	mediaType     mediatype.MediaType
	hasMediaType  bool
	body          []byte
	file          *File
	wantsResponse bool
	timeout       time.Duration
	degraded      []mediatype.MediaType
}

// NewRequest returns a GET load request with logging on and the default
// timeout.
func NewRequest(url string) Request {
	return Request{
		logging: true,
		method:  Get,
		isLoad:  true,
		url:     url,
		timeout: DefaultTimeout,
	}
}

func (r Request) WithLogging(logging bool) Request {
	r.logging = logging
	return r
}

func (r Request) WithMethod(method Method) Request {
	r.method = method
	return r
}

// WithHeader appends a header.
func (r Request) WithHeader(name, value string) Request {
	r.headers = append(slices.Clone(r.headers), Header{Name: name, Value: value})
	return r
}

// WithHeaders replaces the header list.
func (r Request) WithHeaders(headers []Header) Request {
	r.headers = slices.Clone(headers)
	return r
}

// WithMediaType declares the body media type and sets Content-Type.
func (r Request) WithMediaType(mt mediatype.MediaType) Request {
	r.mediaType = mt
	r.hasMediaType = true
	return r.WithHeader(HeaderContentType, mt.String())
}

func (r Request) WithBody(body []byte) Request {
	r.body = body
	r.file = nil
	return r
}

func (r Request) WithFile(file *File) Request {
	r.file = file
	r.body = nil
	return r
}

// WithIsLoad forces load or store bookkeeping regardless of the verb.
func (r Request) WithIsLoad(isLoad bool) Request {
	r.isLoad = isLoad
	return r
}

// WithTimeout sets the completion timeout. A non-positive value removes the
// explicit timeout; MaxTimeout still applies.
func (r Request) WithTimeout(timeout time.Duration) Request {
	if timeout < 0 {
		timeout = 0
	}
	r.timeout = timeout
	return r
}

// Encoding declares mt for body and Accept. Types without a structured codec
// degrade to JSON.
func (r Request) Encoding(mt mediatype.MediaType) Request {
	mt = r.structured(mt)
	r.wantsResponse = false
	return r.WithMediaType(mt).WithHeader(HeaderAccept, mt.String())
}

// EncodingWithResponse is Encoding plus the Wants-Response header.
func (r Request) EncodingWithResponse(mt mediatype.MediaType) Request {
	mt = r.structured(mt)
	r.wantsResponse = true
	return r.WithMediaType(mt).
		WithHeader(HeaderAccept, mt.String()).
		WithHeader(HeaderWantsResponse, "1")
}

func (r Request) JSON() Request             { return r.Encoding(mediatype.Json) }
func (r Request) JSONWithResponse() Request { return r.EncodingWithResponse(mediatype.Json) }
func (r Request) CBOR() Request             { return r.Encoding(mediatype.Cbor) }
func (r Request) CBORWithResponse() Request { return r.EncodingWithResponse(mediatype.Cbor) }

func (r Request) Create() Request   { return r.WithMethod(Post) }
func (r Request) Retrieve() Request { return r.WithMethod(Get) }
func (r Request) Update() Request   { return r.WithMethod(Put) }
func (r Request) Delete() Request   { return r.WithMethod(Delete) }
func (r Request) Execute() Request  { return r.WithMethod(Post) }

func (r Request) Logging() bool       { return r.logging }
func (r Request) Method() Method      { return r.method }
func (r Request) IsLoad() bool        { return r.isLoad }
func (r Request) URL() string         { return r.url }
func (r Request) Headers() []Header   { return slices.Clone(r.headers) }
func (r Request) WantsResponse() bool { return r.wantsResponse }
func (r Request) Body() []byte        { return r.body }
func (r Request) File() *File         { return r.file }

// MediaType returns the declared media type, if any.
func (r Request) MediaType() (mediatype.MediaType, bool) {
	return r.mediaType, r.hasMediaType
}

// Timeout returns the explicit timeout; ok is false when none is set.
func (r Request) Timeout() (time.Duration, bool) {
	return r.timeout, r.timeout > 0
}

func (r Request) effectiveTimeout() time.Duration {
	if r.timeout <= 0 || r.timeout > MaxTimeout {
		return MaxTimeout
	}
	return r.timeout
}

// HeaderValue returns the last value set for name.
func (r Request) HeaderValue(name string) (string, bool) {
	for i := len(r.headers) - 1; i >= 0; i-- {
		if strings.EqualFold(r.headers[i].Name, name) {
			return r.headers[i].Value, true
		}
	}
	return "", false
}

// structured maps mt to a codec-backed type. Degradations are remembered and
// logged as warnings when the request starts.
func (r *Request) structured(mt mediatype.MediaType) mediatype.MediaType {
	switch mt {
	case mediatype.Json, mediatype.Cbor:
		return mt
	}
	r.degraded = append(slices.Clone(r.degraded), mt)
	return mediatype.Json
}
