// Package status classifies the outcome of a fetch. Server-side codes mirror
// their HTTP numbers; the 9xx codes are produced locally by the fetch pipeline
// and never appear on the wire.
package status

import "strconv"

// Code is the closed set of fetch outcomes.
type Code int

const (
	Undefined Code = 900

	FetchFailed  Code = 901
	FetchTimeout Code = 902
	DecodeFailed Code = 903

	Ok        Code = 200
	Created   Code = 201
	NoContent Code = 204

	NotModified Code = 304

	BadRequest           Code = 400
	Unauthorized         Code = 401
	Forbidden            Code = 403
	NotFound             Code = 404
	MethodNotAllowed     Code = 405
	Conflict             Code = 409
	PayloadTooBig        Code = 413
	UnsupportedMediaType Code = 415
	RateLimited          Code = 429

	InternalServerError Code = 500
	NotImplemented      Code = 501
)

var names = map[Code]string{
	Undefined:            "Undefined",
	FetchFailed:          "FetchFailed",
	FetchTimeout:         "FetchTimeout",
	DecodeFailed:         "DecodeFailed",
	Ok:                   "Ok",
	Created:              "Created",
	NoContent:            "NoContent",
	NotModified:          "NotModified",
	BadRequest:           "BadRequest",
	Unauthorized:         "Unauthorized",
	Forbidden:            "Forbidden",
	NotFound:             "NotFound",
	MethodNotAllowed:     "MethodNotAllowed",
	Conflict:             "Conflict",
	PayloadTooBig:        "PayloadTooBig",
	UnsupportedMediaType: "UnsupportedMediaType",
	RateLimited:          "RateLimited",
	InternalServerError:  "InternalServerError",
	NotImplemented:       "NotImplemented",
}

// FromHTTP maps a numeric status to a Code. Unknown numbers map to Undefined.
func FromHTTP(code int) Code {
	c := Code(code)
	if _, ok := names[c]; ok {
		return c
	}
	return Undefined
}

// FromBool maps true to Ok and false to BadRequest.
func FromBool(success bool) Code {
	if success {
		return Ok
	}
	return BadRequest
}

// IsSuccess reports whether the code is Ok, Created, NoContent or NotModified.
func (c Code) IsSuccess() bool {
	switch c {
	case Ok, Created, NoContent, NotModified:
		return true
	default:
		return false
	}
}

// IsFailure is the negation of IsSuccess.
func (c Code) IsFailure() bool {
	return !c.IsSuccess()
}

// IsLocal reports whether the code originates from this client rather than a server.
func (c Code) IsLocal() bool {
	switch c {
	case FetchFailed, FetchTimeout, DecodeFailed:
		return true
	default:
		return false
	}
}

func (c Code) String() string {
	if name, ok := names[c]; ok {
		return name
	}
	return "Code(" + strconv.Itoa(int(c)) + ")"
}
