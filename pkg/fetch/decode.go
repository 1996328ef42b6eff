package fetch

import (
	"encoding/base64"
	"errors"
	"strings"

	"github.com/Ratio1/fetchstore_sdk_go/internal/httpx"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/codec"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/mac"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/mediatype"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/status"
)

// Decodable reports whether a response with code carries a body worth
// decoding. Other codes are passed through without reading the body.
func Decodable(code status.Code) bool {
	switch code {
	case status.Ok, status.Created, status.NoContent,
		status.BadRequest, status.Forbidden, status.InternalServerError,
		status.NotFound, status.PayloadTooBig, status.RateLimited, status.Unauthorized:
		return true
	}
	return false
}

// Execute awaits pf and decodes the response body into R.
func Execute[R any](pf *PendingFetch, c *Client) Result[R] {
	res := execute[R](pf, c)
	pf.finish(res.Status)
	return res
}

func execute[R any](pf *PendingFetch, c *Client) Result[R] {
	fetched := pf.WaitCompletion()
	if !fetched.HasValue {
		return Result[R]{Status: fetched.Status, Hint: fetched.Hint}
	}
	resp := fetched.Value
	defer pf.release()

	if !Decodable(fetched.Status) {
		httpx.DrainAndClose(resp.Body)
		return Result[R]{Status: fetched.Status}
	}

	content, err := httpx.ReadAllAndClose(resp.Body)
	if err != nil {
		return failed[R](fail(status.DecodeFailed, "Reading response body failed: %v", err))
	}
	mt := mediatype.FromHeader(resp.Header.Get(HeaderContentType))
	value, ok, err := DecodeContent[R](mt, false, content, resp.Header.Get(mac.Header), c.verifier, c.codecs)
	if err != nil {
		var f *Failure
		if errors.As(err, &f) {
			return failed[R](f)
		}
		return failed[R](fail(status.DecodeFailed, "%v", err))
	}
	return Result[R]{Status: fetched.Status, Value: value, HasValue: ok}
}

// DecodeContent verifies and deserializes content. It returns ok=false with a
// nil error when content is empty. Errors are always *Failure.
func DecodeContent[R any](mt mediatype.MediaType, decodeBase64 bool, content []byte, signature string, verifier mac.Verifier, codecs codec.Registry) (R, bool, error) {
	var zero R
	if len(content) == 0 {
		return zero, false, nil
	}
	if codecs == nil {
		codecs = codec.Default()
	}
	if !codecs.Supports(mt) {
		return zero, false, &Failure{Status: status.UnsupportedMediaType}
	}

	data := content
	if decodeBase64 {
		decoded, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(string(content), "="))
		if err != nil {
			return zero, false, fail(status.DecodeFailed, "%v", err)
		}
		data = decoded
	}

	if verifier == nil {
		verifier = mac.NoMAC{}
	}
	valid, err := verifier.Verify(data, signature)
	if err != nil {
		return zero, false, fail(status.DecodeFailed, "Response signature verification failed: %v.", err)
	}
	if !valid {
		return zero, false, fail(status.DecodeFailed, "Response signature is invalid.")
	}

	var out R
	if err := codecs.Unmarshal(mt, data, &out); err != nil {
		return zero, false, fail(status.DecodeFailed, "Deserialization failed: %v", err)
	}
	return out, true, nil
}
