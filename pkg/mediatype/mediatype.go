// Package mediatype maps MIME strings to the media types the fetch pipeline
// knows about. Unknown strings map to ByteStream, the zero value.
package mediatype

import (
	"encoding/json"
	"strings"
)

// MediaType identifies a payload format.
type MediaType int

const (
	ByteStream MediaType = iota
	Cbor
	Css
	Form
	FormMultipart
	Html
	Ico
	Javascript
	Jpeg
	Json
	Pdf
	Plain
	Png
	Postcard
	Pwg
	Sse
	Svg
	Urf
	Wasm
	Xml
	Xlsx
	Zip
	Zip7
)

const (
	mimeByteStream    = "application/octet-stream"
	mimeCbor          = "application/cbor"
	mimeCss           = "text/css"
	mimeForm          = "application/x-www-form-urlencoded"
	mimeFormMultipart = "multipart/form-data"
	mimeHtml          = "text/html"
	mimeIco           = "image/x-icon"
	mimeJavascript    = "application/javascript"
	mimeJpeg          = "image/jpeg"
	mimeJson          = "application/json"
	mimePdf           = "application/pdf"
	mimePlain         = "text/plain"
	mimePng           = "image/png"
	mimePostcard      = "application/x-postcard"
	mimePwg           = "image/pwg-raster"
	mimeSse           = "text/event-stream"
	mimeSvg           = "image/svg+xml"
	mimeUrf           = "image/urf"
	mimeWasm          = "application/wasm"
	mimeXlsx          = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	mimeXml           = "application/xml"
	mimeZip           = "application/zip"
	mimeZipWin        = "application/x-zip-compressed"
	mimeZip7          = "application/x-7z-compressed"
)

var mimes = [...]string{
	ByteStream:    mimeByteStream,
	Cbor:          mimeCbor,
	Css:           mimeCss,
	Form:          mimeForm,
	FormMultipart: mimeFormMultipart,
	Html:          mimeHtml,
	Ico:           mimeIco,
	Javascript:    mimeJavascript,
	Jpeg:          mimeJpeg,
	Json:          mimeJson,
	Pdf:           mimePdf,
	Plain:         mimePlain,
	Png:           mimePng,
	Postcard:      mimePostcard,
	Pwg:           mimePwg,
	Sse:           mimeSse,
	Svg:           mimeSvg,
	Urf:           mimeUrf,
	Wasm:          mimeWasm,
	Xml:           mimeXml,
	Xlsx:          mimeXlsx,
	Zip:           mimeZip,
	Zip7:          mimeZip7,
}

var byMime = func() map[string]MediaType {
	m := make(map[string]MediaType, len(mimes)+1)
	for mt, s := range mimes {
		m[s] = MediaType(mt)
	}
	m[mimeZipWin] = Zip
	return m
}()

// Parse maps a MIME string, optionally carrying parameters such as charset,
// to a MediaType.
func Parse(mime string) MediaType {
	if idx := strings.Index(mime, ";"); idx >= 0 {
		mime = mime[:idx]
	}
	mime = strings.ToLower(strings.TrimSpace(mime))
	if mt, ok := byMime[mime]; ok {
		return mt
	}
	return ByteStream
}

// FromHeader maps a Content-Type header value to a MediaType. A missing
// header is treated as text/plain.
func FromHeader(contentType string) MediaType {
	if strings.TrimSpace(contentType) == "" {
		return Plain
	}
	return Parse(contentType)
}

func (mt MediaType) String() string {
	if mt < 0 || int(mt) >= len(mimes) {
		return mimeByteStream
	}
	return mimes[mt]
}

// MarshalText encodes the media type as its MIME string.
func (mt MediaType) MarshalText() ([]byte, error) {
	return []byte(mt.String()), nil
}

// UnmarshalText decodes a MIME string.
func (mt *MediaType) UnmarshalText(text []byte) error {
	*mt = Parse(string(text))
	return nil
}

var _ json.Marshaler = MediaType(0)

// MarshalJSON encodes the media type as a JSON string.
func (mt MediaType) MarshalJSON() ([]byte, error) {
	return json.Marshal(mt.String())
}
