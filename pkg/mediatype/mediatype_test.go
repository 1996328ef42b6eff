package mediatype_test

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ratio1/fetchstore_sdk_go/pkg/mediatype"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want mediatype.MediaType
	}{
		{"application/json", mediatype.Json},
		{"application/json; charset=utf-8", mediatype.Json},
		{" Application/CBOR ", mediatype.Cbor},
		{"application/x-zip-compressed", mediatype.Zip},
		{"text/plain", mediatype.Plain},
		{"application/unknown", mediatype.ByteStream},
		{"", mediatype.ByteStream},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, mediatype.Parse(tc.in), tc.in)
	}
}

func TestFromHeaderMissing(t *testing.T) {
	assert.Equal(t, mediatype.Plain, mediatype.FromHeader(""))
	assert.Equal(t, mediatype.Json, mediatype.FromHeader("application/json"))
}

func TestTextRoundTrip(t *testing.T) {
	data, err := json.Marshal(struct {
		Type mediatype.MediaType `json:"type"`
	}{Type: mediatype.Pdf})
	require.NoError(t, err)
	assert.JSONEq(t, `{"type":"application/pdf"}`, string(data))

	var out struct {
		Type mediatype.MediaType `json:"type"`
	}
	require.NoError(t, json.Unmarshal(data, &out))
	assert.Equal(t, mediatype.Pdf, out.Type)
}
