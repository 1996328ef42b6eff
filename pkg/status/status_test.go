package status_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ratio1/fetchstore_sdk_go/pkg/status"
)

func TestFromHTTP(t *testing.T) {
	tests := []struct {
		in   int
		want status.Code
	}{
		{200, status.Ok},
		{201, status.Created},
		{204, status.NoContent},
		{304, status.NotModified},
		{413, status.PayloadTooBig},
		{429, status.RateLimited},
		{501, status.NotImplemented},
		{903, status.DecodeFailed},
		{302, status.Undefined},
		{418, status.Undefined},
		{0, status.Undefined},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, status.FromHTTP(tc.in), "code %d", tc.in)
	}
}

func TestSuccessPartition(t *testing.T) {
	for _, c := range []status.Code{status.Ok, status.Created, status.NoContent, status.NotModified} {
		assert.True(t, c.IsSuccess(), c.String())
		assert.False(t, c.IsFailure(), c.String())
	}
	for _, c := range []status.Code{status.BadRequest, status.FetchFailed, status.FetchTimeout, status.DecodeFailed, status.Undefined, status.NotImplemented} {
		assert.False(t, c.IsSuccess(), c.String())
	}
}

func TestIsLocal(t *testing.T) {
	assert.True(t, status.FetchFailed.IsLocal())
	assert.True(t, status.FetchTimeout.IsLocal())
	assert.True(t, status.DecodeFailed.IsLocal())
	assert.False(t, status.InternalServerError.IsLocal())
	assert.False(t, status.Undefined.IsLocal())
}

func TestFromBoolAndString(t *testing.T) {
	assert.Equal(t, status.Ok, status.FromBool(true))
	assert.Equal(t, status.BadRequest, status.FromBool(false))
	assert.Equal(t, "FetchTimeout", status.FetchTimeout.String())
	assert.Equal(t, "Code(777)", status.Code(777).String())
}
