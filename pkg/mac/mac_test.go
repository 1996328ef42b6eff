package mac_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ratio1/fetchstore_sdk_go/pkg/mac"
)

func TestNoMAC(t *testing.T) {
	var p mac.NoMAC
	_, ok := p.Sign([]byte("x"))
	assert.False(t, ok)
	valid, err := p.Verify([]byte("x"), "")
	require.NoError(t, err)
	assert.True(t, valid)
}

func TestHMACRoundTrip(t *testing.T) {
	h, err := mac.NewHMACFromHex("00112233445566778899aabbccddeeff")
	require.NoError(t, err)

	body := []byte(`{"id":1}`)
	sig, ok := h.Sign(body)
	require.True(t, ok)

	valid, err := h.Verify(body, sig)
	require.NoError(t, err)
	assert.True(t, valid)

	valid, err = h.Verify([]byte(`{"id":2}`), sig)
	require.NoError(t, err)
	assert.False(t, valid)

	valid, err = h.Verify(body, "")
	require.NoError(t, err)
	assert.False(t, valid)

	_, err = h.Verify(body, "%%%")
	require.Error(t, err)
}

func TestHMACKeyErrors(t *testing.T) {
	_, err := mac.NewHMAC(nil)
	assert.ErrorIs(t, err, mac.ErrEmptyKey)
	_, err = mac.NewHMACFromHex("zz")
	assert.Error(t, err)
}
