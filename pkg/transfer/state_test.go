package transfer_test

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/Ratio1/fetchstore_sdk_go/pkg/status"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/transfer"
)

var allCodes = []status.Code{
	status.Ok, status.Created, status.NoContent, status.NotModified,
	status.BadRequest, status.Unauthorized, status.Forbidden, status.NotFound,
	status.MethodNotAllowed, status.Conflict, status.PayloadTooBig,
	status.UnsupportedMediaType, status.RateLimited, status.InternalServerError,
	status.NotImplemented, status.FetchFailed, status.FetchTimeout,
	status.DecodeFailed, status.Undefined,
}

func TestZeroValueIsEmpty(t *testing.T) {
	var s transfer.State
	assert.Equal(t, transfer.Empty(), s)
	assert.False(t, s.Pending())
	assert.False(t, s.Loaded())
	assert.True(t, s.NotCompleted())
	assert.True(t, s.NotError())
}

func TestLoadedRequiresSuccess(t *testing.T) {
	assert.True(t, transfer.Loaded(status.Ok).Loaded())
	assert.False(t, transfer.Loaded(status.BadRequest).Loaded())
	assert.False(t, transfer.Stored(status.Ok).Loaded())
	assert.True(t, transfer.Stored(status.Created).Stored())
	assert.False(t, transfer.Stored(status.FetchTimeout).Stored())

	code, ok := transfer.Loaded(status.BadRequest).LoadedStatus()
	assert.True(t, ok)
	assert.Equal(t, status.BadRequest, code)
	_, ok = transfer.Loaded(status.Ok).StoredStatus()
	assert.False(t, ok)
	_, ok = transfer.PendingLoad().LoadedStatus()
	assert.False(t, ok)
}

func TestStopFollowsPendingVerb(t *testing.T) {
	assert.Equal(t, transfer.Loaded(status.NotFound), transfer.Empty().StartLoad().Stop(status.NotFound))
	assert.Equal(t, transfer.Stored(status.Created), transfer.Empty().StartStore().Stop(status.Created))
	assert.Equal(t, transfer.Loaded(status.Ok), transfer.Loaded(status.BadRequest).Stop(status.Ok))
	assert.Equal(t, transfer.Stored(status.Ok), transfer.Stored(status.Conflict).Stop(status.Ok))
}

func TestStopFromEmptyIsFlagged(t *testing.T) {
	next, ok := transfer.Empty().Stopped(status.Ok)
	assert.False(t, ok)
	assert.Equal(t, transfer.Loaded(status.FetchFailed), next)

	_, ok = transfer.PendingStore().Stopped(status.Ok)
	assert.True(t, ok)
}

func TestResetError(t *testing.T) {
	for _, code := range allCodes {
		if code.IsSuccess() {
			continue
		}
		assert.Equal(t, transfer.Loaded(status.Ok), transfer.Loaded(code).ResetError())
		assert.Equal(t, transfer.Stored(status.Ok), transfer.Stored(code).ResetError())
	}
	assert.Equal(t, transfer.Empty(), transfer.Empty().ResetError())
	assert.Equal(t, transfer.PendingLoad(), transfer.PendingLoad().ResetError())
	assert.Equal(t, transfer.PendingStore(), transfer.PendingStore().ResetError())
}

// Random protocol-conforming sequences: loaded() holds iff the last completed
// verb was a load that ended in a success code.
func TestProtocolSequences(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	for run := 0; run < 200; run++ {
		s := transfer.Empty()
		lastVerbLoad := false
		var lastCode status.Code
		completed := false
		for step := 0; step < 20; step++ {
			lastVerbLoad = rng.Intn(2) == 0
			if lastVerbLoad {
				s = s.StartLoad()
			} else {
				s = s.StartStore()
			}
			assert.True(t, s.Pending())
			lastCode = allCodes[rng.Intn(len(allCodes))]
			var ok bool
			s, ok = s.Stopped(lastCode)
			assert.True(t, ok)
			completed = true
		}
		assert.True(t, completed)
		assert.Equal(t, lastVerbLoad && lastCode.IsSuccess(), s.Loaded(), s.String())
		assert.Equal(t, !lastVerbLoad && lastCode.IsSuccess(), s.Stored(), s.String())
	}
}

func TestString(t *testing.T) {
	assert.Equal(t, "Loaded(FetchTimeout)", transfer.Loaded(status.FetchTimeout).String())
	assert.Equal(t, "PendingStore", transfer.PendingStore().String())
}
