package store

import (
	"github.com/Ratio1/fetchstore_sdk_go/pkg/fetch"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/messages"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/reactive"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/transfer"
)

// UploadStore tracks the transfer state of file uploads. Response messages go
// to a caller supplied Messages.
type UploadStore struct {
	transferAccessors
	core *core
}

// NewUploadStore returns an idle upload store.
func NewUploadStore(client *fetch.Client, opts ...Option) *UploadStore {
	c := newCore(client, opts)
	return &UploadStore{transferAccessors: transferAccessors{c: c}, core: c}
}

// Invalidate returns to Empty and drops results of uploads in flight.
func (u *UploadStore) Invalidate() {
	u.core.supersede()
	u.core.state.Set(transfer.Empty())
}

// Store sends req, typically carrying a File, and replaces msgs with the
// response messages.
func (u *UploadStore) Store(req fetch.Request, msgs *messages.Messages, cb fetch.Callback) {
	u.core.client.LoggerFor(req).Debug("request to store", "url", req.URL())
	fetchEntity[any](u.core, req.WithIsLoad(false), orEmpty(msgs), nil, cb)
}

// UploadWithResponse is UploadStore.Store that also writes the returned entity
// into response.
func UploadWithResponse[R any](u *UploadStore, req fetch.Request, response *reactive.Cell[reactive.Maybe[R]], msgs *messages.Messages, cb fetch.Callback) {
	u.core.client.LoggerFor(req).Debug("request to store", "url", req.URL())
	fetchEntity(u.core, req.WithIsLoad(false), orEmpty(msgs), response, cb)
}

func orEmpty(msgs *messages.Messages) *messages.Messages {
	if msgs == nil {
		return messages.New()
	}
	return msgs
}
