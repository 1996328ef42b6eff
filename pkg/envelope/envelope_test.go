package envelope_test

import (
	"encoding/json"
	"testing"

	"github.com/fxamacker/cbor/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ratio1/fetchstore_sdk_go/pkg/envelope"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/messages"
)

type thing struct {
	ID int `json:"id" cbor:"id"`
}

func TestEntityResponseDecode(t *testing.T) {
	var resp envelope.EntityResponse[thing]
	require.NoError(t, json.Unmarshal([]byte(`{"messages":{},"entity":{"id":1}}`), &resp))
	require.NotNil(t, resp.Entity)
	assert.Equal(t, 1, resp.Entity.ID)
	assert.Equal(t, 0, resp.MessagesOrEmpty().Len())

	var bare envelope.EntityResponse[thing]
	require.NoError(t, json.Unmarshal([]byte(`{}`), &bare))
	assert.Nil(t, bare.Entity)
	assert.NotNil(t, bare.MessagesOrEmpty())
}

func TestCollectionResponseDecode(t *testing.T) {
	var resp envelope.CollectionResponse[thing]
	require.NoError(t, json.Unmarshal([]byte(`{"messages":{"service":[{"kind":"info","text":"ok"}]},"collection":[{"id":2},{"id":1}]}`), &resp))
	assert.Equal(t, []thing{{ID: 2}, {ID: 1}}, resp.Collection)
	assert.Equal(t, envelope.DefaultPaging(), resp.PagingOrDefault())
	assert.False(t, resp.MessagesOrEmpty().Error())

	var empty envelope.CollectionResponse[thing]
	require.NoError(t, json.Unmarshal([]byte(`{"messages":{},"collection":[],"paging":{"limit":10,"next":"b"}}`), &empty))
	assert.NotNil(t, empty.Collection)
	assert.Empty(t, empty.Collection)
	assert.Equal(t, envelope.Paging{Limit: 10, Next: "b"}, empty.PagingOrDefault())
	assert.True(t, empty.PagingOrDefault().HasNext())

	var absent envelope.CollectionResponse[thing]
	require.NoError(t, json.Unmarshal([]byte(`{"messages":{}}`), &absent))
	assert.Nil(t, absent.Collection)

	data, err := json.Marshal(envelope.NewCollectionResponse(nil, envelope.DefaultPaging(), []thing{}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"messages":{},"paging":{"limit":25},"collection":[]}`, string(data))
}

func TestCollectionResponseCBOR(t *testing.T) {
	in := envelope.NewCollectionResponse(messages.FromServiceError("x"), envelope.Paging{Limit: 5, Prev: "a"}, []thing{{ID: 3}})
	data, err := cbor.Marshal(in)
	require.NoError(t, err)

	var out envelope.CollectionResponse[thing]
	require.NoError(t, cbor.Unmarshal(data, &out))
	assert.Equal(t, in.Collection, out.Collection)
	assert.Equal(t, *in.Paging, out.PagingOrDefault())
	assert.True(t, out.MessagesOrEmpty().Error())
}
