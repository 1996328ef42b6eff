package store_test

import (
	"cmp"
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ratio1/fetchstore_sdk_go/pkg/envelope"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/fetch"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/fetch/mock"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/mac"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/status"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/store"
	"github.com/Ratio1/fetchstore_sdk_go/pkg/transfer"
)

func byID(id int) func(user) bool {
	return func(u user) bool { return u.ID == id }
}

func TestCollectionLoadReplacesItemsAndPaging(t *testing.T) {
	tr := mock.New().On("GET", "/users", mock.Raw(200, "application/json", []byte(
		`{"messages":{"service":[{"kind":"info","text":"2 users"}]},"paging":{"limit":2,"next":"/users?page=2"},"collection":[{"id":1},{"id":2}]}`)))
	s := store.NewCollectionStoreWithValues(fetch.NewClient(fetch.WithTransport(tr)), []user{{ID: 9}})
	rec := &recorder{}

	s.Load(fetch.NewRequest("/users").JSON(), rec.cb)
	s.Wait()

	assert.Equal(t, []status.Code{status.Ok}, rec.get())
	assert.Equal(t, []user{{ID: 1}, {ID: 2}}, s.Get())
	assert.Equal(t, envelope.Paging{Limit: 2, Next: "/users?page=2"}, s.Paging().Get())
	assert.True(t, s.Paging().Get().HasNext())
	assert.Equal(t, "service: [I: 2 users]", s.Messages().String())
	assert.Equal(t, transfer.Loaded(status.Ok), s.TransferState())

	s.Load(fetch.NewRequest("/users").JSON(), rec.cb)
	s.Wait()
	assert.Equal(t, 1, tr.Calls("GET", "/users"))
}

func TestCollectionLoadWithoutPagingFallsBackToDefault(t *testing.T) {
	tr := mock.New().On("GET", "/users", mock.Raw(200, "application/json", []byte(`{"messages":{}}`)))
	s := store.NewCollectionStoreWithValues(fetch.NewClient(fetch.WithTransport(tr)), []user{{ID: 9}})
	s.Paging().Set(envelope.Paging{Limit: 3, Prev: "x"})

	s.Load(fetch.NewRequest("/users").JSON(), nil)
	s.Wait()

	assert.Equal(t, envelope.DefaultPaging(), s.Paging().Get())
	assert.Equal(t, []user{{ID: 9}}, s.Get(), "absent collection keeps items")
}

func TestCollectionLoadTimeout(t *testing.T) {
	tr := mock.New().On("GET", "/users", mock.Hang())
	s := store.NewCollectionStore[user](fetch.NewClient(fetch.WithTransport(tr)))
	rec := &recorder{}

	s.Load(fetch.NewRequest("/users").JSON().WithTimeout(30*time.Millisecond), rec.cb)
	assert.True(t, s.Pending())
	s.Wait()

	assert.Equal(t, []status.Code{status.FetchTimeout}, rec.get())
	assert.Equal(t, transfer.Loaded(status.FetchTimeout), s.TransferState())
	require.Eventually(t, func() bool { return tr.Aborts() == 1 }, time.Second, 5*time.Millisecond)
	assert.True(t, s.IsEmpty())
}

func TestCollectionStoreEmptySendsNoBody(t *testing.T) {
	key, err := mac.NewHMAC([]byte("secret"))
	require.NoError(t, err)
	tr := mock.New().On("PUT", "/users", mock.Raw(204, "", nil))
	s := store.NewCollectionStore[user](fetch.NewClient(fetch.WithTransport(tr), fetch.WithSigner(key)))
	rec := &recorder{}

	s.Store(fetch.NewRequest("/users").Update().JSON(), rec.cb)
	s.Wait()

	last, ok := tr.LastRequest()
	require.True(t, ok)
	assert.Empty(t, last.Body)
	assert.Empty(t, last.Header.Get(mac.Header))
	assert.Equal(t, []status.Code{status.NoContent}, rec.get())
	assert.Equal(t, transfer.Stored(status.NoContent), s.TransferState())
}

func TestCollectionStoreSignsBody(t *testing.T) {
	key, err := mac.NewHMAC([]byte("secret"))
	require.NoError(t, err)
	tr := mock.New().On("PUT", "/users", mock.Raw(200, "application/json", []byte(`{"messages":{}}`)))
	s := store.NewCollectionStoreWithValues(fetch.NewClient(fetch.WithTransport(tr), fetch.WithSigner(key)), []user{{ID: 1}, {ID: 2}})

	s.Store(fetch.NewRequest("/users").Update().JSON(), nil)
	s.Wait()

	last, _ := tr.LastRequest()
	assert.JSONEq(t, `[{"id":1},{"id":2}]`, string(last.Body))
	want, _ := key.Sign(last.Body)
	assert.Equal(t, want, last.Header.Get(mac.Header))
	assert.Equal(t, []user{{ID: 1}, {ID: 2}}, s.Get())
}

func TestCollectionCBORRoundTrip(t *testing.T) {
	tr := mock.New().On("GET", "/users", mock.CBOR(200, map[string]any{
		"messages":   map[string]any{},
		"collection": []map[string]any{{"id": 3, "name": "c"}},
	}))
	s := store.NewCollectionStore[user](fetch.NewClient(fetch.WithTransport(tr)))

	s.Load(fetch.NewRequest("/users").CBOR(), nil)
	s.Wait()

	assert.Equal(t, []user{{ID: 3, Name: "c"}}, s.Get())
}

func TestCollectionItemHelpers(t *testing.T) {
	s := store.NewCollectionStoreWithValues(nil, []user{{ID: 1}, {ID: 3}})
	cmpID := func(a, b user) int { return cmp.Compare(a.ID, b.ID) }

	s.SetOrInsert(user{ID: 2}, cmpID)
	s.SetOrInsert(user{ID: 3, Name: "three"}, cmpID)
	assert.Equal(t, []user{{ID: 1}, {ID: 2}, {ID: 3, Name: "three"}}, s.Get())

	assert.True(t, s.Any(byID(2)))
	assert.False(t, s.All(byID(2)))
	found, ok := s.Find(byID(3))
	assert.True(t, ok)
	assert.Equal(t, "three", found.Name)

	s.SetWhere(byID(1), user{ID: 1, Name: "one"})
	s.SetOrAdd(byID(4), user{ID: 4})
	s.RemoveWhere(byID(2))
	assert.Equal(t, []user{{ID: 1, Name: "one"}, {ID: 3, Name: "three"}, {ID: 4}}, s.Get())

	prev := s.Replace([]user{{ID: 5}})
	assert.Len(t, prev, 3)
	assert.Equal(t, 1, s.Len())

	s.Reset()
	assert.True(t, s.IsEmpty())
}

func TestCollectionResetToEmpty(t *testing.T) {
	s := store.NewCollectionStoreWithValues(nil, []user{{ID: 1}})
	s.SetTransferState(transfer.Loaded(status.Ok))
	s.Messages().AddServiceError("x")
	s.Paging().Set(envelope.Paging{Limit: 1})

	s.ResetToEmpty()

	assert.Equal(t, transfer.Empty(), s.TransferState())
	assert.Equal(t, 0, s.Messages().Len())
	assert.Equal(t, envelope.DefaultPaging(), s.Paging().Get())
	assert.True(t, s.IsEmpty())
}

func TestCollectionState(t *testing.T) {
	assert.Equal(t, store.CollectionPending, store.CollectionStateOf(true, true))
	assert.Equal(t, store.CollectionEmpty, store.CollectionStateOf(false, true))
	assert.Equal(t, store.CollectionNotEmpty, store.CollectionStateOf(false, false))

	assert.Equal(t, store.CollectionPending, store.CombineCollectionStates(store.CollectionNotEmpty, store.CollectionPending))
	assert.Equal(t, store.CollectionNotEmpty, store.CombineCollectionStates(store.CollectionEmpty, store.CollectionNotEmpty))
	assert.Equal(t, store.CollectionEmpty, store.CombineCollectionStates())

	assert.True(t, store.CollectionPending.EmptyPending())
	assert.True(t, store.CollectionPending.NotEmptyPending())
	assert.False(t, store.CollectionEmpty.NotEmptyPending())
	assert.Equal(t, "NotEmpty", store.CollectionNotEmpty.String())
}

func TestSubscribeCollectionState(t *testing.T) {
	tr := mock.New().On("GET", "/users", mock.Hang())
	s := store.NewCollectionStore[user](fetch.NewClient(fetch.WithTransport(tr)))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := s.SubscribeCollectionState(ctx)
	awaitCollectionState(t, ch, store.CollectionEmpty)

	s.Collection().Push(user{ID: 1})
	awaitCollectionState(t, ch, store.CollectionNotEmpty)

	s.Load(fetch.NewRequest("/users").WithTimeout(50*time.Millisecond), nil)
	awaitCollectionState(t, ch, store.CollectionPending)

	s.Wait()
	awaitCollectionState(t, ch, store.CollectionNotEmpty)
	assert.Equal(t, store.CollectionNotEmpty, s.CollectionState())
}

func awaitCollectionState(t *testing.T, ch <-chan store.CollectionState, want store.CollectionState) {
	t.Helper()
	timeout := time.After(time.Second)
	for {
		select {
		case got, ok := <-ch:
			require.True(t, ok, "subscription closed")
			if got == want {
				return
			}
		case <-timeout:
			t.Fatalf("collection state %s not observed", want)
		}
	}
}
