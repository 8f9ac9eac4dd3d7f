package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStorePutGetDelete(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	_, err := store.Get(ctx, "orders/b1/o1")
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.Put(ctx, "orders/b1/o1", []byte(`{"id":"o1"}`)))

	got, err := store.Get(ctx, "orders/b1/o1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"o1"}`, string(got))

	require.NoError(t, store.Delete(ctx, "orders/b1/o1"))
	_, err = store.Get(ctx, "orders/b1/o1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryStoreListPrefix(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	require.NoError(t, store.Put(ctx, "orders/b1/o2", []byte("2")))
	require.NoError(t, store.Put(ctx, "orders/b1/o1", []byte("1")))
	require.NoError(t, store.Put(ctx, "orders/b2/o3", []byte("3")))
	require.NoError(t, store.Put(ctx, "allOrders/o1", []byte("g1")))

	docs, err := store.ListPrefix(ctx, "orders/b1/")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "orders/b1/o1", docs[0].Path)
	assert.Equal(t, "orders/b1/o2", docs[1].Path)
}

func TestMemoryStoreCopiesValues(t *testing.T) {
	ctx := context.Background()
	store := NewMemoryStore()

	payload := []byte(`{"n":1}`)
	require.NoError(t, store.Put(ctx, "p", payload))
	payload[0] = 'X'

	got, err := store.Get(ctx, "p")
	require.NoError(t, err)
	assert.Equal(t, byte('{'), got[0])
}

func TestMemoryStoreHonorsCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	store := NewMemoryStore()
	assert.Error(t, store.Put(ctx, "p", []byte("v")))
	_, err := store.Get(ctx, "p")
	assert.Error(t, err)
}
