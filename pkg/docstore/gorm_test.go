package docstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupGormStore(t *testing.T) *GormStore {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS documents (
  path TEXT PRIMARY KEY,
  value BLOB NOT NULL,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)

	return NewGormStore(db)
}

func TestGormStoreUpsert(t *testing.T) {
	ctx := context.Background()
	store := setupGormStore(t)

	require.NoError(t, store.Put(ctx, "allOrders/o1", []byte(`{"v":1}`)))
	require.NoError(t, store.Put(ctx, "allOrders/o1", []byte(`{"v":2}`)))

	got, err := store.Get(ctx, "allOrders/o1")
	require.NoError(t, err)
	assert.JSONEq(t, `{"v":2}`, string(got))
}

func TestGormStoreGetMissing(t *testing.T) {
	store := setupGormStore(t)
	_, err := store.Get(context.Background(), "allOrders/missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestGormStoreListPrefixOrdered(t *testing.T) {
	ctx := context.Background()
	store := setupGormStore(t)

	require.NoError(t, store.Put(ctx, "orders/b1/o2", []byte("2")))
	require.NoError(t, store.Put(ctx, "orders/b1/o1", []byte("1")))
	require.NoError(t, store.Put(ctx, "orders/b9/o9", []byte("9")))

	docs, err := store.ListPrefix(ctx, "orders/b1/")
	require.NoError(t, err)
	require.Len(t, docs, 2)
	assert.Equal(t, "orders/b1/o1", docs[0].Path)
	assert.Equal(t, "orders/b1/o2", docs[1].Path)
}

func TestGormStoreDelete(t *testing.T) {
	ctx := context.Background()
	store := setupGormStore(t)

	require.NoError(t, store.Put(ctx, "listings/s1/l1", []byte("x")))
	require.NoError(t, store.Delete(ctx, "listings/s1/l1"))

	_, err := store.Get(ctx, "listings/s1/l1")
	assert.ErrorIs(t, err, ErrNotFound)
}
