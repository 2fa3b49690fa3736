package storage_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alejandrodnm/retrotoken/internal/adapters/storage"
	"github.com/alejandrodnm/retrotoken/internal/domain"
)

func TestSQLiteStore_InsertAndList(t *testing.T) {
	db, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	item, err := db.Insert(ctx, "0xabc", "bitcoin")
	require.NoError(t, err)
	assert.NotEmpty(t, item.ID)
	assert.Equal(t, "0xabc", item.UserID)
	assert.Equal(t, "bitcoin", item.AssetID)
	assert.False(t, item.CreatedAt.IsZero())

	items, err := db.ListByUser(ctx, "0xabc")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, item.ID, items[0].ID)

	ok, err := db.Exists(ctx, "0xabc", "bitcoin")
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestSQLiteStore_DuplicateInsertConflicts(t *testing.T) {
	db, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	_, err = db.Insert(ctx, "0xabc", "bitcoin")
	require.NoError(t, err)

	_, err = db.Insert(ctx, "0xabc", "bitcoin")
	assert.ErrorIs(t, err, domain.ErrConflict)

	// Exactamente una fila tras el conflicto
	items, err := db.ListByUser(ctx, "0xabc")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestSQLiteStore_ConcurrentInsertSamePair(t *testing.T) {
	db, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	// Doble click: dos inserts concurrentes del mismo par.
	// Exactamente uno gana, el otro ve conflicto.
	const attempts = 8
	errs := make([]error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = db.Insert(ctx, "0xabc", "ethereum")
		}(i)
	}
	wg.Wait()

	var oks, conflicts int
	for _, e := range errs {
		switch {
		case e == nil:
			oks++
		default:
			assert.ErrorIs(t, e, domain.ErrConflict)
			conflicts++
		}
	}
	assert.Equal(t, 1, oks)
	assert.Equal(t, attempts-1, conflicts)

	items, err := db.ListByUser(ctx, "0xabc")
	require.NoError(t, err)
	assert.Len(t, items, 1)
}

func TestSQLiteStore_DeleteAbsentReturnsZero(t *testing.T) {
	db, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	n, err := db.DeleteByUserAndAsset(ctx, "0xabc", "bitcoin")
	require.NoError(t, err)
	assert.Zero(t, n)

	// Borrar de nuevo sigue sin ser un error a este nivel
	n, err = db.DeleteByUserAndAsset(ctx, "0xabc", "bitcoin")
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestSQLiteStore_DeleteRemovesRow(t *testing.T) {
	db, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	_, err = db.Insert(ctx, "0xabc", "bitcoin")
	require.NoError(t, err)

	n, err := db.DeleteByUserAndAsset(ctx, "0xabc", "bitcoin")
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	items, err := db.ListByUser(ctx, "0xabc")
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSQLiteStore_UserIsolation(t *testing.T) {
	db, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	_, err = db.Insert(ctx, "0xabc", "bitcoin")
	require.NoError(t, err)
	_, err = db.Insert(ctx, "0xdef", "ethereum")
	require.NoError(t, err)

	items, err := db.ListByUser(ctx, "0xabc")
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "0xabc", items[0].UserID)

	ok, err := db.Exists(ctx, "0xdef", "bitcoin")
	require.NoError(t, err)
	assert.False(t, ok)

	// Mismo asset para otro usuario no conflictúa
	_, err = db.Insert(ctx, "0xdef", "bitcoin")
	assert.NoError(t, err)
}

func TestSQLiteStore_ListOrderedNewestFirst(t *testing.T) {
	db, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	ctx := context.Background()

	for _, assetID := range []string{"bitcoin", "ethereum", "solana"} {
		_, err := db.Insert(ctx, "0xabc", assetID)
		require.NoError(t, err)
		time.Sleep(2 * time.Millisecond) // createdAt distintos
	}

	items, err := db.ListByUser(ctx, "0xabc")
	require.NoError(t, err)
	require.Len(t, items, 3)

	assert.Equal(t, "solana", items[0].AssetID)
	assert.Equal(t, "ethereum", items[1].AssetID)
	assert.Equal(t, "bitcoin", items[2].AssetID)
	assert.True(t, items[0].CreatedAt.After(items[2].CreatedAt))
}

func TestSQLiteStore_EmptyListIsNotAnError(t *testing.T) {
	db, err := storage.NewSQLiteStore(":memory:")
	require.NoError(t, err)
	defer db.Close()

	items, err := db.ListByUser(context.Background(), "nobody")
	require.NoError(t, err)
	assert.NotNil(t, items)
	assert.Empty(t, items)
}
