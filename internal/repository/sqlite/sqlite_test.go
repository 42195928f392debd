package sqlite

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) (*DB, string) {
	t.Helper()

	dbPath := filepath.Join(t.TempDir(), "nested", "test.db")
	db, err := New(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db, dbPath
}

func TestDatabase_Connection(t *testing.T) {
	db, dbPath := setupTestDB(t)

	_, err := os.Stat(dbPath)
	assert.NoError(t, err, "database file should exist")
	assert.NoError(t, db.Ping(context.Background()))
}

func TestDatabase_GetSet(t *testing.T) {
	db, _ := setupTestDB(t)
	ctx := context.Background()

	_, ok, err := db.Get(ctx, "plasticDetectionRecords")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, db.Set(ctx, "plasticDetectionRecords", []byte(`[]`)))
	require.NoError(t, db.Set(ctx, "plasticDetectionRecords", []byte(`[{"a":1}]`)))

	value, ok, err := db.Get(ctx, "plasticDetectionRecords")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[{"a":1}]`, string(value))
}

func TestDatabase_Reopen(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "test.db")
	db, err := New(dbPath)
	require.NoError(t, err)
	require.NoError(t, db.Set(context.Background(), "k", []byte("persisted")))
	require.NoError(t, db.Close())

	reopened, err := New(dbPath)
	require.NoError(t, err)
	defer reopened.Close()

	value, ok, err := reopened.Get(context.Background(), "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "persisted", string(value))
}

func TestDatabase_ConcurrentAccess(t *testing.T) {
	db, _ := setupTestDB(t)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			key := "concurrent_" + string(rune('a'+idx))
			assert.NoError(t, db.Set(context.Background(), key, []byte{byte(idx)}))
		}(i)
	}
	wg.Wait()

	for i := 0; i < 10; i++ {
		value, ok, err := db.Get(context.Background(), "concurrent_"+string(rune('a'+i)))
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, []byte{byte(i)}, value)
	}
}
