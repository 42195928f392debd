package app

import (
	"context"
	"path/filepath"
	"testing"

	"ecobot/internal/config"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenStore_Drivers(t *testing.T) {
	dir := t.TempDir()
	mr := miniredis.RunT(t)

	for _, driver := range []string{config.StoreMemory, config.StoreFile, config.StoreSQLite, config.StoreRedis} {
		t.Run(driver, func(t *testing.T) {
			cfg := &config.Config{
				StoreDriver:   driver,
				DBPath:        filepath.Join(dir, "ecobot.db"),
				DataDirectory: filepath.Join(dir, "files"),
				RedisAddr:     mr.Addr(),
			}
			store, err := OpenStore(context.Background(), cfg)
			require.NoError(t, err)
			defer store.Close()

			ctx := context.Background()
			require.NoError(t, store.Set(ctx, "k", []byte("v")))
			got, ok, err := store.Get(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "v", string(got))
		})
	}
}

func TestOpenStore_UnknownDriver(t *testing.T) {
	_, err := OpenStore(context.Background(), &config.Config{StoreDriver: "mongo"})
	assert.ErrorContains(t, err, "unknown store driver")
}
