package redis

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStore_GetSet(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	ctx := context.Background()
	s, err := New(ctx, Config{Addr: mr.Addr(), Prefix: "ecobot:"})
	require.NoError(t, err)
	defer s.Close()

	_, ok, err := s.Get(ctx, "plasticDetectionRecords")
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, s.Set(ctx, "plasticDetectionRecords", []byte(`[]`)))

	value, ok, err := s.Get(ctx, "plasticDetectionRecords")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, `[]`, string(value))

	raw, err := mr.Get("ecobot:plasticDetectionRecords")
	require.NoError(t, err)
	assert.Equal(t, `[]`, raw)
}

func TestNew_Unreachable(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	addr := mr.Addr()
	mr.Close()

	_, err = New(context.Background(), Config{Addr: addr})
	assert.Error(t, err)
}

func TestStore_ServerError(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	s, err := New(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	defer s.Close()

	mr.SetError("READONLY quota exceeded")
	err = s.Set(context.Background(), "k", []byte("v"))
	assert.Error(t, err)
}

func TestStore_Ping(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)

	s, err := New(context.Background(), Config{Addr: mr.Addr()})
	require.NoError(t, err)
	defer s.Close()

	assert.NoError(t, s.Ping(context.Background()))

	mr.Close()
	assert.Error(t, s.Ping(context.Background()))
}
