package filestore

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/fieldops/internal/repository/kv"
)

func TestStoreRoundTrip(t *testing.T) {
	dir := t.TempDir()
	s, err := New(filepath.Join(dir, "nested"), nil)
	require.NoError(t, err)
	ctx := context.Background()

	_, err = s.Get(ctx, "stock_items")
	assert.ErrorIs(t, err, kv.ErrKeyNotFound)

	require.NoError(t, s.Set(ctx, "stock_items", []byte(`[1]`)))
	require.NoError(t, s.Set(ctx, "stock_items", []byte(`[1,2]`)))

	got, err := s.Get(ctx, "stock_items")
	require.NoError(t, err)
	assert.Equal(t, `[1,2]`, string(got))

	entries, err := os.ReadDir(filepath.Join(dir, "nested"))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary files must not be left behind")
}

func TestStoreRejectsPathKeys(t *testing.T) {
	s, err := New(t.TempDir(), nil)
	require.NoError(t, err)

	assert.Error(t, s.Set(context.Background(), "../escape", []byte("x")))
	_, err = s.Get(context.Background(), "")
	assert.Error(t, err)
}
