package sqlite

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRepository(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "state.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = repo.Close() })
	return repo
}

func TestRepositoryAddressLifecycle(t *testing.T) {
	repo := newTestRepository(t)
	ctx := context.Background()

	_, ok, err := repo.LoadAddress(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.SaveAddress(ctx, "0xaaa"))
	require.NoError(t, repo.SaveAddress(ctx, "0xbbb"))

	address, ok, err := repo.LoadAddress(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "0xbbb", address)

	require.NoError(t, repo.ClearAddress(ctx))
	_, ok, err = repo.LoadAddress(ctx)
	require.NoError(t, err)
	assert.False(t, ok)

	require.NoError(t, repo.ClearAddress(ctx))
	require.NoError(t, repo.Ping(ctx))
}

func TestRepositoryPersistsAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "state.db")
	ctx := context.Background()

	first, err := NewRepository(path)
	require.NoError(t, err)
	require.NoError(t, first.SaveAddress(ctx, "0xabc"))
	require.NoError(t, first.Close())

	second, err := NewRepository(path)
	require.NoError(t, err)
	defer second.Close()

	address, ok, err := second.LoadAddress(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "0xabc", address)
}

func TestNewRepositoryRequiresPath(t *testing.T) {
	_, err := NewRepository("")
	assert.Error(t, err)
}
