package cache_test

import (
	"path/filepath"
	"testing"

	"github.com/ow-mods/ow-mod-man-sub000/internal/storage/cache"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCache_ArchivePath(t *testing.T) {
	c := cache.New(afero.NewMemMapFs(), "/cache")

	tests := []struct {
		name string
		key  string
		want string
	}{
		{"unique name", "Bwc9876.TimeSaver", filepath.Join("/cache", "op1", "Bwc9876.TimeSaver.zip")},
		{"url", "https://example.com/a.zip", filepath.Join("/cache", "op1", "https___example.com_a.zip.zip")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, c.ArchivePath("op1", tt.key))
		})
	}
}

func TestCache_ExistsAndRemove(t *testing.T) {
	fs := afero.NewMemMapFs()
	c := cache.New(fs, "/cache")

	assert.False(t, c.Exists("op1", "Mod.A"))

	require.NoError(t, afero.WriteFile(fs, c.ArchivePath("op1", "Mod.A"), []byte("zip"), 0644))
	assert.True(t, c.Exists("op1", "Mod.A"))

	require.NoError(t, c.Remove("op1", "Mod.A"))
	assert.False(t, c.Exists("op1", "Mod.A"))

	// Removing twice is fine
	require.NoError(t, c.Remove("op1", "Mod.A"))
}

func TestCache_RemoveOperation(t *testing.T) {
	fs := afero.NewMemMapFs()
	c := cache.New(fs, "/cache")

	require.NoError(t, afero.WriteFile(fs, c.ArchivePath("op1", "Mod.A"), []byte("a"), 0644))
	require.NoError(t, afero.WriteFile(fs, c.ArchivePath("op2", "Mod.B"), []byte("b"), 0644))

	require.NoError(t, c.RemoveOperation("op1"))
	assert.False(t, c.Exists("op1", "Mod.A"))
	assert.True(t, c.Exists("op2", "Mod.B"))
}

func TestCache_Size(t *testing.T) {
	fs := afero.NewMemMapFs()
	c := cache.New(fs, "/cache")

	size, err := c.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(0), size)

	require.NoError(t, afero.WriteFile(fs, c.ArchivePath("op1", "Mod.A"), []byte("12345"), 0644))
	require.NoError(t, afero.WriteFile(fs, c.ArchivePath("op1", "Mod.B"), []byte("123"), 0644))

	size, err = c.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(8), size)

	require.NoError(t, c.Clear())
	size, err = c.Size()
	require.NoError(t, err)
	assert.Equal(t, int64(0), size)
}
