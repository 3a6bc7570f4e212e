package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ow-mods/ow-mod-man-sub000/internal/storage/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_DefaultValues(t *testing.T) {
	dir := t.TempDir()
	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, config.DefaultDatabaseURL, cfg.DatabaseURL)
	assert.Equal(t, config.DefaultConcurrency, cfg.Concurrency)
	assert.Empty(t, cfg.OwmlPath)
	assert.Empty(t, cfg.WarningsShown)
}

func TestLoadConfig_FromFile(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, config.FileName)

	content := `
owml_path: /games/OWML
database_url: http://localhost/database.json
warnings_shown:
  - Author.Mod
concurrency: 2
`
	err := os.WriteFile(configPath, []byte(content), 0644)
	require.NoError(t, err)

	cfg, err := config.Load(dir)
	require.NoError(t, err)

	assert.Equal(t, "/games/OWML", cfg.OwmlPath)
	assert.Equal(t, "http://localhost/database.json", cfg.DatabaseURL)
	assert.Equal(t, []string{"Author.Mod"}, cfg.WarningsShown)
	assert.Equal(t, 2, cfg.Concurrency)
	assert.Equal(t, filepath.Join("/games/OWML", "Mods"), cfg.ModsDir())
}

func TestLoadConfig_EnvOverride(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte("owml_path: /from/file\n"), 0644))
	t.Setenv("OWMODS_OWML_PATH", "/from/env")

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "/from/env", cfg.OwmlPath)
}

func TestLoadConfig_InvalidConcurrencyFallsBack(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte("concurrency: 0\n"), 0644))

	cfg, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, config.DefaultConcurrency, cfg.Concurrency)
}

func TestLoadConfig_Malformed(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, config.FileName), []byte("owml_path: [unterminated\n"), 0644))

	_, err := config.Load(dir)
	assert.Error(t, err)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	dir := t.TempDir()

	cfg := config.Default()
	cfg.OwmlPath = "/games/OWML"
	assert.True(t, cfg.MarkWarningShown("Author.Mod"))
	assert.False(t, cfg.MarkWarningShown("Author.Mod"))

	require.NoError(t, cfg.Save(dir))

	data, err := os.ReadFile(filepath.Join(dir, config.FileName))
	require.NoError(t, err)
	assert.Contains(t, string(data), "owml_path: /games/OWML")

	loaded, err := config.Load(dir)
	require.NoError(t, err)
	assert.Equal(t, "/games/OWML", loaded.OwmlPath)
	assert.True(t, loaded.WarningShown("Author.Mod"))
}

func TestSaveFile_CreatesParentDir(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "owmods.yaml")

	cfg := config.Default()
	cfg.DatabaseURL = "/srv/database.json"
	require.NoError(t, cfg.SaveFile(path))

	loaded, err := config.LoadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "/srv/database.json", loaded.DatabaseURL)
}
