package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHistoryCmd_Structure(t *testing.T) {
	assert.Equal(t, "history [unique-name]", historyCmd.Use)
	assert.NotNil(t, historyCmd.Flags().Lookup("limit"))
}

func TestHistoryCmd_Empty(t *testing.T) {
	newTestEnv(t)

	out, err := execute(t, historyCmd, "history")
	require.NoError(t, err)
	assert.Contains(t, out, "No history recorded")
}

func TestCacheCmds(t *testing.T) {
	newTestEnv(t)

	staged := filepath.Join(dataDir, "downloads", "op-1", "mod.zip")
	require.NoError(t, os.MkdirAll(filepath.Dir(staged), 0755))
	require.NoError(t, os.WriteFile(staged, make([]byte, 2048), 0644))

	out, err := execute(t, cacheCmd, "cache", "info")
	require.NoError(t, err)
	assert.Contains(t, out, "2.0 KiB")

	out, err = execute(t, cacheCmd, "cache", "clear")
	require.NoError(t, err)
	assert.Contains(t, out, "Cache cleared")
	assert.NoFileExists(t, staged)
}
