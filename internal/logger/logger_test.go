package logger_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ow-mods/ow-mod-man-sub000/internal/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew_WritesInfoToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "owmods.log")

	log, cleanup, err := logger.New(logger.Options{File: path})
	require.NoError(t, err)

	log.Sugar().Infow("installed mod", "uniqueName", "Author.Mod")
	log.Sugar().Debugw("debug noise")
	cleanup()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "installed mod")
	assert.Contains(t, string(data), "Author.Mod")
	assert.NotContains(t, string(data), "debug noise")
}

func TestNew_NoFile(t *testing.T) {
	log, cleanup, err := logger.New(logger.Options{Verbose: true})
	require.NoError(t, err)
	defer cleanup()
	assert.NotNil(t, log)
}

func TestOrNop(t *testing.T) {
	assert.NotNil(t, logger.OrNop(nil))
}
