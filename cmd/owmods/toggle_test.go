package main

import (
	"testing"

	"github.com/ow-mods/ow-mod-man-sub000/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleCmds_Structure(t *testing.T) {
	assert.Equal(t, "enable <unique-name>", enableCmd.Use)
	assert.Equal(t, "disable <unique-name>", disableCmd.Use)
	assert.NotNil(t, enableCmd.Flags().Lookup("recursive"))
	assert.NotNil(t, disableCmd.Flags().Lookup("recursive"))
}

func TestDisableCmd(t *testing.T) {
	env := newTestEnv(t)
	env.addMod(t, domain.Manifest{UniqueName: "Author.Alpha", Name: "Alpha", Version: "1.0.0"}, true)

	out, err := execute(t, disableCmd, "disable", "Author.Alpha")
	require.NoError(t, err)

	assert.Contains(t, out, "Disabled Author.Alpha")
	assert.False(t, env.modEnabled(t, "Author.Alpha"))
}

func TestEnableCmd_Recursive(t *testing.T) {
	env := newTestEnv(t)
	env.addMod(t, domain.Manifest{UniqueName: "Author.Alpha", Name: "Alpha", Version: "1.0.0", Dependencies: []string{"Author.Lib"}}, false)
	env.addMod(t, domain.Manifest{UniqueName: "Author.Lib", Name: "Lib", Version: "1.0.0"}, false)

	_, err := execute(t, enableCmd, "enable", "-r", "Author.Alpha")
	require.NoError(t, err)

	assert.True(t, env.modEnabled(t, "Author.Alpha"))
	assert.True(t, env.modEnabled(t, "Author.Lib"))
}

func TestEnableCmd_ShowsWarningOnce(t *testing.T) {
	env := newTestEnv(t)
	env.addMod(t, domain.Manifest{
		UniqueName: "Author.Scary",
		Name:       "Scary",
		Version:    "1.0.0",
		Warning:    &domain.ModWarning{Title: "Heads up", Body: "This mod is scary."},
	}, false)

	out, err := execute(t, enableCmd, "enable", "Author.Scary")
	require.NoError(t, err)
	assert.Contains(t, out, "Heads up")
	assert.Contains(t, out, "This mod is scary.")

	out, err = execute(t, warningsCmd, "warnings")
	require.NoError(t, err)
	assert.NotContains(t, out, "Heads up")
}

func TestEnableCmd_UnknownMod(t *testing.T) {
	newTestEnv(t)

	_, err := execute(t, enableCmd, "enable", "Author.Nope")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrModNotFound)
}

func TestWarningsCmd(t *testing.T) {
	env := newTestEnv(t)
	env.addMod(t, domain.Manifest{
		UniqueName: "Author.Scary",
		Name:       "Scary",
		Version:    "1.0.0",
		Warning:    &domain.ModWarning{Title: "Heads up", Body: "Body"},
	}, true)

	out, err := execute(t, warningsCmd, "warnings")
	require.NoError(t, err)
	assert.Contains(t, out, "Heads up")

	out, err = execute(t, warningsCmd, "warnings")
	require.NoError(t, err)
	assert.Empty(t, out)
}
