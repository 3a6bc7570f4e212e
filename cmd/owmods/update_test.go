package main

import (
	"encoding/json"
	"testing"

	"github.com/ow-mods/ow-mod-man-sub000/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdateCmd_Structure(t *testing.T) {
	assert.Equal(t, "update", updateCmd.Use)
	assert.NotEmpty(t, updateCmd.Short)
	assert.NotNil(t, updateCmd.Flags().Lookup("dry-run"))
}

func TestUpdateCmd_UpToDate(t *testing.T) {
	env := newTestEnv(t)
	env.addMod(t, domain.Manifest{UniqueName: "Author.Alpha", Name: "Alpha", Version: "1.0.0"}, true)
	env.setCatalog(t, domain.RemoteMod{UniqueName: "Author.Alpha", Name: "Alpha", Version: "1.0.0"})

	out, err := execute(t, updateCmd, "update")
	require.NoError(t, err)
	assert.Contains(t, out, "All mods are up to date")
}

func TestUpdateCmd_DryRun(t *testing.T) {
	env := newTestEnv(t)
	env.addMod(t, domain.Manifest{UniqueName: "Author.Alpha", Name: "Alpha", Version: "1.0.0"}, true)
	env.addMod(t, domain.Manifest{UniqueName: "Author.Beta", Name: "Beta", Version: "2.0.0"}, true)
	env.setCatalog(t,
		domain.RemoteMod{UniqueName: "Author.Alpha", Name: "Alpha", Version: "v1.1.0"},
		domain.RemoteMod{UniqueName: "Author.Beta", Name: "Beta", Version: "1.9.0"},
	)

	out, err := execute(t, updateCmd, "update", "--dry-run")
	require.NoError(t, err)

	assert.Contains(t, out, "Author.Alpha")
	assert.Contains(t, out, "1.1.0")
	assert.NotContains(t, out, "Author.Beta")
	assert.Contains(t, out, "1 update(s) available")
}

func TestUpdateCmd_DryRunJSON(t *testing.T) {
	env := newTestEnv(t)
	env.addMod(t, domain.Manifest{UniqueName: "Author.Alpha", Name: "Alpha", Version: "1.0.0"}, true)
	env.setCatalog(t, domain.RemoteMod{UniqueName: "Author.Alpha", Name: "Alpha", Version: "1.1.0"})
	jsonOutput = true
	t.Cleanup(func() { jsonOutput = false })

	out, err := execute(t, updateCmd, "update", "--dry-run")
	require.NoError(t, err)

	var entries []updateJSON
	require.NoError(t, json.Unmarshal([]byte(out), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "1.0.0", entries[0].CurrentVersion)
	assert.Equal(t, "1.1.0", entries[0].LatestVersion)
}
