package core_test

import (
	"context"
	"testing"

	"github.com/ow-mods/ow-mod-man-sub000/internal/core"
	"github.com/ow-mods/ow-mod-man-sub000/internal/domain"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestImporter(t *testing.T, fs afero.Fs) *core.Importer {
	t.Helper()
	return core.NewImporter(core.NewToggler(fs, nil), newTestInstaller(t, fs, nil), nil)
}

func TestExportMods(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeMod(t, fs, "Z", domain.Manifest{UniqueName: "Z.Mod"}, true)
	writeMod(t, fs, "A", domain.Manifest{UniqueName: "A.Mod"}, true)
	writeMod(t, fs, "Off", domain.Manifest{UniqueName: "Off.Mod"}, false)

	data, err := core.ExportMods(fetchLocal(t, fs))
	require.NoError(t, err)
	assert.JSONEq(t, `["A.Mod","Z.Mod"]`, string(data))

	names, err := core.ParseModList(data)
	require.NoError(t, err)
	assert.Equal(t, []string{"A.Mod", "Z.Mod"}, names)
}

func TestExportMods_Empty(t *testing.T) {
	data, err := core.ExportMods(fetchLocal(t, afero.NewMemMapFs()))
	require.NoError(t, err)
	assert.JSONEq(t, `[]`, string(data))
}

func TestParseModList_Invalid(t *testing.T) {
	_, err := core.ParseModList([]byte(`{"not":"a list"}`))
	assert.Error(t, err)
}

func TestImporter_Import_DisableMissing(t *testing.T) {
	fs := afero.NewMemMapFs()
	aPath := writeMod(t, fs, "A", domain.Manifest{UniqueName: "A"}, false)
	bPath := writeMod(t, fs, "B", domain.Manifest{UniqueName: "B"}, true)

	result, err := newTestImporter(t, fs).Import(context.Background(), []string{"A"}, testModsDir, fetchLocal(t, fs), nil, core.ImportOptions{DisableMissing: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, result.Enabled)
	assert.Equal(t, []string{"B"}, result.Disabled)

	assert.True(t, readConfig(t, fs, aPath).Enabled)
	assert.False(t, readConfig(t, fs, bPath).Enabled)
}

func TestImporter_Import_KeepsUnlistedWithoutDisableMissing(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeMod(t, fs, "A", domain.Manifest{UniqueName: "A"}, false)
	bPath := writeMod(t, fs, "B", domain.Manifest{UniqueName: "B"}, true)

	_, err := newTestImporter(t, fs).Import(context.Background(), []string{"A"}, testModsDir, fetchLocal(t, fs), nil, core.ImportOptions{})
	require.NoError(t, err)
	assert.True(t, readConfig(t, fs, bPath).Enabled)
}

func TestImporter_Import_InstallsMissing(t *testing.T) {
	fs := afero.NewMemMapFs()
	writeMod(t, fs, "A", domain.Manifest{UniqueName: "A"}, true)

	catalog := newFakeCatalog(t)
	catalog.add(domain.Manifest{UniqueName: "New", Version: "1.0.0", Warning: &domain.ModWarning{Title: "t", Body: "b"}}, nil)

	result, err := newTestImporter(t, fs).Import(context.Background(), []string{"A", "New", "A"}, testModsDir, fetchLocal(t, fs), catalog.remoteDB(), core.ImportOptions{})
	require.NoError(t, err)
	require.Len(t, result.Installed, 1)
	assert.Equal(t, "New", result.Installed[0].UniqueName())
	assert.Equal(t, []string{"New"}, result.Warnings)

	_, ok := fetchLocal(t, fs).Get("New")
	assert.True(t, ok)
}

func TestImporter_Import_MissingWithoutCatalog(t *testing.T) {
	fs := afero.NewMemMapFs()

	_, err := newTestImporter(t, fs).Import(context.Background(), []string{"Ghost"}, testModsDir, fetchLocal(t, fs), nil, core.ImportOptions{})
	assert.ErrorIs(t, err, domain.ErrModNotFound)
}
