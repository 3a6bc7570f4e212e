package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/ow-mods/ow-mod-man-sub000/internal/domain"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

// testEnv is an OWML install with a catalog file, wired into the global flags
type testEnv struct {
	owmlPath    string
	modsDir     string
	catalogPath string
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	configDir = t.TempDir()
	configFile = ""
	dataDir = t.TempDir()
	verbose = false
	jsonOutput = false
	noColor = true
	resetCommandFlags()

	root := t.TempDir()
	env := &testEnv{
		owmlPath:    filepath.Join(root, "OWML"),
		modsDir:     filepath.Join(root, "OWML", domain.ModsDirName),
		catalogPath: filepath.Join(root, "database.json"),
	}
	require.NoError(t, os.MkdirAll(env.modsDir, 0755))
	writeJSONFile(t, filepath.Join(env.owmlPath, domain.OwmlManifestFileName), domain.Manifest{
		UniqueName: domain.OwmlUniqueName,
		Name:       "OWML",
		Author:     "Alek",
		Version:    "2.9.0",
	})
	env.setCatalog(t)

	cfg := "owml_path: " + env.owmlPath + "\ndatabase_url: " + env.catalogPath + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(cfg), 0644))

	return env
}

// addMod writes an installed mod folder with an optional config.json
func (e *testEnv) addMod(t *testing.T, m domain.Manifest, enabled bool) string {
	t.Helper()
	dir := filepath.Join(e.modsDir, m.UniqueName)
	writeJSONFile(t, filepath.Join(dir, domain.ManifestFileName), m)
	writeJSONFile(t, filepath.Join(dir, domain.ModConfigFileName), domain.ModStubConfig{Enabled: enabled})
	return dir
}

// setCatalog replaces the catalog file with the given releases plus OWML
func (e *testEnv) setCatalog(t *testing.T, releases ...domain.RemoteMod) {
	t.Helper()
	all := append([]domain.RemoteMod{{
		UniqueName:  domain.OwmlUniqueName,
		Name:        "OWML",
		Author:      "Alek",
		Version:     "2.9.0",
		DownloadURL: "https://example.invalid/OWML.zip",
	}}, releases...)
	writeJSONFile(t, e.catalogPath, map[string]any{"releases": all})
}

func (e *testEnv) modEnabled(t *testing.T, uniqueName string) bool {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(e.modsDir, uniqueName, domain.ModConfigFileName))
	require.NoError(t, err)
	cfg, err := domain.ParseModConfig(data)
	require.NoError(t, err)
	return cfg.Enabled
}

func writeJSONFile(t *testing.T, path string, v any) {
	t.Helper()
	data, err := json.Marshal(v)
	require.NoError(t, err)
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, data, 0644))
}

// execute runs sub under a throwaway parent and returns its output
func execute(t *testing.T, sub *cobra.Command, args ...string) (string, error) {
	t.Helper()
	cmd := &cobra.Command{Use: "test"}
	cmd.AddCommand(sub)

	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)

	err := cmd.Execute()
	return buf.String(), err
}

// resetCommandFlags clears flag values a previous test may have parsed into the globals
func resetCommandFlags() {
	listRemote, listTag = false, nil
	searchLocal, searchTags, searchLimit = false, nil, 20
	installRecursive, installPrerelease, installURL, installZip = false, false, "", ""
	uninstallRecursive = false
	enableRecursive, disableRecursive = false, false
	validateFix = false
	updateDryRun = false
	importDisableMissing = false
	historyLimit, historyOperation = 20, ""
	setupPrerelease, setupPath = false, ""
}
