package core_test

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/ow-mods/ow-mod-man-sub000/internal/core"
	"github.com/ow-mods/ow-mod-man-sub000/internal/domain"
	"github.com/ow-mods/ow-mod-man-sub000/internal/storage/cache"
	"github.com/ow-mods/ow-mod-man-sub000/internal/storage/db"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const (
	testOwmlPath = "/game/OWML"
	testModsDir  = "/game/OWML/Mods"
)

// writeMod creates a mod folder with a manifest and a config.json holding enabled
func writeMod(t *testing.T, fs afero.Fs, folder string, m domain.Manifest, enabled bool) string {
	t.Helper()
	modPath := filepath.Join(testModsDir, folder)
	writeManifest(t, fs, modPath, m)
	data, err := json.Marshal(domain.ModStubConfig{Enabled: enabled})
	require.NoError(t, err)
	require.NoError(t, afero.WriteFile(fs, filepath.Join(modPath, domain.ModConfigFileName), data, 0644))
	return modPath
}

func writeManifest(t *testing.T, fs afero.Fs, modPath string, m domain.Manifest) {
	t.Helper()
	data, err := json.Marshal(m)
	require.NoError(t, err)
	require.NoError(t, fs.MkdirAll(modPath, 0755))
	require.NoError(t, afero.WriteFile(fs, filepath.Join(modPath, domain.ManifestFileName), data, 0644))
}

func manifestJSON(t *testing.T, m domain.Manifest) string {
	t.Helper()
	data, err := json.Marshal(m)
	require.NoError(t, err)
	return string(data)
}

// buildZip returns an in-memory zip holding files
func buildZip(t *testing.T, files map[string]string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w := zip.NewWriter(&buf)
	for name, content := range files {
		fw, err := w.Create(name)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return buf.Bytes()
}

// modZip packages a manifest plus extra files under a top-level folder
func modZip(t *testing.T, m domain.Manifest, extra map[string]string) []byte {
	t.Helper()
	files := map[string]string{
		m.UniqueName + "/" + domain.ManifestFileName: manifestJSON(t, m),
	}
	for name, content := range extra {
		files[m.UniqueName+"/"+name] = content
	}
	return buildZip(t, files)
}

// fakeCatalog serves a database.json plus one archive per registered mod
type fakeCatalog struct {
	t        *testing.T
	server   *httptest.Server
	mu       sync.Mutex
	releases []domain.RemoteMod
	archives map[string][]byte
	requests map[string]int
}

func newFakeCatalog(t *testing.T) *fakeCatalog {
	t.Helper()
	c := &fakeCatalog{
		t:        t,
		archives: make(map[string][]byte),
		requests: make(map[string]int),
	}
	c.server = httptest.NewServer(http.HandlerFunc(c.serve))
	t.Cleanup(c.server.Close)
	return c
}

func (c *fakeCatalog) serve(w http.ResponseWriter, r *http.Request) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.requests[r.URL.Path]++

	if r.URL.Path == "/database.json" {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"releases": c.releases})
		return
	}

	name := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/mods/"), ".zip")
	data, ok := c.archives[name]
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		return
	}
	_, _ = w.Write(data)
}

// add registers a catalog release whose archive contains the manifest and extra files
func (c *fakeCatalog) add(m domain.Manifest, extra map[string]string) {
	c.t.Helper()
	c.addArchive(m.UniqueName, m.Version, modZip(c.t, m, extra))
}

func (c *fakeCatalog) addArchive(uniqueName, version string, archive []byte) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.archives[uniqueName] = archive
	rm := domain.RemoteMod{
		UniqueName:  uniqueName,
		Name:        uniqueName,
		Version:     version,
		DownloadURL: c.archiveURL(uniqueName),
	}
	for i := range c.releases {
		if c.releases[i].UniqueName == uniqueName {
			c.releases[i] = rm
			return
		}
	}
	c.releases = append(c.releases, rm)
}

// serveAt registers an archive under a key without listing it in the catalog
func (c *fakeCatalog) serveAt(key string, archive []byte) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.archives[key] = archive
	return c.archiveURL(key)
}

// edit mutates a listed release
func (c *fakeCatalog) edit(uniqueName string, fn func(*domain.RemoteMod)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i := range c.releases {
		if c.releases[i].UniqueName == uniqueName {
			fn(&c.releases[i])
		}
	}
}

// release lists a catalog entry without an archive
func (c *fakeCatalog) release(rm domain.RemoteMod) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.releases = append(c.releases, rm)
}

func (c *fakeCatalog) archiveURL(uniqueName string) string {
	return c.server.URL + "/mods/" + uniqueName + ".zip"
}

func (c *fakeCatalog) databaseURL() string {
	return c.server.URL + "/database.json"
}

func (c *fakeCatalog) remoteDB() *core.RemoteDatabase {
	c.mu.Lock()
	defer c.mu.Unlock()
	return core.NewRemoteDatabase(append([]domain.RemoteMod(nil), c.releases...))
}

func (c *fakeCatalog) downloads(uniqueName string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.requests["/mods/"+uniqueName+".zip"]
}

// memHistory records installs in memory
type memHistory struct {
	mu      sync.Mutex
	records []db.InstallRecord
}

func (h *memHistory) RecordInstall(rec *db.InstallRecord) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.records = append(h.records, *rec)
	return nil
}

func newTestInstaller(t *testing.T, fs afero.Fs, history core.HistoryRecorder) *core.Installer {
	t.Helper()
	return core.NewInstaller(core.InstallerOptions{
		Fs:          fs,
		Cache:       cache.New(fs, "/cache"),
		History:     history,
		Logger:      zaptest.NewLogger(t).Sugar(),
		Concurrency: 4,
	})
}

func fetchLocal(t *testing.T, fs afero.Fs) *core.LocalDatabase {
	t.Helper()
	local, err := core.FetchLocalDB(fs, testOwmlPath, zaptest.NewLogger(t).Sugar())
	require.NoError(t, err)
	return local
}

func readFile(t *testing.T, fs afero.Fs, path string) string {
	t.Helper()
	data, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return string(data)
}

func exists(fs afero.Fs, path string) bool {
	ok, _ := afero.Exists(fs, path)
	return ok
}
