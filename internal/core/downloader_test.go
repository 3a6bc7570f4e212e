package core_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ow-mods/ow-mod-man-sub000/internal/core"
	"github.com/ow-mods/ow-mod-man-sub000/internal/domain"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDownloader_Download_ReturnsChecksum(t *testing.T) {
	content := []byte("test file content for checksum")
	expectedChecksum := "658a93464f955290e4b8ecd8fc1d3df7"

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(content)
	}))
	defer server.Close()

	fs := afero.NewMemMapFs()
	downloader := core.NewDownloader(fs, nil)

	result, err := downloader.Download(context.Background(), server.URL, "/tmp/test.txt", nil)
	require.NoError(t, err)

	assert.Equal(t, "/tmp/test.txt", result.Path)
	assert.Equal(t, int64(len(content)), result.Size)
	assert.Equal(t, expectedChecksum, result.Checksum)
}

func TestDownloader_Download_ProgressTracking(t *testing.T) {
	content := make([]byte, 1000)
	for i := range content {
		content[i] = byte(i % 256)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Length", "1000")
		w.Write(content)
	}))
	defer server.Close()

	fs := afero.NewMemMapFs()
	downloader := core.NewDownloader(fs, nil)

	var lastProgress core.DownloadProgress
	_, err := downloader.Download(context.Background(), server.URL, "/dl/test.bin", func(p core.DownloadProgress) {
		lastProgress = p
	})
	require.NoError(t, err)

	assert.Equal(t, server.URL, lastProgress.URL)
	assert.Equal(t, int64(1000), lastProgress.Total)
	assert.Equal(t, int64(1000), lastProgress.Written)
	assert.Equal(t, 100, lastProgress.Percent())

	data, err := afero.ReadFile(fs, "/dl/test.bin")
	require.NoError(t, err)
	assert.Equal(t, content, data)
}

func TestDownloader_Download_HTTPErrors(t *testing.T) {
	tests := []struct {
		name   string
		status int
		want   string
	}{
		{"server error", http.StatusInternalServerError, "500"},
		{"not found", http.StatusNotFound, "404"},
		{"unavailable is not retried", http.StatusServiceUnavailable, "503"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			attempts := 0
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				attempts++
				w.WriteHeader(tt.status)
			}))
			defer server.Close()

			fs := afero.NewMemMapFs()
			downloader := core.NewDownloader(fs, nil)

			_, err := downloader.Download(context.Background(), server.URL, "/dl/test.txt", nil)
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrDownloadFailed)
			assert.Contains(t, err.Error(), tt.want)
			assert.Equal(t, 1, attempts)

			exists, _ := afero.Exists(fs, "/dl/test.txt")
			assert.False(t, exists)
		})
	}
}

func TestDownloader_Download_CancelledContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("never read"))
	}))
	defer server.Close()

	downloader := core.NewDownloader(afero.NewMemMapFs(), nil)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := downloader.Download(ctx, server.URL, "/dl/test.txt", nil)
	assert.Error(t, err)
}

func TestDownloader_Download_ReplacesExistingFile(t *testing.T) {
	content := []byte("new content")

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(content)
	}))
	defer server.Close()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "/dl/final.txt", []byte("old content"), 0644))

	downloader := core.NewDownloader(fs, nil)
	_, err := downloader.Download(context.Background(), server.URL, "/dl/final.txt", nil)
	require.NoError(t, err)

	data, err := afero.ReadFile(fs, "/dl/final.txt")
	require.NoError(t, err)
	assert.Equal(t, content, data)

	exists, _ := afero.Exists(fs, "/dl/final.txt.tmp")
	assert.False(t, exists)
}

func TestDownloader_Download_CustomHTTPClient(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "TestAgent", r.Header.Get("User-Agent"))
		w.Write([]byte("ok"))
	}))
	defer server.Close()

	client := &http.Client{
		Transport: &testRoundTripper{header: "TestAgent", rt: http.DefaultTransport},
	}

	downloader := core.NewDownloader(afero.NewMemMapFs(), client)
	_, err := downloader.Download(context.Background(), server.URL, "/dl/test.txt", nil)
	require.NoError(t, err)
}

type testRoundTripper struct {
	header string
	rt     http.RoundTripper
}

func (t *testRoundTripper) RoundTrip(req *http.Request) (*http.Response, error) {
	req.Header.Set("User-Agent", t.header)
	return t.rt.RoundTrip(req)
}

func TestDownloadProgress_Percent(t *testing.T) {
	tests := []struct {
		name string
		p    core.DownloadProgress
		want int
	}{
		{"unknown length", core.DownloadProgress{Written: 10, Total: -1}, -1},
		{"empty body", core.DownloadProgress{Written: 0, Total: 0}, -1},
		{"partway", core.DownloadProgress{Written: 250, Total: 1000}, 25},
		{"done", core.DownloadProgress{Written: 1000, Total: 1000}, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.p.Percent())
		})
	}
}
