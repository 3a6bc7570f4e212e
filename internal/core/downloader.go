package core

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"path/filepath"

	"github.com/ow-mods/ow-mod-man-sub000/internal/domain"

	"github.com/spf13/afero"
)

// DownloadProgress is a snapshot of one transfer
type DownloadProgress struct {
	Name    string // Mod being fetched, set by the installer
	URL     string
	Written int64
	Total   int64 // -1 when the server sent no length
}

// Percent returns completion from 0 to 100, or -1 when the total is unknown
func (p DownloadProgress) Percent() int {
	if p.Total <= 0 {
		return -1
	}
	return int(p.Written * 100 / p.Total)
}

// ProgressFunc receives a snapshot after every chunk written to disk
type ProgressFunc func(DownloadProgress)

// DownloadResult contains the outcome of a download
type DownloadResult struct {
	Path     string // Final file path
	Size     int64  // Bytes downloaded
	Checksum string // MD5 hash of downloaded file
}

// Downloader streams archives over HTTP onto a filesystem
type Downloader struct {
	fs         afero.Fs
	httpClient *http.Client
}

// NewDownloader creates a new Downloader.
// If httpClient is nil, http.DefaultClient is used
func NewDownloader(fs afero.Fs, httpClient *http.Client) *Downloader {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Downloader{
		fs:         fs,
		httpClient: httpClient,
	}
}

// Download fetches url into destPath through a temporary file. A nil progressFn disables
// progress reporting.
func (d *Downloader) Download(ctx context.Context, url, destPath string, progressFn ProgressFunc) (result *DownloadResult, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDownloadFailed, err)
	}
	defer func() {
		if cerr := resp.Body.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing response body: %w", cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d from %s", domain.ErrDownloadFailed, resp.StatusCode, url)
	}

	if err := d.fs.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return nil, fmt.Errorf("creating directory: %w", err)
	}

	tempPath := destPath + ".tmp"
	file, err := d.fs.Create(tempPath)
	if err != nil {
		return nil, fmt.Errorf("creating file: %w", err)
	}
	defer func() {
		file.Close()
		_ = d.fs.Remove(tempPath)
	}()

	hasher := md5.New()
	sinks := []io.Writer{file, hasher}
	if progressFn != nil {
		sinks = append(sinks, &progressCounter{url: url, total: resp.ContentLength, notify: progressFn})
	}

	written, err := io.Copy(io.MultiWriter(sinks...), resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrDownloadFailed, err)
	}

	if err := file.Close(); err != nil {
		return nil, fmt.Errorf("closing file: %w", err)
	}

	if err := d.fs.Rename(tempPath, destPath); err != nil {
		return nil, fmt.Errorf("renaming file: %w", err)
	}

	return &DownloadResult{
		Path:     destPath,
		Size:     written,
		Checksum: hex.EncodeToString(hasher.Sum(nil)),
	}, nil
}

// fileChecksum hashes a file already on disk, used for archives that were not downloaded
func fileChecksum(fs afero.Fs, path string) (string, error) {
	f, err := fs.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	hasher := md5.New()
	if _, err := io.Copy(hasher, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(hasher.Sum(nil)), nil
}

// progressCounter is a write sink that reports the running byte count
type progressCounter struct {
	url     string
	total   int64
	written int64
	notify  ProgressFunc
}

func (c *progressCounter) Write(p []byte) (int, error) {
	c.written += int64(len(p))
	c.notify(DownloadProgress{URL: c.url, Written: c.written, Total: c.total})
	return len(p), nil
}
