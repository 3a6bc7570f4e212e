package core

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/ow-mods/ow-mod-man-sub000/internal/domain"

	"github.com/spf13/afero"
)

// ModArchive is an opened zip whose manifest has been located
type ModArchive struct {
	Root     string // Slash-separated folder holding the manifest inside the archive, "" for top level
	Manifest *domain.Manifest

	file   afero.File
	reader *zip.Reader
}

// Close releases the underlying archive file
func (a *ModArchive) Close() error {
	return a.file.Close()
}

// Extractor handles archive extraction for mod files
type Extractor struct {
	fs afero.Fs
}

// NewExtractor creates a new Extractor
func NewExtractor(fs afero.Fs) *Extractor {
	return &Extractor{fs: fs}
}

// Open reads the zip at archivePath and locates the first entry named manifestName.
// The folder containing it becomes the archive's mod root.
func (e *Extractor) Open(archivePath, manifestName string) (*ModArchive, error) {
	f, err := e.fs.Open(archivePath)
	if err != nil {
		return nil, fmt.Errorf("opening archive: %w", err)
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("reading archive info: %w", err)
	}

	r, err := zip.NewReader(f, info.Size())
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("%w: %v", domain.ErrInvalidArchive, err)
	}

	archive := &ModArchive{file: f, reader: r}
	for _, zf := range r.File {
		name := entryName(zf)
		if zf.FileInfo().IsDir() || path.Base(name) != manifestName {
			continue
		}

		data, err := readZipFile(zf)
		if err != nil {
			f.Close()
			return nil, fmt.Errorf("reading archive manifest: %w", err)
		}
		manifest, err := domain.ParseManifest(data)
		if err != nil {
			f.Close()
			return nil, err
		}

		archive.Manifest = manifest
		if dir := path.Dir(name); dir != "." {
			archive.Root = dir
		}
		return archive, nil
	}

	f.Close()
	return nil, fmt.Errorf("%w: %s in %s", domain.ErrManifestNotFound, manifestName, filepath.Base(archivePath))
}

// Extract writes every entry under the archive's mod root into destDir.
// Entries matching exclude (exact path or anything under an excluded folder) are skipped.
func (e *Extractor) Extract(archive *ModArchive, destDir string, exclude []string) error {
	if err := e.fs.MkdirAll(destDir, 0755); err != nil {
		return fmt.Errorf("creating destination directory: %w", err)
	}

	prefix := ""
	if archive.Root != "" {
		prefix = archive.Root + "/"
	}

	for _, zf := range archive.reader.File {
		name := entryName(zf)
		if !strings.HasPrefix(name, prefix) {
			continue
		}
		rel := strings.TrimSuffix(strings.TrimPrefix(name, prefix), "/")
		if rel == "" || isExcluded(rel, exclude) {
			continue
		}
		if err := e.extractZipFile(zf, rel, destDir); err != nil {
			return err
		}
	}

	return nil
}

// extractZipFile extracts a single file from a ZIP archive
func (e *Extractor) extractZipFile(f *zip.File, rel, destDir string) (err error) {
	destPath, err := sanitizePath(destDir, rel)
	if err != nil {
		return err
	}

	if f.FileInfo().IsDir() {
		return e.fs.MkdirAll(destPath, 0755)
	}

	if err := e.fs.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("creating directory for %s: %w", rel, err)
	}

	rc, err := f.Open()
	if err != nil {
		return fmt.Errorf("opening file %s in archive: %w", f.Name, err)
	}
	defer func() {
		if cerr := rc.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing archive entry %s: %w", f.Name, cerr)
		}
	}()

	outFile, err := e.fs.OpenFile(destPath, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return fmt.Errorf("creating file %s: %w", destPath, err)
	}
	defer func() {
		if cerr := outFile.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing file %s: %w", destPath, cerr)
		}
	}()

	if _, err = io.Copy(outFile, rc); err != nil {
		return fmt.Errorf("writing file %s: %w", destPath, err)
	}

	return nil
}

// Clean removes everything in destDir that exclude does not protect, then prunes empty folders.
// Used before reinstalling so files dropped by a new version do not linger. Subfolders holding
// their own mod manifest belong to another mod and are left alone.
func (e *Extractor) Clean(destDir string, exclude []string) error {
	var files, dirs []string
	err := afero.Walk(e.fs, destDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(destDir, p)
		if err != nil || rel == "." {
			return err
		}
		rel = filepath.ToSlash(rel)
		if isExcluded(rel, exclude) {
			if info.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if info.IsDir() && e.holdsManifest(p) {
			return filepath.SkipDir
		}
		if info.IsDir() {
			dirs = append(dirs, p)
		} else {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("scanning %s: %w", destDir, err)
	}

	for _, f := range files {
		if err := e.fs.Remove(f); err != nil {
			return fmt.Errorf("removing %s: %w", f, err)
		}
	}

	// Deepest first so parents are empty by the time they are checked
	sort.Slice(dirs, func(i, j int) bool { return len(dirs[i]) > len(dirs[j]) })
	for _, d := range dirs {
		empty, err := afero.IsEmpty(e.fs, d)
		if err != nil {
			return fmt.Errorf("checking %s: %w", d, err)
		}
		if empty {
			if err := e.fs.Remove(d); err != nil {
				return fmt.Errorf("removing %s: %w", d, err)
			}
		}
	}

	return nil
}

func (e *Extractor) holdsManifest(dir string) bool {
	ok, _ := afero.Exists(e.fs, filepath.Join(dir, domain.ManifestFileName))
	return ok
}

// entryName normalizes archive paths built on Windows
func entryName(f *zip.File) string {
	return strings.ReplaceAll(f.Name, "\\", "/")
}

func readZipFile(f *zip.File) ([]byte, error) {
	rc, err := f.Open()
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// isExcluded matches rel against exclude entries, either exactly or as a folder prefix
func isExcluded(rel string, exclude []string) bool {
	for _, ex := range exclude {
		ex = strings.Trim(path.Clean(filepath.ToSlash(ex)), "/")
		if ex == "" || ex == "." {
			continue
		}
		if rel == ex || strings.HasPrefix(rel, ex+"/") {
			return true
		}
	}
	return false
}

// sanitizePath ensures the extracted file path is within the destination directory
func sanitizePath(destDir, filePath string) (string, error) {
	destPath := filepath.Join(destDir, filepath.FromSlash(filePath))

	cleanDest := filepath.Clean(destDir)
	if destPath != cleanDest && !strings.HasPrefix(destPath, cleanDest+string(os.PathSeparator)) {
		return "", fmt.Errorf("%w: %s", domain.ErrPathTraversal, filePath)
	}

	return destPath, nil
}
