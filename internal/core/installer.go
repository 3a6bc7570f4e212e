package core

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"

	"github.com/ow-mods/ow-mod-man-sub000/internal/domain"
	"github.com/ow-mods/ow-mod-man-sub000/internal/logger"
	"github.com/ow-mods/ow-mod-man-sub000/internal/storage/cache"
	"github.com/ow-mods/ow-mod-man-sub000/internal/storage/db"

	"github.com/spf13/afero"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// modProtectedPaths are never overwritten when a mod is extracted
var modProtectedPaths = []string{domain.ModConfigFileName, domain.ModSaveFileName}

// owmlProtectedPaths are never overwritten when the mod loader is extracted
var owmlProtectedPaths = []string{domain.ModsDirName, "OWML.Config.json"}

// HistoryRecorder stores one record per mod written to disk
type HistoryRecorder interface {
	RecordInstall(rec *db.InstallRecord) error
}

// InstallerOptions configures an Installer
type InstallerOptions struct {
	Fs          afero.Fs
	HTTPClient  *http.Client
	Cache       *cache.Cache    // Archive staging area
	History     HistoryRecorder // Optional
	Logger      *zap.SugaredLogger
	Concurrency int          // Max parallel installs per round
	Progress    ProgressFunc // Optional, called from concurrent downloads
}

// InstallOptions tunes a single install request
type InstallOptions struct {
	Recursive   bool   // Also install dependencies that are not active yet
	Prerelease  bool   // Use the catalog prerelease for the requested mod
	OperationID string // Groups history records and staged archives
}

// Installer downloads, extracts and records mods
type Installer struct {
	fs          afero.Fs
	downloader  *Downloader
	extractor   *Extractor
	cache       *cache.Cache
	history     HistoryRecorder
	log         *zap.SugaredLogger
	concurrency int
	progress    ProgressFunc
}

// NewInstaller creates a new installer
func NewInstaller(opts InstallerOptions) *Installer {
	fs := opts.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	c := opts.Cache
	if c == nil {
		c = cache.New(fs, filepath.Join(afero.GetTempDir(fs, "owmods"), "downloads"))
	}
	concurrency := opts.Concurrency
	if concurrency < 1 {
		concurrency = 1
	}
	return &Installer{
		fs:          fs,
		downloader:  NewDownloader(fs, opts.HTTPClient),
		extractor:   NewExtractor(fs),
		cache:       c,
		history:     opts.History,
		log:         logger.OrNop(opts.Logger),
		concurrency: concurrency,
		progress:    opts.Progress,
	}
}

// archiveSource describes where an archive came from, for history
type archiveSource struct {
	url      string
	checksum string
}

// InstallFromDB installs a catalog mod into modsDir. With Recursive set, every dependency
// not already active is installed too, in parallel rounds. The returned slice holds every mod
// written, requested mod first. Partial failures are joined into the returned error.
func (i *Installer) InstallFromDB(ctx context.Context, uniqueName, modsDir string, local *LocalDatabase, remote *RemoteDatabase, opts InstallOptions) ([]*domain.LocalMod, error) {
	target, err := i.installNamed(ctx, uniqueName, opts.Prerelease, modsDir, local, remote, opts.OperationID)
	if err != nil {
		return nil, fmt.Errorf("installing %s: %w", uniqueName, err)
	}

	installed := []*domain.LocalMod{target}
	if !opts.Recursive {
		return installed, nil
	}

	deps, err := i.InstallDependencies(ctx, target, modsDir, local, remote, opts.OperationID)
	return append(installed, deps...), err
}

// InstallFromURL downloads an archive from an arbitrary URL and installs it
func (i *Installer) InstallFromURL(ctx context.Context, url, modsDir string, local *LocalDatabase, opts InstallOptions) (*domain.LocalMod, error) {
	archivePath := i.cache.ArchivePath(opts.OperationID, url)
	defer i.removeStaged(opts.OperationID, url)

	i.log.Infow("downloading", "url", url)
	res, err := i.downloader.Download(ctx, url, archivePath, i.progressFor(filepath.Base(url)))
	if err != nil {
		return nil, err
	}

	return i.installArchive(res.Path, archiveSource{url: url, checksum: res.Checksum}, modsDir, local, opts.OperationID)
}

// InstallFromZip installs a local archive
func (i *Installer) InstallFromZip(zipPath, modsDir string, local *LocalDatabase, opts InstallOptions) (*domain.LocalMod, error) {
	checksum, err := fileChecksum(i.fs, zipPath)
	if err != nil {
		return nil, fmt.Errorf("reading archive: %w", err)
	}
	return i.installArchive(zipPath, archiveSource{url: zipPath, checksum: checksum}, modsDir, local, opts.OperationID)
}

// InstallParallel installs every named catalog mod in one round. Installs do not cancel each
// other: the mods that succeeded are returned alongside the joined errors of the others.
func (i *Installer) InstallParallel(ctx context.Context, names []string, modsDir string, local *LocalDatabase, remote *RemoteDatabase, operationID string) ([]*domain.LocalMod, error) {
	results := make([]*domain.LocalMod, len(names))
	errs := make([]error, len(names))

	var g errgroup.Group
	g.SetLimit(i.concurrency)
	for idx, name := range names {
		g.Go(func() error {
			mod, err := i.installNamed(ctx, name, false, modsDir, local, remote, operationID)
			if err != nil {
				errs[idx] = fmt.Errorf("installing %s: %w", name, err)
				return nil
			}
			results[idx] = mod
			return nil
		})
	}
	_ = g.Wait()

	installed := make([]*domain.LocalMod, 0, len(names))
	for _, m := range results {
		if m != nil {
			installed = append(installed, m)
		}
	}
	return installed, errors.Join(errs...)
}

// InstallDependencies installs root's dependency closure breadth-first. Every name is checked
// against the satisfied set (active mods plus everything scheduled so far) before it is
// scheduled, which keeps dependency cycles finite.
func (i *Installer) InstallDependencies(ctx context.Context, root *domain.LocalMod, modsDir string, local *LocalDatabase, remote *RemoteDatabase, operationID string) ([]*domain.LocalMod, error) {
	satisfied := activeSet(local)
	satisfied[root.UniqueName()] = true
	return i.installClosure(ctx, root.Manifest.Dependencies, satisfied, modsDir, local, remote, operationID)
}

// InstallClosure installs the named mods and everything they depend on that is not already
// active. One satisfied set spans every round, so a dependency shared by several names is
// installed once.
func (i *Installer) InstallClosure(ctx context.Context, names []string, modsDir string, local *LocalDatabase, remote *RemoteDatabase, operationID string) ([]*domain.LocalMod, error) {
	return i.installClosure(ctx, names, activeSet(local), modsDir, local, remote, operationID)
}

func (i *Installer) installClosure(ctx context.Context, frontier []string, satisfied map[string]bool, modsDir string, local *LocalDatabase, remote *RemoteDatabase, operationID string) ([]*domain.LocalMod, error) {
	var installed []*domain.LocalMod
	var errs []error

	for round := 1; len(frontier) > 0; round++ {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}

		var names []string
		for _, name := range frontier {
			if satisfied[name] || name == domain.OwmlUniqueName {
				continue
			}
			satisfied[name] = true
			names = append(names, name)
		}
		if len(names) == 0 {
			break
		}

		i.log.Infow("installing dependencies", "round", round, "mods", names)
		mods, err := i.InstallParallel(ctx, names, modsDir, local, remote, operationID)
		if err != nil {
			errs = append(errs, err)
		}

		frontier = nil
		for _, m := range mods {
			frontier = append(frontier, m.Manifest.Dependencies...)
		}
		installed = append(installed, mods...)
	}

	return installed, errors.Join(errs...)
}

func activeSet(local *LocalDatabase) map[string]bool {
	set := make(map[string]bool)
	for _, m := range local.Active() {
		set[m.UniqueName()] = true
	}
	return set
}

// InstallOwml installs or updates the mod loader into owmlPath, leaving its mods folder
// and settings in place
func (i *Installer) InstallOwml(ctx context.Context, owmlPath string, remote *RemoteDatabase, opts InstallOptions) (*domain.LocalMod, error) {
	rm, ok := remote.GetOwml()
	if !ok {
		return nil, domain.ErrOwmlNotInCatalog
	}

	url, err := downloadURL(rm, opts.Prerelease)
	if err != nil {
		return nil, err
	}

	previous, err := LoadOwml(i.fs, owmlPath)
	if err != nil && !errors.Is(err, domain.ErrOwmlNotInstalled) {
		i.log.Warnw("existing OWML manifest unreadable", "path", owmlPath, "error", err)
	}

	archivePath := i.cache.ArchivePath(opts.OperationID, rm.UniqueName)
	defer i.removeStaged(opts.OperationID, rm.UniqueName)

	i.log.Infow("downloading", "mod", rm.UniqueName, "version", rm.Version)
	res, err := i.downloader.Download(ctx, url, archivePath, i.progressFor(rm.UniqueName))
	if err != nil {
		return nil, err
	}

	archive, err := i.extractor.Open(res.Path, domain.OwmlManifestFileName)
	if err != nil {
		return nil, err
	}
	defer archive.Close()

	if previous != nil {
		if err := i.extractor.Clean(owmlPath, owmlProtectedPaths); err != nil {
			return nil, fmt.Errorf("cleaning OWML folder: %w", err)
		}
	}
	if err := i.extractor.Extract(archive, owmlPath, owmlProtectedPaths); err != nil {
		return nil, fmt.Errorf("extracting OWML: %w", err)
	}
	if err := i.fs.MkdirAll(filepath.Join(owmlPath, domain.ModsDirName), 0755); err != nil {
		return nil, fmt.Errorf("creating mods folder: %w", err)
	}

	owml, err := LoadOwml(i.fs, owmlPath)
	if err != nil {
		return nil, fmt.Errorf("reading installed OWML: %w", err)
	}
	i.record(owml, previous, archiveSource{url: url, checksum: res.Checksum}, opts.OperationID)
	return owml, nil
}

// progressFor tags download progress with the mod being fetched
func (i *Installer) progressFor(name string) ProgressFunc {
	if i.progress == nil {
		return nil
	}
	return func(p DownloadProgress) {
		p.Name = name
		i.progress(p)
	}
}

// installNamed resolves a catalog entry, downloads it and installs it
func (i *Installer) installNamed(ctx context.Context, uniqueName string, prerelease bool, modsDir string, local *LocalDatabase, remote *RemoteDatabase, operationID string) (*domain.LocalMod, error) {
	rm, ok := remote.GetMod(uniqueName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrModNotFound, uniqueName)
	}

	url, err := downloadURL(rm, prerelease)
	if err != nil {
		return nil, err
	}

	archivePath := i.cache.ArchivePath(operationID, uniqueName)
	defer i.removeStaged(operationID, uniqueName)

	i.log.Infow("downloading", "mod", uniqueName, "url", url)
	res, err := i.downloader.Download(ctx, url, archivePath, i.progressFor(uniqueName))
	if err != nil {
		return nil, err
	}

	return i.installArchive(res.Path, archiveSource{url: url, checksum: res.Checksum}, modsDir, local, operationID)
}

// installArchive extracts an archive's mod root into the mod's folder.
// Settings, saves and the installed version's preserved paths survive the reinstall.
func (i *Installer) installArchive(archivePath string, src archiveSource, modsDir string, local *LocalDatabase, operationID string) (*domain.LocalMod, error) {
	archive, err := i.extractor.Open(archivePath, domain.ManifestFileName)
	if err != nil {
		return nil, err
	}
	defer archive.Close()

	name := archive.Manifest.UniqueName
	dest := filepath.Join(modsDir, name)
	exclude := append([]string(nil), modProtectedPaths...)

	existing, installed := local.Get(name)
	if installed {
		dest = existing.ModPath
		exclude = append(exclude, existing.Manifest.PathsToPreserve...)
		// A manifest at the Mods root shares its folder with every other mod
		if filepath.Clean(dest) != filepath.Clean(modsDir) {
			if err := i.extractor.Clean(dest, exclude); err != nil {
				return nil, fmt.Errorf("cleaning %s: %w", dest, err)
			}
		}
	}

	i.log.Debugw("extracting", "mod", name, "dest", dest, "exclude", exclude)
	if err := i.extractor.Extract(archive, dest, exclude); err != nil {
		return nil, fmt.Errorf("extracting %s: %w", name, err)
	}

	if !installed {
		if ok, _ := afero.Exists(i.fs, filepath.Join(dest, domain.ModConfigFileName)); !ok {
			if err := writeStubConfig(i.fs, dest); err != nil {
				return nil, err
			}
		}
	}

	mod, err := LoadLocalMod(i.fs, dest)
	if err != nil {
		return nil, fmt.Errorf("reading installed manifest: %w", err)
	}

	i.record(mod, existing, src, operationID)
	i.log.Infow("installed", "mod", name, "version", mod.Manifest.Version)
	return mod, nil
}

// record writes a history entry, logging failures
func (i *Installer) record(mod, previous *domain.LocalMod, src archiveSource, operationID string) {
	if i.history == nil {
		return
	}
	rec := &db.InstallRecord{
		OperationID: operationID,
		UniqueName:  mod.UniqueName(),
		Version:     mod.Manifest.Version,
		SourceURL:   src.url,
		Checksum:    src.checksum,
	}
	if previous != nil {
		rec.PreviousVersion = previous.Manifest.Version
	}
	if err := i.history.RecordInstall(rec); err != nil {
		i.log.Warnw("could not record install", "mod", mod.UniqueName(), "error", err)
	}
}

func (i *Installer) removeStaged(operationID, key string) {
	if err := i.cache.Remove(operationID, key); err != nil {
		i.log.Debugw("could not remove staged archive", "key", key, "error", err)
	}
}

// downloadURL picks the release or prerelease archive of a catalog entry
func downloadURL(rm *domain.RemoteMod, prerelease bool) (string, error) {
	if !prerelease {
		return rm.DownloadURL, nil
	}
	if rm.Prerelease == nil || rm.Prerelease.DownloadURL == "" {
		return "", fmt.Errorf("%w: %s", domain.ErrNoPrerelease, rm.UniqueName)
	}
	return rm.Prerelease.DownloadURL, nil
}
