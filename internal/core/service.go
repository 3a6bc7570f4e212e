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
	"github.com/ow-mods/ow-mod-man-sub000/internal/storage/config"
	"github.com/ow-mods/ow-mod-man-sub000/internal/storage/db"

	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	historyFileName = "owmods.db"
	owmlDirName     = "OWML"
	cacheDirName    = "downloads"
)

// ServiceConfig holds configuration for the core service
type ServiceConfig struct {
	ConfigDir      string         // Directory for configuration files
	ConfigFile     string         // Explicit settings file; overrides ConfigDir/config.yaml when set
	Config         *config.Config // Already loaded settings; read from the settings file when nil
	DataDir        string         // Directory for install history, downloads and the default OWML root
	Fs             afero.Fs
	HTTPClient     *http.Client
	Logger         *zap.SugaredLogger
	Progress       ProgressFunc // Download progress for installs and updates
	DisableHistory bool
}

// Service is the main orchestrator for mod management operations.
// Every operation builds fresh database snapshots; nothing is cached between calls.
type Service struct {
	config     *config.Config
	db         *db.DB
	cache      *cache.Cache
	fs         afero.Fs
	httpClient *http.Client
	log        *zap.SugaredLogger

	installer   *Installer
	toggler     *Toggler
	uninstaller *Uninstaller
	updater     *Updater
	importer    *Importer

	configDir  string
	configPath string
	dataDir    string
}

// NewService creates a new core service instance
func NewService(cfg ServiceConfig) (*Service, error) {
	configPath := cfg.ConfigFile
	if configPath == "" {
		configPath = filepath.Join(cfg.ConfigDir, config.FileName)
	}
	appConfig := cfg.Config
	if appConfig == nil {
		var err error
		if appConfig, err = config.LoadFile(configPath); err != nil {
			return nil, fmt.Errorf("loading config: %w", err)
		}
	}

	fs := cfg.Fs
	if fs == nil {
		fs = afero.NewOsFs()
	}
	log := logger.OrNop(cfg.Logger)

	var database *db.DB
	var history HistoryRecorder
	if !cfg.DisableHistory {
		var err error
		database, err = db.New(filepath.Join(cfg.DataDir, historyFileName))
		if err != nil {
			return nil, fmt.Errorf("opening database: %w", err)
		}
		history = database
	}

	c := cache.New(fs, filepath.Join(cfg.DataDir, cacheDirName))
	installer := NewInstaller(InstallerOptions{
		Fs:          fs,
		HTTPClient:  cfg.HTTPClient,
		Cache:       c,
		History:     history,
		Logger:      log,
		Concurrency: appConfig.Concurrency,
		Progress:    cfg.Progress,
	})
	toggler := NewToggler(fs, log)

	return &Service{
		config:      appConfig,
		db:          database,
		cache:       c,
		fs:          fs,
		httpClient:  cfg.HTTPClient,
		log:         log,
		installer:   installer,
		toggler:     toggler,
		uninstaller: NewUninstaller(fs, log),
		updater:     NewUpdater(installer, log),
		importer:    NewImporter(toggler, installer, log),
		configDir:   cfg.ConfigDir,
		configPath:  configPath,
		dataDir:     cfg.DataDir,
	}, nil
}

// Close releases resources held by the service
func (s *Service) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

// Config returns the loaded settings
func (s *Service) Config() *config.Config {
	return s.config
}

// ConfigDir returns the configuration directory
func (s *Service) ConfigDir() string {
	return s.configDir
}

// Fs returns the filesystem the service works on
func (s *Service) Fs() afero.Fs {
	return s.fs
}

// ConfigPath returns the settings file the service reads and writes
func (s *Service) ConfigPath() string {
	return s.configPath
}

// Cache returns the download staging area
func (s *Service) Cache() *cache.Cache {
	return s.cache
}

// SetOwmlPath points the service at an OWML root and persists it
func (s *Service) SetOwmlPath(path string) error {
	s.config.OwmlPath = config.ExpandPath(path)
	return s.config.SaveFile(s.configPath)
}

func (s *Service) modsDir() (string, error) {
	if s.config.OwmlPath == "" {
		return "", domain.ErrOwmlNotInstalled
	}
	return s.config.ModsDir(), nil
}

// LocalDB scans the configured OWML root
func (s *Service) LocalDB() (*LocalDatabase, error) {
	if s.config.OwmlPath == "" {
		return nil, domain.ErrOwmlNotInstalled
	}
	return FetchLocalDB(s.fs, s.config.OwmlPath, s.log)
}

// RemoteDB fetches the configured catalog
func (s *Service) RemoteDB(ctx context.Context) (*RemoteDatabase, error) {
	return LoadRemoteDB(ctx, s.fs, s.httpClient, s.config.DatabaseURL)
}

// Validate scans the local mods and, when the catalog can be fetched, flags outdated ones.
// A catalog failure is logged and the local-only snapshot returned.
func (s *Service) Validate(ctx context.Context) (*LocalDatabase, error) {
	local, err := s.LocalDB()
	if err != nil {
		return nil, err
	}
	remote, err := s.RemoteDB(ctx)
	if err != nil {
		s.log.Warnw("skipping update check", "error", err)
		return local, nil
	}
	return ValidateUpdates(local, remote), nil
}

// Install installs a catalog mod, and with Recursive its missing dependencies
func (s *Service) Install(ctx context.Context, uniqueName string, opts InstallOptions) ([]*domain.LocalMod, error) {
	modsDir, local, remote, err := s.snapshots(ctx)
	if err != nil {
		return nil, err
	}
	opts.OperationID = s.operationID(opts.OperationID)
	defer s.cleanupOperation(opts.OperationID)

	return s.installer.InstallFromDB(ctx, uniqueName, modsDir, local, remote, opts)
}

// InstallURL installs an archive downloaded from url
func (s *Service) InstallURL(ctx context.Context, url string, opts InstallOptions) ([]*domain.LocalMod, error) {
	modsDir, err := s.modsDir()
	if err != nil {
		return nil, err
	}
	local, err := s.LocalDB()
	if err != nil {
		return nil, err
	}
	opts.OperationID = s.operationID(opts.OperationID)
	defer s.cleanupOperation(opts.OperationID)

	mod, err := s.installer.InstallFromURL(ctx, url, modsDir, local, opts)
	if err != nil {
		return nil, err
	}
	return s.withDependencies(ctx, mod, modsDir, local, opts)
}

// InstallZip installs a local archive
func (s *Service) InstallZip(ctx context.Context, zipPath string, opts InstallOptions) ([]*domain.LocalMod, error) {
	modsDir, err := s.modsDir()
	if err != nil {
		return nil, err
	}
	local, err := s.LocalDB()
	if err != nil {
		return nil, err
	}
	opts.OperationID = s.operationID(opts.OperationID)
	defer s.cleanupOperation(opts.OperationID)

	mod, err := s.installer.InstallFromZip(zipPath, modsDir, local, opts)
	if err != nil {
		return nil, err
	}
	return s.withDependencies(ctx, mod, modsDir, local, opts)
}

func (s *Service) withDependencies(ctx context.Context, mod *domain.LocalMod, modsDir string, local *LocalDatabase, opts InstallOptions) ([]*domain.LocalMod, error) {
	installed := []*domain.LocalMod{mod}
	if !opts.Recursive || len(mod.Manifest.Dependencies) == 0 {
		return installed, nil
	}
	remote, err := s.RemoteDB(ctx)
	if err != nil {
		return installed, fmt.Errorf("fetching remote database: %w", err)
	}
	deps, err := s.installer.InstallDependencies(ctx, mod, modsDir, local, remote, opts.OperationID)
	return append(installed, deps...), err
}

// InstallOwml installs or updates the mod loader. Without a configured root, a default under
// the data directory is chosen and saved.
func (s *Service) InstallOwml(ctx context.Context, prerelease bool) (*domain.LocalMod, error) {
	remote, err := s.RemoteDB(ctx)
	if err != nil {
		return nil, err
	}

	if s.config.OwmlPath == "" {
		path := filepath.Join(s.dataDir, owmlDirName)
		s.log.Infow("no OWML path configured, using default", "path", path)
		if err := s.SetOwmlPath(path); err != nil {
			return nil, fmt.Errorf("saving OWML path: %w", err)
		}
	}

	opID := s.operationID("")
	defer s.cleanupOperation(opID)
	return s.installer.InstallOwml(ctx, s.config.OwmlPath, remote, InstallOptions{Prerelease: prerelease, OperationID: opID})
}

// Uninstall removes a mod, and with recursive the dependencies nothing else needs
func (s *Service) Uninstall(uniqueName string, recursive bool) ([]string, error) {
	local, err := s.LocalDB()
	if err != nil {
		return nil, err
	}
	return s.uninstaller.Remove(uniqueName, local, recursive)
}

// Toggle enables or disables a mod and returns the mods whose warning should now be shown
func (s *Service) Toggle(uniqueName string, enabled, recursive bool) ([]string, error) {
	local, err := s.LocalDB()
	if err != nil {
		return nil, err
	}
	return s.toggler.Toggle(uniqueName, local, enabled, recursive)
}

// Update installs every outdated mod, or only reports them when DryRun is set
func (s *Service) Update(ctx context.Context, opts UpdateOptions) (*UpdateResult, error) {
	modsDir, local, remote, err := s.snapshots(ctx)
	if err != nil {
		return nil, err
	}
	opts.OperationID = s.operationID(opts.OperationID)
	defer s.cleanupOperation(opts.OperationID)

	return s.updater.Update(ctx, modsDir, s.config.OwmlPath, local, remote, opts)
}

// FixDepsResult reports what FixDeps changed
type FixDepsResult struct {
	Installed []*domain.LocalMod
	Enabled   []string
}

// FixDeps installs missing dependencies of active mods and enables disabled ones
func (s *Service) FixDeps(ctx context.Context) (*FixDepsResult, error) {
	modsDir, local, remote, err := s.snapshots(ctx)
	if err != nil {
		return nil, err
	}
	opID := s.operationID("")
	defer s.cleanupOperation(opID)

	result := &FixDepsResult{}
	var errs []error
	var missing []string
	scheduled := make(map[string]bool)

	for _, mod := range local.Active() {
		for _, e := range mod.Errors {
			if scheduled[e.Detail] {
				continue
			}
			switch e.Kind {
			case domain.MissingDep:
				scheduled[e.Detail] = true
				missing = append(missing, e.Detail)
			case domain.DisabledDep:
				scheduled[e.Detail] = true
				if _, err := s.toggler.Toggle(e.Detail, local, true, true); err != nil {
					errs = append(errs, err)
					continue
				}
				result.Enabled = append(result.Enabled, e.Detail)
			}
		}
	}

	if len(missing) > 0 {
		installed, err := s.installer.InstallClosure(ctx, missing, modsDir, local, remote, opID)
		result.Installed = installed
		if err != nil {
			errs = append(errs, err)
		}
	}

	return result, errors.Join(errs...)
}

// Export returns the enabled mod set as JSON
func (s *Service) Export() ([]byte, error) {
	local, err := s.LocalDB()
	if err != nil {
		return nil, err
	}
	return ExportMods(local)
}

// Import applies an exported mod list. The catalog is only fetched when something is missing.
func (s *Service) Import(ctx context.Context, names []string, disableMissing bool) (*ImportResult, error) {
	modsDir, err := s.modsDir()
	if err != nil {
		return nil, err
	}
	local, err := s.LocalDB()
	if err != nil {
		return nil, err
	}

	var remote *RemoteDatabase
	for _, name := range names {
		if _, ok := local.Get(name); ok {
			continue
		}
		if remote, err = s.RemoteDB(ctx); err != nil {
			return nil, fmt.Errorf("fetching remote database: %w", err)
		}
		break
	}

	opID := s.operationID("")
	defer s.cleanupOperation(opID)
	return s.importer.Import(ctx, names, modsDir, local, remote, ImportOptions{DisableMissing: disableMissing, OperationID: opID})
}

// PendingWarnings returns enabled mods with a pre-launch warning that has not been shown yet
func (s *Service) PendingWarnings(local *LocalDatabase) []*domain.LocalMod {
	var pending []*domain.LocalMod
	for _, m := range local.Active() {
		if m.Manifest.Warning != nil && !s.config.WarningShown(m.UniqueName()) {
			pending = append(pending, m)
		}
	}
	return pending
}

// MarkWarningShown records a displayed warning and persists the settings
func (s *Service) MarkWarningShown(uniqueName string) error {
	if !s.config.MarkWarningShown(uniqueName) {
		return nil
	}
	return s.config.SaveFile(s.configPath)
}

// History returns install records for a mod, or the most recent ones when uniqueName is empty
func (s *Service) History(uniqueName string, limit int) ([]db.InstallRecord, error) {
	if s.db == nil {
		return nil, nil
	}
	if uniqueName == "" {
		return s.db.GetRecent(limit)
	}
	return s.db.GetHistory(uniqueName)
}

// OperationHistory returns the records written by one install, update or import run
func (s *Service) OperationHistory(operationID string) ([]db.InstallRecord, error) {
	if s.db == nil {
		return nil, nil
	}
	return s.db.GetOperation(operationID)
}

func (s *Service) snapshots(ctx context.Context) (string, *LocalDatabase, *RemoteDatabase, error) {
	modsDir, err := s.modsDir()
	if err != nil {
		return "", nil, nil, err
	}
	local, err := s.LocalDB()
	if err != nil {
		return "", nil, nil, err
	}
	remote, err := s.RemoteDB(ctx)
	if err != nil {
		return "", nil, nil, fmt.Errorf("fetching remote database: %w", err)
	}
	return modsDir, local, remote, nil
}

func (s *Service) operationID(id string) string {
	if id != "" {
		return id
	}
	return uuid.NewString()
}

func (s *Service) cleanupOperation(operationID string) {
	if err := s.cache.RemoveOperation(operationID); err != nil {
		s.log.Debugw("could not clean staged downloads", "operation", operationID, "error", err)
	}
}
