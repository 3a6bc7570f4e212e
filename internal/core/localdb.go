package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/ow-mods/ow-mod-man-sub000/internal/domain"
	"github.com/ow-mods/ow-mod-man-sub000/internal/logger"
	"github.com/ow-mods/ow-mod-man-sub000/internal/search"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// LocalDatabase is a snapshot of the mods installed under an OWML root.
// It is never patched: callers rescan after installing, toggling or removing.
type LocalDatabase struct {
	// Valid mods are keyed by unique name, failed ones by folder path
	mods map[string]domain.UnsafeLocalMod
	owml *domain.LocalMod
}

// NewLocalDatabase builds a database from already loaded mods and runs dependency validation.
// Later entries sharing a unique name with an earlier one become DuplicateMod failures.
func NewLocalDatabase(owml *domain.LocalMod, mods ...domain.UnsafeLocalMod) *LocalDatabase {
	db := &LocalDatabase{
		mods: make(map[string]domain.UnsafeLocalMod, len(mods)),
		owml: owml,
	}
	for _, m := range mods {
		db.register(m, "")
	}
	for _, m := range db.Valid() {
		m.Errors = append(m.Errors, CheckMod(m, db)...)
	}
	return db
}

// FetchLocalDB scans <owmlPath>/Mods for manifests at any depth.
// A missing Mods folder yields an empty database. Broken mods never abort the scan.
func FetchLocalDB(fs afero.Fs, owmlPath string, log *zap.SugaredLogger) (*LocalDatabase, error) {
	log = logger.OrNop(log)

	db := &LocalDatabase{mods: make(map[string]domain.UnsafeLocalMod)}

	if owmlPath != "" {
		owml, err := LoadOwml(fs, owmlPath)
		if err != nil && !errors.Is(err, domain.ErrOwmlNotInstalled) {
			log.Warnw("could not read OWML manifest", "path", owmlPath, "error", err)
		}
		db.owml = owml
	}

	modsDir := filepath.Join(owmlPath, domain.ModsDirName)
	exists, err := afero.DirExists(fs, modsDir)
	if err != nil {
		return nil, fmt.Errorf("checking mods dir: %w", err)
	}
	if !exists {
		return db, nil
	}

	err = afero.Walk(fs, modsDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			log.Debugw("skipping unreadable path", "path", path, "error", err)
			return nil
		}
		if info.IsDir() || info.Name() != domain.ManifestFileName {
			return nil
		}

		modPath := filepath.Dir(path)
		displayPath, relErr := filepath.Rel(modsDir, modPath)
		if relErr != nil {
			displayPath = modPath
		}

		mod, loadErr := LoadLocalMod(fs, modPath)
		if loadErr != nil {
			log.Warnw("invalid manifest", "path", displayPath, "error", loadErr)
			db.register(&domain.FailedMod{
				ModPath:     modPath,
				DisplayPath: displayPath,
				Error:       domain.NewInvalidManifest(loadErr.Error()),
			}, displayPath)
			return nil
		}
		db.register(mod, displayPath)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scanning mods: %w", err)
	}

	for _, m := range db.Valid() {
		m.Errors = append(m.Errors, checkDLLs(fs, m)...)
		m.Errors = append(m.Errors, CheckMod(m, db)...)
	}

	return db, nil
}

// register adds a mod, turning a second mod with an already registered unique name into a
// DuplicateMod failure keyed by its folder
func (db *LocalDatabase) register(m domain.UnsafeLocalMod, displayPath string) {
	switch mod := m.(type) {
	case *domain.LocalMod:
		name := mod.UniqueName()
		if first, ok := db.mods[name]; ok {
			if displayPath == "" {
				displayPath = mod.ModPath
			}
			db.mods[mod.ModPath] = &domain.FailedMod{
				ModPath:     mod.ModPath,
				DisplayPath: displayPath,
				Error:       domain.NewDuplicateMod(first.Path()),
			}
			return
		}
		db.mods[name] = mod
	case *domain.FailedMod:
		db.mods[mod.ModPath] = mod
	}
}

// LoadLocalMod reads the manifest and enabled state of a single mod folder
func LoadLocalMod(fs afero.Fs, modPath string) (*domain.LocalMod, error) {
	data, err := afero.ReadFile(fs, filepath.Join(modPath, domain.ManifestFileName))
	if err != nil {
		return nil, fmt.Errorf("reading manifest: %w", err)
	}
	manifest, err := domain.ParseManifest(data)
	if err != nil {
		return nil, err
	}

	return &domain.LocalMod{
		Enabled:  readModEnabled(fs, modPath),
		Manifest: *manifest,
		ModPath:  modPath,
	}, nil
}

// LoadOwml reads the mod loader's own manifest from its root
func LoadOwml(fs afero.Fs, owmlPath string) (*domain.LocalMod, error) {
	data, err := afero.ReadFile(fs, filepath.Join(owmlPath, domain.OwmlManifestFileName))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrOwmlNotInstalled
		}
		return nil, fmt.Errorf("reading OWML manifest: %w", err)
	}
	manifest, err := domain.ParseManifest(data)
	if err != nil {
		return nil, err
	}
	return &domain.LocalMod{Enabled: true, Manifest: *manifest, ModPath: owmlPath}, nil
}

// readModConfig reads a mod's config.json
func readModConfig(fs afero.Fs, modPath string) (*domain.ModStubConfig, error) {
	data, err := afero.ReadFile(fs, filepath.Join(modPath, domain.ModConfigFileName))
	if err != nil {
		return nil, err
	}
	return domain.ParseModConfig(data)
}

// writeModConfig writes a mod's config.json
func writeModConfig(fs afero.Fs, modPath string, cfg *domain.ModStubConfig) error {
	data, err := json.MarshalIndent(cfg, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling mod config: %w", err)
	}
	if err := afero.WriteFile(fs, filepath.Join(modPath, domain.ModConfigFileName), data, 0644); err != nil {
		return fmt.Errorf("writing mod config: %w", err)
	}
	return nil
}

// writeStubConfig writes the generated settings file used on first install and when a mod has none
func writeStubConfig(fs afero.Fs, modPath string) error {
	return writeModConfig(fs, modPath, &domain.ModStubConfig{Enabled: true})
}

// readModEnabled treats a missing config as enabled, matching what OWML generates on launch.
// An unreadable config counts as disabled.
func readModEnabled(fs afero.Fs, modPath string) bool {
	cfg, err := readModConfig(fs, modPath)
	if err != nil {
		return errors.Is(err, os.ErrNotExist)
	}
	return cfg.Enabled
}

// Owml returns the installed mod loader, or nil
func (db *LocalDatabase) Owml() *domain.LocalMod {
	return db.owml
}

// Get returns a valid mod by unique name
func (db *LocalDatabase) Get(uniqueName string) (*domain.LocalMod, bool) {
	m, ok := db.mods[uniqueName].(*domain.LocalMod)
	return m, ok
}

// GetUnsafe returns any entry by its key (unique name for valid mods, folder for failed ones)
func (db *LocalDatabase) GetUnsafe(key string) (domain.UnsafeLocalMod, bool) {
	m, ok := db.mods[key]
	return m, ok
}

// Len returns the number of entries, valid or not
func (db *LocalDatabase) Len() int {
	return len(db.mods)
}

// Valid returns every successfully loaded mod, sorted by unique name
func (db *LocalDatabase) Valid() []*domain.LocalMod {
	mods := make([]*domain.LocalMod, 0, len(db.mods))
	for _, m := range db.mods {
		if lm, ok := m.(*domain.LocalMod); ok {
			mods = append(mods, lm)
		}
	}
	sort.Slice(mods, func(i, j int) bool {
		return mods[i].UniqueName() < mods[j].UniqueName()
	})
	return mods
}

// Active returns the valid mods that are enabled
func (db *LocalDatabase) Active() []*domain.LocalMod {
	var mods []*domain.LocalMod
	for _, m := range db.Valid() {
		if m.Enabled {
			mods = append(mods, m)
		}
	}
	return mods
}

// Invalid returns every failed entry plus enabled mods carrying validation errors
func (db *LocalDatabase) Invalid() []domain.UnsafeLocalMod {
	var mods []domain.UnsafeLocalMod
	for _, m := range db.All() {
		switch mod := m.(type) {
		case *domain.LocalMod:
			if mod.Enabled && mod.HasErrors() {
				mods = append(mods, mod)
			}
		case *domain.FailedMod:
			mods = append(mods, mod)
		}
	}
	return mods
}

// All returns every entry sorted by key
func (db *LocalDatabase) All() []domain.UnsafeLocalMod {
	keys := make([]string, 0, len(db.mods))
	for k := range db.mods {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	mods := make([]domain.UnsafeLocalMod, len(keys))
	for i, k := range keys {
		mods[i] = db.mods[k]
	}
	return mods
}

// Dependent returns the active mods that directly depend on mod. Only one hop is followed.
func (db *LocalDatabase) Dependent(mod *domain.LocalMod) []*domain.LocalMod {
	var dependents []*domain.LocalMod
	for _, m := range db.Active() {
		for _, dep := range m.Manifest.Dependencies {
			if dep == mod.UniqueName() {
				dependents = append(dependents, m)
				break
			}
		}
	}
	return dependents
}

// Search ranks valid mods against a free-text query
func (db *LocalDatabase) Search(query string) []*domain.LocalMod {
	return search.Rank(db.Valid(), query)
}
