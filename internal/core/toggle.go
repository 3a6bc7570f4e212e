package core

import (
	"errors"
	"fmt"
	"os"

	"github.com/ow-mods/ow-mod-man-sub000/internal/domain"
	"github.com/ow-mods/ow-mod-man-sub000/internal/logger"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Toggler flips the enabled flag in mods' config.json
type Toggler struct {
	fs  afero.Fs
	log *zap.SugaredLogger
}

// NewToggler creates a new Toggler
func NewToggler(fs afero.Fs, log *zap.SugaredLogger) *Toggler {
	return &Toggler{fs: fs, log: logger.OrNop(log)}
}

// Toggle enables or disables a mod. With recursive set, the mod's dependencies present in the
// local database are toggled the same way, each at most once. It returns the unique names of
// mods carrying a pre-launch warning that this call switched from disabled to enabled.
func (t *Toggler) Toggle(uniqueName string, local *LocalDatabase, enabled, recursive bool) ([]string, error) {
	visited := make(map[string]bool)
	var warnings []string
	if err := t.toggle(uniqueName, local, enabled, recursive, visited, &warnings); err != nil {
		return warnings, err
	}
	return warnings, nil
}

func (t *Toggler) toggle(uniqueName string, local *LocalDatabase, enabled, recursive bool, visited map[string]bool, warnings *[]string) error {
	if visited[uniqueName] {
		return nil
	}
	visited[uniqueName] = true

	mod, ok := local.Get(uniqueName)
	if !ok {
		return fmt.Errorf("%w: %s", domain.ErrModNotFound, uniqueName)
	}

	if err := t.setEnabled(mod.ModPath, enabled); err != nil {
		return fmt.Errorf("toggling %s: %w", uniqueName, err)
	}
	t.log.Debugw("toggled mod", "mod", uniqueName, "enabled", enabled)

	if enabled && !mod.Enabled && mod.Manifest.Warning != nil {
		*warnings = append(*warnings, uniqueName)
	}

	if !recursive {
		return nil
	}

	deps := mod.Manifest.Dependencies
	if fresh, err := LoadLocalMod(t.fs, mod.ModPath); err == nil {
		deps = fresh.Manifest.Dependencies
	}

	var errs []error
	for _, dep := range deps {
		if _, ok := local.Get(dep); !ok {
			continue
		}
		if err := t.toggle(dep, local, enabled, recursive, visited, warnings); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// setEnabled persists the flag, generating a stub config first when the mod has none.
// Existing settings are carried over untouched.
func (t *Toggler) setEnabled(modPath string, enabled bool) error {
	cfg, err := readModConfig(t.fs, modPath)
	if errors.Is(err, os.ErrNotExist) {
		if err := writeStubConfig(t.fs, modPath); err != nil {
			return err
		}
		cfg, err = readModConfig(t.fs, modPath)
	}
	if err != nil {
		return fmt.Errorf("reading mod config: %w", err)
	}

	cfg.Enabled = enabled
	return writeModConfig(t.fs, modPath, cfg)
}
