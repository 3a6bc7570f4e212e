package core

import (
	"fmt"

	"github.com/ow-mods/ow-mod-man-sub000/internal/domain"
	"github.com/ow-mods/ow-mod-man-sub000/internal/logger"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

// Uninstaller deletes mod folders
type Uninstaller struct {
	fs  afero.Fs
	log *zap.SugaredLogger
}

// NewUninstaller creates a new Uninstaller
func NewUninstaller(fs afero.Fs, log *zap.SugaredLogger) *Uninstaller {
	return &Uninstaller{fs: fs, log: logger.OrNop(log)}
}

// Remove deletes a mod's folder. With recursive set, each dependency that no active mod outside
// the removal set still needs is removed as well. Returns the removed unique names in order.
func (u *Uninstaller) Remove(uniqueName string, local *LocalDatabase, recursive bool) ([]string, error) {
	mod, ok := local.Get(uniqueName)
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrModNotFound, uniqueName)
	}

	removing := map[string]bool{uniqueName: true}
	var removed []string
	err := u.remove(mod, local, recursive, removing, &removed)
	return removed, err
}

func (u *Uninstaller) remove(mod *domain.LocalMod, local *LocalDatabase, recursive bool, removing map[string]bool, removed *[]string) error {
	if err := u.fs.RemoveAll(mod.ModPath); err != nil {
		return fmt.Errorf("removing %s: %w", mod.UniqueName(), err)
	}
	*removed = append(*removed, mod.UniqueName())
	u.log.Infow("removed mod", "mod", mod.UniqueName(), "path", mod.ModPath)

	if !recursive {
		return nil
	}

	for _, name := range mod.Manifest.Dependencies {
		if removing[name] {
			continue
		}
		dep, ok := local.Get(name)
		if !ok || stillNeeded(dep, local, removing) {
			continue
		}
		removing[name] = true
		if err := u.remove(dep, local, recursive, removing, removed); err != nil {
			return err
		}
	}
	return nil
}

// stillNeeded reports whether an active mod that is not being removed depends on mod
func stillNeeded(mod *domain.LocalMod, local *LocalDatabase, removing map[string]bool) bool {
	for _, d := range local.Dependent(mod) {
		if !removing[d.UniqueName()] {
			return true
		}
	}
	return false
}
