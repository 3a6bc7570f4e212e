package core

import (
	"path/filepath"

	"github.com/ow-mods/ow-mod-man-sub000/internal/domain"

	"github.com/spf13/afero"
)

// CheckMod computes dependency and conflict problems for a mod against a local database.
// Disabled mods report nothing.
func CheckMod(mod *domain.LocalMod, db *LocalDatabase) []domain.ValidationError {
	if !mod.Enabled {
		return nil
	}

	var errs []domain.ValidationError
	for _, dep := range mod.Manifest.Dependencies {
		other, ok := db.Get(dep)
		switch {
		case !ok:
			errs = append(errs, domain.NewMissingDep(dep))
		case !other.Enabled:
			errs = append(errs, domain.NewDisabledDep(dep))
		}
	}
	for _, conflict := range mod.Manifest.Conflicts {
		if other, ok := db.Get(conflict); ok && other.Enabled {
			errs = append(errs, domain.NewConflictingMod(conflict))
		}
	}
	return errs
}

// checkDLLs reports a MissingDLL for each declared filename or patcher absent from the mod folder
func checkDLLs(fs afero.Fs, mod *domain.LocalMod) []domain.ValidationError {
	if !mod.Enabled {
		return nil
	}

	var errs []domain.ValidationError
	for _, rel := range []string{mod.Manifest.Filename, mod.Manifest.Patcher} {
		if rel == "" {
			continue
		}
		path := filepath.Join(mod.ModPath, filepath.FromSlash(rel))
		if ok, _ := afero.Exists(fs, path); !ok {
			errs = append(errs, domain.NewMissingDLL(path))
		}
	}
	return errs
}

// NeedsUpdate reports whether the catalog carries a newer version of a local mod
func NeedsUpdate(local *domain.LocalMod, remote *domain.RemoteMod) bool {
	if local == nil || remote == nil {
		return false
	}
	return domain.IsNewerVersion(local.Manifest.Version, remote.Version)
}

// ValidateUpdates returns a copy of the local database where every enabled mod with a newer
// catalog version carries a single Outdated error. The input snapshot is left untouched.
func ValidateUpdates(local *LocalDatabase, remote *RemoteDatabase) *LocalDatabase {
	out := &LocalDatabase{
		mods: make(map[string]domain.UnsafeLocalMod, len(local.mods)),
	}

	for key, entry := range local.mods {
		mod, ok := entry.(*domain.LocalMod)
		if !ok {
			out.mods[key] = entry
			continue
		}
		rm, _ := remote.GetMod(mod.UniqueName())
		out.mods[key] = withOutdated(mod, rm)
	}

	if local.owml != nil {
		rm, _ := remote.GetOwml()
		out.owml = withOutdated(local.owml, rm)
	}

	return out
}

func withOutdated(mod *domain.LocalMod, remote *domain.RemoteMod) *domain.LocalMod {
	cp := *mod
	cp.Errors = append([]domain.ValidationError(nil), mod.Errors...)
	if mod.Enabled && NeedsUpdate(mod, remote) && !cp.HasError(domain.Outdated) {
		cp.Errors = append(cp.Errors, domain.NewOutdated(remote.Version))
	}
	return &cp
}
