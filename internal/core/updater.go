package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/ow-mods/ow-mod-man-sub000/internal/domain"
	"github.com/ow-mods/ow-mod-man-sub000/internal/logger"

	"go.uber.org/zap"
)

// UpdateCandidate is an installed mod with a newer catalog version
type UpdateCandidate struct {
	UniqueName     string
	Name           string
	CurrentVersion string
	LatestVersion  string
	IsOwml         bool
}

// UpdateOptions tunes an update run
type UpdateOptions struct {
	DryRun      bool // Only report candidates
	OperationID string
}

// UpdateResult reports what an update run found and wrote
type UpdateResult struct {
	Candidates []UpdateCandidate
	Updated    []*domain.LocalMod
}

// Any reports whether anything was updated
func (r *UpdateResult) Any() bool {
	return len(r.Updated) > 0
}

// Updater checks for and applies mod updates
type Updater struct {
	installer *Installer
	log       *zap.SugaredLogger
}

// NewUpdater creates a new updater
func NewUpdater(installer *Installer, log *zap.SugaredLogger) *Updater {
	return &Updater{
		installer: installer,
		log:       logger.OrNop(log),
	}
}

// CheckUpdates lists every valid mod, and the mod loader when installed, whose catalog
// version is newer. Mods absent from the catalog are skipped.
func CheckUpdates(local *LocalDatabase, remote *RemoteDatabase) []UpdateCandidate {
	var candidates []UpdateCandidate
	for _, m := range local.Valid() {
		rm, ok := remote.GetMod(m.UniqueName())
		if !ok || !NeedsUpdate(m, rm) {
			continue
		}
		candidates = append(candidates, newCandidate(m, rm, false))
	}

	if owml := local.Owml(); owml != nil {
		if rm, ok := remote.GetOwml(); ok && NeedsUpdate(owml, rm) {
			candidates = append(candidates, newCandidate(owml, rm, true))
		}
	}
	return candidates
}

func newCandidate(m *domain.LocalMod, rm *domain.RemoteMod, isOwml bool) UpdateCandidate {
	return UpdateCandidate{
		UniqueName:     m.UniqueName(),
		Name:           m.Manifest.Name,
		CurrentVersion: domain.NormalizeVersion(m.Manifest.Version),
		LatestVersion:  rm.Version,
		IsOwml:         isOwml,
	}
}

// Update installs every candidate in parallel without pulling in new dependencies, then
// updates the mod loader separately
func (u *Updater) Update(ctx context.Context, modsDir, owmlPath string, local *LocalDatabase, remote *RemoteDatabase, opts UpdateOptions) (*UpdateResult, error) {
	result := &UpdateResult{Candidates: CheckUpdates(local, remote)}
	if opts.DryRun || len(result.Candidates) == 0 {
		return result, nil
	}

	var names []string
	updateOwml := false
	for _, c := range result.Candidates {
		if c.IsOwml {
			updateOwml = true
			continue
		}
		names = append(names, c.UniqueName)
	}

	var errs []error
	if len(names) > 0 {
		u.log.Infow("updating mods", "count", len(names))
		updated, err := u.installer.InstallParallel(ctx, names, modsDir, local, remote, opts.OperationID)
		result.Updated = append(result.Updated, updated...)
		if err != nil {
			errs = append(errs, err)
		}
	}

	if updateOwml {
		owml, err := u.installer.InstallOwml(ctx, owmlPath, remote, InstallOptions{OperationID: opts.OperationID})
		if err != nil {
			errs = append(errs, fmt.Errorf("updating OWML: %w", err))
		} else {
			result.Updated = append(result.Updated, owml)
		}
	}

	return result, errors.Join(errs...)
}
