package core

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"

	"github.com/ow-mods/ow-mod-man-sub000/internal/domain"
	"github.com/ow-mods/ow-mod-man-sub000/internal/logger"

	"go.uber.org/zap"
)

// ExportMods serializes the enabled mod set as a JSON array of unique names
func ExportMods(local *LocalDatabase) ([]byte, error) {
	names := make([]string, 0)
	for _, m := range local.Active() {
		names = append(names, m.UniqueName())
	}
	sort.Strings(names)

	data, err := json.MarshalIndent(names, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling mod list: %w", err)
	}
	return data, nil
}

// ParseModList decodes an exported mod list
func ParseModList(data []byte) ([]string, error) {
	var names []string
	if err := json.Unmarshal(data, &names); err != nil {
		return nil, fmt.Errorf("parsing mod list: %w", err)
	}
	return names, nil
}

// ImportOptions configures the import operation
type ImportOptions struct {
	DisableMissing bool // Disable enabled mods that are not in the list
	OperationID    string
}

// ImportResult contains the outcome of applying a mod list
type ImportResult struct {
	Enabled   []string
	Disabled  []string
	Installed []*domain.LocalMod
	Warnings  []string // Mods with a pre-launch warning that became enabled
}

// Importer applies an exported mod list: present mods are enabled, missing ones installed
type Importer struct {
	toggler   *Toggler
	installer *Installer
	log       *zap.SugaredLogger
}

// NewImporter creates a new Importer
func NewImporter(toggler *Toggler, installer *Installer, log *zap.SugaredLogger) *Importer {
	return &Importer{
		toggler:   toggler,
		installer: installer,
		log:       logger.OrNop(log),
	}
}

// Import enables every listed mod already installed and installs the rest from the catalog.
// remote may be nil when everything listed is installed.
func (i *Importer) Import(ctx context.Context, names []string, modsDir string, local *LocalDatabase, remote *RemoteDatabase, opts ImportOptions) (*ImportResult, error) {
	result := &ImportResult{}
	listed := make(map[string]bool, len(names))
	var missing []string
	var errs []error

	for _, name := range names {
		if listed[name] {
			continue
		}
		listed[name] = true

		if _, ok := local.Get(name); !ok {
			missing = append(missing, name)
			continue
		}
		warnings, err := i.toggler.Toggle(name, local, true, false)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		result.Enabled = append(result.Enabled, name)
		result.Warnings = append(result.Warnings, warnings...)
	}

	if opts.DisableMissing {
		for _, m := range local.Active() {
			if listed[m.UniqueName()] {
				continue
			}
			if _, err := i.toggler.Toggle(m.UniqueName(), local, false, false); err != nil {
				errs = append(errs, err)
				continue
			}
			result.Disabled = append(result.Disabled, m.UniqueName())
		}
	}

	if len(missing) > 0 {
		if remote == nil {
			errs = append(errs, fmt.Errorf("%w: %v", domain.ErrModNotFound, missing))
		} else {
			i.log.Infow("installing missing mods", "mods", missing)
			installed, err := i.installer.InstallParallel(ctx, missing, modsDir, local, remote, opts.OperationID)
			result.Installed = installed
			if err != nil {
				errs = append(errs, err)
			}
			for _, m := range installed {
				if m.Manifest.Warning != nil {
					result.Warnings = append(result.Warnings, m.UniqueName())
				}
			}
		}
	}

	return result, errors.Join(errs...)
}
