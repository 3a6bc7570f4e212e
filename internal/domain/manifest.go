package domain

import (
	"encoding/json"
	"fmt"
)

// OwmlUniqueName identifies the mod loader runtime. It lives in both databases like a mod but
// installs to the OWML root instead of the Mods folder.
const OwmlUniqueName = "Alek.OWML"

const (
	ManifestFileName     = "manifest.json"
	OwmlManifestFileName = "OWML.Manifest.json"
	ModConfigFileName    = "config.json"
	ModSaveFileName      = "save.json"
	ModsDirName          = "Mods"
)

// ModWarning is shown once before the game starts when a mod carrying it is enabled
type ModWarning struct {
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Manifest is the on-disk metadata file of a mod
type Manifest struct {
	UniqueName      string      `json:"uniqueName"`
	Name            string      `json:"name"`
	Author          string      `json:"author"`
	Version         string      `json:"version"`
	Filename        string      `json:"filename,omitempty"`
	Patcher         string      `json:"patcher,omitempty"`
	OwmlVersion     string      `json:"owmlVersion,omitempty"`
	Dependencies    []string    `json:"dependencies,omitempty"`
	Conflicts       []string    `json:"conflicts,omitempty"`
	PathsToPreserve []string    `json:"pathsToPreserve,omitempty"`
	Warning         *ModWarning `json:"warning,omitempty"`
	DonateLinks     []string    `json:"donateLinks,omitempty"`
}

// ParseManifest decodes a manifest, tolerating a leading UTF-8 BOM
func ParseManifest(data []byte) (*Manifest, error) {
	data = trimBOM(data)
	var m Manifest
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parsing manifest: %w", err)
	}
	if m.UniqueName == "" {
		return nil, fmt.Errorf("parsing manifest: missing uniqueName")
	}
	return &m, nil
}

func trimBOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}

// ModStubConfig is the per-mod settings file (config.json) sitting next to the manifest.
// Settings are carried as raw JSON.
type ModStubConfig struct {
	Enabled  bool            `json:"enabled"`
	Settings json.RawMessage `json:"settings,omitempty"`
}

// ParseModConfig decodes a per-mod settings file
func ParseModConfig(data []byte) (*ModStubConfig, error) {
	var c ModStubConfig
	if err := json.Unmarshal(trimBOM(data), &c); err != nil {
		return nil, fmt.Errorf("parsing mod config: %w", err)
	}
	return &c, nil
}
