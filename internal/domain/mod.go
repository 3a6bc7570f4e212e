package domain

// LocalMod is a mod folder whose manifest loaded successfully
type LocalMod struct {
	Enabled  bool
	Manifest Manifest
	ModPath  string // Absolute folder containing the manifest
	Errors   []ValidationError
}

// FailedMod is a mod folder that could not be loaded
type FailedMod struct {
	ModPath     string
	DisplayPath string // Relative to the Mods root, used when no unique name could be parsed
	Error       ValidationError
}

// UnsafeLocalMod is either a *LocalMod or a *FailedMod. Consumers switch on the concrete type:
//
//	switch m := mod.(type) {
//	case *domain.LocalMod:
//	case *domain.FailedMod:
//	}
type UnsafeLocalMod interface {
	Path() string
	unsafeLocalMod()
}

func (m *LocalMod) Path() string { return m.ModPath }

func (m *LocalMod) unsafeLocalMod() {}

func (m *FailedMod) Path() string { return m.ModPath }

func (m *FailedMod) unsafeLocalMod() {}

// UniqueName returns the manifest unique name
func (m *LocalMod) UniqueName() string {
	return m.Manifest.UniqueName
}

// HasErrors reports whether validation attached any errors to the mod
func (m *LocalMod) HasErrors() bool {
	return len(m.Errors) > 0
}

// HasError reports whether an error of the given kind is attached to the mod
func (m *LocalMod) HasError(kind ValidationErrorKind) bool {
	for _, e := range m.Errors {
		if e.Kind == kind {
			return true
		}
	}
	return false
}

// Prerelease is an optional pre-release build published next to the main release
type Prerelease struct {
	DownloadURL string `json:"downloadUrl"`
	Version     string `json:"version"`
}

// RemoteMod is a catalog entry. It carries no dependency list: dependencies are only known
// once the archive's manifest has been read.
type RemoteMod struct {
	UniqueName    string      `json:"uniqueName"`
	Name          string      `json:"name"`
	Description   string      `json:"description"`
	Author        string      `json:"author"`
	AuthorDisplay string      `json:"authorDisplay,omitempty"`
	Version       string      `json:"version"`
	DownloadURL   string      `json:"downloadUrl"`
	DownloadCount int64       `json:"downloadCount"`
	Repo          string      `json:"repo,omitempty"`
	Required      bool        `json:"required,omitempty"`
	Parent        string      `json:"parent,omitempty"`
	Prerelease    *Prerelease `json:"prerelease,omitempty"`
	Tags          []string    `json:"tags,omitempty"`
}

// DisplayAuthor prefers the display author when the catalog provides one
func (m *RemoteMod) DisplayAuthor() string {
	if m.AuthorDisplay != "" {
		return m.AuthorDisplay
	}
	return m.Author
}

// HasTag reports whether the mod carries the tag
func (m *RemoteMod) HasTag(tag string) bool {
	for _, t := range m.Tags {
		if t == tag {
			return true
		}
	}
	return false
}

// SearchValues implements search.Searchable
func (m *LocalMod) SearchValues() []string {
	return []string{m.Manifest.Name, m.Manifest.UniqueName, m.Manifest.Author}
}

// SearchValues implements search.Searchable
func (m *RemoteMod) SearchValues() []string {
	return []string{m.Name, m.UniqueName, m.DisplayAuthor(), m.Description}
}
