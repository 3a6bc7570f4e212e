package core

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"

	"github.com/ow-mods/ow-mod-man-sub000/internal/domain"
	"github.com/ow-mods/ow-mod-man-sub000/internal/search"

	"github.com/spf13/afero"
)

// catalog is the published database document
type catalog struct {
	Releases []domain.RemoteMod `json:"releases"`
}

// RemoteDatabase is an immutable index of the published catalog
type RemoteDatabase struct {
	mods  map[string]*domain.RemoteMod
	order []string // Catalog order, used for stable listings
}

// NewRemoteDatabase indexes releases by unique name, normalizing every version string.
// A repeated unique name replaces the earlier release.
func NewRemoteDatabase(releases []domain.RemoteMod) *RemoteDatabase {
	db := &RemoteDatabase{mods: make(map[string]*domain.RemoteMod, len(releases))}
	for i := range releases {
		m := releases[i]
		m.Version = domain.NormalizeVersion(m.Version)
		if m.Prerelease != nil {
			pre := *m.Prerelease
			pre.Version = domain.NormalizeVersion(pre.Version)
			m.Prerelease = &pre
		}
		if _, seen := db.mods[m.UniqueName]; !seen {
			db.order = append(db.order, m.UniqueName)
		}
		db.mods[m.UniqueName] = &m
	}
	return db
}

// ParseRemoteDB decodes a catalog document
func ParseRemoteDB(r io.Reader) (*RemoteDatabase, error) {
	var doc catalog
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRemoteDBUnreadable, err)
	}
	return NewRemoteDatabase(doc.Releases), nil
}

// FetchRemoteDB downloads and indexes the catalog with a single request
func FetchRemoteDB(ctx context.Context, httpClient *http.Client, url string) (db *RemoteDatabase, err error) {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetching remote database: %w", err)
	}
	defer func() {
		if cerr := resp.Body.Close(); err == nil && cerr != nil {
			err = fmt.Errorf("closing response body: %w", cerr)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: HTTP %d", domain.ErrRemoteDBUnreadable, resp.StatusCode)
	}

	return ParseRemoteDB(resp.Body)
}

// LoadRemoteDB reads a catalog from url, or from the filesystem when url is not http(s)
func LoadRemoteDB(ctx context.Context, fs afero.Fs, httpClient *http.Client, url string) (*RemoteDatabase, error) {
	if strings.HasPrefix(url, "http://") || strings.HasPrefix(url, "https://") {
		return FetchRemoteDB(ctx, httpClient, url)
	}

	f, err := fs.Open(strings.TrimPrefix(url, "file://"))
	if err != nil {
		return nil, fmt.Errorf("opening remote database file: %w", err)
	}
	defer f.Close()
	return ParseRemoteDB(f)
}

// GetMod returns a catalog entry. The mod loader is never returned here.
func (db *RemoteDatabase) GetMod(uniqueName string) (*domain.RemoteMod, bool) {
	if uniqueName == domain.OwmlUniqueName {
		return nil, false
	}
	m, ok := db.mods[uniqueName]
	return m, ok
}

// GetOwml returns the mod loader's catalog entry
func (db *RemoteDatabase) GetOwml() (*domain.RemoteMod, bool) {
	m, ok := db.mods[domain.OwmlUniqueName]
	return m, ok
}

// Mods returns every regular mod in catalog order
func (db *RemoteDatabase) Mods() []*domain.RemoteMod {
	mods := make([]*domain.RemoteMod, 0, len(db.order))
	for _, name := range db.order {
		if name == domain.OwmlUniqueName {
			continue
		}
		mods = append(mods, db.mods[name])
	}
	return mods
}

// Len returns the number of regular mods
func (db *RemoteDatabase) Len() int {
	if _, ok := db.mods[domain.OwmlUniqueName]; ok {
		return len(db.mods) - 1
	}
	return len(db.mods)
}

// Tags returns every tag sorted by how many mods carry it. Equal counts keep first-seen order.
func (db *RemoteDatabase) Tags() []string {
	counts := make(map[string]int)
	var tags []string
	for _, m := range db.Mods() {
		for _, t := range m.Tags {
			if counts[t] == 0 {
				tags = append(tags, t)
			}
			counts[t]++
		}
	}
	sort.SliceStable(tags, func(i, j int) bool {
		return counts[tags[i]] > counts[tags[j]]
	})
	return tags
}

// MatchesTags keeps the mods carrying any of the tags. No tags keeps everything.
func MatchesTags(mods []*domain.RemoteMod, tags []string) []*domain.RemoteMod {
	if len(tags) == 0 {
		return mods
	}
	var out []*domain.RemoteMod
	for _, m := range mods {
		for _, t := range tags {
			if m.HasTag(t) {
				out = append(out, m)
				break
			}
		}
	}
	return out
}

// Search ranks regular mods against a free-text query, optionally filtered by tags
func (db *RemoteDatabase) Search(query string, tags ...string) []*domain.RemoteMod {
	return search.Rank(MatchesTags(db.Mods(), tags), query)
}
