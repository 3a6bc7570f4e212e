package core

import (
	"github.com/ow-mods/ow-mod-man-sub000/internal/domain"
)

// DependencyTree is the transitive dependency closure of a local mod
type DependencyTree struct {
	Installed []*domain.LocalMod // Dependencies first, in visit order
	Missing   []string           // Names not present in the local database
}

// ResolveDependencies walks a mod's dependencies through the local database, following each
// name once so cycles terminate
func ResolveDependencies(mod *domain.LocalMod, local *LocalDatabase) *DependencyTree {
	tree := &DependencyTree{}
	visited := map[string]bool{mod.UniqueName(): true}

	var collect func(m *domain.LocalMod)
	collect = func(m *domain.LocalMod) {
		for _, name := range m.Manifest.Dependencies {
			if visited[name] {
				continue
			}
			visited[name] = true

			dep, ok := local.Get(name)
			if !ok {
				tree.Missing = append(tree.Missing, name)
				continue
			}
			collect(dep)
			tree.Installed = append(tree.Installed, dep)
		}
	}
	collect(mod)

	return tree
}
