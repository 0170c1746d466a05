// Package compare computes what a target specification adds over a source
// specification.
package compare

import (
	"github.com/frederic-klein/e3spec/internal/spec"
)

// Modules maps a module name to a set of versions.
type Modules map[string]map[string]struct{}

// NewModules builds a module map from name -> version list.
func NewModules(m map[string][]string) Modules {
	out := make(Modules, len(m))
	for name, versions := range m {
		out.Add(name, versions...)
	}
	return out
}

// ModuleMap builds a module map from a document. Uninstalled sentinel
// entries are not versions and are left out.
func ModuleMap(doc *spec.Document) Modules {
	out := make(Modules, len(doc.Modules))
	for _, m := range doc.Modules {
		out.Add(m.Name, m.Versions.Installed()...)
	}
	return out
}

// Add records versions under name, creating the entry if needed.
func (m Modules) Add(name string, versions ...string) {
	set, ok := m[name]
	if !ok {
		set = make(map[string]struct{}, len(versions))
		m[name] = set
	}
	for _, v := range versions {
		set[v] = struct{}{}
	}
}

// Difference returns what target adds over source. A module missing from
// source is returned with all of its target versions; a module present in
// both is returned with the versions only target has, and only if there are
// any. Modules or versions that only source has are never reported.
func Difference(source, target Modules) Modules {
	diff := make(Modules)
	for name, targetVersions := range target {
		sourceVersions, ok := source[name]
		if !ok {
			diff.Add(name, keys(targetVersions)...)
			continue
		}

		var added []string
		for v := range targetVersions {
			if _, found := sourceVersions[v]; !found {
				added = append(added, v)
			}
		}
		if len(added) > 0 {
			diff.Add(name, added...)
		}
	}
	return diff
}

func keys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	return out
}
