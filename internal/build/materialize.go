// Package build computes the install tree for a specification and drives the
// collaborators that prepare it.
package build

import (
	"errors"
	"fmt"
	"path/filepath"

	"github.com/frederic-klein/e3spec/internal/fetch"
	"github.com/frederic-klein/e3spec/internal/spec"
)

// LinkageFileName is the file the downstream make-based build reads.
const LinkageFileName = "RELEASE.local"

// ErrAborted is returned when the operator declines the build.
var ErrAborted = errors.New("build aborted by user")

// OrderingError reports a document whose module order has not been attested.
type OrderingError struct{}

func (e *OrderingError) Error() string {
	return "this specification is not ordered and thus cannot be built"
}

// Warning is a non-fatal condition found while planning a root.
type Warning struct {
	Root   string
	Module string
	Reason string
}

func (w Warning) String() string {
	return fmt.Sprintf("%s: %s", w.Module, w.Reason)
}

// Source is where a module's sources come from. URL is fetch.Placeholder
// when the module declares no git_url.
type Source struct {
	Module string
	URL    string
}

// RootPlan is the install layout for one build root.
type RootPlan struct {
	Root    string
	Paths   []string
	Linkage string
}

// Plan is the computed install layout for every build root.
type Plan struct {
	Base      string
	Require   string
	Toolchain string
	Roots     []RootPlan
	Sources   []Source
	Warnings  []Warning
}

// Paths returns every install path, root by root, in document order.
func (p *Plan) Paths() []string {
	var out []string
	for _, rp := range p.Roots {
		out = append(out, rp.Paths...)
	}
	return out
}

// Materialize computes install paths and linkage content for doc under each
// root. It touches no files. An invalid or unordered document fails before
// any root is planned; a module without installed versions is skipped with
// a warning.
func Materialize(doc *spec.Document, roots []string) (*Plan, error) {
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	if !doc.Meta.Ordered {
		return nil, &OrderingError{}
	}

	plan := &Plan{
		Base:      doc.Config.Base,
		Require:   doc.Config.Require,
		Toolchain: doc.Config.Toolchain,
	}

	for _, m := range doc.Modules {
		url := m.GitURL
		if url == "" {
			url = fetch.Placeholder
		}
		plan.Sources = append(plan.Sources, Source{Module: m.Name, URL: url})
	}

	for _, root := range roots {
		rp := RootPlan{
			Root:    root,
			Linkage: Linkage(root, doc.Config.Base, doc.Config.Require),
		}
		for _, m := range doc.Modules {
			versions := m.Versions.Installed()
			if len(versions) == 0 {
				plan.Warnings = append(plan.Warnings, Warning{
					Root:   root,
					Module: m.Name,
					Reason: "has no defined versions, skipping",
				})
				continue
			}
			for _, v := range versions {
				rp.Paths = append(rp.Paths, InstallPath(root, doc.Config.Base, doc.Config.Require, m.Name, v))
			}
		}
		plan.Roots = append(plan.Roots, rp)
	}

	return plan, nil
}

// InstallPath returns root/base-<base>/require/<require>/<module>/<version>.
func InstallPath(root, base, require, module, version string) string {
	return filepath.Join(root, "base-"+base, "require", require, module, version)
}

// Linkage returns the RELEASE.local content binding the base install path
// and the require version. The downstream build matches both keys
// literally, so the text and line order must not change.
func Linkage(buildDir, base, require string) string {
	return fmt.Sprintf("EPICS_BASE:=%s/base-%s\nE3_REQUIRE_VERSION:=%s\n",
		filepath.ToSlash(filepath.Clean(buildDir)), base, require)
}
