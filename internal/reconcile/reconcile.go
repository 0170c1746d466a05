// Package reconcile generates specifications from a live module installation.
package reconcile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/frederic-klein/e3spec/internal/spec"
	"github.com/frederic-klein/e3spec/internal/version"
)

// Options tunes a reconciliation.
type Options struct {
	// Infile is the path the prior document was read from, recorded in
	// meta.infile.
	Infile string
	// Exclude holds doublestar patterns matched against module directory
	// names. Matching modules are ignored unless the prior document lists them.
	Exclude []string
	// Now stamps meta.datestamp; time.Now when nil.
	Now func() time.Time
}

// Generate checks that env's module directory exists and reconciles it.
func Generate(env Environment, prior *spec.Document, opts Options) (*spec.Document, error) {
	dir := env.SiteModsPath()
	info, err := os.Stat(dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, &EnvironmentError{Path: dir}
		}
		return nil, fmt.Errorf("checking environment: %w", err)
	}
	if !info.IsDir() {
		return nil, &EnvironmentError{Path: dir}
	}
	return Reconcile(os.DirFS(dir), env, prior, opts)
}

// Reconcile builds a document from live, whose top-level directories are
// modules and whose second-level directories are installed versions.
//
// Without a prior document every live module is listed in directory order
// and the result is unordered. With one, the prior module list and order are
// kept: each module gets its live versions, or the Uninstalled sentinel if it
// is not installed, and live modules the prior document does not list go to
// removed_modules. The ordered flag is carried over from the prior document.
// Config always describes env.
func Reconcile(live fs.FS, env Environment, prior *spec.Document, opts Options) (*spec.Document, error) {
	for _, pattern := range opts.Exclude {
		if !doublestar.ValidatePattern(pattern) {
			return nil, fmt.Errorf("invalid exclude pattern %q", pattern)
		}
	}

	installed, err := scan(live)
	if err != nil {
		return nil, err
	}

	doc := &spec.Document{
		Config: spec.Config{
			Base:    env.BaseVersion(),
			Require: env.RequireVersion,
		},
	}

	if prior == nil {
		doc.Modules = make([]spec.Module, 0, len(installed))
		for _, m := range installed {
			if excluded(m.name, opts.Exclude) {
				continue
			}
			doc.Modules = append(doc.Modules, spec.Module{Name: m.name, Versions: m.versions})
		}
	} else {
		doc.Modules = make([]spec.Module, 0, len(prior.Modules))
		byName := make(map[string]installedModule, len(installed))
		for _, m := range installed {
			byName[m.name] = m
		}

		listed := make(map[string]bool, len(prior.Modules))
		for _, pm := range prior.Modules {
			listed[pm.Name] = true
			m := spec.Module{Name: pm.Name, GitURL: pm.GitURL}
			if found, ok := byName[pm.Name]; ok {
				m.Versions = found.versions
			} else {
				m.Versions = spec.Versions{spec.Uninstalled}
			}
			doc.Modules = append(doc.Modules, m)
		}

		for _, m := range installed {
			if listed[m.name] || excluded(m.name, opts.Exclude) {
				continue
			}
			doc.RemovedModules = append(doc.RemovedModules, spec.ModuleStub{Name: m.name})
		}
		doc.Meta.Ordered = prior.Meta.Ordered
		doc.Meta.Infile = opts.Infile
	}

	now := opts.Now
	if now == nil {
		now = time.Now
	}
	doc.Meta.Environment = filepath.ToSlash(env.Path())
	doc.Meta.Stamp(now())

	return doc, nil
}

type installedModule struct {
	name     string
	versions spec.Versions
}

// scan lists module directories in name order with their normalized,
// de-duplicated versions in version order.
func scan(live fs.FS) ([]installedModule, error) {
	entries, err := fs.ReadDir(live, ".")
	if err != nil {
		return nil, fmt.Errorf("reading module directory: %w", err)
	}

	var modules []installedModule
	for _, entry := range entries {
		ok, err := isDir(live, entry.Name(), entry)
		if err != nil {
			return nil, err
		}
		if !ok {
			continue
		}

		versions, err := scanVersions(live, entry.Name())
		if err != nil {
			return nil, err
		}
		modules = append(modules, installedModule{name: entry.Name(), versions: versions})
	}
	return modules, nil
}

func scanVersions(live fs.FS, module string) (spec.Versions, error) {
	entries, err := fs.ReadDir(live, module)
	if err != nil {
		return nil, fmt.Errorf("reading versions of %s: %w", module, err)
	}

	raw := make([]string, 0, len(entries))
	for _, entry := range entries {
		ok, err := isDir(live, module+"/"+entry.Name(), entry)
		if err != nil {
			return nil, err
		}
		if ok {
			raw = append(raw, version.Normalize(entry.Name()))
		}
	}

	versions := version.Unique(raw)
	version.Sort(versions)
	return spec.Versions(versions), nil
}

// isDir follows symlinks, which DirEntry.IsDir does not.
func isDir(fsys fs.FS, name string, entry fs.DirEntry) (bool, error) {
	if entry.IsDir() {
		return true, nil
	}
	if entry.Type()&fs.ModeSymlink == 0 {
		return false, nil
	}
	info, err := fs.Stat(fsys, name)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("checking %s: %w", name, err)
	}
	return info.IsDir(), nil
}

func excluded(name string, patterns []string) bool {
	for _, pattern := range patterns {
		if ok, _ := doublestar.Match(pattern, name); ok {
			return true
		}
	}
	return false
}
