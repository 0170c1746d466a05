package spec

import (
	"fmt"
	"time"

	"gopkg.in/yaml.v3"
)

// DatestampLayout is the layout of Meta.Datestamp.
const DatestampLayout = "2006-01-02T15:04:05.000000"

// Document is a build specification: the runtime versions to build against,
// the modules to build in order, and where the document came from.
type Document struct {
	Config         Config       `yaml:"config"`
	Modules        []Module     `yaml:"modules"`
	Meta           Meta         `yaml:"meta"`
	RemovedModules []ModuleStub `yaml:"removed_modules,omitempty"`
}

// Config holds the base, require and toolchain versions.
type Config struct {
	Base      string `yaml:"base"`          // e.g., "7.0.5"
	Require   string `yaml:"require"`       // e.g., "3.4.1"
	Toolchain string `yaml:"cct,omitempty"` // cross-compiler toolchain, optional
}

// Module is a named module with the versions to build. Order in
// Document.Modules is build order.
type Module struct {
	Name     string   `yaml:"name"`
	GitURL   string   `yaml:"git_url,omitempty"`
	Versions Versions `yaml:"versions"`
}

// ModuleStub names a module seen in a live environment but not listed in the
// prior document.
type ModuleStub struct {
	Name string `yaml:"name"`
}

// Meta records where a document was derived from and whether its module order
// has been attested.
type Meta struct {
	Environment string `yaml:"environment"`
	Datestamp   string `yaml:"datestamp"`
	Ordered     bool   `yaml:"ordered"`
	Infile      string `yaml:"infile"`
}

// Uninstalled is the version entry for a module that is declared but has no
// installed versions. It is serialized as null.
const Uninstalled = ""

// Versions is an ordered list of normalized version strings. Entries equal to
// Uninstalled are written as null.
type Versions []string

// Installed returns the entries that are not the Uninstalled sentinel.
func (v Versions) Installed() []string {
	out := make([]string, 0, len(v))
	for _, s := range v {
		if s != Uninstalled {
			out = append(out, s)
		}
	}
	return out
}

// MarshalYAML writes sentinel entries as null and keeps numeric-looking
// versions quoted.
func (v Versions) MarshalYAML() (interface{}, error) {
	node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
	for _, s := range v {
		if s == Uninstalled {
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"})
			continue
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s})
	}
	return node, nil
}

// UnmarshalYAML accepts string, numeric and null entries. Numeric entries keep
// their literal text, so "7.10" stays "7.10".
func (v *Versions) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode && node.Tag == "!!null" {
		*v = Versions{}
		return nil
	}
	if node.Kind != yaml.SequenceNode {
		return fmt.Errorf("line %d: versions must be a list", node.Line)
	}
	out := make(Versions, 0, len(node.Content))
	for _, item := range node.Content {
		if item.Kind != yaml.ScalarNode {
			return fmt.Errorf("line %d: version must be a scalar", item.Line)
		}
		if item.Tag == "!!null" {
			out = append(out, Uninstalled)
			continue
		}
		out = append(out, item.Value)
	}
	*v = out
	return nil
}

// Stamp sets Meta.Datestamp from t.
func (m *Meta) Stamp(t time.Time) {
	m.Datestamp = t.Format(DatestampLayout)
}

// ModuleNames returns the module names in document order.
func (d *Document) ModuleNames() []string {
	names := make([]string, len(d.Modules))
	for i, m := range d.Modules {
		names[i] = m.Name
	}
	return names
}

// Lookup finds a module by name.
func (d *Document) Lookup(name string) (Module, bool) {
	for _, m := range d.Modules {
		if m.Name == name {
			return m, true
		}
	}
	return Module{}, false
}
