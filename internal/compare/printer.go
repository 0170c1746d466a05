package compare

import (
	"fmt"
	"io"
	"sort"

	"gopkg.in/yaml.v3"

	"github.com/frederic-klein/e3spec/internal/version"
)

// Versions returns the versions recorded for name in version order.
func (m Modules) Versions(name string) []string {
	out := keys(m[name])
	version.Sort(out)
	return out
}

// Names returns the module names in lexical order.
func (m Modules) Names() []string {
	names := make([]string, 0, len(m))
	for name := range m {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Print writes m as a YAML mapping of module name to version list, e.g.
//
//	asyn:
//	- "4.32"
//	seq:
//	- 2.2.9
func Print(w io.Writer, m Modules) error {
	for _, name := range m.Names() {
		if _, err := fmt.Fprintf(w, "%s:\n", scalar(name)); err != nil {
			return err
		}
		for _, v := range m.Versions(name) {
			if _, err := fmt.Fprintf(w, "- %s\n", scalar(v)); err != nil {
				return err
			}
		}
	}
	return nil
}

// scalar renders s as a YAML string scalar, quoting it when it would
// otherwise be read back as a number, boolean or null.
func scalar(s string) string {
	node := yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: s}
	out, err := yaml.Marshal(&node)
	if err != nil {
		return fmt.Sprintf("%q", s)
	}
	return string(out[:len(out)-1])
}
