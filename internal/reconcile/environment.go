package reconcile

import (
	"fmt"
	"path/filepath"
	"strings"
)

// Environment variable names that identify a live environment.
const (
	EnvEPICSBase      = "EPICS_BASE"
	EnvRequireName    = "E3_REQUIRE_NAME"
	EnvRequireVersion = "E3_REQUIRE_VERSION"
)

// Environment is a live installation, resolved once from the process
// environment and passed down explicitly.
type Environment struct {
	EPICSBase      string // e.g. /epics/base-7.0.5
	RequireName    string // e.g. require
	RequireVersion string // e.g. 3.4.1
}

// EnvironmentError reports missing bindings or a missing module directory.
type EnvironmentError struct {
	Missing []string
	Path    string
}

func (e *EnvironmentError) Error() string {
	if len(e.Missing) > 0 {
		return fmt.Sprintf("you need to first source an e3 environment, or set the environment variables %s", strings.Join(e.Missing, ", "))
	}
	return fmt.Sprintf("the defined environment does not exist: %s", e.Path)
}

// LookupFunc has the signature of os.LookupEnv.
type LookupFunc func(key string) (string, bool)

// ResolveEnvironment reads the required bindings through lookup. Unset and
// empty bindings are both reported as missing.
func ResolveEnvironment(lookup LookupFunc) (Environment, error) {
	var missing []string
	get := func(key string) string {
		v, ok := lookup(key)
		v = strings.TrimSpace(v)
		if !ok || v == "" {
			missing = append(missing, key)
		}
		return v
	}

	env := Environment{
		EPICSBase:      get(EnvEPICSBase),
		RequireName:    get(EnvRequireName),
		RequireVersion: get(EnvRequireVersion),
	}
	if len(missing) > 0 {
		return Environment{}, &EnvironmentError{Missing: missing}
	}
	return env, nil
}

// BaseVersion is the part of EPICS_BASE after its last "-":
// /epics/base-7.0.5 gives 7.0.5.
func (e Environment) BaseVersion() string {
	base := filepath.Base(filepath.Clean(e.EPICSBase))
	if idx := strings.LastIndex(base, "-"); idx != -1 {
		return base[idx+1:]
	}
	return base
}

// Path is the require installation: $EPICS_BASE/require/$E3_REQUIRE_VERSION.
func (e Environment) Path() string {
	return filepath.Join(e.EPICSBase, "require", e.RequireVersion)
}

// SiteModsPath is the directory holding installed modules.
func (e Environment) SiteModsPath() string {
	return filepath.Join(e.Path(), "siteMods")
}
