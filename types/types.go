// Package types defines the shared data model for a dcctest run:
// the execution-context catalog, the run configuration threaded through
// every component, and the statistics accumulator.
package types

import (
	"sort"
	"strings"
)

// NativeContext is the reserved context name meaning "execute tests
// directly in the current process, never dispatch to a child".
const NativeContext = "native"

// ContextDescriptor is the static, read-only configuration of one
// execution context as declared in the config file.
type ContextDescriptor struct {
	// Executable is the interpreter or host-application binary for this
	// context. Empty for composite contexts.
	Executable string `json:"executable,omitempty" yaml:"executable,omitempty"`

	// Version tags DCC hosts (e.g. "2024") so per-host preference areas
	// don't collide across installs.
	Version string `json:"version,omitempty" yaml:"version,omitempty"`

	// NestedContexts marks this context as composite: running it means
	// running each listed context in order against the same target.
	NestedContexts []string `json:"nested_contexts,omitempty" yaml:"nested_contexts,omitempty"`

	// PythonPath is an extra search path appended for this context's
	// child processes.
	PythonPath string `json:"PYTHONPATH,omitempty" yaml:"PYTHONPATH,omitempty"`

	// OmitCoverage holds extra coverage-omit globs for this context.
	OmitCoverage []string `json:"omit_coverage,omitempty" yaml:"omit_coverage,omitempty"`

	// Requirements optionally points at a pip requirements file installed
	// into this context's managed virtualenv.
	Requirements string `json:"requirements,omitempty" yaml:"requirements,omitempty"`
}

// Catalog maps context names to their descriptors.
type Catalog map[string]ContextDescriptor

// Has reports whether name is a declared context.
func (c Catalog) Has(name string) bool {
	_, ok := c[name]
	return ok
}

// Names returns all declared context names, sorted.
func (c Catalog) Names() []string {
	names := make([]string, 0, len(c))
	for name := range c {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// IsPythonLike reports whether a context name follows the python naming
// convention ("python2.x", "python3.x", ...). Python-like contexts sort
// first in child recursion and get managed virtualenvs.
func IsPythonLike(name string) bool {
	return strings.HasPrefix(strings.ToLower(name), "python")
}
