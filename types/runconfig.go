package types

// RunConfig is the configuration record threaded through every call of a
// run. It is assembled once per process (from CLI flags and the config
// file, or recovered from the parent's handoff in a dispatched child) and
// immutable afterwards except for Target/Context rewrites during child
// recursion and the Stats accumulator.
//
// The JSON tags double as the wire format of the child handoff, so every
// field must be a pure value: no field may depend on transient in-memory
// references.
type RunConfig struct {
	// Target is the absolute root of the test tree for this invocation.
	Target string `json:"target"`

	// Context names the execution context this invocation runs as.
	Context string `json:"context"`

	// ContextCatalog holds the declared contexts from the config file.
	ContextCatalog Catalog `json:"context_details"`

	// FilterTokens optionally narrow discovery: a test file must contain
	// at least one token as a substring (in addition to matching
	// TestFilePattern).
	FilterTokens []string `json:"filter_tokens,omitempty"`

	// FailFast aborts the run on the first file with a failure or error.
	FailFast bool `json:"failfast"`

	// Limit caps test files per context; GlobalLimit caps files across the
	// whole run tree. Zero means unlimited.
	Limit       int `json:"limit"`
	GlobalLimit int `json:"globallimit"`

	// TestFilePattern is the required filename glob for discovery.
	TestFilePattern string `json:"test_file_pattern"`

	// IncludeTestFiles keeps test files themselves in coverage reports.
	IncludeTestFiles bool `json:"include_test_files"`

	// OutputFolder is the absolute root for all run artifacts. Its parent
	// must already exist; the folder itself is created on demand.
	OutputFolder string `json:"output_folder"`

	// OmitCoverage holds config-level coverage-omit globs.
	OmitCoverage []string `json:"omit_coverage,omitempty"`

	// PythonPath is a config-level extra search path for child processes.
	PythonPath string `json:"PYTHONPATH,omitempty"`

	// SettingsPath is the DCC settings area under OutputFolder, populated
	// during environment preparation (helpers, staged modules, managed
	// virtualenvs).
	SettingsPath string `json:"dcc_settings_path,omitempty"`

	// Cwd is the working directory of the root invocation. Children
	// inherit it through the handoff so path resolution stays stable
	// across hosts that change their own cwd on startup.
	Cwd string `json:"cwd"`

	// ConfigPath is the absolute path of the loaded config file, if any.
	ConfigPath string `json:"cfg,omitempty"`

	// DebugMode enables verbose diagnostics.
	DebugMode bool `json:"debug_mode"`

	// IsSubprocess is true when this invocation was spawned by a parent
	// dcctest rather than started by a user. Subprocesses always execute
	// natively and never recurse into child folders or combine coverage.
	IsSubprocess bool `json:"subprocess"`

	// Stats is the run accumulator. Within one process every derived
	// child configuration shares this pointer; across a process boundary
	// the values travel in the handoff and the child builds its own.
	Stats *RunStats `json:"stats"`
}

// Clone returns a deep copy with its own Stats accumulator, seeded from
// the current totals. Used when serializing configuration for a child
// process: the clone, not the live object, crosses the boundary.
func (c *RunConfig) Clone() *RunConfig {
	cp := *c
	cp.FilterTokens = append([]string(nil), c.FilterTokens...)
	cp.OmitCoverage = append([]string(nil), c.OmitCoverage...)
	cp.ContextCatalog = make(Catalog, len(c.ContextCatalog))
	for name, desc := range c.ContextCatalog {
		d := desc
		d.NestedContexts = append([]string(nil), desc.NestedContexts...)
		d.OmitCoverage = append([]string(nil), desc.OmitCoverage...)
		cp.ContextCatalog[name] = d
	}
	stats := *c.Stats
	cp.Stats = &stats
	return &cp
}

// ChildFor derives the configuration for recursing into a context-named
// subfolder. The copy shares the parent's Stats accumulator: totals are
// cumulative across siblings by construction.
func (c *RunConfig) ChildFor(target, context string) *RunConfig {
	cp := *c
	cp.Target = target
	cp.Context = context
	return &cp
}

// RunStats is the explicit run accumulator: counters are monotonically
// non-decreasing within one logical run tree and owned by exactly one
// writer at a time (the producing process tree is strictly sequential).
type RunStats struct {
	FilesRun int `json:"files_run"`
	TestsRun int `json:"tests_run"`
	Errors   int `json:"errors"`
}

// AddFile folds one executed test file's result into the totals.
func (s *RunStats) AddFile(res FileResult) {
	s.FilesRun++
	s.TestsRun += res.TestsRun
	s.Errors += res.Failures + res.Errors
}

// Replace overwrites the totals with a child's reported counters. The
// child started from this process's running totals, so its payload is
// already cumulative.
func (s *RunStats) Replace(filesRun, testsRun, errors int) {
	s.FilesRun = filesRun
	s.TestsRun = testsRun
	s.Errors = errors
}

// FileResult is what the underlying test-execution facility reports for
// one test file. It is consumed immediately to update RunStats and then
// discarded.
type FileResult struct {
	TestsRun int `json:"tests_run"`
	Failures int `json:"failures"`
	Errors   int `json:"errors"`
}

// Problems returns the combined failure and error count.
func (r FileResult) Problems() int {
	return r.Failures + r.Errors
}
