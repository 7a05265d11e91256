// Package reporting renders the end-of-run summary: a console table of
// every executed suite and an HTML report written next to the run logs.
package reporting

import (
	"time"

	"github.com/vfx-infra/dcctest/types"
)

// SuiteResult is the outcome of one suite execution, derived from the
// accumulator movement the runner journaled.
type SuiteResult struct {
	Context  string
	Target   string
	FilesRun int
	TestsRun int
	Errors   int
}

// Passed reports whether the suite completed without failures or errors.
func (s SuiteResult) Passed() bool {
	return s.Errors == 0
}

// RunReport aggregates everything the sinks render.
type RunReport struct {
	RunID    string
	Version  string
	Duration time.Duration
	Stats    types.RunStats
	Suites   []SuiteResult
}

// Passed reports whether the whole run completed without failures or
// errors.
func (r *RunReport) Passed() bool {
	return r.Stats.Errors == 0
}
