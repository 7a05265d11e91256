// Package harness abstracts the underlying unit-test execution facility.
//
// The native runner hands each discovered test file to a Harness and
// folds the reported FileResult into the run totals. The exec-based
// implementation runs the file under the context's interpreter with a
// small unittest shim and reads a JSON result trailer from its output;
// orchestration tests plug in fakes instead.
package harness

import (
	"context"

	"github.com/vfx-infra/dcctest/types"
)

// Harness runs one test file and reports its result. It is the explicit
// capability marker of the execution facility: anything that can execute
// a file and produce a FileResult plugs into the native runner.
type Harness interface {
	// Init performs context-specific process initialization, such as
	// bringing up an embedded runtime, before the first file runs. The
	// caller logs and swallows failures; they are never fatal to the run.
	Init(ctx context.Context) error

	// RunFile executes one test file. Per-test failures and errors are
	// folded into the FileResult; an error return means the file could
	// not be executed at all (missing interpreter, spawn failure) and is
	// fatal to the run.
	RunFile(ctx context.Context, file string, opts RunOptions) (types.FileResult, error)
}

// RunOptions carries the per-file execution environment.
type RunOptions struct {
	// Sandbox is the test case's scratch folder. It has been reset
	// (deleted and recreated) before RunFile is called.
	Sandbox string

	// CoverageFile is the per-context coverage data fragment the external
	// coverage tool must append to, already suffixed for this context.
	CoverageFile string

	// CoverageOmit holds the omit globs for the coverage recorder,
	// passed through to the tool.
	CoverageOmit []string
}
