package harness

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"github.com/acarl005/stripansi"

	"github.com/vfx-infra/dcctest/types"
)

// Environment variables the runner shim reads.
const (
	// EnvSandbox points the shim (and through it the test case) at its
	// scratch folder.
	EnvSandbox = "DCCTEST_SANDBOX"

	// EnvCoverageFile is where the coverage tool writes this context's
	// data fragment. The name matches the convention of coverage.py.
	EnvCoverageFile = "COVERAGE_FILE"

	// EnvCoverageOmit carries the omit globs, list-separator joined.
	EnvCoverageOmit = "DCCTEST_COVERAGE_OMIT"
)

const (
	resultOpenTag  = "<dcctest-result>"
	resultCloseTag = "</dcctest-result>"
)

// ExecHarness executes test files by spawning the context's interpreter
// with the runner shim script. The shim loads the file with the host
// language's unit-testing facility, tracks coverage, and prints a JSON
// result trailer as its last output line.
type ExecHarness struct {
	// Interpreter is the resolved executable for this context.
	Interpreter string

	// Script is the runner shim, staged into the settings area during
	// environment preparation.
	Script string

	// Stdout receives the pass-through test output. Defaults to
	// os.Stdout.
	Stdout io.Writer

	Log *slog.Logger
}

var _ Harness = (*ExecHarness)(nil)

// Init verifies the interpreter is reachable; a missing executable is a
// fatal dispatch problem. Embedded runtimes (e.g. maya.standalone) are
// brought up by the shim inside the interpreter that hosts them, and
// their initialization failures are tolerated there.
func (h *ExecHarness) Init(ctx context.Context) error {
	if _, err := exec.LookPath(h.Interpreter); err != nil {
		return fmt.Errorf("interpreter not found: %s", h.Interpreter)
	}
	return nil
}

// RunFile runs one test file under the interpreter and parses its result
// trailer. The file's ordinary output is forwarded line by line while the
// process runs; only the trailer line is intercepted.
func (h *ExecHarness) RunFile(ctx context.Context, file string, opts RunOptions) (types.FileResult, error) {
	stdout := h.Stdout
	if stdout == nil {
		stdout = os.Stdout
	}

	cmd := exec.CommandContext(ctx, h.Interpreter, h.Script, file)
	cmd.Env = append(os.Environ(),
		EnvSandbox+"="+opts.Sandbox,
		EnvCoverageFile+"="+opts.CoverageFile,
		EnvCoverageOmit+"="+strings.Join(opts.CoverageOmit, string(os.PathListSeparator)),
	)

	pr, pw, err := os.Pipe()
	if err != nil {
		return types.FileResult{}, fmt.Errorf("creating output pipe: %w", err)
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return types.FileResult{}, fmt.Errorf("starting test file %s: %w", file, err)
	}
	pw.Close()

	var result types.FileResult
	var sawResult bool
	scanner := bufio.NewScanner(pr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if res, ok := TryParseResultLine(line); ok {
			result = res
			sawResult = true
			continue
		}
		fmt.Fprintln(stdout, line)
	}
	scanErr := scanner.Err()
	pr.Close()

	waitErr := cmd.Wait()
	if scanErr != nil {
		return types.FileResult{}, fmt.Errorf("reading output of test file %s: %w", file, scanErr)
	}

	if !sawResult {
		// The shim died before reporting: count the whole file as one
		// error so the totals stay honest, but don't kill the run.
		h.Log.Error("test file produced no result trailer",
			"file", file, "exit_error", waitErr)
		return types.FileResult{Errors: 1}, nil
	}
	return result, nil
}

// EncodeResultLine renders a file result as the shim's trailer line.
// Exposed so the staged shim script and the parser stay in one place.
func EncodeResultLine(res types.FileResult) string {
	return fmt.Sprintf("%s{\"tests_run\":%d,\"failures\":%d,\"errors\":%d}%s",
		resultOpenTag, res.TestsRun, res.Failures, res.Errors, resultCloseTag)
}

// TryParseResultLine scans a line for the shim's result trailer. Ordinary
// output returns false; the function never fails.
func TryParseResultLine(line string) (types.FileResult, bool) {
	line = stripansi.Strip(line)

	start := strings.Index(line, resultOpenTag)
	if start < 0 {
		return types.FileResult{}, false
	}
	rest := line[start+len(resultOpenTag):]
	end := strings.Index(rest, resultCloseTag)
	if end < 0 {
		return types.FileResult{}, false
	}

	var res types.FileResult
	if err := unmarshalStrict(rest[:end], &res); err != nil {
		return types.FileResult{}, false
	}
	return res, true
}
