// Package runner executes discovered test files per context: natively in
// this process where possible, otherwise by dispatching a child process
// for the context's interpreter or host application.
package runner

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/vfx-infra/dcctest/bootstrap"
	"github.com/vfx-infra/dcctest/coverage"
	"github.com/vfx-infra/dcctest/discovery"
	"github.com/vfx-infra/dcctest/harness"
	"github.com/vfx-infra/dcctest/logging"
	"github.com/vfx-infra/dcctest/metrics"
	"github.com/vfx-infra/dcctest/statsline"
	"github.com/vfx-infra/dcctest/types"
)

// HarnessFactory builds the file-execution harness for one native run.
// Swappable in tests.
type HarnessFactory func(cfg *types.RunConfig, interpreter string, stdout io.Writer, log *slog.Logger) harness.Harness

// RecorderFactory builds the coverage recorder for one native run.
type RecorderFactory func(cfg *types.RunConfig, log *slog.Logger) coverage.Recorder

// Runner holds the ambient pieces shared by every suite execution of one
// process: logging, metrics identity, tracing and the self-executable
// path used for child dispatch.
type Runner struct {
	log        *slog.Logger
	runID      string
	selfExe    string
	stdout     io.Writer
	fileLogger *logging.FileLogger
	tracer     trace.Tracer

	newHarness  HarnessFactory
	newRecorder RecorderFactory

	journal []JournalEntry
}

// JournalEntry records the accumulator movement of one suite execution,
// for the end-of-run summary.
type JournalEntry struct {
	Context string
	Target  string
	Before  types.RunStats
	After   types.RunStats
}

// Journal returns the suite executions recorded so far, in order.
func (r *Runner) Journal() []JournalEntry {
	return r.journal
}

// Option configures a Runner.
type Option func(*Runner)

// WithHarnessFactory replaces the default exec-based harness.
func WithHarnessFactory(f HarnessFactory) Option {
	return func(r *Runner) { r.newHarness = f }
}

// WithRecorderFactory replaces the default file-based coverage recorder.
func WithRecorderFactory(f RecorderFactory) Option {
	return func(r *Runner) { r.newRecorder = f }
}

// WithStdout redirects pass-through test output, mainly for tests.
func WithStdout(w io.Writer) Option {
	return func(r *Runner) { r.stdout = w }
}

// NewRunner creates a Runner. fileLogger may be nil, in which case child
// output is only forwarded to stdout.
func NewRunner(log *slog.Logger, runID string, fileLogger *logging.FileLogger, opts ...Option) (*Runner, error) {
	selfExe, err := os.Executable()
	if err != nil {
		return nil, fmt.Errorf("resolving own executable: %w", err)
	}

	r := &Runner{
		log:        log,
		runID:      runID,
		selfExe:    selfExe,
		stdout:     os.Stdout,
		fileLogger: fileLogger,
		tracer:     otel.Tracer("dcctest/runner"),
	}
	r.newHarness = func(cfg *types.RunConfig, interpreter string, stdout io.Writer, log *slog.Logger) harness.Harness {
		return &harness.ExecHarness{
			Interpreter: interpreter,
			Script:      filepath.Join(cfg.SettingsPath, "helpers", "run_file.py"),
			Stdout:      stdout,
			Log:         log,
		}
	}
	r.newRecorder = func(cfg *types.RunConfig, log *slog.Logger) coverage.Recorder {
		return &coverage.FileRecorder{Dir: cfg.OutputFolder, Log: log}
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// RunTestSuite runs the test suite of cfg.Target in cfg.Context. Native
// contexts and subprocess invocations execute files directly; everything
// else is dispatched, fanning a composite context out into its nested
// contexts first.
func (r *Runner) RunTestSuite(ctx context.Context, cfg *types.RunConfig) error {
	ctx, span := r.tracer.Start(ctx, fmt.Sprintf("suite %s", cfg.Context))
	defer span.End()

	if cfg.Context == types.NativeContext || cfg.IsSubprocess {
		before := *cfg.Stats
		err := r.runNative(ctx, cfg)
		r.journal = append(r.journal, JournalEntry{
			Context: cfg.Context, Target: cfg.Target, Before: before, After: *cfg.Stats,
		})
		return err
	}

	for _, name := range resolveContextsToRun(cfg) {
		if cfg.FailFast && cfg.Stats.Errors > 0 {
			r.log.Info("Skipping remaining nested contexts after failure", "context", name)
			break
		}
		before := *cfg.Stats
		err := r.dispatch(ctx, cfg, name)
		r.journal = append(r.journal, JournalEntry{
			Context: name, Target: cfg.Target, Before: before, After: *cfg.Stats,
		})
		if err != nil {
			return err
		}
	}
	return nil
}

// resolveContextsToRun expands a composite context into its nested
// contexts, in declared order.
func resolveContextsToRun(cfg *types.RunConfig) []string {
	if desc, ok := cfg.ContextCatalog[cfg.Context]; ok && len(desc.NestedContexts) > 0 {
		return desc.NestedContexts
	}
	return []string{cfg.Context}
}

// runNative discovers and executes test files in this process, one
// harness invocation per file, honoring limits and fail-fast. When
// running as a dispatched child it emits the stats sentinel as the last
// own output line.
func (r *Runner) runNative(ctx context.Context, cfg *types.RunConfig) error {
	files, err := discovery.Find(cfg.Target, cfg.TestFilePattern, cfg.FilterTokens, cfg.ContextCatalog.Names())
	if err != nil {
		return fmt.Errorf("discovering test files in %s: %w", cfg.Target, err)
	}

	h := r.newHarness(cfg, harnessInterpreter(cfg, cfg.Context), r.stdout, r.log)
	if len(files) > 0 {
		// A context with tests to run but no working interpreter must not
		// pass silently. An empty suite never touches the interpreter.
		if err := h.Init(ctx); err != nil {
			return &RuntimeError{Context: cfg.Context, Err: err}
		}
	}

	recorder := r.newRecorder(cfg, r.log)
	fragment, err := recorder.Start(cfg.Context)
	if err != nil {
		return fmt.Errorf("starting coverage: %w", err)
	}
	omit := coverage.BuildOmit(cfg)

	// Limits count files of this suite run, but the accumulator is
	// cumulative across the whole run tree. The offset anchors the
	// per-context limit at this run's starting total.
	offset := -cfg.Stats.FilesRun
	startTests := cfg.Stats.TestsRun

	for _, file := range files {
		// Fail-fast considers the cumulative totals, so errors carried in
		// from an earlier suite stop this one before its first file.
		if cfg.FailFast && cfg.Stats.Errors > 0 {
			r.log.Info("Aborting run on recorded failures",
				"context", cfg.Context, "errors", cfg.Stats.Errors)
			break
		}
		if cfg.GlobalLimit > 0 && cfg.Stats.FilesRun >= cfg.GlobalLimit {
			r.log.Debug("Global file limit reached", "limit", cfg.GlobalLimit)
			break
		}
		if cfg.Limit > 0 && cfg.Stats.FilesRun+offset >= cfg.Limit {
			r.log.Debug("Context file limit reached", "limit", cfg.Limit, "context", cfg.Context)
			break
		}

		res, err := r.runFile(ctx, cfg, h, file, fragment, omit)
		if err != nil {
			return err
		}
		cfg.Stats.AddFile(res)
		metrics.RecordFileRun(r.runID, cfg.Context)

		if cfg.FailFast && cfg.Stats.Errors > 0 {
			r.log.Info("Aborting run on first failure",
				"file", filepath.Base(file), "failures", res.Failures, "errors", res.Errors)
			break
		}
	}

	if err := recorder.Stop(cfg.Stats.TestsRun - startTests); err != nil {
		return fmt.Errorf("finalizing coverage: %w", err)
	}

	r.emitStats(cfg)
	return nil
}

func (r *Runner) runFile(ctx context.Context, cfg *types.RunConfig, h harness.Harness, file, fragment string, omit []string) (types.FileResult, error) {
	ctx, span := r.tracer.Start(ctx, fmt.Sprintf("file %s", filepath.Base(file)))
	defer span.End()

	sandbox, err := bootstrap.CreateTestRoot(cfg.OutputFolder, sandboxName(file), false)
	if err != nil {
		return types.FileResult{}, fmt.Errorf("preparing sandbox for %s: %w", file, err)
	}

	r.log.Info("Running test file", "file", filepath.Base(file), "context", cfg.Context)
	res, err := h.RunFile(ctx, file, harness.RunOptions{
		Sandbox:      sandbox,
		CoverageFile: fragment,
		CoverageOmit: omit,
	})
	if err != nil {
		return types.FileResult{}, &RuntimeError{
			Context: cfg.Context,
			File:    file,
			Err:     err,
		}
	}
	return res, nil
}

// emitStats prints the machine-readable stats sentinel. Only dispatched
// children emit it; the parent intercepts the line instead of showing it.
func (r *Runner) emitStats(cfg *types.RunConfig) {
	if !cfg.IsSubprocess {
		return
	}
	fmt.Fprintln(r.stdout, statsline.Encode(statsline.Payload{
		FilesRun: cfg.Stats.FilesRun,
		TestsRun: cfg.Stats.TestsRun,
		Errors:   cfg.Stats.Errors,
	}))
}

// sandboxName derives the per-file scratch folder name from the test
// file's base name.
func sandboxName(file string) string {
	return strings.TrimSuffix(filepath.Base(file), filepath.Ext(file))
}
