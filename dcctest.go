// Package dcctest wires one invocation of the test orchestrator
// together: environment preparation, suite execution, child recursion,
// coverage combination and the end-of-run reports.
package dcctest

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/vfx-infra/dcctest/bootstrap"
	"github.com/vfx-infra/dcctest/coverage"
	"github.com/vfx-infra/dcctest/logging"
	"github.com/vfx-infra/dcctest/metrics"
	"github.com/vfx-infra/dcctest/reporting"
	"github.com/vfx-infra/dcctest/runner"
	"github.com/vfx-infra/dcctest/types"
)

// Service executes one test run from preparation to reporting.
type Service struct {
	cfg     *types.RunConfig
	log     *slog.Logger
	version string
	runID   string
}

// New validates the pieces of a Service. The run identifier tags log
// directories and metrics; a dispatched child keeps its own id, the
// parent's output is correlated through the child's context name.
func New(cfg *types.RunConfig, log *slog.Logger, version string) (*Service, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}
	if cfg.Stats == nil {
		cfg.Stats = &types.RunStats{}
	}
	return &Service{
		cfg:     cfg,
		log:     log,
		version: version,
		runID:   uuid.New().String(),
	}, nil
}

// RunID returns the identifier of this run.
func (s *Service) RunID() string {
	return s.runID
}

// Stats returns the run's accumulator.
func (s *Service) Stats() types.RunStats {
	return *s.cfg.Stats
}

// Run executes the whole run tree. The root invocation runs its target,
// recurses into context-named child folders, combines coverage and
// prints the summary; a dispatched child only runs its own suite and
// reports through the stats sentinel.
func (s *Service) Run(ctx context.Context) error {
	start := time.Now()
	s.log.Debug("Starting test run",
		"run_id", s.runID,
		"target", s.cfg.Target,
		"context", s.cfg.Context,
		"subprocess", s.cfg.IsSubprocess)

	if err := bootstrap.Prepare(s.cfg, s.log); err != nil {
		return &runner.RuntimeError{Context: s.cfg.Context, Err: err}
	}

	var fileLogger *logging.FileLogger
	if !s.cfg.IsSubprocess {
		fl, err := logging.NewFileLogger(s.cfg.OutputFolder, s.runID)
		if err != nil {
			return &runner.RuntimeError{Context: s.cfg.Context, Err: err}
		}
		fileLogger = fl
		defer fileLogger.Close()
	}

	r, err := runner.NewRunner(s.log, s.runID, fileLogger)
	if err != nil {
		return &runner.RuntimeError{Context: s.cfg.Context, Err: err}
	}

	if err := r.RunTestSuite(ctx, s.cfg); err != nil {
		return err
	}
	if !s.cfg.IsSubprocess {
		if err := r.RunChildTestSuites(ctx, s.cfg); err != nil {
			return err
		}
		s.finishRun(r, fileLogger, time.Since(start))
	}

	s.log.Info("Test run completed",
		"run_id", s.runID,
		"files_run", s.cfg.Stats.FilesRun,
		"tests_run", s.cfg.Stats.TestsRun,
		"errors", s.cfg.Stats.Errors)

	if !s.cfg.IsSubprocess && s.cfg.Stats.Errors > 0 {
		return NewTestFailureError(
			fmt.Sprintf("%d test failures or errors across %d files",
				s.cfg.Stats.Errors, s.cfg.Stats.FilesRun))
	}
	return nil
}

// finishRun renders the reports of a completed root run and emits the
// run metrics. Reporting problems are logged, never fatal: the stats
// verdict stands regardless.
func (s *Service) finishRun(r *runner.Runner, fileLogger *logging.FileLogger, duration time.Duration) {
	report := &reporting.RunReport{
		RunID:    s.runID,
		Version:  s.version,
		Duration: duration,
		Stats:    *s.cfg.Stats,
	}
	for _, entry := range r.Journal() {
		report.Suites = append(report.Suites, reporting.SuiteResult{
			Context:  entry.Context,
			Target:   entry.Target,
			FilesRun: entry.After.FilesRun - entry.Before.FilesRun,
			TestsRun: entry.After.TestsRun - entry.Before.TestsRun,
			Errors:   entry.After.Errors - entry.Before.Errors,
		})
	}
	reporting.WriteSummaryTable(report, os.Stdout)
	if path, err := reporting.WriteHTMLReport(report, fileLogger.LogDir()); err != nil {
		s.log.Warn("Could not write HTML run report", "error", err)
	} else {
		s.log.Info("HTML run report written", "path", path)
	}

	omit := coverage.BuildOmit(s.cfg)
	profile, err := coverage.Combine(s.cfg.OutputFolder, omit, s.log)
	if err != nil {
		s.log.Warn("Could not combine coverage data", "error", err)
	} else if profile != nil {
		coverage.WriteTextReport(profile, s.cfg.Cwd, os.Stdout)
		if path, err := coverage.WriteHTMLReport(profile, s.cfg.OutputFolder, s.cfg.Cwd); err != nil {
			s.log.Warn("Could not write HTML coverage report", "error", err)
		} else {
			s.log.Info("HTML coverage report written", "path", path)
		}
	}

	result := "pass"
	if s.cfg.Stats.Errors > 0 {
		result = "fail"
	}
	metrics.RecordRun(s.runID, result, s.cfg.Stats.TestsRun, s.cfg.Stats.Errors, duration)
}
