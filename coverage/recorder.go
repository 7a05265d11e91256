package coverage

import (
	"log/slog"
	"os"
	"path/filepath"
)

// Recorder manages one context's coverage fragment across a suite run.
type Recorder interface {
	// Start prepares measurement and returns the fragment path the
	// harness must point the shim at.
	Start(context string) (string, error)

	// Stop finalizes the fragment. If the suite ran no tests the
	// fragment is discarded so an empty run cannot dilute the combined
	// profile.
	Stop(testsRun int) error
}

// FileRecorder records into a context-suffixed data file in a fixed
// directory, normally the working directory the run started from.
type FileRecorder struct {
	Dir string
	Log *slog.Logger

	fragment string
}

var _ Recorder = (*FileRecorder)(nil)

func (r *FileRecorder) Start(context string) (string, error) {
	r.fragment = FragmentPath(r.Dir, context)
	// A stale fragment from an aborted run would merge into this one.
	if err := os.Remove(r.fragment); err != nil && !os.IsNotExist(err) {
		return "", err
	}
	return r.fragment, nil
}

func (r *FileRecorder) Stop(testsRun int) error {
	if r.fragment == "" {
		return nil
	}
	if testsRun > 0 {
		r.Log.Debug("coverage fragment kept",
			"fragment", filepath.Base(r.fragment), "tests_run", testsRun)
		return nil
	}
	if err := os.Remove(r.fragment); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// NullRecorder satisfies Recorder without measuring anything. Used when
// coverage is switched off for a context.
type NullRecorder struct{}

func (NullRecorder) Start(string) (string, error) { return "", nil }
func (NullRecorder) Stop(int) error               { return nil }
