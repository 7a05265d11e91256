package runner

import (
	"context"
	"os"
	"path/filepath"
	"sort"

	"github.com/vfx-infra/dcctest/types"
)

// RunChildTestSuites recurses into the target's context-named
// subfolders, running each as its declared context. Only the root
// invocation does this; dispatched children never recurse.
//
// Children run sequentially, python contexts first, then the rest in
// alphabetical order. Every child shares the parent's accumulator, so
// the totals roll forward folder by folder.
func (r *Runner) RunChildTestSuites(ctx context.Context, cfg *types.RunConfig) error {
	children, err := childContextFolders(cfg)
	if err != nil {
		return err
	}
	for _, name := range children {
		child := cfg.ChildFor(filepath.Join(cfg.Target, name), name)
		if err := r.RunTestSuite(ctx, child); err != nil {
			return err
		}
		if child.FailFast && child.Stats.Errors > 0 {
			r.log.Info("Skipping remaining child suites after failure", "context", name)
			break
		}
	}
	return nil
}

// childContextFolders lists the target's direct subfolders whose names
// are declared contexts.
func childContextFolders(cfg *types.RunConfig) ([]string, error) {
	entries, err := os.ReadDir(cfg.Target)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() && cfg.ContextCatalog.Has(entry.Name()) {
			names = append(names, entry.Name())
		}
	}
	sort.Strings(names)
	// Python suites establish the baseline before any host application
	// gets involved.
	sort.SliceStable(names, func(i, j int) bool {
		return types.IsPythonLike(names[i]) && !types.IsPythonLike(names[j])
	})
	return names, nil
}
