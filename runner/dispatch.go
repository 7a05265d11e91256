package runner

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/vfx-infra/dcctest/metrics"
	"github.com/vfx-infra/dcctest/statsline"
	"github.com/vfx-infra/dcctest/types"
)

// dispatch runs the target's test suite for one non-native context in a
// child process. The child's configuration travels in the environment
// handoff; its cumulative counters come back through the stats sentinel
// on stdout and overwrite the parent's accumulator.
func (r *Runner) dispatch(ctx context.Context, cfg *types.RunConfig, contextName string) error {
	ctx, span := r.tracer.Start(ctx, fmt.Sprintf("dispatch %s", contextName))
	defer span.End()

	child := cfg.Clone()
	child.Context = contextName
	child.IsSubprocess = true

	executable := resolveExecutable(child, contextName)
	argv := buildInvocation(child, contextName, executable, r.selfExe)
	env, err := buildChildEnv(child, contextName, executable, r.selfExe)
	if err != nil {
		return &RuntimeError{Context: contextName, Err: err}
	}

	r.printBanner(contextName, cfg.Target)
	if cfg.DebugMode {
		r.log.Debug("Dispatching child process",
			"context", contextName,
			"argv", strings.Join(argv, " "),
			"executable", executable)
	}
	metrics.RecordDispatch(r.runID, contextName)

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = cfg.Cwd
	cmd.Env = env

	// One pipe for both streams keeps the child's output ordered the way
	// the child produced it.
	pr, pw, err := os.Pipe()
	if err != nil {
		return &RuntimeError{Context: contextName, Err: err}
	}
	cmd.Stdout = pw
	cmd.Stderr = pw

	if err := cmd.Start(); err != nil {
		pr.Close()
		pw.Close()
		return &RuntimeError{Context: contextName, Err: fmt.Errorf("starting child process: %w", err)}
	}
	pw.Close()

	var sawStats bool
	scanner := bufio.NewScanner(pr)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Text()
		if payload, ok := statsline.TryParse(line); ok {
			// The child started from our running totals, so its payload
			// is already cumulative.
			cfg.Stats.Replace(payload.FilesRun, payload.TestsRun, payload.Errors)
			sawStats = true
			continue
		}
		fmt.Fprintln(r.stdout, line)
		if r.fileLogger != nil {
			if err := r.fileLogger.LogLine(contextName, line); err != nil {
				r.log.Warn("Could not write child output to run log", "error", err)
			}
		}
	}
	scanErr := scanner.Err()
	pr.Close()

	waitErr := cmd.Wait()
	if scanErr != nil {
		// A lost drain also loses the stats line; report the real cause
		// instead of the missing sentinel.
		return &RuntimeError{Context: contextName,
			Err: fmt.Errorf("reading child output: %w", scanErr)}
	}
	if waitErr != nil {
		if isInteractiveMaya(contextName) {
			// Interactive Maya exits nonzero even after a clean session.
			// The stats sentinel is the source of truth for this host.
			r.log.Debug("Ignoring exit status of interactive Maya", "context", contextName)
		} else {
			return &RuntimeError{Context: contextName,
				Err: fmt.Errorf("child process failed: %w", waitErr)}
		}
	}

	if !sawStats {
		return &RuntimeError{Context: contextName,
			Err: fmt.Errorf("child process reported no stats")}
	}
	return nil
}

// isInteractiveMaya matches GUI Maya contexts, but not mayapy.
func isInteractiveMaya(contextName string) bool {
	name := strings.ToLower(contextName)
	return strings.Contains(name, "maya") && !strings.Contains(name, "mayapy")
}

func (r *Runner) printBanner(contextName, target string) {
	rule := strings.Repeat("/", 80)
	fmt.Fprintln(r.stdout, rule)
	fmt.Fprintf(r.stdout, "// running tests in context '%s'\n", contextName)
	fmt.Fprintf(r.stdout, "// target: %s\n", target)
	fmt.Fprintln(r.stdout, rule)
}
