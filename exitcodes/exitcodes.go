// Package exitcodes defines the standard exit codes used by dcctest.
package exitcodes

// Exit codes reported by the root invocation:
//
// * Success (0): every discovered test passed (or nothing matched)
// * TestFailure (1): one or more test failures or errors were counted
// * RuntimeErr (2): configuration or dispatch failure before/while running
//
// A dispatched child reports Success even when tests failed; its counters
// travel back to the parent on the stats line and the root maps them to
// the final exit code exactly once.
const (
	Success     = 0
	TestFailure = 1
	RuntimeErr  = 2
)
