// Package statsline implements the cross-boundary statistics channel: a
// child process reports its counters to the parent as a single
// sentinel-wrapped JSON line on the shared stdout stream, immediately
// before exiting. The parent scans every received line; the one stats
// line is consumed and suppressed, everything else passes through.
package statsline

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/acarl005/stripansi"
)

const (
	openTag  = "<dcctest-stats>"
	closeTag = "</dcctest-stats>"
)

// Payload is the minimal wire record passed back across a process
// boundary: the child's cumulative counters at exit.
type Payload struct {
	FilesRun int `json:"files_run"`
	TestsRun int `json:"tests_run"`
	Errors   int `json:"errors"`
}

// Encode renders the payload as a complete, single output line.
func Encode(p Payload) string {
	body, _ := json.Marshal(p)
	return openTag + string(body) + closeTag
}

// TryParse scans a line for an embedded stats payload. It returns the
// payload and true when the sentinel pair is present and the enclosed
// JSON has exactly the three counter fields; on any other input it
// returns false and never an error. ANSI escapes are stripped first so
// colored child output cannot hide the sentinel.
func TryParse(line string) (Payload, bool) {
	line = stripansi.Strip(line)

	start := strings.Index(line, openTag)
	if start < 0 {
		return Payload{}, false
	}
	rest := line[start+len(openTag):]
	end := strings.Index(rest, closeTag)
	if end < 0 {
		return Payload{}, false
	}
	body := rest[:end]

	// Decode into pointer fields so a payload missing a counter is
	// rejected instead of silently defaulting to zero.
	var probe struct {
		FilesRun *int `json:"files_run"`
		TestsRun *int `json:"tests_run"`
		Errors   *int `json:"errors"`
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(body)))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&probe); err != nil {
		return Payload{}, false
	}
	if probe.FilesRun == nil || probe.TestsRun == nil || probe.Errors == nil {
		return Payload{}, false
	}
	return Payload{
		FilesRun: *probe.FilesRun,
		TestsRun: *probe.TestsRun,
		Errors:   *probe.Errors,
	}, true
}

// String implements fmt.Stringer for debug logging.
func (p Payload) String() string {
	return fmt.Sprintf("files_run=%d tests_run=%d errors=%d", p.FilesRun, p.TestsRun, p.Errors)
}
