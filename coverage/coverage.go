// Package coverage collects, merges and reports per-context coverage
// fragments. The runner shim appends line data for every executed test
// file into a context-suffixed fragment; after all contexts finish, the
// fragments are combined into a single profile and rendered as a table
// and an HTML report.
package coverage

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// DataFileName is the combined profile's file name, kept compatible with
// the convention of the Python coverage tooling the shim drives.
const DataFileName = ".coverage"

// FileProfile holds the measured lines of one source file.
type FileProfile struct {
	// Statements is the number of executable lines in the file.
	Statements int `json:"statements"`

	// Lines lists the line numbers that were executed.
	Lines []int `json:"lines"`
}

// Percent returns the covered share of the file's statements.
func (f FileProfile) Percent() float64 {
	if f.Statements == 0 {
		return 100.0
	}
	return float64(len(f.Lines)) / float64(f.Statements) * 100.0
}

// Profile maps source file paths to their measured lines.
type Profile struct {
	Files map[string]FileProfile `json:"files"`
}

// ReadProfile loads a fragment or combined data file.
func ReadProfile(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading coverage data %s: %w", path, err)
	}
	var p Profile
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("parsing coverage data %s: %w", path, err)
	}
	if p.Files == nil {
		p.Files = map[string]FileProfile{}
	}
	return &p, nil
}

// Write persists the profile.
func (p *Profile) Write(path string) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// Merge folds other into p. Lines are unioned per file; the statement
// count keeps the larger value in case one fragment saw a newer revision
// of the file.
func (p *Profile) Merge(other *Profile) {
	if p.Files == nil {
		p.Files = map[string]FileProfile{}
	}
	for path, incoming := range other.Files {
		current, ok := p.Files[path]
		if !ok {
			p.Files[path] = incoming
			continue
		}
		seen := make(map[int]struct{}, len(current.Lines)+len(incoming.Lines))
		for _, l := range current.Lines {
			seen[l] = struct{}{}
		}
		for _, l := range incoming.Lines {
			seen[l] = struct{}{}
		}
		merged := make([]int, 0, len(seen))
		for l := range seen {
			merged = append(merged, l)
		}
		sort.Ints(merged)
		if incoming.Statements > current.Statements {
			current.Statements = incoming.Statements
		}
		current.Lines = merged
		p.Files[path] = current
	}
}

// Totals returns the aggregate statement and covered-line counts.
func (p *Profile) Totals() (statements, covered int) {
	for _, f := range p.Files {
		statements += f.Statements
		covered += len(f.Lines)
	}
	return statements, covered
}

// SortedPaths returns the profile's file paths in lexical order.
func (p *Profile) SortedPaths() []string {
	paths := make([]string, 0, len(p.Files))
	for path := range p.Files {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return paths
}

// FragmentPath returns the per-context data file next to the combined
// profile.
func FragmentPath(dir, context string) string {
	return filepath.Join(dir, DataFileName+"."+context)
}
