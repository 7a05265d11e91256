package coverage

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))
}

func TestProfileMergeUnionsLines(t *testing.T) {
	a := &Profile{Files: map[string]FileProfile{
		"/src/rig.py": {Statements: 10, Lines: []int{1, 2, 3}},
	}}
	b := &Profile{Files: map[string]FileProfile{
		"/src/rig.py":    {Statements: 10, Lines: []int{3, 4}},
		"/src/shader.py": {Statements: 5, Lines: []int{1}},
	}}

	a.Merge(b)

	assert.Equal(t, []int{1, 2, 3, 4}, a.Files["/src/rig.py"].Lines)
	assert.Equal(t, 10, a.Files["/src/rig.py"].Statements)
	assert.Equal(t, []int{1}, a.Files["/src/shader.py"].Lines)
}

func TestProfileMergeKeepsLargerStatementCount(t *testing.T) {
	a := &Profile{Files: map[string]FileProfile{
		"/src/rig.py": {Statements: 10, Lines: []int{1}},
	}}
	b := &Profile{Files: map[string]FileProfile{
		"/src/rig.py": {Statements: 12, Lines: []int{2}},
	}}

	a.Merge(b)
	assert.Equal(t, 12, a.Files["/src/rig.py"].Statements)
}

func TestProfileTotalsAndPercent(t *testing.T) {
	p := &Profile{Files: map[string]FileProfile{
		"/a.py": {Statements: 8, Lines: []int{1, 2, 3, 4}},
		"/b.py": {Statements: 2, Lines: []int{1, 2}},
	}}

	statements, covered := p.Totals()
	assert.Equal(t, 10, statements)
	assert.Equal(t, 6, covered)

	assert.InDelta(t, 50.0, p.Files["/a.py"].Percent(), 0.001)
	assert.InDelta(t, 100.0, FileProfile{}.Percent(), 0.001)
}

func TestProfileReadWriteRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, DataFileName)
	p := &Profile{Files: map[string]FileProfile{
		"/src/rig.py": {Statements: 3, Lines: []int{1, 3}},
	}}

	require.NoError(t, p.Write(path))
	loaded, err := ReadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, p.Files, loaded.Files)
}

func TestCombineMergesAndRemovesFragments(t *testing.T) {
	dir := t.TempDir()
	frag1 := &Profile{Files: map[string]FileProfile{
		"/src/rig.py": {Statements: 4, Lines: []int{1, 2}},
	}}
	frag2 := &Profile{Files: map[string]FileProfile{
		"/src/rig.py": {Statements: 4, Lines: []int{3}},
	}}
	require.NoError(t, frag1.Write(FragmentPath(dir, "python3.x")))
	require.NoError(t, frag2.Write(FragmentPath(dir, "mayapy")))

	combined, err := Combine(dir, nil, quietLogger())
	require.NoError(t, err)
	require.NotNil(t, combined)

	assert.Equal(t, []int{1, 2, 3}, combined.Files["/src/rig.py"].Lines)
	assert.FileExists(t, filepath.Join(dir, DataFileName))
	assert.NoFileExists(t, FragmentPath(dir, "python3.x"))
	assert.NoFileExists(t, FragmentPath(dir, "mayapy"))
}

func TestCombineWithoutFragmentsIsNotAnError(t *testing.T) {
	combined, err := Combine(t.TempDir(), nil, quietLogger())
	require.NoError(t, err)
	assert.Nil(t, combined)
}

func TestCombineAppliesOmit(t *testing.T) {
	dir := t.TempDir()
	frag := &Profile{Files: map[string]FileProfile{
		"/src/rig.py":           {Statements: 4, Lines: []int{1}},
		"/src/vendor/thirdp.py": {Statements: 9, Lines: []int{1}},
	}}
	require.NoError(t, frag.Write(FragmentPath(dir, "python3.x")))

	combined, err := Combine(dir, []string{"/src/vendor/*"}, quietLogger())
	require.NoError(t, err)
	assert.Contains(t, combined.Files, "/src/rig.py")
	assert.NotContains(t, combined.Files, "/src/vendor/thirdp.py")
}

func TestFileRecorderDiscardsEmptyRuns(t *testing.T) {
	dir := t.TempDir()
	r := &FileRecorder{Dir: dir, Log: quietLogger()}

	fragment, err := r.Start("python3.x")
	require.NoError(t, err)
	assert.Equal(t, FragmentPath(dir, "python3.x"), fragment)

	// Simulate the shim writing data, then a run with zero tests.
	require.NoError(t, os.WriteFile(fragment, []byte(`{"files":{}}`), 0o644))
	require.NoError(t, r.Stop(0))
	assert.NoFileExists(t, fragment)
}

func TestFileRecorderKeepsFragmentWithTests(t *testing.T) {
	dir := t.TempDir()
	r := &FileRecorder{Dir: dir, Log: quietLogger()}

	fragment, err := r.Start("python3.x")
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(fragment, []byte(`{"files":{}}`), 0o644))

	require.NoError(t, r.Stop(5))
	assert.FileExists(t, fragment)
}

func TestFileRecorderStartRemovesStaleFragment(t *testing.T) {
	dir := t.TempDir()
	stale := FragmentPath(dir, "python3.x")
	require.NoError(t, os.WriteFile(stale, []byte(`{"files":{}}`), 0o644))

	r := &FileRecorder{Dir: dir, Log: quietLogger()}
	_, err := r.Start("python3.x")
	require.NoError(t, err)
	assert.NoFileExists(t, stale)
}
