package coverage

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/vfx-infra/dcctest/types"
)

func omitConfig() *types.RunConfig {
	return &types.RunConfig{
		Context:         "mayapy",
		OutputFolder:    "/jobs/show/tests/.output",
		TestFilePattern: "test*.py",
		OmitCoverage:    []string{"*/legacy/*"},
		ContextCatalog: types.Catalog{
			"mayapy": {
				Executable:   "/usr/autodesk/maya2024/bin/mayapy",
				OmitCoverage: []string{"*/maya_shims/*"},
			},
		},
	}
}

func TestBuildOmit(t *testing.T) {
	omit := BuildOmit(omitConfig())

	assert.Contains(t, omit, "/jobs/show/tests/.output/*")
	assert.Contains(t, omit, "*/legacy/*")
	assert.Contains(t, omit, "*/maya_shims/*")
	// The host's install tree sits two levels above its executable.
	assert.Contains(t, omit, "/usr/autodesk/maya2024/*")
	assert.Contains(t, omit, "*/test*.py")
}

func TestBuildOmitKeepsTestFilesWhenAsked(t *testing.T) {
	cfg := omitConfig()
	cfg.IncludeTestFiles = true

	omit := BuildOmit(cfg)
	assert.NotContains(t, omit, "*/test*.py")
}

func TestBuildOmitNoHostRootForPlainPython(t *testing.T) {
	cfg := omitConfig()
	cfg.Context = "python3.x"
	cfg.ContextCatalog = types.Catalog{
		"python3.x": {Executable: "/usr/local/python311/bin/python"},
	}

	omit := BuildOmit(cfg)
	assert.NotContains(t, omit, "/usr/local/python311/*")
}

func TestOmitted(t *testing.T) {
	omit := []string{"/out/*", "*/test*.py", "*/vendor/*"}

	assert.True(t, Omitted("/out/deep/file.py", omit))
	assert.True(t, Omitted("/src/test_rig.py", omit))
	assert.True(t, Omitted("/src/vendor/lib.py", omit))
	assert.False(t, Omitted("/src/rig.py", omit))
	assert.False(t, Omitted("/outofband/file.py", omit))
}

func TestWriteTextReportRendersTotals(t *testing.T) {
	p := &Profile{Files: map[string]FileProfile{
		"/src/rig.py": {Statements: 4, Lines: []int{1, 2}},
	}}

	var buf bytes.Buffer
	WriteTextReport(p, "/src", &buf)

	out := buf.String()
	assert.Contains(t, out, "rig.py")
	assert.Contains(t, out, "TOTAL")
	assert.Contains(t, out, "50%")
}
