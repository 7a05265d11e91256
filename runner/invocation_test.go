package runner

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vfx-infra/dcctest/types"
)

func TestClassifyHost(t *testing.T) {
	tests := []struct {
		context string
		want    hostKind
	}{
		{"maya", hostMayaGUI},
		{"maya2024", hostMayaGUI},
		{"mayapy", hostSelf},
		{"houdini", hostHoudiniGUI},
		{"houdini19.5", hostHoudiniGUI},
		{"hython", hostSelf},
		{"python3.x", hostSelf},
		{"nuke", hostSelf},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, classifyHost(tc.context), "context %s", tc.context)
	}
}

func TestBuildInvocationSelfExec(t *testing.T) {
	cfg := &types.RunConfig{SettingsPath: "/out/_dcc_settings"}

	argv := buildInvocation(cfg, "mayapy", "/x/mayapy", "/usr/local/bin/dcctest")
	assert.Equal(t, []string{"/usr/local/bin/dcctest"}, argv)

	argv = buildInvocation(cfg, "python3.x", "/usr/bin/python3", "/usr/local/bin/dcctest")
	assert.Equal(t, []string{"/usr/local/bin/dcctest"}, argv)
}

func TestBuildInvocationMayaGUI(t *testing.T) {
	cfg := &types.RunConfig{SettingsPath: "/out/_dcc_settings"}

	argv := buildInvocation(cfg, "maya", "/x/maya", "/usr/local/bin/dcctest")
	require.Len(t, argv, 3)
	assert.Equal(t, "/x/maya", argv[0])
	assert.Equal(t, "-command", argv[1])
	assert.Equal(t, "source dcctest_maya; dcctestSchedule();", argv[2])
}

func TestBuildInvocationHoudiniGUI(t *testing.T) {
	cfg := &types.RunConfig{SettingsPath: "/out/_dcc_settings"}

	argv := buildInvocation(cfg, "houdini", "/x/houdini", "/usr/local/bin/dcctest")
	assert.Equal(t, []string{
		"/x/houdini",
		filepath.Join("/out/_dcc_settings", "helpers", "dcctest_houdini.py"),
	}, argv)
}

func TestResolveExecutablePrefersVirtualenv(t *testing.T) {
	settings := t.TempDir()
	venvBin := filepath.Join(settings, "virtualenv_python3.x", venvBinDir())
	require.NoError(t, os.MkdirAll(venvBin, 0o755))
	venvPy := filepath.Join(venvBin, pythonBinary())
	require.NoError(t, os.WriteFile(venvPy, []byte("#!"), 0o755))

	cfg := &types.RunConfig{
		SettingsPath: settings,
		ContextCatalog: types.Catalog{
			"python3.x": {Executable: "/usr/bin/python3"},
		},
	}

	assert.Equal(t, venvPy, resolveExecutable(cfg, "python3.x"))
}

func TestResolveExecutableFallsBackToDeclared(t *testing.T) {
	cfg := &types.RunConfig{
		SettingsPath: t.TempDir(),
		ContextCatalog: types.Catalog{
			"python3.x": {Executable: "/usr/bin/python3"},
			"mayapy":    {Executable: "/x/mayapy"},
		},
	}

	// No venv provisioned for python3.x yet.
	assert.Equal(t, "/usr/bin/python3", resolveExecutable(cfg, "python3.x"))
	// Non-python contexts never get a venv.
	assert.Equal(t, "/x/mayapy", resolveExecutable(cfg, "mayapy"))
}

func TestHarnessInterpreterMapsGUIHostsToBatchSibling(t *testing.T) {
	cfg := &types.RunConfig{
		SettingsPath: t.TempDir(),
		ContextCatalog: types.Catalog{
			"maya2024":  {Executable: "/usr/autodesk/maya2024/bin/maya"},
			"houdini19": {Executable: "/opt/hfs19.5/bin/houdini"},
			"mayapy":    {Executable: "/usr/autodesk/maya2024/bin/mayapy"},
		},
	}

	// Per-file runs inside a GUI context use the batch interpreter that
	// ships next to the GUI executable, never the GUI executable itself.
	assert.Equal(t,
		filepath.Join("/usr/autodesk/maya2024/bin", "mayapy"+exeSuffix()),
		harnessInterpreter(cfg, "maya2024"))
	assert.Equal(t,
		filepath.Join("/opt/hfs19.5/bin", "hython"+exeSuffix()),
		harnessInterpreter(cfg, "houdini19"))

	// Interpreter-style contexts run under their own executable.
	assert.Equal(t, "/usr/autodesk/maya2024/bin/mayapy", harnessInterpreter(cfg, "mayapy"))
}

func TestResolveExecutableDefaultInterpreter(t *testing.T) {
	cfg := &types.RunConfig{ContextCatalog: types.Catalog{}}
	assert.Equal(t, defaultPython(), resolveExecutable(cfg, types.NativeContext))
}

func TestIsInteractiveMaya(t *testing.T) {
	assert.True(t, isInteractiveMaya("maya"))
	assert.True(t, isInteractiveMaya("Maya2024"))
	assert.False(t, isInteractiveMaya("mayapy"))
	assert.False(t, isInteractiveMaya("hython"))
	assert.False(t, isInteractiveMaya("python3.x"))
}
