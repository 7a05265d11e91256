package bootstrap

import (
	_ "embed"
	"os"
	"path/filepath"
)

// The helper scripts staged into the settings area. run_file.py is the
// per-file shim the harness drives; the boot module and the host
// scripts bridge GUI sessions back to this binary.
var (
	//go:embed scripts/run_file.py
	runFileScript []byte

	//go:embed scripts/dcctest_boot.py
	bootModule []byte

	//go:embed scripts/dcctest_maya.mel
	mayaHelper []byte

	//go:embed scripts/dcctest_houdini.py
	houdiniHelper []byte
)

// StagedPythonPathDir is the settings subfolder prepended to every
// child's PYTHONPATH.
const StagedPythonPathDir = "PYTHONPATH"

func ensureHelpers(settingsPath string) error {
	helpers := filepath.Join(settingsPath, "helpers")
	staged := filepath.Join(settingsPath, StagedPythonPathDir)
	for _, dir := range []string{helpers, staged} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}

	files := map[string][]byte{
		filepath.Join(helpers, "run_file.py"):        runFileScript,
		filepath.Join(helpers, "dcctest_maya.mel"):   mayaHelper,
		filepath.Join(helpers, "dcctest_houdini.py"): houdiniHelper,
		filepath.Join(staged, "dcctest_boot.py"):     bootModule,
	}
	for path, content := range files {
		if err := os.WriteFile(path, content, 0o644); err != nil {
			return err
		}
	}
	return nil
}
