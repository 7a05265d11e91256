package runner

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/vfx-infra/dcctest/types"
)

// hostKind classifies a context by the process that must host its test
// run.
type hostKind int

const (
	// hostSelf re-executes this binary: the child reads its
	// configuration from the environment handoff and runs natively.
	hostSelf hostKind = iota

	// hostMayaGUI launches interactive Maya, which schedules the run
	// through the staged MEL helper.
	hostMayaGUI

	// hostHoudiniGUI launches interactive Houdini with the staged
	// startup script.
	hostHoudiniGUI
)

func classifyHost(contextName string) hostKind {
	name := strings.ToLower(contextName)
	switch {
	case strings.Contains(name, "maya") && !strings.Contains(name, "mayapy"):
		return hostMayaGUI
	case strings.Contains(name, "houdini") && !strings.Contains(name, "hython"):
		return hostHoudiniGUI
	default:
		return hostSelf
	}
}

// buildInvocation assembles the child's argv. Interpreter-style contexts
// (python, mayapy, hython and anything unrecognized) re-execute this
// binary; GUI hosts get launched with their own trigger mechanism and
// re-execute the binary from inside the session via the staged helper.
func buildInvocation(cfg *types.RunConfig, contextName, executable, selfExe string) []string {
	switch classifyHost(contextName) {
	case hostMayaGUI:
		return []string{executable, "-command", "source dcctest_maya; dcctestSchedule();"}
	case hostHoudiniGUI:
		return []string{executable, filepath.Join(helpersDir(cfg), "dcctest_houdini.py")}
	default:
		return []string{selfExe}
	}
}

// harnessInterpreter returns the interpreter that executes individual
// test files. GUI hosts are launched through their own executable, but
// the files themselves always run under the batch interpreter shipped
// next to it (mayapy, hython); a GUI session re-entering this binary
// would otherwise spawn another full GUI per file.
func harnessInterpreter(cfg *types.RunConfig, contextName string) string {
	exe := resolveExecutable(cfg, contextName)
	switch classifyHost(contextName) {
	case hostMayaGUI:
		return filepath.Join(filepath.Dir(exe), "mayapy"+exeSuffix())
	case hostHoudiniGUI:
		return filepath.Join(filepath.Dir(exe), "hython"+exeSuffix())
	default:
		return exe
	}
}

// resolveExecutable returns the launch executable for a context,
// preferring the managed virtualenv over the declared executable so
// installed requirements are actually importable.
func resolveExecutable(cfg *types.RunConfig, contextName string) string {
	if venv := venvPython(cfg.SettingsPath, contextName); venv != "" {
		return venv
	}
	if desc, ok := cfg.ContextCatalog[contextName]; ok && desc.Executable != "" {
		return desc.Executable
	}
	return defaultPython()
}

// venvPython returns the python of the context's managed virtualenv, or
// "" when none has been provisioned.
func venvPython(settingsPath, contextName string) string {
	if settingsPath == "" || !types.IsPythonLike(contextName) {
		return ""
	}
	candidate := filepath.Join(settingsPath, "virtualenv_"+contextName, venvBinDir(), pythonBinary())
	if _, err := os.Stat(candidate); err != nil {
		return ""
	}
	return candidate
}

func helpersDir(cfg *types.RunConfig) string {
	return filepath.Join(cfg.SettingsPath, "helpers")
}

func venvBinDir() string {
	if runtime.GOOS == "windows" {
		return "Scripts"
	}
	return "bin"
}

func exeSuffix() string {
	if runtime.GOOS == "windows" {
		return ".exe"
	}
	return ""
}

func pythonBinary() string {
	if runtime.GOOS == "windows" {
		return "python.exe"
	}
	return "python"
}

func defaultPython() string {
	if runtime.GOOS == "windows" {
		return "python.exe"
	}
	return "python3"
}
