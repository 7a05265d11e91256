package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/vfx-infra/dcctest/statsline"
	"github.com/vfx-infra/dcctest/types"
)

// EnvSelfExe tells helper scripts inside a GUI host where to find this
// binary for the actual suite run.
const EnvSelfExe = "DCCTEST_BIN"

// buildChildEnv assembles the child process environment: the serialized
// configuration handoff, the python search path, virtualenv activation,
// and per-host preference isolation.
func buildChildEnv(cfg *types.RunConfig, contextName, executable, selfExe string) ([]string, error) {
	handoff, err := statsline.EncodeHandoff(cfg)
	if err != nil {
		return nil, fmt.Errorf("serializing child configuration: %w", err)
	}

	env := environMap()
	env[statsline.EnvVar] = handoff
	env[EnvSelfExe] = selfExe
	env["PYTHONPATH"] = buildPythonPath(cfg, contextName)

	activateVirtualenv(env, executable)

	name := strings.ToLower(contextName)
	switch {
	case strings.Contains(name, "maya"):
		if err := patchMayaEnv(env, cfg, contextName); err != nil {
			return nil, err
		}
	case strings.Contains(name, "houdini") || strings.Contains(name, "hython"):
		if err := patchHoudiniEnv(env, cfg, contextName); err != nil {
			return nil, err
		}
	}

	return flattenEnv(env), nil
}

// buildPythonPath joins the search path a child needs, in resolution
// order: the staged modules of the settings area, the run's working
// directory, then the config-level and context-level extensions.
func buildPythonPath(cfg *types.RunConfig, contextName string) string {
	paths := []string{
		filepath.Join(cfg.SettingsPath, "PYTHONPATH"),
		cfg.Cwd,
	}
	if cfg.PythonPath != "" {
		paths = append(paths, cfg.PythonPath)
	}
	if desc, ok := cfg.ContextCatalog[contextName]; ok && desc.PythonPath != "" {
		paths = append(paths, desc.PythonPath)
	}
	return strings.Join(paths, string(os.PathListSeparator))
}

// activateVirtualenv mirrors what a venv's activate script does when the
// resolved interpreter lives inside one.
func activateVirtualenv(env map[string]string, executable string) {
	binDir := filepath.Dir(executable)
	base := strings.ToLower(filepath.Base(binDir))
	if base != "bin" && base != "scripts" {
		return
	}
	if !strings.HasPrefix(strings.ToLower(filepath.Base(executable)), "python") {
		return
	}
	env["VIRTUAL_ENV"] = filepath.Dir(binDir)
	env["PATH"] = binDir + string(os.PathListSeparator) + env["PATH"]
	delete(env, "PYTHONHOME")
}

// patchMayaEnv isolates the child from the user's Maya preferences and
// plugins, and makes the staged MEL helper resolvable.
func patchMayaEnv(env map[string]string, cfg *types.RunConfig, contextName string) error {
	prefDir, err := hostPrefDir(cfg, contextName)
	if err != nil {
		return err
	}
	env["MAYA_APP_DIR"] = prefDir
	env["MAYA_SCRIPT_PATH"] = prependPath(filepath.Join(cfg.SettingsPath, "helpers"), env["MAYA_SCRIPT_PATH"])
	delete(env, "MAYA_PLUG_IN_PATH")
	delete(env, "MAYA_MODULE_PATH")
	return nil
}

// patchHoudiniEnv isolates the child from the user's Houdini preferences.
func patchHoudiniEnv(env map[string]string, cfg *types.RunConfig, contextName string) error {
	prefDir, err := hostPrefDir(cfg, contextName)
	if err != nil {
		return err
	}
	env["HOUDINI_USER_PREF_DIR"] = prefDir
	delete(env, "HSITE")
	return nil
}

// hostPrefDir creates the per-context preference area inside the
// settings folder. The context name and version keep parallel installs
// of the same host apart.
func hostPrefDir(cfg *types.RunConfig, contextName string) (string, error) {
	version := cfg.ContextCatalog[contextName].Version
	dir := filepath.Join(cfg.SettingsPath, fmt.Sprintf("%s.dcctest.%s", contextName, version))
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating host preference dir: %w", err)
	}
	return dir, nil
}

func prependPath(entry, existing string) string {
	if existing == "" {
		return entry
	}
	return entry + string(os.PathListSeparator) + existing
}

func environMap() map[string]string {
	env := map[string]string{}
	for _, kv := range os.Environ() {
		if key, value, ok := strings.Cut(kv, "="); ok {
			env[key] = value
		}
	}
	return env
}

func flattenEnv(env map[string]string) []string {
	flat := make([]string, 0, len(env))
	for key, value := range env {
		flat = append(flat, key+"="+value)
	}
	return flat
}
