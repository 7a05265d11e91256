package bootstrap

import (
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"

	"github.com/vfx-infra/dcctest/types"
)

// ensureVirtualenvs provisions a managed virtualenv for every declared
// python context that has its own interpreter. Provisioning failures
// are logged and tolerated: the context then falls back to its bare
// interpreter and coverage measurement simply stays off.
func ensureVirtualenvs(cfg *types.RunConfig, log *slog.Logger) {
	for _, name := range cfg.ContextCatalog.Names() {
		if !types.IsPythonLike(name) {
			continue
		}
		desc := cfg.ContextCatalog[name]
		if desc.Executable == "" {
			continue
		}
		if err := ensureVirtualenv(cfg, name, desc, log); err != nil {
			log.Warn("Could not provision virtualenv, falling back to bare interpreter",
				"context", name, "error", err)
		}
	}
}

func ensureVirtualenv(cfg *types.RunConfig, name string, desc types.ContextDescriptor, log *slog.Logger) error {
	dir := filepath.Join(cfg.SettingsPath, "virtualenv_"+name)
	if _, err := os.Stat(dir); err == nil {
		return nil
	}

	log.Info("Provisioning virtualenv", "context", name, "dir", dir)
	if err := streamCommand(desc.Executable, "-m", "venv", dir); err != nil {
		// A half-built venv would shadow the bare interpreter.
		os.RemoveAll(dir)
		return err
	}

	pip := []string{"-m", "pip", "install", "coverage"}
	if desc.Requirements != "" {
		pip = []string{"-m", "pip", "install", "-r", desc.Requirements}
	}
	python := filepath.Join(dir, venvBinDir(), pythonBinary())
	if err := streamCommand(python, pip...); err != nil {
		os.RemoveAll(dir)
		return err
	}
	return nil
}

func streamCommand(executable string, args ...string) error {
	cmd := exec.Command(executable, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	return cmd.Run()
}
