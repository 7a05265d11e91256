// Package bootstrap prepares the on-disk environment of a run: the
// output folder, the shared settings area with its helper scripts and
// staged python modules, and the managed virtualenvs of python contexts.
package bootstrap

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/vfx-infra/dcctest/types"
)

// SettingsFolderName is the settings area inside the output folder.
const SettingsFolderName = "_dcc_settings"

// Prepare brings the run environment up to date. The root invocation
// provisions everything; dispatched children only verify that the area
// their parent prepared is still there.
func Prepare(cfg *types.RunConfig, log *slog.Logger) error {
	if cfg.IsSubprocess {
		if _, err := os.Stat(cfg.SettingsPath); err != nil {
			return fmt.Errorf("settings area missing (was the parent's output folder removed?): %w", err)
		}
		return nil
	}

	if err := ensureOutputFolder(cfg.OutputFolder); err != nil {
		return err
	}

	settingsPath, err := CreateTestRoot(cfg.OutputFolder, SettingsFolderName, true)
	if err != nil {
		return fmt.Errorf("creating settings area: %w", err)
	}
	cfg.SettingsPath = settingsPath

	if err := ensureHelpers(settingsPath); err != nil {
		return fmt.Errorf("staging helper scripts: %w", err)
	}
	ensureVirtualenvs(cfg, log)
	return nil
}

// ensureOutputFolder creates the output folder. Its parent must already
// exist: a misspelled path silently creating a deep tree has bitten
// enough people.
func ensureOutputFolder(outputFolder string) error {
	parent := filepath.Dir(outputFolder)
	if _, err := os.Stat(parent); err != nil {
		return fmt.Errorf("parent of output folder does not exist: %s", parent)
	}
	if err := os.MkdirAll(outputFolder, 0o755); err != nil {
		return fmt.Errorf("creating output folder: %w", err)
	}
	return nil
}

// CreateTestRoot returns a named scratch folder inside the output
// folder. Unless reuse is requested, existing content is wiped so every
// test file starts from a clean sandbox.
func CreateTestRoot(outputFolder, name string, reuse bool) (string, error) {
	path := filepath.Join(outputFolder, name)
	if !reuse {
		if err := os.RemoveAll(path); err != nil {
			return "", err
		}
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", err
	}
	return path, nil
}
