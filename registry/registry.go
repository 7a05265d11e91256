// Package registry loads the context catalog and the remaining file-borne
// settings from a dcctest config file, applies defaults, and resolves
// which context a target folder belongs to.
//
// The config file is UTF-8 JSON that additionally permits #-introduced
// end-of-line comments; comments are stripped before parsing. A sibling
// YAML format is accepted when the JSON file is absent.
package registry

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vfx-infra/dcctest/types"
)

// DefaultTestFilePattern is the required discovery glob when the config
// file doesn't override it.
const DefaultTestFilePattern = "test*.py"

// DefaultOutputFolder is resolved relative to the config file location
// (or the working directory when no config exists).
const DefaultOutputFolder = "./.output"

// fileConfig mirrors the user-editable part of a config file.
type fileConfig struct {
	ContextDetails   types.Catalog `json:"context_details" yaml:"context_details"`
	TestFilePattern  string        `json:"test_file_pattern" yaml:"test_file_pattern"`
	OutputFolder     string        `json:"output_folder" yaml:"output_folder"`
	IncludeTestFiles bool          `json:"include_test_files" yaml:"include_test_files"`
	OmitCoverage     []string      `json:"omit_coverage" yaml:"omit_coverage"`
	PythonPath       string        `json:"PYTHONPATH" yaml:"PYTHONPATH"`
	DebugMode        any           `json:"debug_mode" yaml:"debug_mode"`
}

// LoadInto reads the config file into cfg and applies defaults.
//
// An explicit path that doesn't exist is a fatal configuration error.
// Without an explicit path the loader falls back to ./.config, then
// ../.config, then the .yaml siblings of both; a completely absent config
// is legal and yields an empty catalog.
func LoadInto(cfg *types.RunConfig, explicitPath string, log *slog.Logger) error {
	path, err := locateConfig(explicitPath)
	if err != nil {
		return err
	}

	if path != "" {
		fc, err := readConfig(path, log)
		if err != nil {
			return err
		}
		applyFileConfig(cfg, fc)
		cfg.ConfigPath, err = filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("resolving config path: %w", err)
		}
	}

	return applyDefaults(cfg)
}

// locateConfig resolves which config file to read, if any.
func locateConfig(explicitPath string) (string, error) {
	if explicitPath != "" {
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file does not exist: %s", explicitPath)
		}
		return explicitPath, nil
	}
	for _, candidate := range []string{"./.config", "../.config", "./.config.yaml", "../.config.yaml"} {
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
	}
	return "", nil
}

// readConfig parses one config file in either flavor.
func readConfig(path string, log *slog.Logger) (*fileConfig, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}

	if strings.HasSuffix(path, ".yaml") || strings.HasSuffix(path, ".yml") {
		return readYAMLConfig(path, content)
	}
	return readJSONConfig(path, content, log)
}

// readJSONConfig strips comments, validates against the embedded schema
// and decodes. On malformed JSON it logs the offending line number and
// the comment-stripped source with line numbers before failing.
func readJSONConfig(path string, content []byte, log *slog.Logger) (*fileConfig, error) {
	lines := stripComments(string(content))
	stripped := []byte(strings.Join(lines, "\n"))

	var fc fileConfig
	if err := json.Unmarshal(stripped, &fc); err != nil {
		logJSONError(log, path, err, stripped, lines)
		return nil, fmt.Errorf("config %s is not valid JSON: %w", path, err)
	}
	if err := validateConfig(stripped); err != nil {
		return nil, fmt.Errorf("config %s: %w", path, err)
	}
	return &fc, nil
}

func readYAMLConfig(path string, content []byte) (*fileConfig, error) {
	var fc fileConfig
	dec := yaml.NewDecoder(strings.NewReader(string(content)))
	dec.KnownFields(true)
	if err := dec.Decode(&fc); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("config %s is not valid YAML: %w", path, err)
	}
	return &fc, nil
}

// stripComments removes #-introduced end-of-line comments and blank
// lines, preserving the relative order of the remaining lines.
func stripComments(content string) []string {
	var lines []string
	for _, line := range strings.Split(content, "\n") {
		relevant, _, _ := strings.Cut(line, "#")
		if strings.TrimSpace(relevant) != "" {
			lines = append(lines, relevant)
		}
	}
	return lines
}

// logJSONError reports a malformed config with the offending line number
// and the comment-stripped source reproduced with line numbers.
func logJSONError(log *slog.Logger, path string, err error, stripped []byte, lines []string) {
	lineNbr := extractLineNumber(err, stripped)

	log.Error(strings.Repeat("=", 80))
	log.Error("= config error " + strings.Repeat("=", 65))
	log.Error("this config file does not contain valid JSON:")
	log.Error(fmt.Sprintf("    %q", path))
	log.Error(fmt.Sprintf("error in line %d: %v", lineNbr, err))
	log.Error("faulty JSON (after stripping comments):")
	for index, line := range lines {
		log.Error(fmt.Sprintf("%4d  %s", index+1, line))
	}
	log.Error(strings.Repeat("=", 80))
}

// extractLineNumber recovers the offending line from the JSON decoder's
// byte offset, falling back to -1 when the error carries none.
func extractLineNumber(err error, source []byte) int {
	var offset int64 = -1
	var syntaxErr *json.SyntaxError
	var typeErr *json.UnmarshalTypeError
	switch {
	case errors.As(err, &syntaxErr):
		offset = syntaxErr.Offset
	case errors.As(err, &typeErr):
		offset = typeErr.Offset
	default:
		return -1
	}
	if offset < 0 || offset > int64(len(source)) {
		return -1
	}
	return 1 + strings.Count(string(source[:offset]), "\n")
}

// applyFileConfig copies the file-borne settings onto the run config.
func applyFileConfig(cfg *types.RunConfig, fc *fileConfig) {
	if fc.ContextDetails != nil {
		cfg.ContextCatalog = fc.ContextDetails
	}
	if fc.TestFilePattern != "" {
		cfg.TestFilePattern = fc.TestFilePattern
	}
	if fc.OutputFolder != "" {
		cfg.OutputFolder = fc.OutputFolder
	}
	if fc.IncludeTestFiles {
		cfg.IncludeTestFiles = true
	}
	if len(fc.OmitCoverage) > 0 {
		cfg.OmitCoverage = fc.OmitCoverage
	}
	if fc.PythonPath != "" {
		cfg.PythonPath = fc.PythonPath
	}
	if coerceBool(fc.DebugMode) {
		cfg.DebugMode = true
	}
}

// coerceBool accepts both JSON booleans and the string spellings users
// put into hand-edited configs ("true", "True").
func coerceBool(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case string:
		return strings.EqualFold(t, "true")
	default:
		return false
	}
}

// applyDefaults fills every setting that neither the CLI nor the config
// file provided and normalizes all paths to absolute.
func applyDefaults(cfg *types.RunConfig) error {
	if cfg.TestFilePattern == "" {
		cfg.TestFilePattern = DefaultTestFilePattern
	}
	if cfg.OutputFolder == "" {
		cfg.OutputFolder = DefaultOutputFolder
	}
	if cfg.ContextCatalog == nil {
		cfg.ContextCatalog = types.Catalog{}
	}
	if cfg.Stats == nil {
		cfg.Stats = &types.RunStats{}
	}

	cwd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("resolving working directory: %w", err)
	}
	cfg.Cwd = cwd

	cfg.Target, err = filepath.Abs(cfg.Target)
	if err != nil {
		return fmt.Errorf("resolving target path: %w", err)
	}

	// The output folder is relative to the config file location, so runs
	// started from different working directories share one artifact root.
	if !filepath.IsAbs(cfg.OutputFolder) {
		base := cwd
		if cfg.ConfigPath != "" {
			base = filepath.Dir(cfg.ConfigPath)
		}
		cfg.OutputFolder = filepath.Join(base, cfg.OutputFolder)
	}
	cfg.OutputFolder = filepath.ToSlash(filepath.Clean(cfg.OutputFolder))

	cfg.Context = Resolve(cfg)
	cfg.IsSubprocess = false
	return nil
}

// Resolve maps the base name of the current target folder to a declared
// context, falling back to the reserved native context. Pure and
// idempotent: it is re-evaluated every time the target changes during
// child recursion.
func Resolve(cfg *types.RunConfig) string {
	context := filepath.Base(cfg.Target)
	if !cfg.ContextCatalog.Has(context) {
		return types.NativeContext
	}
	return context
}
