package coverage

import (
	"path/filepath"
	"strings"

	"github.com/vfx-infra/dcctest/types"
)

// BuildOmit assembles the omit globs for one context's measurement:
// run artifacts, the globs declared at config and context level, the
// host application's own install tree, and the test files themselves
// unless the run asked to keep them.
func BuildOmit(cfg *types.RunConfig) []string {
	var omit []string

	if cfg.OutputFolder != "" {
		omit = append(omit, filepath.ToSlash(cfg.OutputFolder)+"/*")
	}
	omit = append(omit, cfg.OmitCoverage...)

	if desc, ok := cfg.ContextCatalog[cfg.Context]; ok {
		omit = append(omit, desc.OmitCoverage...)
		if root := hostInstallRoot(cfg.Context, desc.Executable); root != "" {
			omit = append(omit, filepath.ToSlash(root)+"/*")
		}
	}

	if !cfg.IncludeTestFiles && cfg.TestFilePattern != "" {
		omit = append(omit, "*/"+cfg.TestFilePattern)
	}

	return omit
}

// hostInstallRoot returns the installation tree of a DCC host so its
// bundled libraries never pollute the report. The executable sits two
// levels below the install root for the hosts we drive.
func hostInstallRoot(context, executable string) string {
	if executable == "" {
		return ""
	}
	name := strings.ToLower(context)
	if !strings.Contains(name, "maya") &&
		!strings.Contains(name, "hython") &&
		!strings.Contains(name, "houdini") {
		return ""
	}
	return filepath.Dir(filepath.Dir(executable))
}

// Omitted reports whether path matches any of the omit globs, the way
// the Python coverage tool treats its omit patterns: a glob ending in
// "/*" covers the whole subtree, and a glob starting with "*/" may match
// anywhere along the path.
func Omitted(path string, omit []string) bool {
	path = filepath.ToSlash(path)
	segments := strings.Split(path, "/")

	for _, glob := range omit {
		glob = filepath.ToSlash(glob)

		if prefix, found := strings.CutSuffix(glob, "/*"); found && !strings.Contains(prefix, "*") {
			if strings.HasPrefix(path, prefix+"/") {
				return true
			}
		}

		trimmed := strings.TrimPrefix(glob, "*/")
		for i := range segments {
			suffix := strings.Join(segments[i:], "/")
			if ok, _ := filepath.Match(glob, suffix); ok {
				return true
			}
			if trimmed != glob {
				if ok, _ := filepath.Match(trimmed, suffix); ok {
					return true
				}
			}
		}
	}
	return false
}
