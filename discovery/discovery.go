// Package discovery locates the test files of one context's test suite.
package discovery

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// Find walks root recursively and returns, in lexical walk order, every
// file whose base name matches the required pattern and, when optional
// filter tokens are given, contains at least one token as a substring.
//
// The required pattern is mandatory in all cases; tokens only ever narrow
// the result, never widen it. A file matching a token but not the pattern
// is excluded.
//
// Directories listed in skipDirs (immediate names, not paths) are not
// descended into: context-named subfolders belong to their own child runs
// and must not leak into the parent's native suite.
func Find(root, pattern string, tokens []string, skipDirs []string) ([]string, error) {
	skip := make(map[string]bool, len(skipDirs))
	for _, name := range skipDirs {
		skip[name] = true
	}

	var files []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != root && skip[d.Name()] {
				return filepath.SkipDir
			}
			return nil
		}
		ok, err := matches(d.Name(), pattern, tokens)
		if err != nil {
			return err
		}
		if ok {
			files = append(files, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("discovering tests under %s: %w", root, err)
	}
	return files, nil
}

// matches applies the AND-then-OR rule: the required pattern must match,
// and then at least one optional token must match if any are given.
func matches(name, pattern string, tokens []string) (bool, error) {
	ok, err := filepath.Match(pattern, name)
	if err != nil {
		return false, fmt.Errorf("bad test file pattern %q: %w", pattern, err)
	}
	if !ok {
		return false, nil
	}
	if len(tokens) == 0 {
		return true, nil
	}
	for _, token := range tokens {
		if strings.Contains(name, token) {
			return true, nil
		}
	}
	return false, nil
}
