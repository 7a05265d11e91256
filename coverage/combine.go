package coverage

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Combine merges every fragment in dir into the combined data file and
// returns the result. Fragments matching the omit globs are filtered
// file by file during the merge. A run with no fragments is not an
// error: Combine logs and returns nil.
func Combine(dir string, omit []string, log *slog.Logger) (*Profile, error) {
	fragments, err := filepath.Glob(filepath.Join(dir, DataFileName+".*"))
	if err != nil {
		return nil, err
	}
	if len(fragments) == 0 {
		log.Info("No coverage data collected, skipping report")
		return nil, nil
	}

	combined := &Profile{Files: map[string]FileProfile{}}
	for _, fragment := range fragments {
		p, err := ReadProfile(fragment)
		if err != nil {
			return nil, err
		}
		for path := range p.Files {
			if Omitted(path, omit) {
				delete(p.Files, path)
			}
		}
		combined.Merge(p)
		if err := os.Remove(fragment); err != nil {
			return nil, fmt.Errorf("removing merged fragment %s: %w", fragment, err)
		}
	}

	if err := combined.Write(filepath.Join(dir, DataFileName)); err != nil {
		return nil, err
	}
	log.Debug("Combined coverage fragments",
		"fragments", len(fragments), "files", len(combined.Files))
	return combined, nil
}
