package harness

import (
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// DefaultPattern matches every scenario file below a directory.
const DefaultPattern = "**/*.{yaml,yml}"

// FindScenarios returns scenario files below dir, sorted.
//
// filter, if non-empty, is a doublestar glob matched against the file name
// without extension (e.g. "people-*"). Files under golden/ directories are
// skipped.
func FindScenarios(dir, filter string) ([]string, error) {
	if filter != "" && !doublestar.ValidatePattern(filter) {
		return nil, fmt.Errorf("invalid filter pattern: %q", filter)
	}

	matches, err := doublestar.Glob(os.DirFS(dir), DefaultPattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("find scenarios: %w", err)
	}

	var files []string
	for _, m := range matches {
		if slices.Contains(strings.Split(m, "/"), "golden") {
			continue
		}
		if filter != "" {
			base := filepath.Base(m)
			name := strings.TrimSuffix(base, filepath.Ext(base))
			if ok, _ := doublestar.Match(filter, name); !ok {
				continue
			}
		}
		files = append(files, filepath.Join(dir, filepath.FromSlash(m)))
	}
	slices.Sort(files)
	return files, nil
}
