package audio

import (
	"fmt"
	"io/fs"
	"path"
	"slices"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
)

// Inventory lists every audio file in fsys whose extension is in exts
// (DefaultExtensions when empty), sorted by path.
func Inventory(fsys fs.FS, exts []string) ([]string, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	pattern := "**/*.{" + strings.Join(exts, ",") + "}"

	matches, err := doublestar.Glob(fsys, pattern, doublestar.WithFilesOnly())
	if err != nil {
		return nil, fmt.Errorf("audio inventory %q: %w", pattern, err)
	}
	slices.Sort(matches)
	return matches, nil
}

// Stems maps each inventory path to its extension-less form, the shape
// Candidates produces, so coverage can be checked without probing.
func Stems(paths []string) map[string]string {
	out := make(map[string]string, len(paths))
	for _, p := range paths {
		out[strings.TrimSuffix(p, path.Ext(p))] = p
	}
	return out
}
