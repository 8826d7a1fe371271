package fsutil

import (
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// CleanDir removes every empty directory below root, deepest first, and
// returns the removed paths. A directory left empty by removing its
// children is removed too. Root itself is kept.
func CleanDir(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && path != root {
			dirs = append(dirs, path)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	// Children sort after their parent, so reverse order is deepest first.
	slices.Sort(dirs)
	slices.Reverse(dirs)

	var removed []string
	for _, dir := range dirs {
		entries, err := os.ReadDir(dir)
		if err != nil {
			return removed, err
		}
		if len(entries) > 0 {
			continue
		}
		if err := os.Remove(dir); err != nil {
			return removed, err
		}
		removed = append(removed, dir)
	}
	return removed, nil
}

// CommonDir returns the deepest directory containing every path, or "" when
// paths is empty or they share no root.
func CommonDir(paths []string) string {
	if len(paths) == 0 {
		return ""
	}

	common := splitDirs(filepath.Dir(paths[0]))
	for _, p := range paths[1:] {
		parts := splitDirs(filepath.Dir(p))
		n := 0
		for n < len(common) && n < len(parts) && common[n] == parts[n] {
			n++
		}
		common = common[:n]
	}
	if len(common) == 0 {
		return ""
	}

	joined := filepath.Join(common...)
	if filepath.IsAbs(paths[0]) {
		joined = string(filepath.Separator) + joined
	}
	return joined
}

func splitDirs(dir string) []string {
	var parts []string
	for _, part := range strings.Split(filepath.ToSlash(filepath.Clean(dir)), "/") {
		if part != "" {
			parts = append(parts, part)
		}
	}
	return parts
}
