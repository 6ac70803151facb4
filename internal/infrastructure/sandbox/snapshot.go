package sandbox

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"strings"
)

// snapshot records every regular file under root as a "path:mtime"
// pair. Dot-directories and dot-files are skipped so tool caches and
// VCS metadata never count as mutations. Unreadable entries are
// silently ignored; the snapshot is a best-effort side-effect
// detector, not an integrity check.
func snapshot(root string) map[string]struct{} {
	files := make(map[string]struct{})

	filepath.WalkDir(root, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			if entry != nil && entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if path != root && strings.HasPrefix(entry.Name(), ".") {
			if entry.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !entry.Type().IsRegular() {
			return nil
		}
		info, err := entry.Info()
		if err != nil {
			return nil
		}
		files[fmt.Sprintf("%s:%d", path, info.ModTime().UnixNano())] = struct{}{}
		return nil
	})

	return files
}

// symmetricDifference counts the entries present in exactly one of the
// two snapshots. A touched file appears twice, once per mtime, and is
// counted as two changes.
func symmetricDifference(before, after map[string]struct{}) int {
	count := 0
	for key := range before {
		if _, ok := after[key]; !ok {
			count++
		}
	}
	for key := range after {
		if _, ok := before[key]; !ok {
			count++
		}
	}
	return count
}
