package recording

import (
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"
)

// DefaultExtensions are the recorder output formats imported when none are configured.
var DefaultExtensions = []string{".flv", ".mp4", ".mkv"}

// Scan lists regular files under root whose extension, compared case
// insensitively, is in exts. Paths are returned absolute and sorted. A
// symlinked root is followed, but returned paths stay under root as given.
func Scan(root string, exts []string) ([]string, error) {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	allowed := make(map[string]struct{}, len(exts))
	for _, ext := range exts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		allowed[ext] = struct{}{}
	}

	absRoot, err := filepath.Abs(root)
	if err != nil {
		return nil, fmt.Errorf("resolve scan root: %w", err)
	}

	walkRoot, err := filepath.EvalSymlinks(absRoot)
	if err != nil {
		return nil, fmt.Errorf("resolve scan root: %w", err)
	}

	var paths []string
	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, walkErr error) error {
		if walkErr != nil {
			return walkErr
		}
		if !d.Type().IsRegular() {
			return nil
		}
		if _, ok := allowed[strings.ToLower(filepath.Ext(path))]; !ok {
			return nil
		}
		rel, err := filepath.Rel(walkRoot, path)
		if err != nil {
			return err
		}
		paths = append(paths, filepath.Join(absRoot, rel))
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", absRoot, err)
	}
	sort.Strings(paths)
	return paths, nil
}
