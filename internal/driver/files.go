package driver

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"codefix/internal/config"
)

// SourceExt is the extension of the files codefix analyses.
const SourceExt = ".cs"

// skipDirs are build output and VCS directories never worth walking.
var skipDirs = map[string]bool{
	".git": true,
	"bin":  true,
	"obj":  true,
}

// ListFiles expands paths into a sorted, de-duplicated list of source files.
// Directories are walked recursively; files given explicitly are kept even
// without the .cs extension. Paths matching cfg's exclude patterns, taken
// relative to baseDir, are dropped.
func ListFiles(paths []string, baseDir string, cfg *config.Config) ([]string, error) {
	if len(paths) == 0 {
		paths = []string{"."}
	}
	seen := make(map[string]bool)
	var files []string
	add := func(p string) {
		clean := filepath.Clean(p)
		if seen[clean] || excluded(cfg, baseDir, clean) {
			return
		}
		seen[clean] = true
		files = append(files, clean)
	}
	for _, root := range paths {
		info, err := os.Stat(root)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(root)
			continue
		}
		err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != root && skipDirs[d.Name()] {
					return filepath.SkipDir
				}
				return nil
			}
			if strings.HasSuffix(path, SourceExt) {
				add(path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", root, err)
		}
	}
	// детерминированный порядок
	slices.Sort(files)
	return files, nil
}

func excluded(cfg *config.Config, baseDir, path string) bool {
	if cfg == nil || len(cfg.Analysis.Exclude) == 0 {
		return false
	}
	rel := path
	if baseDir != "" {
		abs, err := filepath.Abs(path)
		if err == nil {
			if r, err := filepath.Rel(baseDir, abs); err == nil && !strings.HasPrefix(r, "..") {
				rel = r
			}
		}
	}
	return cfg.Excluded(rel)
}
