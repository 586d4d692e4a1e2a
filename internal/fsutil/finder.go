// Package fsutil provides file system utility functions.
package fsutil

import (
	"io/fs"
	"path/filepath"
	"strings"
)

// FindFilesByExtensions recursively searches the given root path for all
// files ending with one of the specified extensions, skipping hidden
// directories. It returns a slice of their full paths.
func FindFilesByExtensions(rootPath string, extensions ...string) ([]string, error) {
	if len(extensions) == 0 {
		panic("at least one extension is required")
	}

	var files []string
	err := filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != rootPath && strings.HasPrefix(d.Name(), ".") {
				return filepath.SkipDir
			}
			return nil
		}
		for _, ext := range extensions {
			if strings.HasSuffix(d.Name(), ext) {
				files = append(files, path)
				break
			}
		}
		return nil
	})

	if err != nil {
		return nil, err
	}

	return files, nil
}

// FindRecipeFile locates the recipe document under dir: a file named
// recipe.yaml (or recipe.yml) wins; otherwise a single YAML file in the
// tree is accepted.
func FindRecipeFile(dir string) (string, bool, error) {
	candidates, err := FindFilesByExtensions(dir, ".yaml", ".yml")
	if err != nil {
		return "", false, err
	}
	for _, path := range candidates {
		name := filepath.Base(path)
		if name == "recipe.yaml" || name == "recipe.yml" {
			return path, true, nil
		}
	}
	if len(candidates) == 1 {
		return candidates[0], true, nil
	}
	return "", false, nil
}
