package count

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
)

// WalkFunc is called by Walk for every entry, the root included.
type WalkFunc func(path string, d fs.DirEntry) error

// Walk calls fn for every file and directory below root, following symbolic
// links to directories, root included. Each directory is visited once however
// many links lead to it, so link cycles terminate. Paths passed to fn are
// spelled through root and the links that reached them. Dangling links and
// entries removed during the walk are skipped.
func Walk(root string, fn WalkFunc) error {
	resolved, err := filepath.EvalSymlinks(root)
	if err != nil {
		return err
	}
	visited := map[string]bool{resolved: true}
	return walk(resolved, filepath.Clean(root), visited, fn)
}

func walk(resolved, logical string, visited map[string]bool, fn WalkFunc) error {
	return filepath.WalkDir(resolved, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path != resolved && errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return fmt.Errorf("walking %s: %w", path, err)
		}

		rel, err := filepath.Rel(resolved, path)
		if err != nil {
			return err
		}
		name := filepath.Join(logical, rel)

		if d.Type()&fs.ModeSymlink != 0 {
			target, err := filepath.EvalSymlinks(path)
			if errors.Is(err, fs.ErrNotExist) {
				return nil
			}
			if err != nil {
				return fmt.Errorf("resolving %s: %w", name, err)
			}
			info, err := os.Stat(target)
			if err != nil {
				return fmt.Errorf("resolving %s: %w", name, err)
			}
			if !info.IsDir() {
				return fn(name, fs.FileInfoToDirEntry(info))
			}
			if visited[target] {
				return nil
			}
			visited[target] = true
			return walk(target, name, visited, fn)
		}

		if d.IsDir() && path != resolved {
			if visited[path] {
				return fs.SkipDir
			}
			visited[path] = true
		}
		return fn(name, d)
	})
}
