// Package scan finds source files and computes the file-system level
// statistics: directory sizes and whole-file duplicates.
package scan

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"

	"github.com/src-d/enry/v2"
)

// Options filter what a walk visits.
type Options struct {
	// Exclude holds filepath.Match patterns tested against both the base name
	// and the slash-separated path relative to the root.
	Exclude []string
	// SkipVendor drops vendored and hidden directories and files.
	SkipVendor bool
}

func (o Options) skip(rel, name string, dir bool) bool {
	if rel == "." {
		return false
	}
	for _, pattern := range o.Exclude {
		if ok, _ := filepath.Match(pattern, name); ok {
			return true
		}
		if ok, _ := filepath.Match(pattern, rel); ok {
			return true
		}
	}
	if !o.SkipVendor {
		return false
	}
	if dir {
		rel += "/"
	}
	return enry.IsVendor(rel) || enry.IsDotFile(name)
}

// SourceFiles returns the files under root whose extension is one of exts,
// in lexical order. A root that is a file is returned as is when it matches.
func SourceFiles(root string, exts []string, opts Options) ([]string, error) {
	return walkFiles(root, opts, func(path string) bool {
		return slices.Contains(exts, filepath.Ext(path))
	})
}

// Files returns every file under root that the options do not skip, in
// lexical order.
func Files(root string, opts Options) ([]string, error) {
	return walkFiles(root, opts, func(string) bool { return true })
}

func walkFiles(root string, opts Options, match func(path string) bool) ([]string, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		if match(root) {
			return []string{root}, nil
		}
		return nil, nil
	}

	var paths []string
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("failed to walk directory: %w", err)
		}
		rel, err := relSlash(root, path)
		if err != nil {
			return err
		}
		if opts.skip(rel, d.Name(), d.IsDir()) {
			if d.IsDir() {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.IsDir() && match(path) {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to scan directory %s: %w", root, err)
	}
	return paths, nil
}

func relSlash(root, path string) (string, error) {
	rel, err := filepath.Rel(root, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}
