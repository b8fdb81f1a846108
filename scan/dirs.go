package scan

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/TFMV/codemetrics/types"
)

// DirSizes counts the immediate non-directory entries of root and of every
// directory below it. Records come out in post-order, children before their
// parent.
func DirSizes(root string, opts Options) ([]types.MetricRecord, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, nil
	}

	var out []types.MetricRecord
	if err := dirSizes(root, root, opts, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func dirSizes(root, dir string, opts Options, out *[]types.MetricRecord) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("failed to read directory %s: %w", dir, err)
	}

	files := 0
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		rel, err := relSlash(root, path)
		if err != nil {
			return err
		}
		if opts.skip(rel, e.Name(), e.IsDir()) {
			continue
		}
		if e.IsDir() {
			if err := dirSizes(root, path, opts, out); err != nil {
				return err
			}
			continue
		}
		files++
	}

	*out = append(*out, types.MetricRecord{Subject: dir, File: dir, Score: files})
	return nil
}
