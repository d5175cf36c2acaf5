// Package inventory lists data files on the local filesystem.
package inventory

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/TobiSchelling/bizpulse/internal/source"
)

// Dir is an inventory source rooted at a directory. Listed paths are
// relative to the root.
type Dir struct {
	root string
}

// New creates an inventory rooted at root.
func New(root string) *Dir {
	if root == "" {
		root = "."
	}
	return &Dir{root: root}
}

// ListDir lists the regular files under path, sorted by path. Without
// recursive only the direct children are listed. A missing directory is an
// error.
func (d *Dir) ListDir(ctx context.Context, path string, recursive bool) ([]source.FileEntry, error) {
	dir := filepath.Join(d.root, path)
	info, err := os.Stat(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("listing %s: not a directory", path)
	}

	var entries []source.FileEntry
	err = filepath.WalkDir(dir, func(p string, de fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if de.IsDir() {
			if p != dir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !de.Type().IsRegular() {
			return nil
		}
		fi, err := de.Info()
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(d.root, p)
		if err != nil {
			return err
		}
		entries = append(entries, source.FileEntry{Path: filepath.ToSlash(rel), Size: fi.Size(), ModTime: fi.ModTime()})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", path, err)
	}

	sort.Slice(entries, func(i, j int) bool { return entries[i].Path < entries[j].Path })
	return entries, nil
}
