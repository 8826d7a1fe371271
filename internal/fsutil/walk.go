// Package fsutil walks music trees and moves files around in them.
package fsutil

import (
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// WalkOptions filters a Walk.
type WalkOptions struct {
	// IgnoreDirs are directory names that are not descended into.
	IgnoreDirs []string
	// IncludeExts are the extensions of the files to visit, compared case
	// insensitively. Empty means every file.
	IncludeExts []string
	// SkipDir is called when a directory below the root cannot be read. The
	// directory is then skipped. When nil, Walk fails instead.
	SkipDir func(dir string, err error)
}

// Walk calls fn for every matching file under root. Within a directory, files
// come before subdirectories and both are visited in lexical order, so the
// order only depends on the tree. Walk stops at the first error from fn or
// when the root itself cannot be read.
func Walk(root string, opts WalkOptions, fn func(path string) error) error {
	exts := make([]string, len(opts.IncludeExts))
	for i, ext := range opts.IncludeExts {
		exts[i] = strings.ToLower(ext)
	}
	w := walker{ignore: opts.IgnoreDirs, exts: exts, skip: opts.SkipDir, fn: fn}
	return w.walk(root, true)
}

type walker struct {
	ignore []string
	exts   []string
	skip   func(string, error)
	fn     func(string) error
}

func (w walker) walk(dir string, root bool) error {
	// ReadDir returns entries sorted by name.
	entries, err := os.ReadDir(dir)
	if err != nil {
		if root || w.skip == nil {
			return err
		}
		w.skip(dir, err)
		return nil
	}

	var subdirs []string
	for _, e := range entries {
		path := filepath.Join(dir, e.Name())
		if e.IsDir() {
			if !slices.Contains(w.ignore, e.Name()) {
				subdirs = append(subdirs, path)
			}
			continue
		}
		if !e.Type().IsRegular() {
			continue
		}
		if len(w.exts) > 0 && !slices.Contains(w.exts, strings.ToLower(filepath.Ext(path))) {
			continue
		}
		if err := w.fn(path); err != nil {
			return err
		}
	}

	for _, sub := range subdirs {
		if err := w.walk(sub, false); err != nil {
			return err
		}
	}
	return nil
}
