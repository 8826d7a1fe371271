package manage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/llehouerou/crate/internal/fsutil"
	"github.com/llehouerou/crate/internal/tabular"
	"github.com/llehouerou/crate/internal/tags"
)

// ShowTags prints the semantic tags of path, or of every music file below
// it when it is a directory. Unreadable files are reported inline.
func ShowTags(out io.Writer, path string, opts fsutil.WalkOptions) error {
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return showFileTags(out, path, path)
	}
	if opts.SkipDir == nil {
		opts.SkipDir = func(dir string, err error) {
			fmt.Fprintf(out, "%s\n  %v\n", dir, err)
		}
	}
	return fsutil.Walk(path, opts, func(p string) error {
		rel, err := filepath.Rel(path, p)
		if err != nil {
			return err
		}
		return showFileTags(out, p, filepath.ToSlash(rel))
	})
}

func showFileTags(out io.Writer, path, name string) error {
	fmt.Fprintln(out, name)

	f, err := tags.Open(path)
	if err != nil {
		if tags.IsFileError(err) {
			fmt.Fprintf(out, "  %v\n", err)
			return nil
		}
		return err
	}
	defer f.Close()

	var rows [][]string
	for _, t := range tags.AllTags {
		value, ok, err := lookup(f, t)
		switch {
		case err != nil:
			rows = append(rows, []string{t.String(), "error: " + err.Error()})
		case ok:
			rows = append(rows, []string{t.String(), value})
		}
	}
	fmt.Fprintf(out, "  format: %s\n", f.Format())
	fmt.Fprintln(out, tabular.Render([]string{"Tag", "Value"}, rows, nil))
	return nil
}

func lookup(f *tags.File, t tags.Tag) (string, bool, error) {
	switch t.Kind() {
	case tags.KindPosition:
		p, ok, err := f.LookupPosition(t)
		return p.String(), ok, err
	case tags.KindID:
		id, ok, err := f.LookupID(t)
		return id.String(), ok, err
	default:
		return f.LookupText(t)
	}
}

// ShowRawTags prints the native tag keys present in a file.
func ShowRawTags(out io.Writer, path string) error {
	f, err := tags.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	keys := f.RawTags()
	rows := make([][]string, len(keys))
	for i, k := range keys {
		rows[i] = []string{k}
	}
	fmt.Fprintf(out, "%s (%s)\n", path, f.Format())
	fmt.Fprintln(out, tabular.Render([]string{"Key"}, rows, nil))
	return nil
}
