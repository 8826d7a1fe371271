// Package retag rewrites the tags of catalogued files from the catalog and
// moves them to their canonical location.
package retag

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/llehouerou/crate/internal/catalog"
	"github.com/llehouerou/crate/internal/errmsg"
	"github.com/llehouerou/crate/internal/fsutil"
	"github.com/llehouerou/crate/internal/logging"
	"github.com/llehouerou/crate/internal/tags"
)

// Options configures a retag run.
type Options struct {
	Catalog *catalog.Catalog
	// MiscDir receives files identified by the catalog.
	MiscDir string
	// MusicDir receives files managed by MusicBrainz, at their import path.
	MusicDir string
	// DryRun logs what would change without touching files or the catalog.
	DryRun bool
	Logger *slog.Logger
}

// Result counts what a retag run did, or would do in a dry run.
type Result struct {
	Moved     int
	Unchanged int
	Retagged  int
	Missing   int
	Failed    int
}

// Run retags and relocates every file of the catalog, in path order.
// Problems with a single file are logged and counted in Failed; catalog
// invariant violations and cancellation stop the run.
func Run(ctx context.Context, opts Options) (Result, error) {
	var result Result

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}
	if opts.MiscDir == "" || opts.MusicDir == "" {
		return result, errmsg.Reportable("Retag needs both misc_dir and music_dir to be configured")
	}

	files, err := opts.Catalog.ListFiles()
	if err != nil {
		return result, err
	}

	var processed []string
	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		if _, err := os.Stat(file.Path); err != nil {
			if !errors.Is(err, fs.ErrNotExist) {
				return result, err
			}
			logger.Warn("file not found", "path", file.Path)
			result.Missing++
			continue
		}
		processed = append(processed, file.Path)

		out, err := retagFile(ctx, opts, logger, file)
		if err != nil {
			if !recoverable(err) {
				return result, fmt.Errorf("%s: %w", file.Path, err)
			}
			logger.Error(errmsg.Format(errmsg.OpRetagFile, err), "path", file.Path)
			result.Failed++
			continue
		}
		if out.retagged {
			result.Retagged++
		}
		if out.moved {
			result.Moved++
		} else {
			result.Unchanged++
		}
	}

	clean(opts, logger, fsutil.CommonDir(processed))
	return result, nil
}

func recoverable(err error) bool {
	return tags.IsFileError(err) ||
		errmsg.IsReportable(err) ||
		errors.Is(err, catalog.ErrNotFound) ||
		errors.Is(err, fs.ErrExist) ||
		errors.Is(err, fs.ErrPermission)
}

type outcome struct {
	retagged bool
	moved    bool
}

func retagFile(ctx context.Context, opts Options, logger *slog.Logger, file catalog.File) (outcome, error) {
	var out outcome

	f, err := tags.Open(file.Path)
	if err != nil {
		return out, err
	}
	defer f.Close()

	_, managed, err := f.LookupID(tags.MusicBrainzTrackID)
	if err != nil {
		return out, err
	}

	var target, relPath string
	if managed {
		relPath = file.RelPath
		target = filepath.Join(opts.MusicDir, relPath)
	} else {
		p, err := planFile(opts.Catalog.Store, f)
		if err != nil {
			return out, err
		}
		diffs, err := p.apply(f)
		if err != nil {
			return out, err
		}
		out.retagged = len(diffs) > 0
		if opts.DryRun {
			for _, d := range diffs {
				logger.Info("would retag", "path", file.Path, "tag", d.Tag, "old", d.Old, "new", d.New)
			}
		} else if err := f.Save(); err != nil {
			return out, err
		}
		relPath = p.relPath(filepath.Ext(file.Path))
		target = filepath.Join(opts.MiscDir, relPath)
	}

	if target == file.Path {
		logger.Debug("no need to move", "path", file.Path)
		return out, nil
	}
	out.moved = true

	if opts.DryRun {
		logger.Info("would move", "from", file.Path, "to", target)
		return out, nil
	}

	// The row is only updated if the rename succeeds.
	err = opts.Catalog.Update(func(s *catalog.Store) error {
		if err := s.UpdateFilePath(file.ID, target, relPath); err != nil {
			return err
		}
		return fsutil.MoveFile(file.Path, target)
	})
	if err != nil {
		return out, err
	}
	logger.Info("moved", "from", file.Path, "to", target)

	dir := filepath.Dir(file.Path)
	removed, err := fsutil.RemoveEmptyParents(ctx, dir, sourceRoot(file))
	for _, d := range removed {
		logger.Debug("removed directory", "dir", d)
	}
	if err != nil {
		logger.Warn("could not remove directory", "dir", dir, logging.Err(err))
	}
	return out, nil
}

// sourceRoot returns the directory the file's relative path starts from,
// or the file's own directory when the two do not line up.
func sourceRoot(file catalog.File) string {
	rel := filepath.Clean(file.RelPath)
	root, ok := strings.CutSuffix(file.Path, string(filepath.Separator)+rel)
	if !ok || rel == "." || filepath.IsAbs(rel) {
		return filepath.Dir(filepath.Dir(file.Path))
	}
	return root
}

// clean prunes directories left empty by the moves. Failures are only
// logged: the files themselves are already in place.
func clean(opts Options, logger *slog.Logger, root string) {
	if root == "" {
		return
	}
	if opts.DryRun {
		logger.Info("would clean up directory", "dir", root)
		return
	}
	// The common directory itself may already be gone.
	for {
		if _, err := os.Stat(root); err == nil {
			break
		}
		parent := filepath.Dir(root)
		if parent == root {
			return
		}
		root = parent
	}
	removed, err := fsutil.CleanDir(root)
	for _, dir := range removed {
		logger.Debug("removed directory", "dir", dir)
	}
	if err != nil {
		logger.Warn("could not clean up directory", "dir", root, logging.Err(err))
	}
}
