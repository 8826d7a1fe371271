// Package fixup corrects albums that MusicBrainz tags in a way the collection
// does not want: their album title tag is overridden and their files are
// moved to a configured album directory.
package fixup

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/llehouerou/crate/internal/errmsg"
	"github.com/llehouerou/crate/internal/fsutil"
	"github.com/llehouerou/crate/internal/logging"
	"github.com/llehouerou/crate/internal/tags"
)

// Fixup is the correction applied to every file of one MusicBrainz release.
type Fixup struct {
	AlbumID uuid.UUID
	// Dir is the name of the album directory, next to the current one.
	Dir string
	// AlbumTitle replaces the album title tag.
	AlbumTitle string
}

// Parse builds a Fixup from configuration values.
func Parse(albumID, dir, albumTitle string) (Fixup, error) {
	id, err := uuid.Parse(strings.TrimSpace(albumID))
	if err != nil {
		return Fixup{}, errmsg.Reportable("Invalid fixup album_id %q", albumID)
	}
	if dir == "" || dir == "." || dir == ".." || strings.ContainsAny(dir, `/\`) {
		return Fixup{}, errmsg.Reportable("Fixup dir %q for %s must be a single directory name", dir, id)
	}
	if albumTitle == "" {
		return Fixup{}, errmsg.Reportable("Fixup for %s has no album_title", id)
	}
	return Fixup{AlbumID: id, Dir: dir, AlbumTitle: albumTitle}, nil
}

// Options configures a fixup run.
type Options struct {
	Dir         string
	Fixups      []Fixup
	IgnoreDirs  []string
	IncludeExts []string
	// DryRun logs what would change without touching files.
	DryRun bool
	Logger *slog.Logger
}

// Result counts the files a run looked at and the ones it changed, or would
// change in a dry run.
type Result struct {
	Total  int
	Fixed  int
	Failed int
}

// Run applies the fixups to every music file under opts.Dir. Files without
// a MusicBrainz album id or without a matching fixup are left alone.
// Problems with a single file are logged and counted in Failed.
func Run(ctx context.Context, opts Options) (Result, error) {
	var result Result

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	byAlbum := make(map[uuid.UUID]Fixup, len(opts.Fixups))
	for _, f := range opts.Fixups {
		if _, dup := byAlbum[f.AlbumID]; dup {
			return result, errmsg.Reportable("Album %s has more than one fixup", f.AlbumID)
		}
		byAlbum[f.AlbumID] = f
	}

	// Files are collected first since fixing one moves it to another
	// directory the walk may not have reached yet.
	var paths []string
	walkOpts := fsutil.WalkOptions{
		IgnoreDirs:  opts.IgnoreDirs,
		IncludeExts: opts.IncludeExts,
		SkipDir: func(dir string, err error) {
			logger.Warn("skipping unreadable directory", "dir", dir, logging.Err(err))
		},
	}
	err := fsutil.Walk(opts.Dir, walkOpts, func(path string) error {
		paths = append(paths, path)
		return nil
	})
	if err != nil {
		return result, err
	}

	for _, path := range paths {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		result.Total++
		logger.Debug("checking", "path", path)

		fixed, err := fixFile(ctx, opts.DryRun, logger, byAlbum, path)
		if err != nil {
			if !recoverable(err) {
				return result, fmt.Errorf("%s: %w", path, err)
			}
			logger.Error(errmsg.Format(errmsg.OpFixupFile, err), "path", path)
			result.Failed++
			continue
		}
		if fixed {
			result.Fixed++
		}
	}
	return result, nil
}

func recoverable(err error) bool {
	return tags.IsFileError(err) ||
		errors.Is(err, fs.ErrExist) ||
		errors.Is(err, fs.ErrPermission) ||
		errors.Is(err, fs.ErrNotExist)
}

func fixFile(ctx context.Context, dryRun bool, logger *slog.Logger, byAlbum map[uuid.UUID]Fixup, path string) (bool, error) {
	f, err := tags.Open(path)
	if err != nil {
		return false, err
	}
	defer f.Close()

	albumID, ok, err := f.LookupID(tags.MusicBrainzAlbumID)
	if err != nil || !ok {
		return false, err
	}
	fix, ok := byAlbum[albumID]
	if !ok {
		return false, nil
	}

	fixed := false
	title, _, err := f.LookupText(tags.AlbumTitle)
	if err != nil {
		return false, err
	}
	if title != fix.AlbumTitle {
		fixed = true
		if dryRun {
			logger.Info("would retitle album", "path", path, "old", title, "new", fix.AlbumTitle)
		} else {
			if err := f.SetText(tags.AlbumTitle, fix.AlbumTitle); err != nil {
				return false, err
			}
			if err := f.Save(); err != nil {
				return false, err
			}
			logger.Info("retitled album", "path", path, "old", title, "new", fix.AlbumTitle)
		}
	}
	if err := f.Close(); err != nil {
		return false, err
	}

	dir := filepath.Dir(path)
	if filepath.Base(dir) == fix.Dir {
		return fixed, nil
	}
	target := filepath.Join(filepath.Dir(dir), fix.Dir, filepath.Base(path))
	if dryRun {
		logger.Info("would move", "from", path, "to", target)
		return true, nil
	}
	if err := fsutil.MoveFile(path, target); err != nil {
		return fixed, err
	}
	logger.Info("moved", "from", path, "to", target)

	removed, err := fsutil.RemoveDirIfEmpty(ctx, dir)
	switch {
	case err != nil:
		logger.Warn("could not remove directory", "dir", dir, logging.Err(err))
	case removed:
		logger.Debug("removed directory", "dir", dir)
	}
	return true, nil
}
