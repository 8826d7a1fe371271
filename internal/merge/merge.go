// Package merge folds duplicate artists or albums into a surviving one.
package merge

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"

	"github.com/google/uuid"

	"github.com/llehouerou/crate/internal/catalog"
	"github.com/llehouerou/crate/internal/errmsg"
	"github.com/llehouerou/crate/internal/logging"
	"github.com/llehouerou/crate/internal/tags"
)

// Result counts what a merge changed.
type Result struct {
	// Reparented is the number of albums or tracks moved to the survivor.
	Reparented int64
	Deleted    int64
	// Files is the number of files whose tags were rewritten.
	Files  int
	Failed int
}

// Artists moves the albums and files of others to survivor, deletes others
// and rewrites the artist identifier of the affected files.
func Artists(ctx context.Context, cat *catalog.Catalog, logger *slog.Logger, survivor catalog.Artist, others []catalog.Artist) (Result, error) {
	ids := make([]int64, len(others))
	for i, a := range others {
		ids[i] = a.ID
	}
	return run(ctx, cat, logger, plan{
		kind:      "artist",
		survivor:  survivor.ID,
		uuid:      survivor.UUID,
		others:    ids,
		tag:       tags.ArtistID,
		reparent:  (*catalog.Store).ReparentAlbums,
		repoint:   (*catalog.Store).RepointFileArtists,
		files:     (*catalog.Store).FilesByArtists,
		deleteAll: (*catalog.Store).DeleteArtists,
	})
}

// Albums moves the tracks and files of others to survivor, deletes others
// and rewrites the album identifier of the affected files.
func Albums(ctx context.Context, cat *catalog.Catalog, logger *slog.Logger, survivor catalog.Album, others []catalog.Album) (Result, error) {
	ids := make([]int64, len(others))
	for i, a := range others {
		ids[i] = a.ID
	}
	return run(ctx, cat, logger, plan{
		kind:      "album",
		survivor:  survivor.ID,
		uuid:      survivor.UUID,
		others:    ids,
		tag:       tags.AlbumID,
		reparent:  (*catalog.Store).ReparentTracks,
		repoint:   (*catalog.Store).RepointFileAlbums,
		files:     (*catalog.Store).FilesByAlbums,
		deleteAll: (*catalog.Store).DeleteAlbums,
	})
}

type plan struct {
	kind      string
	survivor  int64
	uuid      uuid.UUID
	others    []int64
	tag       tags.Tag
	reparent  func(*catalog.Store, int64, []int64) (int64, error)
	repoint   func(*catalog.Store, int64, []int64) (int64, error)
	files     func(*catalog.Store, []int64) ([]catalog.File, error)
	deleteAll func(*catalog.Store, []int64) (int64, error)
}

func run(ctx context.Context, cat *catalog.Catalog, logger *slog.Logger, p plan) (Result, error) {
	var result Result
	if logger == nil {
		logger = logging.Discard()
	}

	if len(p.others) == 0 {
		return result, errmsg.Reportable("Select at least two %ss to merge", p.kind)
	}
	if slices.Contains(p.others, p.survivor) {
		return result, errmsg.Reportable("Cannot merge %s ID %d into itself", p.kind, p.survivor)
	}

	var files []catalog.File
	err := cat.Update(func(s *catalog.Store) error {
		var err error
		// Collected first: repointing hides which files belonged to others.
		if files, err = p.files(s, p.others); err != nil {
			return err
		}
		if result.Reparented, err = p.reparent(s, p.survivor, p.others); err != nil {
			return err
		}
		if _, err = p.repoint(s, p.survivor, p.others); err != nil {
			return err
		}
		result.Deleted, err = p.deleteAll(s, p.others)
		return err
	})
	if err != nil {
		return result, err
	}
	logger.Info("merged "+p.kind+"s",
		"survivor", p.survivor, "reparented", result.Reparented, "deleted", result.Deleted)

	var errs []error
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if err := rewriteID(f.Path, p.tag, p.uuid); err != nil {
			logger.Error(errmsg.Format(errmsg.OpMergeFile, err), "path", f.Path)
			errs = append(errs, err)
			result.Failed++
			continue
		}
		result.Files++
	}
	if len(errs) > 0 {
		return result, fmt.Errorf("%d file(s) keep a stale %s: %w", len(errs), p.tag, errors.Join(errs...))
	}
	return result, nil
}

func rewriteID(path string, tag tags.Tag, id uuid.UUID) error {
	f, err := tags.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := f.SetID(tag, id); err != nil {
		return err
	}
	return f.Save()
}
