// Package importer walks a music tree and records every file in the catalog,
// resolving artist, album and track from tags with the file path as fallback.
package importer

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/llehouerou/crate/internal/catalog"
	"github.com/llehouerou/crate/internal/errmsg"
	"github.com/llehouerou/crate/internal/fsutil"
	"github.com/llehouerou/crate/internal/infer"
	"github.com/llehouerou/crate/internal/logging"
	"github.com/llehouerou/crate/internal/position"
	"github.com/llehouerou/crate/internal/slug"
	"github.com/llehouerou/crate/internal/tags"
)

// Options configures an import run.
type Options struct {
	// Dir is the root of the artist/album/track tree.
	Dir         string
	Catalog     *catalog.Catalog
	IgnoreDirs  []string
	IncludeExts []string
	Logger      *slog.Logger
}

// Result counts what an import did.
type Result struct {
	Total           int
	Skipped         int
	NewArtists      int
	ExistingArtists int
	NewAlbums       int
	ExistingAlbums  int
	NewTracks       int
	ExistingTracks  int
	Failed          int
}

func (r *Result) add(o Result) {
	r.Skipped += o.Skipped
	r.NewArtists += o.NewArtists
	r.ExistingArtists += o.ExistingArtists
	r.NewAlbums += o.NewAlbums
	r.ExistingAlbums += o.ExistingAlbums
	r.NewTracks += o.NewTracks
	r.ExistingTracks += o.ExistingTracks
}

// Run imports every music file under opts.Dir. Problems with a single file
// are logged and counted in Failed; catalog invariant violations and
// cancellation stop the run.
func Run(ctx context.Context, opts Options) (Result, error) {
	var result Result

	logger := opts.Logger
	if logger == nil {
		logger = logging.Discard()
	}

	root, err := filepath.Abs(opts.Dir)
	if err != nil {
		return result, fmt.Errorf("resolve %s: %w", opts.Dir, err)
	}

	walkOpts := fsutil.WalkOptions{
		IgnoreDirs:  opts.IgnoreDirs,
		IncludeExts: opts.IncludeExts,
		SkipDir: func(dir string, err error) {
			logger.Warn("skipping unreadable directory", "dir", dir, logging.Err(err))
		},
	}
	err = fsutil.Walk(root, walkOpts, func(path string) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		result.Total++

		relPath, err := filepath.Rel(root, path)
		if err != nil {
			return fmt.Errorf("relative path of %s: %w", path, err)
		}

		fileResult, err := importFile(opts.Catalog, logger, path, relPath)
		if err != nil {
			if !recoverable(err) {
				return fmt.Errorf("%s: %w", path, err)
			}
			logger.Error(errmsg.Format(errmsg.OpImportFile, err), "path", path)
			result.Failed++
			return nil
		}
		result.add(fileResult)
		return nil
	})
	if err != nil {
		return result, err
	}
	return result, nil
}

// recoverable reports whether err only concerns the file being imported.
func recoverable(err error) bool {
	return tags.IsFileError(err) ||
		errmsg.IsReportable(err) ||
		errors.Is(err, fs.ErrPermission) ||
		errors.Is(err, fs.ErrNotExist)
}

// importFile resolves one file inside a single transaction, so a failure
// leaves no half-created entities behind.
func importFile(cat *catalog.Catalog, logger *slog.Logger, path, relPath string) (Result, error) {
	var r Result

	f, err := tags.Open(path)
	if err != nil {
		return r, err
	}
	defer f.Close()

	_, managed, err := f.LookupID(tags.MusicBrainzTrackID)
	if err != nil {
		return r, err
	}
	if managed {
		if _, err := cat.RecordFile(path, relPath, nil, nil, nil); err != nil {
			return r, err
		}
		logger.Debug("skipping MusicBrainz-managed file", "path", path)
		r.Skipped++
		return r, nil
	}

	in, err := readInput(f, relPath)
	if err != nil {
		return r, err
	}

	err = cat.Update(func(s *catalog.Store) error {
		r = Result{}
		ids, created, err := resolve(s, logger, in, &r)
		if err != nil {
			return err
		}
		if created {
			if err := writeIDs(f, ids); err != nil {
				return err
			}
		}
		_, err = s.RecordFile(path, relPath, &ids.artist.ID, &ids.album.ID, &ids.track.ID)
		return err
	})
	return r, err
}

// input is the effective identity of a file: tag values where present,
// inferred values otherwise.
type input struct {
	inferred        infer.Info
	artistTitle     string
	artistSafeTitle string
	albumTitle      string
	albumSafeTitle  string
	trackTitle      string
	trackSafeTitle  string
	disc            *position.Position
	number          *position.Position
	tagNumber       *position.Position
	// trackID is the catalog identifier written by an earlier import.
	trackID *uuid.UUID
}

func readInput(f *tags.File, relPath string) (input, error) {
	inferred, err := infer.Parse(relPath)
	if err != nil {
		return input{}, err
	}
	in := input{inferred: inferred}

	titles := []struct {
		tag               tags.Tag
		inferred, safe    string
		dstTitle, dstSafe *string
	}{
		{tags.ArtistTitle, inferred.ArtistTitle, inferred.ArtistSafeTitle, &in.artistTitle, &in.artistSafeTitle},
		{tags.AlbumTitle, inferred.AlbumTitle, inferred.AlbumSafeTitle, &in.albumTitle, &in.albumSafeTitle},
		{tags.TrackTitle, inferred.TrackTitle, inferred.TrackSafeTitle, &in.trackTitle, &in.trackSafeTitle},
	}
	for _, t := range titles {
		v, ok, err := f.LookupText(t.tag)
		if err != nil {
			return input{}, err
		}
		if !ok {
			*t.dstTitle, *t.dstSafe = t.inferred, t.safe
			continue
		}
		*t.dstTitle = v
		// Titles made only of punctuation keep the path's safe title.
		if *t.dstSafe = slug.Make(v); *t.dstSafe == "" {
			*t.dstSafe = t.safe
		}
	}

	disc, ok, err := f.LookupPosition(tags.TrackDisc)
	if err != nil {
		return input{}, err
	}
	in.disc = inferred.TrackDisc
	if ok {
		in.disc = &disc
	}

	number, ok, err := f.LookupPosition(tags.TrackNumber)
	if err != nil {
		return input{}, err
	}
	in.number = inferred.TrackNumber
	if ok {
		in.number = &number
		in.tagNumber = &number
	}

	id, ok, err := f.LookupID(tags.TrackID)
	if err != nil {
		return input{}, err
	}
	if ok {
		in.trackID = &id
	}
	return in, nil
}

type resolved struct {
	artist *catalog.Artist
	album  *catalog.Album
	track  *catalog.Track
}

// resolve finds or creates the artist, album and track of in. created is true
// when the track is new, meaning its identifiers must be written to the file.
func resolve(s *catalog.Store, logger *slog.Logger, in input, r *Result) (resolved, bool, error) {
	var ids resolved

	artist, err := s.QueryArtist(in.artistTitle, nil)
	if err != nil {
		return ids, false, err
	}
	if artist == nil {
		artist, err = s.CreateArtist(in.artistTitle, in.artistSafeTitle, nil, nil)
		if err != nil {
			return ids, false, err
		}
		logger.Info("new artist", "title", artist.Title, "uuid", artist.UUID)
		r.NewArtists++
	} else {
		r.ExistingArtists++
	}
	ids.artist = artist

	album, err := s.QueryAlbum(artist.ID, in.albumTitle, nil)
	if err != nil {
		return ids, false, err
	}
	if album == nil {
		album, err = s.CreateAlbum(artist.ID, in.albumTitle, in.albumSafeTitle, nil, nil)
		if err != nil {
			return ids, false, err
		}
		logger.Info("new album", "title", album.Title, "uuid", album.UUID)
		r.NewAlbums++
	} else {
		r.ExistingAlbums++
	}
	ids.album = album

	track, err := knownTrack(s, album.ID, in)
	if err != nil {
		return ids, false, err
	}
	if track == nil {
		track, err = s.QueryTrack(album.ID, in.trackTitle, index(in.disc), index(in.number))
		if err != nil {
			return ids, false, err
		}
	}
	if track != nil {
		r.ExistingTracks++
		ids.track = track
		return ids, false, nil
	}

	track, err = createTrack(s, album.ID, in)
	if err != nil {
		return ids, false, err
	}
	logger.Debug("new track", "title", track.Title, "uuid", track.UUID)
	r.NewTracks++
	ids.track = track
	return ids, true, nil
}

// knownTrack returns the track named by the identifier in the file tags
// when it still exists in the resolved album.
func knownTrack(s *catalog.Store, albumID int64, in input) (*catalog.Track, error) {
	if in.trackID == nil {
		return nil, nil
	}
	track, err := s.TrackByUUID(*in.trackID)
	if errors.Is(err, catalog.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	if track.AlbumID != albumID {
		return nil, nil
	}
	return track, nil
}

// createTrack prefers the position taken from the file name over the tag.
// When the two disagree, the inferred position is tried first and the tag
// position is used only if it collides.
func createTrack(s *catalog.Store, albumID int64, in input) (*catalog.Track, error) {
	inferred := in.inferred
	create := func(disc, number *position.Position) (*catalog.Track, error) {
		return s.CreateTrack(albumID, in.trackTitle, in.trackSafeTitle, index(disc), index(number))
	}

	if in.tagNumber == nil || inferred.TrackNumber == nil ||
		inferred.TrackNumber.Index == in.tagNumber.Index {
		return create(in.disc, in.number)
	}

	track, err := s.TryCreateTrack(albumID, in.trackTitle, in.trackSafeTitle,
		index(inferred.TrackDisc), index(inferred.TrackNumber))
	if err != nil || track != nil {
		return track, err
	}
	return create(in.disc, in.number)
}

func writeIDs(f *tags.File, ids resolved) error {
	for _, id := range []struct {
		tag  tags.Tag
		uuid uuid.UUID
	}{
		{tags.ArtistID, ids.artist.UUID},
		{tags.AlbumID, ids.album.UUID},
		{tags.TrackID, ids.track.UUID},
	} {
		if err := f.SetID(id.tag, id.uuid); err != nil {
			return err
		}
	}
	return f.Save()
}

func index(p *position.Position) *int {
	if p == nil {
		return nil
	}
	n := p.Index
	return &n
}
