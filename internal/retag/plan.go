package retag

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/llehouerou/crate/internal/catalog"
	"github.com/llehouerou/crate/internal/position"
	"github.com/llehouerou/crate/internal/slug"
	"github.com/llehouerou/crate/internal/tags"
)

// plan is the canonical tagging and location of one catalogued file.
type plan struct {
	artist    *catalog.Artist
	album     *catalog.Album
	track     *catalog.Track
	discTotal int
	// trackTotal is the highest track number on the track's disc.
	trackTotal int
}

// planFile loads the entities named by the identifier tags of f.
func planFile(s *catalog.Store, f *tags.File) (*plan, error) {
	artistID, err := f.ID(tags.ArtistID)
	if err != nil {
		return nil, err
	}
	albumID, err := f.ID(tags.AlbumID)
	if err != nil {
		return nil, err
	}
	trackID, err := f.ID(tags.TrackID)
	if err != nil {
		return nil, err
	}

	p := &plan{}
	if p.artist, err = s.ArtistByUUID(artistID); err != nil {
		return nil, err
	}
	if p.album, err = s.AlbumByUUID(albumID); err != nil {
		return nil, err
	}
	if p.track, err = s.TrackByUUID(trackID); err != nil {
		return nil, err
	}
	if p.discTotal, err = s.DiscTotal(p.album.ID); err != nil {
		return nil, err
	}
	if p.trackTotal, err = s.TrackTotal(p.album.ID, p.track.Disc); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *plan) disc() int {
	if p.track.Disc == nil {
		return 1
	}
	return *p.track.Disc
}

// relPath is artist/album/[disc-][NN_]title.ext below the misc directory.
func (p *plan) relPath(ext string) string {
	var name strings.Builder
	if p.discTotal > 1 {
		fmt.Fprintf(&name, "%d-", p.disc())
	}
	if p.track.Number != nil {
		name.WriteString(padNumber(*p.track.Number, p.trackTotal))
		name.WriteByte('_')
	}
	name.WriteString(p.track.SafeTitle)
	name.WriteString(strings.ToLower(ext))

	return filepath.Join(
		segment(p.artist.SafeTitle, p.artist.Disambiguator),
		segment(p.album.SafeTitle, p.album.Disambiguator),
		name.String(),
	)
}

func padNumber(n, total int) string {
	switch {
	case total < 100:
		return fmt.Sprintf("%02d", n)
	case total < 1000:
		return fmt.Sprintf("%03d", n)
	default:
		return fmt.Sprintf("%04d", n)
	}
}

func segment(safeTitle string, disambiguator *string) string {
	if disambiguator == nil || *disambiguator == "" {
		return safeTitle
	}
	return safeTitle + "_" + slug.Make(*disambiguator)
}

// TagDiff is a tag whose value is changed by a retag.
type TagDiff struct {
	Tag tags.Tag
	Old string
	New string
}

var plannedTags = []tags.Tag{
	tags.ArtistTitle, tags.AlbumTitle, tags.TrackTitle, tags.TrackDisc, tags.TrackNumber,
}

// apply buffers the planned tag values in f and returns what changed.
func (p *plan) apply(f *tags.File) ([]TagDiff, error) {
	before, err := snapshot(f)
	if err != nil {
		return nil, err
	}

	sets := []struct {
		tag   tags.Tag
		value string
	}{
		{tags.ArtistTitle, p.artist.DisplayTitle()},
		{tags.AlbumTitle, p.album.DisplayTitle()},
		{tags.TrackTitle, p.track.Title},
	}
	for _, s := range sets {
		if err := f.SetText(s.tag, s.value); err != nil {
			return nil, err
		}
	}

	if p.discTotal == 1 {
		err = f.Delete(tags.TrackDisc)
	} else {
		err = f.SetPosition(tags.TrackDisc, position.WithTotal(p.disc(), p.discTotal))
	}
	if err != nil {
		return nil, err
	}

	if p.track.Number == nil {
		err = f.Delete(tags.TrackNumber)
	} else {
		err = f.SetPosition(tags.TrackNumber, position.WithTotal(*p.track.Number, p.trackTotal))
	}
	if err != nil {
		return nil, err
	}

	after, err := snapshot(f)
	if err != nil {
		return nil, err
	}
	var diffs []TagDiff
	for _, t := range plannedTags {
		if before[t] != after[t] {
			diffs = append(diffs, TagDiff{Tag: t, Old: before[t], New: after[t]})
		}
	}
	return diffs, nil
}

// snapshot renders the planned tags of f, with "" for absent ones.
func snapshot(f *tags.File) (map[tags.Tag]string, error) {
	out := make(map[tags.Tag]string, len(plannedTags))
	for _, t := range plannedTags {
		if t.Kind() == tags.KindPosition {
			pos, ok, err := f.LookupPosition(t)
			if err != nil {
				return nil, err
			}
			if ok {
				out[t] = pos.String()
			}
			continue
		}
		v, _, err := f.LookupText(t)
		if err != nil {
			return nil, err
		}
		out[t] = v
	}
	return out, nil
}
