package tags

import (
	"fmt"
	"math"
	"strings"

	"github.com/Sorrow446/go-mp4tag"
	"go.senan.xyz/taglib"

	"github.com/llehouerou/crate/internal/position"
)

// MP4 atoms as named by TagLib. Freeform atoms written by other tools may use
// the spaced Picard spelling, which is read as an alias.
var mp4Keys = keyTable{
	ArtistTitle:         {keys: []string{taglib.AlbumArtist}},
	AlbumTitle:          {keys: []string{taglib.Album}},
	TrackTitle:          {keys: []string{taglib.Title}},
	TrackDisc:           {keys: []string{taglib.DiscNumber}},
	TrackNumber:         {keys: []string{taglib.TrackNumber}},
	MusicBrainzArtistID: {keys: []string{"MUSICBRAINZ_ALBUMARTISTID", "MUSICBRAINZ ALBUM ARTIST ID"}},
	MusicBrainzAlbumID:  {keys: []string{"MUSICBRAINZ_ALBUMID", "MUSICBRAINZ ALBUM ID"}},
	MusicBrainzTrackID:  {keys: []string{"MUSICBRAINZ_RELEASETRACKID", "MUSICBRAINZ RELEASE TRACK ID"}},
	ArtistID:            {keys: []string{"CRATE_ARTIST_ID"}},
	AlbumID:             {keys: []string{"CRATE_ALBUM_ID"}},
	TrackID:             {keys: []string{"CRATE_TRACK_ID"}},
}

// m4aFile reads atoms through TagLib and writes them with go-mp4tag, which
// handles freeform atoms regardless of their case.
type m4aFile struct {
	codec fieldCodec
}

func openM4A(path string) (*m4aFile, error) {
	raw, err := taglib.ReadTags(path)
	if err != nil {
		return nil, &UnsupportedFormatError{Path: path, Reason: "invalid MP4 container", Err: err}
	}
	return &m4aFile{
		codec: fieldCodec{path: path, store: propertyMapOf(raw), table: mp4Keys},
	}, nil
}

func (f *m4aFile) fields() *fieldCodec { return &f.codec }

func (f *m4aFile) close() error { return nil }

func (f *m4aFile) save() error {
	props := f.codec.store.(*propertyMap)

	tags := &mp4tag.MP4Tags{Custom: make(map[string]string)}
	var del []string

	text := func(key, delName string, dst *string) {
		if v := props.get(key); len(v) > 0 {
			*dst = v[0]
		} else {
			del = append(del, delName)
		}
	}
	text(taglib.Title, "title", &tags.Title)
	text(taglib.Album, "album", &tags.Album)
	text(taglib.AlbumArtist, "albumartist", &tags.AlbumArtist)

	pos := func(key, name string, num, total *int16) error {
		v := props.get(key)
		if len(v) == 0 {
			del = append(del, name+"number", name+"total")
			return nil
		}
		p, err := position.Parse(v[0])
		if err != nil {
			return err
		}
		*num = safeInt16(p.Index)
		if t, ok := p.Total(); ok {
			*total = safeInt16(t)
		} else {
			del = append(del, name+"total")
		}
		return nil
	}
	if err := pos(taglib.TrackNumber, "track", &tags.TrackNumber, &tags.TrackTotal); err != nil {
		return fmt.Errorf("track number: %w", err)
	}
	if err := pos(taglib.DiscNumber, "disc", &tags.DiscNumber, &tags.DiscTotal); err != nil {
		return fmt.Errorf("disc number: %w", err)
	}

	for _, t := range AllTags {
		if t.Kind() != KindID {
			continue
		}
		for i, key := range mp4Keys[t].keys {
			v := props.get(key)
			if i == 0 && len(v) > 0 {
				tags.Custom[key] = v[0]
				continue
			}
			if len(v) == 0 {
				del = append(del, strings.ToLower(key))
			}
		}
	}

	mp4, err := mp4tag.Open(f.codec.path)
	if err != nil {
		return fmt.Errorf("open: %w", err)
	}
	defer mp4.Close()

	if err := mp4.Write(tags, del); err != nil {
		return fmt.Errorf("write: %w", err)
	}
	return nil
}

// safeInt16 converts int to int16 with bounds checking.
func safeInt16(n int) int16 {
	if n > math.MaxInt16 {
		return math.MaxInt16
	}
	if n < math.MinInt16 {
		return math.MinInt16
	}
	return int16(n)
}
