package tags

import (
	"errors"
	"fmt"
	"strings"

	"github.com/bogem/id3v2/v2"
)

// txxxPrefix marks keys addressing a user-defined text frame by description.
const txxxPrefix = "TXXX:"

// ID3v2 frames, with MusicBrainz descriptions matching Picard.
var id3Keys = keyTable{
	ArtistTitle:         {keys: []string{"TPE2"}},
	AlbumTitle:          {keys: []string{"TALB"}},
	TrackTitle:          {keys: []string{"TIT2"}},
	TrackDisc:           {keys: []string{"TPOS"}},
	TrackNumber:         {keys: []string{"TRCK"}},
	MusicBrainzArtistID: {keys: []string{txxxPrefix + "MusicBrainz Album Artist Id"}},
	MusicBrainzAlbumID:  {keys: []string{txxxPrefix + "MusicBrainz Album Id"}},
	MusicBrainzTrackID:  {keys: []string{txxxPrefix + "MusicBrainz Release Track Id"}},
	ArtistID:            {keys: []string{txxxPrefix + "CRATE_ARTIST_ID"}},
	AlbumID:             {keys: []string{txxxPrefix + "CRATE_ALBUM_ID"}},
	TrackID:             {keys: []string{txxxPrefix + "CRATE_TRACK_ID"}},
}

// mp3File holds the parsed ID3v2 tag open until Close, since saving writes
// through the same handle.
type mp3File struct {
	codec fieldCodec
	tag   *id3v2.Tag
}

func openMP3(path string) (*mp3File, error) {
	tag, err := id3v2.Open(path, id3v2.Options{Parse: true})
	if errors.Is(err, id3v2.ErrUnsupportedVersion) {
		return nil, &UnsupportedFormatError{Path: path, Reason: "ID3v2.2 tag", Err: err}
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	return &mp3File{
		codec: fieldCodec{path: path, store: id3Store{tag: tag}, table: id3Keys},
		tag:   tag,
	}, nil
}

func (f *mp3File) fields() *fieldCodec { return &f.codec }

func (f *mp3File) save() error {
	// Use ID3v2.4 with UTF-8 for better Unicode support
	f.tag.SetVersion(4)
	f.tag.SetDefaultEncoding(id3v2.EncodingUTF8)
	return f.tag.Save()
}

func (f *mp3File) close() error {
	return f.tag.Close()
}

// id3Store exposes text frames by frame ID and TXXX frames as "TXXX:desc".
// A NUL inside a text frame separates multiple values.
type id3Store struct {
	tag *id3v2.Tag
}

func (s id3Store) get(key string) []string {
	var out []string
	if desc, ok := strings.CutPrefix(key, txxxPrefix); ok {
		for _, udtf := range s.userFrames() {
			if strings.EqualFold(udtf.Description, desc) {
				out = append(out, splitID3Values(udtf.Value)...)
			}
		}
		return out
	}
	for _, frame := range s.tag.GetFrames(key) {
		if tf, ok := frame.(id3v2.TextFrame); ok {
			out = append(out, splitID3Values(tf.Text)...)
		}
	}
	return out
}

func (s id3Store) put(key, value string) bool {
	if current := s.get(key); len(current) == 1 && current[0] == value {
		return false
	}
	if desc, ok := strings.CutPrefix(key, txxxPrefix); ok {
		s.dropUserFrame(desc)
		s.tag.AddUserDefinedTextFrame(id3v2.UserDefinedTextFrame{
			Encoding:    id3v2.EncodingUTF8,
			Description: desc,
			Value:       value,
		})
		return true
	}
	s.tag.DeleteFrames(key)
	s.tag.AddTextFrame(key, id3v2.EncodingUTF8, value)
	return true
}

func (s id3Store) drop(key string) bool {
	if desc, ok := strings.CutPrefix(key, txxxPrefix); ok {
		return s.dropUserFrame(desc)
	}
	if len(s.tag.GetFrames(key)) == 0 {
		return false
	}
	s.tag.DeleteFrames(key)
	return true
}

func (s id3Store) names() []string {
	var out []string
	for id, frames := range s.tag.AllFrames() {
		if id != "TXXX" {
			out = append(out, id)
			continue
		}
		for _, frame := range frames {
			if udtf, ok := frame.(id3v2.UserDefinedTextFrame); ok {
				out = append(out, txxxPrefix+udtf.Description)
			}
		}
	}
	return out
}

func (s id3Store) userFrames() []id3v2.UserDefinedTextFrame {
	var out []id3v2.UserDefinedTextFrame
	for _, frame := range s.tag.GetFrames("TXXX") {
		if udtf, ok := frame.(id3v2.UserDefinedTextFrame); ok {
			out = append(out, udtf)
		}
	}
	return out
}

// dropUserFrame removes every TXXX frame with the description. The library
// only deletes by frame ID, so the remaining TXXX frames are added back.
func (s id3Store) dropUserFrame(desc string) bool {
	frames := s.userFrames()
	var keep []id3v2.UserDefinedTextFrame
	for _, udtf := range frames {
		if !strings.EqualFold(udtf.Description, desc) {
			keep = append(keep, udtf)
		}
	}
	if len(keep) == len(frames) {
		return false
	}
	s.tag.DeleteFrames("TXXX")
	for _, udtf := range keep {
		s.tag.AddUserDefinedTextFrame(udtf)
	}
	return true
}

func splitID3Values(s string) []string {
	s = strings.TrimRight(s, "\x00")
	if s == "" {
		return nil
	}
	return strings.Split(s, "\x00")
}
