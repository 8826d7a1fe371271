// Package tags provides a uniform view over the metadata of music files.
// It maps eleven semantic tags onto the native representation of FLAC, MP3,
// M4A and Ogg containers.
package tags

import (
	"errors"
	"fmt"
)

// File extensions recognized as music files.
const (
	ExtMP3  = ".mp3"
	ExtFLAC = ".flac"
	ExtOPUS = ".opus"
	ExtOGG  = ".ogg"
	ExtOGA  = ".oga"
	ExtM4A  = ".m4a"
	ExtMP4  = ".mp4"
)

// id3Magic is the magic bytes for ID3v2 header detection.
const id3Magic = "ID3"

// Format identifies the container a File was sniffed as.
type Format string

const (
	FormatFLAC Format = "FLAC"
	FormatMP3  Format = "MP3"
	FormatM4A  Format = "M4A"
	FormatOgg  Format = "OGG"
)

// Tag is one of the semantic tags exposed by a File.
type Tag int

const (
	ArtistTitle Tag = iota
	AlbumTitle
	TrackTitle
	TrackDisc
	TrackNumber
	MusicBrainzArtistID
	MusicBrainzAlbumID
	MusicBrainzTrackID
	ArtistID
	AlbumID
	TrackID
)

// AllTags lists every semantic tag in display order.
var AllTags = []Tag{
	ArtistTitle, AlbumTitle, TrackTitle,
	TrackDisc, TrackNumber,
	MusicBrainzArtistID, MusicBrainzAlbumID, MusicBrainzTrackID,
	ArtistID, AlbumID, TrackID,
}

// Kind is the value type carried by a tag.
type Kind int

const (
	KindText Kind = iota
	KindPosition
	KindID
)

var tagNames = map[Tag]string{
	ArtistTitle:         "artist_title",
	AlbumTitle:          "album_title",
	TrackTitle:          "track_title",
	TrackDisc:           "track_disc",
	TrackNumber:         "track_number",
	MusicBrainzArtistID: "musicbrainz_artist_id",
	MusicBrainzAlbumID:  "musicbrainz_album_id",
	MusicBrainzTrackID:  "musicbrainz_track_id",
	ArtistID:            "artist_id",
	AlbumID:             "album_id",
	TrackID:             "track_id",
}

func (t Tag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("tag(%d)", int(t))
}

// Kind returns the value type of the tag.
func (t Tag) Kind() Kind {
	switch t {
	case TrackDisc, TrackNumber:
		return KindPosition
	case MusicBrainzArtistID, MusicBrainzAlbumID, MusicBrainzTrackID, ArtistID, AlbumID, TrackID:
		return KindID
	default:
		return KindText
	}
}

// Sentinel errors. The typed errors below match them with errors.Is.
var (
	ErrMissingTag        = errors.New("tag not present")
	ErrCorruptTag        = errors.New("corrupt tag")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrMultipleValues    = errors.New("multiple values for single-valued tag")
	ErrWrongKind         = errors.New("tag does not hold this kind of value")
)

// MissingTagError is returned by the non-Lookup getters when a tag is absent.
type MissingTagError struct {
	Path string
	Tag  Tag
}

func (e *MissingTagError) Error() string {
	return fmt.Sprintf("%s: tag %s not present", e.Path, e.Tag)
}

func (e *MissingTagError) Unwrap() error { return ErrMissingTag }

// CorruptTagError reports a native value that cannot be decoded.
type CorruptTagError struct {
	Path  string
	Tag   Tag
	Value string
	Err   error
}

func (e *CorruptTagError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: corrupt %s value %q: %v", e.Path, e.Tag, e.Value, e.Err)
	}
	return fmt.Sprintf("%s: corrupt %s value %q", e.Path, e.Tag, e.Value)
}

func (e *CorruptTagError) Is(target error) bool { return target == ErrCorruptTag }

func (e *CorruptTagError) Unwrap() error { return e.Err }

// UnsupportedFormatError reports a file whose container could not be used.
type UnsupportedFormatError struct {
	Path   string
	Reason string
	Err    error
}

func (e *UnsupportedFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: unsupported format: %s: %v", e.Path, e.Reason, e.Err)
	}
	return fmt.Sprintf("%s: unsupported format: %s", e.Path, e.Reason)
}

func (e *UnsupportedFormatError) Is(target error) bool { return target == ErrUnsupportedFormat }

func (e *UnsupportedFormatError) Unwrap() error { return e.Err }

// MultipleValuesError reports a native key holding several values where one
// is expected.
type MultipleValuesError struct {
	Path   string
	Tag    Tag
	Key    string
	Values []string
}

func (e *MultipleValuesError) Error() string {
	return fmt.Sprintf("%s: %s (%s) has %d values, expected one", e.Path, e.Tag, e.Key, len(e.Values))
}

func (e *MultipleValuesError) Unwrap() error { return ErrMultipleValues }

// IsFileError reports whether err is a per-file tag problem that batch
// operations skip over.
func IsFileError(err error) bool {
	return errors.Is(err, ErrCorruptTag) ||
		errors.Is(err, ErrUnsupportedFormat) ||
		errors.Is(err, ErrMultipleValues) ||
		errors.Is(err, ErrMissingTag)
}
