package tags

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/go-flac/flacvorbis"
	"github.com/go-flac/go-flac"
)

// Vorbis comment names shared by FLAC and Ogg.
var vorbisKeys = keyTable{
	ArtistTitle:         {keys: []string{"ALBUMARTIST"}},
	AlbumTitle:          {keys: []string{"ALBUM"}},
	TrackTitle:          {keys: []string{"TITLE"}},
	TrackDisc:           {keys: []string{"DISCNUMBER"}, totals: []string{"TOTALDISCS", "DISCTOTAL"}},
	TrackNumber:         {keys: []string{"TRACKNUMBER"}, totals: []string{"TOTALTRACKS", "TRACKTOTAL"}},
	MusicBrainzArtistID: {keys: []string{"MUSICBRAINZ_ALBUMARTISTID"}},
	MusicBrainzAlbumID:  {keys: []string{"MUSICBRAINZ_ALBUMID"}},
	MusicBrainzTrackID:  {keys: []string{"MUSICBRAINZ_RELEASETRACKID"}},
	ArtistID:            {keys: []string{"CRATE_ARTIST_ID"}},
	AlbumID:             {keys: []string{"CRATE_ALBUM_ID"}},
	TrackID:             {keys: []string{"CRATE_TRACK_ID"}},
}

// flacFile keeps Vorbis comments of a FLAC stream. The audio frames are only
// read back when saving.
type flacFile struct {
	codec  fieldCodec
	vendor string
}

func openFLAC(path string) (*flacFile, error) {
	f, _, err := parseFLACWithID3Support(path)
	if err != nil {
		return nil, &UnsupportedFormatError{Path: path, Reason: "invalid FLAC stream", Err: err}
	}

	comments := newPropertyMap()
	vendor := ""
	for _, meta := range f.Meta {
		if meta.Type != flac.VorbisComment {
			continue
		}
		cmts, err := flacvorbis.ParseFromMetaDataBlock(*meta)
		if err != nil {
			return nil, &UnsupportedFormatError{Path: path, Reason: "invalid Vorbis comment block", Err: err}
		}
		vendor = cmts.Vendor
		for _, c := range cmts.Comments {
			key, value, ok := strings.Cut(c, "=")
			if !ok {
				return nil, &UnsupportedFormatError{Path: path, Reason: fmt.Sprintf("malformed comment %q", c)}
			}
			comments.add(key, value)
		}
		break
	}

	return &flacFile{
		codec:  fieldCodec{path: path, store: comments, table: vorbisKeys},
		vendor: vendor,
	}, nil
}

func (f *flacFile) fields() *fieldCodec { return &f.codec }

func (f *flacFile) close() error { return nil }

// save rewrites the comment block in place of the existing one.
func (f *flacFile) save() error {
	path := f.codec.path

	parsed, id3Size, err := parseFLACWithID3Support(path)
	if err != nil {
		return fmt.Errorf("parse file: %w", err)
	}
	// If file had ID3v2 header, strip it first before we can modify tags
	if id3Size > 0 {
		if err := stripID3v2Header(path, id3Size); err != nil {
			return fmt.Errorf("strip ID3v2 header: %w", err)
		}
		parsed, err = flac.ParseFile(path)
		if err != nil {
			return fmt.Errorf("parse file after ID3 strip: %w", err)
		}
	}

	cmts := flacvorbis.New()
	if f.vendor != "" {
		cmts.Vendor = f.vendor
	}
	for _, entry := range f.codec.store.(*propertyMap).entries() {
		key, value, _ := strings.Cut(entry, "=")
		if err := cmts.Add(key, value); err != nil {
			return fmt.Errorf("add %s: %w", key, err)
		}
	}
	block := cmts.Marshal()

	replaced := false
	for i, meta := range parsed.Meta {
		if meta.Type == flac.VorbisComment {
			parsed.Meta[i] = &block
			replaced = true
			break
		}
	}
	if !replaced {
		parsed.Meta = append(parsed.Meta, &block)
	}

	if err := parsed.Save(path); err != nil {
		return fmt.Errorf("save file: %w", err)
	}
	return nil
}

// parseFLACWithID3Support parses a FLAC file, handling ID3v2 headers if present.
// Returns the parsed FLAC file, the size of any ID3v2 header found, and any error.
// When a header is found the returned file is parsed from the bytes after it.
func parseFLACWithID3Support(path string) (*flac.File, int64, error) {
	f, err := flac.ParseFile(path)
	if err == nil {
		return f, 0, nil
	}

	file, openErr := os.Open(path)
	if openErr != nil {
		return nil, 0, err
	}
	defer file.Close()

	id3Size, sizeErr := id3v2Size(file)
	if sizeErr != nil {
		return nil, 0, err
	}
	if _, seekErr := file.Seek(id3Size, io.SeekStart); seekErr != nil {
		return nil, 0, err
	}
	f, parseErr := flac.ParseBytes(file)
	if parseErr != nil {
		return nil, 0, errors.Join(err, parseErr)
	}
	return f, id3Size, nil
}

// stripID3v2Header removes ID3v2 header from a file by rewriting it.
func stripID3v2Header(path string, id3Size int64) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if int64(len(data)) <= id3Size {
		return errors.New("file too small to strip ID3v2 header")
	}

	// Write back without the ID3v2 header, preserving original permissions
	info, err := os.Stat(path)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data[id3Size:], info.Mode().Perm())
}
