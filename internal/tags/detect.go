package tags

import (
	"bytes"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/dhowden/tag"
)

// Detect sniffs the container format of path from its content. The file
// extension is ignored.
func Detect(path string) (Format, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	head := make([]byte, 16)
	n, err := io.ReadFull(f, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) {
		return "", &UnsupportedFormatError{Path: path, Reason: "file too short", Err: err}
	}
	head = head[:n]

	tagFormat, fileType, idErr := tag.Identify(seekStart(f))
	if idErr == nil {
		switch {
		case fileType == tag.FLAC:
			return FormatFLAC, nil
		case fileType == tag.OGG:
			return FormatOgg, nil
		case tagFormat == tag.MP4:
			return FormatM4A, nil
		case tagFormat == tag.ID3v2_2 || tagFormat == tag.ID3v2_3 || tagFormat == tag.ID3v2_4:
			// Some taggers prepend ID3v2 to FLAC streams.
			if hasFLACAfterID3(f) {
				return FormatFLAC, nil
			}
			return FormatMP3, nil
		case tagFormat == tag.ID3v1:
			return FormatMP3, nil
		}
	}

	if isMPEGFrameSync(head) {
		return FormatMP3, nil
	}

	reason := "unrecognized content"
	if idErr != nil && !errors.Is(idErr, tag.ErrNoTagsFound) {
		reason = idErr.Error()
	} else if tagFormat != "" || fileType != "" {
		reason = string(tagFormat) + " " + string(fileType)
	}
	return "", &UnsupportedFormatError{Path: path, Reason: strings.TrimSpace(reason)}
}

// seekStart rewinds f before handing it to a sniffer.
func seekStart(f *os.File) *os.File {
	_, _ = f.Seek(0, io.SeekStart)
	return f
}

// isMPEGFrameSync reports whether b starts with an MPEG audio frame header.
func isMPEGFrameSync(b []byte) bool {
	return len(b) >= 2 && b[0] == 0xff && b[1]&0xe0 == 0xe0
}

// hasFLACAfterID3 reports whether an ID3v2 block is followed by a FLAC stream.
func hasFLACAfterID3(f *os.File) bool {
	size, err := id3v2Size(f)
	if err != nil {
		return false
	}
	magic := make([]byte, 4)
	if _, err := f.ReadAt(magic, size); err != nil {
		return false
	}
	return bytes.Equal(magic, []byte("fLaC"))
}

// id3v2Size returns the size of the ID3v2 block at the start of r, including
// its header, extended header and footer.
func id3v2Size(r io.ReaderAt) (int64, error) {
	header := make([]byte, 10)
	if _, err := r.ReadAt(header, 0); err != nil {
		return 0, err
	}
	if !bytes.Equal(header[:3], []byte(id3Magic)) {
		return 0, errors.New("no ID3v2 header")
	}

	// Size is stored in bytes 6-9 as syncsafe integer (7 bits per byte)
	size := int64(10)
	size += int64(header[6]&0x7f)<<21 |
		int64(header[7]&0x7f)<<14 |
		int64(header[8]&0x7f)<<7 |
		int64(header[9]&0x7f)

	// Footer flag, ID3v2.4 only
	if header[5]&0x10 != 0 {
		size += 10
	}
	return size, nil
}

// IsMusicFile returns true if the path has a music file extension. Only used
// to pre-filter directory walks; Open still sniffs the content.
func IsMusicFile(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ExtMP3, ExtFLAC, ExtOPUS, ExtOGG, ExtOGA, ExtM4A, ExtMP4:
		return true
	}
	return false
}
