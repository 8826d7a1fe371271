// Package infer derives artist, album and track identity from the location
// of a file in an artist/album/track tree.
package infer

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/llehouerou/crate/internal/errmsg"
	"github.com/llehouerou/crate/internal/position"
	"github.com/llehouerou/crate/internal/slug"
)

var (
	discNumberRe = regexp.MustCompile(`^(\d+)-(\d+)[ \-_.](.+)$`)
	numberRe     = regexp.MustCompile(`^(\d+)[ \-_.](.+)$`)
)

// Info is what a relative path says about a file. Disc and Number are nil
// when the file name carries no position.
type Info struct {
	ArtistTitle     string
	ArtistSafeTitle string
	AlbumTitle      string
	AlbumSafeTitle  string
	TrackTitle      string
	TrackSafeTitle  string
	TrackDisc       *position.Position
	TrackNumber     *position.Position
}

// Parse reads the last three segments of relPath as artist, album and file
// name. File names may start with "DISC-NUMBER" or "NUMBER" followed by a
// space, hyphen, underscore or dot.
func Parse(relPath string) (Info, error) {
	parts := splitPath(relPath)
	if len(parts) < 3 {
		return Info{}, errmsg.Reportable("File path %q does not match expected structure", relPath)
	}
	parts = parts[len(parts)-3:]

	stem := strings.TrimSuffix(parts[2], filepath.Ext(parts[2]))
	disc, number, rest := splitPosition(stem)

	info := Info{
		ArtistTitle:     humanize(parts[0]),
		ArtistSafeTitle: slug.Make(parts[0]),
		AlbumTitle:      humanize(parts[1]),
		AlbumSafeTitle:  slug.Make(parts[1]),
		TrackTitle:      humanize(rest),
		TrackSafeTitle:  slug.Make(rest),
		TrackDisc:       disc,
		TrackNumber:     number,
	}
	for _, s := range []string{info.ArtistSafeTitle, info.AlbumSafeTitle, info.TrackSafeTitle} {
		if s == "" {
			return Info{}, errmsg.Reportable(
				"File path %q has a segment without letters or digits", relPath)
		}
	}
	return info, nil
}

// splitPosition strips a leading disc and track number from a file stem.
// A stem that is only a number is kept whole as the title.
func splitPosition(stem string) (disc, number *position.Position, rest string) {
	if m := discNumberRe.FindStringSubmatch(stem); m != nil {
		if r := trimRest(m[3]); r != "" {
			return parsePos(m[1]), parsePos(m[2]), r
		}
	}
	if m := numberRe.FindStringSubmatch(stem); m != nil {
		if r := trimRest(m[2]); r != "" {
			return nil, parsePos(m[1]), r
		}
	}
	return nil, nil, stem
}

func trimRest(s string) string {
	return strings.TrimLeft(s, "_-. ")
}

func parsePos(digits string) *position.Position {
	n, err := strconv.Atoi(digits)
	if err != nil {
		// Only overflow gets here; treat it as no position.
		return nil
	}
	p := position.New(n)
	return &p
}

func humanize(s string) string {
	return slug.Title(slug.Humanize(s))
}

func splitPath(p string) []string {
	p = filepath.ToSlash(filepath.Clean(p))
	var parts []string
	for _, part := range strings.Split(p, "/") {
		if part != "" && part != "." {
			parts = append(parts, part)
		}
	}
	return parts
}
