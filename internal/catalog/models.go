package catalog

import (
	"fmt"

	"github.com/google/uuid"
)

// Artist is a row of the artists table. (Title, Disambiguator) and
// SafeTitle are unique.
type Artist struct {
	ID            int64
	UUID          uuid.UUID
	Title         string
	SafeTitle     string
	Disambiguator *string
	SortTitle     *string
}

// Album is a row of the albums table. Within an artist, (Title,
// Disambiguator) and SafeTitle are unique.
type Album struct {
	ID            int64
	ArtistID      int64
	UUID          uuid.UUID
	Title         string
	SafeTitle     string
	Disambiguator *string
	SortTitle     *string
}

// Track is a row of the tracks table. (Disc, Number) is unique within an
// album, a nil Disc counting as disc 1.
type Track struct {
	ID        int64
	AlbumID   int64
	UUID      uuid.UUID
	Title     string
	SafeTitle string
	Disc      *int
	Number    *int
}

// File is the last known location of an audio file. A nil TrackID marks a
// file that was not resolved to catalog entities.
type File struct {
	ID       int64
	Path     string
	RelPath  string
	ArtistID *int64
	AlbumID  *int64
	TrackID  *int64
}

// DisplayTitle returns the title with the disambiguator in parentheses.
func (a Artist) DisplayTitle() string {
	return withDisambiguator(a.Title, a.Disambiguator)
}

func (a Artist) String() string {
	return a.DisplayTitle()
}

// DisplayTitle returns the title with the disambiguator in parentheses.
func (a Album) DisplayTitle() string {
	return withDisambiguator(a.Title, a.Disambiguator)
}

func (a Album) String() string {
	return a.DisplayTitle()
}

func (t Track) String() string {
	switch {
	case t.Disc != nil && t.Number != nil:
		return fmt.Sprintf("%d-%02d %s", *t.Disc, *t.Number, t.Title)
	case t.Number != nil:
		return fmt.Sprintf("%02d %s", *t.Number, t.Title)
	default:
		return t.Title
	}
}

func withDisambiguator(title string, disambiguator *string) string {
	if disambiguator == nil || *disambiguator == "" {
		return title
	}
	return title + " (" + *disambiguator + ")"
}

func parseUUID(s string) (uuid.UUID, error) {
	id, err := uuid.Parse(s)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid uuid %q in catalog: %w", s, err)
	}
	return id, nil
}
