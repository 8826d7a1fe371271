// Package manage implements the interactive catalog commands: showing,
// editing and deleting entities, and dumping the tags of files.
package manage

import (
	"fmt"
	"io"
	"log/slog"
	"strconv"

	"github.com/llehouerou/crate/internal/catalog"
	"github.com/llehouerou/crate/internal/errmsg"
	"github.com/llehouerou/crate/internal/logging"
	"github.com/llehouerou/crate/internal/prompt"
	"github.com/llehouerou/crate/internal/tabular"
)

// emptyValue is typed to clear an optional field.
const emptyValue = "(empty)"

// Manager runs interactive commands against a catalog.
type Manager struct {
	Catalog *catalog.Catalog
	UI      prompt.UI
	Out     io.Writer
	Logger  *slog.Logger
}

func (m *Manager) logger() *slog.Logger {
	if m.Logger == nil {
		return logging.Discard()
	}
	return m.Logger
}

func (m *Manager) println(s string) {
	fmt.Fprintln(m.Out, s)
}

func (m *Manager) selectArtist() (*catalog.Artist, error) {
	artists, err := m.Catalog.ListArtists()
	if err != nil {
		return nil, err
	}
	if len(artists) == 0 {
		return nil, errmsg.Reportable("The catalog has no artists")
	}
	a, err := prompt.ChooseOne(m.UI, "Choose an artist", artists, nil)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (m *Manager) selectAlbum() (*catalog.Artist, *catalog.Album, error) {
	artist, err := m.selectArtist()
	if err != nil {
		return nil, nil, err
	}
	albums, err := m.Catalog.ListAlbums(artist.ID)
	if err != nil {
		return nil, nil, err
	}
	if len(albums) == 0 {
		return nil, nil, errmsg.Reportable("Artist %q has no albums", artist.DisplayTitle())
	}
	a, err := prompt.ChooseOne(m.UI, "Choose an album by "+artist.DisplayTitle(), albums, nil)
	if err != nil {
		return nil, nil, err
	}
	return artist, &a, nil
}

func (m *Manager) selectTrack() (*catalog.Track, error) {
	_, album, err := m.selectAlbum()
	if err != nil {
		return nil, err
	}
	tracks, err := m.Catalog.ListTracks(album.ID)
	if err != nil {
		return nil, err
	}
	if len(tracks) == 0 {
		return nil, errmsg.Reportable("Album %q has no tracks", album.DisplayTitle())
	}
	t, err := prompt.ChooseOne(m.UI, "Choose a track from "+album.DisplayTitle(), tracks, nil)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// field is one row of an entity dump.
type field struct {
	name  string
	value string
}

func (m *Manager) showItem(kind string, fields []field) {
	rows := make([][]string, len(fields))
	for i, f := range fields {
		rows[i] = []string{f.name, f.value}
	}
	m.println(kind)
	m.println(tabular.Render([]string{"Field", "Value"}, rows, nil))
}

func artistFields(a *catalog.Artist) []field {
	return []field{
		{"id", strconv.FormatInt(a.ID, 10)},
		{"uuid", a.UUID.String()},
		{"title", a.Title},
		{"safe_title", a.SafeTitle},
		{"disambiguator", optString(a.Disambiguator)},
		{"sort_title", optString(a.SortTitle)},
	}
}

func albumFields(a *catalog.Album) []field {
	return []field{
		{"id", strconv.FormatInt(a.ID, 10)},
		{"artist_id", strconv.FormatInt(a.ArtistID, 10)},
		{"uuid", a.UUID.String()},
		{"title", a.Title},
		{"safe_title", a.SafeTitle},
		{"disambiguator", optString(a.Disambiguator)},
		{"sort_title", optString(a.SortTitle)},
	}
}

func trackFields(t *catalog.Track) []field {
	return []field{
		{"id", strconv.FormatInt(t.ID, 10)},
		{"album_id", strconv.FormatInt(t.AlbumID, 10)},
		{"uuid", t.UUID.String()},
		{"title", t.Title},
		{"safe_title", t.SafeTitle},
		{"disc", optInt(t.Disc)},
		{"number", optInt(t.Number)},
	}
}

func fileFields(f *catalog.File) []field {
	return []field{
		{"id", strconv.FormatInt(f.ID, 10)},
		{"path", f.Path},
		{"rel_path", f.RelPath},
		{"artist_id", optInt64(f.ArtistID)},
		{"album_id", optInt64(f.AlbumID)},
		{"track_id", optInt64(f.TrackID)},
	}
}

func optString(s *string) string {
	if s == nil {
		return emptyValue
	}
	return *s
}

func optInt(n *int) string {
	if n == nil {
		return emptyValue
	}
	return strconv.Itoa(*n)
}

func optInt64(n *int64) string {
	if n == nil {
		return emptyValue
	}
	return strconv.FormatInt(*n, 10)
}
