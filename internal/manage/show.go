package manage

import (
	"fmt"
	"strconv"

	"github.com/llehouerou/crate/internal/tabular"
)

// ShowAlbumTracks lists the tracks of a chosen album. Tracks whose number is
// not their 1-based position in the list are flagged.
func (m *Manager) ShowAlbumTracks() error {
	artist, album, err := m.selectAlbum()
	if err != nil {
		return err
	}
	tracks, err := m.Catalog.ListTracks(album.ID)
	if err != nil {
		return err
	}

	rows := make([][]string, len(tracks))
	for i, t := range tracks {
		note := ""
		if t.Number == nil || *t.Number != i+1 {
			note = "invalid track number: " + optInt(t.Number)
		}
		rows[i] = []string{strconv.Itoa(i + 1), optInt(t.Disc), t.Title, t.SafeTitle, note}
	}

	m.println(fmt.Sprintf("%s: %s", artist.DisplayTitle(), album.DisplayTitle()))
	m.println(tabular.Render(
		[]string{"#", "Disc", "Title", "Safe title", ""},
		rows,
		[]tabular.Align{tabular.Right, tabular.Right},
	))
	return nil
}
