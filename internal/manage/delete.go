package manage

import (
	"github.com/llehouerou/crate/internal/catalog"
)

// DeleteTrack removes a chosen track and its file row after confirmation.
// The file itself is left on disk.
func (m *Manager) DeleteTrack() error {
	t, err := m.selectTrack()
	if err != nil {
		return err
	}
	f, err := m.Catalog.FileByTrackID(t.ID)
	if err != nil {
		return err
	}
	m.showItem("Track", trackFields(t))
	m.showItem("File", fileFields(f))

	ok, err := m.UI.Confirm("Delete this track from the catalog?")
	if err != nil {
		return err
	}
	if !ok {
		m.logger().Info("operation cancelled")
		return nil
	}

	err = m.Catalog.Update(func(s *catalog.Store) error {
		if err := s.DeleteFile(f.ID); err != nil {
			return err
		}
		return s.DeleteTrack(t.ID)
	})
	if err != nil {
		return err
	}
	m.logger().Info("deleted track", "track_id", t.ID, "file_id", f.ID)
	return nil
}

// DeleteArtist removes a chosen artist with its albums, tracks and file
// rows after confirmation.
func (m *Manager) DeleteArtist() error {
	a, err := m.selectArtist()
	if err != nil {
		return err
	}
	m.showItem("Artist", artistFields(a))

	ok, err := m.UI.Confirm("Delete this artist and all its albums and tracks from the catalog?")
	if err != nil {
		return err
	}
	if !ok {
		m.logger().Info("operation cancelled")
		return nil
	}

	var counts catalog.DeleteCounts
	err = m.Catalog.Update(func(s *catalog.Store) error {
		var err error
		counts, err = s.DeleteArtist(a.ID)
		return err
	})
	if err != nil {
		return err
	}
	m.logger().Info("deleted artist", "id", a.ID,
		"files", counts.Files, "tracks", counts.Tracks, "albums", counts.Albums)
	return nil
}
