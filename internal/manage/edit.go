package manage

import (
	"strconv"
	"strings"

	"github.com/llehouerou/crate/internal/catalog"
	"github.com/llehouerou/crate/internal/errmsg"
	"github.com/llehouerou/crate/internal/slug"
)

// editor prompts for the fields of one entity and tracks whether any of
// them changed. The first error stops every later prompt.
type editor struct {
	m       *Manager
	changed bool
	err     error
}

func (e *editor) input(label, value string) (string, bool) {
	if e.err != nil {
		return "", false
	}
	v, err := e.m.UI.Input(label, value)
	if err != nil {
		e.err = err
		return "", false
	}
	return strings.TrimSpace(v), true
}

func (e *editor) text(label string, dst *string) {
	v, ok := e.input(label, *dst)
	if !ok || v == *dst {
		return
	}
	if v == emptyValue {
		e.err = errmsg.Reportable("%s cannot be empty", label)
		return
	}
	*dst = v
	e.changed = true
}

// title edits a title, then its safe title. When the title changes the
// safe title is offered recomputed from it.
func (e *editor) title(title, safeTitle *string) {
	old := *title
	e.text("title", title)
	if e.err != nil {
		return
	}
	if *title != old {
		if s := slug.Make(*title); s != "" && s != *safeTitle {
			*safeTitle = s
			e.changed = true
		}
	}
	e.text("safe_title", safeTitle)
	if e.err == nil && slug.Make(*safeTitle) != *safeTitle {
		e.err = errmsg.Reportable("Safe title %q may only contain letters, digits, '-' and '_'", *safeTitle)
	}
}

func (e *editor) optional(label string, dst **string) {
	current := ""
	if *dst != nil {
		current = **dst
	}
	v, ok := e.input(label, current)
	if !ok || v == current {
		return
	}
	if v == emptyValue {
		if *dst != nil {
			*dst = nil
			e.changed = true
		}
		return
	}
	*dst = &v
	e.changed = true
}

func (e *editor) number(label string, dst **int) {
	current := ""
	if *dst != nil {
		current = strconv.Itoa(**dst)
	}
	v, ok := e.input(label, current)
	if !ok || v == current {
		return
	}
	if v == emptyValue {
		if *dst != nil {
			*dst = nil
			e.changed = true
		}
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		e.err = errmsg.Reportable("%s must be a non-negative number, got %q", label, v)
		return
	}
	*dst = &n
	e.changed = true
}

// EditArtist edits the fields of a chosen artist.
func (m *Manager) EditArtist() error {
	a, err := m.selectArtist()
	if err != nil {
		return err
	}
	m.showItem("Artist", artistFields(a))

	e := &editor{m: m}
	e.title(&a.Title, &a.SafeTitle)
	e.optional("disambiguator", &a.Disambiguator)
	e.optional("sort_title", &a.SortTitle)
	if e.err != nil || !e.changed {
		return e.err
	}

	if err := m.Catalog.UpdateArtist(a); err != nil {
		return err
	}
	m.logger().Info("updated artist", "id", a.ID, "title", a.DisplayTitle())
	return nil
}

// EditAlbum edits the fields of a chosen album.
func (m *Manager) EditAlbum() error {
	_, a, err := m.selectAlbum()
	if err != nil {
		return err
	}
	m.showItem("Album", albumFields(a))

	e := &editor{m: m}
	e.title(&a.Title, &a.SafeTitle)
	e.optional("disambiguator", &a.Disambiguator)
	e.optional("sort_title", &a.SortTitle)
	if e.err != nil || !e.changed {
		return e.err
	}

	if err := m.Catalog.UpdateAlbum(a); err != nil {
		return err
	}
	m.logger().Info("updated album", "id", a.ID, "title", a.DisplayTitle())
	return nil
}

// EditTrack edits the fields of a chosen track.
func (m *Manager) EditTrack() error {
	t, err := m.selectTrack()
	if err != nil {
		return err
	}
	_, err = m.editTrack(t)
	return err
}

// EditAlbumTracks edits every track of a chosen album in turn.
func (m *Manager) EditAlbumTracks() error {
	_, album, err := m.selectAlbum()
	if err != nil {
		return err
	}
	tracks, err := m.Catalog.ListTracks(album.ID)
	if err != nil {
		return err
	}
	updated := 0
	for i := range tracks {
		changed, err := m.editTrack(&tracks[i])
		if err != nil {
			return err
		}
		if changed {
			updated++
		}
	}
	m.logger().Info("edited album tracks", "album", album.DisplayTitle(), "updated", updated, "total", len(tracks))
	return nil
}

func (m *Manager) editTrack(t *catalog.Track) (bool, error) {
	m.showItem("Track", trackFields(t))

	e := &editor{m: m}
	e.title(&t.Title, &t.SafeTitle)
	e.number("disc", &t.Disc)
	e.number("number", &t.Number)
	if e.err != nil || !e.changed {
		return false, e.err
	}

	if err := m.Catalog.UpdateTrack(t); err != nil {
		return false, err
	}
	m.logger().Info("updated track", "id", t.ID, "title", t.Title)
	return true, nil
}
