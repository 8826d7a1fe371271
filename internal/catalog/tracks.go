package catalog

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/llehouerou/crate/internal/db"
	"github.com/llehouerou/crate/internal/errmsg"
)

const trackColumns = `id, album_id, uuid, title, safe_title, disc, number`

func scanTrack(row scanner) (*Track, error) {
	var (
		t      Track
		id     string
		disc   sql.NullInt64
		number sql.NullInt64
	)
	if err := row.Scan(&t.ID, &t.AlbumID, &id, &t.Title, &t.SafeTitle, &disc, &number); err != nil {
		return nil, err
	}
	parsed, err := parseUUID(id)
	if err != nil {
		return nil, err
	}
	t.UUID = parsed
	t.Disc = db.NullIntToPtr(disc)
	t.Number = db.NullIntToPtr(number)
	return &t, nil
}

// QueryTrack finds a track by album, title and position. A nil number only
// matches a NULL column, and a nil disc matches disc 1 as in the unique
// index. It returns nil, nil when there is none.
func (s *Store) QueryTrack(albumID int64, title string, disc, number *int) (*Track, error) {
	t, err := scanTrack(s.ex.QueryRow(`
		SELECT `+trackColumns+` FROM tracks
		WHERE album_id = ? AND title = ? AND IFNULL(disc, 1) IS IFNULL(?, 1) AND number IS ?
	`, albumID, title, db.NullIntFromPtr(disc), db.NullIntFromPtr(number)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query track %q: %w", title, err)
	}
	return t, nil
}

// TrackByID returns the track with the given id or ErrNotFound.
func (s *Store) TrackByID(id int64) (*Track, error) {
	t, err := scanTrack(s.ex.QueryRow(`SELECT `+trackColumns+` FROM tracks WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("track with ID %d: %w", id, ErrNotFound)
	}
	return t, err
}

// TrackByUUID returns the track with the given uuid or ErrNotFound.
func (s *Store) TrackByUUID(id uuid.UUID) (*Track, error) {
	t, err := scanTrack(s.ex.QueryRow(`SELECT `+trackColumns+` FROM tracks WHERE uuid = ?`, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("track with UUID %s: %w", id, ErrNotFound)
	}
	return t, err
}

// TryCreateTrack inserts a track with a new uuid. It returns nil, nil when
// the album already has a track at that disc and number.
func (s *Store) TryCreateTrack(albumID int64, title, safeTitle string, disc, number *int) (*Track, error) {
	t := &Track{
		AlbumID:   albumID,
		UUID:      uuid.New(),
		Title:     title,
		SafeTitle: safeTitle,
		Disc:      disc,
		Number:    number,
	}
	err := s.ex.QueryRow(`
		INSERT OR IGNORE INTO tracks (album_id, uuid, title, safe_title, disc, number)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`, albumID, t.UUID.String(), title, safeTitle, db.NullIntFromPtr(disc), db.NullIntFromPtr(number),
	).Scan(&t.ID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("insert track %q: %w", title, err)
	}
	return t, nil
}

// CreateTrack is TryCreateTrack with a collision reported as a
// ReportableError.
func (s *Store) CreateTrack(albumID int64, title, safeTitle string, disc, number *int) (*Track, error) {
	t, err := s.TryCreateTrack(albumID, title, safeTitle, disc, number)
	if err != nil {
		return nil, err
	}
	if t == nil {
		return nil, errmsg.Reportable(
			"Track %q with disc %s and number %s for album ID %d is not unique",
			title, formatInt(disc), formatInt(number), albumID)
	}
	return t, nil
}

// UpdateTrack writes every column of t. A missing row is ErrStaleRow.
func (s *Store) UpdateTrack(t *Track) error {
	res, err := s.ex.Exec(`
		UPDATE tracks
		SET album_id = ?, title = ?, safe_title = ?, disc = ?, number = ?
		WHERE id = ?
	`, t.AlbumID, t.Title, t.SafeTitle, db.NullIntFromPtr(t.Disc), db.NullIntFromPtr(t.Number), t.ID)
	if isUniqueViolation(err) {
		return errmsg.Wrap(err, fmt.Sprintf("Track %q is not unique in its album", t.Title))
	}
	if err != nil {
		return fmt.Errorf("update track with ID %d: %w", t.ID, err)
	}
	return expectOne(res, "update track", t.ID)
}

// DeleteTrack removes one track. A missing row is ErrStaleRow.
func (s *Store) DeleteTrack(id int64) error {
	res, err := s.ex.Exec(`DELETE FROM tracks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete track with ID %d: %w", id, err)
	}
	return expectOne(res, "delete track", id)
}

// ListTracks returns the tracks of an album in disc and number order.
func (s *Store) ListTracks(albumID int64) ([]Track, error) {
	rows, err := s.ex.Query(`
		SELECT `+trackColumns+` FROM tracks
		WHERE album_id = ?
		ORDER BY IFNULL(disc, 1), number IS NULL, number, title
	`, albumID)
	if err != nil {
		return nil, fmt.Errorf("list tracks: %w", err)
	}
	defer rows.Close()

	var tracks []Track
	for rows.Next() {
		t, err := scanTrack(rows)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, *t)
	}
	return tracks, rows.Err()
}

func formatInt(p *int) string {
	if p == nil {
		return "none"
	}
	return fmt.Sprint(*p)
}
