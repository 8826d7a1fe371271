package catalog

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/llehouerou/crate/internal/db"
	"github.com/llehouerou/crate/internal/errmsg"
)

const albumColumns = `id, artist_id, uuid, title, safe_title, disambiguator, sort_title`

func scanAlbum(row scanner) (*Album, error) {
	var (
		a             Album
		id            string
		disambiguator sql.NullString
		sortTitle     sql.NullString
	)
	if err := row.Scan(&a.ID, &a.ArtistID, &id, &a.Title, &a.SafeTitle, &disambiguator, &sortTitle); err != nil {
		return nil, err
	}
	parsed, err := parseUUID(id)
	if err != nil {
		return nil, err
	}
	a.UUID = parsed
	a.Disambiguator = db.NullStringToPtr(disambiguator)
	a.SortTitle = db.NullStringToPtr(sortTitle)
	return &a, nil
}

func scanAlbums(rows *sql.Rows, err error) ([]Album, error) {
	if err != nil {
		return nil, fmt.Errorf("list albums: %w", err)
	}
	defer rows.Close()

	var albums []Album
	for rows.Next() {
		a, err := scanAlbum(rows)
		if err != nil {
			return nil, err
		}
		albums = append(albums, *a)
	}
	return albums, rows.Err()
}

// QueryAlbum finds an album by its natural key. It returns nil, nil when
// there is none.
func (s *Store) QueryAlbum(artistID int64, title string, disambiguator *string) (*Album, error) {
	a, err := scanAlbum(s.ex.QueryRow(`
		SELECT `+albumColumns+` FROM albums
		WHERE artist_id = ? AND title = ? AND disambiguator IS ?
	`, artistID, title, db.NullStringFromPtr(disambiguator)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query album %q: %w", title, err)
	}
	return a, nil
}

// AlbumByID returns the album with the given id or ErrNotFound.
func (s *Store) AlbumByID(id int64) (*Album, error) {
	a, err := scanAlbum(s.ex.QueryRow(`SELECT `+albumColumns+` FROM albums WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("album with ID %d: %w", id, ErrNotFound)
	}
	return a, err
}

// AlbumByUUID returns the album with the given uuid or ErrNotFound.
func (s *Store) AlbumByUUID(id uuid.UUID) (*Album, error) {
	a, err := scanAlbum(s.ex.QueryRow(`SELECT `+albumColumns+` FROM albums WHERE uuid = ?`, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("album with UUID %s: %w", id, ErrNotFound)
	}
	return a, err
}

// CreateAlbum inserts an album with a new uuid. A natural-key collision is a
// ReportableError asking for a disambiguator.
func (s *Store) CreateAlbum(artistID int64, title, safeTitle string, disambiguator, sortTitle *string) (*Album, error) {
	a := &Album{
		ArtistID:      artistID,
		UUID:          uuid.New(),
		Title:         title,
		SafeTitle:     safeTitle,
		Disambiguator: disambiguator,
		SortTitle:     sortTitle,
	}
	err := s.ex.QueryRow(`
		INSERT OR IGNORE INTO albums (artist_id, uuid, title, safe_title, disambiguator, sort_title)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING id
	`, artistID, a.UUID.String(), title, safeTitle,
		db.NullStringFromPtr(disambiguator), db.NullStringFromPtr(sortTitle),
	).Scan(&a.ID)
	if errors.Is(err, sql.ErrNoRows) {
		if disambiguator == nil {
			return nil, errmsg.Reportable(
				"Album %q for artist ID %d is not unique: specify a unique disambiguator",
				title, artistID)
		}
		return nil, errmsg.Reportable(
			"Album %q with disambiguator %q for artist ID %d is not unique: specify a different disambiguator",
			title, *disambiguator, artistID)
	}
	if err != nil {
		return nil, fmt.Errorf("insert album %q: %w", title, err)
	}
	return a, nil
}

// UpdateAlbum writes every column of a. A missing row is ErrStaleRow.
func (s *Store) UpdateAlbum(a *Album) error {
	res, err := s.ex.Exec(`
		UPDATE albums
		SET artist_id = ?, title = ?, safe_title = ?, disambiguator = ?, sort_title = ?
		WHERE id = ?
	`, a.ArtistID, a.Title, a.SafeTitle,
		db.NullStringFromPtr(a.Disambiguator), db.NullStringFromPtr(a.SortTitle), a.ID)
	if isUniqueViolation(err) {
		return errmsg.Wrap(err, fmt.Sprintf("Album %q is not unique", a.DisplayTitle()))
	}
	if err != nil {
		return fmt.Errorf("update album with ID %d: %w", a.ID, err)
	}
	return expectOne(res, "update album", a.ID)
}

// ListAlbums returns the albums of an artist ordered by sort title, then
// title.
func (s *Store) ListAlbums(artistID int64) ([]Album, error) {
	return scanAlbums(s.ex.Query(`
		SELECT `+albumColumns+` FROM albums
		WHERE artist_id = ?
		ORDER BY COALESCE(sort_title, title) COLLATE NOCASE, id
	`, artistID))
}

// ListAllAlbums returns every album ordered by sort title, then title.
func (s *Store) ListAllAlbums() ([]Album, error) {
	return scanAlbums(s.ex.Query(`
		SELECT ` + albumColumns + ` FROM albums
		ORDER BY COALESCE(sort_title, title) COLLATE NOCASE, id
	`))
}

// DiscTotal returns the highest disc number of an album. Tracks without a
// disc count as disc 1, and an empty album has one disc.
func (s *Store) DiscTotal(albumID int64) (int, error) {
	var total int
	err := s.ex.QueryRow(`
		SELECT IFNULL(MAX(IFNULL(disc, 1)), 1) FROM tracks WHERE album_id = ?
	`, albumID).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("disc total of album %d: %w", albumID, err)
	}
	return total, nil
}

// TrackTotal returns the highest track number on one disc of an album, or 0
// when no track there is numbered. A nil disc means disc 1.
func (s *Store) TrackTotal(albumID int64, disc *int) (int, error) {
	d := 1
	if disc != nil {
		d = *disc
	}
	var total int
	err := s.ex.QueryRow(`
		SELECT IFNULL(MAX(number), 0) FROM tracks
		WHERE album_id = ? AND IFNULL(disc, 1) = ?
	`, albumID, d).Scan(&total)
	if err != nil {
		return 0, fmt.Errorf("track total of album %d: %w", albumID, err)
	}
	return total, nil
}

// ReparentTracks moves the tracks of others to survivor and returns the
// number of tracks moved.
func (s *Store) ReparentTracks(survivor int64, others []int64) (int64, error) {
	args := append([]any{survivor}, int64Args(others)...)
	res, err := s.ex.Exec(`
		UPDATE tracks SET album_id = ?
		WHERE album_id IN (`+placeholders(len(others))+`)
	`, args...)
	if isUniqueViolation(err) {
		return 0, errmsg.Wrap(err, "Albums have tracks at the same disc and number: renumber them first")
	}
	if err != nil {
		return 0, fmt.Errorf("reparent tracks: %w", err)
	}
	return res.RowsAffected()
}

// DeleteAlbums removes the albums with the given ids. They must no longer
// own tracks or files.
func (s *Store) DeleteAlbums(ids []int64) (int64, error) {
	res, err := s.ex.Exec(`DELETE FROM albums WHERE id IN (`+placeholders(len(ids))+`)`, int64Args(ids)...)
	if err != nil {
		return 0, fmt.Errorf("delete albums: %w", err)
	}
	return res.RowsAffected()
}
