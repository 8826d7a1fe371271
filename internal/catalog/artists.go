package catalog

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/llehouerou/crate/internal/db"
	"github.com/llehouerou/crate/internal/errmsg"
)

const artistColumns = `id, uuid, title, safe_title, disambiguator, sort_title`

func scanArtist(row scanner) (*Artist, error) {
	var (
		a             Artist
		id            string
		disambiguator sql.NullString
		sortTitle     sql.NullString
	)
	if err := row.Scan(&a.ID, &id, &a.Title, &a.SafeTitle, &disambiguator, &sortTitle); err != nil {
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

// QueryArtist finds an artist by its natural key. It returns nil, nil when
// there is none.
func (s *Store) QueryArtist(title string, disambiguator *string) (*Artist, error) {
	a, err := scanArtist(s.ex.QueryRow(`
		SELECT `+artistColumns+` FROM artists
		WHERE title = ? AND disambiguator IS ?
	`, title, db.NullStringFromPtr(disambiguator)))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query artist %q: %w", title, err)
	}
	return a, nil
}

// ArtistByID returns the artist with the given id or ErrNotFound.
func (s *Store) ArtistByID(id int64) (*Artist, error) {
	a, err := scanArtist(s.ex.QueryRow(`SELECT `+artistColumns+` FROM artists WHERE id = ?`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("artist with ID %d: %w", id, ErrNotFound)
	}
	return a, err
}

// ArtistByUUID returns the artist with the given uuid or ErrNotFound.
func (s *Store) ArtistByUUID(id uuid.UUID) (*Artist, error) {
	a, err := scanArtist(s.ex.QueryRow(`SELECT `+artistColumns+` FROM artists WHERE uuid = ?`, id.String()))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("artist with UUID %s: %w", id, ErrNotFound)
	}
	return a, err
}

// CreateArtist inserts an artist with a new uuid. A natural-key collision
// is a ReportableError asking for a disambiguator.
func (s *Store) CreateArtist(title, safeTitle string, disambiguator, sortTitle *string) (*Artist, error) {
	a := &Artist{
		UUID:          uuid.New(),
		Title:         title,
		SafeTitle:     safeTitle,
		Disambiguator: disambiguator,
		SortTitle:     sortTitle,
	}
	err := s.ex.QueryRow(`
		INSERT OR IGNORE INTO artists (uuid, title, safe_title, disambiguator, sort_title)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`, a.UUID.String(), title, safeTitle,
		db.NullStringFromPtr(disambiguator), db.NullStringFromPtr(sortTitle),
	).Scan(&a.ID)
	if errors.Is(err, sql.ErrNoRows) {
		if disambiguator == nil {
			return nil, errmsg.Reportable(
				"Artist %q with safe title %q is not unique: specify a unique disambiguator",
				title, safeTitle)
		}
		return nil, errmsg.Reportable(
			"Artist %q with safe title %q and disambiguator %q is not unique: specify a different disambiguator",
			title, safeTitle, *disambiguator)
	}
	if err != nil {
		return nil, fmt.Errorf("insert artist %q: %w", title, err)
	}
	return a, nil
}

// UpdateArtist writes every column of a. A missing row is ErrStaleRow.
func (s *Store) UpdateArtist(a *Artist) error {
	res, err := s.ex.Exec(`
		UPDATE artists
		SET title = ?, safe_title = ?, disambiguator = ?, sort_title = ?
		WHERE id = ?
	`, a.Title, a.SafeTitle, db.NullStringFromPtr(a.Disambiguator), db.NullStringFromPtr(a.SortTitle), a.ID)
	if isUniqueViolation(err) {
		return errmsg.Wrap(err, fmt.Sprintf("Artist %q is not unique", a.DisplayTitle()))
	}
	if err != nil {
		return fmt.Errorf("update artist with ID %d: %w", a.ID, err)
	}
	return expectOne(res, "update artist", a.ID)
}

// ListArtists returns every artist ordered by sort title, then title.
func (s *Store) ListArtists() ([]Artist, error) {
	rows, err := s.ex.Query(`
		SELECT ` + artistColumns + ` FROM artists
		ORDER BY COALESCE(sort_title, title) COLLATE NOCASE, id
	`)
	if err != nil {
		return nil, fmt.Errorf("list artists: %w", err)
	}
	defer rows.Close()

	var artists []Artist
	for rows.Next() {
		a, err := scanArtist(rows)
		if err != nil {
			return nil, err
		}
		artists = append(artists, *a)
	}
	return artists, rows.Err()
}

// DeleteCounts reports how many rows a cascading delete removed.
type DeleteCounts struct {
	Files  int64
	Tracks int64
	Albums int64
}

// DeleteArtist removes an artist with its albums, tracks and file rows.
// Run it inside Update so the deletes commit together.
func (s *Store) DeleteArtist(id int64) (DeleteCounts, error) {
	var counts DeleteCounts

	steps := []struct {
		query string
		args  []any
		n     *int64
	}{
		{
			`DELETE FROM files WHERE artist_id = ?
				OR album_id IN (SELECT id FROM albums WHERE artist_id = ?)`,
			[]any{id, id}, &counts.Files,
		},
		{
			`DELETE FROM tracks WHERE album_id IN (SELECT id FROM albums WHERE artist_id = ?)`,
			[]any{id}, &counts.Tracks,
		},
		{`DELETE FROM albums WHERE artist_id = ?`, []any{id}, &counts.Albums},
	}
	for _, step := range steps {
		res, err := s.ex.Exec(step.query, step.args...)
		if err != nil {
			return counts, fmt.Errorf("delete artist with ID %d: %w", id, err)
		}
		if *step.n, err = res.RowsAffected(); err != nil {
			return counts, err
		}
	}

	res, err := s.ex.Exec(`DELETE FROM artists WHERE id = ?`, id)
	if err != nil {
		return counts, fmt.Errorf("delete artist with ID %d: %w", id, err)
	}
	return counts, expectOne(res, "delete artist", id)
}

// ReparentAlbums moves the albums of others to survivor and returns the
// number of albums moved.
func (s *Store) ReparentAlbums(survivor int64, others []int64) (int64, error) {
	args := append([]any{survivor}, int64Args(others)...)
	res, err := s.ex.Exec(`
		UPDATE albums SET artist_id = ?
		WHERE artist_id IN (`+placeholders(len(others))+`)
	`, args...)
	if isUniqueViolation(err) {
		return 0, errmsg.Wrap(err, "Artists share an album title: merge those albums first")
	}
	if err != nil {
		return 0, fmt.Errorf("reparent albums: %w", err)
	}
	return res.RowsAffected()
}

// DeleteArtists removes the artists with the given ids. They must no longer
// own albums or files.
func (s *Store) DeleteArtists(ids []int64) (int64, error) {
	res, err := s.ex.Exec(`DELETE FROM artists WHERE id IN (`+placeholders(len(ids))+`)`, int64Args(ids)...)
	if err != nil {
		return 0, fmt.Errorf("delete artists: %w", err)
	}
	return res.RowsAffected()
}
