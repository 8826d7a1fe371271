package catalog

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/llehouerou/crate/internal/db"
)

const fileColumns = `id, path, rel_path, artist_id, album_id, track_id`

func scanFile(row scanner) (*File, error) {
	var (
		f                          File
		artistID, albumID, trackID sql.NullInt64
	)
	if err := row.Scan(&f.ID, &f.Path, &f.RelPath, &artistID, &albumID, &trackID); err != nil {
		return nil, err
	}
	f.ArtistID = db.NullInt64ToPtr(artistID)
	f.AlbumID = db.NullInt64ToPtr(albumID)
	f.TrackID = db.NullInt64ToPtr(trackID)
	return &f, nil
}

func scanFiles(rows *sql.Rows, err error) ([]File, error) {
	if err != nil {
		return nil, fmt.Errorf("list files: %w", err)
	}
	defer rows.Close()

	var files []File
	for rows.Next() {
		f, err := scanFile(rows)
		if err != nil {
			return nil, err
		}
		files = append(files, *f)
	}
	return files, rows.Err()
}

// RecordFile inserts a file row, or updates the row already recorded for
// path. Nil ids are stored as NULL.
func (s *Store) RecordFile(path, relPath string, artistID, albumID, trackID *int64) (*File, error) {
	f, err := scanFile(s.ex.QueryRow(`
		INSERT INTO files (path, rel_path, artist_id, album_id, track_id)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(path) DO UPDATE SET
			rel_path = excluded.rel_path,
			artist_id = excluded.artist_id,
			album_id = excluded.album_id,
			track_id = excluded.track_id
		RETURNING `+fileColumns,
		path, relPath,
		db.NullInt64FromPtr(artistID), db.NullInt64FromPtr(albumID), db.NullInt64FromPtr(trackID)))
	if err != nil {
		return nil, fmt.Errorf("record file %s: %w", path, err)
	}
	return f, nil
}

// FileByPath returns the file row for path, or nil, nil.
func (s *Store) FileByPath(path string) (*File, error) {
	f, err := scanFile(s.ex.QueryRow(`SELECT `+fileColumns+` FROM files WHERE path = ?`, path))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return f, err
}

// FileByTrackID returns the file linked to a track or ErrNotFound.
func (s *Store) FileByTrackID(trackID int64) (*File, error) {
	f, err := scanFile(s.ex.QueryRow(`
		SELECT `+fileColumns+` FROM files WHERE track_id = ? ORDER BY id LIMIT 1
	`, trackID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("file for track ID %d: %w", trackID, ErrNotFound)
	}
	return f, err
}

// ListFiles returns every file row ordered by path.
func (s *Store) ListFiles() ([]File, error) {
	return scanFiles(s.ex.Query(`SELECT ` + fileColumns + ` FROM files ORDER BY path`))
}

// FilesByArtists returns the files linked to any of the artists.
func (s *Store) FilesByArtists(ids []int64) ([]File, error) {
	return scanFiles(s.ex.Query(`
		SELECT `+fileColumns+` FROM files
		WHERE artist_id IN (`+placeholders(len(ids))+`)
		ORDER BY path
	`, int64Args(ids)...))
}

// FilesByAlbums returns the files linked to any of the albums.
func (s *Store) FilesByAlbums(ids []int64) ([]File, error) {
	return scanFiles(s.ex.Query(`
		SELECT `+fileColumns+` FROM files
		WHERE album_id IN (`+placeholders(len(ids))+`)
		ORDER BY path
	`, int64Args(ids)...))
}

// RepointFileArtists links the files of others to survivor.
func (s *Store) RepointFileArtists(survivor int64, others []int64) (int64, error) {
	return s.repoint("artist_id", survivor, others)
}

// RepointFileAlbums links the files of others to survivor.
func (s *Store) RepointFileAlbums(survivor int64, others []int64) (int64, error) {
	return s.repoint("album_id", survivor, others)
}

func (s *Store) repoint(column string, survivor int64, others []int64) (int64, error) {
	args := append([]any{survivor}, int64Args(others)...)
	res, err := s.ex.Exec(`
		UPDATE files SET `+column+` = ?
		WHERE `+column+` IN (`+placeholders(len(others))+`)
	`, args...)
	if err != nil {
		return 0, fmt.Errorf("repoint files: %w", err)
	}
	return res.RowsAffected()
}

// UpdateFilePath records a moved file. A missing row is ErrStaleRow.
func (s *Store) UpdateFilePath(id int64, path, relPath string) error {
	res, err := s.ex.Exec(`UPDATE files SET path = ?, rel_path = ? WHERE id = ?`, path, relPath, id)
	if err != nil {
		return fmt.Errorf("update file with ID %d: %w", id, err)
	}
	return expectOne(res, "update file", id)
}

// DeleteFile removes one file row. A missing row is ErrStaleRow.
func (s *Store) DeleteFile(id int64) error {
	res, err := s.ex.Exec(`DELETE FROM files WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete file with ID %d: %w", id, err)
	}
	return expectOne(res, "delete file", id)
}
