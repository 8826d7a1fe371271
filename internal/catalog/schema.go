package catalog

import (
	"database/sql"
)

const currentSchemaVersion = 1

// Title uniqueness treats a missing disambiguator as the empty one, and a
// disc-less track as disc 1, so NULLs do not bypass the natural keys.
func initSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (
			version INTEGER PRIMARY KEY
		);

		CREATE TABLE IF NOT EXISTS artists (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			uuid TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			safe_title TEXT NOT NULL UNIQUE,
			disambiguator TEXT,
			sort_title TEXT
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_artists_title
			ON artists(title, IFNULL(disambiguator, ''));

		CREATE TABLE IF NOT EXISTS albums (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			artist_id INTEGER NOT NULL REFERENCES artists(id),
			uuid TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			safe_title TEXT NOT NULL,
			disambiguator TEXT,
			sort_title TEXT,
			UNIQUE(artist_id, safe_title)
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_albums_title
			ON albums(artist_id, title, IFNULL(disambiguator, ''));

		CREATE TABLE IF NOT EXISTS tracks (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			album_id INTEGER NOT NULL REFERENCES albums(id),
			uuid TEXT NOT NULL UNIQUE,
			title TEXT NOT NULL,
			safe_title TEXT NOT NULL,
			disc INTEGER,
			number INTEGER
		);

		CREATE UNIQUE INDEX IF NOT EXISTS idx_tracks_position
			ON tracks(album_id, IFNULL(disc, 1), number);

		CREATE TABLE IF NOT EXISTS files (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			path TEXT NOT NULL UNIQUE,
			rel_path TEXT NOT NULL,
			artist_id INTEGER REFERENCES artists(id),
			album_id INTEGER REFERENCES albums(id),
			track_id INTEGER REFERENCES tracks(id)
		);

		CREATE INDEX IF NOT EXISTS idx_files_artist ON files(artist_id);
		CREATE INDEX IF NOT EXISTS idx_files_album ON files(album_id);
		CREATE INDEX IF NOT EXISTS idx_files_track ON files(track_id);
	`)
	if err != nil {
		return err
	}

	// Set initial version if not exists
	_, err = db.Exec(`
		INSERT OR IGNORE INTO schema_version (version) VALUES (?)
	`, currentSchemaVersion)
	return err
}
