package catalog

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/llehouerou/crate/internal/db"
	"github.com/llehouerou/crate/internal/errmsg"
)

// setupTestCatalog creates an in-memory catalog with the schema initialized.
func setupTestCatalog(t *testing.T) *Catalog {
	t.Helper()

	sqlDB, err := db.Open(":memory:")
	if err != nil {
		t.Fatalf("failed to open db: %v", err)
	}
	c, err := New(sqlDB)
	if err != nil {
		sqlDB.Close()
		t.Fatalf("failed to init catalog: %v", err)
	}
	t.Cleanup(func() { c.Close() })
	return c
}

func strPtr(s string) *string { return &s }
func intPtr(n int) *int       { return &n }

func mustArtist(t *testing.T, s *Store, title string) *Artist {
	t.Helper()
	a, err := s.CreateArtist(title, title+"_safe", nil, nil)
	if err != nil {
		t.Fatalf("CreateArtist(%q) failed: %v", title, err)
	}
	return a
}

func mustAlbum(t *testing.T, s *Store, artistID int64, title string) *Album {
	t.Helper()
	a, err := s.CreateAlbum(artistID, title, title+"_safe", nil, nil)
	if err != nil {
		t.Fatalf("CreateAlbum(%q) failed: %v", title, err)
	}
	return a
}

func mustTrack(t *testing.T, s *Store, albumID int64, title string, disc, number *int) *Track {
	t.Helper()
	tr, err := s.CreateTrack(albumID, title, title, disc, number)
	if err != nil {
		t.Fatalf("CreateTrack(%q) failed: %v", title, err)
	}
	return tr
}

func TestSchemaIsIdempotent(t *testing.T) {
	c := setupTestCatalog(t)
	if err := initSchema(c.DB()); err != nil {
		t.Fatalf("second initSchema failed: %v", err)
	}
}

func TestCreateAndQueryArtist(t *testing.T) {
	c := setupTestCatalog(t)

	created, err := c.CreateArtist("Björk", "Bjork", nil, strPtr("Bjork"))
	if err != nil {
		t.Fatalf("CreateArtist failed: %v", err)
	}
	if created.UUID == uuid.Nil {
		t.Error("CreateArtist did not assign a uuid")
	}

	got, err := c.QueryArtist("Björk", nil)
	if err != nil {
		t.Fatalf("QueryArtist failed: %v", err)
	}
	if got == nil {
		t.Fatal("QueryArtist returned nil for existing artist")
	}
	if got.ID != created.ID || got.UUID != created.UUID || got.SafeTitle != "Bjork" {
		t.Errorf("QueryArtist = %+v, want %+v", got, created)
	}
	if got.SortTitle == nil || *got.SortTitle != "Bjork" {
		t.Errorf("SortTitle = %v, want Bjork", got.SortTitle)
	}

	missing, err := c.QueryArtist("Nobody", nil)
	if err != nil || missing != nil {
		t.Errorf("QueryArtist(missing) = %v, %v; want nil, nil", missing, err)
	}

	// The disambiguator is part of the natural key.
	other, err := c.QueryArtist("Björk", strPtr("other"))
	if err != nil || other != nil {
		t.Errorf("QueryArtist(with disambiguator) = %v, %v; want nil, nil", other, err)
	}

	byUUID, err := c.ArtistByUUID(created.UUID)
	if err != nil || byUUID.ID != created.ID {
		t.Errorf("ArtistByUUID = %v, %v", byUUID, err)
	}
	if _, err := c.ArtistByID(9999); !errors.Is(err, ErrNotFound) {
		t.Errorf("ArtistByID(missing) error = %v, want ErrNotFound", err)
	}
}

func TestArtistNaturalKeyUniqueness(t *testing.T) {
	c := setupTestCatalog(t)

	if _, err := c.CreateArtist("Air", "Air", nil, nil); err != nil {
		t.Fatalf("CreateArtist failed: %v", err)
	}

	_, err := c.CreateArtist("Air", "Air", nil, nil)
	if !errmsg.IsReportable(err) {
		t.Fatalf("duplicate CreateArtist error = %v, want ReportableError", err)
	}
	want := `Artist "Air" with safe title "Air" is not unique: specify a unique disambiguator`
	if err.Error() != want {
		t.Errorf("error = %q, want %q", err.Error(), want)
	}

	// Same safe title, even with a disambiguator, still collides.
	_, err = c.CreateArtist("Air", "Air", strPtr("French band"), nil)
	if !errmsg.IsReportable(err) {
		t.Fatalf("CreateArtist with taken safe title error = %v, want ReportableError", err)
	}

	a, err := c.CreateArtist("Air", "Air_French_band", strPtr("French band"), nil)
	if err != nil {
		t.Fatalf("CreateArtist with distinct disambiguator failed: %v", err)
	}
	if a.DisplayTitle() != "Air (French band)" {
		t.Errorf("DisplayTitle() = %q", a.DisplayTitle())
	}
}

func TestAlbumNaturalKeyUniqueness(t *testing.T) {
	c := setupTestCatalog(t)
	artist := mustArtist(t, c.Store, "Artist")
	other := mustArtist(t, c.Store, "Other")

	if _, err := c.CreateAlbum(artist.ID, "Live", "Live", nil, nil); err != nil {
		t.Fatalf("CreateAlbum failed: %v", err)
	}
	if _, err := c.CreateAlbum(artist.ID, "Live", "Live", nil, nil); !errmsg.IsReportable(err) {
		t.Errorf("duplicate CreateAlbum error = %v, want ReportableError", err)
	}
	if _, err := c.CreateAlbum(artist.ID, "Live", "Live_1999", strPtr("1999"), nil); err != nil {
		t.Errorf("CreateAlbum with disambiguator failed: %v", err)
	}
	// Uniqueness is per artist.
	if _, err := c.CreateAlbum(other.ID, "Live", "Live", nil, nil); err != nil {
		t.Errorf("CreateAlbum for another artist failed: %v", err)
	}

	albums, err := c.ListAlbums(artist.ID)
	if err != nil {
		t.Fatalf("ListAlbums failed: %v", err)
	}
	if len(albums) != 2 {
		t.Errorf("ListAlbums returned %d albums, want 2", len(albums))
	}
}

func TestAlbumRequiresArtist(t *testing.T) {
	c := setupTestCatalog(t)
	if _, err := c.CreateAlbum(42, "Orphan", "Orphan", nil, nil); err == nil {
		t.Error("CreateAlbum with unknown artist succeeded")
	}
}

func TestTrackCreation(t *testing.T) {
	c := setupTestCatalog(t)
	artist := mustArtist(t, c.Store, "Artist")
	album := mustAlbum(t, c.Store, artist.ID, "Album")

	first := mustTrack(t, c.Store, album.ID, "One", nil, intPtr(1))

	// A disc-less track holds the slot of disc 1.
	tr, err := c.TryCreateTrack(album.ID, "Uno", "Uno", intPtr(1), intPtr(1))
	if err != nil {
		t.Fatalf("TryCreateTrack failed: %v", err)
	}
	if tr != nil {
		t.Errorf("TryCreateTrack on taken slot = %+v, want nil", tr)
	}
	if _, err := c.CreateTrack(album.ID, "Uno", "Uno", nil, intPtr(1)); !errmsg.IsReportable(err) {
		t.Errorf("CreateTrack on taken slot error = %v, want ReportableError", err)
	}

	mustTrack(t, c.Store, album.ID, "Two", intPtr(2), intPtr(1))
	// Tracks without a number never collide.
	mustTrack(t, c.Store, album.ID, "Hidden", nil, nil)
	mustTrack(t, c.Store, album.ID, "Hidden too", nil, nil)

	got, err := c.QueryTrack(album.ID, "One", nil, intPtr(1))
	if err != nil || got == nil || got.ID != first.ID {
		t.Errorf("QueryTrack = %v, %v; want track %d", got, err, first.ID)
	}
	// Disc 1 and no disc are the same slot.
	got, err = c.QueryTrack(album.ID, "One", intPtr(1), intPtr(1))
	if err != nil || got == nil || got.ID != first.ID {
		t.Errorf("QueryTrack with disc 1 = %v, %v; want track %d", got, err, first.ID)
	}
	got, err = c.QueryTrack(album.ID, "Two", nil, intPtr(1))
	if err != nil || got != nil {
		t.Errorf("QueryTrack of disc 2 track without disc = %v, %v; want nil, nil", got, err)
	}
	got, err = c.QueryTrack(album.ID, "Hidden", intPtr(1), nil)
	if err != nil || got == nil || got.Title != "Hidden" {
		t.Errorf("QueryTrack without number = %v, %v; want Hidden", got, err)
	}

	tracks, err := c.ListTracks(album.ID)
	if err != nil {
		t.Fatalf("ListTracks failed: %v", err)
	}
	var titles []string
	for _, tr := range tracks {
		titles = append(titles, tr.Title)
	}
	want := []string{"One", "Hidden", "Hidden too", "Two"}
	if len(titles) != len(want) {
		t.Fatalf("ListTracks = %v, want %v", titles, want)
	}
	for i := range want {
		if titles[i] != want[i] {
			t.Errorf("ListTracks = %v, want %v", titles, want)
			break
		}
	}
}

func TestDiscAndTrackTotals(t *testing.T) {
	c := setupTestCatalog(t)
	artist := mustArtist(t, c.Store, "Artist")
	album := mustAlbum(t, c.Store, artist.ID, "Album")

	total, err := c.DiscTotal(album.ID)
	if err != nil || total != 1 {
		t.Errorf("DiscTotal(empty) = %d, %v; want 1", total, err)
	}

	mustTrack(t, c.Store, album.ID, "a", nil, intPtr(3))
	mustTrack(t, c.Store, album.ID, "b", intPtr(1), intPtr(12))
	mustTrack(t, c.Store, album.ID, "c", intPtr(2), intPtr(7))

	if total, _ := c.DiscTotal(album.ID); total != 2 {
		t.Errorf("DiscTotal = %d, want 2", total)
	}
	if total, _ := c.TrackTotal(album.ID, nil); total != 12 {
		t.Errorf("TrackTotal(disc nil) = %d, want 12", total)
	}
	if total, _ := c.TrackTotal(album.ID, intPtr(2)); total != 7 {
		t.Errorf("TrackTotal(disc 2) = %d, want 7", total)
	}
	if total, _ := c.TrackTotal(album.ID, intPtr(3)); total != 0 {
		t.Errorf("TrackTotal(disc 3) = %d, want 0", total)
	}
}

func TestUpdateStaleRow(t *testing.T) {
	c := setupTestCatalog(t)
	artist := mustArtist(t, c.Store, "Artist")

	artist.Title = "Renamed"
	if err := c.UpdateArtist(artist); err != nil {
		t.Fatalf("UpdateArtist failed: %v", err)
	}
	got, _ := c.ArtistByID(artist.ID)
	if got.Title != "Renamed" {
		t.Errorf("Title = %q, want Renamed", got.Title)
	}

	stale := &Artist{ID: 9999, Title: "Ghost", SafeTitle: "Ghost"}
	if err := c.UpdateArtist(stale); !errors.Is(err, ErrStaleRow) {
		t.Errorf("UpdateArtist(stale) error = %v, want ErrStaleRow", err)
	}
	if err := c.UpdateAlbum(&Album{ID: 9999, ArtistID: artist.ID}); !errors.Is(err, ErrStaleRow) {
		t.Errorf("UpdateAlbum(stale) error = %v, want ErrStaleRow", err)
	}
	if err := c.UpdateTrack(&Track{ID: 9999}); err == nil {
		t.Error("UpdateTrack(stale) succeeded")
	}
	if err := c.DeleteTrack(9999); !errors.Is(err, ErrStaleRow) {
		t.Errorf("DeleteTrack(stale) error = %v, want ErrStaleRow", err)
	}
}

func TestUpdateCollisionIsReportable(t *testing.T) {
	c := setupTestCatalog(t)
	mustArtist(t, c.Store, "First")
	second := mustArtist(t, c.Store, "Second")

	second.Title = "First"
	err := c.UpdateArtist(second)
	if !errmsg.IsReportable(err) {
		t.Errorf("UpdateArtist collision error = %v, want ReportableError", err)
	}
}

func TestRecordFileUpserts(t *testing.T) {
	c := setupTestCatalog(t)
	artist := mustArtist(t, c.Store, "Artist")

	first, err := c.RecordFile("/music/a.flac", "a.flac", nil, nil, nil)
	if err != nil {
		t.Fatalf("RecordFile failed: %v", err)
	}
	if first.TrackID != nil {
		t.Errorf("TrackID = %d, want nil", *first.TrackID)
	}

	second, err := c.RecordFile("/music/a.flac", "x/a.flac", &artist.ID, nil, nil)
	if err != nil {
		t.Fatalf("RecordFile (again) failed: %v", err)
	}
	if second.ID != first.ID {
		t.Errorf("RecordFile created a second row: %d != %d", second.ID, first.ID)
	}
	if second.ArtistID == nil || *second.ArtistID != artist.ID || second.RelPath != "x/a.flac" {
		t.Errorf("RecordFile did not update the row: %+v", second)
	}

	files, err := c.ListFiles()
	if err != nil || len(files) != 1 {
		t.Fatalf("ListFiles = %v, %v; want 1 file", files, err)
	}

	if err := c.UpdateFilePath(first.ID, "/music/b.flac", "b.flac"); err != nil {
		t.Fatalf("UpdateFilePath failed: %v", err)
	}
	moved, err := c.FileByPath("/music/b.flac")
	if err != nil || moved == nil || moved.ID != first.ID {
		t.Errorf("FileByPath after move = %v, %v", moved, err)
	}
	if err := c.UpdateFilePath(9999, "/x", "x"); !errors.Is(err, ErrStaleRow) {
		t.Errorf("UpdateFilePath(stale) error = %v, want ErrStaleRow", err)
	}
}

func TestUpdateRollsBack(t *testing.T) {
	c := setupTestCatalog(t)
	boom := errors.New("boom")

	err := c.Update(func(s *Store) error {
		if _, err := s.CreateArtist("Temp", "Temp", nil, nil); err != nil {
			return err
		}
		return boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Update error = %v, want boom", err)
	}
	if a, _ := c.QueryArtist("Temp", nil); a != nil {
		t.Error("artist created in a failed Update was committed")
	}
}

func TestDeleteArtistCascade(t *testing.T) {
	c := setupTestCatalog(t)
	artist := mustArtist(t, c.Store, "Artist")
	keep := mustArtist(t, c.Store, "Keep")
	album := mustAlbum(t, c.Store, artist.ID, "Album")
	keptAlbum := mustAlbum(t, c.Store, keep.ID, "Kept")
	t1 := mustTrack(t, c.Store, album.ID, "t1", nil, intPtr(1))
	t2 := mustTrack(t, c.Store, album.ID, "t2", nil, intPtr(2))
	kt := mustTrack(t, c.Store, keptAlbum.ID, "k", nil, intPtr(1))

	for _, tr := range []*Track{t1, t2} {
		path := filepath.Join("/music", tr.Title)
		if _, err := c.RecordFile(path, tr.Title, &artist.ID, &album.ID, &tr.ID); err != nil {
			t.Fatal(err)
		}
	}
	if _, err := c.RecordFile("/music/k", "k", &keep.ID, &keptAlbum.ID, &kt.ID); err != nil {
		t.Fatal(err)
	}

	var counts DeleteCounts
	err := c.Update(func(s *Store) error {
		var err error
		counts, err = s.DeleteArtist(artist.ID)
		return err
	})
	if err != nil {
		t.Fatalf("DeleteArtist failed: %v", err)
	}
	if counts != (DeleteCounts{Files: 2, Tracks: 2, Albums: 1}) {
		t.Errorf("counts = %+v", counts)
	}

	if _, err := c.ArtistByID(artist.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("artist still present: %v", err)
	}
	files, _ := c.ListFiles()
	if len(files) != 1 || files[0].Path != "/music/k" {
		t.Errorf("remaining files = %+v", files)
	}
}

func TestOpenLocksCatalog(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sub", "catalog.db")

	c, err := Open(path)
	if err != nil {
		t.Fatalf("Open failed: %v", err)
	}
	a := mustArtist(t, c.Store, "Persisted")

	if _, err := Open(path); !errmsg.IsReportable(err) {
		t.Errorf("second Open error = %v, want ReportableError", err)
	}
	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("Open after Close failed: %v", err)
	}
	got, err := reopened.ArtistByUUID(a.UUID)
	if err != nil || got.Title != "Persisted" {
		t.Errorf("ArtistByUUID after reopen = %v, %v", got, err)
	}
	reopened.Close()

	fresh, err := Init(path)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	defer fresh.Close()
	artists, err := fresh.ListArtists()
	if err != nil || len(artists) != 0 {
		t.Errorf("ListArtists after Init = %v, %v; want empty", artists, err)
	}
}
