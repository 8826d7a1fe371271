package tags

import (
	"errors"
	"path/filepath"
	"slices"
	"testing"

	"github.com/google/uuid"

	"github.com/llehouerou/crate/internal/position"
	"github.com/llehouerou/crate/internal/tags/tagstest"
)

// fixture creates an untagged file of the given format in a temp dir.
type fixture func(t *testing.T, dir string) string

var nativeFixtures = map[Format]fixture{
	FormatFLAC: func(t *testing.T, dir string) string {
		return tagstest.FLAC(t, filepath.Join(dir, "test.flac"))
	},
	FormatMP3: func(t *testing.T, dir string) string {
		return tagstest.MP3(t, filepath.Join(dir, "test.mp3"))
	},
}

func openFile(t *testing.T, path string) *File {
	t.Helper()
	f, err := Open(path)
	if err != nil {
		t.Fatalf("Open(%s) error = %v", path, err)
	}
	t.Cleanup(func() { _ = f.Close() })
	return f
}

// setAll writes a value for every tag and returns what was written.
func setAll(t *testing.T, f *File) (map[Tag]string, map[Tag]position.Position, map[Tag]uuid.UUID) {
	t.Helper()

	texts := map[Tag]string{
		ArtistTitle: "Sigur Rós",
		AlbumTitle:  "( )",
		TrackTitle:  "Untitled #1",
	}
	positions := map[Tag]position.Position{
		TrackDisc:   position.WithTotal(1, 2),
		TrackNumber: position.New(7),
	}
	ids := map[Tag]uuid.UUID{
		MusicBrainzArtistID: uuid.New(),
		MusicBrainzAlbumID:  uuid.New(),
		MusicBrainzTrackID:  uuid.New(),
		ArtistID:            uuid.New(),
		AlbumID:             uuid.New(),
		TrackID:             uuid.New(),
	}

	for tag, v := range texts {
		if err := f.SetText(tag, v); err != nil {
			t.Fatalf("SetText(%s) error = %v", tag, err)
		}
	}
	for tag, p := range positions {
		if err := f.SetPosition(tag, p); err != nil {
			t.Fatalf("SetPosition(%s) error = %v", tag, err)
		}
	}
	for tag, id := range ids {
		if err := f.SetID(tag, id); err != nil {
			t.Fatalf("SetID(%s) error = %v", tag, err)
		}
	}
	return texts, positions, ids
}

func checkAll(t *testing.T, f *File, texts map[Tag]string, positions map[Tag]position.Position, ids map[Tag]uuid.UUID) {
	t.Helper()

	for tag, want := range texts {
		got, err := f.Text(tag)
		if err != nil {
			t.Errorf("Text(%s) error = %v", tag, err)
			continue
		}
		if got != want {
			t.Errorf("Text(%s) = %q, want %q", tag, got, want)
		}
	}
	for tag, want := range positions {
		got, err := f.Position(tag)
		if err != nil {
			t.Errorf("Position(%s) error = %v", tag, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("Position(%s) = %s, want %s", tag, got, want)
		}
	}
	for tag, want := range ids {
		got, err := f.ID(tag)
		if err != nil {
			t.Errorf("ID(%s) error = %v", tag, err)
			continue
		}
		if got != want {
			t.Errorf("ID(%s) = %s, want %s", tag, got, want)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	for format, create := range nativeFixtures {
		t.Run(string(format), func(t *testing.T) {
			path := create(t, t.TempDir())

			f := openFile(t, path)
			if f.Format() != format {
				t.Fatalf("Format() = %s, want %s", f.Format(), format)
			}
			texts, positions, ids := setAll(t, f)
			if !f.Dirty() {
				t.Fatal("Dirty() = false after edits")
			}
			// Edits are visible before saving.
			checkAll(t, f, texts, positions, ids)

			if err := f.Save(); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			if f.Dirty() {
				t.Error("Dirty() = true after Save")
			}
			_ = f.Close()

			reopened := openFile(t, path)
			checkAll(t, reopened, texts, positions, ids)
		})
	}
}

func TestMissingTags(t *testing.T) {
	for format, create := range nativeFixtures {
		t.Run(string(format), func(t *testing.T) {
			f := openFile(t, create(t, t.TempDir()))

			for _, tag := range AllTags {
				var err error
				switch tag.Kind() {
				case KindText:
					_, ok, lookupErr := f.LookupText(tag)
					if lookupErr != nil || ok {
						t.Errorf("LookupText(%s) = ok %v, err %v; want absent", tag, ok, lookupErr)
					}
					_, err = f.Text(tag)
				case KindPosition:
					_, ok, lookupErr := f.LookupPosition(tag)
					if lookupErr != nil || ok {
						t.Errorf("LookupPosition(%s) = ok %v, err %v; want absent", tag, ok, lookupErr)
					}
					_, err = f.Position(tag)
				case KindID:
					_, ok, lookupErr := f.LookupID(tag)
					if lookupErr != nil || ok {
						t.Errorf("LookupID(%s) = ok %v, err %v; want absent", tag, ok, lookupErr)
					}
					_, err = f.ID(tag)
				}
				if !errors.Is(err, ErrMissingTag) {
					t.Errorf("%s: error = %v, want ErrMissingTag", tag, err)
				}
			}
		})
	}
}

func TestDeleteTag(t *testing.T) {
	for format, create := range nativeFixtures {
		t.Run(string(format), func(t *testing.T) {
			path := create(t, t.TempDir())

			f := openFile(t, path)
			setAll(t, f)
			if err := f.Save(); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			_ = f.Close()

			f = openFile(t, path)
			if err := f.Delete(TrackID); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if err := f.Delete(TrackDisc); err != nil {
				t.Fatalf("Delete() error = %v", err)
			}
			if err := f.Save(); err != nil {
				t.Fatalf("Save() error = %v", err)
			}
			_ = f.Close()

			f = openFile(t, path)
			if _, ok, _ := f.LookupID(TrackID); ok {
				t.Error("TrackID still present after Delete")
			}
			if _, ok, _ := f.LookupPosition(TrackDisc); ok {
				t.Error("TrackDisc still present after Delete")
			}
			if _, ok, _ := f.LookupID(AlbumID); !ok {
				t.Error("AlbumID lost by unrelated Delete")
			}
		})
	}
}

func TestDeleteAbsentIsNoOp(t *testing.T) {
	for format, create := range nativeFixtures {
		t.Run(string(format), func(t *testing.T) {
			f := openFile(t, create(t, t.TempDir()))
			for _, tag := range AllTags {
				if err := f.Delete(tag); err != nil {
					t.Fatalf("Delete(%s) error = %v", tag, err)
				}
			}
			if f.Dirty() {
				t.Error("Dirty() = true after deleting absent tags")
			}
		})
	}
}

func TestSetSameValueNotDirty(t *testing.T) {
	path := tagstest.FLAC(t, filepath.Join(t.TempDir(), "a.flac"), "TITLE=Song", "TRACKNUMBER=3")
	f := openFile(t, path)

	if err := f.SetText(TrackTitle, "Song"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetPosition(TrackNumber, position.New(3)); err != nil {
		t.Fatal(err)
	}
	if f.Dirty() {
		t.Error("Dirty() = true after setting identical values")
	}
}

func TestSetBlankTextDeletes(t *testing.T) {
	path := tagstest.FLAC(t, filepath.Join(t.TempDir(), "a.flac"), "TITLE=Song")
	f := openFile(t, path)

	if err := f.SetText(TrackTitle, "   "); err != nil {
		t.Fatal(err)
	}
	if _, ok, _ := f.LookupText(TrackTitle); ok {
		t.Error("blank SetText did not delete the tag")
	}
}

func TestWrongKind(t *testing.T) {
	f := openFile(t, tagstest.MP3(t, filepath.Join(t.TempDir(), "a.mp3")))

	if _, _, err := f.LookupText(TrackNumber); !errors.Is(err, ErrWrongKind) {
		t.Errorf("LookupText(TrackNumber) error = %v, want ErrWrongKind", err)
	}
	if err := f.SetID(TrackTitle, uuid.New()); !errors.Is(err, ErrWrongKind) {
		t.Errorf("SetID(TrackTitle) error = %v, want ErrWrongKind", err)
	}
	if err := f.SetPosition(AlbumID, position.New(1)); !errors.Is(err, ErrWrongKind) {
		t.Errorf("SetPosition(AlbumID) error = %v, want ErrWrongKind", err)
	}
}

func TestVorbisComments(t *testing.T) {
	tests := []struct {
		name     string
		comments []string
		tag      Tag
		want     string
		wantErr  error
	}{
		{"separate total", []string{"TRACKNUMBER=3", "TRACKTOTAL=12"}, TrackNumber, "3/12", nil},
		{"legacy total key", []string{"DISCNUMBER=1", "TOTALDISCS=2"}, TrackDisc, "1/2", nil},
		{"combined value", []string{"TRACKNUMBER=3/12"}, TrackNumber, "3/12", nil},
		{"agreeing totals", []string{"TRACKNUMBER=3/12", "TRACKTOTAL=12", "TOTALTRACKS=12"}, TrackNumber, "3/12", nil},
		{"conflicting totals", []string{"TRACKNUMBER=3", "TRACKTOTAL=12", "TOTALTRACKS=10"}, TrackNumber, "", ErrCorruptTag},
		{"embedded total mismatch", []string{"TRACKNUMBER=3/10", "TRACKTOTAL=12"}, TrackNumber, "", ErrCorruptTag},
		{"not a number", []string{"TRACKNUMBER=three"}, TrackNumber, "", ErrCorruptTag},
		{"lowercase key", []string{"tracknumber=5"}, TrackNumber, "5", nil},
		{"two values", []string{"TRACKNUMBER=1", "TRACKNUMBER=2"}, TrackNumber, "", ErrMultipleValues},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tagstest.FLAC(t, filepath.Join(t.TempDir(), "a.flac"), tt.comments...)
			f := openFile(t, path)

			got, err := f.Position(tt.tag)
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("Position() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Position() error = %v", err)
			}
			if got.String() != tt.want {
				t.Errorf("Position() = %s, want %s", got, tt.want)
			}
		})
	}
}

func TestMultipleTextValues(t *testing.T) {
	path := tagstest.FLAC(t, filepath.Join(t.TempDir(), "a.flac"), "ALBUMARTIST=A", "ALBUMARTIST=B")
	f := openFile(t, path)

	_, err := f.Text(ArtistTitle)
	var multi *MultipleValuesError
	if !errors.As(err, &multi) {
		t.Fatalf("Text() error = %v, want MultipleValuesError", err)
	}
	if len(multi.Values) != 2 {
		t.Errorf("Values = %v, want 2 entries", multi.Values)
	}
	if !IsFileError(err) {
		t.Error("IsFileError() = false for MultipleValuesError")
	}
}

func TestCorruptID(t *testing.T) {
	path := tagstest.FLAC(t, filepath.Join(t.TempDir(), "a.flac"), "CRATE_TRACK_ID=not-a-uuid")
	f := openFile(t, path)

	_, _, err := f.LookupID(TrackID)
	var corrupt *CorruptTagError
	if !errors.As(err, &corrupt) {
		t.Fatalf("LookupID() error = %v, want CorruptTagError", err)
	}
	if corrupt.Value != "not-a-uuid" {
		t.Errorf("Value = %q, want %q", corrupt.Value, "not-a-uuid")
	}
	if !errors.Is(err, ErrCorruptTag) {
		t.Error("errors.Is(err, ErrCorruptTag) = false")
	}
}

func TestBlankTextIsAbsent(t *testing.T) {
	path := tagstest.FLAC(t, filepath.Join(t.TempDir(), "a.flac"), "ALBUM=  ")
	f := openFile(t, path)

	if _, ok, err := f.LookupText(AlbumTitle); ok || err != nil {
		t.Errorf("LookupText() = ok %v, err %v; want absent", ok, err)
	}
}

func TestRawTags(t *testing.T) {
	path := tagstest.MP3(t, filepath.Join(t.TempDir(), "a.mp3"))
	f := openFile(t, path)
	if err := f.SetText(TrackTitle, "Song"); err != nil {
		t.Fatal(err)
	}
	if err := f.SetID(TrackID, uuid.New()); err != nil {
		t.Fatal(err)
	}
	if err := f.Save(); err != nil {
		t.Fatal(err)
	}
	_ = f.Close()

	f = openFile(t, path)
	got := f.RawTags()
	for _, want := range []string{"TIT2", "TXXX:CRATE_TRACK_ID"} {
		if !slices.Contains(got, want) {
			t.Errorf("RawTags() = %v, missing %s", got, want)
		}
	}
}

func TestMP3UserFramesKeepOthers(t *testing.T) {
	path := tagstest.MP3(t, filepath.Join(t.TempDir(), "a.mp3"))
	f := openFile(t, path)

	artistID, albumID := uuid.New(), uuid.New()
	_ = f.SetID(ArtistID, artistID)
	_ = f.SetID(AlbumID, albumID)
	if err := f.Delete(ArtistID); err != nil {
		t.Fatal(err)
	}

	if _, ok, _ := f.LookupID(ArtistID); ok {
		t.Error("ArtistID still present")
	}
	got, err := f.ID(AlbumID)
	if err != nil || got != albumID {
		t.Errorf("ID(AlbumID) = %s, %v; want %s", got, err, albumID)
	}
}

func TestIsMusicFile(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{"song.mp3", true},
		{"song.FLAC", true},
		{"song.opus", true},
		{"song.m4a", true},
		{"song.ogg", true},
		{"cover.jpg", false},
		{"notes.txt", false},
		{"noext", false},
	}
	for _, tt := range tests {
		if got := IsMusicFile(tt.path); got != tt.want {
			t.Errorf("IsMusicFile(%q) = %v, want %v", tt.path, got, tt.want)
		}
	}
}
