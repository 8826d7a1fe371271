//nolint:goconst // test cases intentionally repeat strings for readability
package errmsg

import (
	"errors"
	"fmt"
	"testing"
)

func TestFormat(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpDeleteTrack,
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with operation",
			op:       OpDeleteTrack,
			err:      errors.New("track not found"),
			expected: "Failed to delete track: track not found",
		},
		{
			name:     "import operation",
			op:       OpImport,
			err:      errors.New("permission denied"),
			expected: "Failed to import music: permission denied",
		},
		{
			name:     "merge operation",
			op:       OpMergeAlbums,
			err:      errors.New("select at least two albums"),
			expected: "Failed to merge albums: select at least two albums",
		},
		{
			name:     "catalog operation",
			op:       OpCatalogOpen,
			err:      errors.New("catalog is locked"),
			expected: "Failed to open catalog: catalog is locked",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Format(tt.op, tt.err)
			if result != tt.expected {
				t.Errorf("Format(%q, %v) = %q, want %q", tt.op, tt.err, result, tt.expected)
			}
		})
	}
}

func TestFormatWith(t *testing.T) {
	tests := []struct {
		name     string
		op       Op
		context  string
		err      error
		expected string
	}{
		{
			name:     "nil error returns empty string",
			op:       OpFileMove,
			context:  "song.mp3",
			err:      nil,
			expected: "",
		},
		{
			name:     "formats error with context",
			op:       OpFileMove,
			context:  "song.mp3",
			err:      errors.New("permission denied"),
			expected: "Failed to move file 'song.mp3': permission denied",
		},
		{
			name:     "empty context falls back to Format",
			op:       OpFileMove,
			context:  "",
			err:      errors.New("permission denied"),
			expected: "Failed to move file: permission denied",
		},
		{
			name:     "import with filename context",
			op:       OpImportFile,
			context:  "album.flac",
			err:      errors.New("unsupported format"),
			expected: "Failed to import file 'album.flac': unsupported format",
		},
		{
			name:     "show tags with directory context",
			op:       OpShowTags,
			context:  "/home/user/music",
			err:      errors.New("directory not found"),
			expected: "Failed to show tags '/home/user/music': directory not found",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := FormatWith(tt.op, tt.context, tt.err)
			if result != tt.expected {
				t.Errorf("FormatWith(%q, %q, %v) = %q, want %q", tt.op, tt.context, tt.err, result, tt.expected)
			}
		})
	}
}

func TestOpConstants(t *testing.T) {
	// Verify that Op constants are non-empty and produce valid messages
	ops := []Op{
		OpCatalogOpen, OpCatalogInit, OpConfigLoad,
		OpImport, OpImportFile, OpImportTags,
		OpMergeArtists, OpMergeAlbums, OpMergeFile,
		OpRetag, OpRetagFile, OpFileMove,
		OpFixup, OpFixupFile,
		OpShowTracks, OpShowTags, OpShowRawTags,
		OpEditArtist, OpEditAlbum, OpEditTrack, OpEditAlbumTracks,
		OpDeleteArtist, OpDeleteTrack,
	}

	testErr := errors.New("test error")

	for _, op := range ops {
		t.Run(string(op), func(t *testing.T) {
			if op == "" {
				t.Error("Op constant should not be empty")
			}

			// Verify the format includes the operation
			expected := "Failed to " + string(op) + ": test error"
			if result := Format(op, testErr); result != expected {
				t.Errorf("Format = %q, want %q", result, expected)
			}
		})
	}
}

func TestReportableError(t *testing.T) {
	base := errors.New("UNIQUE constraint failed")

	tests := []struct {
		name    string
		err     error
		message string
	}{
		{
			name:    "formatted message",
			err:     Reportable("Artist %q is not unique", "Air"),
			message: `Artist "Air" is not unique`,
		},
		{
			name:    "wrapped cause",
			err:     Wrap(base, "album exists"),
			message: "album exists: UNIQUE constraint failed",
		},
		{
			name:    "found through fmt wrapping",
			err:     fmt.Errorf("import: %w", Reportable("bad path")),
			message: "import: bad path",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if !IsReportable(tt.err) {
				t.Errorf("IsReportable(%v) = false", tt.err)
			}
			if tt.err.Error() != tt.message {
				t.Errorf("Error() = %q, want %q", tt.err.Error(), tt.message)
			}
		})
	}

	if IsReportable(base) {
		t.Error("IsReportable(plain error) = true")
	}
	if !errors.Is(Wrap(base, "x"), base) {
		t.Error("Wrap does not keep the cause in the chain")
	}
}
