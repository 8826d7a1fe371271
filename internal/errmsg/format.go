// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Catalog operations
	OpCatalogOpen Op = "open catalog"
	OpCatalogInit Op = "initialize catalog"
	OpConfigLoad  Op = "load configuration"

	// Import operations
	OpImport     Op = "import music"
	OpImportFile Op = "import file"
	OpImportTags Op = "read file tags"

	// Merge operations
	OpMergeArtists Op = "merge artists"
	OpMergeAlbums  Op = "merge albums"
	OpMergeFile    Op = "rewrite file identifiers"

	// Retag operations
	OpRetag     Op = "retag catalog"
	OpRetagFile Op = "retag file"
	OpFileMove  Op = "move file"

	// Fixup operations
	OpFixup     Op = "fix up MusicBrainz albums"
	OpFixupFile Op = "fix up file"

	// Show operations
	OpShowTracks  Op = "show album tracks"
	OpShowTags    Op = "show tags"
	OpShowRawTags Op = "show raw tags"

	// Edit operations
	OpEditArtist      Op = "edit artist"
	OpEditAlbum       Op = "edit album"
	OpEditTrack       Op = "edit track"
	OpEditAlbumTracks Op = "edit album tracks"

	// Delete operations
	OpDeleteArtist Op = "delete artist"
	OpDeleteTrack  Op = "delete track"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
