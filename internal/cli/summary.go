package cli

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"

	"github.com/llehouerou/crate/internal/fixup"
	"github.com/llehouerou/crate/internal/importer"
	"github.com/llehouerou/crate/internal/merge"
	"github.com/llehouerou/crate/internal/retag"
	"github.com/llehouerou/crate/internal/tabular"
)

func count(n int) string {
	return humanize.Comma(int64(n))
}

func printImportSummary(w io.Writer, r importer.Result) {
	rows := [][]string{
		{"Files", count(r.Total), ""},
		{"Artists", count(r.NewArtists), count(r.ExistingArtists)},
		{"Albums", count(r.NewAlbums), count(r.ExistingAlbums)},
		{"Tracks", count(r.NewTracks), count(r.ExistingTracks)},
		{"Skipped (MusicBrainz)", count(r.Skipped), ""},
		{"Failed", count(r.Failed), ""},
	}
	fmt.Fprintln(w, tabular.Render(
		[]string{"Import", "New", "Existing"},
		rows,
		[]tabular.Align{tabular.Left, tabular.Right, tabular.Right},
	))
}

func printMergeSummary(w io.Writer, moved string, r merge.Result) {
	rows := [][]string{
		{moved, humanize.Comma(r.Reparented)},
		{"Merged away", humanize.Comma(r.Deleted)},
		{"Files retagged", count(r.Files)},
		{"Failed files", count(r.Failed)},
	}
	fmt.Fprintln(w, tabular.Render(
		[]string{"Merge", "Count"},
		rows,
		[]tabular.Align{tabular.Left, tabular.Right},
	))
}

func printRetagSummary(w io.Writer, r retag.Result, dryRun bool) {
	title := "Retag"
	if dryRun {
		title = "Retag (dry run)"
	}
	rows := [][]string{
		{"Moved", count(r.Moved)},
		{"Retagged", count(r.Retagged)},
		{"Unchanged", count(r.Unchanged)},
		{"Missing", count(r.Missing)},
		{"Failed", count(r.Failed)},
	}
	fmt.Fprintln(w, tabular.Render(
		[]string{title, "Files"},
		rows,
		[]tabular.Align{tabular.Left, tabular.Right},
	))
}

func printFixupSummary(w io.Writer, r fixup.Result, dryRun bool) {
	title := "Picard fixup"
	if dryRun {
		title = "Picard fixup (dry run)"
	}
	rows := [][]string{
		{"Processed", count(r.Total)},
		{"Fixed up", count(r.Fixed)},
		{"Failed", count(r.Failed)},
	}
	fmt.Fprintln(w, tabular.Render(
		[]string{title, "Files"},
		rows,
		[]tabular.Align{tabular.Left, tabular.Right},
	))
}
