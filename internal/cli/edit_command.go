package cli

import (
	"github.com/spf13/cobra"

	"github.com/llehouerou/crate/internal/errmsg"
	"github.com/llehouerou/crate/internal/manage"
)

func newEditCommand(c *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "edit",
		Short: "Edit catalog entries",
		Long: "Edit prompts for each field in turn. An empty answer keeps the value\n" +
			"and \"(empty)\" clears an optional one.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	for _, sub := range []struct {
		use, short string
		op         errmsg.Op
		run        func(*manage.Manager) error
	}{
		{"artist", "Edit an artist", errmsg.OpEditArtist, (*manage.Manager).EditArtist},
		{"album", "Edit an album", errmsg.OpEditAlbum, (*manage.Manager).EditAlbum},
		{"track", "Edit a track", errmsg.OpEditTrack, (*manage.Manager).EditTrack},
		{"album-tracks", "Edit every track of an album", errmsg.OpEditAlbumTracks, (*manage.Manager).EditAlbumTracks},
	} {
		cmd.AddCommand(&cobra.Command{
			Use:         sub.use,
			Short:       sub.short,
			Args:        cobra.NoArgs,
			Annotations: annotate(sub.op),
			RunE:        c.managed(sub.run),
		})
	}

	return cmd
}

func newDeleteCommand(c *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete catalog entries",
		Long:  "Delete removes entries from the catalog. Files stay on disk.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:         "artist",
		Short:       "Delete an artist with its albums and tracks",
		Args:        cobra.NoArgs,
		Annotations: annotate(errmsg.OpDeleteArtist),
		RunE:        c.managed((*manage.Manager).DeleteArtist),
	})

	cmd.AddCommand(&cobra.Command{
		Use:         "track",
		Short:       "Delete a track",
		Args:        cobra.NoArgs,
		Annotations: annotate(errmsg.OpDeleteTrack),
		RunE:        c.managed((*manage.Manager).DeleteTrack),
	})

	return cmd
}
