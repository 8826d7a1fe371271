package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/llehouerou/crate/internal/catalog"
	"github.com/llehouerou/crate/internal/errmsg"
	"github.com/llehouerou/crate/internal/merge"
	"github.com/llehouerou/crate/internal/prompt"
)

func newMergeCommand(c *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge duplicate artists or albums",
		Long: "Merge folds the chosen artists or albums into the first one chosen.\n" +
			"Children and files move to the survivor and file tags are rewritten.",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:         "artists",
		Short:       "Merge artists",
		Args:        cobra.NoArgs,
		Annotations: annotate(errmsg.OpMergeArtists),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.timed(cmd, func(ctx context.Context) error {
				return c.withCatalog(false, func(cat *catalog.Catalog) error {
					return c.mergeArtists(ctx, cat)
				})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:         "albums",
		Short:       "Merge albums of one artist",
		Args:        cobra.NoArgs,
		Annotations: annotate(errmsg.OpMergeAlbums),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.timed(cmd, func(ctx context.Context) error {
				return c.withCatalog(false, func(cat *catalog.Catalog) error {
					return c.mergeAlbums(ctx, cat)
				})
			})
		},
	})

	return cmd
}

func (c *commandContext) mergeArtists(ctx context.Context, cat *catalog.Catalog) error {
	artists, err := cat.ListArtists()
	if err != nil {
		return err
	}
	if len(artists) < 2 {
		return errmsg.Reportable("Merging needs at least two artists, the catalog has %d", len(artists))
	}

	ui := c.ui()
	chosen, err := prompt.ChooseSome(ui, "Choose the artists to merge, the first one is kept", artists, nil)
	if err != nil {
		return err
	}
	if len(chosen) < 2 {
		return errmsg.Reportable("Choose at least two artists to merge")
	}

	ok, err := ui.Confirm(fmt.Sprintf("Merge %d artist(s) into %q?", len(chosen)-1, chosen[0].DisplayTitle()))
	if err != nil || !ok {
		if err == nil {
			c.logger.Info("operation cancelled")
		}
		return err
	}

	res, err := merge.Artists(ctx, cat, c.logger, chosen[0], chosen[1:])
	printMergeSummary(c.stdio.Out, "Albums moved", res)
	return err
}

func (c *commandContext) mergeAlbums(ctx context.Context, cat *catalog.Catalog) error {
	albums, err := cat.ListAllAlbums()
	if err != nil {
		return err
	}
	artists, err := cat.ListArtists()
	if err != nil {
		return err
	}
	byID := make(map[int64]string, len(artists))
	for _, a := range artists {
		byID[a.ID] = a.DisplayTitle()
	}
	label := func(a catalog.Album) string {
		return a.DisplayTitle() + " [" + byID[a.ArtistID] + "]"
	}

	ui := c.ui()
	chosen, err := prompt.ChooseSome(ui, "Choose the albums to merge, the first one is kept", albums, label)
	if err != nil {
		return err
	}
	if len(chosen) < 2 {
		return errmsg.Reportable("Choose at least two albums to merge")
	}
	for _, a := range chosen[1:] {
		if a.ArtistID != chosen[0].ArtistID {
			return errmsg.Reportable("Album %q is not by %s, merge the artists first", label(a), byID[chosen[0].ArtistID])
		}
	}

	ok, err := ui.Confirm(fmt.Sprintf("Merge %d album(s) into %q?", len(chosen)-1, label(chosen[0])))
	if err != nil || !ok {
		if err == nil {
			c.logger.Info("operation cancelled")
		}
		return err
	}

	res, err := merge.Albums(ctx, cat, c.logger, chosen[0], chosen[1:])
	printMergeSummary(c.stdio.Out, "Tracks moved", res)
	return err
}
