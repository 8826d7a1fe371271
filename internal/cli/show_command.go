package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/llehouerou/crate/internal/errmsg"
	"github.com/llehouerou/crate/internal/fsutil"
	"github.com/llehouerou/crate/internal/manage"
)

func newShowCommand(c *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "show",
		Short: "Show catalog entries and file tags",
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	cmd.AddCommand(&cobra.Command{
		Use:         "album-tracks",
		Short:       "List the tracks of an album",
		Args:        cobra.NoArgs,
		Annotations: annotate(errmsg.OpShowTracks),
		RunE:        c.managed((*manage.Manager).ShowAlbumTracks),
	})

	cmd.AddCommand(&cobra.Command{
		Use:         "tags PATH",
		Short:       "Show the tags crate reads from a file or a directory tree",
		Args:        cobra.ExactArgs(1),
		Annotations: annotate(errmsg.OpShowTags),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.timed(cmd, func(context.Context) error {
				icfg := c.config.GetImportConfig()
				return manage.ShowTags(c.stdio.Out, args[0], fsutil.WalkOptions{
					IgnoreDirs:  icfg.IgnoreDirs,
					IncludeExts: icfg.IncludeExts,
				})
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:         "raw-tags FILE",
		Short:       "Show the native tag keys of a file",
		Args:        cobra.ExactArgs(1),
		Annotations: annotate(errmsg.OpShowRawTags),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.timed(cmd, func(context.Context) error {
				return manage.ShowRawTags(c.stdio.Out, args[0])
			})
		},
	})

	return cmd
}
