package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/llehouerou/crate/internal/catalog"
	"github.com/llehouerou/crate/internal/errmsg"
	"github.com/llehouerou/crate/internal/retag"
)

func newRetagCommand(c *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "retag",
		Short: "Rewrite tags from the catalog and move files to their canonical paths",
		Long: "Retag rewrites the display tags of every cataloged file and moves it\n" +
			"under retag.misc_dir, or under retag.music_dir for MusicBrainz files.\n" +
			"Without --dry-run=false only the intended changes are logged.",
		Args:        cobra.NoArgs,
		Annotations: annotate(errmsg.OpRetag),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("dry-run") {
				dryRun = c.config.IsDryRun()
			}
			return c.timed(cmd, func(ctx context.Context) error {
				if !c.config.HasRetagDirs() {
					return errmsg.Reportable("Set retag.misc_dir and retag.music_dir in the configuration")
				}
				return c.withCatalog(false, func(cat *catalog.Catalog) error {
					res, err := retag.Run(ctx, retag.Options{
						Catalog:  cat,
						MiscDir:  c.config.Retag.MiscDir,
						MusicDir: c.config.Retag.MusicDir,
						DryRun:   dryRun,
						Logger:   c.logger,
					})
					printRetagSummary(c.stdio.Out, res, dryRun)
					return err
				})
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", true, "Only log what would change")
	return cmd
}
