package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/llehouerou/crate/internal/errmsg"
	"github.com/llehouerou/crate/internal/fixup"
)

func newPicardFixupCommand(c *commandContext) *cobra.Command {
	var dryRun bool

	cmd := &cobra.Command{
		Use:   "picard-fixup [--dry-run] [DIR]",
		Short: "Apply the configured album fixups to MusicBrainz tagged files",
		Long: "Picard-fixup walks DIR, retag.music_dir by default, and for every file\n" +
			"whose MusicBrainz album id has a [[fixups]] entry, rewrites the album\n" +
			"title tag and moves the file into the configured album directory.",
		Args:        cobra.MaximumNArgs(1),
		Annotations: annotate(errmsg.OpFixup),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := c.config.Retag.MusicDir
			if len(args) == 1 {
				dir = args[0]
			}
			return c.timed(cmd, func(ctx context.Context) error {
				if dir == "" {
					return errmsg.Reportable("Give a directory or set retag.music_dir in the configuration")
				}
				fixups := make([]fixup.Fixup, 0, len(c.config.Fixups))
				for _, fc := range c.config.Fixups {
					f, err := fixup.Parse(fc.AlbumID, fc.Dir, fc.AlbumTitle)
					if err != nil {
						return err
					}
					fixups = append(fixups, f)
				}
				if len(fixups) == 0 {
					return errmsg.Reportable("No [[fixups]] are configured")
				}

				icfg := c.config.GetImportConfig()
				res, err := fixup.Run(ctx, fixup.Options{
					Dir:         dir,
					Fixups:      fixups,
					IgnoreDirs:  icfg.IgnoreDirs,
					IncludeExts: icfg.IncludeExts,
					DryRun:      dryRun,
					Logger:      c.logger,
				})
				printFixupSummary(c.stdio.Out, res, dryRun)
				return err
			})
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Only log what would change")
	return cmd
}
