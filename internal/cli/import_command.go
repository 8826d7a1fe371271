package cli

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/llehouerou/crate/internal/catalog"
	"github.com/llehouerou/crate/internal/errmsg"
	"github.com/llehouerou/crate/internal/importer"
)

func newImportCommand(c *commandContext) *cobra.Command {
	var reset bool

	cmd := &cobra.Command{
		Use:   "import [--init] DIR",
		Short: "Import an artist/album/track tree into the catalog",
		Long: "Import walks DIR, resolves every music file to an artist, album and track,\n" +
			"creating them in the catalog when needed, and writes their identifiers\n" +
			"into the file tags.",
		Args:        cobra.ExactArgs(1),
		Annotations: annotate(errmsg.OpImport),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.timed(cmd, func(ctx context.Context) error {
				return c.withCatalog(reset, func(cat *catalog.Catalog) error {
					icfg := c.config.GetImportConfig()
					res, err := importer.Run(ctx, importer.Options{
						Dir:         args[0],
						Catalog:     cat,
						IgnoreDirs:  icfg.IgnoreDirs,
						IncludeExts: icfg.IncludeExts,
						Logger:      c.logger,
					})
					printImportSummary(c.stdio.Out, res)
					return err
				})
			})
		},
	}

	cmd.Flags().BoolVar(&reset, "init", false, "Delete the catalog and start from an empty one")
	return cmd
}
