package cli

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/llehouerou/crate/internal/catalog"
	"github.com/llehouerou/crate/internal/config"
	"github.com/llehouerou/crate/internal/errmsg"
	"github.com/llehouerou/crate/internal/logging"
	"github.com/llehouerou/crate/internal/manage"
	"github.com/llehouerou/crate/internal/prompt"
)

type commandContext struct {
	stdio IO

	configFlag   string
	catalogFlag  string
	logLevelFlag string

	// started is set once argument parsing succeeded.
	started bool
	config  *config.Config
	logger  *slog.Logger
}

func newCommandContext(stdio IO) *commandContext {
	return &commandContext{stdio: stdio}
}

func (c *commandContext) setup() error {
	cfg, err := config.Load(strings.TrimSpace(c.configFlag))
	if err != nil {
		return errmsg.Wrap(err, "Invalid configuration")
	}
	if c.catalogFlag != "" {
		cfg.CatalogPath = c.catalogFlag
	}
	if c.logLevelFlag != "" {
		cfg.Log.Level = c.logLevelFlag
	}

	logger, err := logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Output: c.stdio.Err,
	})
	if err != nil {
		return errmsg.Wrap(err, "Invalid logging configuration")
	}

	c.config = cfg
	c.logger = logger
	return nil
}

func (c *commandContext) ui() prompt.UI {
	if c.stdio.UI != nil {
		return c.stdio.UI
	}
	return &prompt.Prompter{In: c.stdio.In, Out: c.stdio.Err, PageSize: c.config.GetPageSize()}
}

// withCatalog opens the catalog for the duration of fn. With reset, the
// catalog is recreated empty first.
func (c *commandContext) withCatalog(reset bool, fn func(*catalog.Catalog) error) error {
	path, err := c.config.GetCatalogPath()
	if err != nil {
		return err
	}

	open, op := catalog.Open, errmsg.OpCatalogOpen
	if reset {
		open, op = catalog.Init, errmsg.OpCatalogInit
	}
	cat, err := open(path)
	if err != nil {
		return fmt.Errorf("%s %s: %w", op, path, err)
	}
	c.logger.Debug("catalog opened", "path", path, "reset", reset)
	defer func() {
		if err := cat.Close(); err != nil {
			c.logger.Warn("close catalog", "path", path, logging.Err(err))
		}
	}()
	return fn(cat)
}

func (c *commandContext) manager(cat *catalog.Catalog) *manage.Manager {
	return &manage.Manager{Catalog: cat, UI: c.ui(), Out: c.stdio.Out, Logger: c.logger}
}

// timed runs fn under the command's context and logs how it ended.
func (c *commandContext) timed(cmd *cobra.Command, fn func(context.Context) error) error {
	return logging.Timed(cmd.Context(), c.logger, cmd.CommandPath(), fn)
}

// managed runs a manage operation against the open catalog.
func (c *commandContext) managed(op func(*manage.Manager) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		return c.timed(cmd, func(context.Context) error {
			return c.withCatalog(false, func(cat *catalog.Catalog) error {
				return op(c.manager(cat))
			})
		})
	}
}
