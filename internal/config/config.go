// Package config loads crate settings from TOML files.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/adrg/xdg"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const (
	appName         = "crate"
	catalogFileName = "catalog.db"
	defaultPageSize = 20
)

type Config struct {
	// CatalogPath is the SQLite catalog file (default: xdg data dir)
	CatalogPath string `koanf:"catalog_path"`

	Import ImportConfig  `koanf:"import"`
	Retag  RetagConfig   `koanf:"retag"`
	Fixups []FixupConfig `koanf:"fixups"`
	Log    LogConfig     `koanf:"log"`
	UI     UIConfig      `koanf:"ui"`
}

// ImportConfig selects the files an import walks.
type ImportConfig struct {
	IgnoreDirs  []string `koanf:"ignore_dirs"`  // directory names to skip
	IncludeExts []string `koanf:"include_exts"` // e.g. [".flac", ".mp3"]
}

// RetagConfig holds the canonical locations files are moved to.
type RetagConfig struct {
	MiscDir  string `koanf:"misc_dir"`  // root for files identified by the catalog
	MusicDir string `koanf:"music_dir"` // root for files tagged by MusicBrainz
	DryRun   *bool  `koanf:"dry_run"`   // only log intended changes (default: true)
}

// FixupConfig overrides the album of one MusicBrainz release, written as a
// [[fixups]] table.
type FixupConfig struct {
	AlbumID    string `koanf:"album_id"`    // MusicBrainz release id
	Dir        string `koanf:"dir"`         // album directory name
	AlbumTitle string `koanf:"album_title"` // album title tag
}

// LogConfig configures the logger.
type LogConfig struct {
	Level  string `koanf:"level"`  // "debug", "info", "warn", "error" (default: "info")
	Format string `koanf:"format"` // "console" or "json" (default: "console")
}

// UIConfig configures interactive prompts.
type UIConfig struct {
	PageSize int `koanf:"page_size"` // items per page in choosers (default: 20)
}

// Load reads ~/.config/crate/config.toml, then ./config.toml, then the
// explicit path if not empty. Later files override earlier ones. The
// explicit file must exist.
func Load(explicit string) (*Config, error) {
	k := koanf.New(".")

	// Try config files in order of priority (last wins)
	for _, path := range getConfigPaths() {
		if _, err := os.Stat(path); err == nil {
			if err := k.Load(file.Provider(path), toml.Parser()); err != nil {
				return nil, err
			}
		}
	}
	if explicit != "" {
		if err := k.Load(file.Provider(expandPath(explicit)), toml.Parser()); err != nil {
			return nil, err
		}
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}

	cfg.CatalogPath = expandPath(cfg.CatalogPath)
	cfg.Retag.MiscDir = expandPath(cfg.Retag.MiscDir)
	cfg.Retag.MusicDir = expandPath(cfg.Retag.MusicDir)
	cfg.Log.Level = strings.ToLower(strings.TrimSpace(cfg.Log.Level))
	cfg.Log.Format = strings.ToLower(strings.TrimSpace(cfg.Log.Format))

	return cfg, nil
}

func getConfigPaths() []string {
	paths := []string{}

	// 1. ~/.config/crate/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths, filepath.Join(home, ".config", appName, "config.toml"))
	}

	// 2. ./config.toml (pwd)
	paths = append(paths, "config.toml")

	return paths
}

func expandPath(path string) string {
	if path != "" && path[0] == '~' {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, path[1:])
		}
	}
	return path
}

// GetCatalogPath returns the catalog file, defaulting to the xdg data dir.
func (c *Config) GetCatalogPath() (string, error) {
	if c.CatalogPath != "" {
		return c.CatalogPath, nil
	}
	return xdg.DataFile(filepath.Join(appName, catalogFileName))
}

// GetImportConfig returns the import configuration with defaults applied.
func (c *Config) GetImportConfig() ImportConfig {
	cfg := c.Import
	if cfg.IgnoreDirs == nil {
		cfg.IgnoreDirs = []string{".git", ".Trash", "@eaDir", "lost+found"}
	}
	if len(cfg.IncludeExts) == 0 {
		cfg.IncludeExts = []string{".flac", ".mp3", ".m4a", ".mp4", ".ogg", ".oga", ".opus"}
	}
	exts := make([]string, len(cfg.IncludeExts))
	for i, ext := range cfg.IncludeExts {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		exts[i] = ext
	}
	cfg.IncludeExts = exts
	return cfg
}

// IsDryRun reports whether retag only logs (default: true).
func (c *Config) IsDryRun() bool {
	return c.Retag.DryRun == nil || *c.Retag.DryRun
}

// HasRetagDirs returns true if both retag roots are configured.
func (c *Config) HasRetagDirs() bool {
	return c.Retag.MiscDir != "" && c.Retag.MusicDir != ""
}

// GetPageSize returns the chooser page size with defaults applied.
func (c *Config) GetPageSize() int {
	if c.UI.PageSize <= 0 {
		return defaultPageSize
	}
	return c.UI.PageSize
}
