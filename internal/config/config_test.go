//nolint:goconst // test cases intentionally repeat strings for readability
package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("Could not get home dir: %v", err)
	}

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tilde expands to home",
			input:    "~/music",
			expected: filepath.Join(home, "music"),
		},
		{
			name:     "tilde with nested path",
			input:    "~/music/library/albums",
			expected: filepath.Join(home, "music", "library", "albums"),
		},
		{
			name:     "absolute path unchanged",
			input:    "/usr/local/music",
			expected: "/usr/local/music",
		},
		{
			name:     "relative path unchanged",
			input:    "music/albums",
			expected: "music/albums",
		},
		{
			name:     "empty string unchanged",
			input:    "",
			expected: "",
		},
		{
			name:     "tilde only",
			input:    "~",
			expected: home,
		},
		{
			name:     "tilde with slash",
			input:    "~/",
			expected: filepath.Join(home, ""),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := expandPath(tt.input)
			if result != tt.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tt.input, result, tt.expected)
			}
		})
	}
}

func TestGetConfigPaths(t *testing.T) {
	paths := getConfigPaths()

	// Should have at least one path
	if len(paths) == 0 {
		t.Error("getConfigPaths() returned empty slice")
	}

	// Last path should be local config.toml
	lastPath := paths[len(paths)-1]
	if lastPath != "config.toml" {
		t.Errorf("last config path = %q, want %q", lastPath, "config.toml")
	}

	// If we have home dir, first path should be ~/.config/crate/config.toml
	if home, err := os.UserHomeDir(); err == nil {
		expectedFirst := filepath.Join(home, ".config", "crate", "config.toml")
		if paths[0] != expectedFirst {
			t.Errorf("first config path = %q, want %q", paths[0], expectedFirst)
		}
	}
}

// chdirTemp switches to a fresh temp directory for the duration of the test.
func chdirTemp(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	originalWd, err := os.Getwd()
	if err != nil {
		t.Fatalf("could not get working directory: %v", err)
	}
	if err := os.Chdir(tmpDir); err != nil {
		t.Fatalf("could not change to temp directory: %v", err)
	}
	t.Cleanup(func() {
		_ = os.Chdir(originalWd)
	})
	return tmpDir
}

func TestLoad_EmptyConfig(t *testing.T) {
	chdirTemp(t)

	// Create an empty config file
	if err := os.WriteFile("config.toml", []byte(""), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	// Load should succeed even with empty config
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg == nil {
		t.Fatal("Load() returned nil config")
	}

	// Note: Values may be inherited from ~/.config/crate/config.toml if it exists
	// We just verify Load() succeeds and returns a valid config
}

func TestLoad_BasicConfig(t *testing.T) {
	chdirTemp(t)

	configContent := `
catalog_path = "~/crate/catalog.db"

[import]
ignore_dirs = ["@eaDir"]
include_exts = ["FLAC", ".mp3"]

[retag]
misc_dir = "~/Music/misc"
music_dir = "/srv/music"
dry_run = false

[log]
level = "DEBUG"
format = "json"

[ui]
page_size = 5
`
	if err := os.WriteFile("config.toml", []byte(configContent), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	home, _ := os.UserHomeDir()
	if want := filepath.Join(home, "crate", "catalog.db"); cfg.CatalogPath != want {
		t.Errorf("CatalogPath = %q, want %q", cfg.CatalogPath, want)
	}
	if want := filepath.Join(home, "Music", "misc"); cfg.Retag.MiscDir != want {
		t.Errorf("Retag.MiscDir = %q, want %q", cfg.Retag.MiscDir, want)
	}
	if cfg.Retag.MusicDir != "/srv/music" {
		t.Errorf("Retag.MusicDir = %q, want %q", cfg.Retag.MusicDir, "/srv/music")
	}
	if cfg.IsDryRun() {
		t.Error("IsDryRun() = true, want false")
	}
	if cfg.Log.Level != "debug" || cfg.Log.Format != "json" {
		t.Errorf("Log = %+v, want debug/json", cfg.Log)
	}
	if cfg.GetPageSize() != 5 {
		t.Errorf("GetPageSize() = %d, want 5", cfg.GetPageSize())
	}

	imp := cfg.GetImportConfig()
	if len(imp.IgnoreDirs) != 1 || imp.IgnoreDirs[0] != "@eaDir" {
		t.Errorf("IgnoreDirs = %v, want [@eaDir]", imp.IgnoreDirs)
	}
	if len(imp.IncludeExts) != 2 || imp.IncludeExts[0] != ".flac" || imp.IncludeExts[1] != ".mp3" {
		t.Errorf("IncludeExts = %v, want [.flac .mp3]", imp.IncludeExts)
	}
}

func TestLoad_ExplicitOverridesLocal(t *testing.T) {
	dir := chdirTemp(t)

	if err := os.WriteFile("config.toml", []byte("[ui]\npage_size = 5\n[log]\nlevel = \"warn\"\n"), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}
	explicit := filepath.Join(dir, "other.toml")
	if err := os.WriteFile(explicit, []byte("[ui]\npage_size = 9\n"), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	cfg, err := Load(explicit)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.GetPageSize() != 9 {
		t.Errorf("GetPageSize() = %d, want 9", cfg.GetPageSize())
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("Log.Level = %q, want %q (kept from ./config.toml)", cfg.Log.Level, "warn")
	}
}

func TestLoad_Fixups(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	chdirTemp(t)

	content := `
[[fixups]]
album_id = "a8b6d4c2-0000-4000-8000-000000000001"
dir = "Live_1975"
album_title = "Live (1975)"

[[fixups]]
album_id = "a8b6d4c2-0000-4000-8000-000000000002"
dir = "Demos"
album_title = "Demos"
`
	if err := os.WriteFile("config.toml", []byte(content), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	cfg, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(cfg.Fixups) != 2 {
		t.Fatalf("len(Fixups) = %d, want 2", len(cfg.Fixups))
	}
	want := FixupConfig{
		AlbumID:    "a8b6d4c2-0000-4000-8000-000000000001",
		Dir:        "Live_1975",
		AlbumTitle: "Live (1975)",
	}
	if cfg.Fixups[0] != want {
		t.Errorf("Fixups[0] = %+v, want %+v", cfg.Fixups[0], want)
	}
	if cfg.Fixups[1].Dir != "Demos" {
		t.Errorf("Fixups[1].Dir = %q, want %q", cfg.Fixups[1].Dir, "Demos")
	}
}

func TestLoad_ExplicitMissing(t *testing.T) {
	dir := chdirTemp(t)

	if _, err := Load(filepath.Join(dir, "missing.toml")); err == nil {
		t.Error("Load() expected error for missing explicit config, got nil")
	}
}

func TestLoad_InvalidToml(t *testing.T) {
	chdirTemp(t)

	// Create invalid config file
	if err := os.WriteFile("config.toml", []byte("invalid = [[["), 0o600); err != nil {
		t.Fatalf("could not write config file: %v", err)
	}

	if _, err := Load(""); err == nil {
		t.Error("Load() expected error for invalid TOML, got nil")
	}
}

func TestDefaults(t *testing.T) {
	cfg := &Config{}

	if !cfg.IsDryRun() {
		t.Error("IsDryRun() = false, want true by default")
	}
	if cfg.GetPageSize() != defaultPageSize {
		t.Errorf("GetPageSize() = %d, want %d", cfg.GetPageSize(), defaultPageSize)
	}
	if cfg.HasRetagDirs() {
		t.Error("HasRetagDirs() = true with no directories")
	}

	imp := cfg.GetImportConfig()
	if len(imp.IncludeExts) == 0 {
		t.Error("GetImportConfig() has no default extensions")
	}
	for _, ext := range imp.IncludeExts {
		if ext[0] != '.' {
			t.Errorf("extension %q has no leading dot", ext)
		}
	}

	path, err := cfg.GetCatalogPath()
	if err != nil {
		t.Fatalf("GetCatalogPath() error = %v", err)
	}
	if filepath.Base(path) != catalogFileName || filepath.Base(filepath.Dir(path)) != appName {
		t.Errorf("GetCatalogPath() = %q, want .../%s/%s", path, appName, catalogFileName)
	}
}
