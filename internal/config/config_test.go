package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Reports.Hierarchy != "hierarchy.txt" {
		t.Errorf("default hierarchy file = %q", cfg.Reports.Hierarchy)
	}
	if cfg.Reports.Inventory != "modlist.txt" {
		t.Errorf("default inventory file = %q", cfg.Reports.Inventory)
	}
	if cfg.Reports.Detail != "modinfo.txt" {
		t.Errorf("default detail file = %q", cfg.Reports.Detail)
	}
	if !cfg.Cache.Enabled {
		t.Error("cache should default to enabled")
	}
	if err := Validate(cfg); err != nil {
		t.Errorf("defaults should validate: %v", err)
	}
}

func TestLoadFromPathMissingFileUsesDefaults(t *testing.T) {
	cfg, err := LoadFromPath(filepath.Join(t.TempDir(), "config.yaml"))
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Reports.Detail != "modinfo.txt" {
		t.Errorf("missing file should yield defaults, got %q", cfg.Reports.Detail)
	}
}

func TestLoadFromPathMergesWithDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `reports:
  detail: module_info.rpt
inventory:
  count_tolerance: 5
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("LoadFromPath failed: %v", err)
	}
	if cfg.Reports.Detail != "module_info.rpt" {
		t.Errorf("loaded detail file = %q", cfg.Reports.Detail)
	}
	if cfg.Reports.Hierarchy != "hierarchy.txt" {
		t.Errorf("unset hierarchy file should fall back to default, got %q", cfg.Reports.Hierarchy)
	}
	if cfg.Inventory.CountTolerance != 5 {
		t.Errorf("count tolerance = %d, want 5", cfg.Inventory.CountTolerance)
	}
	if cfg.Output.DefaultFormat != "text" {
		t.Errorf("default format = %q, want text", cfg.Output.DefaultFormat)
	}
}

func TestLoadFromPathInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(":\n :-"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFromPath(path); err == nil {
		t.Error("expected error for invalid yaml")
	}
}

func TestValidateRejectsPathlikeNames(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Reports.Detail = "../escape/modinfo.txt"
	if err := Validate(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestValidateRejectsNegativeTolerance(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Inventory.CountTolerance = -1
	if err := Validate(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestValidateRejectsBadFormat(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Output.DefaultFormat = "xml"
	if err := Validate(cfg); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestFindConfigDirWalksUp(t *testing.T) {
	root := t.TempDir()
	cvqDir := filepath.Join(root, ConfigDirName)
	if err := os.MkdirAll(cvqDir, 0755); err != nil {
		t.Fatal(err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}

	found, err := FindConfigDir(nested)
	if err != nil {
		t.Fatalf("FindConfigDir failed: %v", err)
	}
	if found != cvqDir {
		t.Errorf("found %q, want %q", found, cvqDir)
	}
}

func TestSaveDefault(t *testing.T) {
	dir := t.TempDir()

	path, err := SaveDefault(dir)
	if err != nil {
		t.Fatalf("SaveDefault failed: %v", err)
	}
	cfg, err := LoadFromPath(path)
	if err != nil {
		t.Fatalf("reloading saved config failed: %v", err)
	}
	if cfg.Reports.Detail != "modinfo.txt" {
		t.Errorf("saved config round-trip lost defaults: %q", cfg.Reports.Detail)
	}

	// Second save must refuse to overwrite.
	if _, err := SaveDefault(dir); err == nil {
		t.Error("expected error when config already exists")
	}
}
