package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadFrom(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
default_from = "FRONTMATTER_DATA(\"~/notes\")"
cache_path = "/tmp/krafna-cache.bin"
cache_capacity = 128
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := LoadFrom(path)
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultFrom != `FRONTMATTER_DATA("~/notes")` {
		t.Errorf("DefaultFrom = %q", cfg.DefaultFrom)
	}
	if cfg.CachePath != "/tmp/krafna-cache.bin" || cfg.CacheCapacity != 128 {
		t.Errorf("cfg = %+v", cfg)
	}
}

func TestLoadFromMissingFile(t *testing.T) {
	cfg, err := LoadFrom(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatal(err)
	}
	if cfg.DefaultFrom != "" || cfg.CachePath != "" || cfg.CacheCapacity != 0 {
		t.Errorf("missing file should give defaults, got %+v", cfg)
	}
}

func TestLoadFromMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("default_from = [broken"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadFrom(path); err == nil {
		t.Error("expected error for malformed config")
	}
}
