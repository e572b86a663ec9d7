package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfig_EmptyPathReturnsDefaults(t *testing.T) {
	defaults := Config{Addr: ":9090", DBPath: "./x.db", PoolWorkers: 2, BranchWorkers: 3, LogLevel: "info"}
	cfg, err := LoadConfig("", defaults)
	if err != nil {
		t.Fatalf("LoadConfig(\"\", ...) returned error: %v", err)
	}
	if cfg != defaults {
		t.Fatalf("LoadConfig(\"\", %+v) = %+v, want unchanged defaults", defaults, cfg)
	}
}

func TestLoadConfig_OverlaysOnlyGivenKeys(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "crackserver.yaml")
	if err := os.WriteFile(path, []byte("pool_workers: 16\n"), 0o644); err != nil {
		t.Fatalf("write config fixture: %v", err)
	}

	defaults := Config{Addr: ":8080", DBPath: "./data/crackserver.db", PoolWorkers: 4, BranchWorkers: 4, LogLevel: "info"}
	cfg, err := LoadConfig(path, defaults)
	if err != nil {
		t.Fatalf("LoadConfig(%q, ...) returned error: %v", path, err)
	}
	if cfg.PoolWorkers != 16 {
		t.Fatalf("cfg.PoolWorkers = %d, want 16 (from file)", cfg.PoolWorkers)
	}
	if cfg.Addr != defaults.Addr || cfg.DBPath != defaults.DBPath || cfg.BranchWorkers != defaults.BranchWorkers {
		t.Fatalf("cfg = %+v, want every other field left at its default", cfg)
	}
}

func TestLoadConfig_MissingFileErrors(t *testing.T) {
	_, err := LoadConfig(filepath.Join(t.TempDir(), "missing.yaml"), Config{Addr: ":1", DBPath: "x", PoolWorkers: 1, BranchWorkers: 1})
	if err == nil {
		t.Fatalf("LoadConfig with a nonexistent path should return an error")
	}
}

func TestConfig_ValidateRejectsZeroWorkers(t *testing.T) {
	cfg := Config{Addr: ":8080", DBPath: "db", PoolWorkers: 0, BranchWorkers: 4}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("Validate() should reject PoolWorkers=0")
	}
}

func TestConfig_ValidateRejectsEmptyAddr(t *testing.T) {
	cfg := Config{Addr: "", DBPath: "db", PoolWorkers: 1, BranchWorkers: 1}
	if err := cfg.Validate(); err == nil {
		t.Fatalf("Validate() should reject an empty addr")
	}
}
