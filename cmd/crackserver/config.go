package main

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is crackserver's optional YAML overlay on top of its flag
// defaults: any field the file omits keeps whatever the caller passed in
// as the starting point, matching the teacher's defaults()-then-overlay
// config loading.
type Config struct {
	Addr          string `yaml:"addr"`
	DBPath        string `yaml:"db_path"`
	PoolWorkers   int    `yaml:"pool_workers"`
	BranchWorkers int    `yaml:"branch_workers"`
	LogLevel      string `yaml:"log_level"`
}

// LoadConfig reads path as YAML into a copy of defaults, so flags remain
// the config source when no file is given and the file only needs to name
// the keys it actually wants to change.
func LoadConfig(path string, defaults Config) (Config, error) {
	cfg := defaults
	if strings.TrimSpace(path) == "" {
		return cfg, nil
	}

	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, fmt.Errorf("crackserver config: %w", err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("crackserver config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("crackserver config: %w", err)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("addr must not be empty")
	}
	if strings.TrimSpace(c.DBPath) == "" {
		return fmt.Errorf("db_path must not be empty")
	}
	if c.PoolWorkers <= 0 {
		return fmt.Errorf("pool_workers must be > 0")
	}
	if c.BranchWorkers <= 0 {
		return fmt.Errorf("branch_workers must be > 0")
	}
	return nil
}
