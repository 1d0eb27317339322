// Package config handles configuration loading for the scheduler.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/fluxqueue/fluxqueue/pkg/types"
)

// Config is the top-level scheduler configuration, loaded once at startup
// from a YAML file and treated as read-only thereafter.
type Config struct {
	MapSize              int    `yaml:"map_size"`
	Schedule             string `yaml:"schedule"`
	UseFrontierScheduler bool   `yaml:"use_frontier_scheduler"`
	TieBreak             string `yaml:"tie_break"`
	FixedSeed            bool   `yaml:"fixed_seed"`
	HavocMaxMult         int    `yaml:"havoc_max_mult"`

	TestcaseCache TestcaseCacheConfig `yaml:"testcase_cache"`
	Minimize      MinimizeConfig      `yaml:"minimize"`
}

// TestcaseCacheConfig bounds the in-memory testcase content cache (component H).
type TestcaseCacheConfig struct {
	MaxBytes   int64 `yaml:"max_bytes"`
	MaxEntries int   `yaml:"max_entries"`
}

// MinimizeConfig drives the periodic external minimization round (component I).
type MinimizeConfig struct {
	IntervalSeconds     int    `yaml:"interval_seconds"`
	OutDir              string `yaml:"out_dir"`
	MinimizerPath       string `yaml:"minimizer_path"`
	InstrumentationMode string `yaml:"instrumentation_mode"`
}

// DefaultConfig returns the configuration used when no YAML file is given.
func DefaultConfig() *Config {
	return &Config{
		MapSize:              1 << 16,
		Schedule:             "explore",
		UseFrontierScheduler: false,
		TieBreak:             "priority",
		FixedSeed:            false,
		HavocMaxMult:         8,
		TestcaseCache: TestcaseCacheConfig{
			MaxBytes:   50 * 1024 * 1024,
			MaxEntries: 5000,
		},
		Minimize: MinimizeConfig{
			IntervalSeconds: 300,
			OutDir:          "cmin-out",
		},
	}
}

// Load reads and parses a YAML config file, filling in defaults for any
// field the file leaves zero-valued.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}
	if cfg.MapSize <= 0 {
		cfg.MapSize = DefaultConfig().MapSize
	}
	if cfg.HavocMaxMult <= 0 {
		cfg.HavocMaxMult = DefaultConfig().HavocMaxMult
	}
	return cfg, nil
}

// ScheduleType parses the configured power schedule name.
func (c *Config) ScheduleType() (types.ScheduleType, error) {
	st, ok := types.ParseScheduleType(c.Schedule)
	if !ok {
		return 0, fmt.Errorf("config: unknown schedule %q", c.Schedule)
	}
	return st, nil
}

// TieBreakPolicy parses the configured tie-break policy name.
func (c *Config) TieBreakPolicy() (types.TieBreak, error) {
	tb, ok := types.ParseTieBreak(c.TieBreak)
	if !ok {
		return 0, fmt.Errorf("config: unknown tie_break %q", c.TieBreak)
	}
	return tb, nil
}

// MinimizeInterval converts the configured seconds into a duration.
func (c *Config) MinimizeInterval() time.Duration {
	return time.Duration(c.Minimize.IntervalSeconds) * time.Second
}
