// Package config holds the simulator settings that can be loaded from and
// saved to a JSON file.
package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/sarchlab/y86sim/emu"
)

// Config holds simulator settings.
type Config struct {
	// MemorySize is the size of the unified memory in bytes.
	// Default: 4096.
	MemorySize uint64 `json:"memory_size"`

	// MaxCycles bounds a run. Zero means unbounded.
	// Default: 100000.
	MaxCycles uint64 `json:"max_cycles"`

	// HazardUnit enables load/use stalls, misprediction bubbles and ret
	// stalls. Without it the pipeline relies on forwarding alone.
	// Default: true.
	HazardUnit bool `json:"hazard_unit"`

	// FrequencyMHz is the core clock when driven by the akita engine.
	// Default: 1000.
	FrequencyMHz float64 `json:"frequency_mhz"`

	// LogLevel is a logrus level name. Default: "warn".
	LogLevel string `json:"log_level"`

	// Trace dumps the pipeline registers every cycle at debug level.
	Trace bool `json:"trace"`
}

// DefaultConfig returns a Config with default values.
func DefaultConfig() *Config {
	return &Config{
		MemorySize:   emu.DefaultMemorySize,
		MaxCycles:    100000,
		HazardUnit:   true,
		FrequencyMHz: 1000,
		LogLevel:     "warn",
	}
}

// LoadConfig loads a Config from a JSON file. Fields missing from the file
// keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return config, nil
}

// SaveConfig writes a Config to a JSON file.
func (c *Config) SaveConfig(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to serialize config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks that the settings can drive a simulation.
func (c *Config) Validate() error {
	if c.MemorySize < 8 {
		return fmt.Errorf("memory_size must be >= 8")
	}
	if c.FrequencyMHz <= 0 {
		return fmt.Errorf("frequency_mhz must be > 0")
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (logrus.Level, error) {
	level, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return logrus.InfoLevel, fmt.Errorf("log_level: %w", err)
	}
	return level, nil
}

// Clone returns a copy of the Config.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}
