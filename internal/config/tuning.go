// Package config loads engine tuning parameters from a JSON file. Fields are
// pointers so a partial file overrides only what it names; every consumer goes
// through the Get* accessors, which supply the defaults.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"time"
)

// TuningConfig is the root tuning schema for the positioning engine.
type TuningConfig struct {
	// PoolSize is the shared algorithm worker pool size.
	PoolSize *int `json:"pool_size,omitempty"`

	// AlgorithmTimeout bounds one algorithm variant's execution,
	// as a duration string like "5s".
	AlgorithmTimeout *string `json:"algorithm_timeout,omitempty"`

	// ShutdownGrace bounds how long shutdown waits for in-flight requests,
	// as a duration string like "10s".
	ShutdownGrace *string `json:"shutdown_grace,omitempty"`

	// DatabasePath points at the access point reference database.
	DatabasePath *string `json:"database_path,omitempty"`
}

// EmptyTuningConfig returns a TuningConfig with all fields unset, so every
// accessor falls back to its default.
func EmptyTuningConfig() *TuningConfig {
	return &TuningConfig{}
}

// LoadTuningConfig loads a TuningConfig from a JSON file. The file must have
// a .json extension and stay under the size cap. Fields omitted from the file
// keep their defaults, so partial configs are safe.
func LoadTuningConfig(path string) (*TuningConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyTuningConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate checks that the set fields hold usable values.
func (c *TuningConfig) Validate() error {
	if c.PoolSize != nil && *c.PoolSize < 1 {
		return fmt.Errorf("pool_size must be positive, got %d", *c.PoolSize)
	}
	if c.AlgorithmTimeout != nil && *c.AlgorithmTimeout != "" {
		d, err := time.ParseDuration(*c.AlgorithmTimeout)
		if err != nil {
			return fmt.Errorf("invalid algorithm_timeout '%s': %w", *c.AlgorithmTimeout, err)
		}
		if d <= 0 {
			return fmt.Errorf("algorithm_timeout must be positive, got %s", d)
		}
	}
	if c.ShutdownGrace != nil && *c.ShutdownGrace != "" {
		if _, err := time.ParseDuration(*c.ShutdownGrace); err != nil {
			return fmt.Errorf("invalid shutdown_grace '%s': %w", *c.ShutdownGrace, err)
		}
	}
	return nil
}

// GetPoolSize returns the pool size or the default max(2, NumCPU/2).
func (c *TuningConfig) GetPoolSize() int {
	if c.PoolSize != nil {
		return *c.PoolSize
	}
	n := runtime.NumCPU() / 2
	if n < 2 {
		n = 2
	}
	return n
}

// GetAlgorithmTimeout parses and returns the AlgorithmTimeout as a
// time.Duration.
func (c *TuningConfig) GetAlgorithmTimeout() time.Duration {
	if c.AlgorithmTimeout == nil || *c.AlgorithmTimeout == "" {
		return 5 * time.Second
	}
	d, err := time.ParseDuration(*c.AlgorithmTimeout)
	if err != nil {
		return 5 * time.Second
	}
	return d
}

// GetShutdownGrace parses and returns the ShutdownGrace as a time.Duration.
func (c *TuningConfig) GetShutdownGrace() time.Duration {
	if c.ShutdownGrace == nil || *c.ShutdownGrace == "" {
		return 10 * time.Second
	}
	d, err := time.ParseDuration(*c.ShutdownGrace)
	if err != nil {
		return 10 * time.Second
	}
	return d
}

// GetDatabasePath returns the reference database path or the default.
func (c *TuningConfig) GetDatabasePath() string {
	if c.DatabasePath == nil || *c.DatabasePath == "" {
		return "accesspoints.db"
	}
	return *c.DatabasePath
}
