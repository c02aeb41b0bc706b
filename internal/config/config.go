// Package config defines service configuration and its layered loading.
package config

import (
	"fmt"
	"runtime"
	"strings"

	"github.com/okian/heataoi/internal/domain/aoi"
	"github.com/okian/heataoi/internal/domain/align"
	"github.com/okian/heataoi/internal/domain/validation"
)

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// LogFormat selects the log handler: text or json.
	LogFormat string `koanf:"log_format"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// QueueSize bounds the asynchronous job queue.
	QueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of identification workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets how many request IDs are remembered.
	DedupeSize int `koanf:"dedupe_size"`

	// TopN and TargetKM are used when a request leaves them unset.
	TopN     int     `koanf:"top_n"`
	TargetKM float64 `koanf:"target_km"`

	// MaxGridCells rejects requests whose largest layer exceeds it.
	MaxGridCells int `koanf:"max_grid_cells"`

	// MaxHotspotLimit caps GET /hotspots?limit.
	MaxHotspotLimit int `koanf:"max_hotspot_limit"`

	// RunRetention bounds the number of runs kept in memory.
	RunRetention int `koanf:"run_retention"`

	// AlignResolution is the default target pixel size for alignment plans.
	AlignResolution float64 `koanf:"align_resolution"`

	// ValidationHalfSize is the default half side of the validation box.
	ValidationHalfSize float64 `koanf:"validation_half_size"`
}

// New creates a Config holding the defaults.
func New() *Config {
	return &Config{
		LogLevel:           "info",
		LogFormat:          "text",
		Addr:               ":9080",
		QueueSize:          256,
		WorkerCount:        runtime.NumCPU(),
		DedupeSize:         10_000,
		TopN:               aoi.DefaultTopN,
		TargetKM:           aoi.DefaultTargetKM,
		MaxGridCells:       16_000_000,
		MaxHotspotLimit:    100,
		RunRetention:       1000,
		AlignResolution:    align.DefaultResolution,
		ValidationHalfSize: validation.DefaultHalfSize,
	}
}

// Validate checks every field. The returned error wraps ErrInvalidConfig.
func (c *Config) Validate() error {
	var problems []string
	check := func(ok bool, format string, args ...any) {
		if !ok {
			problems = append(problems, fmt.Sprintf(format, args...))
		}
	}

	switch strings.ToLower(c.LogLevel) {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		problems = append(problems, fmt.Sprintf("log_level %q", c.LogLevel))
	}
	switch strings.ToLower(c.LogFormat) {
	case "", "text", "json":
	default:
		problems = append(problems, fmt.Sprintf("log_format %q", c.LogFormat))
	}
	check(c.Addr != "", "addr must not be empty")
	check(c.QueueSize > 0, "queue_size %d must be positive", c.QueueSize)
	check(c.WorkerCount > 0, "worker_count %d must be positive", c.WorkerCount)
	check(c.DedupeSize >= 0, "dedupe_size %d must not be negative", c.DedupeSize)
	check(c.TopN > 0, "top_n %d must be positive", c.TopN)
	check(c.TargetKM > 0, "target_km %v must be positive", c.TargetKM)
	check(c.MaxGridCells > 0, "max_grid_cells %d must be positive", c.MaxGridCells)
	check(c.MaxHotspotLimit > 0, "max_hotspot_limit %d must be positive", c.MaxHotspotLimit)
	check(c.RunRetention >= 0, "run_retention %d must not be negative", c.RunRetention)
	check(c.AlignResolution > 0, "align_resolution %v must be positive", c.AlignResolution)
	check(c.ValidationHalfSize > 0, "validation_half_size %v must be positive", c.ValidationHalfSize)

	if len(problems) > 0 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, strings.Join(problems, "; "))
	}
	return nil
}
