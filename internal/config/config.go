// Package config provides configuration management for the unit lookup worker.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Configuration validation errors.
var (
	ErrInvalidStrategy    = errors.New("lookup.strategy must be one of: pluto, portal, resilient")
	ErrMissingPlutoURL    = errors.New("lookup.pluto_url is required for the pluto strategy")
	ErrMissingPortalURL   = errors.New("lookup.portal_url is required for the portal and resilient strategies")
	ErrInvalidChunkSize   = errors.New("lookup.chunk_size must be between 1 and 200")
	ErrMissingUnitColumn  = errors.New("lookup.unit_column is required")
	ErrInvalidMaxAttempts = errors.New("retry.max_attempts must be at least 1")
	ErrInvalidRetryDelay  = errors.New("retry delays must be non-negative")
	ErrInvalidTimeout     = errors.New("retry.timeout_sec must be at least 1")
	ErrInvalidPacing      = errors.New("pacing.min_delay_ms must be non-negative and not exceed pacing.max_delay_ms")
	ErrMissingOutputDir   = errors.New("output.dir is required")
	ErrMissingListenAddr  = errors.New("server.listen_addr is required")
	ErrInvalidLogLevel    = errors.New("logging.level must be one of: debug, info, warn, error")
)

// Lookup strategy names.
const (
	StrategyPluto     = "pluto"
	StrategyPortal    = "portal"
	StrategyResilient = "resilient"
)

// MaxChunkSize bounds one batched query; larger chunks overflow the remote
// URL length limit.
const MaxChunkSize = 200

// Config represents the complete worker configuration.
type Config struct {
	Lookup  LookupConfig  `yaml:"lookup"`
	Retry   RetryPolicy   `yaml:"retry"`
	Pacing  PacingConfig  `yaml:"pacing"`
	Output  OutputConfig  `yaml:"output"`
	Server  ServerConfig  `yaml:"server"`
	Logging LoggingConfig `yaml:"logging"`
}

// LookupConfig selects and parameterizes the lookup strategy.
type LookupConfig struct {
	Strategy   string `yaml:"strategy"`
	PlutoURL   string `yaml:"pluto_url"`
	PortalURL  string `yaml:"portal_url"`
	ChunkSize  int    `yaml:"chunk_size"`
	KeyColumn  string `yaml:"key_column"`
	UnitColumn string `yaml:"unit_column"`
}

// RetryPolicy defines retry behavior for the resilient strategy and the
// request timeout shared by all strategies.
type RetryPolicy struct {
	MaxAttempts    int `yaml:"max_attempts"`
	BlockedDelayMs int `yaml:"blocked_delay_ms"`
	FaultDelayMs   int `yaml:"fault_delay_ms"`
	TimeoutSec     int `yaml:"timeout_sec"`
}

// BlockedDelay returns the pause taken after a blocked (403) response.
func (rp *RetryPolicy) BlockedDelay() time.Duration {
	return time.Duration(rp.BlockedDelayMs) * time.Millisecond
}

// FaultDelay returns the shorter pause taken after a transport fault.
func (rp *RetryPolicy) FaultDelay() time.Duration {
	return time.Duration(rp.FaultDelayMs) * time.Millisecond
}

// GetTimeout returns the per-request timeout duration.
func (rp *RetryPolicy) GetTimeout() time.Duration {
	return time.Duration(rp.TimeoutSec) * time.Second
}

// PacingConfig defines the randomized delay inserted between consecutive
// portal requests to avoid tripping rate limits. Zero values disable pacing.
type PacingConfig struct {
	MinDelayMs int `yaml:"min_delay_ms"`
	MaxDelayMs int `yaml:"max_delay_ms"`
}

// MinDelay returns the lower pacing bound.
func (p *PacingConfig) MinDelay() time.Duration {
	return time.Duration(p.MinDelayMs) * time.Millisecond
}

// MaxDelay returns the upper pacing bound.
func (p *PacingConfig) MaxDelay() time.Duration {
	return time.Duration(p.MaxDelayMs) * time.Millisecond
}

// OutputConfig defines where result workbooks are written.
type OutputConfig struct {
	Dir      string `yaml:"dir"`
	Filename string `yaml:"filename"`
}

// ServerConfig defines the HTTP shell.
type ServerConfig struct {
	ListenAddr  string `yaml:"listen_addr"`
	UploadDir   string `yaml:"upload_dir"`
	DownloadDir string `yaml:"download_dir"`
}

// LoggingConfig defines logging behavior.
type LoggingConfig struct {
	Level        string `yaml:"level"`
	ShowProgress bool   `yaml:"show_progress"`
}

// DefaultConfig returns the configuration used when no file is supplied.
func DefaultConfig() *Config {
	return &Config{
		Lookup: LookupConfig{
			Strategy:   StrategyPluto,
			PlutoURL:   "https://data.cityofnewyork.us/resource/64uk-42ks.json",
			PortalURL:  "https://propertyinformationportal.nyc.gov",
			ChunkSize:  MaxChunkSize,
			UnitColumn: "Total_Units",
		},
		Retry: RetryPolicy{
			MaxAttempts:    3,
			BlockedDelayMs: 5000,
			FaultDelayMs:   2000,
			TimeoutSec:     15,
		},
		Pacing: PacingConfig{
			MinDelayMs: 500,
			MaxDelayMs: 1500,
		},
		Output: OutputConfig{
			Dir:      "output",
			Filename: "NYC_PLUTO_Units.xlsx",
		},
		Server: ServerConfig{
			ListenAddr:  ":8080",
			UploadDir:   "uploads",
			DownloadDir: "filtered",
		},
		Logging: LoggingConfig{
			Level:        "info",
			ShowProgress: true,
		},
	}
}

// LoadConfig loads configuration from a YAML file, filling unset fields
// from the defaults.
func LoadConfig(filepath string) (*Config, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	switch c.Lookup.Strategy {
	case StrategyPluto:
		if c.Lookup.PlutoURL == "" {
			return ErrMissingPlutoURL
		}
	case StrategyPortal, StrategyResilient:
		if c.Lookup.PortalURL == "" {
			return ErrMissingPortalURL
		}
	default:
		return fmt.Errorf("%w: got %q", ErrInvalidStrategy, c.Lookup.Strategy)
	}

	if c.Lookup.ChunkSize < 1 || c.Lookup.ChunkSize > MaxChunkSize {
		return fmt.Errorf("%w: got %d", ErrInvalidChunkSize, c.Lookup.ChunkSize)
	}

	if c.Lookup.UnitColumn == "" {
		return ErrMissingUnitColumn
	}

	if c.Retry.MaxAttempts < 1 {
		return ErrInvalidMaxAttempts
	}

	if c.Retry.BlockedDelayMs < 0 || c.Retry.FaultDelayMs < 0 {
		return ErrInvalidRetryDelay
	}

	if c.Retry.TimeoutSec < 1 {
		return ErrInvalidTimeout
	}

	if c.Pacing.MinDelayMs < 0 || c.Pacing.MinDelayMs > c.Pacing.MaxDelayMs {
		return ErrInvalidPacing
	}

	if c.Output.Dir == "" {
		return ErrMissingOutputDir
	}

	if c.Server.ListenAddr == "" {
		return ErrMissingListenAddr
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("%w: got %q", ErrInvalidLogLevel, c.Logging.Level)
	}

	return nil
}

// String returns a string representation of the config.
func (c *Config) String() string {
	return fmt.Sprintf(
		"Config{Strategy: %s, ChunkSize: %d, MaxAttempts: %d, Output: %s}",
		c.Lookup.Strategy,
		c.Lookup.ChunkSize,
		c.Retry.MaxAttempts,
		c.Output.Dir,
	)
}
