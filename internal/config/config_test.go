package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

// Helper to create a temp config file.
func createTempConfigFile(t *testing.T, content string) string {
	t.Helper()
	tmpDir := t.TempDir()

	configPath := filepath.Join(tmpDir, "config.yaml")
	if err := os.WriteFile(configPath, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to create temp config file: %v", err)
	}

	return configPath
}

// validConfigYAML is a minimal valid configuration.
const validConfigYAML = `
lookup:
  strategy: "resilient"
  portal_url: "https://portal.example.com"
  chunk_size: 100
  key_column: "Parcel_Number"
  unit_column: "Total_Units"
retry:
  max_attempts: 3
  blocked_delay_ms: 5000
  fault_delay_ms: 2000
  timeout_sec: 15
pacing:
  min_delay_ms: 100
  max_delay_ms: 400
output:
  dir: "./output"
  filename: "NYC_PLUTO_Units.xlsx"
server:
  listen_addr: ":8080"
logging:
  level: "info"
  show_progress: true
`

func TestLoadConfig_Valid(t *testing.T) {
	configPath := createTempConfigFile(t, validConfigYAML)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Lookup.Strategy != StrategyResilient {
		t.Errorf("Expected strategy 'resilient', got '%s'", cfg.Lookup.Strategy)
	}

	if cfg.Lookup.ChunkSize != 100 {
		t.Errorf("Expected chunk_size 100, got %d", cfg.Lookup.ChunkSize)
	}

	if cfg.Lookup.KeyColumn != "Parcel_Number" {
		t.Errorf("Expected key_column 'Parcel_Number', got '%s'", cfg.Lookup.KeyColumn)
	}

	if cfg.Retry.MaxAttempts != 3 {
		t.Errorf("Expected max_attempts 3, got %d", cfg.Retry.MaxAttempts)
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	_, err := LoadConfig("/nonexistent/config.yaml")
	if err == nil {
		t.Fatal("Expected error for missing file, got nil")
	}
}

func TestLoadConfig_InvalidYAML(t *testing.T) {
	configPath := createTempConfigFile(t, "lookup: [this is: not valid")

	_, err := LoadConfig(configPath)
	if err == nil {
		t.Fatal("Expected error for invalid YAML, got nil")
	}
}

func TestLoadConfig_FillsDefaults(t *testing.T) {
	// Only override the strategy; everything else comes from defaults.
	configPath := createTempConfigFile(t, `
lookup:
  strategy: "pluto"
`)

	cfg, err := LoadConfig(configPath)
	if err != nil {
		t.Fatalf("LoadConfig failed: %v", err)
	}

	if cfg.Lookup.PlutoURL == "" {
		t.Error("Expected default pluto_url to be filled in")
	}

	if cfg.Lookup.ChunkSize != MaxChunkSize {
		t.Errorf("Expected default chunk_size %d, got %d", MaxChunkSize, cfg.Lookup.ChunkSize)
	}

	if cfg.Output.Filename != "NYC_PLUTO_Units.xlsx" {
		t.Errorf("Expected default filename, got '%s'", cfg.Output.Filename)
	}
}

func TestValidate_Errors(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"unknown strategy", func(c *Config) { c.Lookup.Strategy = "scrape" }, ErrInvalidStrategy},
		{"missing pluto url", func(c *Config) { c.Lookup.PlutoURL = "" }, ErrMissingPlutoURL},
		{
			"missing portal url",
			func(c *Config) { c.Lookup.Strategy = StrategyPortal; c.Lookup.PortalURL = "" },
			ErrMissingPortalURL,
		},
		{"chunk too small", func(c *Config) { c.Lookup.ChunkSize = 0 }, ErrInvalidChunkSize},
		{"chunk too large", func(c *Config) { c.Lookup.ChunkSize = 500 }, ErrInvalidChunkSize},
		{"missing unit column", func(c *Config) { c.Lookup.UnitColumn = "" }, ErrMissingUnitColumn},
		{"zero attempts", func(c *Config) { c.Retry.MaxAttempts = 0 }, ErrInvalidMaxAttempts},
		{"negative delay", func(c *Config) { c.Retry.FaultDelayMs = -1 }, ErrInvalidRetryDelay},
		{"zero timeout", func(c *Config) { c.Retry.TimeoutSec = 0 }, ErrInvalidTimeout},
		{"pacing inverted", func(c *Config) { c.Pacing.MinDelayMs = 900; c.Pacing.MaxDelayMs = 100 }, ErrInvalidPacing},
		{"missing output dir", func(c *Config) { c.Output.Dir = "" }, ErrMissingOutputDir},
		{"missing listen addr", func(c *Config) { c.Server.ListenAddr = "" }, ErrMissingListenAddr},
		{"bad log level", func(c *Config) { c.Logging.Level = "verbose" }, ErrInvalidLogLevel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidate_DefaultIsValid(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("DefaultConfig should validate, got: %v", err)
	}
}

func TestRetryPolicy_Delays(t *testing.T) {
	rp := RetryPolicy{MaxAttempts: 3, BlockedDelayMs: 5000, FaultDelayMs: 2000, TimeoutSec: 15}

	if rp.BlockedDelay() != 5*time.Second {
		t.Errorf("BlockedDelay = %v, want 5s", rp.BlockedDelay())
	}

	if rp.FaultDelay() != 2*time.Second {
		t.Errorf("FaultDelay = %v, want 2s", rp.FaultDelay())
	}

	if rp.GetTimeout() != 15*time.Second {
		t.Errorf("GetTimeout = %v, want 15s", rp.GetTimeout())
	}
}
