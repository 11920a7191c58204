// Package config loads tradesearch settings from a TOML file.
//
// Every setting has a default, so a missing file is not an error. Command
// line flags override values loaded here.
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/poiesic/tradesearch/logging"
	"github.com/poiesic/tradesearch/search"
)

// Config is the complete tradesearch configuration.
type Config struct {
	Database  DatabaseConfig  `toml:"database"`
	Source    SourceConfig    `toml:"source"`
	Search    SearchConfig    `toml:"search"`
	Ingestion IngestionConfig `toml:"ingestion"`
	Log       logging.Config  `toml:"log"`
}

// DatabaseConfig locates the persistent store.
type DatabaseConfig struct {
	Path string `toml:"path"`
}

// SourceConfig names the CSV dataset used when no database is given.
type SourceConfig struct {
	CSV string `toml:"csv"`
}

// SearchConfig tunes query execution.
type SearchConfig struct {
	// Method is "linear" or "improved"
	Method   string `toml:"method"`
	PoolSize int    `toml:"pool_size"`
}

// IngestionConfig tunes dataset loading.
type IngestionConfig struct {
	PoolSize  int `toml:"pool_size"`
	BatchSize int `toml:"batch_size"`

	// ReportInterval is the number of rows between progress lines; 0 disables progress
	ReportInterval int `toml:"report_interval"`

	// Timeout bounds a whole load; 0 means no limit
	Timeout Duration `toml:"timeout"`

	// MaxRetries is the number of attempts for each storage batch
	MaxRetries int `toml:"max_retries"`

	// RetryDelay is the wait before the first retry; it doubles after each
	RetryDelay Duration `toml:"retry_delay"`
}

// Duration is a time.Duration written as a string ("90s", "5m") in TOML.
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Database: DatabaseConfig{Path: "tradesearch.db"},
		Search: SearchConfig{
			Method:   search.MethodImprovedInterpolationStep.String(),
			PoolSize: runtime.NumCPU(),
		},
		Ingestion: IngestionConfig{
			PoolSize:       max(runtime.NumCPU()/2, 1),
			BatchSize:      1000,
			ReportInterval: 10000,
			MaxRetries:     3,
			RetryDelay:     Duration{100 * time.Millisecond},
		},
		Log: logging.Config{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads the configuration at path on top of Default. An empty path or a
// missing file yields the defaults. Keys the file sets override defaults one
// by one; keys it omits keep their default value.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}

	md, err := toml.DecodeFile(path, cfg)
	if errors.Is(err, fs.ErrNotExist) {
		return Default(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrParse, path, err)
	}

	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return nil, fmt.Errorf("%w: %s: unknown keys %s", ErrInvalidConfig, path, strings.Join(keys, ", "))
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks every setting for range and spelling.
func (c *Config) Validate() error {
	if _, err := search.ParseMethod(c.Search.Method); err != nil {
		return fmt.Errorf("%w: search.method: %w", ErrInvalidConfig, err)
	}
	if c.Search.PoolSize < 1 {
		return fmt.Errorf("%w: search.pool_size must be at least 1, got %d", ErrInvalidConfig, c.Search.PoolSize)
	}
	if c.Ingestion.PoolSize < 1 {
		return fmt.Errorf("%w: ingestion.pool_size must be at least 1, got %d", ErrInvalidConfig, c.Ingestion.PoolSize)
	}
	if c.Ingestion.BatchSize < 1 {
		return fmt.Errorf("%w: ingestion.batch_size must be at least 1, got %d", ErrInvalidConfig, c.Ingestion.BatchSize)
	}
	if c.Ingestion.ReportInterval < 0 {
		return fmt.Errorf("%w: ingestion.report_interval must not be negative", ErrInvalidConfig)
	}
	if c.Ingestion.MaxRetries < 1 {
		return fmt.Errorf("%w: ingestion.max_retries must be at least 1, got %d", ErrInvalidConfig, c.Ingestion.MaxRetries)
	}
	if c.Ingestion.RetryDelay.Duration < 0 {
		return fmt.Errorf("%w: ingestion.retry_delay must not be negative", ErrInvalidConfig)
	}
	if c.Ingestion.Timeout.Duration < 0 {
		return fmt.Errorf("%w: ingestion.timeout must not be negative", ErrInvalidConfig)
	}
	if _, err := logging.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalidConfig, err)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("%w: log.format must be text or json, got %q", ErrInvalidConfig, c.Log.Format)
	}
	return nil
}

// Encode writes c as TOML.
func (c *Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Save writes c to path, replacing any existing file.
func (c *Config) Save(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := c.Encode(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
