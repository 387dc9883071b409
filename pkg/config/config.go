package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"go.uber.org/zap/zapcore"

	"github.com/panbanda/pctl/pkg/quantile"
)

// Config holds all configuration options for pctl.
type Config struct {
	// Defaults applied to every percentile computation
	Percentile PercentileConfig `koanf:"percentile" toml:"percentile"`

	// Result cache settings
	Cache CacheConfig `koanf:"cache" toml:"cache"`

	// Output settings
	Output OutputConfig `koanf:"output" toml:"output"`

	// Logging settings
	Log LogConfig `koanf:"log" toml:"log"`
}

// PercentileConfig holds engine defaults. Command-line flags override them.
type PercentileConfig struct {
	Interpolation string `koanf:"interpolation" toml:"interpolation"`
	KeepDims      bool   `koanf:"keep_dims" toml:"keep_dims"`
	ValidateArgs  bool   `koanf:"validate_args" toml:"validate_args"`
	// Workers bounds concurrency; 0 means 2x NumCPU.
	Workers int `koanf:"workers" toml:"workers"`
	// ChunkRows is the rows per worker task; 0 spreads rows evenly.
	ChunkRows     int `koanf:"chunk_rows" toml:"chunk_rows"`
	SortThreshold int `koanf:"sort_threshold" toml:"sort_threshold"`
}

// CacheConfig controls caching behavior.
type CacheConfig struct {
	Enabled bool   `koanf:"enabled" toml:"enabled"`
	Dir     string `koanf:"dir" toml:"dir"`
	TTL     int    `koanf:"ttl" toml:"ttl"` // TTL in hours
}

// OutputConfig controls output formatting.
type OutputConfig struct {
	Format string `koanf:"format" toml:"format"` // text, json, markdown, toon
	Color  bool   `koanf:"color" toml:"color"`
}

// LogConfig controls diagnostic logging.
type LogConfig struct {
	Level  string `koanf:"level" toml:"level"`
	Format string `koanf:"format" toml:"format"` // human, json
}

// DefaultConfig returns a config with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Percentile: PercentileConfig{
			Interpolation: "nearest",
			SortThreshold: quantile.DefaultSortThreshold,
		},
		Cache: CacheConfig{
			Enabled: true,
			Dir:     ".pctl/cache",
			TTL:     24,
		},
		Output: OutputConfig{
			Format: "text",
			Color:  true,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "human",
		},
	}
}

// Load loads configuration from a file on top of the defaults.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	cfg := DefaultConfig()

	var parser koanf.Parser
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		parser = yaml.Parser()
	case ".json":
		parser = json.Parser()
	default:
		parser = toml.Parser()
	}

	if err := k.Load(file.Provider(path), parser); err != nil {
		return nil, err
	}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// configNames are searched, in order, in each of searchDirs.
var (
	configNames = []string{
		"pctl.toml",
		"pctl.yaml",
		"pctl.yml",
		"pctl.json",
		".pctl.toml",
		".pctl.yaml",
		".pctl.yml",
		".pctl.json",
	}
	searchDirs = []string{".", ".pctl"}
)

// LoadResult is a loaded configuration and the file it came from.
type LoadResult struct {
	Config *Config
	// Source is empty when no file was found and defaults are in use.
	Source string
}

// LoadOption configures LoadConfig.
type LoadOption func(*loadOptions)

type loadOptions struct {
	path string
	dir  string
}

// WithPath loads exactly this file instead of searching.
func WithPath(path string) LoadOption {
	return func(o *loadOptions) {
		o.path = path
	}
}

// WithDir searches relative to dir instead of the working directory.
func WithDir(dir string) LoadOption {
	return func(o *loadOptions) {
		o.dir = dir
	}
}

// LoadConfig loads and validates configuration. An explicit path must exist;
// otherwise the standard locations are searched and defaults are returned
// when none is present.
func LoadConfig(opts ...LoadOption) (*LoadResult, error) {
	o := loadOptions{dir: "."}
	for _, opt := range opts {
		opt(&o)
	}

	if o.path != "" {
		cfg, err := Load(o.path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config %s: %w", o.path, err)
		}
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid config %s: %w", o.path, err)
		}
		return &LoadResult{Config: cfg, Source: o.path}, nil
	}

	for _, dir := range searchDirs {
		for _, name := range configNames {
			path := filepath.Join(o.dir, dir, name)
			if _, err := os.Stat(path); err != nil {
				continue
			}
			cfg, err := Load(path)
			if err != nil {
				return nil, fmt.Errorf("failed to load config %s: %w", path, err)
			}
			if err := cfg.Validate(); err != nil {
				return nil, fmt.Errorf("invalid config %s: %w", path, err)
			}
			return &LoadResult{Config: cfg, Source: path}, nil
		}
	}
	return &LoadResult{Config: DefaultConfig()}, nil
}

// LoadOrDefault tries to load config from standard locations or returns defaults.
func LoadOrDefault() *Config {
	result, err := LoadConfig()
	if err != nil {
		return DefaultConfig()
	}
	return result.Config
}

// Validate reports every invalid value in the configuration.
func (c *Config) Validate() error {
	var errs []error
	if _, err := quantile.ParseInterpolation(c.Percentile.Interpolation); err != nil {
		errs = append(errs, fmt.Errorf("percentile.interpolation: %w", err))
	}
	if c.Percentile.Workers < 0 {
		errs = append(errs, fmt.Errorf("percentile.workers must be >= 0 (got %d)", c.Percentile.Workers))
	}
	if c.Percentile.ChunkRows < 0 {
		errs = append(errs, fmt.Errorf("percentile.chunk_rows must be >= 0 (got %d)", c.Percentile.ChunkRows))
	}
	if c.Percentile.SortThreshold < 0 {
		errs = append(errs, fmt.Errorf("percentile.sort_threshold must be >= 0 (got %d)", c.Percentile.SortThreshold))
	}
	if c.Cache.Enabled && c.Cache.TTL <= 0 {
		errs = append(errs, fmt.Errorf("cache.ttl must be positive when the cache is enabled (got %d)", c.Cache.TTL))
	}
	switch strings.ToLower(c.Output.Format) {
	case "text", "json", "markdown", "md", "toon":
	default:
		errs = append(errs, fmt.Errorf("output.format %q not in [text, json, markdown, toon]", c.Output.Format))
	}
	if _, err := zapcore.ParseLevel(c.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	switch c.Log.Format {
	case "human", "json":
	default:
		errs = append(errs, fmt.Errorf("log.format %q not in [human, json]", c.Log.Format))
	}
	return errors.Join(errs...)
}

// Options converts the percentile defaults to engine options.
func (c PercentileConfig) Options() ([]quantile.Option, error) {
	m, err := quantile.ParseInterpolation(c.Interpolation)
	if err != nil {
		return nil, err
	}
	return []quantile.Option{
		quantile.WithInterpolation(m),
		quantile.WithKeepDims(c.KeepDims),
		quantile.WithValidateArgs(c.ValidateArgs),
		quantile.WithWorkers(c.Workers),
		quantile.WithChunkRows(c.ChunkRows),
		quantile.WithSortThreshold(c.SortThreshold),
	}, nil
}
