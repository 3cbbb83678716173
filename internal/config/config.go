// Package config loads mdaograph.toml.
//
// Every field has a default, so a missing file is not an error when the
// path was not given explicitly. Command-line flags override file values;
// that merge happens in the CLI.
//
//	[schedule]
//	cycle_limit = 10000
//
//	[cache]
//	backend   = "redis"
//	redis_url = "redis://localhost:6379/0"
//	ttl       = "12h"
//
//	[server]
//	addr = ":8080"
//
//	[output]
//	format = "yaml"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/mdaograph/pkg/cache"
	errs "github.com/matzehuels/mdaograph/pkg/errors"
	"github.com/matzehuels/mdaograph/pkg/graph"
)

const (
	// FileName is the config file looked up when no path is given.
	FileName = "mdaograph.toml"

	appName = "mdaograph"
)

// Cache backends.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Output formats.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// Config is the decoded configuration file.
type Config struct {
	Schedule ScheduleConfig `toml:"schedule"`
	Cache    CacheConfig    `toml:"cache"`
	Server   ServerConfig   `toml:"server"`
	Output   OutputConfig   `toml:"output"`

	// Path is the file the values were read from, empty for defaults.
	Path string `toml:"-"`
}

type ScheduleConfig struct {
	CycleLimit int `toml:"cycle_limit"`
}

type CacheConfig struct {
	Backend  string   `toml:"backend"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	TTL      Duration `toml:"ttl"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type OutputConfig struct {
	Format string `toml:"format"`
}

// Duration decodes TOML strings such as "90m" or "24h".
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		Schedule: ScheduleConfig{CycleLimit: graph.DefaultCycleLimit},
		Cache:    CacheConfig{Backend: BackendFile},
		Server:   ServerConfig{Addr: ":8080"},
		Output:   OutputConfig{Format: FormatYAML},
	}
}

// Load reads the config at path. With an empty path it tries FileName in
// the working directory and then in the user config directory, and falls
// back to Default when neither exists.
func Load(path string) (Config, error) {
	if path != "" {
		return load(path)
	}
	for _, candidate := range searchPaths() {
		cfg, err := load(candidate)
		if errs.Is(err, errs.ErrCodeFileNotFound) {
			continue
		}
		return cfg, err
	}
	return Default(), nil
}

func load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return cfg, errs.New(errs.ErrCodeFileNotFound, "config file not found: %s", path)
		}
		return cfg, errs.Wrap(errs.ErrCodeInvalidFormat, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return cfg, errs.New(errs.ErrCodeInvalidFormat, "%s: unknown keys %s", path, strings.Join(keys, ", "))
	}
	cfg.Path = path
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

func searchPaths() []string {
	paths := []string{FileName}
	if dir, err := os.UserConfigDir(); err == nil {
		paths = append(paths, filepath.Join(dir, appName, FileName))
	}
	return paths
}

// Validate checks value ranges and enumerations.
func (c Config) Validate() error {
	if c.Schedule.CycleLimit <= 0 {
		return errs.New(errs.ErrCodeInvalidInput, "schedule.cycle_limit must be positive, got %d", c.Schedule.CycleLimit)
	}
	switch c.Cache.Backend {
	case BackendFile, BackendNone:
	case BackendRedis:
		if c.Cache.RedisURL == "" {
			return errs.New(errs.ErrCodeInvalidInput, "cache.redis_url is required for the redis backend")
		}
	default:
		return errs.New(errs.ErrCodeInvalidInput, "cache.backend must be one of file, redis, none; got %q", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errs.New(errs.ErrCodeInvalidInput, "cache.ttl must not be negative")
	}
	if err := ValidateFormat(c.Output.Format); err != nil {
		return err
	}
	return nil
}

// ValidateFormat checks an output format name.
func ValidateFormat(format string) error {
	switch format {
	case FormatJSON, FormatYAML:
		return nil
	}
	return errs.New(errs.ErrCodeInvalidInput, "invalid output format: %q (must be json or yaml)", format)
}

// Open creates the configured cache backend.
func (c CacheConfig) Open() (cache.Cache, error) {
	switch c.Backend {
	case BackendNone:
		return cache.NewNullCache(), nil
	case BackendRedis:
		rc, err := cache.NewRedisCacheFromURL(c.RedisURL)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidInput, err, "cache.redis_url")
		}
		return rc, nil
	}
	dir := c.Dir
	if dir == "" {
		var err error
		if dir, err = DefaultCacheDir(); err != nil {
			return cache.NewNullCache(), nil
		}
	}
	fc, err := cache.NewFileCache(dir)
	if err != nil {
		return nil, err
	}
	return fc, nil
}

// DefaultCacheDir returns the cache directory using XDG standard (~/.cache/mdaograph/).
func DefaultCacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}
