// Package config loads gridpathd settings from a YAML file, an optional
// .env file and GRIDPATH_* environment variables, in that order.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "GRIDPATH_"

// Config represents the service configuration.
type Config struct {
	Addr         string   `yaml:"addr"`
	AllowOrigins []string `yaml:"allowOrigins"`
	LogLevel     string   `yaml:"logLevel"`
	// LogFormat is "text" or "json".
	LogFormat string `yaml:"logFormat"`
	// Workers bounds concurrent searches in one batch request.
	Workers int `yaml:"workers"`
	// ExpansionLimit caps expansions per search; 0 disables the cap.
	ExpansionLimit int `yaml:"expansionLimit"`
	// MaxGridCells rejects uploaded grids larger than this.
	MaxGridCells int `yaml:"maxGridCells"`
	// MaxBatchQueries bounds the queries of one batch request.
	MaxBatchQueries int `yaml:"maxBatchQueries"`
	// MaxSessions bounds live step sessions across all grids.
	MaxSessions int `yaml:"maxSessions"`
	// SessionTTL is how long an idle step session survives.
	SessionTTL time.Duration `yaml:"sessionTTL"`
	// Grids are ASCII map files registered at startup.
	Grids []GridFile `yaml:"grids"`
}

// GridFile names an ASCII map on disk.
type GridFile struct {
	Name string `yaml:"name"`
	Path string `yaml:"path"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Addr:            ":8080",
		AllowOrigins:    []string{"*"},
		LogLevel:        "info",
		LogFormat:       "text",
		Workers:         runtime.NumCPU(),
		MaxGridCells:    1 << 20,
		MaxBatchQueries: 1024,
		MaxSessions:     64,
		SessionTTL:      10 * time.Minute,
	}
}

// Load reads path (a missing file means defaults), then .env, then the
// environment, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case errors.Is(err, fs.ErrNotExist):
		case err != nil:
			return nil, fmt.Errorf("failed to read config file: %w", err)
		default:
			if err := cfg.decode(bytes.NewReader(data)); err != nil {
				return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
			}
		}
	}

	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}
	if err := cfg.applyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) decode(r io.Reader) error {
	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(c); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	str := func(name string, dst *string) {
		if v, ok := lookup(EnvPrefix + name); ok {
			*dst = v
		}
	}
	num := func(name string, dst *int) error {
		v, ok := lookup(EnvPrefix + name)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s%s %q: %w", EnvPrefix, name, v, err)
		}
		*dst = n
		return nil
	}

	str("ADDR", &c.Addr)
	str("LOG_LEVEL", &c.LogLevel)
	str("LOG_FORMAT", &c.LogFormat)
	if v, ok := lookup(EnvPrefix + "ALLOW_ORIGINS"); ok {
		c.AllowOrigins = nil
		for _, origin := range strings.Split(v, ",") {
			if origin = strings.TrimSpace(origin); origin != "" {
				c.AllowOrigins = append(c.AllowOrigins, origin)
			}
		}
	}
	if err := num("WORKERS", &c.Workers); err != nil {
		return err
	}
	if err := num("EXPANSION_LIMIT", &c.ExpansionLimit); err != nil {
		return err
	}
	if err := num("MAX_GRID_CELLS", &c.MaxGridCells); err != nil {
		return err
	}
	if err := num("MAX_BATCH_QUERIES", &c.MaxBatchQueries); err != nil {
		return err
	}
	if err := num("MAX_SESSIONS", &c.MaxSessions); err != nil {
		return err
	}
	if v, ok := lookup(EnvPrefix + "SESSION_TTL"); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %sSESSION_TTL %q: %w", EnvPrefix, v, err)
		}
		c.SessionTTL = d
	}
	return nil
}

// Validate reports the first invalid setting.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be positive, got %d", c.Workers)
	}
	if c.ExpansionLimit < 0 {
		return fmt.Errorf("expansionLimit must not be negative, got %d", c.ExpansionLimit)
	}
	if c.MaxGridCells < 1 {
		return fmt.Errorf("maxGridCells must be positive, got %d", c.MaxGridCells)
	}
	if c.MaxBatchQueries < 1 {
		return fmt.Errorf("maxBatchQueries must be positive, got %d", c.MaxBatchQueries)
	}
	if c.MaxSessions < 1 {
		return fmt.Errorf("maxSessions must be positive, got %d", c.MaxSessions)
	}
	if c.SessionTTL <= 0 {
		return fmt.Errorf("sessionTTL must be positive, got %v", c.SessionTTL)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("logFormat must be text or json, got %q", c.LogFormat)
	}
	seen := make(map[string]bool, len(c.Grids))
	for i, g := range c.Grids {
		if g.Name == "" || g.Path == "" {
			return fmt.Errorf("grids[%d] needs both name and path", i)
		}
		if seen[g.Name] {
			return fmt.Errorf("duplicate grid name %q", g.Name)
		}
		seen[g.Name] = true
	}
	return nil
}

// Level parses LogLevel.
func (c *Config) Level() (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("invalid logLevel %q: %w", c.LogLevel, err)
	}
	return level, nil
}

// NewLogger builds the service logger described by c.
func (c *Config) NewLogger(w io.Writer) *slog.Logger {
	level, err := c.Level()
	if err != nil {
		level = slog.LevelInfo
	}
	options := &slog.HandlerOptions{Level: level}
	if c.LogFormat == "json" {
		return slog.New(slog.NewJSONHandler(w, options))
	}
	return slog.New(slog.NewTextHandler(w, options))
}
