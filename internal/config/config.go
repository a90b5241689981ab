// Package config loads needsradar settings from YAML and NEEDSRADAR_*
// environment variables.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spektr-org/needsradar/engine"
	"github.com/spektr-org/needsradar/internal/logging"
	"github.com/spektr-org/needsradar/loader"
)

// Config is the complete application configuration.
type Config struct {
	Dataset DatasetConfig  `mapstructure:"dataset"`
	Ordinal []OrdinalLevel `mapstructure:"ordinal"`
	Display DisplayConfig  `mapstructure:"display"`
	Geo     GeoConfig      `mapstructure:"geo"`
	Cache   CacheConfig    `mapstructure:"cache"`
	Server  ServerConfig   `mapstructure:"server"`
	Log     logging.Config `mapstructure:"log"`
}

// DatasetConfig locates the source table.
type DatasetConfig struct {
	Path      string `mapstructure:"path"`
	Sheet     string `mapstructure:"sheet"`
	Delimiter string `mapstructure:"delimiter"` // separator inside the categories cell
}

// OrdinalLevel maps one impact/innovation label to its value. A list keeps
// label case intact, which map keys would not survive.
type OrdinalLevel struct {
	Label string `mapstructure:"label"`
	Value int    `mapstructure:"value"`
}

// DisplayConfig shapes chart labels.
type DisplayConfig struct {
	WrapWidth  int    `mapstructure:"wrap_width"`
	TickLength int    `mapstructure:"tick_length"`
	LineBreak  string `mapstructure:"line_break"`
}

// GeoConfig points at the optional GeoJSON map overlay.
type GeoConfig struct {
	Path string `mapstructure:"path"`
}

// CacheConfig configures the Redis dataset store. Empty Addr disables it.
type CacheConfig struct {
	Addr     string        `mapstructure:"addr"`
	Password string        `mapstructure:"password"`
	DB       int           `mapstructure:"db"`
	Prefix   string        `mapstructure:"prefix"`
	TTL      time.Duration `mapstructure:"ttl"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr          string        `mapstructure:"addr"`
	SessionIdle   time.Duration `mapstructure:"session_idle"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
	ReadTimeout   time.Duration `mapstructure:"read_timeout"`
	WriteTimeout  time.Duration `mapstructure:"write_timeout"`
}

// Validate reports the first semantic problem in c.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Dataset.Path) == "" {
		return fmt.Errorf("config: dataset.path is required")
	}
	if _, err := loader.FormatOf(c.Dataset.Path); err != nil {
		return fmt.Errorf("config: dataset.path: %w", err)
	}
	if len(c.Ordinal) == 0 {
		return fmt.Errorf("config: ordinal must define at least one level")
	}
	seenLabel := make(map[string]bool)
	seenValue := make(map[int]bool)
	for _, lvl := range c.Ordinal {
		if strings.TrimSpace(lvl.Label) == "" {
			return fmt.Errorf("config: ordinal label is required")
		}
		if lvl.Value <= 0 {
			return fmt.Errorf("config: ordinal %q value must be > 0, got %d", lvl.Label, lvl.Value)
		}
		if seenLabel[lvl.Label] || seenValue[lvl.Value] {
			return fmt.Errorf("config: ordinal %q/%d is duplicated", lvl.Label, lvl.Value)
		}
		seenLabel[lvl.Label] = true
		seenValue[lvl.Value] = true
	}
	if c.Display.WrapWidth < 0 || c.Display.TickLength < 0 {
		return fmt.Errorf("config: display widths must be >= 0")
	}
	if c.Cache.DB < 0 {
		return fmt.Errorf("config: cache.db must be >= 0, got %d", c.Cache.DB)
	}
	return c.ValidateLog()
}

// ValidateLog checks only the log section; it is all a live reload applies.
func (c *Config) ValidateLog() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level %q is invalid; expected debug|info|warn|error", c.Log.Level)
	}
	switch c.Log.Format {
	case "json", "console":
	default:
		return fmt.Errorf("config: log.format %q is invalid; expected json|console", c.Log.Format)
	}
	return nil
}

// OrdinalScale builds the engine scale from the configured levels.
func (c *Config) OrdinalScale() engine.OrdinalScale {
	if len(c.Ordinal) == 0 {
		return engine.DefaultOrdinalScale()
	}
	labels := make(map[int]string, len(c.Ordinal))
	for _, lvl := range c.Ordinal {
		labels[lvl.Value] = lvl.Label
	}
	return engine.NewOrdinalScale(labels)
}

// EngineOptions translates display and ordinal settings for engine.Derive.
func (c *Config) EngineOptions() []engine.Option {
	return []engine.Option{
		engine.WithOrdinalScale(c.OrdinalScale()),
		engine.WithDelimiter(c.Dataset.Delimiter),
		engine.WithLabelWrap(c.Display.WrapWidth, c.Display.LineBreak),
		engine.WithTickLength(c.Display.TickLength),
	}
}

// LoaderOptions translates dataset settings for loader.Load.
func (c *Config) LoaderOptions() []loader.Option {
	return []loader.Option{
		loader.WithSheet(c.Dataset.Sheet),
		loader.WithOrdinalScale(c.OrdinalScale()),
	}
}
