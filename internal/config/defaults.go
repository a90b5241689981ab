package config

import (
	"time"

	"github.com/spf13/viper"
)

// Defaults.
const (
	DefaultSheet         = "db"
	DefaultDelimiter     = ","
	DefaultWrapWidth     = 20
	DefaultTickLength    = 25
	DefaultLineBreak     = "<br>"
	DefaultCachePrefix   = "needsradar:dataset:"
	DefaultCacheTTL      = 24 * time.Hour
	DefaultServerAddr    = ":8080"
	DefaultSessionIdle   = 30 * time.Minute
	DefaultSweepInterval = time.Minute
	DefaultReadTimeout   = 15 * time.Second
	DefaultWriteTimeout  = 30 * time.Second
	DefaultLogLevel      = "info"
	DefaultLogFormat     = "json"
)

// DefaultOrdinal is the impact/innovation scale: Alto 5, Medio 3, Bajo 1.
func DefaultOrdinal() []OrdinalLevel {
	return []OrdinalLevel{{Label: "Alto", Value: 5}, {Label: "Medio", Value: 3}, {Label: "Bajo", Value: 1}}
}

// ApplyDefaults fills every zero-value field. Explicit values win.
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	if cfg.Dataset.Sheet == "" {
		cfg.Dataset.Sheet = DefaultSheet
	}
	if cfg.Dataset.Delimiter == "" {
		cfg.Dataset.Delimiter = DefaultDelimiter
	}
	if len(cfg.Ordinal) == 0 {
		cfg.Ordinal = DefaultOrdinal()
	}

	if cfg.Display.WrapWidth == 0 {
		cfg.Display.WrapWidth = DefaultWrapWidth
	}
	if cfg.Display.TickLength == 0 {
		cfg.Display.TickLength = DefaultTickLength
	}
	if cfg.Display.LineBreak == "" {
		cfg.Display.LineBreak = DefaultLineBreak
	}

	if cfg.Cache.Prefix == "" {
		cfg.Cache.Prefix = DefaultCachePrefix
	}
	if cfg.Cache.TTL == 0 {
		cfg.Cache.TTL = DefaultCacheTTL
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = DefaultServerAddr
	}
	if cfg.Server.SessionIdle == 0 {
		cfg.Server.SessionIdle = DefaultSessionIdle
	}
	if cfg.Server.SweepInterval == 0 {
		cfg.Server.SweepInterval = DefaultSweepInterval
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = DefaultReadTimeout
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = DefaultWriteTimeout
	}

	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
}

// registerKeys makes every scalar key known to viper so NEEDSRADAR_*
// variables override it even when the file does not mention it.
func registerKeys(v *viper.Viper) {
	for _, key := range []string{
		"dataset.path", "dataset.sheet", "dataset.delimiter",
		"display.wrap_width", "display.tick_length", "display.line_break",
		"geo.path",
		"cache.addr", "cache.password", "cache.db", "cache.prefix", "cache.ttl",
		"server.addr", "server.session_idle", "server.sweep_interval",
		"server.read_timeout", "server.write_timeout",
		"log.level", "log.format",
	} {
		v.SetDefault(key, nil)
	}
}

// NewDefaultConfig returns a Config with every default applied.
func NewDefaultConfig() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}
