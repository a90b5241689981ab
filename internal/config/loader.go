package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix for every setting.
const envPrefix = "NEEDSRADAR"

// SearchPaths are tried in order when no config file is given.
var SearchPaths = []string{"./needsradar.yaml", "./needsradar.yml"}

// newViper builds a viper instance: YAML, NEEDSRADAR_ prefix, "." → "_"
// so "cache.addr" resolves to NEEDSRADAR_CACHE_ADDR.
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	registerKeys(v)
	return v
}

// Load reads the YAML file at path, merges NEEDSRADAR_* overrides and
// applies defaults. With an empty path the first existing SearchPaths entry
// is used, or the environment alone. The result is not validated so that
// callers can apply flag overrides first.
func Load(path string) (*Config, error) {
	path = ResolvePath(path)
	if path == "" {
		return LoadFromEnv()
	}

	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: read %q: %w", path, err)
	}
	return unmarshal(v)
}

// ResolvePath returns path, or the first existing SearchPaths entry when
// path is empty, or "" when there is no file to read.
func ResolvePath(path string) string {
	if path != "" {
		return path
	}
	for _, p := range SearchPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// LoadFromEnv builds a Config from NEEDSRADAR_* variables and defaults.
func LoadFromEnv() (*Config, error) {
	return unmarshal(newViper())
}

func unmarshal(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}
	ApplyDefaults(cfg)
	return cfg, nil
}

// Watch calls onChange with the re-read Config whenever path changes on
// disk. Only the log section is validated, and only settings that are safe
// to change at runtime (log level) should be applied by the callback.
// Invalid edits, and a file that cannot be read when watching starts, are
// reported through onError; the watch stays active.
func Watch(path string, onChange func(*Config), onError func(error)) {
	v := newViper()
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil && onError != nil {
		onError(fmt.Errorf("config: watch %s: %w", path, err))
	}

	v.OnConfigChange(func(e fsnotify.Event) {
		cfg, err := unmarshal(v)
		if err == nil {
			err = cfg.ValidateLog()
		}
		if err != nil {
			if onError != nil {
				onError(fmt.Errorf("config: reload %s: %w", e.Name, err))
			}
			return
		}
		onChange(cfg)
	})
	v.WatchConfig()
}
