// Package loader turns a workbook, CSV file or SQLite database into an
// immutable engine.Dataset.
package loader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spektr-org/needsradar/engine"
	"github.com/spektr-org/needsradar/internal/logging"
)

// ============================================================================
// LOADER — Entry point: Load(ctx, path, opts...)
// ============================================================================
// Dispatch by extension:
//   .xlsx / .xlsm            excelize, named sheet (default "db")
//   .csv                     encoding/csv, sheet ignored
//   .db / .sqlite / .sqlite3 modernc sqlite, sheet = table name
//
// With a Cache the decoded dataset is shared by content hash, so every
// session over the same file reuses one immutable Dataset.
// ============================================================================

// DefaultSheet is the sheet (or table) read when none is given.
const DefaultSheet = "db"

// Source formats.
const (
	FormatXLSX   = "xlsx"
	FormatCSV    = "csv"
	FormatSQLite = "sqlite"
)

// Option configures Load.
type Option func(*config)

type config struct {
	sheet  string
	scale  engine.OrdinalScale
	cache  *Cache
	logger logging.Logger
}

// WithSheet selects the sheet (xlsx) or table (sqlite).
func WithSheet(sheet string) Option {
	return func(c *config) {
		if s := strings.TrimSpace(sheet); s != "" {
			c.sheet = s
		}
	}
}

// WithOrdinalScale sets the labels accepted in impact/innovation cells.
func WithOrdinalScale(s engine.OrdinalScale) Option {
	return func(c *config) {
		if !s.IsZero() {
			c.scale = s
		}
	}
}

// WithCache shares decoded datasets through c.
func WithCache(cache *Cache) Option {
	return func(c *config) { c.cache = cache }
}

// WithLogger sets the logger for skipped rows and load events.
func WithLogger(l logging.Logger) Option {
	return func(c *config) {
		if l != nil {
			c.logger = l
		}
	}
}

func applyOptions(opts []Option) *config {
	cfg := &config{
		sheet:  DefaultSheet,
		scale:  engine.DefaultOrdinalScale(),
		logger: logging.Default(),
	}
	for _, opt := range opts {
		opt(cfg)
	}
	cfg.logger = cfg.logger.Named("loader")
	return cfg
}

// FormatOf returns the source format implied by path's extension.
func FormatOf(path string) (string, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, filepath.Ext(path))
}

// Load reads path and returns its dataset.
func Load(ctx context.Context, path string, opts ...Option) (*engine.Dataset, error) {
	cfg := applyOptions(opts)

	format, err := FormatOf(path)
	if err != nil {
		return nil, &LoadError{Source: path, Op: "read", Err: err}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, &LoadError{Source: path, Op: "read", Err: err}
	}

	decode := func() (*engine.Dataset, error) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		switch format {
		case FormatXLSX:
			return decodeXLSX(path, data, cfg)
		case FormatCSV:
			return decodeCSV(path, data, cfg)
		default:
			return decodeSQLite(ctx, path, cfg)
		}
	}

	if cfg.cache == nil {
		return decode()
	}
	sheet := cfg.sheet
	if format == FormatCSV {
		sheet = ""
	}
	return cfg.cache.Load(ctx, CacheKey(data, sheet, cfg.scale), path, decode)
}
