// Package cli implements the needsradar command tree.
package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spektr-org/needsradar/engine"
	"github.com/spektr-org/needsradar/internal/cache"
	"github.com/spektr-org/needsradar/internal/config"
	"github.com/spektr-org/needsradar/internal/logging"
	"github.com/spektr-org/needsradar/loader"
)

// Build-time variables injected via ldflags.
var (
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// cliContextKey is the context key for CLIContext.
type cliContextKey struct{}

// RootOptions holds global CLI flags.
type RootOptions struct {
	ConfigPath string
	DataPath   string
	Sheet      string
	LogLevel   string
}

// CLIContext carries initialized dependencies through the command tree.
type CLIContext struct {
	Config     *config.Config
	ConfigPath string // resolved file, "" when running from env only
	Logger     logging.Logger
	Level      zap.AtomicLevel
}

// NewRootCommand creates the root command with global flags and every
// subcommand.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "needsradar",
		Short: "needsradar: interactive dashboard over regional technology needs",
		Long: "needsradar loads a table of regional technology needs (XLSX, CSV or SQLite)\n" +
			"and serves a cross-filtered dashboard: a radar of needs per axis, a\n" +
			"region → axis → theme hierarchy and a ranking of technology categories.",
		Version: fmt.Sprintf("%s (commit: %s, built: %s)", Version, GitCommit, BuildDate),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&opts.ConfigPath, "config", "c", "", "config file path (default: ./needsradar.yaml)")
	pf.StringVarP(&opts.DataPath, "data", "d", "", "dataset file (.xlsx, .csv, .db); overrides dataset.path")
	pf.StringVar(&opts.Sheet, "sheet", "", "sheet or table name; overrides dataset.sheet")
	pf.StringVar(&opts.LogLevel, "log-level", "", "log level (debug, info, warn, error); overrides log.level")

	cmd.AddCommand(
		NewServeCmd(),
		NewTUICmd(),
		NewExportCmd(),
		NewDescribeCmd(),
	)
	return cmd
}

// persistentPreRun loads config, applies flag overrides, validates and
// builds the logger, then stores the CLIContext on the command.
func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	cfg, path, err := initConfig(opts)
	if err != nil {
		return fmt.Errorf("config initialization failed: %w", err)
	}

	logger, level, err := logging.NewLeveled(cfg.Log)
	if err != nil {
		return fmt.Errorf("logger initialization failed: %w", err)
	}
	logging.SetDefault(logger)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, cliContextKey{}, &CLIContext{
		Config:     cfg,
		ConfigPath: path,
		Logger:     logger,
		Level:      level,
	}))
	return nil
}

// initConfig resolves settings with priority flags > env > file > defaults.
func initConfig(opts *RootOptions) (*config.Config, string, error) {
	path := config.ResolvePath(opts.ConfigPath)
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	if opts.DataPath != "" {
		cfg.Dataset.Path = opts.DataPath
	}
	if opts.Sheet != "" {
		cfg.Dataset.Sheet = opts.Sheet
	}
	if opts.LogLevel != "" {
		cfg.Log.Level = opts.LogLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// GetCLIContext extracts CLIContext from a command's context.
func GetCLIContext(cmd *cobra.Command) (*CLIContext, error) {
	ctx := cmd.Context()
	if ctx == nil {
		return nil, errors.New("command context is nil")
	}
	cliCtx, ok := ctx.Value(cliContextKey{}).(*CLIContext)
	if !ok || cliCtx == nil {
		return nil, errors.New("CLIContext not found in command context")
	}
	return cliCtx, nil
}

// Execute is the main entry point for the CLI application.
func Execute() error {
	rootCmd := NewRootCommand()
	if err := rootCmd.Execute(); err != nil {
		PrintError(rootCmd, err)
		return err
	}
	return nil
}

// ============================================================================
// DATASET WIRING — shared by every subcommand
// ============================================================================

// workspace is the loaded dataset plus the optional map overlay.
type workspace struct {
	Dataset *engine.Dataset
	Overlay *loader.Overlay
	Cache   *loader.Cache
}

// openWorkspace loads the configured dataset through the cache (Redis
// backed when cache.addr is set) and the GeoJSON overlay when geo.path is
// set. An unreachable Redis downgrades to the memory cache.
func openWorkspace(ctx context.Context, cliCtx *CLIContext) (*workspace, func(), error) {
	cfg, logger := cliCtx.Config, cliCtx.Logger
	closeFn := func() {}

	var store loader.Store
	if cfg.Cache.Addr != "" {
		rs, err := cache.Open(ctx, cfg.Cache, logger)
		if err != nil {
			logger.Warn("redis unavailable, using memory cache", logging.Err(err))
		} else {
			store = rs
			closeFn = func() { _ = rs.Close() }
		}
	}
	dsCache := loader.NewCache(store, logger)

	opts := append(cfg.LoaderOptions(), loader.WithCache(dsCache), loader.WithLogger(logger))
	ds, err := loader.Load(ctx, cfg.Dataset.Path, opts...)
	if err != nil {
		closeFn()
		return nil, nil, err
	}

	ws := &workspace{Dataset: ds, Cache: dsCache}
	if cfg.Geo.Path != "" {
		overlay, err := loader.LoadRegions(cfg.Geo.Path)
		if err != nil {
			closeFn()
			return nil, nil, err
		}
		ws.Overlay = overlay
		logger.Info("region overlay loaded",
			logging.String("path", cfg.Geo.Path),
			logging.Int("regions", len(overlay.Regions)))
	}
	return ws, closeFn, nil
}

// overlayNames returns the overlay's region names, or nil.
func (w *workspace) overlayNames() []string {
	if w.Overlay == nil {
		return nil
	}
	return w.Overlay.Names()
}
