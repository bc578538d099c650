package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"linklint/internal/changes"
	"linklint/internal/config"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	// Global flags
	verbose    bool
	configPath string
	recordsDir string

	// Logger
	logger *zap.Logger
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "linklint",
	Short: "linklint - validator for sharded link record files",
	Long: `linklint enforces the record schema across the sharded file_<N>.cfg set,
keeps the derived _index.cfg summary in sync, and optionally verifies that
every referenced URL is live and every preview image has the expected shape.

Diagnostics go to stderr; only final status lines are printed to stdout.
The exit code is 0 on success and 1 on any validation or verification failure.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		zcfg.Level = zap.NewAtomicLevelAt(logLevel())
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		// Correlation ID so CI output from one run can be grepped together.
		logger = logger.With(zap.String("run_id", uuid.NewString()[:8]))
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

// logLevel resolves the log level from the config file, with --verbose
// forcing debug. Config errors here are ignored; loadConfig surfaces them.
func logLevel() zapcore.Level {
	if verbose {
		return zapcore.DebugLevel
	}
	if cfg, err := config.Load(configPath); err == nil {
		if lvl, err := zapcore.ParseLevel(cfg.Logging.Level); err == nil {
			return lvl
		}
	}
	return zapcore.InfoLevel
}

// loadConfig loads and validates the effective configuration, applying
// command-line overrides on top of file and environment values.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if recordsDir != "" {
		cfg.Records.Dir = recordsDir
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// changedScope asks git for the record files changed versus the base ref.
// ok is false when no change set is resolvable and the caller must fall
// back to the full file set.
func changedScope(cmd *cobra.Command, cfg *config.Config) ([]string, bool) {
	provider := changes.NewGitProvider(logger, cfg.Changes.BaseRef)
	paths, ok, err := provider.Changed(cmd.Context(), cfg.Records.Dir)
	if err != nil {
		logger.Warn("change detection failed, falling back to full set", zap.Error(err))
		return nil, false
	}
	if !ok {
		logger.Info("no base ref resolvable, falling back to full set")
		return nil, false
	}
	if paths == nil {
		paths = []string{}
	}
	return paths, true
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "linklint.yaml", "path to the config file")
	rootCmd.PersistentFlags().StringVar(&recordsDir, "dir", "", "records directory (overrides config)")

	rootCmd.AddCommand(validateCmd)
	rootCmd.AddCommand(verifyURLsCmd)
	rootCmd.AddCommand(watchCmd)
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
