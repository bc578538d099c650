package main

import (
	"fmt"
	"os"
	"path/filepath"

	"linklint/internal/record"
	"linklint/internal/validate"

	"github.com/fsnotify/fsnotify"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// watchCmd revalidates shards as they are edited. It is a feedback loop for
// editing sessions only: the index is left alone, so a full validate run is
// still needed before committing.
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Revalidate record files as they change",
	Args:  cobra.NoArgs,
	RunE:  runWatch,
}

func runWatch(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	quoting, err := validate.ParseQuoting(cfg.Validation.Quoting)
	if err != nil {
		return err
	}
	// Collect everything in watch mode so an editor sees all problems at
	// once; the configured aggregation mode only matters for gating runs.
	validator := validate.NewFileValidator(logger, quoting, validate.Collect, cfg.Records.LinksPerFile)

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(cfg.Records.Dir); err != nil {
		return fmt.Errorf("failed to watch %s: %w", cfg.Records.Dir, err)
	}
	logger.Info("watching for record changes", zap.String("dir", cfg.Records.Dir))

	for {
		select {
		case <-cmd.Context().Done():
			logger.Info("watch stopped")
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Op.Has(fsnotify.Write) && !event.Op.Has(fsnotify.Create) {
				continue
			}
			if !record.IsRecordFile(filepath.Base(event.Name)) {
				continue
			}
			if _, err := os.Stat(event.Name); err != nil {
				continue
			}
			recheck(validator, event.Name)

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("watch error", zap.Error(err))
		}
	}
}

func recheck(validator *validate.FileValidator, path string) {
	res := validator.CheckFile(path)
	for _, d := range res.Diags {
		if d.Severity == validate.SeverityError {
			logger.Error(d.Message, zap.String("file", d.File), zap.String("section", d.Section), zap.Int("line", d.Line))
		} else {
			logger.Warn(d.Message, zap.String("file", d.File), zap.String("section", d.Section), zap.Int("line", d.Line))
		}
	}
	if res.Failed() {
		logger.Error("file failed validation", zap.String("file", path))
		return
	}
	logger.Info("file ok", zap.String("file", path), zap.Int("links", res.Links))
}
