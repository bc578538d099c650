package main

import (
	"fmt"
	"path/filepath"

	"linklint/internal/config"
	"linklint/internal/index"
	"linklint/internal/validate"

	"github.com/spf13/cobra"
)

var (
	validateAll         bool
	validateChangedOnly bool
	validateCheck       bool
)

// validateCmd runs the structural pass and regenerates the index.
var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate record files and regenerate the index",
	Long: `Validates record files against the schema: every [link_N] section must
carry exactly the four required fields (url, developer, dev_link,
preview_image), and no file may exceed the per-file link cap.

By default every record file is validated. With --changed-only the check is
restricted to files differing from the base git ref, but the index summary
is always recomputed from the complete file set. Any failure aborts the run
before the index is touched.`,
	Args: cobra.NoArgs,
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateAll, "all", false, "validate every record file (the default)")
	validateCmd.Flags().BoolVar(&validateChangedOnly, "changed-only", false, "validate only files changed versus the base ref")
	validateCmd.Flags().BoolVar(&validateCheck, "check", false, "verify the index is up to date instead of writing it")
	validateCmd.MarkFlagsMutuallyExclusive("all", "changed-only")
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	quoting, err := validate.ParseQuoting(cfg.Validation.Quoting)
	if err != nil {
		return err
	}
	agg, err := validate.ParseAggregation(cfg.Validation.Aggregation)
	if err != nil {
		return err
	}

	var only []string
	if validateChangedOnly {
		if paths, ok := changedScope(cmd, cfg); ok {
			only = paths
		}
	}

	validator := validate.NewFileValidator(logger, quoting, agg, cfg.Records.LinksPerFile)
	builder := index.NewBuilder(logger, validator,
		cfg.Records.Dir, indexPath(cfg), cfg.Index.WarnHeader, cfg.Records.LinksPerFile)

	sum, err := builder.Run(only, validateCheck)
	if err != nil {
		return err
	}

	if validateCheck {
		fmt.Printf("OK: index up to date (%d files, %d links)\n", sum.FileCount, sum.LinkCount)
	} else {
		fmt.Printf("OK: %d files, %d links\n", sum.FileCount, sum.LinkCount)
	}
	return nil
}

func indexPath(cfg *config.Config) string {
	if filepath.IsAbs(cfg.Index.File) {
		return cfg.Index.File
	}
	return filepath.Join(cfg.Records.Dir, cfg.Index.File)
}
