package main

import (
	"fmt"

	"linklint/internal/index"
	"linklint/internal/record"
	"linklint/internal/remote"

	"github.com/spf13/cobra"
)

var verifyAll bool

// verifyURLsCmd runs the network pass. It is diagnostic: every failing field
// is reported before the tally decides the exit code, and the index is never
// regenerated here.
var verifyURLsCmd = &cobra.Command{
	Use:   "verify-urls",
	Short: "Check that record URLs are live and preview images have the expected shape",
	Long: `Fetches every url and dev_link (following redirects, one attempt each) and
expects a 2xx status. preview_image must additionally serve an image content
type and match the target aspect ratio within tolerance; without image
decoding support the shape check degrades to content type only.

Defaults to files changed versus the base git ref; use --all for the full set.`,
	Args: cobra.NoArgs,
	RunE: runVerifyURLs,
}

func init() {
	verifyURLsCmd.Flags().BoolVar(&verifyAll, "all", false, "verify every record file, not just changed ones")
}

func runVerifyURLs(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	files, err := record.Discover(cfg.Records.Dir)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("%w in %s", index.ErrNoRecordFiles, cfg.Records.Dir)
	}

	if !verifyAll {
		if paths, ok := changedScope(cmd, cfg); ok {
			if len(paths) == 0 {
				fmt.Println("OK: no changed record files to verify")
				return nil
			}
			files = paths
		}
	}

	verifier := remote.NewVerifier(logger, remote.Options{
		LivenessTimeout: cfg.Remote.LivenessTimeoutDuration(),
		ImageTimeout:    cfg.Remote.ImageTimeoutDuration(),
		Concurrency:     cfg.Remote.Concurrency,
		Meta:            remote.StdImageMeta{},
		TargetWidth:     cfg.Remote.TargetWidth,
		TargetHeight:    cfg.Remote.TargetHeight,
		RatioTolerance:  cfg.Remote.RatioTolerance,
	})

	report, err := verifier.Run(cmd.Context(), files)
	if err != nil {
		return err
	}
	if report.Failed() {
		return fmt.Errorf("remote verification failed: %d of %d files have broken links (%d failing fields)",
			report.FailedFiles, report.FilesScanned, report.Failures)
	}

	fmt.Printf("OK: %d fields checked across %d files\n", report.FieldsChecked, report.FilesScanned)
	return nil
}
