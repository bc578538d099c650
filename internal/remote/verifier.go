// Package remote implements the network verification pass: URL liveness for
// url and dev_link, and content-type plus aspect-ratio checks for
// preview_image. The pass is diagnostic, not a gate - failures accumulate
// into a report instead of aborting the scan, and the index is never touched.
package remote

import (
	"context"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strings"
	"sync"
	"time"

	"linklint/internal/record"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Defaults per the deployed checker.
const (
	DefaultLivenessTimeout = 10 * time.Second
	DefaultImageTimeout    = 30 * time.Second
	DefaultConcurrency     = 4

	// maxImageBytes bounds the preview download.
	maxImageBytes = 20 << 20
)

// Options configures a Verifier. Zero values fall back to the defaults above.
type Options struct {
	LivenessTimeout time.Duration
	ImageTimeout    time.Duration
	Concurrency     int
	// Meta extracts image dimensions; nil degrades the aspect check.
	Meta ImageMeta
	// Aspect target and tolerance on the width/height ratio.
	TargetWidth    int
	TargetHeight   int
	RatioTolerance float64
}

// Report tallies one verification run. FailedFiles is the authoritative
// pass/fail signal: nonzero means the run failed.
type Report struct {
	FilesScanned  int
	FieldsChecked int
	Failures      int
	FailedFiles   int
	// Degraded is set when aspect-ratio checks were skipped for lack of an
	// image metadata capability.
	Degraded bool
}

// Failed reports whether any file had a failing field.
func (r Report) Failed() bool { return r.FailedFiles > 0 }

// Verifier runs the remote pass over a record-file set.
type Verifier struct {
	log         *zap.Logger
	client      *http.Client
	opts        Options
	targetRatio float64
}

// NewVerifier builds a verifier. The client follows redirects and applies no
// global timeout; per-request deadlines come from the options.
func NewVerifier(log *zap.Logger, opts Options) *Verifier {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.LivenessTimeout <= 0 {
		opts.LivenessTimeout = DefaultLivenessTimeout
	}
	if opts.ImageTimeout <= 0 {
		opts.ImageTimeout = DefaultImageTimeout
	}
	if opts.Concurrency <= 0 {
		opts.Concurrency = DefaultConcurrency
	}
	if opts.TargetWidth <= 0 || opts.TargetHeight <= 0 {
		opts.TargetWidth, opts.TargetHeight = 460, 215
	}
	if opts.RatioTolerance <= 0 {
		opts.RatioTolerance = 0.1
	}
	return &Verifier{
		log:         log,
		client:      &http.Client{},
		opts:        opts,
		targetRatio: float64(opts.TargetWidth) / float64(opts.TargetHeight),
	}
}

// check is one URL-valued field queued for verification.
type check struct {
	file    string
	section string
	field   string
	url     string
}

// Run verifies every record in files. Checks across records are independent
// and run under bounded concurrency; only the tallies are shared, guarded by
// a mutex. A single attempt per URL is definitive - no retries.
func (v *Verifier) Run(ctx context.Context, files []string) (Report, error) {
	// One-shot pass: don't leave keep-alive connections behind.
	defer v.client.CloseIdleConnections()

	report := Report{FilesScanned: len(files)}
	if v.opts.Meta == nil {
		report.Degraded = true
		v.log.Warn("image metadata support unavailable, aspect-ratio checks degrade to content-type only")
	}

	var checks []check
	for _, path := range files {
		sections, err := record.ParseFile(path)
		if err != nil {
			// Structural problems are the validate pass's concern; here we
			// only note them and scan what parsed.
			v.log.Warn("skipping unparseable file", zap.String("file", path), zap.Error(err))
			continue
		}
		for _, sec := range sections {
			if _, ok := record.LinkIndex(sec.Name); !ok {
				continue
			}
			for field, url := range fieldURLs(sec) {
				checks = append(checks, check{file: path, section: sec.Name, field: field, url: url})
			}
		}
	}

	var mu sync.Mutex
	failedFiles := make(map[string]bool)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(v.opts.Concurrency)
	for _, c := range checks {
		c := c
		g.Go(func() error {
			err := v.checkField(gctx, c)
			mu.Lock()
			report.FieldsChecked++
			if err != nil {
				report.Failures++
				failedFiles[c.file] = true
			}
			mu.Unlock()
			if err != nil {
				v.log.Error("remote check failed",
					zap.String("file", c.file),
					zap.String("section", c.section),
					zap.String("field", c.field),
					zap.String("url", c.url),
					zap.Error(err))
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return report, err
	}

	report.FailedFiles = len(failedFiles)
	v.log.Info("remote verification finished",
		zap.Int("files", report.FilesScanned),
		zap.Int("checked", report.FieldsChecked),
		zap.Int("failures", report.Failures),
		zap.Int("failed_files", report.FailedFiles))
	return report, nil
}

// fieldURLs extracts whatever URL-valued assignments a section carries,
// quoting aside - the structural pass owns schema enforcement.
func fieldURLs(sec record.Section) map[string]string {
	urls := make(map[string]string, 3)
	for _, line := range sec.Lines {
		field, value, _, ok := record.Assignment(line)
		if !ok || value == "" {
			continue
		}
		switch field {
		case record.FieldURL, record.FieldDevLink, record.FieldPreviewImage:
			urls[field] = value
		}
	}
	return urls
}

func (v *Verifier) checkField(ctx context.Context, c check) error {
	if c.field == record.FieldPreviewImage {
		return v.checkImage(ctx, c.url)
	}
	return v.checkLiveness(ctx, c.url)
}

// checkLiveness fetches the URL following redirects and accepts any 2xx.
// Timeouts and connection failures count as a failed status, not a distinct
// error kind.
func (v *Verifier) checkLiveness(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, v.opts.LivenessTimeout)
	defer cancel()

	resp, err := v.get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 1<<20))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}
	return nil
}

// checkImage fetches the preview, requires an image content type, and when
// metadata support is present verifies the aspect ratio against the target
// by squared difference: (ratio-target)^2 must not exceed tolerance^2.
func (v *Verifier) checkImage(ctx context.Context, url string) error {
	ctx, cancel := context.WithTimeout(ctx, v.opts.ImageTimeout)
	defer cancel()

	resp, err := v.get(ctx, url)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("status %d", resp.StatusCode)
	}

	mediaType := resp.Header.Get("Content-Type")
	if mt, _, err := mime.ParseMediaType(mediaType); err == nil {
		mediaType = mt
	}
	if !strings.HasPrefix(mediaType, "image/") {
		return fmt.Errorf("content type %q is not an image", mediaType)
	}

	if v.opts.Meta == nil {
		return nil
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxImageBytes))
	if err != nil {
		return fmt.Errorf("failed to download image: %w", err)
	}
	w, h, err := v.opts.Meta.Size(data)
	if err != nil {
		return err
	}

	ratio := float64(w) / float64(h)
	d := ratio - v.targetRatio
	if d*d > v.opts.RatioTolerance*v.opts.RatioTolerance {
		return fmt.Errorf("aspect ratio %.4f (%dx%d) outside %.4f±%.1f",
			ratio, w, h, v.targetRatio, v.opts.RatioTolerance)
	}
	return nil
}

func (v *Verifier) get(ctx context.Context, url string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("bad url: %w", err)
	}
	return v.client.Do(req)
}
