// Package changes resolves which record files differ from a base git ref,
// so validation can be scoped to edited shards in CI.
package changes

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"linklint/internal/record"

	"go.uber.org/zap"
)

// Provider yields the record files changed versus a reference state.
// ok is false when no change set could be determined (not a repo, no base
// ref); callers must then fall back to the full file set.
type Provider interface {
	Changed(ctx context.Context, dir string) (paths []string, ok bool, err error)
}

// baseRefCandidates are tried in order when no base ref is configured.
var baseRefCandidates = []string{"origin/master", "origin/main", "master", "main"}

// GitProvider shells out to git to diff the working tree against a base ref.
type GitProvider struct {
	log *zap.Logger
	// BaseRef overrides base-ref discovery when non-empty.
	BaseRef string
}

// NewGitProvider builds a provider; baseRef may be empty.
func NewGitProvider(log *zap.Logger, baseRef string) *GitProvider {
	if log == nil {
		log = zap.NewNop()
	}
	return &GitProvider{log: log, BaseRef: baseRef}
}

// Changed lists changed record files under dir, relative-joined to dir.
func (g *GitProvider) Changed(ctx context.Context, dir string) ([]string, bool, error) {
	if err := checkGitRepo(ctx, dir); err != nil {
		g.log.Debug("not a git repo, falling back to full set", zap.Error(err))
		return nil, false, nil
	}

	base := g.BaseRef
	if base == "" {
		base = resolveBaseRef(ctx, dir)
	}
	if base == "" {
		g.log.Debug("no base ref resolvable, falling back to full set")
		return nil, false, nil
	}

	cmd := exec.CommandContext(ctx, "git", "diff", "--name-only", "--relative", base)
	cmd.Dir = dir
	output, err := cmd.Output()
	if err != nil {
		return nil, false, fmt.Errorf("git diff against %s failed: %w", base, err)
	}

	var paths []string
	scanner := bufio.NewScanner(bytes.NewReader(output))
	for scanner.Scan() {
		name := strings.TrimSpace(scanner.Text())
		if name == "" || !record.IsRecordFile(filepath.Base(name)) {
			continue
		}
		paths = append(paths, filepath.Join(dir, name))
	}
	if err := scanner.Err(); err != nil {
		return nil, false, fmt.Errorf("reading git diff output: %w", err)
	}

	g.log.Debug("change set resolved",
		zap.String("base", base),
		zap.Int("files", len(paths)))
	return paths, true, nil
}

func checkGitRepo(ctx context.Context, dir string) error {
	cmd := exec.CommandContext(ctx, "git", "rev-parse", "--is-inside-work-tree")
	cmd.Dir = dir
	return cmd.Run()
}

func resolveBaseRef(ctx context.Context, dir string) string {
	for _, ref := range baseRefCandidates {
		cmd := exec.CommandContext(ctx, "git", "rev-parse", "--verify", "--quiet", ref)
		cmd.Dir = dir
		if cmd.Run() == nil {
			return ref
		}
	}
	return ""
}
