package locate

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/vk/lfdeploy/internal/ctxlog"
	"github.com/vk/lfdeploy/internal/fsutil"
	"go.uber.org/zap"
)

// Probe looks for a binary under a federate directory. It returns the path
// and true on a hit, false when it found nothing. An error aborts the search.
type Probe interface {
	Name() string
	Probe(ctx context.Context, dir string) (string, bool, error)
}

// FixedPath checks a single path relative to the federate directory.
type FixedPath struct {
	Rel string
}

func (p FixedPath) Name() string {
	return "fixed:" + p.Rel
}

func (p FixedPath) Probe(ctx context.Context, dir string) (string, bool, error) {
	path := filepath.Join(dir, filepath.FromSlash(p.Rel))
	if fsutil.IsRegularFile(path) {
		return path, true, nil
	}
	return "", false, nil
}

// Search walks the federate directory for regular files named File. When more
// than one matches, the lexicographically first path wins.
type Search struct {
	File string
}

func (p Search) Name() string {
	return "search:" + p.File
}

func (p Search) Probe(ctx context.Context, dir string) (string, bool, error) {
	matches, err := fsutil.FindFilesByName(dir, p.File)
	if err != nil {
		return "", false, fmt.Errorf("searching %s for %s: %w", dir, p.File, err)
	}
	return pickFirst(ctx, p.Name(), matches)
}

// Glob matches a doublestar pattern against paths relative to the federate
// directory, e.g. "build/**/*.elf".
type Glob struct {
	Pattern string
}

func (p Glob) Name() string {
	return "glob:" + p.Pattern
}

func (p Glob) Probe(ctx context.Context, dir string) (string, bool, error) {
	matches, err := fsutil.GlobFiles(dir, p.Pattern)
	if err != nil {
		return "", false, fmt.Errorf("globbing %s: %w", dir, err)
	}
	return pickFirst(ctx, p.Name(), matches)
}

func pickFirst(ctx context.Context, probe string, matches []string) (string, bool, error) {
	if len(matches) == 0 {
		return "", false, nil
	}
	if len(matches) > 1 {
		ctxlog.FromContext(ctx).Warn("Several binaries matched, using the first in sorted order.",
			zap.String("probe", probe),
			zap.String("chosen", matches[0]),
			zap.Strings("matches", matches),
		)
	}
	return matches[0], true, nil
}
