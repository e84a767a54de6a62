// Package storage archives run artifacts after an invocation completes.
//
// Two backends are supported: a filesystem directory and S3 (or an
// S3-compatible provider). Artifacts are copied verbatim; the archive
// never inspects or rewrites report content.
package storage

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/ashetkar/scalarun/types"
)

// Archiver copies run artifacts to a destination.
type Archiver interface {
	// Archive stores each named file under the given label prefix and
	// returns the number of files archived. Missing source files are
	// skipped, not errors: the runner may legitimately have produced
	// only a subset of the configured artifacts.
	Archive(ctx context.Context, label string, paths []string) (int, error)
}

// ParseDest splits an archive destination of the form "fs:<dir>" or
// "s3:<bucket/prefix>". A destination without a scheme is a filesystem
// directory.
func ParseDest(dest string) (backend, path string, err error) {
	switch {
	case strings.HasPrefix(dest, "fs:"):
		return "fs", strings.TrimPrefix(dest, "fs:"), nil
	case strings.HasPrefix(dest, "s3:"):
		return "s3", strings.TrimPrefix(dest, "s3:"), nil
	case strings.Contains(dest, ":"):
		return "", "", fmt.Errorf("unknown archive backend in %q (must be fs: or s3:)", dest)
	default:
		return "fs", dest, nil
	}
}

// CollectArtifacts returns the paths of every artifact the configuration
// asked the runner to produce: captured output/error files, the result
// file, the junit xml report, and every file under the html report dir.
// Paths that do not exist on disk are filtered out.
func CollectArtifacts(cfg *types.RunConfig) []string {
	var candidates []string
	for _, p := range []string{cfg.ResultFilePath, cfg.OutputFilePath, cfg.ErrorFilePath} {
		if p != "" {
			candidates = append(candidates, p)
		}
	}
	if cfg.Reports.JUnitXMLEnabled {
		candidates = append(candidates, cfg.Reports.JUnitXMLEntryPoint)
	}

	var existing []string
	for _, p := range candidates {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			existing = append(existing, p)
		}
	}

	if cfg.Reports.HTMLEnabled {
		_ = filepath.WalkDir(cfg.Reports.HTMLDestinationDir, func(path string, d fs.DirEntry, err error) error {
			if err != nil || d.IsDir() {
				return nil //nolint:nilerr // unreadable entries are skipped, not fatal
			}
			existing = append(existing, path)
			return nil
		})
	}

	return existing
}

// FSArchiver copies artifacts into a destination directory, flattening
// each artifact to its base name under <dir>/<label>/.
type FSArchiver struct {
	dir string
}

// NewFSArchiver creates a filesystem archiver rooted at dir.
func NewFSArchiver(dir string) (*FSArchiver, error) {
	if dir == "" {
		return nil, fmt.Errorf("archive directory must not be empty")
	}
	return &FSArchiver{dir: dir}, nil
}

// Archive copies each existing file into <dir>/<label>/<basename>.
func (a *FSArchiver) Archive(ctx context.Context, label string, paths []string) (int, error) {
	destDir := filepath.Join(a.dir, label)
	if err := os.MkdirAll(destDir, 0o755); err != nil {
		return 0, fmt.Errorf("create archive dir %s: %w", destDir, err)
	}

	archived := 0
	for _, src := range paths {
		if err := ctx.Err(); err != nil {
			return archived, err
		}
		data, err := os.ReadFile(src)
		if err != nil {
			if os.IsNotExist(err) {
				continue
			}
			return archived, fmt.Errorf("read artifact %s: %w", src, err)
		}
		dest := filepath.Join(destDir, filepath.Base(src))
		if err := os.WriteFile(dest, data, 0o644); err != nil {
			return archived, fmt.Errorf("write artifact %s: %w", dest, err)
		}
		archived++
	}
	return archived, nil
}
