package runtime

import (
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ashetkar/scalarun/types"
)

// BuildArgs assembles the ordered ScalaTest runner argument list from the
// configuration. It is pure: report directories are created by Prepare,
// not here, so the builder can be exercised without a filesystem.
//
// Group order is fixed and significant to the runner: output mode,
// parallelism, runpath, name filters, junit xml report, html report,
// result file, tag includes, tag excludes, suites, config entries.
func BuildArgs(cfg *types.RunConfig) []string {
	var args []string

	// -oD prints durations; the W suffix disables ANSI color.
	if cfg.ColorOutput {
		args = append(args, "-oD")
	} else {
		args = append(args, "-oDW")
	}

	// Bare -PS leaves the fork count to the runner's own default.
	if cfg.MaxParallelForks == 0 {
		args = append(args, "-PS")
	} else {
		args = append(args, "-PS"+strconv.Itoa(cfg.MaxParallelForks))
	}

	args = append(args, "-R", escapeSpaces(cfg.TestRoot))

	for _, pattern := range cfg.IncludePatterns {
		args = append(args, "-z", pattern)
	}

	if cfg.Reports.JUnitXMLEnabled {
		args = append(args, "-u", absPath(cfg.Reports.JUnitXMLEntryPoint))
	}

	if cfg.Reports.HTMLEnabled {
		args = append(args, "-h", absPath(cfg.Reports.HTMLDestinationDir))
	}

	if cfg.ResultFilePath != "" {
		args = append(args, "-f", cfg.ResultFilePath)
	}

	for _, tag := range cfg.TagIncludes {
		args = append(args, "-n", tag)
	}
	for _, tag := range cfg.TagExcludes {
		args = append(args, "-l", tag)
	}

	// Duplicate suite names collapse to a set. Iteration order over the
	// set is not a guarantee; the runner treats each -s independently.
	suites := make(map[string]struct{}, len(cfg.Suites))
	for _, suite := range cfg.Suites {
		suites[suite] = struct{}{}
	}
	for suite := range suites {
		args = append(args, "-s", suite)
	}

	// Entry order in the map is insignificant to the runner but sorted
	// here so the built command is reproducible.
	keys := make([]string, 0, len(cfg.ConfigEntries))
	for key := range cfg.ConfigEntries {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		args = append(args, fmt.Sprintf("-D%s=%v", key, cfg.ConfigEntries[key]))
	}

	return args
}

// escapeSpaces prefixes each space with a backslash. The runner splits
// its runpath argument on unescaped spaces.
func escapeSpaces(path string) string {
	return strings.ReplaceAll(path, " ", "\\ ")
}

// absPath resolves path relative to the current working directory.
// Report entry points are handed to the runner and embedded in failure
// messages, so they must not depend on the runner's working directory.
func absPath(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		return path
	}
	return abs
}
