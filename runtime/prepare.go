package runtime

import (
	"fmt"
	"os"

	"github.com/ashetkar/scalarun/types"
)

// Prepare performs the filesystem work a launch depends on, kept out of
// BuildArgs so the builder stays pure. Currently that is one thing: the
// html report destination directory, which the runner assumes pre-exists.
func Prepare(cfg *types.RunConfig) error {
	if !cfg.Reports.HTMLEnabled {
		return nil
	}
	dir := cfg.Reports.HTMLDestinationDir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create html report dir %s: %w", dir, err)
	}
	return nil
}
