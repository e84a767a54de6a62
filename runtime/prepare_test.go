package runtime

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/ashetkar/scalarun/types"
)

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func TestPrepare_CreatesHTMLDirRecursively(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "a", "b", "html")
	cfg := &types.RunConfig{
		TestRoot: "/build/test-classes",
		Reports: types.ReportSettings{
			HTMLEnabled:        true,
			HTMLDestinationDir: dest,
		},
	}

	if err := Prepare(cfg); err != nil {
		t.Fatalf("Prepare() = %v", err)
	}
	if !dirExists(dest) {
		t.Errorf("destination dir %s not created", dest)
	}

	// Idempotent on a pre-existing dir
	if err := Prepare(cfg); err != nil {
		t.Fatalf("Prepare() second call = %v", err)
	}
}

func TestPrepare_HTMLDisabledTouchesNothing(t *testing.T) {
	dest := filepath.Join(t.TempDir(), "never")
	cfg := &types.RunConfig{
		TestRoot: "/build/test-classes",
		Reports: types.ReportSettings{
			HTMLEnabled:        false,
			HTMLDestinationDir: dest,
		},
	}

	if err := Prepare(cfg); err != nil {
		t.Fatalf("Prepare() = %v", err)
	}
	if dirExists(dest) {
		t.Errorf("html disabled but destination dir %s was created", dest)
	}
}
