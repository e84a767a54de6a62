package cmd

import (
	"io"
	"os"
	"strings"
	"testing"

	"github.com/urfave/cli/v2"
)

// captureStdout redirects os.Stdout while fn runs and returns what it wrote.
func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	old := os.Stdout
	os.Stdout = w
	defer func() { os.Stdout = old }()

	fn()

	w.Close()
	data, err := io.ReadAll(r)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	return string(data)
}

func argsApp() *cli.App {
	return &cli.App{
		Commands:       []*cli.Command{ArgsCommand()},
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func TestArgsCommand_PrintsTokensOnePerLine(t *testing.T) {
	var runErr error
	out := captureStdout(t, func() {
		runErr = argsApp().Run([]string{
			"scalarun", "args",
			"--format", "table",
			"--test-root", "build/tests",
			"--suite", "com.example.ASpec",
			"--junit-xml", "reports/junit.xml",
		})
	})
	if runErr != nil {
		t.Fatalf("run: %v", runErr)
	}

	lines := strings.Split(strings.TrimSpace(out), "\n")
	joined := strings.Join(lines, " ")
	if !strings.Contains(joined, "-R build/tests") {
		t.Errorf("output missing runpath: %q", out)
	}
	if !strings.Contains(joined, "-s com.example.ASpec") {
		t.Errorf("output missing suite: %q", out)
	}
	if !strings.Contains(joined, "-u") {
		t.Errorf("output missing junit reporter: %q", out)
	}
}

func TestArgsCommand_JSONFormat(t *testing.T) {
	var runErr error
	out := captureStdout(t, func() {
		runErr = argsApp().Run([]string{
			"scalarun", "args",
			"--format", "json",
			"--test-root", "build/tests",
		})
	})
	if runErr != nil {
		t.Fatalf("run: %v", runErr)
	}

	if !strings.Contains(out, `"args"`) || !strings.Contains(out, `"-R"`) {
		t.Errorf("JSON output missing args: %q", out)
	}
}

func TestArgsCommand_RequiresTestRoot(t *testing.T) {
	err := argsApp().Run([]string{"scalarun", "args"})
	if err == nil {
		t.Fatal("expected error without test root")
	}
}
