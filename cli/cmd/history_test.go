package cmd

import (
	"strings"
	"testing"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/ashetkar/scalarun/history"
)

func historyApp() *cli.App {
	return &cli.App{
		Commands:       []*cli.Command{HistoryCommand()},
		ExitErrHandler: func(*cli.Context, error) {},
	}
}

func TestHistoryCommand_ListsRecords(t *testing.T) {
	dir := t.TempDir()
	store, err := history.NewStore(dir)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	base := time.Now()
	for i, label := range []string{"older", "newer"} {
		rec := history.Record{
			Label:     label,
			Outcome:   "success",
			StartedAt: base.Add(time.Duration(i) * time.Second),
		}
		if err := store.Append(rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	out := captureStdout(t, func() {
		if err := historyApp().Run([]string{
			"scalarun", "history",
			"--format", "json",
			"--history-dir", dir,
		}); err != nil {
			t.Errorf("run: %v", err)
		}
	})

	if !strings.Contains(out, "older") || !strings.Contains(out, "newer") {
		t.Errorf("output missing records: %q", out)
	}
	// Newest first.
	if strings.Index(out, "newer") > strings.Index(out, "older") {
		t.Errorf("records not newest first: %q", out)
	}
}

func TestHistoryCommand_EmptyStore(t *testing.T) {
	out := captureStdout(t, func() {
		if err := historyApp().Run([]string{
			"scalarun", "history",
			"--format", "json",
			"--history-dir", t.TempDir(),
		}); err != nil {
			t.Errorf("run: %v", err)
		}
	})

	if !strings.Contains(out, "null") && !strings.Contains(out, "[]") {
		t.Errorf("expected empty JSON list, got %q", out)
	}
}

func TestHistoryCommand_Limit(t *testing.T) {
	dir := t.TempDir()
	store, err := history.NewStore(dir)
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	base := time.Now()
	for i := 0; i < 3; i++ {
		rec := history.Record{Label: "run", Outcome: "failed", StartedAt: base.Add(time.Duration(i) * time.Second)}
		if err := store.Append(rec); err != nil {
			t.Fatalf("append: %v", err)
		}
	}

	out := captureStdout(t, func() {
		if err := historyApp().Run([]string{
			"scalarun", "history",
			"--format", "json",
			"--history-dir", dir,
			"--limit", "2",
		}); err != nil {
			t.Errorf("run: %v", err)
		}
	})

	if got := strings.Count(out, `"failed"`); got != 2 {
		t.Errorf("got %d records in output, want 2: %q", got, out)
	}
}
