package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(filepath.Join(t.TempDir(), "history"))
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func TestStore_AppendAndList(t *testing.T) {
	s := newTestStore(t)

	base := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	for i, label := range []string{"first", "second", "third"} {
		rec := Record{
			Label:      label,
			Outcome:    "success",
			Message:    "all tests passed",
			DurationMs: int64(100 * (i + 1)),
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		if err := s.Append(rec); err != nil {
			t.Fatalf("Append(%s): %v", label, err)
		}
	}

	records, err := s.List(0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("got %d records, want 3", len(records))
	}
	// Newest first.
	want := []string{"third", "second", "first"}
	for i, label := range want {
		if records[i].Label != label {
			t.Errorf("records[%d].Label = %q, want %q", i, records[i].Label, label)
		}
	}
	if !records[0].StartedAt.Equal(base.Add(2 * time.Minute)) {
		t.Errorf("StartedAt not preserved: %v", records[0].StartedAt)
	}
}

func TestStore_ListLimit(t *testing.T) {
	s := newTestStore(t)

	base := time.Now()
	for i := 0; i < 5; i++ {
		rec := Record{Label: "run", Outcome: "failed", StartedAt: base.Add(time.Duration(i) * time.Second)}
		if err := s.Append(rec); err != nil {
			t.Fatalf("Append: %v", err)
		}
	}

	records, err := s.List(2)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
}

func TestStore_ListEmpty(t *testing.T) {
	s := newTestStore(t)

	records, err := s.List(0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("got %d records, want 0", len(records))
	}
}

func TestStore_ListSkipsCorruptRecords(t *testing.T) {
	s := newTestStore(t)

	if err := s.Append(Record{Label: "good", Outcome: "success", StartedAt: time.Now()}); err != nil {
		t.Fatalf("Append: %v", err)
	}
	corrupt := filepath.Join(s.dir, "00000000000000000001-bad.msgpack")
	if err := os.WriteFile(corrupt, []byte("not msgpack"), 0o644); err != nil {
		t.Fatalf("write corrupt record: %v", err)
	}

	records, err := s.List(0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 || records[0].Label != "good" {
		t.Fatalf("got %+v, want single good record", records)
	}
}

func TestStore_IgnoresForeignFiles(t *testing.T) {
	s := newTestStore(t)

	if err := os.WriteFile(filepath.Join(s.dir, "README.txt"), []byte("notes"), 0o644); err != nil {
		t.Fatalf("write foreign file: %v", err)
	}

	records, err := s.List(0)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 0 {
		t.Fatalf("got %d records, want 0", len(records))
	}
}

func TestNewStore_EmptyDir(t *testing.T) {
	if _, err := NewStore(""); err == nil {
		t.Fatal("expected error for empty dir")
	}
}

func TestSanitizeLabel(t *testing.T) {
	cases := map[string]string{
		"":              "run",
		"ci-nightly":    "ci-nightly",
		"my suite/2026": "my_suite_2026",
	}
	for in, want := range cases {
		if got := sanitizeLabel(in); got != want {
			t.Errorf("sanitizeLabel(%q) = %q, want %q", in, got, want)
		}
	}
}
