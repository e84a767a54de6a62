// Package history keeps a local append-only store of past invocations.
//
// Each completed run appends one msgpack-encoded record under the
// history directory. Records are thin slices of the run report: enough
// for `scalarun history` to answer "what ran, when, how did it end"
// without re-reading full reports.
package history

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// recordExt is the file extension of stored records.
const recordExt = ".msgpack"

// Record is one stored invocation.
type Record struct {
	Label      string    `msgpack:"label" json:"label"`
	Outcome    string    `msgpack:"outcome" json:"outcome"`
	Message    string    `msgpack:"message" json:"message"`
	ExitCode   int       `msgpack:"exit_code" json:"exit_code"`
	DurationMs int64     `msgpack:"duration_ms" json:"duration_ms"`
	StartedAt  time.Time `msgpack:"started_at" json:"started_at"`
}

// Store is a directory-backed record store. One file per record; the
// filename carries a nanosecond timestamp so lexical order is
// chronological order.
type Store struct {
	dir string
}

// NewStore opens (creating if needed) a store rooted at dir.
func NewStore(dir string) (*Store, error) {
	if dir == "" {
		return nil, fmt.Errorf("history directory must not be empty")
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create history dir %s: %w", dir, err)
	}
	return &Store{dir: dir}, nil
}

// Append stores one record.
func (s *Store) Append(rec Record) error {
	data, err := msgpack.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode history record: %w", err)
	}

	name := fmt.Sprintf("%020d-%s%s", rec.StartedAt.UnixNano(), sanitizeLabel(rec.Label), recordExt)
	path := filepath.Join(s.dir, name)
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write history record %s: %w", path, err)
	}
	return nil
}

// List returns records newest first. limit == 0 means no limit.
// Unreadable or corrupt record files are skipped; the store is advisory
// and must never fail an invocation over a bad historical entry.
func (s *Store) List(limit int) ([]Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read history dir %s: %w", s.dir, err)
	}

	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), recordExt) {
			continue
		}
		names = append(names, entry.Name())
	}
	// Lexical descending == chronological descending (timestamped names)
	sort.Sort(sort.Reverse(sort.StringSlice(names)))

	var records []Record
	for _, name := range names {
		if limit > 0 && len(records) >= limit {
			break
		}
		data, err := os.ReadFile(filepath.Join(s.dir, name))
		if err != nil {
			continue
		}
		var rec Record
		if err := msgpack.Unmarshal(data, &rec); err != nil {
			continue
		}
		records = append(records, rec)
	}
	return records, nil
}

// sanitizeLabel maps a free-form run label onto a filename-safe token.
func sanitizeLabel(label string) string {
	if label == "" {
		return "run"
	}
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
			return r
		default:
			return '_'
		}
	}, label)
}
