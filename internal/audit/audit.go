// Package audit writes the append-only log of alias actions taken.
//
// The log is the only state persisted between reconciliation passes; every
// pass recomputes its view from live inventory. Records are JSON lines so
// the file can be tailed and filtered with standard tooling on the bastion.
package audit

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
	"time"
)

// Record is one alias action.
type Record struct {
	Time     time.Time `json:"time"`
	Node     string    `json:"node"`
	OldAlias string    `json:"old_alias"`
	NewAlias string    `json:"new_alias"`
	Outcome  string    `json:"outcome"` // "ok" or "error"
	Reason   string    `json:"reason"`  // "converge", "clear" or "collision"
	Error    string    `json:"error,omitempty"`
}

// Log appends records to a writer. Safe for concurrent use.
type Log struct {
	mu sync.Mutex
	w  io.Writer
	f  *os.File // non-nil when opened from a path
}

// New wraps an existing writer, typically for tests.
func New(w io.Writer) *Log {
	return &Log{w: w}
}

// Open opens (or creates) the append-only log file at path.
func Open(path string) (*Log, error) {
	// #nosec G304
	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, fmt.Errorf("failed to open audit log: %w", err)
	}
	return &Log{w: f, f: f}, nil
}

// Append writes one record as a JSON line.
func (l *Log) Append(rec Record) error {
	if rec.Time.IsZero() {
		rec.Time = time.Now().UTC()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal audit record: %w", err)
	}

	l.mu.Lock()
	defer l.mu.Unlock()
	if _, err := l.w.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to append audit record: %w", err)
	}
	return nil
}

// Close closes the underlying file, if any.
func (l *Log) Close() error {
	if l.f == nil {
		return nil
	}
	return l.f.Close()
}
