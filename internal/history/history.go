// Package history persists completed cleanups and saved scan selections.
// Neither changes how scanning or deletion behave.
package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"
)

// Record is one completed cleanup.
type Record struct {
	ID         string    `json:"id" yaml:"id"`
	Timestamp  time.Time `json:"timestamp" yaml:"timestamp"`
	Mode       string    `json:"mode" yaml:"mode"`
	BytesFreed int64     `json:"bytes_freed" yaml:"bytes_freed"`
	ItemCount  int       `json:"item_count" yaml:"item_count"`
	Errors     int       `json:"errors" yaml:"errors"`
	Shredded   bool      `json:"shredded,omitempty" yaml:"shredded,omitempty"`
}

// Totals aggregates every record in the log.
type Totals struct {
	Runs       int
	BytesFreed int64
	Items      int
	Errors     int
	First      time.Time
	Last       time.Time
}

// Store is an append-only JSON-lines log guarded by a lock file, so the CLI
// and the daemon can both write to it.
type Store struct {
	path string
	mu   sync.Mutex // flock does not serialize goroutines sharing one handle
	lock *flock.Flock
}

// NewStore opens the log at path, creating its directory.
func NewStore(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create history directory: %w", err)
	}
	return &Store{
		path: path,
		lock: flock.New(path + ".lock"),
	}, nil
}

// Path returns the log file path
func (s *Store) Path() string {
	return s.path
}

// Append writes a record. ID and Timestamp are filled in when empty.
func (s *Store) Append(rec Record) (Record, error) {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	if rec.Timestamp.IsZero() {
		rec.Timestamp = time.Now()
	}

	line, err := json.Marshal(rec)
	if err != nil {
		return rec, fmt.Errorf("failed to marshal history record: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.lock.Lock(); err != nil {
		return rec, fmt.Errorf("failed to lock history: %w", err)
	}
	defer s.lock.Unlock()

	f, err := os.OpenFile(s.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return rec, fmt.Errorf("failed to open history: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(line, '\n')); err != nil {
		return rec, fmt.Errorf("failed to write history: %w", err)
	}
	return rec, nil
}

// List returns up to limit records, newest first. limit <= 0 returns all.
// Malformed lines are skipped.
func (s *Store) List(limit int) ([]Record, error) {
	records, err := s.readAll()
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.After(records[j].Timestamp)
	})

	if limit > 0 && len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// Totals sums every record in the log.
func (s *Store) Totals() (Totals, error) {
	records, err := s.readAll()
	if err != nil {
		return Totals{}, err
	}

	var t Totals
	for _, r := range records {
		t.Runs++
		t.BytesFreed += r.BytesFreed
		t.Items += r.ItemCount
		t.Errors += r.Errors
		if t.First.IsZero() || r.Timestamp.Before(t.First) {
			t.First = r.Timestamp
		}
		if r.Timestamp.After(t.Last) {
			t.Last = r.Timestamp
		}
	}
	return t, nil
}

func (s *Store) readAll() ([]Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.lock.RLock(); err != nil {
		return nil, fmt.Errorf("failed to lock history: %w", err)
	}
	defer s.lock.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	defer f.Close()

	var records []Record
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var r Record
		if err := json.Unmarshal(sc.Bytes(), &r); err != nil {
			continue
		}
		records = append(records, r)
	}
	if err := sc.Err(); err != nil {
		return records, fmt.Errorf("failed to read history: %w", err)
	}
	return records, nil
}
