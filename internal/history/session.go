package history

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/fenilsonani/winsweep/internal/scanner"
)

// ErrNoSession is returned when no saved scan exists.
var ErrNoSession = errors.New("no saved scan")

// Session is a saved scan so a later clean can act on the same selection.
type Session struct {
	ID        string            `json:"id"`
	CreatedAt time.Time         `json:"created_at"`
	Modes     []string          `json:"modes"`
	Findings  []scanner.Finding `json:"findings"`
}

// SessionStore keeps one JSON file per saved scan.
type SessionStore struct {
	dir string
}

// NewSessionStore opens the sessions directory, creating it.
func NewSessionStore(dir string) (*SessionStore, error) {
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}
	return &SessionStore{dir: dir}, nil
}

// Save writes a new session and returns it with its ID set.
func (s *SessionStore) Save(modes []scanner.Mode, findings []scanner.Finding) (*Session, error) {
	sess := &Session{
		ID:        uuid.NewString(),
		CreatedAt: time.Now(),
		Findings:  findings,
	}
	for _, m := range modes {
		sess.Modes = append(sess.Modes, string(m))
	}

	data, err := json.MarshalIndent(sess, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal session: %w", err)
	}

	// Write then rename so a reader never sees a partial file.
	final := filepath.Join(s.dir, sess.ID+".json")
	tmp := final + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return nil, fmt.Errorf("failed to write session: %w", err)
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return nil, fmt.Errorf("failed to save session: %w", err)
	}
	return sess, nil
}

// Load reads a session by ID. A unique ID prefix is accepted.
func (s *SessionStore) Load(id string) (*Session, error) {
	if _, err := uuid.Parse(id); err != nil {
		full, err := s.resolvePrefix(id)
		if err != nil {
			return nil, err
		}
		id = full
	}
	return s.read(filepath.Join(s.dir, id+".json"))
}

// Latest returns the most recently saved session.
func (s *SessionStore) Latest() (*Session, error) {
	sessions, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(sessions) == 0 {
		return nil, ErrNoSession
	}
	return sessions[0], nil
}

// List returns every readable session, newest first.
func (s *SessionStore) List() ([]*Session, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	var sessions []*Session
	for _, e := range entries {
		if e.IsDir() || filepath.Ext(e.Name()) != ".json" {
			continue
		}
		sess, err := s.read(filepath.Join(s.dir, e.Name()))
		if err != nil {
			continue
		}
		sessions = append(sessions, sess)
	}

	sort.Slice(sessions, func(i, j int) bool {
		return sessions[i].CreatedAt.After(sessions[j].CreatedAt)
	})
	return sessions, nil
}

// Prune removes all but the newest keep sessions and reports how many were
// deleted.
func (s *SessionStore) Prune(keep int) (int, error) {
	sessions, err := s.List()
	if err != nil {
		return 0, err
	}
	removed := 0
	for i := keep; i < len(sessions); i++ {
		if err := os.Remove(filepath.Join(s.dir, sessions[i].ID+".json")); err == nil {
			removed++
		}
	}
	return removed, nil
}

func (s *SessionStore) resolvePrefix(prefix string) (string, error) {
	if prefix == "" {
		return "", ErrNoSession
	}
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return "", fmt.Errorf("failed to list sessions: %w", err)
	}

	var match string
	for _, e := range entries {
		name := strings.TrimSuffix(e.Name(), ".json")
		if name == e.Name() || !strings.HasPrefix(name, prefix) {
			continue
		}
		if match != "" {
			return "", fmt.Errorf("session prefix %q is ambiguous", prefix)
		}
		match = name
	}
	if match == "" {
		return "", fmt.Errorf("%w: %s", ErrNoSession, prefix)
	}
	return match, nil
}

func (s *SessionStore) read(path string) (*Session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	var sess Session
	if err := json.Unmarshal(data, &sess); err != nil {
		return nil, fmt.Errorf("failed to parse session %s: %w", filepath.Base(path), err)
	}
	return &sess, nil
}
