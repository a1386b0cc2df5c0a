package ui

import (
	"strings"
	"sync"
	"time"
)

// ActionEntry is one mutation a user triggered against the backend.
type ActionEntry struct {
	When   time.Time
	Action string
	Target string
	Err    string
}

type ActionLogStore struct {
	mu        sync.Mutex
	userToBuf map[string][]ActionEntry
	max       int
}

func NewActionLogStore(max int) *ActionLogStore {
	if max <= 0 {
		max = 200
	}
	return &ActionLogStore{userToBuf: make(map[string][]ActionEntry), max: max}
}

func (s *ActionLogStore) SetMax(max int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if max <= 0 {
		return
	}
	s.max = max
}

// Append records an action; err may be nil.
func (s *ActionLogStore) Append(username, action, target string, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e := ActionEntry{When: time.Now(), Action: action, Target: target}
	if err != nil {
		e.Err = err.Error()
	}
	buf := append(s.userToBuf[username], e)
	if len(buf) > s.max {
		// älteste verwerfen
		buf = buf[len(buf)-s.max:]
	}
	s.userToBuf[username] = buf
}

// List returns the last n entries, oldest first; n <= 0 returns all.
func (s *ActionLogStore) List(username string, n int) []ActionEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	buf := s.userToBuf[username]
	if n <= 0 || n > len(buf) {
		n = len(buf)
	}
	return append([]ActionEntry(nil), buf[len(buf)-n:]...)
}

// Describe renders an entry as one log line.
func Describe(e ActionEntry) string {
	parts := []string{e.Action}
	if e.Target != "" {
		parts = append(parts, e.Target)
	}
	if e.Err != "" {
		parts = append(parts, "→ "+e.Err)
	}
	return strings.Join(parts, " ")
}
