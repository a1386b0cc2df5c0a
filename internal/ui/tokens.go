package ui

import "sync"

// Tokens hands out one monotonic request token per control key. A response
// is only applied if its token is still the current one for that key.
type Tokens struct {
	mu  sync.Mutex
	seq map[string]uint64
}

func NewTokens() *Tokens { return &Tokens{seq: make(map[string]uint64)} }

// Next starts a request for key and returns its token.
func (t *Tokens) Next(key string) uint64 {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.seq[key]++
	return t.seq[key]
}

// Current reports whether tok is still the latest token for key.
func (t *Tokens) Current(key string, tok uint64) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.seq[key] == tok
}
