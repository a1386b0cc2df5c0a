package ui

import (
	"sync"

	"github.com/fwmsg/aufgaben-web/internal/matrix"
)

type cacheKey struct {
	user string
	task int64
}

// SubstepCache is the in-memory model of loaded sub-step panels. An entry
// exists once the panel was loaded; later opens are served from here.
type SubstepCache struct {
	mu      sync.RWMutex
	entries map[cacheKey]matrix.SubstepList
}

func NewSubstepCache() *SubstepCache {
	return &SubstepCache{entries: make(map[cacheKey]matrix.SubstepList)}
}

func (c *SubstepCache) Get(user string, task int64) (matrix.SubstepList, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	l, ok := c.entries[cacheKey{user, task}]
	if !ok {
		return matrix.SubstepList{}, false
	}
	return l.Clone(), true
}

func (c *SubstepCache) Put(user string, l matrix.SubstepList) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[cacheKey{user, l.TaskID}] = l.Clone()
}

// SetStep updates a cached step. It returns the updated list, or false when
// the panel was never loaded or the step is unknown.
func (c *SubstepCache) SetStep(user string, task, step int64, done bool) (matrix.SubstepList, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	l, ok := c.entries[cacheKey{user, task}]
	if !ok {
		return matrix.SubstepList{}, false
	}
	l = l.Clone()
	if !l.SetStep(step, done) {
		return matrix.SubstepList{}, false
	}
	c.entries[cacheKey{user, task}] = l
	return l.Clone(), true
}

// Invalidate drops one panel, e.g. after its task changed state.
func (c *SubstepCache) Invalidate(user string, task int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, cacheKey{user, task})
}

// Reset drops every panel of every user.
func (c *SubstepCache) Reset() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	n := len(c.entries)
	c.entries = make(map[cacheKey]matrix.SubstepList)
	return n
}
