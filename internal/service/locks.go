package service

import "sync"

// groupLocks serializes writes per group. Bill saves and settlement
// recording inside one group must not interleave, but different groups
// never contend: balance recomputation is replay-based, so cross-group
// ordering needs no global lock.
type groupLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newGroupLocks() *groupLocks {
	return &groupLocks{locks: make(map[string]*sync.Mutex)}
}

// lock acquires the group's mutex and returns the unlock func.
func (g *groupLocks) lock(groupID string) func() {
	g.mu.Lock()
	m, ok := g.locks[groupID]
	if !ok {
		m = &sync.Mutex{}
		g.locks[groupID] = m
	}
	g.mu.Unlock()

	m.Lock()
	return m.Unlock
}
