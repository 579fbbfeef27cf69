package connpool

import (
	"sync"
	"sync/atomic"

	"github.com/gremnet/go-gremnet/connpool/driver"
)

// copyOnWriteSet holds the pool's live connections. Reads are lock-free:
// Snapshot returns the current immutable backing slice, which stays valid
// while writers install replacements. Every mutation happens under mu and
// publishes a fresh slice, never touching one already handed out.
type copyOnWriteSet struct {
	mu    sync.Mutex
	items atomic.Value // []driver.Connection, read-only once stored
}

func newCopyOnWriteSet() *copyOnWriteSet {
	s := &copyOnWriteSet{}
	s.items.Store(make([]driver.Connection, 0))
	return s
}

// Snapshot returns the frozen point-in-time contents of the set. Callers
// must not modify the returned slice.
func (s *copyOnWriteSet) Snapshot() []driver.Connection {
	return s.items.Load().([]driver.Connection)
}

func (s *copyOnWriteSet) Count() int {
	return len(s.Snapshot())
}

// Append publishes a new backing slice extended with conns.
func (s *copyOnWriteSet) Append(conns ...driver.Connection) {
	if len(conns) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.Snapshot()
	next := make([]driver.Connection, 0, len(current)+len(conns))
	next = append(next, current...)
	next = append(next, conns...)
	s.items.Store(next)
}

// Remove publishes a new backing slice without conn and reports whether
// the connection was present.
func (s *copyOnWriteSet) Remove(conn driver.Connection) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.Snapshot()
	next := make([]driver.Connection, 0, len(current))
	found := false
	for _, c := range current {
		if !found && c == conn {
			found = true
			continue
		}
		next = append(next, c)
	}

	if found {
		s.items.Store(next)
	}

	return found
}

// Drain atomically empties the set and returns everything it held.
func (s *copyOnWriteSet) Drain() []driver.Connection {
	s.mu.Lock()
	defer s.mu.Unlock()

	current := s.Snapshot()
	s.items.Store(make([]driver.Connection, 0))
	return current
}
