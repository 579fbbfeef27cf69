package connpool

import (
	"sync"

	"github.com/gremnet/go-gremnet/connpool/driver"
)

// deadConnectionTracker records connections observed closed and awaiting
// replacement. Any goroutine that detects a death may Add concurrently;
// only the holder of the pool's population flag drains it.
type deadConnectionTracker struct {
	conns sync.Map // driver.Connection -> struct{}
}

func (t *deadConnectionTracker) Add(conn driver.Connection) {
	t.conns.Store(conn, struct{}{})
}

// Drain removes and returns every tracked connection. A connection added
// more than once comes back once.
func (t *deadConnectionTracker) Drain() []driver.Connection {
	var drained []driver.Connection
	t.conns.Range(func(key, _ interface{}) bool {
		if _, loaded := t.conns.LoadAndDelete(key); loaded {
			drained = append(drained, key.(driver.Connection))
		}
		return true
	})

	return drained
}

func (t *deadConnectionTracker) Empty() bool {
	empty := true
	t.conns.Range(func(_, _ interface{}) bool {
		empty = false
		return false
	})

	return empty
}
