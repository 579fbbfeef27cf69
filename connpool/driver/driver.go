// Package driver defines the contracts between the connection pool and
// the transport layer that supplies its connections. The pool never dials
// or frames traffic itself; it only manages lifecycles through these
// interfaces.
package driver

import "context"

// Connection is a single persistent, multiplexed channel to the graph
// server. A connection is owned by the pool for as long as it is pooled;
// callers only ever borrow it.
type Connection interface {
	// ID returns a stable opaque identifier, used for set membership and
	// logging.
	ID() string
	// Connect establishes the underlying channel. Connections are created
	// unconnected; the pool calls Connect exactly once per connection.
	Connect(ctx context.Context) error
	// IsOpen reports liveness. Once it has returned false it must never
	// report true again.
	IsOpen() bool
	// InFlight returns the number of requests currently executing on the
	// connection. It is mutated by request traffic outside the pool's
	// control.
	InFlight() int
	// Close initiates shutdown of the channel.
	Close(ctx context.Context) error
	// Destroy releases all resources held by the connection. The pool
	// calls it exactly once, after Close.
	Destroy()
}

// Factory constructs unconnected connections in a fixed configuration.
type Factory interface {
	// CreateConnection returns a new unconnected connection. It must not
	// perform I/O; dialing happens in Connection.Connect.
	CreateConnection(ctx context.Context) (Connection, error)
}
