package connpool

import (
	"context"
	"sync"

	"github.com/gremnet/go-gremnet/connpool/driver"
)

// ProxiedConnection is the borrowed handle returned to callers. It
// delegates every operation to the pooled connection it wraps and, when
// the borrower releases it, reports a post-use closure back to the pool at
// most once. The handle never owns the underlying connection.
type ProxiedConnection struct {
	conn       driver.Connection
	reportOnce sync.Once
	reportDead func(ctx context.Context, conn driver.Connection)
}

func newProxiedConnection(
	conn driver.Connection,
	reportDead func(ctx context.Context, conn driver.Connection),
) *ProxiedConnection {
	return &ProxiedConnection{
		conn:       conn,
		reportDead: reportDead,
	}
}

func (p *ProxiedConnection) ID() string {
	return p.conn.ID()
}

func (p *ProxiedConnection) Connect(ctx context.Context) error {
	return p.conn.Connect(ctx)
}

func (p *ProxiedConnection) IsOpen() bool {
	return p.conn.IsOpen()
}

func (p *ProxiedConnection) InFlight() int {
	return p.conn.InFlight()
}

func (p *ProxiedConnection) Close(ctx context.Context) error {
	return p.conn.Close(ctx)
}

func (p *ProxiedConnection) Destroy() {
	p.conn.Destroy()
}

// Unwrap returns the pooled connection behind the handle.
func (p *ProxiedConnection) Unwrap() driver.Connection {
	return p.conn
}

// Release signals that the borrower is done with the connection. If the
// connection died while borrowed, its death is reported to the pool; the
// report fires at most once per handle, no matter how often Release is
// called.
func (p *ProxiedConnection) Release(ctx context.Context) {
	if p.conn.IsOpen() {
		return
	}

	p.reportOnce.Do(func() {
		p.reportDead(ctx, p.conn)
	})
}
