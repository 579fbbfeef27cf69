package connpool

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gremnet/go-gremnet/connpool/driver"
)

func TestProxiedConnection_Delegates(t *testing.T) {
	conn := newFakeConnection()
	require.NoError(t, conn.Connect(context.Background()))
	conn.setInFlight(7)

	proxy := newProxiedConnection(conn, func(context.Context, driver.Connection) {})

	assert.Equal(t, conn.ID(), proxy.ID())
	assert.True(t, proxy.IsOpen())
	assert.Equal(t, 7, proxy.InFlight())
	assert.Equal(t, conn, proxy.Unwrap())

	assert.NoError(t, proxy.Close(context.Background()))
	assert.False(t, proxy.IsOpen())

	proxy.Destroy()
	assert.Equal(t, 1, conn.destroyCount())
}

func TestProxiedConnection_ReleaseOpenConnectionDoesNotReport(t *testing.T) {
	conn := newFakeConnection()
	require.NoError(t, conn.Connect(context.Background()))

	var reports int32
	proxy := newProxiedConnection(conn, func(context.Context, driver.Connection) {
		atomic.AddInt32(&reports, 1)
	})

	proxy.Release(context.Background())
	assert.Equal(t, int32(0), atomic.LoadInt32(&reports))
}

func TestProxiedConnection_ReleaseClosedReportsOnce(t *testing.T) {
	conn := newFakeConnection()
	require.NoError(t, conn.Connect(context.Background()))
	conn.forceClose()

	var reports int32
	proxy := newProxiedConnection(conn, func(_ context.Context, reported driver.Connection) {
		atomic.AddInt32(&reports, 1)
		assert.Equal(t, conn, reported)
	})

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			proxy.Release(context.Background())
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), atomic.LoadInt32(&reports))
}

func TestProxiedConnection_ReleaseTriggersPoolRepair(t *testing.T) {
	factory := &fakeFactory{}
	pool := newTestPool(t, factory, testConfig(2, 10))

	borrowed, err := pool.GetAvailableConnection(context.Background())
	require.NoError(t, err)

	conn, ok := borrowed.Unwrap().(*fakeConnection)
	require.True(t, ok)

	// The connection dies while borrowed; the pool finds out on release.
	conn.forceClose()
	borrowed.Release(context.Background())

	assert.Eventually(t, func() bool {
		return pool.NumConnections() == 2 && !snapshotContains(pool, conn)
	}, time.Second, time.Millisecond)
	assert.Equal(t, 1, conn.destroyCount())
}
