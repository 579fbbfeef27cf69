// Package connpool implements a client-side pool of persistent,
// multiplexed connections to a remote graph server. The pool keeps a fixed
// number of live connections, spreads concurrent borrowers across them
// under a per-connection concurrency ceiling, and replaces connections
// observed dead through an asynchronous, single-flight repair that never
// blocks the borrower who discovered the death.
package connpool

import (
	"context"
	"math"
	"sync/atomic"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"golang.org/x/sync/errgroup"

	"github.com/gremnet/go-gremnet/base"
	"github.com/gremnet/go-gremnet/connpool/driver"
)

const ProviderName = "connpool"

// States of the population (repair) flag.
const (
	poolIdle int32 = iota
	poolPopulationInProgress
)

// rotationResetThreshold is the safety margin before the rotation counter
// would overflow; once past it the counter restarts from 0 so it can never
// wrap into a negative value.
const rotationResetThreshold = math.MaxInt64 - 10000

// ConnectionPool owns the live connection set. It is safe for concurrent
// use by multiple goroutines.
type ConnectionPool struct {
	// accessed atomically; kept at the top of the struct for alignment
	// on 32-bit platforms
	rotationIndex   int64
	populationState int32
	disposed        int32

	*base.Enity
	*base.MetricsStorage
	*base.ReadyCheckStorage

	config  *Config
	factory driver.Factory

	liveConns *copyOnWriteSet
	deadConns deadConnectionTracker

	// baseCtx carries the logger for work that outlives a borrower's call,
	// such as asynchronous repair.
	baseCtx context.Context

	metricBorrowed    prometheus.Counter
	metricBusy        prometheus.Counter
	metricUnavailable prometheus.Counter
	metricRepairs     prometheus.Counter
}

// NewConnectionPool creates a pool and synchronously populates it with
// config.PoolSize connected connections, created and connected in
// parallel. Construction fails fast: if any create or connect attempt
// fails, every connection of the batch is destroyed and the error is
// returned; the pool starts healthy or not at all.
func NewConnectionPool(
	ctx context.Context,
	name string,
	factory driver.Factory,
	config *Config,
) (*ConnectionPool, error) {
	if config == nil {
		return nil, errors.Wrap(ErrInvalidPoolOptions, "nil config")
	}

	if factory == nil {
		return nil, errors.Wrap(ErrInvalidPoolOptions, "nil factory")
	}

	cfg := config.SetDefault()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	deps := &base.EnityDeps{
		ProviderName: ProviderName,
		Name:         name,
	}

	p := &ConnectionPool{
		Enity:             base.NewEnity(deps),
		MetricsStorage:    base.NewMetricsStorage(),
		ReadyCheckStorage: base.NewReadyCheckStorage(),
		config:            cfg,
		factory:           factory,
		liveConns:         newCopyOnWriteSet(),
		baseCtx:           ctx,
	}

	if err := p.buildMetrics(ctx); err != nil {
		return nil, errors.Wrap(err, "build metrics")
	}

	if err := p.buildReadyHandlers(ctx); err != nil {
		return nil, errors.Wrap(err, "build ready handlers")
	}

	conns, err := p.createConnections(ctx, cfg.PoolSize)
	if err != nil {
		return nil, errors.Wrap(err, "populate pool")
	}
	p.liveConns.Append(conns...)

	p.GetLogger(ctx).Info().
		Int("pool_size", cfg.PoolSize).
		Int("max_in_process", cfg.MaxInProcessPerConnection).
		Msg("connection pool populated")

	return p, nil
}

// NumConnections returns the current live-set size.
func (p *ConnectionPool) NumConnections() int {
	return p.liveConns.Count()
}

// getAvailableConnection is a single best-effort selection pass over a
// point-in-time snapshot of the live set.
func (p *ConnectionPool) getAvailableConnection(ctx context.Context) (*ProxiedConnection, error) {
	if p.isDisposed() {
		return nil, ErrPoolDisposed
	}

	snapshot := p.liveConns.Snapshot()
	if len(snapshot) == 0 {
		p.metricUnavailable.Inc()
		return nil, errors.Wrap(ErrServerUnavailable, "pool is empty")
	}

	offset := p.nextStartingPoint(len(snapshot))

	deadSkips := 0
	for i := 0; i < len(snapshot); i++ {
		conn := snapshot[(offset+i)%len(snapshot)]

		if conn.InFlight() >= p.config.MaxInProcessPerConnection {
			// Merely busy, not dead.
			continue
		}

		if !conn.IsOpen() {
			deadSkips++
			p.considerUnavailable(ctx, conn)
			continue
		}

		p.metricBorrowed.Inc()
		return newProxiedConnection(conn, p.considerUnavailable), nil
	}

	if deadSkips < len(snapshot) {
		// At least one candidate was alive but saturated, so this is a
		// capacity condition, not an availability one.
		p.metricBusy.Inc()
		return nil, NewPoolBusyError(p.config.PoolSize, p.config.MaxInProcessPerConnection)
	}

	p.metricUnavailable.Inc()
	return nil, ErrServerUnavailable
}

// nextStartingPoint rotates the shared counter and derives the offset the
// scan starts from. Two concurrent borrowers may get overlapping offsets;
// distribution is probabilistic, not a strict global round-robin.
func (p *ConnectionPool) nextStartingPoint(length int) int {
	if atomic.LoadInt64(&p.rotationIndex) > rotationResetThreshold {
		atomic.StoreInt64(&p.rotationIndex, 0)
	}

	return int(atomic.AddInt64(&p.rotationIndex, 1) % int64(length))
}

// considerUnavailable records conn as dead and kicks off an asynchronous
// repair. It never blocks and never fails the goroutine that noticed the
// death.
func (p *ConnectionPool) considerUnavailable(ctx context.Context, conn driver.Connection) {
	p.GetLogger(ctx).Warn().
		Str("conn_id", conn.ID()).
		Msg("connection observed closed, scheduling replacement")

	p.deadConns.Add(conn)
	p.ensurePoolIsPopulated()
}

// ensurePoolIsPopulated starts a single-flight repair run. When another
// run already holds the population flag this is a no-op: that run
// re-drains the dead set before finishing, so the connection that
// triggered us is picked up anyway.
func (p *ConnectionPool) ensurePoolIsPopulated() {
	if p.isDisposed() {
		return
	}

	if !atomic.CompareAndSwapInt32(&p.populationState, poolIdle, poolPopulationInProgress) {
		return
	}

	go p.populationRun()
}

// populationRun executes one repair pass. The population flag is released
// no matter how the pass ends, so a failed repair can never block future
// ones. Afterwards the dead set is re-checked: connections that died
// during the pass re-trigger the whole sequence so nothing is stranded.
func (p *ConnectionPool) populationRun() {
	p.metricRepairs.Inc()

	func() {
		defer atomic.StoreInt32(&p.populationState, poolIdle)

		if err := p.replaceDeadConnections(p.baseCtx); err != nil {
			// The pool may stay under size until a later repair succeeds.
			p.GetLogger(p.baseCtx).Err(err).Msg("pool repair failed")
		}
	}()

	if !p.deadConns.Empty() {
		p.ensurePoolIsPopulated()
	}
}

// replaceDeadConnections evicts everything in the dead set, destroys it,
// and restores the live set to the configured size.
func (p *ConnectionPool) replaceDeadConnections(ctx context.Context) error {
	for _, conn := range p.deadConns.Drain() {
		// A connection reported twice (stale snapshot, late proxy release)
		// is destroyed only on the pass that actually evicts it.
		if p.liveConns.Remove(conn) {
			p.destroyConnection(ctx, conn)
		}
	}

	if p.isDisposed() {
		return nil
	}

	missing := p.config.PoolSize - p.liveConns.Count()
	if missing <= 0 {
		return nil
	}

	conns, err := p.createConnections(ctx, missing)
	if err != nil {
		return errors.Wrap(err, "create replacement connections")
	}
	p.liveConns.Append(conns...)

	// Shutdown may have raced with the refill; nothing must survive it.
	if p.isDisposed() {
		for _, conn := range p.liveConns.Drain() {
			p.destroyConnection(ctx, conn)
		}
		return nil
	}

	p.GetLogger(ctx).Info().
		Int("replaced", missing).
		Int("connections", p.NumConnections()).
		Msg("pool repaired")

	return nil
}

// createConnections creates and connects count connections in parallel.
// On any failure the whole batch is destroyed and the first error is
// returned.
func (p *ConnectionPool) createConnections(ctx context.Context, count int) ([]driver.Connection, error) {
	conns := make([]driver.Connection, count)

	g, groupCtx := errgroup.WithContext(ctx)
	for i := 0; i < count; i++ {
		i := i
		g.Go(func() error {
			conn, err := p.factory.CreateConnection(groupCtx)
			if err != nil {
				return errors.Wrap(err, "create connection")
			}
			conns[i] = conn

			if err := conn.Connect(groupCtx); err != nil {
				return errors.Wrapf(err, "connect connection %q", conn.ID())
			}

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		for _, conn := range conns {
			if conn != nil {
				p.destroyConnection(ctx, conn)
			}
		}
		return nil, err
	}

	return conns, nil
}

// destroyConnection closes then destroys conn. Close failures are logged;
// destruction still proceeds.
func (p *ConnectionPool) destroyConnection(ctx context.Context, conn driver.Connection) {
	if err := conn.Close(ctx); err != nil {
		p.GetLogger(ctx).Err(err).Str("conn_id", conn.ID()).Msg("close connection")
	}

	conn.Destroy()
}

func (p *ConnectionPool) isDisposed() bool {
	return atomic.LoadInt32(&p.disposed) == 1
}

// Shutdown releases every pooled connection. Repeated calls are no-ops.
// This is a blocking call.
func (p *ConnectionPool) Shutdown(ctx context.Context) error {
	if !atomic.CompareAndSwapInt32(&p.disposed, 0, 1) {
		return nil
	}

	p.GetLogger(ctx).Info().Msg("shutting down")

	for _, conn := range p.liveConns.Drain() {
		p.destroyConnection(ctx, conn)
	}

	p.GetLogger(ctx).Info().Msg("shutted down")

	return nil
}
