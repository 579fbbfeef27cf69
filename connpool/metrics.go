package connpool

import (
	"context"
	"strings"

	"github.com/pkg/errors"

	"github.com/gremnet/go-gremnet/base"
)

func (p *ConnectionPool) buildMetrics(_ context.Context) error {
	fullName := p.GetFullName()

	gauge := base.NewMetricOptionsGaugeFunc(
		fullName,
		"connections",
		"current live connection count",
		func() float64 {
			return float64(p.NumConnections())
		},
	)
	if err := p.GetMetrics().Add(gauge); err != nil {
		return errors.Wrap(err, "add gauge")
	}

	borrowedOpts, borrowed := base.NewMetricOptionsIncCounter(
		fullName, "borrowed total", "total connections borrowed from the pool")
	if err := p.GetMetrics().Add(borrowedOpts); err != nil {
		return errors.Wrap(err, "add counter")
	}
	p.metricBorrowed = borrowed

	busyOpts, busy := base.NewMetricOptionsIncCounter(
		fullName, "busy total", "total acquisitions rejected because every open connection was saturated")
	if err := p.GetMetrics().Add(busyOpts); err != nil {
		return errors.Wrap(err, "add counter")
	}
	p.metricBusy = busy

	unavailableOpts, unavailable := base.NewMetricOptionsIncCounter(
		fullName, "unavailable total", "total selection passes that found no open connection")
	if err := p.GetMetrics().Add(unavailableOpts); err != nil {
		return errors.Wrap(err, "add counter")
	}
	p.metricUnavailable = unavailable

	repairsOpts, repairs := base.NewMetricOptionsIncCounter(
		fullName, "repairs total", "total repair runs")
	if err := p.GetMetrics().Add(repairsOpts); err != nil {
		return errors.Wrap(err, "add counter")
	}
	p.metricRepairs = repairs

	return nil
}

func (p *ConnectionPool) buildReadyHandlers(_ context.Context) error {
	return p.GetReadyHandlers().Add(&base.CheckOptions{
		Name: strings.ToUpper(p.GetFullName() + "_notfailed"),
		CheckFunc: func(_ context.Context) error {
			if p.NumConnections() == 0 {
				return base.ErrNotConnected
			}

			return nil
		},
	})
}
