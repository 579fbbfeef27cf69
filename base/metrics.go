package base

import (
	"strings"
	"sync"

	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
)

// MetricOptions describes a single named prometheus collector owned by an
// enity.
type MetricOptions struct {
	// Metric name
	Name string
	// Metric is a metric
	Metric prometheus.Collector
}

// NewMetricOptionsGaugeFunc builds a gauge whose value is pulled from f on
// every scrape.
func NewMetricOptionsGaugeFunc(fullName, postfix, help string, f func() float64) *MetricOptions {
	name := fullName + preparePostfix(postfix)
	return &MetricOptions{
		Name: name,
		Metric: prometheus.NewGaugeFunc(
			prometheus.GaugeOpts{
				Name: name,
				Help: strings.Join([]string{fullName, help}, " "),
			}, f),
	}
}

// NewMetricOptionsIncCounter builds a counter and returns it alongside the
// options so the owner can increment it directly.
func NewMetricOptionsIncCounter(fullName, postfix, help string) (*MetricOptions, prometheus.Counter) {
	name := fullName + preparePostfix(postfix)
	counter := prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: name,
			Help: strings.Join([]string{fullName, help}, " "),
		})

	return &MetricOptions{Name: name, Metric: counter}, counter
}

func preparePostfix(postfix string) string {
	return "_" + strings.ReplaceAll(postfix, " ", "_")
}

type MapMetricsOptions struct {
	mu      sync.RWMutex
	options map[string]*MetricOptions
}

func NewMapMetricsOptions() *MapMetricsOptions {
	return &MapMetricsOptions{
		options: make(map[string]*MetricOptions),
	}
}

func (mmo *MapMetricsOptions) Add(options *MetricOptions) error {
	mmo.mu.Lock()
	defer mmo.mu.Unlock()

	if options == nil {
		return ErrOptionsIsNil
	}

	if options.Name == "" {
		return ErrEmptyOptionsName
	}

	if _, ok := mmo.options[options.Name]; ok {
		return errors.Wrapf(ErrConflictName, "name: %s", options.Name)
	}

	mmo.options[options.Name] = options

	return nil
}

func (mmo *MapMetricsOptions) Append(src *MapMetricsOptions) error {
	src.mu.RLock()
	defer src.mu.RUnlock()

	for _, m := range src.options {
		if err := mmo.Add(m); err != nil {
			return errors.Wrap(err, "add metric")
		}
	}

	return nil
}

// Collectors returns every registered collector, for handing to a
// prometheus.Registerer.
func (mmo *MapMetricsOptions) Collectors() []prometheus.Collector {
	mmo.mu.RLock()
	defer mmo.mu.RUnlock()

	collectors := make([]prometheus.Collector, 0, len(mmo.options))
	for _, m := range mmo.options {
		collectors = append(collectors, m.Metric)
	}
	return collectors
}

type MetricsStorage struct {
	metrics *MapMetricsOptions
}

func NewMetricsStorage() *MetricsStorage {
	return &MetricsStorage{
		metrics: NewMapMetricsOptions(),
	}
}

func (s *MetricsStorage) GetMetrics() *MapMetricsOptions {
	return s.metrics
}

// RegisterMetrics registers every owned collector in r.
func (s *MetricsStorage) RegisterMetrics(r prometheus.Registerer) error {
	for _, collector := range s.metrics.Collectors() {
		if err := r.Register(collector); err != nil {
			return errors.Wrap(err, "register collector")
		}
	}
	return nil
}
