// Package metric wires the run's observable counters and gauges
// through prometheus: a run registers Metrics against a
// prometheus.Registerer once at configuration time, then updates them
// from the driver's per-generation callback.
package metric

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Registerer is the subset of prometheus.Registerer the core depends
// on, kept as its own name so callers don't need the prometheus import
// just to pass one through.
type Registerer interface {
	prometheus.Registerer
}

// NewRegistry returns a fresh prometheus registry suitable as both a
// Registerer and a prometheus.Gatherer.
func NewRegistry() *prometheus.Registry {
	return prometheus.NewRegistry()
}

// Metrics is the set of counters and gauges a run exposes: generations
// and evaluations completed, current archive/front sizes, and a
// histogram of generation wall-clock time.
type Metrics struct {
	Generations      prometheus.Counter
	Evaluations      prometheus.Counter
	ArchiveSize      prometheus.Gauge
	NonDominatedSize prometheus.Gauge
	GenerationMillis prometheus.Histogram
}

// New creates and registers a Metrics set under namespace. Registration
// failure (a duplicate namespace against an already-used registerer) is
// returned unwrapped so callers can errors.As into a
// prometheus.AlreadyRegisteredError.
func New(namespace string, registerer Registerer) (*Metrics, error) {
	m := &Metrics{
		Generations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "generations_total",
			Help:      "Number of generations completed.",
		}),
		Evaluations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "evaluations_total",
			Help:      "Number of solution evaluations completed.",
		}),
		ArchiveSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "archive_size",
			Help:      "Current size of the strategy-owned archive.",
		}),
		NonDominatedSize: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "non_dominated_size",
			Help:      "Current size of the non-dominated front among inhabitants.",
		}),
		GenerationMillis: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "generation_duration_milliseconds",
			Help:      "Wall-clock duration of one generation.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 12),
		}),
	}
	for _, c := range []prometheus.Collector{m.Generations, m.Evaluations, m.ArchiveSize, m.NonDominatedSize, m.GenerationMillis} {
		if err := registerer.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// ObserveGeneration records one completed generation: the archive and
// non-dominated front sizes, and the generation's wall-clock duration
// in milliseconds.
func (m *Metrics) ObserveGeneration(archiveSize, nonDominatedSize int, durationMillis float64) {
	m.Generations.Inc()
	m.ArchiveSize.Set(float64(archiveSize))
	m.NonDominatedSize.Set(float64(nonDominatedSize))
	m.GenerationMillis.Observe(durationMillis)
}

// Averager tracks a running mean, used outside the driver's own
// generation counter for ad hoc statistics (e.g. mean crowding distance
// per front).
type Averager interface {
	Observe(value float64)
	Read() float64
}

type averager struct {
	mu    sync.RWMutex
	sum   float64
	count int64
}

// NewAverager returns an Averager with no observations yet.
func NewAverager() Averager { return &averager{} }

func (a *averager) Observe(value float64) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.sum += value
	a.count++
}

func (a *averager) Read() float64 {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.count == 0 {
		return 0
	}
	return a.sum / float64(a.count)
}
