package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Snapshot is what the simulation reports once per tick.
type Snapshot struct {
	FlowEntries    int
	FinalizedCells int
	FlowVectors    int
	Agents         int
	Unreachable    uint64 // cumulative
	Collected      uint64 // cumulative
}

// Exporter owns the navigation collectors. Cumulative counters are fed by
// delta against the previous snapshot.
type Exporter struct {
	registry *prometheus.Registry

	flowEntries prometheus.Gauge
	finalized   prometheus.Gauge
	vectors     prometheus.Gauge
	agents      prometheus.Gauge
	unreachable prometheus.Counter
	collected   prometheus.Counter
	tickSeconds prometheus.Histogram

	prev Snapshot
}

func NewExporter() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		flowEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "navgrid",
			Name:      "flow_entries",
			Help:      "Cached flow fields, one per active destination.",
		}),
		finalized: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "navgrid",
			Name:      "finalized_cells",
			Help:      "Finalized search cells across all cached destinations.",
		}),
		vectors: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "navgrid",
			Name:      "flow_vectors",
			Help:      "Flow vectors stored across all cached destinations.",
		}),
		agents: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "navgrid",
			Name:      "agents",
			Help:      "Live agents.",
		}),
		unreachable: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "navgrid",
			Name:      "unreachable_total",
			Help:      "Source requests that found no path to their destination.",
		}),
		collected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "navgrid",
			Name:      "collected_total",
			Help:      "Flow fields dropped because no agent targets them.",
		}),
		tickSeconds: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "navgrid",
			Name:      "tick_seconds",
			Help:      "Wall time of one simulation tick.",
			Buckets:   prometheus.ExponentialBuckets(0.0001, 2, 14),
		}),
	}
	e.registry.MustRegister(e.flowEntries, e.finalized, e.vectors, e.agents,
		e.unreachable, e.collected, e.tickSeconds)
	return e
}

func (e *Exporter) Registry() *prometheus.Registry { return e.registry }

// Observe publishes one snapshot.
func (e *Exporter) Observe(s Snapshot) {
	e.flowEntries.Set(float64(s.FlowEntries))
	e.finalized.Set(float64(s.FinalizedCells))
	e.vectors.Set(float64(s.FlowVectors))
	e.agents.Set(float64(s.Agents))
	if s.Unreachable > e.prev.Unreachable {
		e.unreachable.Add(float64(s.Unreachable - e.prev.Unreachable))
	}
	if s.Collected > e.prev.Collected {
		e.collected.Add(float64(s.Collected - e.prev.Collected))
	}
	e.prev = s
}

// ObserveTick records one tick's duration.
func (e *Exporter) ObserveTick(d time.Duration) { e.tickSeconds.Observe(d.Seconds()) }

// Handler serves the exporter's registry.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Serve starts the /metrics endpoint in the background and returns the
// server so the caller can shut it down.
func (e *Exporter) Serve(addr string, log *zap.Logger) *http.Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", e.Handler())
	srv := &http.Server{Addr: addr, Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		log.Info("metrics endpoint listening", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("metrics server", zap.Error(err))
		}
	}()
	return srv
}
