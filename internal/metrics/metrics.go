// Package metrics exposes renderer and store statistics to Prometheus.
package metrics

import (
	"net/http"
	"sync"

	"etherplot/render"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "etherplot"

// Collector turns frame statistics into Prometheus series on its own registry.
type Collector struct {
	reg *prometheus.Registry

	frames        prometheus.Counter
	frameDuration prometheus.Histogram
	samples       prometheus.Counter
	plots         *prometheus.GaugeVec
	cacheEntries  prometheus.Gauge
	cacheLookups  *prometheus.CounterVec
	cacheEvicted  prometheus.Counter
	gridStep      prometheus.Gauge
	gridChanges   prometheus.Counter
	storeErrors   *prometheus.CounterVec

	mu                   sync.Mutex
	lastHits, lastMisses uint64
}

var _ render.Observer = (*Collector)(nil)

func New() *Collector {
	c := &Collector{
		reg: prometheus.NewRegistry(),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "frames_total",
			Help:      "Number of rendered frames.",
		}),
		frameDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "frame_duration_seconds",
			Help:      "Time spent rendering one frame.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 2, 12),
		}),
		samples: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "curve_samples_total",
			Help:      "Number of formula evaluations while sampling curves.",
		}),
		plots: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "plots",
			Help:      "Plots in the last frame by state.",
		}, []string{"state"}),
		cacheEntries: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "expr_cache_entries",
			Help:      "Compiled formulas held by the cache.",
		}),
		cacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expr_cache_lookups_total",
			Help:      "Cache lookups by result.",
		}, []string{"result"}),
		cacheEvicted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expr_cache_evictions_total",
			Help:      "Compiled formulas dropped because no plot uses them.",
		}),
		gridStep: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "grid_step",
			Help:      "Current grid step in world units.",
		}),
		gridChanges: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "grid_step_changes_total",
			Help:      "Grid step switches caused by zooming.",
		}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "store_errors_total",
			Help:      "Failed plot store operations.",
		}, []string{"op"}),
	}
	c.reg.MustRegister(
		c.frames, c.frameDuration, c.samples, c.plots,
		c.cacheEntries, c.cacheLookups, c.cacheEvicted,
		c.gridStep, c.gridChanges, c.storeErrors,
	)
	return c
}

// ObserveFrame implements render.Observer.
func (c *Collector) ObserveFrame(st render.FrameStats) {
	c.frames.Inc()
	c.frameDuration.Observe(st.Duration.Seconds())
	c.samples.Add(float64(st.Samples))

	c.plots.WithLabelValues("total").Set(float64(st.Plots))
	c.plots.WithLabelValues("drawn").Set(float64(st.Drawn))
	c.plots.WithLabelValues("invalid").Set(float64(st.Invalid))

	c.cacheEntries.Set(float64(st.Cache.Entries))
	c.cacheEvicted.Add(float64(st.Evicted))
	c.gridStep.Set(st.GridStep)
	if st.GridChanged {
		c.gridChanges.Inc()
	}

	// cache counters are cumulative; export the growth since the last frame
	c.mu.Lock()
	hits := delta(c.lastHits, st.Cache.Hits)
	misses := delta(c.lastMisses, st.Cache.Misses)
	c.lastHits, c.lastMisses = st.Cache.Hits, st.Cache.Misses
	c.mu.Unlock()
	c.cacheLookups.WithLabelValues("hit").Add(float64(hits))
	c.cacheLookups.WithLabelValues("miss").Add(float64(misses))
}

// StoreError counts a failed store operation such as "load", "sync" or "close".
func (c *Collector) StoreError(op string) {
	c.storeErrors.WithLabelValues(op).Inc()
}

// Registry exposes the underlying registry, e.g. for tests.
func (c *Collector) Registry() *prometheus.Registry { return c.reg }

// Handler serves the registry in the Prometheus text format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.reg, promhttp.HandlerOpts{Registry: c.reg})
}

func delta(prev, cur uint64) uint64 {
	if cur < prev {
		// the cache was replaced
		return cur
	}
	return cur - prev
}
