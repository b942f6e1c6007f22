// Package metrics exposes cycler activity as Prometheus metrics.
package metrics

import (
	"net/http"

	"dbviewer/internal/content"
	"dbviewer/internal/cycler"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector counts what the cycler shows. It implements cycler.Observer.
type Collector struct {
	registry     *prometheus.Registry
	shown        *prometheus.CounterVec
	sourceErrors prometheus.Counter
	wraps        prometheus.Counter
	paused       prometheus.Gauge
}

// Ensure Collector implements cycler.Observer.
var _ cycler.Observer = (*Collector)(nil)

// NewCollector registers the dbviewer metrics plus Go runtime metrics on a
// private registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		shown: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "dbviewer",
			Name:      "items_shown_total",
			Help:      "Items handed to the display, by kind and whether they were entered manually.",
		}, []string{"kind", "manual"}),
		sourceErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dbviewer",
			Name:      "content_source_errors_total",
			Help:      "Failed or empty reads of the content file.",
		}),
		wraps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "dbviewer",
			Name:      "cycle_wraps_total",
			Help:      "Times the cycle reached the end of the list and restarted.",
		}),
		paused: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "dbviewer",
			Name:      "paused",
			Help:      "1 while automatic cycling is held.",
		}),
	}
	c.registry.MustRegister(
		c.shown, c.sourceErrors, c.wraps, c.paused,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return c
}

func (c *Collector) Shown(kind content.Kind, manual bool) {
	m := "false"
	if manual {
		m = "true"
	}
	c.shown.WithLabelValues(kind.String(), m).Inc()
}

func (c *Collector) SourceFailed(error) { c.sourceErrors.Inc() }

func (c *Collector) Wrapped() { c.wraps.Inc() }

func (c *Collector) Paused(paused bool) {
	if paused {
		c.paused.Set(1)
		return
	}
	c.paused.Set(0)
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}
