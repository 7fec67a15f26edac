package eventbus

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// MetricsExporter periodically folds a Bus's Stats into Prometheus
// counters/gauges registered on the process's single metrics registry.
// Grounded on the teacher's internal/eventbus/metrics.go, with its own
// promhttp listener dropped: internal/network.Metrics already owns the
// one /metrics endpoint this process serves, and a second
// http.ListenAndServe on the same process would either collide on the
// port or need a second one to track for no benefit — registering onto
// the shared default registry gets the same counters on the same
// endpoint.
type MetricsExporter struct {
	bus  Bus
	quit chan struct{}
	done chan struct{}

	published prometheus.Counter
	consumed  prometheus.Counter
	dropped   prometheus.Counter
	inflight  prometheus.Gauge
}

func NewMetricsExporter(bus Bus) *MetricsExporter {
	me := &MetricsExporter{
		bus:  bus,
		quit: make(chan struct{}),
		done: make(chan struct{}),
		published: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventbus",
			Name:      "messages_published_total",
			Help:      "Total events published to the world event bus.",
		}),
		consumed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventbus",
			Name:      "messages_consumed_total",
			Help:      "Total events delivered to subscribers.",
		}),
		dropped: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "eventbus",
			Name:      "messages_dropped_total",
			Help:      "Total events dropped due to a full buffer.",
		}),
		inflight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "eventbus",
			Name:      "messages_inflight",
			Help:      "Events queued but not yet delivered.",
		}),
	}
	prometheus.MustRegister(me.published, me.consumed, me.dropped, me.inflight)
	return me
}

// Start begins the periodic stats-to-metrics refresh loop. Stop it
// with Stop at shutdown.
func (m *MetricsExporter) Start() {
	go m.loop()
}

func (m *MetricsExporter) Stop() {
	close(m.quit)
	<-m.done
}

func (m *MetricsExporter) loop() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	defer close(m.done)

	var prev Stats
	for {
		select {
		case <-ticker.C:
			stats := m.bus.Metrics()
			if d := stats.Published - prev.Published; d > 0 {
				m.published.Add(float64(d))
			}
			if d := stats.Consumed - prev.Consumed; d > 0 {
				m.consumed.Add(float64(d))
			}
			if d := stats.Dropped - prev.Dropped; d > 0 {
				m.dropped.Add(float64(d))
			}
			m.inflight.Set(float64(stats.InFlight))
			prev = stats
		case <-m.quit:
			return
		}
	}
}
