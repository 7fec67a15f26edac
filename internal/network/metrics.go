package network

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/annel0/mmo-game/internal/logging"
)

// Metrics exposes the Prometheus counters/gauges the reliability and
// transmitter layers update as packets move. Grounded on the teacher's
// internal/eventbus/metrics.go registration pattern (one struct owning
// the collectors, registered once at construction, exported via
// promhttp on a dedicated address).
type Metrics struct {
	PacketsSent     prometheus.Counter
	PacketsLost     prometheus.Counter
	PacketsAcked    prometheus.Counter
	Connections     prometheus.Gauge
	ChunkGenLatency prometheus.Histogram
}

func NewMetrics() *Metrics {
	m := &Metrics{
		PacketsSent: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mmo",
			Subsystem: "network",
			Name:      "packets_sent_total",
			Help:      "Total packets sent across all connections.",
		}),
		PacketsLost: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mmo",
			Subsystem: "network",
			Name:      "packets_lost_total",
			Help:      "Total packets inferred lost via the ack/history bitfield.",
		}),
		PacketsAcked: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "mmo",
			Subsystem: "network",
			Name:      "packets_acked_total",
			Help:      "Total packets confirmed delivered via the ack/history bitfield.",
		}),
		Connections: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "mmo",
			Subsystem: "network",
			Name:      "connections",
			Help:      "Currently active connections.",
		}),
		ChunkGenLatency: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "mmo",
			Subsystem: "worldgen",
			Name:      "chunk_generation_seconds",
			Help:      "Time to procedurally generate one chunk.",
			Buckets:   prometheus.DefBuckets,
		}),
	}
	prometheus.MustRegister(m.PacketsSent, m.PacketsLost, m.PacketsAcked, m.Connections, m.ChunkGenLatency)
	return m
}

// StartHTTP serves the /metrics endpoint on addr in a background
// goroutine.
func (m *Metrics) StartHTTP(addr string) {
	go func() {
		logging.LogInfo("metrics endpoint listening on %s", addr)
		if err := http.ListenAndServe(addr, promhttp.Handler()); err != nil {
			logging.LogError("metrics HTTP server: %v", err)
		}
	}()
}

// handlerWithMetrics wraps a Handler, forwarding events while updating
// the relevant counters — used by session code that otherwise wants
// to receive PacketLost/PacketReceived itself.
type handlerWithMetrics struct {
	inner   Handler
	metrics *Metrics
}

func NewMetricsHandler(inner Handler, metrics *Metrics) Handler {
	return &handlerWithMetrics{inner: inner, metrics: metrics}
}

func (h *handlerWithMetrics) PacketLost(seq uint16) {
	h.metrics.PacketsLost.Inc()
	h.inner.PacketLost(seq)
}

func (h *handlerWithMetrics) PacketReceived(seq uint16) {
	h.metrics.PacketsAcked.Inc()
	h.inner.PacketReceived(seq)
}
