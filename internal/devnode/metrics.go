package devnode

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	flowsStarted  *prometheus.CounterVec
	flowsReplayed *prometheus.CounterVec
	flowDuration  *prometheus.HistogramVec
	connections   prometheus.Gauge
}

// newMetrics registers the node's collectors on reg. Each node owns its
// registry so several nodes can run in one process.
func newMetrics(reg prometheus.Registerer) *metrics {
	m := &metrics{
		flowsStarted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "devnode_flows_started_total",
				Help: "Flows run by the node, by flow and outcome",
			},
			[]string{"flow", "outcome"},
		),
		flowsReplayed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "devnode_flows_replayed_total",
				Help: "Flow starts answered from the journal",
			},
			[]string{"flow"},
		),
		flowDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "devnode_flow_duration_seconds",
				Help:    "Simulated flow run time",
				Buckets: prometheus.ExponentialBuckets(0.0005, 2, 14),
			},
			[]string{"flow"},
		),
		connections: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "devnode_rpc_connections",
				Help: "Open RPC connections",
			},
		),
	}
	reg.MustRegister(m.flowsStarted, m.flowsReplayed, m.flowDuration, m.connections)
	return m
}
