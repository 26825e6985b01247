package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	WSConnections = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "ws_connections",
			Help: "Number of live WebSocket connections.",
		},
	)

	WSEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "ws_events_total",
			Help: "Total number of WebSocket events received, by type.",
		},
		[]string{"type"},
	)

	MessagesRelayedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "messages_relayed_total",
			Help: "Total number of realtime events pushed to clients, by delivery result.",
		},
		[]string{"event", "delivered"},
	)
)

func MustRegister() {
	prometheus.MustRegister(
		WSConnections,
		WSEventsTotal,
		MessagesRelayedTotal,
	)
}
