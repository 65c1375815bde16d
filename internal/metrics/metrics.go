package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ConnectionsActive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "chat_ws_connections_active",
		Help: "Number of currently registered WebSocket connections.",
	})

	ActionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "chat_actions_total",
		Help: "Inbound chat actions by action and result.",
	}, []string{"action", "result"})

	DeliveriesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_deliveries_total",
		Help: "Messages pushed to a live connection.",
	})

	DeliveryMissesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "chat_delivery_misses_total",
		Help: "Deliveries skipped because a party had no usable connection.",
	})
)
