// internal/common/metrics/metrics.go
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	FramesReceived = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "client_frames_received_total",
			Help: "Total number of MESSAGE frames received per topic",
		},
		[]string{"topic"},
	)

	NotificationsStored = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "client_notifications_stored_total",
			Help: "Total number of notifications inserted into the store",
		},
		[]string{"type"},
	)

	DedupDropped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "client_dedup_dropped_total",
			Help: "Total number of events dropped as already processed",
		},
	)

	Reconnects = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "client_reconnects_total",
			Help: "Total number of automatic reconnect attempts",
		},
	)

	ConnectionState = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "client_connection_state",
			Help: "Current connection state (0=disconnected, 1=connecting, 2=connected)",
		},
	)

	AlertsDispatched = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "client_alerts_dispatched_total",
			Help: "Total number of alerts dispatched per channel and outcome",
		},
		[]string{"channel", "outcome"},
	)
)
