package obs

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	ActiveClients          = promauto.NewGauge(prometheus.GaugeOpts{Name: "relayroom_active_clients", Help: "Currently admitted clients"})
	PendingRequests        = promauto.NewGauge(prometheus.GaugeOpts{Name: "relayroom_pending_requests", Help: "Connections awaiting an operator decision"})
	AdmissionsTotal        = promauto.NewCounterVec(prometheus.CounterOpts{Name: "relayroom_admissions_total", Help: "Admission outcomes by decision"}, []string{"decision"})
	KicksTotal             = promauto.NewCounter(prometheus.CounterOpts{Name: "relayroom_kicks_total", Help: "Clients kicked by the operator"})
	MessagesRelayedTotal   = promauto.NewCounter(prometheus.CounterOpts{Name: "relayroom_messages_relayed_total", Help: "Text messages fanned out to peers"})
	AudioBytesRelayedTotal = promauto.NewCounter(prometheus.CounterOpts{Name: "relayroom_audio_bytes_relayed_total", Help: "Raw audio bytes fanned out to peers"})
	ErrorsTotal            = promauto.NewCounterVec(prometheus.CounterOpts{Name: "relayroom_errors_total", Help: "Errors by type"}, []string{"type"})
	SessionDurationSeconds = promauto.NewHistogram(prometheus.HistogramOpts{Name: "relayroom_session_duration_seconds", Help: "Relay session lifetime seconds", Buckets: prometheus.ExponentialBuckets(0.1, 2, 16)})
	RateLimitedTotal       = promauto.NewCounter(prometheus.CounterOpts{Name: "relayroom_rate_limited_total", Help: "Connections refused by the admission rate limiter"})
)
