package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	framesDecoded = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wirebridge",
			Subsystem: "channel",
			Name:      "frames_decoded_total",
			Help:      "Complete frames extracted from the receive buffer.",
		},
		[]string{"channel"},
	)
	protocolErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wirebridge",
			Subsystem: "channel",
			Name:      "protocol_errors_total",
			Help:      "Malformed frames or headers that forced a discard.",
		},
		[]string{"channel", "reason"},
	)
	bufferOverflows = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wirebridge",
			Subsystem: "channel",
			Name:      "buffer_overflows_total",
			Help:      "Receive buffer discards due to the size ceiling.",
		},
		[]string{"channel"},
	)
	deliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wirebridge",
			Subsystem: "channel",
			Name:      "deliveries_total",
			Help:      "Completed header+payload notifications delivered.",
		},
		[]string{"channel"},
	)
	unroutedDeliveries = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wirebridge",
			Subsystem: "channel",
			Name:      "unrouted_deliveries_total",
			Help:      "Notifications dropped because no sink was registered for their target.",
		},
		[]string{"target"},
	)
	droppedWrites = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "wirebridge",
			Subsystem: "channel",
			Name:      "dropped_writes_total",
			Help:      "Outbound frames lost to transport write failures.",
		},
		[]string{"channel", "frame"},
	)
	payloadBytes = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "wirebridge",
			Subsystem: "channel",
			Name:      "delivered_payload_bytes",
			Help:      "Size distribution of delivered payload attachments.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 10),
		},
		[]string{"channel"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			framesDecoded, protocolErrors, bufferOverflows,
			deliveries, unroutedDeliveries, droppedWrites, payloadBytes,
		)
	})
}

func RecordFrameDecoded(channel string) {
	RegisterMetrics()
	framesDecoded.WithLabelValues(channel).Inc()
}

func RecordProtocolError(channel, reason string) {
	RegisterMetrics()
	protocolErrors.WithLabelValues(channel, reason).Inc()
}

func RecordBufferOverflow(channel string) {
	RegisterMetrics()
	bufferOverflows.WithLabelValues(channel).Inc()
}

func RecordDelivery(channel string, payloadLen int) {
	RegisterMetrics()
	deliveries.WithLabelValues(channel).Inc()
	payloadBytes.WithLabelValues(channel).Observe(float64(payloadLen))
}

func RecordUnroutedDelivery(target string) {
	RegisterMetrics()
	unroutedDeliveries.WithLabelValues(target).Inc()
}

func RecordDroppedWrite(channel, frame string) {
	RegisterMetrics()
	droppedWrites.WithLabelValues(channel, frame).Inc()
}
