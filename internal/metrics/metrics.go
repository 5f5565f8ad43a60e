package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics counts protocol-level client activity. A nil *Metrics is valid
// and counts nothing, so components can be built without instrumentation
// in tests.
type Metrics struct {
	registry *prometheus.Registry

	framesReceived prometheus.Counter
	framesSent     prometheus.Counter
	droppedSends   prometheus.Counter
	unknownTypes   prometheus.Counter
	reconnects     prometheus.Counter
}

// New registers the client counters on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()

	m := &Metrics{
		registry: registry,
		framesReceived: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quizclient_frames_received_total",
			Help: "Inbound protocol frames received over the session channel.",
		}),
		framesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quizclient_frames_sent_total",
			Help: "Outbound protocol frames written to the session channel.",
		}),
		droppedSends: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quizclient_dropped_sends_total",
			Help: "Outbound frames dropped because no channel was open.",
		}),
		unknownTypes: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quizclient_unknown_message_types_total",
			Help: "Inbound frames ignored due to an unrecognized type.",
		}),
		reconnects: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "quizclient_reconnects_total",
			Help: "Reconnect attempts made after the channel closed.",
		}),
	}

	registry.MustRegister(m.framesReceived, m.framesSent, m.droppedSends, m.unknownTypes, m.reconnects)
	return m
}

// Handler exposes the registry for scraping on the CLI's debug listener.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) IncFramesReceived() {
	if m != nil {
		m.framesReceived.Inc()
	}
}

func (m *Metrics) IncFramesSent() {
	if m != nil {
		m.framesSent.Inc()
	}
}

func (m *Metrics) IncDroppedSends() {
	if m != nil {
		m.droppedSends.Inc()
	}
}

func (m *Metrics) IncUnknownTypes() {
	if m != nil {
		m.unknownTypes.Inc()
	}
}

func (m *Metrics) IncReconnects() {
	if m != nil {
		m.reconnects.Inc()
	}
}
