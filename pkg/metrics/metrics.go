// Package metrics exposes Prometheus collectors and OpenTelemetry spans for
// the duel server.
//
// Metrics collected:
//   - duel_frames_decoded_total: Counter of decoded frames by message type
//   - duel_protocol_errors_total: Counter of rejected frames by error kind
//   - duel_ticks_total: Counter of completed ticks
//   - duel_tick_duration_seconds: Histogram of tick processing time
//   - duel_players: Gauge of occupied slots
//   - duel_connections_rejected_total: Counter of connections refused (game full)
//   - duel_shots_total / duel_hits_total: Counters of fire events and hits
//   - duel_bytes_sent_total / duel_bytes_received_total: Wire traffic
//
// Example:
//
//	m := metrics.New(metrics.WithNamespace("duel"))
//	r.Handle("/metrics", promhttp.Handler())
package metrics

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/vango-dev/duel/pkg/protocol"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Default tracer name.
const defaultTracerName = "duel"

// Config configures the collectors.
type Config struct {
	// Namespace is the metrics namespace (default: "duel").
	Namespace string

	// Subsystem is the metrics subsystem (default: "").
	Subsystem string

	// ConstLabels are constant labels added to all metrics.
	ConstLabels prometheus.Labels

	// Buckets are the histogram buckets for tick duration.
	// Default: 100µs to ~100ms.
	Buckets []float64

	// Registry is the Prometheus registry to use.
	// Default: prometheus.DefaultRegisterer
	Registry prometheus.Registerer

	// TracerName is the OpenTelemetry tracer name (default: "duel").
	TracerName string
}

// Option configures the collectors.
type Option func(*Config)

// WithNamespace sets the metrics namespace.
func WithNamespace(namespace string) Option {
	return func(c *Config) {
		c.Namespace = namespace
	}
}

// WithSubsystem sets the metrics subsystem.
func WithSubsystem(subsystem string) Option {
	return func(c *Config) {
		c.Subsystem = subsystem
	}
}

// WithConstLabels sets constant labels for all metrics.
func WithConstLabels(labels prometheus.Labels) Option {
	return func(c *Config) {
		c.ConstLabels = labels
	}
}

// WithBuckets sets the histogram buckets.
func WithBuckets(buckets []float64) Option {
	return func(c *Config) {
		c.Buckets = buckets
	}
}

// WithRegistry sets the Prometheus registry.
func WithRegistry(registry prometheus.Registerer) Option {
	return func(c *Config) {
		c.Registry = registry
	}
}

// WithTracerName sets the tracer name.
func WithTracerName(name string) Option {
	return func(c *Config) {
		c.TracerName = name
	}
}

func defaultConfig() Config {
	return Config{
		Namespace:  "duel",
		Buckets:    prometheus.ExponentialBuckets(0.0001, 2, 11),
		Registry:   prometheus.DefaultRegisterer,
		TracerName: defaultTracerName,
	}
}

// Metrics holds the server's collectors. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	framesDecoded       *prometheus.CounterVec
	protocolErrors      *prometheus.CounterVec
	ticks               prometheus.Counter
	tickDuration        prometheus.Histogram
	players             prometheus.Gauge
	connectionsRejected prometheus.Counter
	shots               prometheus.Counter
	hits                prometheus.Counter
	bytesSent           prometheus.Counter
	bytesReceived       prometheus.Counter

	tracer trace.Tracer
}

// New registers the collectors with the configured registry.
// Registering twice on the same registry panics, as with promauto.
func New(opts ...Option) *Metrics {
	config := defaultConfig()
	for _, opt := range opts {
		opt(&config)
	}

	factory := promauto.With(config.Registry)
	counter := func(name, help string) prometheus.Counter {
		return factory.NewCounter(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        name,
			Help:        help,
			ConstLabels: config.ConstLabels,
		})
	}

	return &Metrics{
		framesDecoded: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "frames_decoded_total",
			Help:        "Total number of frames decoded by message type",
			ConstLabels: config.ConstLabels,
		}, []string{"type"}),

		protocolErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "protocol_errors_total",
			Help:        "Total number of malformed frames by error kind",
			ConstLabels: config.ConstLabels,
		}, []string{"kind"}),

		ticks: counter("ticks_total", "Total number of game ticks"),

		tickDuration: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "tick_duration_seconds",
			Help:        "Time spent updating the game and encoding state per tick",
			ConstLabels: config.ConstLabels,
			Buckets:     config.Buckets,
		}),

		players: factory.NewGauge(prometheus.GaugeOpts{
			Namespace:   config.Namespace,
			Subsystem:   config.Subsystem,
			Name:        "players",
			Help:        "Number of occupied player slots",
			ConstLabels: config.ConstLabels,
		}),

		connectionsRejected: counter("connections_rejected_total", "Connections refused because every slot was taken"),
		shots:               counter("shots_total", "Total number of shots fired"),
		hits:                counter("hits_total", "Total number of shots that hit"),
		bytesSent:           counter("bytes_sent_total", "Total bytes flushed to clients"),
		bytesReceived:       counter("bytes_received_total", "Total bytes received from clients"),

		tracer: otel.Tracer(config.TracerName),
	}
}

// RecordFrame counts one decoded frame.
func (m *Metrics) RecordFrame(mt protocol.MessageType) {
	if m == nil {
		return
	}
	m.framesDecoded.WithLabelValues(mt.String()).Inc()
}

// RecordProtocolError counts a rejected frame. Errors that are not
// *protocol.ProtocolError are counted as "other".
func (m *Metrics) RecordProtocolError(err error) {
	if m == nil {
		return
	}
	kind := "other"
	var pe *protocol.ProtocolError
	if errors.As(err, &pe) {
		kind = pe.Kind.String()
	}
	m.protocolErrors.WithLabelValues(kind).Inc()
}

// SetPlayers sets the number of occupied slots.
func (m *Metrics) SetPlayers(n int) {
	if m == nil {
		return
	}
	m.players.Set(float64(n))
}

// RecordRejected counts a connection refused for lack of a slot.
func (m *Metrics) RecordRejected() {
	if m == nil {
		return
	}
	m.connectionsRejected.Inc()
}

// RecordShot counts a fire event.
func (m *Metrics) RecordShot(hit bool) {
	if m == nil {
		return
	}
	m.shots.Inc()
	if hit {
		m.hits.Inc()
	}
}

// RecordBytesSent records bytes flushed to a client.
func (m *Metrics) RecordBytesSent(n int) {
	if m == nil {
		return
	}
	m.bytesSent.Add(float64(n))
}

// RecordBytesReceived records bytes received from a client.
func (m *Metrics) RecordBytesReceived(n int) {
	if m == nil {
		return
	}
	m.bytesReceived.Add(float64(n))
}

// StartTick opens a span for one tick. Call the returned function once the
// tick's state has been sent; it ends the span and records the duration.
// A non-nil error marks the span as failed.
func (m *Metrics) StartTick(ctx context.Context, tick uint64, players int) (context.Context, func(error)) {
	if m == nil {
		return ctx, func(error) {}
	}
	start := time.Now()
	ctx, span := m.tracer.Start(ctx, "duel.tick",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.Int64("duel.tick", int64(tick)),
			attribute.Int("duel.players", players),
		),
	)
	return ctx, func(err error) {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
		m.ticks.Inc()
		m.tickDuration.Observe(time.Since(start).Seconds())
	}
}
