package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vango-dev/duel/pkg/metrics"
)

// Recorder receives the slot-ordered State frame produced by every tick.
type Recorder interface {
	Record(tick uint64, frame []byte) error
}

// ServerConfig holds configuration for the server.
type ServerConfig struct {
	// Address is the address to listen on (e.g., ":8080").
	Address string

	// TickRate is the number of simulation ticks per second.
	// Default: 30.
	TickRate int

	// ReadBufferSize is the size of the WebSocket read buffer.
	// Default: 4096.
	ReadBufferSize int

	// WriteBufferSize is the size of the WebSocket write buffer.
	// Default: 4096.
	WriteBufferSize int

	// MaxMessageSize is the largest WebSocket message accepted from a client.
	// Default: 64KB.
	MaxMessageSize int64

	// MaxPending is the most unread bytes a session may accumulate before
	// it is dropped. Bytes that are not a Controls frame are never consumed.
	// Default: 64KB.
	MaxPending int

	// WriteTimeout bounds each state flush.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// ReadHeaderTimeout is the HTTP server's header read timeout.
	// Default: 5 seconds.
	ReadHeaderTimeout time.Duration

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	// Default: 30 seconds.
	ShutdownTimeout time.Duration

	// CheckOrigin validates the WebSocket Origin header.
	// Default: SameOriginCheck.
	CheckOrigin func(r *http.Request) bool

	// Perspective sends each client its own entity first instead of slot
	// order. Clients must be told their slot to undo it.
	// Default: false.
	Perspective bool

	// Recorder, if set, receives every tick's State frame.
	Recorder Recorder

	// Metrics receives counters and tick spans. Nil disables metrics.
	Metrics *metrics.Metrics

	// Gatherer backs the /metrics endpoint.
	// Default: prometheus.DefaultGatherer.
	Gatherer prometheus.Gatherer

	// Logger is the server logger.
	// Default: slog.Default() with component=server.
	Logger *slog.Logger
}

// DefaultServerConfig returns a ServerConfig with sensible defaults.
func DefaultServerConfig() *ServerConfig {
	return &ServerConfig{
		Address:           ":8080",
		TickRate:          30,
		ReadBufferSize:    4096,
		WriteBufferSize:   4096,
		MaxMessageSize:    64 * 1024,
		MaxPending:        64 * 1024,
		WriteTimeout:      10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		ShutdownTimeout:   30 * time.Second,
		CheckOrigin:       SameOriginCheck,
		Gatherer:          prometheus.DefaultGatherer,
	}
}

// withDefaults fills unset fields of c from DefaultServerConfig.
func (c *ServerConfig) withDefaults() *ServerConfig {
	defaults := DefaultServerConfig()
	if c == nil {
		return defaults
	}
	if c.Address == "" {
		c.Address = defaults.Address
	}
	if c.TickRate == 0 {
		c.TickRate = defaults.TickRate
	}
	if c.ReadBufferSize == 0 {
		c.ReadBufferSize = defaults.ReadBufferSize
	}
	if c.WriteBufferSize == 0 {
		c.WriteBufferSize = defaults.WriteBufferSize
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = defaults.MaxMessageSize
	}
	if c.MaxPending == 0 {
		c.MaxPending = defaults.MaxPending
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = defaults.WriteTimeout
	}
	if c.ReadHeaderTimeout == 0 {
		c.ReadHeaderTimeout = defaults.ReadHeaderTimeout
	}
	if c.ShutdownTimeout == 0 {
		c.ShutdownTimeout = defaults.ShutdownTimeout
	}
	if c.CheckOrigin == nil {
		c.CheckOrigin = defaults.CheckOrigin
	}
	if c.Gatherer == nil {
		c.Gatherer = defaults.Gatherer
	}
	return c
}

// ValidateConfig reports the first invalid setting.
func (c *ServerConfig) ValidateConfig() error {
	if c.TickRate < 1 || c.TickRate > 1000 {
		return fmt.Errorf("%w: %d (must be 1-1000)", ErrInvalidTickRate, c.TickRate)
	}
	if c.MaxMessageSize < 0 {
		return fmt.Errorf("server: MaxMessageSize must not be negative, got %d", c.MaxMessageSize)
	}
	if c.MaxPending < 0 {
		return fmt.Errorf("server: MaxPending must not be negative, got %d", c.MaxPending)
	}
	if c.WriteTimeout < 0 || c.ShutdownTimeout < 0 {
		return fmt.Errorf("server: timeouts must not be negative")
	}
	return nil
}

// TickInterval returns the wall-clock time between ticks.
func (c *ServerConfig) TickInterval() time.Duration {
	if c.TickRate <= 0 {
		return time.Second / 30
	}
	return time.Second / time.Duration(c.TickRate)
}

// SameOriginCheck validates that the WebSocket request origin matches the
// host. Requests without an Origin header (native clients) are allowed.
func SameOriginCheck(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	originURL, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if r.Host == "" {
		return false
	}
	return originURL.Host == r.Host
}
