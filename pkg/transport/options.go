package transport

import (
	"log/slog"
	"net/http"
	"time"
)

// Options configures connections on either side.
type Options struct {
	// ReadBufferSize is the WebSocket read buffer size.
	// Default: 4096.
	ReadBufferSize int

	// WriteBufferSize is the WebSocket write buffer size.
	// Default: 4096.
	WriteBufferSize int

	// MaxMessageSize is the largest WebSocket message accepted.
	// Default: 1MB.
	MaxMessageSize int64

	// WriteTimeout bounds each Flush.
	// Default: 10 seconds.
	WriteTimeout time.Duration

	// QueueSize is the capacity of the event channel between the read
	// goroutines and Poll.
	// Default: 256.
	QueueSize int

	// CheckOrigin validates the Origin header on upgrade (server only).
	// Default: allows all origins.
	CheckOrigin func(r *http.Request) bool

	// Logger receives connection lifecycle logs.
	// Default: slog.Default() with component=transport.
	Logger *slog.Logger
}

// DefaultOptions returns Options with sensible defaults.
func DefaultOptions() *Options {
	return &Options{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		MaxMessageSize:  1 << 20,
		WriteTimeout:    10 * time.Second,
		QueueSize:       256,
		CheckOrigin:     func(r *http.Request) bool { return true },
		Logger:          slog.Default().With("component", "transport"),
	}
}

// withDefaults returns a copy of o with unset fields filled in.
func (o *Options) withDefaults() *Options {
	d := DefaultOptions()
	if o == nil {
		return d
	}
	c := *o
	if c.ReadBufferSize == 0 {
		c.ReadBufferSize = d.ReadBufferSize
	}
	if c.WriteBufferSize == 0 {
		c.WriteBufferSize = d.WriteBufferSize
	}
	if c.MaxMessageSize == 0 {
		c.MaxMessageSize = d.MaxMessageSize
	}
	if c.WriteTimeout == 0 {
		c.WriteTimeout = d.WriteTimeout
	}
	if c.QueueSize == 0 {
		c.QueueSize = d.QueueSize
	}
	if c.CheckOrigin == nil {
		c.CheckOrigin = d.CheckOrigin
	}
	if c.Logger == nil {
		c.Logger = d.Logger
	}
	return &c
}
