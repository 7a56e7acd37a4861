package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net"
	"net/http"
	"sort"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/vango-dev/duel/pkg/game"
	"github.com/vango-dev/duel/pkg/protocol"
	"github.com/vango-dev/duel/pkg/transport"
)

// Server is the authoritative game server.
type Server struct {
	config   *ServerConfig
	game     *game.Game
	listener *transport.Listener
	router   chi.Router
	logger   *slog.Logger

	httpServer *http.Server

	// Owned by the goroutine driving Poll and Tick.
	sessions map[uint64]*Session
	elapsed  float32
	frame    *protocol.Encoder

	recordFailed bool

	running atomic.Bool
	players atomic.Int32
	ticks   atomic.Uint64
}

// New creates a new Server. Unset config fields take their defaults.
func New(config *ServerConfig) *Server {
	config = config.withDefaults()

	logger := config.Logger
	if logger == nil {
		logger = slog.Default().With("component", "server")
	}
	if err := config.ValidateConfig(); err != nil {
		logger.Error("config validation failed", "error", err)
	}

	s := &Server{
		config:   config,
		game:     game.New(),
		logger:   logger,
		sessions: make(map[uint64]*Session),
		elapsed:  float32(config.TickInterval().Seconds()),
		frame:    protocol.NewEncoder(),
	}

	s.listener = transport.NewListener(&transport.Options{
		ReadBufferSize:  config.ReadBufferSize,
		WriteBufferSize: config.WriteBufferSize,
		MaxMessageSize:  config.MaxMessageSize,
		WriteTimeout:    config.WriteTimeout,
		CheckOrigin:     config.CheckOrigin,
		Logger:          logger.With("layer", "transport"),
	})

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Handle("/ws", s.listener)
	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.HandlerFor(config.Gatherer, promhttp.HandlerOpts{}))
	s.router = r

	return s
}

// Handler returns the HTTP handler serving /ws, /healthz and /metrics.
func (s *Server) Handler() http.Handler {
	return s.router
}

// Config returns the server configuration.
func (s *Server) Config() *ServerConfig {
	return s.config
}

// Game returns the simulated game. It must only be used from the goroutine
// driving the server.
func (s *Server) Game() *game.Game {
	return s.game
}

// Logger returns the server logger.
func (s *Server) Logger() *slog.Logger {
	return s.logger
}

// Players returns the number of occupied slots. Safe for concurrent use.
func (s *Server) Players() int {
	return int(s.players.Load())
}

// Ticks returns the number of completed ticks. Safe for concurrent use.
func (s *Server) Ticks() uint64 {
	return s.ticks.Load()
}

// Sessions returns the live sessions ordered by slot.
func (s *Server) Sessions() []*Session {
	out := make([]*Session, 0, len(s.sessions))
	for _, sess := range s.sessions {
		out = append(out, sess)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Slot() < out[j].Slot() })
	return out
}

// Run drives the tick loop until ctx is cancelled. Between ticks it waits
// for client input; a tick updates the game once and sends every session a
// State frame. If the loop falls more than one tick behind it resynchronizes
// instead of bursting.
func (s *Server) Run(ctx context.Context) error {
	if !s.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer s.running.Store(false)

	interval := s.config.TickInterval()
	next := time.Now().Add(interval)
	s.logger.Info("tick loop started", "interval", interval)

	for {
		if ctx.Err() != nil {
			s.logger.Info("tick loop stopped", "ticks", s.Ticks())
			return nil
		}
		if wait := time.Until(next); wait > 0 {
			s.Poll(wait)
			continue
		}

		s.Tick(ctx)

		next = next.Add(interval)
		if behind := time.Since(next); behind > interval {
			s.logger.Warn("tick loop behind schedule", "behind", behind)
			next = time.Now().Add(interval)
		}
	}
}

// Poll handles connection events for up to timeout.
func (s *Server) Poll(timeout time.Duration) int {
	return s.listener.Poll(s.handle, timeout)
}

// Tick advances the game by one tick and sends the new state.
func (s *Server) Tick(ctx context.Context) {
	_, end := s.config.Metrics.StartTick(ctx, s.game.Tick()+1, s.game.NumPlayers())

	s.game.Update(s.elapsed)
	tick := s.game.Tick()
	for _, shot := range s.game.LastShots() {
		s.config.Metrics.RecordShot(shot.Hit)
		s.logger.Debug("shot", "tick", tick, "slot", shot.Slot.String(), "hit", shot.Hit)
	}

	entities := s.game.Entities()
	var tickErr error
	if s.config.Recorder != nil && !s.recordFailed {
		s.frame.Reset()
		err := protocol.EncodeState(s.frame, entities, -1)
		if err == nil {
			err = s.config.Recorder.Record(tick, s.frame.Bytes())
		}
		if err != nil {
			s.logger.Error("recording stopped", "tick", tick, "error", err)
			s.recordFailed = true
			tickErr = err
		}
	}

	for _, sess := range s.sessions {
		if err := sess.sendState(s.config.Metrics, entities, s.config.Perspective); err != nil {
			sess.logger.Warn("send state failed", "error", err)
			// The read pump reports the close; the session goes away then.
			_ = sess.conn.Close()
		}
	}

	s.ticks.Store(tick)
	end(tickErr)
}

// handle is the transport callback. Returning an error drops the connection.
func (s *Server) handle(c *transport.Conn, ev transport.Event) error {
	switch ev {
	case transport.EventOpen:
		return s.open(c)

	case transport.EventRecv:
		sess, ok := c.Value.(*Session)
		if !ok {
			return NewSessionError(c.ID(), "receive", ErrNoSession)
		}
		if err := sess.drain(s.config.Metrics, s.config.MaxPending); err != nil {
			var pe *protocol.ProtocolError
			if errors.As(err, &pe) {
				sess.logger.Warn("malformed message", "error", err, "length", pe.Length)
			}
			return err
		}

	case transport.EventClose:
		if sess, ok := c.Value.(*Session); ok {
			s.close(sess)
		}
	}
	return nil
}

func (s *Server) open(c *transport.Conn) error {
	p, err := s.game.Spawn("")
	if err != nil {
		s.config.Metrics.RecordRejected()
		s.logger.Warn("connection refused", "conn", c.ID(), "error", err)
		return NewSessionError(c.ID(), "spawn", err)
	}

	sess := newSession(c, p, s.logger)
	c.Value = sess
	s.sessions[c.ID()] = sess
	s.setPlayers()
	sess.logger.Info("player joined", "name", p.Name, "remote", c.RemoteAddr())
	return nil
}

func (s *Server) close(sess *Session) {
	if _, ok := s.sessions[sess.ID()]; !ok {
		return
	}
	delete(s.sessions, sess.ID())
	if err := s.game.Remove(sess.player); err != nil {
		sess.logger.Error("remove player failed", "error", err)
	}
	sess.conn.Value = nil
	s.setPlayers()
	sess.logger.Info("player left",
		"frames_in", sess.framesIn,
		"frames_out", sess.framesOut,
		"duration", time.Since(sess.openedAt).Round(time.Millisecond))
}

func (s *Server) setPlayers() {
	n := s.game.NumPlayers()
	s.players.Store(int32(n))
	s.config.Metrics.SetPlayers(n)
}

type healthResponse struct {
	Status  string `json:"status"`
	Players int    `json:"players"`
	Ticks   uint64 `json:"ticks"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(healthResponse{
		Status:  "ok",
		Players: s.Players(),
		Ticks:   s.Ticks(),
	})
}

// ListenAndServe serves HTTP on the configured address and runs the tick
// loop until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	if err := s.config.ValidateConfig(); err != nil {
		return err
	}

	ln, err := net.Listen("tcp", s.config.Address)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve is ListenAndServe on an existing listener.
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	s.httpServer = &http.Server{
		Handler:           s.router,
		ReadHeaderTimeout: s.config.ReadHeaderTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server starting", "address", ln.Addr().String())
		errCh <- s.httpServer.Serve(ln)
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	runDone := make(chan error, 1)
	go func() { runDone <- s.Run(runCtx) }()

	select {
	case err := <-errCh:
		cancel()
		<-runDone
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil

	case err := <-runDone:
		s.logger.Info("shutting down...")
		shutdownErr := s.Shutdown(context.Background())
		if err != nil {
			return err
		}
		return shutdownErr
	}
}

// Shutdown closes every connection and stops the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, s.config.ShutdownTimeout)
	defer cancel()

	_ = s.listener.Close()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Error("shutdown error", "error", err)
			return err
		}
	}

	s.logger.Info("server shutdown complete")
	return nil
}
