package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/coder/quartz"
	"github.com/rs/zerolog"

	"github.com/lox/pokerbot/internal/protocol"
	"github.com/lox/pokerbot/internal/strategy"
)

// Decider produces actions for act requests and receives end-of-hand states.
type Decider interface {
	Decide(strategy.GameState) strategy.Decision
	EndHand(strategy.GameState)
}

// Server accepts one request per TCP connection and answers it. It is the
// lifecycle object for the accept loop: Stop ends it, whether called by a
// terminate request or by the process.
type Server struct {
	config    Config
	engine    Decider
	validator *protocol.Validator
	clock     quartz.Clock
	logger    zerolog.Logger

	ctx      context.Context
	cancel   context.CancelFunc
	stopOnce sync.Once

	mu       sync.Mutex
	listener net.Listener
	conns    map[net.Conn]struct{}
	ready    chan struct{}
	handlers sync.WaitGroup

	stats Stats
}

// Stats counts requests handled since the server started.
type Stats struct {
	Accepted   atomic.Int64
	Acted      atomic.Int64
	Ended      atomic.Int64
	UnknownOps atomic.Int64
	Dropped    atomic.Int64
}

// Option configures a Server
type Option func(*Server)

// WithEngine replaces the default strategy engine.
func WithEngine(d Decider) Option {
	return func(s *Server) { s.engine = d }
}

// WithClock sets the clock used for read deadlines.
func WithClock(c quartz.Clock) Option {
	return func(s *Server) { s.clock = c }
}

// WithValidator enables schema checks on inbound requests. Violations are
// logged; the request is still served.
func WithValidator(v *protocol.Validator) Option {
	return func(s *Server) { s.validator = v }
}

// New creates a server for the given configuration.
func New(cfg Config, logger zerolog.Logger, opts ...Option) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	s := &Server{
		config: cfg,
		clock:  quartz.NewReal(),
		logger: logger.With().Str("component", "server").Str("bot", cfg.Name).Logger(),
		ctx:    ctx,
		cancel: cancel,
		conns:  make(map[net.Conn]struct{}),
		ready:  make(chan struct{}),
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.engine == nil {
		s.engine = strategy.New(cfg.Name, logger)
	}
	return s
}

// ListenAndServe binds the configured address and serves until stopped.
func (s *Server) ListenAndServe() error {
	ln, err := net.Listen("tcp", s.config.Addr())
	if err != nil {
		return fmt.Errorf("listen on %s: %w", s.config.Addr(), err)
	}
	return s.Serve(ln)
}

// Serve accepts connections on ln until Stop is called. Each connection is
// handled on its own goroutine. Stop closes any connection still open, so
// Serve returns promptly even when peers have gone quiet.
func (s *Server) Serve(ln net.Listener) error {
	s.mu.Lock()
	if s.listener != nil {
		s.mu.Unlock()
		return errors.New("server already serving")
	}
	s.listener = ln
	close(s.ready)
	stopped := s.ctx.Err() != nil
	s.mu.Unlock()

	if stopped {
		_ = ln.Close()
	}

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("Listening for requests")

	defer s.handlers.Wait()
	var backoff time.Duration
	for {
		conn, err := ln.Accept()
		if err != nil {
			if s.ctx.Err() != nil {
				s.logger.Info().
					Int64("accepted", s.stats.Accepted.Load()).
					Int64("acted", s.stats.Acted.Load()).
					Int64("ended", s.stats.Ended.Load()).
					Int64("dropped", s.stats.Dropped.Load()).
					Msg("Server stopped")
				return nil
			}
			backoff = nextBackoff(backoff)
			s.logger.Warn().Err(err).Dur("retry_in", backoff).Msg("Accept failed, retrying")
			s.sleep(backoff)
			continue
		}
		backoff = 0

		if !s.track(conn) {
			_ = conn.Close()
			continue
		}

		s.stats.Accepted.Add(1)
		s.handlers.Add(1)
		go func() {
			defer s.handlers.Done()
			defer s.untrack(conn)
			s.handleConn(conn)
		}()
	}
}

const (
	minAcceptBackoff = 5 * time.Millisecond
	maxAcceptBackoff = time.Second
)

func nextBackoff(d time.Duration) time.Duration {
	if d == 0 {
		return minAcceptBackoff
	}
	return min(2*d, maxAcceptBackoff)
}

// sleep waits for d on the server clock, returning early on Stop.
func (s *Server) sleep(d time.Duration) {
	t := s.clock.NewTimer(d, "server", "acceptBackoff")
	defer t.Stop()
	select {
	case <-t.C:
	case <-s.ctx.Done():
	}
}

// track registers an accepted connection. It refuses once the server has
// been stopped.
func (s *Server) track(conn net.Conn) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ctx.Err() != nil {
		return false
	}
	s.conns[conn] = struct{}{}
	return true
}

func (s *Server) untrack(conn net.Conn) {
	s.mu.Lock()
	delete(s.conns, conn)
	s.mu.Unlock()
}

// Stop closes the listener and every open connection. There is no drain:
// a handler blocked reading from a silent peer is released immediately. It
// is safe to call more than once and before Serve.
func (s *Server) Stop() {
	s.stopOnce.Do(func() {
		s.logger.Info().Msg("Stopping server")

		s.mu.Lock()
		defer s.mu.Unlock()
		s.cancel()
		if s.listener != nil {
			_ = s.listener.Close()
		}
		for conn := range s.conns {
			_ = conn.Close()
		}
	})
}

// Done is closed once Stop has been called.
func (s *Server) Done() <-chan struct{} {
	return s.ctx.Done()
}

// Addr blocks until Serve has a listener and returns its address, or
// returns nil if ctx ends first.
func (s *Server) Addr(ctx context.Context) net.Addr {
	select {
	case <-s.ready:
		s.mu.Lock()
		defer s.mu.Unlock()
		return s.listener.Addr()
	case <-ctx.Done():
		return nil
	}
}

// Stats returns the live request counters.
func (s *Server) Stats() *Stats {
	return &s.stats
}
