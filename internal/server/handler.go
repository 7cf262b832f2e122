package server

import (
	"fmt"
	"net"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/lox/pokerbot/internal/protocol"
	"github.com/lox/pokerbot/internal/strategy"
)

// outcome is the result of dispatching one request. A nil reply means
// nothing is written back.
type outcome struct {
	reply any
	stop  bool
}

// handleConn serves exactly one request and closes the connection. Nothing
// that goes wrong here may reach the accept loop: decode failures, bad
// state and panics all end in a silent close.
func (s *Server) handleConn(conn net.Conn) {
	logger := s.logger.With().
		Str("conn_id", uuid.NewString()[:8]).
		Str("remote", conn.RemoteAddr().String()).
		Logger()

	defer func() {
		if r := recover(); r != nil {
			s.stats.Dropped.Add(1)
			logger.Error().Interface("panic", r).Msg("Recovered while handling request, dropping connection")
		}
		_ = conn.Close()
	}()

	if s.config.ReadTimeout > 0 {
		_ = conn.SetReadDeadline(s.clock.Now().Add(s.config.ReadTimeout))
	}

	var req protocol.Request
	if err := protocol.ReadFrame(conn, &req); err != nil {
		s.stats.Dropped.Add(1)
		logger.Debug().Err(err).Msg("Dropping connection with unreadable frame")
		return
	}

	if s.validator != nil {
		if err := s.validator.Validate(protocol.SchemaRequest, req.Raw()); err != nil {
			logger.Warn().Err(err).Msg("Request does not match schema, serving anyway")
		}
	}

	out, err := s.dispatch(req, logger)
	if err != nil {
		s.stats.Dropped.Add(1)
		logger.Warn().Err(err).Str("op", string(req.Op)).Msg("Dropping request")
		return
	}

	if action, ok := out.reply.(strategy.Action); ok && s.validator != nil {
		if err := s.validator.ValidateValue(protocol.SchemaAction, action); err != nil {
			logger.Error().Err(err).Msg("Reply does not match action schema")
		}
	}

	if out.reply != nil {
		if err := protocol.WriteFrame(conn, out.reply); err != nil {
			logger.Warn().Err(err).Msg("Failed to send reply")
		}
	}

	if out.stop {
		s.Stop()
	}
}

func (s *Server) dispatch(req protocol.Request, logger zerolog.Logger) (outcome, error) {
	switch {
	case req.Op == protocol.OpTerminate:
		logger.Info().Msg("Terminate requested")
		return outcome{reply: protocol.Ack{OK: true}, stop: true}, nil

	case req.Op == protocol.OpEnd:
		state, err := strategy.ParseState(req.StateOrEmpty())
		if err != nil {
			return outcome{}, fmt.Errorf("end: %w", err)
		}
		s.engine.EndHand(state)
		s.stats.Ended.Add(1)
		logger.Debug().Msg("Received end of hand")
		return outcome{}, nil

	case req.Op == protocol.OpAct, req.Legacy():
		state, err := strategy.ParseState(req.StateOrEmpty())
		if err != nil {
			return outcome{}, fmt.Errorf("act: %w", err)
		}
		d := s.engine.Decide(state)
		s.stats.Acted.Add(1)
		logger.Info().
			Bool("legacy", req.Legacy()).
			Str("move", string(d.Action.Move)).
			Int("amount", d.Action.Amount).
			Str("rule", d.Rule).
			Msg("Acted")
		return outcome{reply: d.Action}, nil

	default:
		s.stats.UnknownOps.Add(1)
		logger.Warn().Str("op", string(req.Op)).Bool("has_op", req.HasOp()).Msg("Unknown op")
		return outcome{reply: protocol.UnknownOp}, nil
	}
}
