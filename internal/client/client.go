// Package client talks to a running bot the way a match orchestrator does:
// one request per connection, with a bounded wait for each exchange.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/coder/quartz"

	"github.com/lox/pokerbot/internal/protocol"
	"github.com/lox/pokerbot/internal/strategy"
)

// DefaultTimeout bounds a single exchange with the bot.
const DefaultTimeout = 2 * time.Second

var (
	// ErrNoReply means the bot closed the connection without answering
	ErrNoReply = errors.New("bot closed connection without reply")

	// ErrNotReady means the bot did not accept connections before the deadline
	ErrNotReady = errors.New("bot not ready")
)

// Client sends requests to a single bot address.
type Client struct {
	addr      string
	timeout   time.Duration
	clock     quartz.Clock
	validator *protocol.Validator
	logger    *log.Logger
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the per-exchange timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

// WithClock sets the clock used for deadlines and readiness polling.
func WithClock(clock quartz.Clock) Option {
	return func(c *Client) { c.clock = clock }
}

// WithValidator checks replies against the action schema. A reply that
// fails validation is logged and still interpreted leniently.
func WithValidator(v *protocol.Validator) Option {
	return func(c *Client) { c.validator = v }
}

// New creates a client for the bot at addr (host:port).
func New(addr string, logger *log.Logger, opts ...Option) *Client {
	c := &Client{
		addr:    addr,
		timeout: DefaultTimeout,
		clock:   quartz.NewReal(),
		logger:  logger.WithPrefix("client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Addr returns the bot address.
func (c *Client) Addr() string {
	return c.addr
}

// Act asks the bot for an action on state.
func (c *Client) Act(ctx context.Context, state any) (strategy.Action, error) {
	req, err := protocol.NewRequest(protocol.OpAct, state)
	if err != nil {
		return strategy.Action{}, err
	}

	var raw json.RawMessage
	if err := c.exchange(ctx, req, &raw); err != nil {
		return strategy.Action{}, err
	}
	if c.validator != nil {
		if err := c.validator.Validate(protocol.SchemaAction, raw); err != nil {
			c.logger.Warn("Reply does not match action schema", "addr", c.addr, "error", err)
		}
	}

	action, err := ParseAction(raw)
	if err != nil {
		return strategy.Action{}, err
	}
	c.logger.Debug("Bot acted", "addr", c.addr, "move", action.Move, "amount", action.Amount)
	return action, nil
}

// ActOrFold is Act for callers that must never stall a hand: any failure
// is logged and treated as a fold.
func (c *Client) ActOrFold(ctx context.Context, state any) strategy.Action {
	action, err := c.Act(ctx, state)
	if err != nil {
		c.logger.Warn("Bot comms error, folding", "addr", c.addr, "error", err)
		return strategy.FoldAction()
	}
	return action
}

// NotifyEnd sends an end-of-hand notification. No reply is expected.
func (c *Client) NotifyEnd(ctx context.Context, state any) error {
	req, err := protocol.NewRequest(protocol.OpEnd, state)
	if err != nil {
		return err
	}
	return c.exchange(ctx, req, nil)
}

// Terminate asks the bot to shut down and waits for its acknowledgement.
func (c *Client) Terminate(ctx context.Context) error {
	req, err := protocol.NewRequest(protocol.OpTerminate, nil)
	if err != nil {
		return err
	}

	var ack protocol.Ack
	if err := c.exchange(ctx, req, &ack); err != nil {
		return err
	}
	if !ack.OK {
		return fmt.Errorf("terminate not acknowledged by %s", c.addr)
	}
	c.logger.Info("Bot terminated", "addr", c.addr)
	return nil
}

// Probe reports whether the bot accepts TCP connections. It opens and
// closes a connection without sending a frame.
func (c *Client) Probe(ctx context.Context) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	return conn.Close()
}

// WaitReady polls the bot with Probe until it accepts a connection or
// timeout elapses.
func (c *Client) WaitReady(ctx context.Context, timeout, interval time.Duration) error {
	deadline := c.clock.NewTimer(timeout, "client", "waitReady", "deadline")
	defer deadline.Stop()
	ticker := c.clock.NewTicker(interval, "client", "waitReady", "poll")
	defer ticker.Stop()

	attempts := 0
	for {
		attempts++
		err := c.Probe(ctx)
		if err == nil {
			c.logger.Info("Bot ready", "addr", c.addr, "attempts", attempts)
			return nil
		}
		c.logger.Debug("Bot not ready yet", "addr", c.addr, "error", err)

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-deadline.C:
			return fmt.Errorf("%w: %s after %d attempts: %v", ErrNotReady, c.addr, attempts, err)
		case <-ticker.C:
		}
	}
}

func (c *Client) dial(ctx context.Context) (net.Conn, error) {
	d := net.Dialer{Timeout: c.timeout}
	conn, err := d.DialContext(ctx, "tcp", c.addr)
	if err != nil {
		return nil, fmt.Errorf("%w: dial %s: %v", protocol.ErrTransport, c.addr, err)
	}
	return conn, nil
}

// exchange sends req on a fresh connection. When reply is nil the write
// side is closed and nothing is read.
func (c *Client) exchange(ctx context.Context, req protocol.Request, reply any) error {
	conn, err := c.dial(ctx)
	if err != nil {
		return err
	}
	defer conn.Close()

	deadline := c.clock.Now().Add(c.timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	_ = conn.SetDeadline(deadline)

	if err := protocol.WriteFrame(conn, req); err != nil {
		return err
	}
	if reply == nil {
		return nil
	}

	if err := protocol.ReadFrame(conn, reply); err != nil {
		if errors.Is(err, protocol.ErrProtocol) {
			return fmt.Errorf("%w: %v", ErrNoReply, err)
		}
		return err
	}
	return nil
}

// amountKeys are checked in order for a raise amount.
var amountKeys = []string{"amount", "raise_to", "value", "amt"}

// ParseAction interprets a bot reply. The move is matched case-insensitively
// after trimming; a raise takes its amount from the first present key in
// amountKeys. Unknown moves and error replies become a fold.
func ParseAction(raw json.RawMessage) (strategy.Action, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return strategy.Action{}, fmt.Errorf("%w: reply: %v", protocol.ErrParse, err)
	}

	var move string
	if m, ok := fields["move"]; ok {
		_ = json.Unmarshal(m, &move)
	}

	switch strategy.Move(strings.ToLower(strings.TrimSpace(move))) {
	case strategy.Raise:
		for _, key := range amountKeys {
			v, ok := fields[key]
			if !ok || string(v) == "null" {
				continue
			}
			amount, err := parseAmount(v)
			if err != nil {
				return strategy.Action{}, fmt.Errorf("%w: raise %s: %v", protocol.ErrParse, key, err)
			}
			return strategy.RaiseAction(amount), nil
		}
		return strategy.Action{}, fmt.Errorf("%w: raise without amount", protocol.ErrParse)
	case strategy.Call:
		return strategy.CallAction(), nil
	case strategy.Check:
		return strategy.CheckAction(), nil
	default:
		return strategy.FoldAction(), nil
	}
}

func parseAmount(v json.RawMessage) (int, error) {
	var n json.Number
	if err := json.Unmarshal(v, &n); err != nil {
		var s string
		if err := json.Unmarshal(v, &s); err != nil {
			return 0, err
		}
		n = json.Number(strings.TrimSpace(s))
	}
	if i, err := n.Int64(); err == nil {
		return int(i), nil
	}
	f, err := strconv.ParseFloat(string(n), 64)
	if err != nil {
		return 0, err
	}
	return int(f), nil
}
