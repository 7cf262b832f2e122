package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/lox/pokerbot/cmd/pokerbot/shared"
	"github.com/lox/pokerbot/internal/client"
	"github.com/lox/pokerbot/internal/protocol"
)

// ClientFlags address a running bot.
type ClientFlags struct {
	Host    string        `kong:"default='127.0.0.1',help='Bot host',env='POKERBOT_HOST'"`
	Port    int           `kong:"default='5001',help='Bot port',env='POKERBOT_PORT'"`
	Timeout time.Duration `kong:"default='2s',help='Timeout for each exchange'"`
	Debug   bool          `kong:"help='Enable debug logging'"`
}

func (f ClientFlags) client(opts ...client.Option) *client.Client {
	addr := net.JoinHostPort(f.Host, strconv.Itoa(f.Port))
	opts = append([]client.Option{client.WithTimeout(f.Timeout)}, opts...)
	return client.New(addr, shared.SetupClientLogger(f.Debug), opts...)
}

// ActCmd sends op:act and prints the bot's action as JSON.
type ActCmd struct {
	ClientFlags `embed:""`
	State       string `arg:"" name:"state" help:"JSON game state file ('-' for stdin)"`
	Validate    bool   `kong:"help='Check the reply against the action schema'"`
}

func (c *ActCmd) Run() error {
	state, err := readState(c.State)
	if err != nil {
		return err
	}

	var opts []client.Option
	if c.Validate {
		v, err := protocol.NewValidator()
		if err != nil {
			return fmt.Errorf("load schemas: %w", err)
		}
		opts = append(opts, client.WithValidator(v))
	}

	action, err := c.client(opts...).Act(context.Background(), state)
	if err != nil {
		return err
	}
	return json.NewEncoder(os.Stdout).Encode(action)
}

// EndCmd sends op:end. The bot does not reply.
type EndCmd struct {
	ClientFlags `embed:""`
	State       string `arg:"" name:"state" help:"JSON game state file ('-' for stdin)"`
}

func (c *EndCmd) Run() error {
	state, err := readState(c.State)
	if err != nil {
		return err
	}
	return c.client().NotifyEnd(context.Background(), state)
}

// TerminateCmd asks the bot to stop.
type TerminateCmd struct {
	ClientFlags `embed:""`
}

func (c *TerminateCmd) Run() error {
	return c.client().Terminate(context.Background())
}

// WaitCmd polls until the bot accepts connections.
type WaitCmd struct {
	ClientFlags `embed:""`
	Within      time.Duration `kong:"default='10s',help='Give up after this long'"`
	Interval    time.Duration `kong:"default='100ms',help='Delay between attempts'"`
}

func (c *WaitCmd) Run() error {
	return c.client().WaitReady(context.Background(), c.Within, c.Interval)
}

// readState loads a JSON document from path, or stdin for "-".
func readState(path string) (json.RawMessage, error) {
	var (
		data []byte
		err  error
	)
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(filepath.Clean(path))
	}
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}
	if !json.Valid(data) {
		return nil, fmt.Errorf("read state: %s is not valid JSON", path)
	}
	return json.RawMessage(data), nil
}
