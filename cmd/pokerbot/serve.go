package main

import (
	"fmt"
	"time"

	"github.com/lox/pokerbot/cmd/pokerbot/shared"
	"github.com/lox/pokerbot/internal/protocol"
	"github.com/lox/pokerbot/internal/server"
)

// ServeCmd runs the bot. Flags left unset fall back to the config file and
// then to the built-in defaults.
type ServeCmd struct {
	Host        string        `kong:"help='Bind host (default 127.0.0.1)',env='POKERBOT_HOST'"`
	Port        int           `kong:"help='Bind port (default 5001)',env='POKERBOT_PORT'"`
	Name        string        `kong:"help='Bot name used to find its own stack (default Simple)',env='POKERBOT_NAME'"`
	Config      string        `kong:"help='Optional HCL config file',env='POKERBOT_CONFIG'"`
	ReadTimeout time.Duration `kong:"help='Drop connections that send nothing for this long (0 disables)',env='POKERBOT_READ_TIMEOUT'"`
	Validate    bool          `kong:"help='Log requests that do not match the JSON schema',env='POKERBOT_VALIDATE'"`
	Debug       bool          `kong:"help='Enable debug logging',env='POKERBOT_DEBUG'"`
	LogJSON     bool          `kong:"name='log-json',help='Emit JSON log lines',env='POKERBOT_LOG_JSON'"`
}

func (c *ServeCmd) Run() error {
	cfg, err := c.resolve()
	if err != nil {
		return err
	}

	logger := shared.SetupLogger(cfg.LogLevel, c.LogJSON)

	var opts []server.Option
	if cfg.ValidateRequests {
		v, err := protocol.NewValidator()
		if err != nil {
			return fmt.Errorf("load schemas: %w", err)
		}
		opts = append(opts, server.WithValidator(v))
	}

	srv := server.New(cfg, logger, opts...)

	logger.Info().
		Str("address", cfg.Addr()).
		Str("name", cfg.Name).
		Dur("read_timeout", cfg.ReadTimeout).
		Bool("validate_requests", cfg.ValidateRequests).
		Msg("Starting pokerbot")

	ctx, cancel := shared.SetupSignalHandlerWithLogger(logger)
	defer cancel()
	go func() {
		select {
		case <-ctx.Done():
			srv.Stop()
		case <-srv.Done():
		}
	}()

	return srv.ListenAndServe()
}

func (c *ServeCmd) resolve() (server.Config, error) {
	cfg, err := server.LoadConfig(c.Config)
	if err != nil {
		return server.Config{}, err
	}

	if c.Host != "" {
		cfg.Host = c.Host
	}
	if c.Port != 0 {
		cfg.Port = c.Port
	}
	if c.Name != "" {
		cfg.Name = c.Name
	}
	if c.ReadTimeout != 0 {
		cfg.ReadTimeout = c.ReadTimeout
	}
	if c.Validate {
		cfg.ValidateRequests = true
	}
	if c.Debug {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return server.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
