package server

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
)

const (
	DefaultHost     = "127.0.0.1"
	DefaultPort     = 5001
	DefaultName     = "Simple"
	DefaultLogLevel = "info"
)

// Config is the resolved service configuration.
type Config struct {
	Host             string
	Port             int
	Name             string
	ReadTimeout      time.Duration
	LogLevel         string
	ValidateRequests bool
}

// FileConfig represents an HCL configuration file
type FileConfig struct {
	Bot *BotSettings `hcl:"bot,block"`
}

// BotSettings is the bot block of the configuration file
type BotSettings struct {
	Host             string `hcl:"host,optional"`
	Port             int    `hcl:"port,optional"`
	Name             string `hcl:"name,optional"`
	ReadTimeoutMs    int    `hcl:"read_timeout_ms,optional"`
	LogLevel         string `hcl:"log_level,optional"`
	ValidateRequests bool   `hcl:"validate_requests,optional"`
}

// DefaultConfig returns the configuration used when nothing is set.
func DefaultConfig() Config {
	return Config{
		Host:     DefaultHost,
		Port:     DefaultPort,
		Name:     DefaultName,
		LogLevel: DefaultLogLevel,
	}
}

// LoadConfig reads an HCL file over the defaults. A missing file yields the
// defaults.
func LoadConfig(filename string) (Config, error) {
	cfg := DefaultConfig()
	if filename == "" {
		return cfg, nil
	}
	if _, err := os.Stat(filename); os.IsNotExist(err) {
		return cfg, nil
	}

	parser := hclparse.NewParser()
	file, diags := parser.ParseHCLFile(filename)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to parse HCL file: %s", diags.Error())
	}

	var fc FileConfig
	diags = gohcl.DecodeBody(file.Body, nil, &fc)
	if diags.HasErrors() {
		return Config{}, fmt.Errorf("failed to decode HCL: %s", diags.Error())
	}

	if b := fc.Bot; b != nil {
		if b.Host != "" {
			cfg.Host = b.Host
		}
		if b.Port != 0 {
			cfg.Port = b.Port
		}
		if b.Name != "" {
			cfg.Name = b.Name
		}
		if b.ReadTimeoutMs != 0 {
			cfg.ReadTimeout = time.Duration(b.ReadTimeoutMs) * time.Millisecond
		}
		if b.LogLevel != "" {
			cfg.LogLevel = b.LogLevel
		}
		cfg.ValidateRequests = b.ValidateRequests
	}
	return cfg, nil
}

// Validate checks the configuration
func (c Config) Validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	if strings.TrimSpace(c.Host) == "" {
		return fmt.Errorf("host must not be empty")
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("bot name must not be empty")
	}
	if c.ReadTimeout < 0 {
		return fmt.Errorf("read timeout must not be negative: %s", c.ReadTimeout)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log level: %s", c.LogLevel)
	}
	return nil
}

// Addr returns the host:port the server binds to.
func (c Config) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
