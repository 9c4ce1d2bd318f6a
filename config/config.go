// Package config defines the YAML file that describes a board under test: how to reach its data
// channel, which debug probe flashes it, and what the smoke suite should check.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"time"

	"gopkg.in/yaml.v3"
)

// PortEnvVar overrides communicator.port when set.
const PortEnvVar = "BOARD_SERIAL_PORT"

const (
	ProbeEspTool = "esptool"
	ProbeNone    = "none"
)

const (
	defaultBootTimeoutMS  = 20000
	defaultCheckTimeoutMS = 5000
)

// Config is the root of a board configuration file.
type Config struct {
	Board        BoardConfig        `yaml:"board"`
	Communicator CommunicatorConfig `yaml:"communicator"`
	Probe        ProbeConfig        `yaml:"probe"`
	Suite        SuiteConfig        `yaml:"suite"`
}

// BoardConfig identifies the board in logs and reports.
type BoardConfig struct {
	Name string `yaml:"name"`
}

// CommunicatorConfig describes the data channel. Port is a device path such as /dev/ttyUSB0, or
// tcp://host:port for a network bridge.
type CommunicatorConfig struct {
	Port          string  `yaml:"port"`
	Baud          int     `yaml:"baud"`
	ReadTimeoutMS int     `yaml:"read_timeout_ms"`
	DataBits      int     `yaml:"data_bits"`
	Parity        string  `yaml:"parity"`
	StopBits      float64 `yaml:"stop_bits"`
}

// ProbeConfig describes the debug probe. Port defaults to the communicator port, since on most
// development boards both share one USB serial device.
type ProbeConfig struct {
	Type    string   `yaml:"type"`
	Command []string `yaml:"command"`
	Chip    string   `yaml:"chip"`
	Port    string   `yaml:"port"`
	Baud    int      `yaml:"baud"`
	Address string   `yaml:"address"`
	After   string   `yaml:"after"`
}

// SuiteConfig describes the smoke suite run against the board.
type SuiteConfig struct {
	Firmware      string        `yaml:"firmware"`
	BootPattern   string        `yaml:"boot_pattern"`
	BootTimeoutMS int           `yaml:"boot_timeout_ms"`
	Echo          *bool         `yaml:"echo"`
	Checks        []CheckConfig `yaml:"checks"`
}

// CheckConfig is one command/response exchange with the device.
type CheckConfig struct {
	Name        string `yaml:"name"`
	Send        string `yaml:"send"`
	Expect      string `yaml:"expect"`
	TimeoutMS   int    `yaml:"timeout_ms"`
	Requirement string `yaml:"requirement"`
}

// Load reads, parses and validates the file at path, applying PortEnvVar if it is set.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	return Parse(data)
}

// Parse parses and validates configuration from YAML bytes.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if port := os.Getenv(PortEnvVar); port != "" {
		cfg.Communicator.Port = port
	}
	cfg.Defaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Defaults fills in unset optional values.
func (c *Config) Defaults() {
	if c.Board.Name == "" {
		c.Board.Name = "board"
	}
	if c.Probe.Type == "" {
		c.Probe.Type = ProbeNone
	}
	if c.Probe.Port == "" {
		c.Probe.Port = c.Communicator.Port
	}
	if c.Suite.BootTimeoutMS == 0 {
		c.Suite.BootTimeoutMS = defaultBootTimeoutMS
	}
	if c.Suite.Echo == nil {
		echo := true
		c.Suite.Echo = &echo
	}
	for i := range c.Suite.Checks {
		check := &c.Suite.Checks[i]
		if check.Name == "" {
			check.Name = fmt.Sprintf("check %d", i+1)
		}
		if check.TimeoutMS == 0 {
			check.TimeoutMS = defaultCheckTimeoutMS
		}
	}
}

// Validate reports the first problem that would prevent the board or suite from running.
func (c *Config) Validate() error {
	if c.Communicator.Port == "" {
		return errors.New("communicator.port is required")
	}
	switch c.Probe.Type {
	case ProbeEspTool:
		if c.Probe.Port == "" {
			return errors.New("probe.port is required for esptool")
		}
	case ProbeNone:
	default:
		return fmt.Errorf("unknown probe type %q", c.Probe.Type)
	}
	if c.Suite.BootPattern != "" {
		if _, err := regexp.Compile(c.Suite.BootPattern); err != nil {
			return fmt.Errorf("suite.boot_pattern: %w", err)
		}
	}
	for _, check := range c.Suite.Checks {
		if check.Expect == "" {
			return fmt.Errorf("check %q has no expect pattern", check.Name)
		}
		if _, err := regexp.Compile(check.Expect); err != nil {
			return fmt.Errorf("check %q: %w", check.Name, err)
		}
	}
	return nil
}

// EchoEnabled reports whether device output should be echoed during waits.
func (s SuiteConfig) EchoEnabled() bool {
	return s.Echo == nil || *s.Echo
}

// BootTimeout is BootTimeoutMS as a duration.
func (s SuiteConfig) BootTimeout() time.Duration {
	return time.Duration(s.BootTimeoutMS) * time.Millisecond
}

// Timeout is TimeoutMS as a duration.
func (c CheckConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutMS) * time.Millisecond
}
