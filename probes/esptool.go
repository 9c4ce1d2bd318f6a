package probes

import (
	"errors"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/alessio/shellescape"

	"github.com/klab/embedded-board-tests/board"
	"github.com/klab/embedded-board-tests/logging"
)

const (
	defaultEspToolCommand = "esptool.py"
	defaultChip           = "esp32"
	defaultEspToolBaud    = 1500000
	defaultFlashAddress   = "0x0"
	defaultAfterAction    = "hard_reset"
)

// EspToolConfig describes how to invoke esptool. Only Port is required.
type EspToolConfig struct {
	// Command is the executable and any leading arguments, e.g. ["python3", "-m", "esptool"].
	// The default is ["esptool.py"].
	Command []string
	// Chip is the --chip argument. The default is "esp32".
	Chip string
	Port string
	// BaudRate is the flashing speed. The default is 1500000.
	BaudRate int
	// Address is where the image is written. The default is "0x0".
	Address string
	// After is the post-flash action. The default is "hard_reset".
	After  string
	Logger logging.Logger
}

// runner executes a command and returns its combined output.
type runner func(name string, args ...string) ([]byte, error)

func execRunner(name string, args ...string) ([]byte, error) {
	return exec.Command(name, args...).CombinedOutput()
}

// EspTool is a DebugProbe that flashes and resets Espressif targets through esptool.
type EspTool struct {
	cfg    EspToolConfig
	logger logging.Logger
	run    runner
	closed bool
}

var _ board.DebugProbe = (*EspTool)(nil)

// NewEspTool validates cfg and fills in defaults. Nothing is executed until Program or Reset.
func NewEspTool(cfg EspToolConfig) (*EspTool, error) {
	if cfg.Port == "" {
		return nil, errors.New("esptool port is required")
	}
	if len(cfg.Command) == 0 {
		cfg.Command = []string{defaultEspToolCommand}
	}
	if cfg.Chip == "" {
		cfg.Chip = defaultChip
	}
	if cfg.BaudRate == 0 {
		cfg.BaudRate = defaultEspToolBaud
	}
	if cfg.Address == "" {
		cfg.Address = defaultFlashAddress
	}
	if cfg.After == "" {
		cfg.After = defaultAfterAction
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.NullLogger()
	}
	return &EspTool{
		cfg:    cfg,
		logger: logging.LoggerWithPrefix(logger, "[esptool] "),
		run:    execRunner,
	}, nil
}

func (e *EspTool) connectionArgs() []string {
	return []string{
		"--chip", e.cfg.Chip,
		"--port", e.cfg.Port,
		"--baud", strconv.Itoa(e.cfg.BaudRate),
	}
}

// Program writes imagePath at the configured address, erasing flash first, and then performs the
// configured post-flash action.
func (e *EspTool) Program(imagePath string) error {
	if e.closed {
		return board.ErrChannelClosed
	}
	args := append(e.connectionArgs(),
		"--after", e.cfg.After,
		"write_flash",
		"-e",
		e.cfg.Address,
		imagePath,
	)
	output, err := e.invoke(args)
	if err != nil {
		return &board.ProgrammingError{Image: imagePath, Output: output, Err: err}
	}
	return nil
}

// Reset issues esptool's reset command.
func (e *EspTool) Reset() error {
	if e.closed {
		return board.ErrChannelClosed
	}
	output, err := e.invoke(append(e.connectionArgs(), "reset"))
	if err != nil {
		return &board.ResetError{Output: output, Err: err}
	}
	return nil
}

// Close marks the probe closed. esptool keeps no connection between invocations, so there is
// nothing else to release.
func (e *EspTool) Close() error {
	e.closed = true
	return nil
}

func (e *EspTool) invoke(args []string) (string, error) {
	all := append(append([]string(nil), e.cfg.Command[1:]...), args...)
	e.logger.Printf("Running %s", quoteCommand(e.cfg.Command[0], all))

	output, err := e.run(e.cfg.Command[0], all...)
	text := strings.TrimSpace(string(output))
	if err != nil {
		e.logger.Printf("Command failed: %s", err)
		if text != "" {
			e.logger.Printf("Output:\n%s", text)
		}
		return text, fmt.Errorf("%s: %w", e.cfg.Command[0], err)
	}
	return text, nil
}

func quoteCommand(name string, args []string) string {
	quoted := []string{shellescape.Quote(name)}
	for _, a := range args {
		quoted = append(quoted, shellescape.Quote(a))
	}
	return strings.Join(quoted, " ")
}
