package config

import (
	"fmt"
	"time"

	"github.com/klab/embedded-board-tests/board"
	"github.com/klab/embedded-board-tests/communicators"
	"github.com/klab/embedded-board-tests/logging"
	"github.com/klab/embedded-board-tests/probes"
)

// SerialConfig converts the communicator section to communicator settings.
func (c CommunicatorConfig) SerialConfig() communicators.SerialConfig {
	return communicators.SerialConfig{
		Port:        c.Port,
		BaudRate:    c.Baud,
		ReadTimeout: time.Duration(c.ReadTimeoutMS) * time.Millisecond,
		DataBits:    c.DataBits,
		Parity:      c.Parity,
		StopBits:    c.StopBits,
	}
}

// NewProbe builds the configured debug probe.
func (p ProbeConfig) NewProbe(logger logging.Logger) (board.DebugProbe, error) {
	switch p.Type {
	case ProbeEspTool:
		e, err := probes.NewEspTool(probes.EspToolConfig{
			Command:  p.Command,
			Chip:     p.Chip,
			Port:     p.Port,
			BaudRate: p.Baud,
			Address:  p.Address,
			After:    p.After,
			Logger:   logger,
		})
		if err != nil {
			return nil, err
		}
		return e, nil
	case ProbeNone, "":
		return &probes.None{}, nil
	default:
		return nil, fmt.Errorf("unknown probe type %q", p.Type)
	}
}

var openCommunicator = communicators.Open

// OpenBoard opens the communicator and builds the probe described by cfg. If the probe cannot be
// built, the communicator is closed again before returning.
func OpenBoard(cfg *Config, logger logging.Logger, opts ...board.Option) (*board.Board, error) {
	if logger == nil {
		logger = logging.NullLogger()
	}
	comm, err := openCommunicator(cfg.Communicator.SerialConfig())
	if err != nil {
		return nil, err
	}
	probe, err := cfg.Probe.NewProbe(logger)
	if err != nil {
		_ = comm.Close()
		return nil, fmt.Errorf("creating debug probe: %w", err)
	}
	logger.Printf("Opened board %q on %s (probe: %s)", cfg.Board.Name, cfg.Communicator.Port, cfg.Probe.Type)
	return board.New(probe, comm, append([]board.Option{board.WithLogger(logger)}, opts...)...), nil
}
