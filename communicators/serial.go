package communicators

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"go.bug.st/serial"

	"github.com/klab/embedded-board-tests/board"
)

const (
	defaultBaudRate    = 115200
	defaultReadTimeout = time.Second
	peekTimeout        = 10 * time.Millisecond
	peekBufferSize     = 4096
)

// SerialConfig holds the parameters for opening a serial port. Zero values select 115200 baud,
// a one second read timeout and 8N1 framing.
type SerialConfig struct {
	Port        string
	BaudRate    int
	ReadTimeout time.Duration
	DataBits    int
	// Parity is one of "none", "odd", "even", "mark" or "space".
	Parity string
	// StopBits is 1, 1.5 or 2.
	StopBits float64
}

func (c SerialConfig) withDefaults() SerialConfig {
	if c.BaudRate == 0 {
		c.BaudRate = defaultBaudRate
	}
	if c.ReadTimeout == 0 {
		c.ReadTimeout = defaultReadTimeout
	}
	if c.DataBits == 0 {
		c.DataBits = 8
	}
	if c.Parity == "" {
		c.Parity = "none"
	}
	if c.StopBits == 0 {
		c.StopBits = 1
	}
	return c
}

func (c SerialConfig) mode() (*serial.Mode, error) {
	if c.DataBits < 5 || c.DataBits > 8 {
		return nil, fmt.Errorf("unsupported data bits %d", c.DataBits)
	}
	mode := &serial.Mode{BaudRate: c.BaudRate, DataBits: c.DataBits}

	switch strings.ToLower(c.Parity) {
	case "none", "n":
		mode.Parity = serial.NoParity
	case "odd", "o":
		mode.Parity = serial.OddParity
	case "even", "e":
		mode.Parity = serial.EvenParity
	case "mark", "m":
		mode.Parity = serial.MarkParity
	case "space", "s":
		mode.Parity = serial.SpaceParity
	default:
		return nil, fmt.Errorf("unsupported parity %q", c.Parity)
	}

	switch c.StopBits {
	case 1:
		mode.StopBits = serial.OneStopBit
	case 1.5:
		mode.StopBits = serial.OnePointFiveStopBits
	case 2:
		mode.StopBits = serial.TwoStopBits
	default:
		return nil, fmt.Errorf("unsupported stop bits %v", c.StopBits)
	}
	return mode, nil
}

// serialPort is the subset of serial.Port used here, so tests can substitute a fake.
type serialPort interface {
	Read(p []byte) (int, error)
	Write(p []byte) (int, error)
	Drain() error
	ResetInputBuffer() error
	ResetOutputBuffer() error
	SetReadTimeout(t time.Duration) error
	Close() error
}

var openPort = func(name string, mode *serial.Mode) (serialPort, error) {
	return serial.Open(name, mode)
}

// Serial is a Communicator over a UART or USB serial port.
type Serial struct {
	port    serialPort
	cfg     SerialConfig
	pending []byte
}

var _ board.Communicator = (*Serial)(nil)

// OpenSerial opens the port described by cfg. The port is open when OpenSerial returns.
func OpenSerial(cfg SerialConfig) (*Serial, error) {
	if cfg.Port == "" {
		return nil, errors.New("serial port path is required")
	}
	cfg = cfg.withDefaults()
	mode, err := cfg.mode()
	if err != nil {
		return nil, fmt.Errorf("invalid serial settings for %s: %w", cfg.Port, err)
	}

	port, err := openPort(cfg.Port, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port %s: %w", cfg.Port, err)
	}
	if err := port.SetReadTimeout(cfg.ReadTimeout); err != nil {
		port.Close()
		return nil, fmt.Errorf("failed to set read timeout: %w", err)
	}
	return newSerial(port, cfg), nil
}

func newSerial(port serialPort, cfg SerialConfig) *Serial {
	return &Serial{port: port, cfg: cfg}
}

// Send writes all of data and waits until it has been transmitted.
func (s *Serial) Send(data []byte) error {
	if s.port == nil {
		return board.ErrChannelClosed
	}
	for len(data) > 0 {
		n, err := s.port.Write(data)
		if err != nil {
			return err
		}
		data = data[n:]
	}
	return s.port.Drain()
}

// Receive returns up to maxBytes bytes, waiting at most the configured read timeout when nothing
// is buffered. Bytes already read ahead by BytesAvailable are returned first.
func (s *Serial) Receive(maxBytes int) ([]byte, error) {
	if s.port == nil {
		return nil, board.ErrChannelClosed
	}
	if maxBytes <= 0 {
		return []byte{}, nil
	}
	if len(s.pending) > 0 {
		n := len(s.pending)
		if n > maxBytes {
			n = maxBytes
		}
		data := append([]byte(nil), s.pending[:n]...)
		s.pending = s.pending[n:]
		return data, nil
	}

	buf := make([]byte, maxBytes)
	n, err := s.port.Read(buf)
	return buf[:n], err
}

// Close closes the port. It is safe to call more than once.
func (s *Serial) Close() error {
	if s.port == nil {
		return nil
	}
	err := s.port.Close()
	s.port = nil
	s.pending = nil
	return err
}

// FlushInput discards everything received but not yet read.
func (s *Serial) FlushInput() error {
	if s.port == nil {
		return nil
	}
	s.pending = nil
	return s.port.ResetInputBuffer()
}

// FlushOutput discards everything written but not yet transmitted.
func (s *Serial) FlushOutput() error {
	if s.port == nil {
		return nil
	}
	return s.port.ResetOutputBuffer()
}

// BytesAvailable reports how many bytes can be received without waiting. The port has no
// direct query for this, so it briefly reads ahead into a buffer that Receive drains first.
func (s *Serial) BytesAvailable() (int, error) {
	if s.port == nil {
		return 0, nil
	}
	if err := s.port.SetReadTimeout(peekTimeout); err != nil {
		return len(s.pending), err
	}
	defer s.port.SetReadTimeout(s.cfg.ReadTimeout)

	buf := make([]byte, peekBufferSize)
	n, err := s.port.Read(buf)
	s.pending = append(s.pending, buf[:n]...)
	return len(s.pending), err
}

// PortName returns the serial port name.
func (s *Serial) PortName() string {
	return s.cfg.Port
}

func (s *Serial) String() string {
	status := "open"
	if s.port == nil {
		status = "closed"
	}
	return fmt.Sprintf("serial(%s, %d baud, %s)", s.cfg.Port, s.cfg.BaudRate, status)
}
