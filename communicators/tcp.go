package communicators

import (
	"errors"
	"fmt"
	"net"
	"strings"
	"time"

	"github.com/klab/embedded-board-tests/board"
)

const (
	tcpDialTimeout = 2 * time.Second
	tcpScheme      = "tcp://"
)

// TCP is a Communicator over a raw TCP socket, for devices exposed through a serial-to-network
// bridge such as ser2net, or for simulated targets.
type TCP struct {
	conn        net.Conn
	address     string
	readTimeout time.Duration
}

var _ board.Communicator = (*TCP)(nil)

// DialTCP connects to address ("host:port"). Every Receive waits at most readTimeout.
func DialTCP(address string, readTimeout time.Duration) (*TCP, error) {
	if readTimeout <= 0 {
		readTimeout = defaultReadTimeout
	}
	conn, err := net.DialTimeout("tcp", address, tcpDialTimeout)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", address, err)
	}
	return &TCP{conn: conn, address: address, readTimeout: readTimeout}, nil
}

func (t *TCP) Send(data []byte) error {
	if t.conn == nil {
		return board.ErrChannelClosed
	}
	_, err := t.conn.Write(data)
	return err
}

// Receive returns up to maxBytes bytes. A read that hits the timeout returns an empty result
// rather than an error.
func (t *TCP) Receive(maxBytes int) ([]byte, error) {
	if t.conn == nil {
		return nil, board.ErrChannelClosed
	}
	if maxBytes <= 0 {
		return []byte{}, nil
	}
	buf := make([]byte, maxBytes)
	_ = t.conn.SetReadDeadline(time.Now().Add(t.readTimeout))
	n, err := t.conn.Read(buf)
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return buf[:n], nil
	}
	return buf[:n], err
}

// FlushInput discards anything the peer has already sent.
func (t *TCP) FlushInput() error {
	if t.conn == nil {
		return nil
	}
	buf := make([]byte, peekBufferSize)
	for {
		_ = t.conn.SetReadDeadline(time.Now().Add(peekTimeout))
		n, err := t.conn.Read(buf)
		if n == 0 || err != nil {
			return nil
		}
	}
}

func (t *TCP) Close() error {
	if t.conn == nil {
		return nil
	}
	err := t.conn.Close()
	t.conn = nil
	return err
}

func (t *TCP) String() string {
	status := "open"
	if t.conn == nil {
		status = "closed"
	}
	return fmt.Sprintf("tcp(%s, %s)", t.address, status)
}

// Open opens cfg.Port as a TCP bridge if it has the form "tcp://host:port", and as a local
// serial port otherwise ("/dev/ttyUSB0", "COM3", ...).
func Open(cfg SerialConfig) (board.Communicator, error) {
	if strings.HasPrefix(cfg.Port, tcpScheme) {
		t, err := DialTCP(strings.TrimPrefix(cfg.Port, tcpScheme), cfg.ReadTimeout)
		if err != nil {
			return nil, err
		}
		return t, nil
	}
	s, err := OpenSerial(cfg)
	if err != nil {
		return nil, err
	}
	return s, nil
}
