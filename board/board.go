package board

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/klab/embedded-board-tests/logging"
)

// DefaultReceiveSize is the chunk size requested by the wait loop on every pass.
const DefaultReceiveSize = 1024

// Board orchestrates one target device. It exclusively owns its DebugProbe and Communicator;
// neither is ever handed to another Board.
type Board struct {
	probe        DebugProbe
	communicator Communicator
	echo         io.Writer
	logger       logging.Logger
	closed       bool
}

// Option customizes a Board created by New or Use.
type Option func(*Board)

// WithEcho sets where device output is echoed while waiting for a pattern. The default is
// os.Stdout. A nil writer disables echo entirely.
func WithEcho(w io.Writer) Option {
	return func(b *Board) {
		if w == nil {
			w = io.Discard
		}
		b.echo = w
	}
}

// WithLogger sets the debug logger. The default discards everything.
func WithLogger(logger logging.Logger) Option {
	return func(b *Board) {
		if logger != nil {
			b.logger = logger
		}
	}
}

// New creates a Board from an already opened probe and communicator. The Board takes ownership of
// both; call Close, or use Use, to release them.
func New(probe DebugProbe, communicator Communicator, opts ...Option) *Board {
	b := &Board{
		probe:        probe,
		communicator: communicator,
		echo:         os.Stdout,
		logger:       logging.NullLogger(),
	}
	for _, o := range opts {
		o(b)
	}
	return b
}

// Program flashes the firmware image at imagePath. Errors from the probe are returned unchanged.
func (b *Board) Program(imagePath string) error {
	b.logger.Printf("Programming image %q", imagePath)
	return b.probe.Program(imagePath)
}

// Reset resets the target. Errors from the probe are returned unchanged.
func (b *Board) Reset() error {
	b.logger.Printf("Resetting board")
	return b.probe.Reset()
}

// Send writes data to the device.
func (b *Board) Send(data []byte) error {
	b.logger.Printf(">> sending %q", data)
	return b.communicator.Send(data)
}

// ReceiveSome returns whatever the communicator has available, up to maxBytes. The result may be
// empty. It never blocks longer than the communicator's own read timeout.
func (b *Board) ReceiveSome(maxBytes int) ([]byte, error) {
	return b.communicator.Receive(maxBytes)
}

// Close closes the communicator and then the probe. Both are always attempted, and any failures
// are joined. Calling Close more than once is a no-op.
func (b *Board) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true

	var errs []error
	if err := b.communicator.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing communicator: %w", err))
	}
	if err := b.probe.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing debug probe: %w", err))
	}
	return errors.Join(errs...)
}

// Use creates a Board, passes it to fn, and closes it on every exit path, including a panic in fn.
//
// If fn returns an error, that error is returned and any failure to close is only logged. If fn
// panics, both resources are closed before the panic continues. Otherwise the result of Close is
// returned.
func Use(probe DebugProbe, communicator Communicator, fn func(*Board) error, opts ...Option) (err error) {
	b := New(probe, communicator, opts...)
	completed := false
	defer func() {
		closeErr := b.Close()
		if closeErr == nil {
			return
		}
		if !completed || err != nil {
			b.logger.Printf("Error while releasing board: %s", closeErr)
			return
		}
		err = closeErr
	}()

	err = fn(b)
	completed = true
	return err
}
