package probes

import (
	"github.com/klab/embedded-board-tests/board"
)

// Recorder is a DebugProbe that records every call instead of touching hardware.
type Recorder struct {
	// ProgramErr and ResetErr, if set, are returned by every Program or Reset call.
	ProgramErr error
	ResetErr   error
	// CloseErr, if set, is returned by the first Close call.
	CloseErr error

	images     []string
	resets     int
	closeCalls int
	closed     bool
}

var _ board.DebugProbe = (*Recorder)(nil)

func (r *Recorder) Program(imagePath string) error {
	if r.closed {
		return board.ErrChannelClosed
	}
	r.images = append(r.images, imagePath)
	return r.ProgramErr
}

func (r *Recorder) Reset() error {
	if r.closed {
		return board.ErrChannelClosed
	}
	r.resets++
	return r.ResetErr
}

func (r *Recorder) Close() error {
	r.closeCalls++
	if r.closed {
		return nil
	}
	r.closed = true
	return r.CloseErr
}

// ProgrammedImages returns the image paths passed to Program, in order.
func (r *Recorder) ProgrammedImages() []string {
	return append([]string(nil), r.images...)
}

func (r *Recorder) ResetCount() int { return r.resets }

func (r *Recorder) CloseCalls() int { return r.closeCalls }

func (r *Recorder) Closed() bool { return r.closed }
