package probes

import "github.com/klab/embedded-board-tests/board"

// None is a DebugProbe for boards that are only observed. Program and Reset succeed without doing
// anything.
type None struct {
	closed bool
}

var _ board.DebugProbe = (*None)(nil)

func (n *None) Program(string) error {
	if n.closed {
		return board.ErrChannelClosed
	}
	return nil
}

func (n *None) Reset() error {
	if n.closed {
		return board.ErrChannelClosed
	}
	return nil
}

func (n *None) Close() error {
	n.closed = true
	return nil
}
