package communicators

import (
	"sync"
	"time"

	"github.com/klab/embedded-board-tests/board"
)

// Mock is a Communicator that replays queued chunks of device output and records what is sent to
// it. Each Receive returns bytes from the oldest readable chunk only, so data fed as separate
// chunks arrives over separate receives, the way it would trickle in from a real device.
//
// Mock is safe to feed from another goroutine while a Board is reading from it.
type Mock struct {
	// ReadTimeout is how long Receive waits for a chunk to become readable before returning
	// an empty result. Zero means Receive returns immediately.
	ReadTimeout time.Duration
	// CloseErr, if set, is returned by the first Close call.
	CloseErr error

	chunks       []mockChunk
	sent         [][]byte
	receiveCalls int
	closeCalls   int
	closed       bool
	interrupt    error
	lock         sync.Mutex
}

type mockChunk struct {
	data    []byte
	readyAt time.Time
}

var _ board.Communicator = (*Mock)(nil)

// NewMock creates an empty Mock.
func NewMock() *Mock {
	return &Mock{}
}

// Feed queues a chunk that is readable immediately.
func (m *Mock) Feed(data []byte) {
	m.FeedAfter(data, 0)
}

// FeedString is Feed for text.
func (m *Mock) FeedString(s string) {
	m.Feed([]byte(s))
}

// FeedAfter queues a chunk that becomes readable once delay has passed.
func (m *Mock) FeedAfter(data []byte, delay time.Duration) {
	chunk := mockChunk{data: append([]byte(nil), data...), readyAt: time.Now().Add(delay)}
	m.lock.Lock()
	m.chunks = append(m.chunks, chunk)
	m.lock.Unlock()
}

// FeedSplit breaks data into chunks of at most chunkSize bytes and queues each one.
func (m *Mock) FeedSplit(data []byte, chunkSize int) {
	if chunkSize <= 0 {
		chunkSize = len(data)
	}
	for pos := 0; pos < len(data); pos += chunkSize {
		max := pos + chunkSize
		if max > len(data) {
			max = len(data)
		}
		m.Feed(data[pos:max])
	}
}

// Interrupt makes the next Receive fail with err.
func (m *Mock) Interrupt(err error) {
	m.lock.Lock()
	m.interrupt = err
	m.lock.Unlock()
}

func (m *Mock) Send(data []byte) error {
	m.lock.Lock()
	defer m.lock.Unlock()
	if m.closed {
		return board.ErrChannelClosed
	}
	m.sent = append(m.sent, append([]byte{}, data...))
	return nil
}

func (m *Mock) Receive(maxBytes int) ([]byte, error) {
	m.lock.Lock()
	m.receiveCalls++
	if m.closed {
		m.lock.Unlock()
		return nil, board.ErrChannelClosed
	}
	if err := m.interrupt; err != nil {
		m.interrupt = nil
		m.lock.Unlock()
		return nil, err
	}
	if maxBytes <= 0 {
		m.lock.Unlock()
		return []byte{}, nil
	}

	wait := m.ReadTimeout
	if len(m.chunks) > 0 {
		untilReady := time.Until(m.chunks[0].readyAt)
		if untilReady <= 0 {
			data := m.take(maxBytes)
			m.lock.Unlock()
			return data, nil
		}
		if untilReady < wait {
			wait = untilReady
		}
	}
	m.lock.Unlock()

	if wait > 0 {
		time.Sleep(wait)
	}

	m.lock.Lock()
	defer m.lock.Unlock()
	if m.closed {
		return nil, board.ErrChannelClosed
	}
	if len(m.chunks) > 0 && !time.Now().Before(m.chunks[0].readyAt) {
		return m.take(maxBytes), nil
	}
	return []byte{}, nil
}

// take removes up to maxBytes from the head chunk. Callers hold the lock.
func (m *Mock) take(maxBytes int) []byte {
	head := &m.chunks[0]
	n := len(head.data)
	if n > maxBytes {
		n = maxBytes
	}
	data := head.data[:n:n]
	head.data = head.data[n:]
	if len(head.data) == 0 {
		m.chunks = m.chunks[1:]
	}
	return data
}

func (m *Mock) Close() error {
	m.lock.Lock()
	defer m.lock.Unlock()
	m.closeCalls++
	if m.closed {
		return nil
	}
	m.closed = true
	return m.CloseErr
}

// Sent returns every payload passed to Send, in order.
func (m *Mock) Sent() [][]byte {
	m.lock.Lock()
	defer m.lock.Unlock()
	return append([][]byte(nil), m.sent...)
}

// ReceiveCalls returns how many times Receive has been called.
func (m *Mock) ReceiveCalls() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.receiveCalls
}

// CloseCalls returns how many times Close has been called.
func (m *Mock) CloseCalls() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.closeCalls
}

func (m *Mock) Closed() bool {
	m.lock.Lock()
	defer m.lock.Unlock()
	return m.closed
}

// Pending returns the number of queued bytes that have not been received yet.
func (m *Mock) Pending() int {
	m.lock.Lock()
	defer m.lock.Unlock()
	total := 0
	for _, c := range m.chunks {
		total += len(c.data)
	}
	return total
}
