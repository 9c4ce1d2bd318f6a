package communicators

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klab/embedded-board-tests/board"
)

func TestMockReceiveReturnsWholeChunk(t *testing.T) {
	m := NewMock()
	m.FeedString("Test data from device")

	data, err := m.Receive(1024)
	require.NoError(t, err)
	assert.Equal(t, "Test data from device", string(data))
	assert.Equal(t, 0, m.Pending())
}

func TestMockReceiveHonorsMaxBytes(t *testing.T) {
	m := NewMock()
	m.Feed(make([]byte, 100))

	data, err := m.Receive(50)
	require.NoError(t, err)
	assert.Len(t, data, 50)
	assert.Equal(t, 50, m.Pending())
}

func TestMockReceiveDeliversOneChunkPerCall(t *testing.T) {
	m := NewMock()
	m.FeedString("one\n")
	m.FeedString("two\n")

	first, err := m.Receive(1024)
	require.NoError(t, err)
	second, err := m.Receive(1024)
	require.NoError(t, err)
	assert.Equal(t, "one\n", string(first))
	assert.Equal(t, "two\n", string(second))
	assert.Equal(t, 2, m.ReceiveCalls())
}

func TestMockReceiveZeroBytes(t *testing.T) {
	m := NewMock()
	m.FeedString("data")

	data, err := m.Receive(0)
	require.NoError(t, err)
	assert.NotNil(t, data)
	assert.Empty(t, data)
	assert.Equal(t, 4, m.Pending())
}

func TestMockReceiveEmptyWaitsReadTimeout(t *testing.T) {
	m := NewMock()
	m.ReadTimeout = 50 * time.Millisecond

	start := time.Now()
	data, err := m.Receive(10)
	require.NoError(t, err)
	assert.Empty(t, data)
	assert.GreaterOrEqual(t, time.Since(start), 50*time.Millisecond)
}

func TestMockFeedAfterBecomesReadableLater(t *testing.T) {
	m := NewMock()
	m.FeedAfter([]byte("late\n"), 100*time.Millisecond)

	data, err := m.Receive(10)
	require.NoError(t, err)
	assert.Empty(t, data, "chunk should not be readable yet")

	m.ReadTimeout = time.Second
	start := time.Now()
	data, err = m.Receive(10)
	require.NoError(t, err)
	assert.Equal(t, "late\n", string(data))
	assert.Less(t, time.Since(start), time.Second, "should return as soon as the chunk is ready")
}

func TestMockFeedSplit(t *testing.T) {
	m := NewMock()
	m.FeedSplit([]byte("abcdefg"), 3)

	var got []string
	for m.Pending() > 0 {
		data, err := m.Receive(1024)
		require.NoError(t, err)
		got = append(got, string(data))
	}
	assert.Equal(t, []string{"abc", "def", "g"}, got)
}

func TestMockInterrupt(t *testing.T) {
	m := NewMock()
	boom := errors.New("cable unplugged")
	m.Interrupt(boom)

	_, err := m.Receive(10)
	assert.Equal(t, boom, err)

	_, err = m.Receive(10)
	assert.NoError(t, err, "interrupt applies to one receive only")
}

func TestMockSendRecordsCopies(t *testing.T) {
	m := NewMock()
	payload := []byte("msg1")
	require.NoError(t, m.Send(payload))
	require.NoError(t, m.Send([]byte{}))
	payload[0] = 'X'

	sent := m.Sent()
	require.Len(t, sent, 2)
	assert.Equal(t, "msg1", string(sent[0]))
	assert.Empty(t, sent[1])
}

func TestMockClose(t *testing.T) {
	m := NewMock()
	require.NoError(t, m.Close())
	require.NoError(t, m.Close())

	assert.True(t, m.Closed())
	assert.Equal(t, 2, m.CloseCalls())

	assert.ErrorIs(t, m.Send([]byte("x")), board.ErrChannelClosed)
	_, err := m.Receive(10)
	assert.ErrorIs(t, err, board.ErrChannelClosed)
}

func TestMockCloseErrReturnedOnce(t *testing.T) {
	m := NewMock()
	m.CloseErr = errors.New("stuck")

	assert.EqualError(t, m.Close(), "stuck")
	assert.NoError(t, m.Close())
}
