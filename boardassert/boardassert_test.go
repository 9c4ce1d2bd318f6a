package boardassert

import (
	"errors"
	"testing"
	"time"

	"github.com/launchdarkly/go-test-helpers/v2/testbox"
	"github.com/stretchr/testify/assert"

	"github.com/klab/embedded-board-tests/board"
	"github.com/klab/embedded-board-tests/communicators"
	"github.com/klab/embedded-board-tests/probes"
)

func newTestBoard(output string) (*board.Board, *probes.Recorder, *communicators.Mock) {
	probe := &probes.Recorder{}
	comm := communicators.NewMock()
	comm.ReadTimeout = 5 * time.Millisecond
	if output != "" {
		comm.FeedString(output)
	}
	return board.New(probe, comm, board.WithEcho(nil)), probe, comm
}

func TestRequireLine(t *testing.T) {
	t.Run("pass", func(t *testing.T) {
		b, _, _ := newTestBoard("booting\nFirmware Ready!\n")
		result := testbox.SandboxTest(func(t testbox.TestingT) {
			RequireLine(t, b, "Ready", time.Second)
		})
		assert.False(t, result.Failed)
	})

	t.Run("fail", func(t *testing.T) {
		b, _, _ := newTestBoard("booting\n")
		reachedEnd := false
		result := testbox.SandboxTest(func(t testbox.TestingT) {
			RequireLine(t, b, "Ready", 50*time.Millisecond)
			reachedEnd = true
		})
		assert.True(t, result.Failed)
		assert.False(t, reachedEnd)
	})
}

func TestAssertNoLine(t *testing.T) {
	t.Run("pass", func(t *testing.T) {
		b, _, _ := newTestBoard("heap ok\n")
		result := testbox.SandboxTest(func(t testbox.TestingT) {
			AssertNoLine(t, b, "Guru Meditation", 50*time.Millisecond)
		})
		assert.False(t, result.Failed)
	})

	t.Run("fail", func(t *testing.T) {
		b, _, _ := newTestBoard("Guru Meditation Error: Core 0 panic'ed\n")
		result := testbox.SandboxTest(func(t testbox.TestingT) {
			AssertNoLine(t, b, "Guru Meditation", 50*time.Millisecond)
		})
		assert.True(t, result.Failed)
	})

	t.Run("receive error fails", func(t *testing.T) {
		b, _, comm := newTestBoard("")
		comm.Interrupt(errors.New("device unplugged"))
		result := testbox.SandboxTest(func(t testbox.TestingT) {
			AssertNoLine(t, b, "anything", 50*time.Millisecond)
		})
		assert.True(t, result.Failed)
	})

	t.Run("empty window", func(t *testing.T) {
		b, _, comm := newTestBoard("Guru Meditation\n")
		result := testbox.SandboxTest(func(t testbox.TestingT) {
			AssertNoLine(t, b, "Guru Meditation", 0)
		})
		assert.False(t, result.Failed)
		assert.Equal(t, 0, comm.ReceiveCalls())
	})
}

func TestRequireProgrammed(t *testing.T) {
	t.Run("pass", func(t *testing.T) {
		b, probe, _ := newTestBoard("")
		result := testbox.SandboxTest(func(t testbox.TestingT) {
			RequireProgrammed(t, b, "fw.bin")
		})
		assert.False(t, result.Failed)
		assert.Equal(t, []string{"fw.bin"}, probe.ProgrammedImages())
	})

	t.Run("fail", func(t *testing.T) {
		b, probe, _ := newTestBoard("")
		probe.ProgramErr = &board.ProgrammingError{Image: "fw.bin", Err: errors.New("exit status 2")}
		result := testbox.SandboxTest(func(t testbox.TestingT) {
			RequireProgrammed(t, b, "fw.bin")
		})
		assert.True(t, result.Failed)
	})
}
