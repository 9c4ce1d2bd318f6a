package boardtests

import (
	"time"

	"github.com/stretchr/testify/require"

	"github.com/klab/embedded-board-tests/board"
	"github.com/klab/embedded-board-tests/framework"
)

// T represents a test or subtest in the board test suite.
//
// It implements the same basic functionality as Go's testing.T, but in an environment that is outside
// of the Go test runner, and with some extra features such as debug logging and requirement tracking
// that are provided by the lower-level framework package.
//
// It also provides functionality that is specific to board testing. Every T shares the Board
// under test, and has methods for flashing, resetting and talking to it. Those methods fail the test
// and exit immediately if the board reports an error, to reduce the amount of boilerplate in tests.
// For other assertions, pass the *T to the assert and require packages as if it were a *testing.T.
type T struct {
	context *framework.Context
	board   *board.Board
	echo    bool
}

func newTestScope(context *framework.Context, b *board.Board, echo bool) *T {
	return &T{context: context, board: b, echo: echo}
}

// Errorf is called by assertions to log a test failure. It does not cause an immediate exit.
func (t *T) Errorf(format string, args ...interface{}) {
	t.context.Errorf(format, args...)
}

// FailNow is called by assertions when a test should fail and immediately exit. The methods in
// the require package call FailNow.
func (t *T) FailNow() {
	t.context.FailNow()
}

// Run runs a subtest. This is equivalent to the Run method of testing.T.
func (t *T) Run(name string, action func(*T)) {
	t.context.Run(name, func(c *framework.Context) {
		action(newTestScope(c, t.board, t.echo))
	})
}

// Debug logs some debug output for the test. The output will be passed to the test logger at
// the end of the test.
func (t *T) Debug(format string, args ...interface{}) {
	t.context.Debug(format, args...)
}

// Skip skips the rest of this test, reporting reason to the test logger.
func (t *T) Skip(reason string) {
	t.context.SkipWithReason(reason)
}

// Requirement records that this test verifies the given requirement ID.
func (t *T) Requirement(id string) {
	t.context.Requirement(id)
}

// Defer schedules fn to run when this test finishes.
func (t *T) Defer(fn func()) {
	t.context.Defer(fn)
}

// Board returns the board under test, for tests that need to call it directly.
func (t *T) Board() *board.Board {
	return t.board
}

// Program flashes the firmware image at imagePath.
func (t *T) Program(imagePath string) {
	t.Debug("Programming %s", imagePath)
	require.NoError(t, t.board.Program(imagePath), "programming failed")
}

// Reset resets the board.
func (t *T) Reset() {
	t.Debug("Resetting board")
	require.NoError(t, t.board.Reset(), "reset failed")
}

// Send writes data to the device.
func (t *T) Send(data string) {
	t.Debug(">> %q", data)
	require.NoError(t, t.board.Send([]byte(data)), "send failed")
}

// RequireLine waits for a line of device output matching pattern. The test fails and exits
// immediately if it times out.
func (t *T) RequireLine(pattern string, timeout time.Duration) {
	t.Debug("Waiting up to %s for %q", timeout, pattern)
	start := time.Now()
	_, err := t.board.WaitForPatternInLine(pattern, timeout, t.echo)
	require.NoError(t, err, "did not see expected device output")
	t.Debug("Matched %q after %s", pattern, time.Since(start).Round(time.Millisecond))
}
