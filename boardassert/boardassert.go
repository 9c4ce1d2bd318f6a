// Package boardassert provides assertions for driving a board.Board from ordinary Go tests.
//
// The functions accept the testify TestingT interfaces, so they work with *testing.T as well as
// with the runner's own test scopes.
package boardassert

import (
	"errors"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klab/embedded-board-tests/board"
)

type helper interface {
	Helper()
}

func markHelper(t interface{}) {
	if h, ok := t.(helper); ok {
		h.Helper()
	}
}

// RequireLine waits for a line of device output matching pattern, and fails the test
// immediately if none appears within timeout.
func RequireLine(t require.TestingT, b *board.Board, pattern string, timeout time.Duration, msgAndArgs ...interface{}) {
	markHelper(t)
	_, err := b.WaitForPatternInLine(pattern, timeout, false)
	require.NoError(t, err, msgAndArgs...)
}

// AssertNoLine watches device output for window and fails the test if any line matches pattern.
// It returns true if no line matched.
func AssertNoLine(t assert.TestingT, b *board.Board, pattern string, window time.Duration, msgAndArgs ...interface{}) bool {
	markHelper(t)
	if window <= 0 {
		return true
	}
	_, err := b.WaitForPatternInLine(pattern, window, false)
	switch {
	case err == nil:
		return assert.Fail(t, "unexpected device output matched "+pattern, msgAndArgs...)
	case errors.Is(err, board.ErrTimeout):
		return true
	default:
		return assert.NoError(t, err, msgAndArgs...)
	}
}

// RequireProgrammed flashes image and fails the test immediately if the probe reports an error.
func RequireProgrammed(t require.TestingT, b *board.Board, image string, msgAndArgs ...interface{}) {
	markHelper(t)
	require.NoError(t, b.Program(image), msgAndArgs...)
}
