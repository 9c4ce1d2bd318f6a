package board

import (
	"errors"
	"fmt"
	"time"
)

// ErrChannelClosed is returned by communicators and probes that are used after Close.
var ErrChannelClosed = errors.New("channel is closed")

// ErrTimeout matches any *TimeoutError with errors.Is.
var ErrTimeout = errors.New("timed out")

// TimeoutError means no line matched Pattern before the wait deadline.
type TimeoutError struct {
	Pattern string
	Elapsed time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("timeout waiting for regex: %s (after %s)", e.Pattern, e.Elapsed.Round(time.Millisecond))
}

// Timeout reports true, so TimeoutError can be recognized the same way as net.Error timeouts.
func (e *TimeoutError) Timeout() bool { return true }

func (e *TimeoutError) Is(target error) bool {
	return target == ErrTimeout
}

// PatternError means a pattern was not a valid regular expression.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("invalid pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error {
	return e.Err
}

// ProgrammingError means the probe's flashing tool reported a failure.
type ProgrammingError struct {
	Image  string
	Output string
	Err    error
}

func (e *ProgrammingError) Error() string {
	return fmt.Sprintf("programming %q failed: %v", e.Image, e.Err)
}

func (e *ProgrammingError) Unwrap() error {
	return e.Err
}

// ResetError means the probe's reset command reported a failure.
type ResetError struct {
	Output string
	Err    error
}

func (e *ResetError) Error() string {
	return fmt.Sprintf("reset failed: %v", e.Err)
}

func (e *ResetError) Unwrap() error {
	return e.Err
}
