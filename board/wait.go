package board

import (
	"bytes"
	"regexp"
	"strings"
	"time"
)

// DefaultWaitTimeout applies when WaitForPatternInLine is given a zero timeout.
const DefaultWaitTimeout = 20 * time.Second

// WaitForPatternInLine reads device output until some line matches pattern, then returns true.
//
// If no line matches before timeout, it returns a *TimeoutError; a non-match is never reported
// as a plain false. An invalid pattern returns a *PatternError before anything is read. When echo
// is set, every received chunk is copied to the Board's echo writer with carriage returns removed.
func (b *Board) WaitForPatternInLine(pattern string, timeout time.Duration, echo bool) (bool, error) {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return false, &PatternError{Pattern: pattern, Err: err}
	}
	return b.WaitForRegexpInLine(re, timeout, echo)
}

// WaitForRegexpInLine is WaitForPatternInLine with an already compiled expression.
//
// Each call starts with an empty buffer. Every pass rescans all lines received so far, including
// a trailing line that has no newline yet, so prompts that devices flush without a terminator
// still match. The deadline is checked once per pass, so the wait can overrun timeout by at most
// one communicator read timeout.
func (b *Board) WaitForRegexpInLine(re *regexp.Regexp, timeout time.Duration, echo bool) (bool, error) {
	if timeout == 0 {
		timeout = DefaultWaitTimeout
	}
	b.logger.Printf("Waiting up to %s for a line matching %q", timeout, re)

	var received []byte
	start := time.Now()
	for {
		if elapsed := time.Since(start); elapsed > timeout {
			return false, &TimeoutError{Pattern: re.String(), Elapsed: elapsed}
		}

		for _, line := range splitLines(received) {
			if re.MatchString(decodeText(line)) {
				b.logger.Printf("Matched %q in line %q", re, decodeText(line))
				return true, nil
			}
		}

		chunk, err := b.ReceiveSome(DefaultReceiveSize)
		if err != nil {
			return false, err
		}
		if echo && len(chunk) > 0 {
			_, _ = b.echo.Write([]byte(decodeText(bytes.ReplaceAll(chunk, []byte("\r"), nil))))
		}
		received = append(received, chunk...)
	}
}

// splitLines breaks data at "\n", "\r\n" or a lone "\r". Terminators are not included, and an
// unterminated tail is returned as the last line.
func splitLines(data []byte) [][]byte {
	var lines [][]byte
	start := 0
	for i := 0; i < len(data); i++ {
		switch data[i] {
		case '\n':
			lines = append(lines, data[start:i])
			start = i + 1
		case '\r':
			lines = append(lines, data[start:i])
			if i+1 < len(data) && data[i+1] == '\n' {
				i++
			}
			start = i + 1
		}
	}
	if start < len(data) {
		lines = append(lines, data[start:])
	}
	return lines
}

// decodeText converts raw device bytes to text, dropping invalid UTF-8 sequences.
func decodeText(line []byte) string {
	return strings.ToValidUTF8(string(line), "")
}
