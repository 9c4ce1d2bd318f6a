package boardtests

import (
	"github.com/klab/embedded-board-tests/board"
	"github.com/klab/embedded-board-tests/config"
	"github.com/klab/embedded-board-tests/framework"
)

// RunTestSuite runs the smoke suite described by suite against b. Groups that the configuration
// does not describe are reported as skipped.
func RunTestSuite(
	b *board.Board,
	suite config.SuiteConfig,
	filter framework.Filter,
	testLogger framework.TestLogger,
) framework.Results {
	return framework.Run(filter, testLogger, func(c *framework.Context) {
		t := newTestScope(c, b, suite.EchoEnabled())

		t.Run("program", func(t *T) { DoProgramTests(t, suite) })
		t.Run("boot", func(t *T) { DoBootTests(t, suite) })
		t.Run("checks", func(t *T) { DoCheckTests(t, suite) })
	})
}

// DoProgramTests flashes the configured firmware image.
func DoProgramTests(t *T, suite config.SuiteConfig) {
	if suite.Firmware == "" {
		t.Skip("no firmware configured")
	}
	t.Program(suite.Firmware)
}

// DoBootTests resets the board and waits for its boot banner.
func DoBootTests(t *T, suite config.SuiteConfig) {
	if suite.BootPattern == "" {
		t.Skip("no boot pattern configured")
	}
	t.Reset()
	t.RequireLine(suite.BootPattern, suite.BootTimeout())
}

// DoCheckTests runs each configured command/response exchange as its own subtest.
func DoCheckTests(t *T, suite config.SuiteConfig) {
	if len(suite.Checks) == 0 {
		t.Skip("no checks configured")
	}
	for _, check := range suite.Checks {
		check := check
		t.Run(check.Name, func(t *T) {
			if check.Requirement != "" {
				t.Requirement(check.Requirement)
			}
			if check.Send != "" {
				t.Send(check.Send)
			}
			t.RequireLine(check.Expect, check.Timeout())
		})
	}
}
