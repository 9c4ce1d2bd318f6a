package main

import (
	"flag"
	"fmt"
	"io"
	"regexp"
	"strings"

	"github.com/alessio/shellescape"

	"github.com/klab/embedded-board-tests/framework"
)

type commandParams struct {
	configPath string
	port       string
	firmware   string
	filters    framework.RegexFilters
	reportPath string
	debug      bool
	debugAll   bool
	noEcho     bool
	noColor    bool
}

func (c *commandParams) Read(args []string, errOut io.Writer) bool {
	fs := flag.NewFlagSet(args[0], flag.ContinueOnError)
	fs.SetOutput(errOut)
	fs.StringVar(&c.configPath, "config", "", "path to the board configuration file")
	fs.StringVar(&c.port, "port", "", "override the communicator port from the configuration")
	fs.StringVar(&c.firmware, "firmware", "", "override the firmware image from the configuration")
	fs.Var(&c.filters.MustMatch, "run", "regex pattern(s) to select tests to run")
	fs.Var(&c.filters.MustNotMatch, "skip", "regex pattern(s) to select tests not to run")
	fs.StringVar(&c.reportPath, "report", "", "write a JSON report of the results to this file")
	fs.BoolVar(&c.debug, "debug", false, "enable debug logging for failed tests")
	fs.BoolVar(&c.debugAll, "debug-all", false, "enable debug logging for all tests")
	fs.BoolVar(&c.noEcho, "no-echo", false, "do not echo device output while waiting for it")
	fs.BoolVar(&c.noColor, "no-color", false, "disable colored output")

	if err := fs.Parse(args[1:]); err != nil {
		return false
	}
	if c.configPath == "" {
		fmt.Fprintln(errOut, "-config is required")
		fs.Usage()
		return false
	}
	return true
}

// rerunCommand builds a command line that runs only the given tests with the same configuration.
func (c *commandParams) rerunCommand(program string, failures []framework.TestResult) string {
	var cmd commandBuilder
	cmd.add(program, "-config", c.configPath)
	if c.port != "" {
		cmd.add("-port", c.port)
	}
	if c.firmware != "" {
		cmd.add("-firmware", c.firmware)
	}
	for _, f := range failures {
		cmd.add("-run", "^"+regexp.QuoteMeta(f.TestID.String())+"$")
	}
	return cmd.String()
}

type commandBuilder []string

func (b *commandBuilder) add(args ...string) {
	for _, a := range args {
		*b = append(*b, shellescape.Quote(a))
	}
}

func (b commandBuilder) String() string {
	return strings.Join(b, " ")
}
