package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"

	"github.com/fatih/color"

	"github.com/klab/embedded-board-tests/board"
	"github.com/klab/embedded-board-tests/boardtests"
	"github.com/klab/embedded-board-tests/config"
	"github.com/klab/embedded-board-tests/framework"
	"github.com/klab/embedded-board-tests/logging"
)

func main() {
	os.Exit(run(os.Args, os.Stdout, os.Stderr))
}

func run(args []string, out, errOut io.Writer) int {
	var params commandParams
	if !params.Read(args, errOut) {
		return 1
	}
	if params.noColor {
		color.NoColor = true
	}
	if params.port != "" {
		_ = os.Setenv(config.PortEnvVar, params.port)
	}

	cfg, err := config.Load(params.configPath)
	if err != nil {
		fmt.Fprintf(errOut, "Configuration error: %s\n", err)
		return 1
	}
	if params.firmware != "" {
		cfg.Suite.Firmware = params.firmware
	}
	if params.noEcho {
		echo := false
		cfg.Suite.Echo = &echo
	}

	mainDebugLogger := logging.NullLogger()
	if params.debugAll {
		mainDebugLogger = log.New(out, "", log.LstdFlags)
	}

	b, err := config.OpenBoard(cfg, mainDebugLogger, board.WithEcho(out))
	if err != nil {
		fmt.Fprintf(errOut, "Could not open board %q: %s\n", cfg.Board.Name, err)
		return 1
	}
	defer func() {
		if err := b.Close(); err != nil {
			fmt.Fprintf(errOut, "Error while releasing board: %s\n", err)
		}
	}()

	fmt.Fprintln(out)
	framework.PrintFilterDescription(out, params.filters)

	fmt.Fprintf(out, "Running test suite against %s\n", cfg.Board.Name)

	testLogger := &ConsoleTestLogger{
		Out:                  out,
		DebugOutputOnFailure: params.debug || params.debugAll,
		DebugOutputOnSuccess: params.debugAll,
	}

	results := boardtests.RunTestSuite(b, cfg.Suite, params.filters.AsFilter, testLogger)

	fmt.Fprintln(out)
	framework.PrintResults(out, results)

	if params.reportPath != "" {
		if err := writeReport(params.reportPath, results); err != nil {
			fmt.Fprintf(errOut, "Could not write report: %s\n", err)
			return 1
		}
	}
	if !results.OK() {
		fmt.Fprintf(out, "\nTo rerun the failed tests:\n  %s\n",
			params.rerunCommand(filepath.Base(args[0]), results.Failures))
		return 1
	}
	return 0
}

func writeReport(path string, results framework.Results) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := framework.WriteJSONReport(f, results); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
