package probes

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/klab/embedded-board-tests/board"
	"github.com/klab/embedded-board-tests/logging"
)

type invocation struct {
	name string
	args []string
}

func newTestEspTool(t *testing.T, cfg EspToolConfig, output string, err error) (*EspTool, *[]invocation) {
	e, newErr := NewEspTool(cfg)
	require.NoError(t, newErr)
	var calls []invocation
	e.run = func(name string, args ...string) ([]byte, error) {
		calls = append(calls, invocation{name: name, args: args})
		return []byte(output), err
	}
	return e, &calls
}

func TestNewEspToolRequiresPort(t *testing.T) {
	_, err := NewEspTool(EspToolConfig{})
	assert.Error(t, err)
}

func TestEspToolProgramArguments(t *testing.T) {
	e, calls := newTestEspTool(t, EspToolConfig{Port: "/dev/ttyUSB0"}, "", nil)

	require.NoError(t, e.Program("build/app.bin"))
	require.Len(t, *calls, 1)
	assert.Equal(t, "esptool.py", (*calls)[0].name)
	assert.Equal(t, []string{
		"--chip", "esp32",
		"--port", "/dev/ttyUSB0",
		"--baud", "1500000",
		"--after", "hard_reset",
		"write_flash", "-e", "0x0", "build/app.bin",
	}, (*calls)[0].args)
}

func TestEspToolCustomCommandAndSettings(t *testing.T) {
	e, calls := newTestEspTool(t, EspToolConfig{
		Command:  []string{"python3", "-m", "esptool"},
		Chip:     "esp32c3",
		Port:     "COM4",
		BaudRate: 460800,
		Address:  "0x10000",
		After:    "no_reset",
	}, "", nil)

	require.NoError(t, e.Program("fw.bin"))
	assert.Equal(t, "python3", (*calls)[0].name)
	assert.Equal(t, []string{
		"-m", "esptool",
		"--chip", "esp32c3",
		"--port", "COM4",
		"--baud", "460800",
		"--after", "no_reset",
		"write_flash", "-e", "0x10000", "fw.bin",
	}, (*calls)[0].args)
}

func TestEspToolResetArguments(t *testing.T) {
	e, calls := newTestEspTool(t, EspToolConfig{Port: "/dev/ttyUSB0", BaudRate: 115200}, "", nil)

	require.NoError(t, e.Reset())
	assert.Equal(t, []string{"--chip", "esp32", "--port", "/dev/ttyUSB0", "--baud", "115200", "reset"},
		(*calls)[0].args)
}

func TestEspToolProgramFailure(t *testing.T) {
	toolErr := errors.New("exit status 2")
	e, _ := newTestEspTool(t, EspToolConfig{Port: "p"}, "A fatal error occurred: Failed to connect\n", toolErr)

	err := e.Program("fw.bin")
	var progErr *board.ProgrammingError
	require.True(t, errors.As(err, &progErr), "got %T", err)
	assert.Equal(t, "fw.bin", progErr.Image)
	assert.Equal(t, "A fatal error occurred: Failed to connect", progErr.Output)
	assert.ErrorIs(t, err, toolErr)
}

func TestEspToolResetFailure(t *testing.T) {
	toolErr := errors.New("exit status 1")
	e, _ := newTestEspTool(t, EspToolConfig{Port: "p"}, "no serial data received", toolErr)

	err := e.Reset()
	var resetErr *board.ResetError
	require.True(t, errors.As(err, &resetErr), "got %T", err)
	assert.Equal(t, "no serial data received", resetErr.Output)
	assert.ErrorIs(t, err, toolErr)
}

func TestEspToolLogsQuotedCommandLine(t *testing.T) {
	var logger logging.CapturingLogger
	e, _ := newTestEspTool(t, EspToolConfig{Port: "p", Logger: &logger}, "", nil)

	require.NoError(t, e.Program("my firmware.bin"))
	out := logger.Output()
	require.NotEmpty(t, out)
	assert.True(t, strings.HasPrefix(out[0].Message, "[esptool] Running esptool.py --chip esp32"), out[0].Message)
	assert.True(t, strings.HasSuffix(out[0].Message, "'my firmware.bin'"), out[0].Message)
}

func TestEspToolClose(t *testing.T) {
	e, calls := newTestEspTool(t, EspToolConfig{Port: "p"}, "", nil)

	require.NoError(t, e.Close())
	require.NoError(t, e.Close())
	assert.ErrorIs(t, e.Program("fw.bin"), board.ErrChannelClosed)
	assert.ErrorIs(t, e.Reset(), board.ErrChannelClosed)
	assert.Empty(t, *calls)
}
