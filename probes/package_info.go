// Package probes contains board.DebugProbe implementations.
//
// EspTool drives Espressif chips by invoking esptool as a subprocess for every operation; there
// is no persistent session. Recorder and None are test and observation-only stand-ins.
package probes
