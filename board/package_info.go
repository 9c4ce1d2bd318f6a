// Package board drives an embedded target through two independent channels: a DebugProbe that
// flashes and resets the device, and a Communicator that carries its data traffic.
//
// A Board owns exactly one of each for its lifetime and releases both together. Its central
// operation is WaitForPatternInLine, which scans device output line by line as bytes trickle in
// and returns as soon as a line matches, or fails with a *TimeoutError once the deadline passes.
//
// Everything is synchronous. There is no background reader; the caller's goroutine runs the wait
// loop itself, and the only blocking point is the Communicator's own bounded Receive.
package board
