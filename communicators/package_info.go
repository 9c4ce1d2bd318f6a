// Package communicators contains board.Communicator implementations: a serial port, a raw TCP
// bridge for serial-over-network setups, and Mock, a scriptable test double.
package communicators
