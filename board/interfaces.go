package board

// Communicator is a duplex byte channel to a device.
//
// Receive returns between 0 and maxBytes bytes. An empty result means nothing arrived within the
// implementation's own read timeout; it is not end of stream. Receive must return rather than
// block indefinitely so that callers keep control of their own deadlines.
//
// Close is idempotent. After Close, Send and Receive return ErrChannelClosed.
type Communicator interface {
	Send(data []byte) error
	Receive(maxBytes int) ([]byte, error)
	Close() error
}

// DebugProbe has out-of-band control of a device's programming and reset interface.
//
// Program returns a *ProgrammingError and Reset returns a *ResetError when the underlying tool
// reports a failure. Close is idempotent and may be a no-op for probes without a persistent
// handle. After Close, Program and Reset return ErrChannelClosed.
type DebugProbe interface {
	Program(imagePath string) error
	Reset() error
	Close() error
}
