package transport

import (
	"errors"
	"fmt"
	"io"
	"net"
)

var (
	// ErrUnexpectedResponse marks a response that could not be decoded or
	// had the wrong shape. The session can continue.
	ErrUnexpectedResponse = errors.New("unexpected response from query service")
	// ErrChannelLost marks an I/O failure on the underlying stream. The
	// session cannot continue.
	ErrChannelLost = errors.New("query channel lost")
	// ErrSessionEstablishment marks a failure to open the secure stream.
	ErrSessionEstablishment = errors.New("failed to establish query session")
)

// IsFatal reports whether err ends an established session. A failure to
// open an additional channel leaves the session's own channel usable.
func IsFatal(err error) bool {
	return errors.Is(err, ErrChannelLost)
}

// classifyReadError separates stream failures from decode failures.
func classifyReadError(err error) error {
	var netErr net.Error
	if errors.Is(err, io.EOF) ||
		errors.Is(err, io.ErrUnexpectedEOF) ||
		errors.Is(err, io.ErrClosedPipe) ||
		errors.Is(err, net.ErrClosed) ||
		errors.As(err, &netErr) {
		return fmt.Errorf("%w: %w", ErrChannelLost, err)
	}
	return fmt.Errorf("%w: %w", ErrUnexpectedResponse, err)
}
