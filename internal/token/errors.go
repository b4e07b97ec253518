// Package token implements the distcc-compatible wire protocol: a stream of
// fixed 12-byte ASCII headers ("tokens"), each optionally followed by a
// payload whose length the token itself carries.
package token

import "fmt"

// InvalidToken is raised when a 12-byte header is malformed, or carries a
// tag different from the one the reader expected.
type InvalidToken struct {
	Message string
}

func (e *InvalidToken) Error() string {
	return "invalid token: " + e.Message
}

func newInvalidTokenLength(expected, actual int) error {
	return &InvalidToken{Message: fmt.Sprintf("expected %d bytes, got %d", expected, actual)}
}

func newInvalidTokenTag(expected, actual Tag) error {
	return &InvalidToken{Message: fmt.Sprintf("expected %q, got %q", expected, actual)}
}

// ProtocolError covers every framing violation that is not a bad tag: a
// short read (the peer disconnected mid-header or mid-payload), or an
// unsupported protocol version.
type ProtocolError struct {
	Message string
}

func (e *ProtocolError) Error() string {
	return "protocol error: " + e.Message
}

func newDisconnected() error {
	return &ProtocolError{Message: "peer disconnected"}
}
