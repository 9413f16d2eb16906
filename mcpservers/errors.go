package mcpservers

import (
	"github.com/cockroachdb/errors"
)

var (
	// ErrNotConnected is returned when an operation requires a live server connection.
	ErrNotConnected = errors.New("server not connected")
	// ErrConnection marks failures to spawn or handshake with a server process.
	ErrConnection = errors.New("server connection failed")
	// ErrTimeout is returned when a tool call exceeds the per-call deadline.
	ErrTimeout = errors.New("tool call timed out")
	// ErrUnsupportedTransport is returned for any transport other than stdio.
	ErrUnsupportedTransport = errors.New("unsupported transport")
	// ErrInvalidConfig is returned when a server configuration fails validation.
	ErrInvalidConfig = errors.New("invalid server configuration")
	// ErrServerExists is returned when adding a server under a name already in use.
	ErrServerExists = errors.New("server already registered")
)
