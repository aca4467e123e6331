// Package canbus defines the transport the bench uses to reach the ECU under test, along with an
// in-memory loopback used by simulations and tests. Hardware transports live in the slcan and
// socketcan subpackages.
package canbus

import (
	"context"

	"github.com/pkg/errors"

	"go.viam.com/ecubench/protocol"
)

// ErrClosed is returned by operations on a closed bus.
var ErrClosed = errors.New("can bus closed")

// A Receiver delivers inbound frames.
type Receiver interface {
	// Receive blocks until a frame arrives, the context is done or the bus is closed.
	Receive(ctx context.Context) (protocol.Frame, error)
}

// A Sender transmits outbound frames.
type Sender interface {
	Send(ctx context.Context, frame protocol.Frame) error
}

// A Bus is a bidirectional CAN transport.
type Bus interface {
	Receiver
	Sender
	Close() error
}
