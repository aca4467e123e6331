package inject

import (
	"context"

	"go.viam.com/ecubench/canbus"
	"go.viam.com/ecubench/protocol"
)

// Bus is an injectable canbus.Bus.
type Bus struct {
	canbus.Bus
	ReceiveFunc func(ctx context.Context) (protocol.Frame, error)
	SendFunc    func(ctx context.Context, frame protocol.Frame) error
	CloseFunc   func() error
}

// Receive calls the injected Receive or the real version.
func (b *Bus) Receive(ctx context.Context) (protocol.Frame, error) {
	if b.ReceiveFunc == nil {
		return b.Bus.Receive(ctx)
	}
	return b.ReceiveFunc(ctx)
}

// Send calls the injected Send or the real version.
func (b *Bus) Send(ctx context.Context, frame protocol.Frame) error {
	if b.SendFunc == nil {
		return b.Bus.Send(ctx, frame)
	}
	return b.SendFunc(ctx, frame)
}

// Close calls the injected Close or the real version.
func (b *Bus) Close() error {
	if b.CloseFunc == nil {
		if b.Bus == nil {
			return nil
		}
		return b.Bus.Close()
	}
	return b.CloseFunc()
}
