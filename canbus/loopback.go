package canbus

import (
	"context"
	"sync"

	"go.viam.com/ecubench/protocol"
)

const loopbackQueueDepth = 256

// Loopback is an in-memory bus segment. Every frame sent by one endpoint is delivered to every
// other open endpoint, mirroring how a physical CAN bus never echoes a frame to its sender.
type Loopback struct {
	mu        sync.Mutex
	endpoints map[*Endpoint]struct{}
}

// NewLoopback returns an empty loopback segment.
func NewLoopback() *Loopback {
	return &Loopback{endpoints: map[*Endpoint]struct{}{}}
}

// Open attaches a new endpoint to the segment.
func (lb *Loopback) Open() *Endpoint {
	ep := &Endpoint{
		segment: lb,
		rx:      make(chan protocol.Frame, loopbackQueueDepth),
		closed:  make(chan struct{}),
	}
	lb.mu.Lock()
	lb.endpoints[ep] = struct{}{}
	lb.mu.Unlock()
	return ep
}

func (lb *Loopback) deliver(from *Endpoint, frame protocol.Frame) {
	lb.mu.Lock()
	defer lb.mu.Unlock()
	for ep := range lb.endpoints {
		if ep == from {
			continue
		}
		select {
		case ep.rx <- frame:
		default:
			// A full receive queue drops the frame like an overrun controller would.
		}
	}
}

func (lb *Loopback) detach(ep *Endpoint) {
	lb.mu.Lock()
	delete(lb.endpoints, ep)
	lb.mu.Unlock()
}

// Endpoint is one node attached to a Loopback segment. It implements Bus.
type Endpoint struct {
	segment   *Loopback
	rx        chan protocol.Frame
	closeOnce sync.Once
	closed    chan struct{}
}

// Send delivers the frame to every other endpoint.
func (ep *Endpoint) Send(ctx context.Context, frame protocol.Frame) error {
	if err := frame.Validate(); err != nil {
		return err
	}
	select {
	case <-ep.closed:
		return ErrClosed
	case <-ctx.Done():
		return ctx.Err()
	default:
	}
	ep.segment.deliver(ep, frame)
	return nil
}

// Receive returns the next frame delivered to this endpoint.
func (ep *Endpoint) Receive(ctx context.Context) (protocol.Frame, error) {
	select {
	case frame := <-ep.rx:
		return frame, nil
	case <-ep.closed:
		return protocol.Frame{}, ErrClosed
	case <-ctx.Done():
		return protocol.Frame{}, ctx.Err()
	}
}

// Close detaches the endpoint. Pending receives return ErrClosed.
func (ep *Endpoint) Close() error {
	ep.closeOnce.Do(func() {
		ep.segment.detach(ep)
		close(ep.closed)
	})
	return nil
}
