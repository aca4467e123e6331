//go:build linux

// Package socketcan implements a CAN bus over a Linux SocketCAN interface (e.g: can0, or vcan0
// for bench development without hardware).
package socketcan

import (
	"context"
	"net"
	"sync"

	"github.com/pkg/errors"
	"go.einride.tech/can"
	"go.einride.tech/can/pkg/socketcan"
	"go.viam.com/utils"

	"go.viam.com/ecubench/canbus"
	"go.viam.com/ecubench/logging"
	"go.viam.com/ecubench/protocol"
)

const rxQueueDepth = 256

// Bus is a canbus.Bus over SocketCAN.
type Bus struct {
	conn   net.Conn
	rx     *socketcan.Receiver
	tx     *socketcan.Transmitter
	logger logging.Logger

	frames    chan protocol.Frame
	done      chan struct{}
	closeOnce sync.Once
	readers   sync.WaitGroup
}

var _ canbus.Bus = (*Bus)(nil)

// Open dials the named interface.
func Open(ctx context.Context, iface string, logger logging.Logger) (*Bus, error) {
	conn, err := socketcan.DialContext(ctx, "can", iface)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot open socketcan interface %s", iface)
	}
	b := &Bus{
		conn:   conn,
		rx:     socketcan.NewReceiver(conn),
		tx:     socketcan.NewTransmitter(conn),
		logger: logger,
		frames: make(chan protocol.Frame, rxQueueDepth),
		done:   make(chan struct{}),
	}
	b.readers.Add(1)
	utils.ManagedGo(b.readLoop, b.readers.Done)
	return b, nil
}

func (b *Bus) readLoop() {
	for b.rx.Receive() {
		if b.rx.HasErrorFrame() {
			b.logger.Warnw("socketcan error frame", "frame", b.rx.ErrorFrame())
			continue
		}
		select {
		case b.frames <- fromCAN(b.rx.Frame()):
		case <-b.done:
			return
		default:
			b.logger.Warn("socketcan receive queue overrun, dropping frame")
		}
	}
	select {
	case <-b.done:
	default:
		if err := b.rx.Err(); err != nil {
			b.logger.Errorw("socketcan receive failed", "error", err)
		}
		b.closeOnce.Do(func() { close(b.done) })
	}
}

// Receive returns the next frame read from the interface.
func (b *Bus) Receive(ctx context.Context) (protocol.Frame, error) {
	select {
	case f := <-b.frames:
		return f, nil
	case <-b.done:
		return protocol.Frame{}, canbus.ErrClosed
	case <-ctx.Done():
		return protocol.Frame{}, ctx.Err()
	}
}

// Send transmits a frame on the interface.
func (b *Bus) Send(ctx context.Context, frame protocol.Frame) error {
	select {
	case <-b.done:
		return canbus.ErrClosed
	default:
	}
	if err := frame.Validate(); err != nil {
		return err
	}
	return b.tx.TransmitFrame(ctx, toCAN(frame))
}

// Close closes the socket and waits for the reader to exit.
func (b *Bus) Close() error {
	b.closeOnce.Do(func() { close(b.done) })
	err := b.conn.Close()
	b.readers.Wait()
	return err
}

func toCAN(f protocol.Frame) can.Frame {
	return can.Frame{
		ID:         f.ID,
		Length:     f.Len,
		Data:       can.Data(f.Data),
		IsExtended: f.Extended,
	}
}

func fromCAN(f can.Frame) protocol.Frame {
	return protocol.Frame{
		ID:       f.ID,
		Len:      f.Length,
		Data:     [protocol.FrameSize]byte(f.Data),
		Extended: f.IsExtended,
	}
}
