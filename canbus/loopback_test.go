package canbus

import (
	"context"
	"testing"
	"time"

	"go.viam.com/test"

	"go.viam.com/ecubench/protocol"
)

func TestLoopback(t *testing.T) {
	segment := NewLoopback()
	bench := segment.Open()
	ecu := segment.Open()
	defer bench.Close()
	defer ecu.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	sent := protocol.PinState(3, true)
	test.That(t, bench.Send(ctx, sent), test.ShouldBeNil)

	got, err := ecu.Receive(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got, test.ShouldResemble, sent)

	// The sender never sees its own frame.
	shortCtx, shortCancel := context.WithTimeout(ctx, 20*time.Millisecond)
	defer shortCancel()
	_, err = bench.Receive(shortCtx)
	test.That(t, err, test.ShouldResemble, context.DeadlineExceeded)
}

func TestLoopbackClose(t *testing.T) {
	segment := NewLoopback()
	bench := segment.Open()
	ecu := segment.Open()

	test.That(t, ecu.Close(), test.ShouldBeNil)
	test.That(t, ecu.Close(), test.ShouldBeNil)

	_, err := ecu.Receive(context.Background())
	test.That(t, err, test.ShouldEqual, ErrClosed)

	// Sending to a segment whose only peer left is not an error.
	test.That(t, bench.Send(context.Background(), protocol.OutputCountRequest()), test.ShouldBeNil)
	test.That(t, bench.Close(), test.ShouldBeNil)
	test.That(t, bench.Send(context.Background(), protocol.OutputCountRequest()), test.ShouldEqual, ErrClosed)
}

func TestLoopbackRejectsInvalidFrame(t *testing.T) {
	segment := NewLoopback()
	bench := segment.Open()
	defer bench.Close()

	err := bench.Send(context.Background(), protocol.Frame{ID: 0x800, Len: 1})
	test.That(t, err, test.ShouldNotBeNil)
}
