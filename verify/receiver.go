package verify

import (
	"context"

	"github.com/pkg/errors"

	"go.viam.com/ecubench/canbus"
	"go.viam.com/ecubench/logging"
	"go.viam.com/ecubench/protocol"
)

// Receiver consumes frames from the bus and folds them into a RunContext.
type Receiver struct {
	rc     *RunContext
	sink   canbus.Sender
	logger logging.Logger

	// DisplayCANReceive logs every processed frame.
	DisplayCANReceive bool
}

// NewReceiver returns a receiver updating rc. Corrective commands, such as the engine
// configuration request, are sent on sink.
func NewReceiver(rc *RunContext, sink canbus.Sender, logger logging.Logger) *Receiver {
	return &Receiver{rc: rc, sink: sink, logger: logger}
}

// Run handles frames from bus until ctx is done or the bus closes.
func (r *Receiver) Run(ctx context.Context, bus canbus.Receiver) error {
	for {
		f, err := bus.Receive(ctx)
		if err != nil {
			if errors.Is(err, canbus.ErrClosed) || ctx.Err() != nil {
				return nil
			}
			return errors.Wrap(err, "bus receive failed")
		}
		r.Handle(ctx, f)
	}
}

// Handle dispatches one frame by its identifier. Frames the engine does not consume are ignored.
func (r *Receiver) Handle(ctx context.Context, f protocol.Frame) {
	kind := f.Kind()
	if kind == protocol.KindUnknown {
		return
	}
	if r.DisplayCANReceive {
		r.logger.Infof("Processing %s ID=%x/l=%x % x", protocol.PacketID(f.ID), f.ID, f.Len, f.Data)
	}
	switch kind {
	case protocol.KindIdentity:
		r.onIdentityFrame(ctx, f.Data)
	case protocol.KindAnalogA, protocol.KindAnalogB:
		offset, err := protocol.AnalogOffset(kind)
		if err != nil {
			r.logger.Debugw("unexpected analog frame", "error", err)
			return
		}
		r.onAnalogFrame(f.Payload(), offset)
	case protocol.KindEvents:
		r.rc.Counters().ObserveEvents(f.Payload())
	case protocol.KindButtons:
		r.rc.Counters().ObserveButtons(f.Payload())
	case protocol.KindMetaInfo:
		r.onMetaInfoFrame(f.Data)
	}
}

func (r *Receiver) onMetaInfoFrame(data [protocol.FrameSize]byte) {
	inv, err := protocol.DecodeInventory(data)
	if err != nil {
		r.logger.Debugw("ignoring IO meta info", "error", err)
		return
	}
	r.rc.inventory.Store(&inv)
	if r.DisplayCANReceive {
		r.logger.Infof("CAN ECU says: total=%d outputs of which low side=%d also %d DC",
			inv.Outputs, inv.LowSide, inv.DCOutputs)
	}
}
