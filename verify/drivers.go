package verify

import (
	"context"

	"go.viam.com/ecubench/canbus"
	"go.viam.com/ecubench/protocol"
	"go.viam.com/ecubench/rig"
)

// A Driver puts a line under test into a commanded state.
type Driver interface {
	Drive(ctx context.Context, state bool) error
}

// OutputLine drives an ECU digital output over CAN.
type OutputLine struct {
	Sink canbus.Sender
	Line uint8
}

// Drive sets or clears the output.
func (d OutputLine) Drive(ctx context.Context, state bool) error {
	return d.Sink.Send(ctx, protocol.PinState(d.Line, state))
}

// DCPair drives one side of an ECU DC half-bridge pair over CAN. Reverse flips the commanded
// direction so either side of the pair can be asserted.
type DCPair struct {
	Sink    canbus.Sender
	Index   uint8
	Reverse bool
}

// Drive commands the pair direction.
func (d DCPair) Drive(ctx context.Context, state bool) error {
	return d.Sink.Send(ctx, protocol.DCState(d.Index, state != d.Reverse))
}

// StimulusLine drives a bench stimulus into an ECU digital input.
type StimulusLine struct {
	Stimulator rig.Stimulator
	Line       int
}

// Drive sets the stimulus level.
func (d StimulusLine) Drive(ctx context.Context, state bool) error {
	return d.Stimulator.Stimulate(ctx, d.Line, state)
}
