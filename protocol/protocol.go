// Package protocol defines the CAN bench-test protocol spoken between the rig and the ECU under
// test: packet identifiers, the IO control subcommands, and the fixed payload layouts of the
// frames the rig sends and receives.
package protocol

import (
	"fmt"

	"github.com/pkg/errors"
)

// FrameSize is the payload size of a classic CAN frame.
const FrameSize = 8

// Header is the preamble byte that identifies a frame as coming from (or addressed to) the bench.
const Header byte = 0x66

// BaseID is the first extended identifier of the bench-test packet range.
const BaseID uint32 = 0x770000

// PacketID is an extended CAN identifier of the bench-test protocol.
type PacketID uint32

// The bench-test packet identifiers.
const (
	EventCounters  = PacketID(BaseID + 0)
	RawAnalog1     = PacketID(BaseID + 1)
	BoardStatus    = PacketID(BaseID + 2)
	RawAnalog2     = PacketID(BaseID + 3)
	IOControl      = PacketID(BaseID + 4)
	IOMetaInfo     = PacketID(BaseID + 5)
	ButtonCounters = PacketID(BaseID + 6)
)

func (id PacketID) String() string {
	switch id {
	case EventCounters:
		return "EVENT_COUNTERS"
	case RawAnalog1:
		return "RAW_ANALOG_1"
	case BoardStatus:
		return "BOARD_STATUS"
	case RawAnalog2:
		return "RAW_ANALOG_2"
	case IOControl:
		return "IO_CONTROL"
	case IOMetaInfo:
		return "IO_META_INFO"
	case ButtonCounters:
		return "BUTTON_COUNTERS"
	}
	return fmt.Sprintf("0x%x", uint32(id))
}

// IOCommand is the second payload byte of an IOControl frame.
type IOCommand byte

// IO control subcommands.
const (
	GetCount IOCommand = iota
	OutputSet
	OutputClear
	SetEngineType
	StartPinTest
	EndPinTest
	ExecuteBenchTest
	DCOutput
	QueryPinState
)

// Kind classifies an inbound frame by what the verification engine does with it.
type Kind int

// Inbound frame kinds.
const (
	KindUnknown Kind = iota
	KindIdentity
	KindMetaInfo
	KindAnalogA
	KindAnalogB
	KindEvents
	KindButtons
)

// AnalogBlockSize is the number of channels carried by one raw analog frame.
const AnalogBlockSize = FrameSize

// Classify maps a frame identifier to the inbound kind the engine handles. Frames outside the
// bench range, and bench frames only the rig sends, classify as KindUnknown.
func Classify(id uint32) Kind {
	switch PacketID(id) {
	case BoardStatus:
		return KindIdentity
	case IOMetaInfo:
		return KindMetaInfo
	case RawAnalog1:
		return KindAnalogA
	case RawAnalog2:
		return KindAnalogB
	case EventCounters:
		return KindEvents
	case ButtonCounters:
		return KindButtons
	default:
		return KindUnknown
	}
}

// AnalogOffset returns the first channel index carried by an analog frame of the given kind.
func AnalogOffset(kind Kind) (int, error) {
	switch kind {
	case KindAnalogA:
		return 0, nil
	case KindAnalogB:
		return AnalogBlockSize, nil
	default:
		return 0, errors.Errorf("frame kind %d carries no analog block", kind)
	}
}
