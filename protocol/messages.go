package protocol

import "github.com/pkg/errors"

// StatusReport is the decoded payload of a BoardStatus frame.
type StatusReport struct {
	BoardID           uint16
	SecondsSinceReset uint32
	EngineType        uint16
}

// DecodeStatus decodes a BoardStatus payload: board id (bytes 0-1), seconds since reset (bytes
// 2-4) and engine type (bytes 5-6), all big endian.
func DecodeStatus(data [FrameSize]byte) StatusReport {
	return StatusReport{
		BoardID:           uint16(data[0])<<8 | uint16(data[1]),
		SecondsSinceReset: uint32(data[2])<<16 | uint32(data[3])<<8 | uint32(data[4]),
		EngineType:        uint16(data[5])<<8 | uint16(data[6]),
	}
}

// Encode is the inverse of DecodeStatus. Seconds beyond 24 bits are truncated.
func (r StatusReport) Encode() Frame {
	f, _ := NewFrame(BoardStatus,
		byte(r.BoardID>>8), byte(r.BoardID),
		byte(r.SecondsSinceReset>>16), byte(r.SecondsSinceReset>>8), byte(r.SecondsSinceReset),
		byte(r.EngineType>>8), byte(r.EngineType),
		0)
	return f
}

// Inventory is the decoded payload of an IOMetaInfo frame: how many outputs the ECU exposes.
type Inventory struct {
	Outputs   int
	LowSide   int
	DCOutputs int
}

// DecodeInventory decodes an IOMetaInfo payload. Payloads without the bench header are rejected.
func DecodeInventory(data [FrameSize]byte) (Inventory, error) {
	if data[0] != Header {
		return Inventory{}, errors.Errorf("meta info header 0x%x, expected 0x%x", data[0], Header)
	}
	return Inventory{
		Outputs:   int(data[2]),
		LowSide:   int(data[3]),
		DCOutputs: int(data[4]),
	}, nil
}

// Encode builds the IOMetaInfo frame for the inventory.
func (inv Inventory) Encode() Frame {
	f, _ := NewFrame(IOMetaInfo, Header, 0, byte(inv.Outputs), byte(inv.LowSide), byte(inv.DCOutputs))
	return f
}

// PinState commands a digital output on or off.
func PinState(pin uint8, set bool) Frame {
	cmd := OutputClear
	if set {
		cmd = OutputSet
	}
	f, _ := NewFrame(IOControl, Header, byte(cmd), pin)
	return f
}

// DCState commands a DC output half-bridge pair. `forward` selects which side is driven.
func DCState(index uint8, forward bool) Frame {
	var dir byte
	if forward {
		dir = 1
	}
	f, _ := NewFrame(IOControl, Header, byte(DCOutput), index, dir)
	return f
}

// OutputCountRequest asks the ECU to publish its IOMetaInfo.
func OutputCountRequest() Frame {
	f, _ := NewFrame(IOControl, Header, byte(GetCount))
	return f
}

// EngineTypeRequest asks the ECU to switch to the given engine configuration.
func EngineTypeRequest(engineType uint8) Frame {
	f, _ := NewFrame(IOControl, Header, byte(SetEngineType), engineType)
	return f
}

// Command is a decoded IOControl frame.
type Command struct {
	Op    IOCommand
	Index uint8
	Value uint8
}

// DecodeCommand decodes an IOControl payload sent by a bench.
func DecodeCommand(f Frame) (Command, error) {
	if PacketID(f.ID) != IOControl {
		return Command{}, errors.Errorf("frame %s is not an IO control frame", PacketID(f.ID))
	}
	if f.Len < 2 || f.Data[0] != Header {
		return Command{}, errors.New("IO control frame without bench header")
	}
	return Command{Op: IOCommand(f.Data[1]), Index: f.Data[2], Value: f.Data[3]}, nil
}
