package protocol

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

// Frame is a classic CAN frame as it crosses the bench bus.
type Frame struct {
	ID       uint32
	Len      uint8
	Data     [FrameSize]byte
	Extended bool
}

// NewFrame builds an extended frame for the given packet id. Payloads longer than FrameSize are
// rejected.
func NewFrame(id PacketID, payload ...byte) (Frame, error) {
	if len(payload) > FrameSize {
		return Frame{}, errors.Errorf("payload of %d bytes exceeds frame size %d", len(payload), FrameSize)
	}
	f := Frame{ID: uint32(id), Len: uint8(len(payload)), Extended: true}
	copy(f.Data[:], payload)
	return f, nil
}

// Kind classifies the frame.
func (f Frame) Kind() Kind {
	return Classify(f.ID)
}

// Payload returns the valid bytes of the frame.
func (f Frame) Payload() []byte {
	n := int(f.Len)
	if n > FrameSize {
		n = FrameSize
	}
	return f.Data[:n]
}

// Validate checks the identifier width and length.
func (f Frame) Validate() error {
	if f.Len > FrameSize {
		return errors.Errorf("frame length %d exceeds %d", f.Len, FrameSize)
	}
	if f.Extended && f.ID > 0x1FFFFFFF {
		return errors.Errorf("extended id 0x%x exceeds 29 bits", f.ID)
	}
	if !f.Extended && f.ID > 0x7FF {
		return errors.Errorf("standard id 0x%x exceeds 11 bits", f.ID)
	}
	return nil
}

func (f Frame) String() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "ID=%x/l=%x", f.ID, f.Len)
	for _, b := range f.Data {
		fmt.Fprintf(&sb, " %x", b)
	}
	return sb.String()
}
