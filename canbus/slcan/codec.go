package slcan

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"go.viam.com/ecubench/protocol"
)

// bitrateCodes maps nominal bitrates to the Lawicel `S<n>` setup command digit.
var bitrateCodes = map[int]byte{
	10000:   '0',
	20000:   '1',
	50000:   '2',
	100000:  '3',
	125000:  '4',
	250000:  '5',
	500000:  '6',
	800000:  '7',
	1000000: '8',
}

// BitrateCommand returns the setup command selecting the given bitrate.
func BitrateCommand(bitrate int) (string, error) {
	code, ok := bitrateCodes[bitrate]
	if !ok {
		return "", errors.Errorf("unsupported slcan bitrate %d", bitrate)
	}
	return "S" + string(code) + "\r", nil
}

// Encode renders a frame as a Lawicel transmit command, terminator included.
func Encode(f protocol.Frame) (string, error) {
	if err := f.Validate(); err != nil {
		return "", err
	}
	var sb strings.Builder
	if f.Extended {
		fmt.Fprintf(&sb, "T%08X", f.ID)
	} else {
		fmt.Fprintf(&sb, "t%03X", f.ID)
	}
	fmt.Fprintf(&sb, "%d", f.Len)
	for _, b := range f.Payload() {
		fmt.Fprintf(&sb, "%02X", b)
	}
	sb.WriteByte('\r')
	return sb.String(), nil
}

// Decode parses one received line (without terminator) into a frame.
func Decode(line string) (protocol.Frame, error) {
	if line == "" {
		return protocol.Frame{}, errors.New("empty slcan line")
	}
	var f protocol.Frame
	var idLen int
	switch line[0] {
	case 'T':
		f.Extended = true
		idLen = 8
	case 't':
		idLen = 3
	default:
		return protocol.Frame{}, errors.Errorf("not a data frame: %q", line)
	}
	if len(line) < 1+idLen+1 {
		return protocol.Frame{}, errors.Errorf("truncated slcan frame: %q", line)
	}
	id, err := strconv.ParseUint(line[1:1+idLen], 16, 32)
	if err != nil {
		return protocol.Frame{}, errors.Wrapf(err, "bad slcan id in %q", line)
	}
	f.ID = uint32(id)

	dlc := line[1+idLen]
	if dlc < '0' || dlc > '8' {
		return protocol.Frame{}, errors.Errorf("bad slcan length %q", dlc)
	}
	f.Len = dlc - '0'

	data := line[2+idLen:]
	// Some adapters append a 4 digit timestamp after the payload.
	if len(data) < int(f.Len)*2 {
		return protocol.Frame{}, errors.Errorf("slcan payload too short: %q", line)
	}
	for i := 0; i < int(f.Len); i++ {
		b, err := strconv.ParseUint(data[2*i:2*i+2], 16, 8)
		if err != nil {
			return protocol.Frame{}, errors.Wrapf(err, "bad slcan payload in %q", line)
		}
		f.Data[i] = byte(b)
	}
	return f, f.Validate()
}
