package slcan

import (
	"strings"

	"github.com/pkg/errors"
	"go.bug.st/serial/enumerator"
)

// AutoPort as the configured port makes Open search for a known adapter.
const AutoPort = "auto"

// Identifier identifies a USB adapter by the vendor who produced it and the product that it is,
// as hexadecimal ids.
type Identifier struct {
	Vendor  string
	Product string
}

// KnownAdapters are the USB serial adapters searched for an AutoPort.
var KnownAdapters = []Identifier{
	{Vendor: "16d0", Product: "117e"}, // CANable
	{Vendor: "0403", Product: "6001"}, // FTDI based CANUSB
}

// listPorts is a variable in case you need to override it during tests.
var listPorts = enumerator.GetDetailedPortsList

// Search returns the path of the first serial port belonging to one of the adapters.
func Search(adapters []Identifier) (string, error) {
	ports, err := listPorts()
	if err != nil {
		return "", errors.Wrap(err, "cannot list serial ports")
	}
	for _, adapter := range adapters {
		for _, p := range ports {
			if p.IsUSB && strings.EqualFold(p.VID, adapter.Vendor) && strings.EqualFold(p.PID, adapter.Product) {
				return p.Name, nil
			}
		}
	}
	return "", errors.New("no slcan adapter found")
}
