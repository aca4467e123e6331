package verify

import (
	"go.viam.com/ecubench/catalog"
)

// RawToVolts converts an 8-bit analog report to volts before the channel multiplier.
func RawToVolts(raw byte) float64 {
	return float64(raw) * catalog.SupplyVoltage / 255
}

// onAnalogFrame range-checks the channels carried by one analog block. Nothing is checked until
// the board is resolved. Every out-of-range channel is reported.
func (r *Receiver) onAnalogFrame(data []byte, offset int) {
	res := r.rc.Resolved()
	if res == nil {
		return
	}
	r.rc.analogReceived.Store(true)

	for i, raw := range data {
		ch := offset + i
		spec, ok := res.Board.Channel(ch)
		if !ok {
			continue
		}
		voltage := RawToVolts(raw) * spec.Multiplier
		if spec.Accepts(voltage) {
			continue
		}
		r.rc.analogFailures.Inc()
		r.rc.Fail()
		r.logger.Errorf("* BAD channel %d (%s): voltage %f (raw %d) not in range (%f..%f)",
			ch, spec.Name, voltage, raw, spec.AcceptMin, spec.AcceptMax)
	}
}
