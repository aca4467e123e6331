package catalog

const (
	// AnalogLow and AnalogHigh are the default 7.5% acceptance band.
	AnalogLow  = 1.0 - 0.075
	AnalogHigh = 1.0 + 0.075
	// AnalogHighLowVoltage widens the upper bound to 12% for low voltage readings.
	AnalogHighLowVoltage = 1.0 + 0.12

	// Pull-up resistors on the sensor inputs, ohms.
	HellenPullUp   = 4700
	Alpha2chPullUp = 2700
	ProteusPullUp  = 2700

	// SupplyVoltage is the sensor reference voltage.
	SupplyVoltage = 5.0
)

// IATVoltage is the voltage the bench's 1k IAT load reads through pull-up r.
func IATVoltage(r float64) float64 {
	return SupplyVoltage * 1000 / (1000 + r)
}

// CLTVoltage is the voltage the bench's 2k CLT load reads through pull-up r.
func CLTVoltage(r float64) float64 {
	return SupplyVoltage * 2000 / (2000 + r)
}

// MAPMPX6400Voltage is what an MPX6400 MAP sensor reads at 101.3 kPa.
const MAPMPX6400Voltage = SupplyVoltage * (0.002421*101.3 - 0.00842)

// Around returns a channel accepting nominal within the default band.
func Around(name string, multiplier, nominal float64) ChannelSpec {
	return Within(name, multiplier, nominal, AnalogLow, AnalogHigh)
}

// Within returns a channel accepting [nominal*low, nominal*high].
func Within(name string, multiplier, nominal, low, high float64) ChannelSpec {
	return ChannelSpec{Name: name, Multiplier: multiplier, AcceptMin: nominal * low, AcceptMax: nominal * high}
}
