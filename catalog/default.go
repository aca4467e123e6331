package catalog

// Identity codes reported by the ECU boards in byte 0-1 of their status frame.
const (
	BoardIDHonda125A uint16 = 0x0101 + iota
	BoardIDHonda125B
	BoardIDHonda125C
	BoardIDHonda125D
)

const (
	BoardIDProteusF4 uint16 = 0x0201 + iota
	BoardIDProteusF7
	BoardIDProteusH7
)

const (
	BoardIDAlphaX2Chan uint16 = 0x0301 + iota
	BoardIDAlpha2chB
	BoardIDAlpha2chC
	BoardIDAlpha2chD
	BoardIDAlpha2chE
	BoardIDAlpha2chF
	BoardIDAlpha2chG
)

const (
	BoardIDAlpha4chH uint16 = 0x0401 + iota
	BoardIDAlpha4chG
)

const (
	BoardID154HyundaiC uint16 = 0x0501 + iota
	BoardID154HyundaiD
)

// Engine configurations the bench asks boards to switch to.
const (
	EngineProteusStimQC     = 40
	EngineHellen4ChanStimQC = 41
)

// batt is the battery channel every board reports, through a per-board divider.
func batt(multiplier float64) ChannelSpec {
	return ChannelSpec{Name: "BATT", Multiplier: multiplier, AcceptMin: 9.0, AcceptMax: 15.0}
}

func tps() ChannelSpec { return Around("TPS1_1", 1, 0.5) }

// Default returns the built-in catalog of supported boards.
func Default() *Catalog {
	c, err := New(
		BoardProfile{
			Name:                "Hellen-Honda125K",
			DesiredEngineConfig: NoPreference,
			IdentityCodes:       []uint16{BoardIDHonda125A, BoardIDHonda125B, BoardIDHonda125C, BoardIDHonda125D},
			Channels: []ChannelSpec{
				tps(), {}, {}, {},
				Around("MAP", 1, 0.6),
				Around("CLT", 1, CLTVoltage(HellenPullUp)),
				Around("IAT", 1, IATVoltage(HellenPullUp)),
				batt(5.835),
			},
			EventExpected:  []bool{true, false, true, true, false, false, true},
			ButtonExpected: []bool{true, false, false},
		},
		BoardProfile{
			Name:                "Proteus",
			DesiredEngineConfig: EngineProteusStimQC,
			IdentityCodes:       []uint16{BoardIDProteusF4, BoardIDProteusF7, BoardIDProteusH7},
			Channels: []ChannelSpec{
				tps(), {}, {}, {},
				Within("MAP", 1, 0.6, AnalogLow, AnalogHighLowVoltage),
				Around("CLT", 1, CLTVoltage(ProteusPullUp)),
				Around("IAT", 1, IATVoltage(ProteusPullUp)),
				batt(9.2),
			},
			EventExpected:  []bool{true, true, true, true, false, false, true},
			ButtonExpected: []bool{true, false, false},
		},
		BoardProfile{
			Name:                "2chan",
			DesiredEngineConfig: NoPreference,
			IdentityCodes: []uint16{
				BoardIDAlphaX2Chan, BoardIDAlpha2chB, BoardIDAlpha2chC, BoardIDAlpha2chD,
				BoardIDAlpha2chE, BoardIDAlpha2chF, BoardIDAlpha2chG,
			},
			Channels:       alphaChannels(tps(), ChannelSpec{}, ChannelSpec{}, ChannelSpec{}),
			EventExpected:  []bool{true, true, true, true, true, true, true},
			ButtonExpected: []bool{true, true, true},
		},
		BoardProfile{
			Name:                "4chan",
			DesiredEngineConfig: EngineHellen4ChanStimQC,
			IdentityCodes:       []uint16{BoardIDAlpha4chH, BoardIDAlpha4chG},
			Channels:            alphaChannels(tps(), ChannelSpec{}, ChannelSpec{}, ChannelSpec{}),
			EventExpected:       []bool{true, true, true, true, true, true, false},
			ButtonExpected:      []bool{false, false, false},
		},
		BoardProfile{
			Name:                "154HYUNDAI",
			DesiredEngineConfig: NoPreference,
			IdentityCodes:       []uint16{BoardID154HyundaiC, BoardID154HyundaiD},
			Channels: alphaChannels(
				tps(),
				Around("TPS1_2", 1, 0.5),
				Around("PPS1", 1, 0.5),
				Around("PPS2", 1, 0.5),
			),
			EventExpected:  []bool{true, true, true, true, true, true, true},
			ButtonExpected: []bool{true, true, true},
		},
	)
	if err != nil {
		panic(err)
	}
	return c
}

// alphaChannels completes the first four channels with the layout shared by boards using the
// internal MPX6400 MAP sensor and 2.7k pull-ups.
func alphaChannels(first ...ChannelSpec) []ChannelSpec {
	return append(first,
		Around("MAP", 1, MAPMPX6400Voltage),
		Around("CLT", 1, CLTVoltage(Alpha2chPullUp)),
		Around("IAT", 1, IATVoltage(Alpha2chPullUp)),
		batt(5.835),
	)
}
