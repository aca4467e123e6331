package sim

import (
	"go.viam.com/ecubench/rig"
)

// bank is the run of ADC channels one kind of line is read back on.
type bank struct {
	base     int
	channels int
}

func newBank(base, lines int) bank {
	return bank{base: base, channels: (lines + rig.LinesPerChannel - 1) / rig.LinesPerChannel}
}

func (b bank) overlaps(other bank) bool {
	return b.base < other.base+other.channels && other.base < b.base+b.channels
}

func (conf *Config) banks(inputLines int) []bank {
	return []bank{
		newBank(conf.OutputChannelBase, conf.Outputs),
		newBank(conf.DCChannelBase, 2*conf.DCOutputs),
		newBank(conf.InputChannelBase, inputLines),
	}
}

// BanksOverlap reports whether two of the output, DC and input proxy banks share an ADC channel
// when inputLines inputs are stimulated.
func (conf *Config) BanksOverlap(inputLines int) bool {
	banks := conf.banks(inputLines)
	for i := range banks {
		for j := i + 1; j < len(banks); j++ {
			if banks[i].overlaps(banks[j]) {
				return true
			}
		}
	}
	return false
}

// LayOutBanks places the output, DC and input banks on consecutive ADC channels from 0.
func (conf *Config) LayOutBanks(inputLines int) {
	banks := conf.banks(inputLines)
	conf.OutputChannelBase = 0
	conf.DCChannelBase = banks[0].channels
	conf.InputChannelBase = banks[0].channels + banks[1].channels
}
