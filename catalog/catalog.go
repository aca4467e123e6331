// Package catalog holds the immutable set of ECU board profiles a bench can recognize: which
// identity codes map to which board, the acceptable range of every analog channel and which
// activity counters the board is expected to produce.
package catalog

import (
	"fmt"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"
	"go.viam.com/utils"
)

// NoPreference is the DesiredEngineConfig of a board whose engine configuration is left alone.
const NoPreference = -1

// ChannelSpec describes one analog channel. A channel with an empty Name is unused.
type ChannelSpec struct {
	Name       string  `json:"name"`
	Multiplier float64 `json:"multiplier"`
	AcceptMin  float64 `json:"min"`
	AcceptMax  float64 `json:"max"`
}

// Used reports whether the channel is checked at all.
func (c ChannelSpec) Used() bool {
	return c.Name != ""
}

// Accepts reports whether value lies inside the inclusive acceptance range.
func (c ChannelSpec) Accepts(value float64) bool {
	return value >= c.AcceptMin && value <= c.AcceptMax
}

// BoardProfile is everything the bench knows about one family of ECU boards.
type BoardProfile struct {
	Name string `json:"name"`
	// IdentityCodes are matched in order; the position of the match is the revision index.
	IdentityCodes       []uint16      `json:"identity_codes"`
	DesiredEngineConfig int           `json:"desired_engine_config"`
	Channels            []ChannelSpec `json:"channels"`
	// EventExpected and ButtonExpected are indexed by counter source index. Indexes beyond the
	// slice are not expected.
	EventExpected  []bool   `json:"event_expected"`
	ButtonExpected []bool   `json:"button_expected"`
	OutputNames    []string `json:"output_names,omitempty"`
}

// Channel returns the spec of channel idx, and false when idx is unused or out of range.
func (p *BoardProfile) Channel(idx int) (ChannelSpec, bool) {
	if idx < 0 || idx >= len(p.Channels) || !p.Channels[idx].Used() {
		return ChannelSpec{}, false
	}
	return p.Channels[idx], true
}

// OutputName returns a human name for a digital output line, falling back to its 1-based number.
func (p *BoardProfile) OutputName(line int) string {
	if p != nil && line >= 0 && line < len(p.OutputNames) && p.OutputNames[line] != "" {
		return p.OutputNames[line]
	}
	return fmt.Sprintf("%d", line+1)
}

// Validate ensures the profile is usable.
func (p *BoardProfile) Validate(path string) error {
	if p.Name == "" {
		return utils.NewConfigValidationFieldRequiredError(path, "name")
	}
	if len(p.IdentityCodes) == 0 {
		return utils.NewConfigValidationFieldRequiredError(path, "identity_codes")
	}
	// 0 terminates code lists on the ECU side and is never a board id.
	if idx := lo.IndexOf(p.IdentityCodes, 0); idx >= 0 {
		return utils.NewConfigValidationError(fmt.Sprintf("%s.identity_codes.%d", path, idx),
			errors.New("identity code 0 is reserved"))
	}
	if p.DesiredEngineConfig != NoPreference && (p.DesiredEngineConfig < 0 || p.DesiredEngineConfig > 0xff) {
		return utils.NewConfigValidationError(path,
			errors.Errorf("desired_engine_config %d does not fit in a byte", p.DesiredEngineConfig))
	}
	for idx, c := range p.Channels {
		if c.Used() && c.AcceptMin > c.AcceptMax {
			return utils.NewConfigValidationError(fmt.Sprintf("%s.channels.%d", path, idx),
				errors.Errorf("channel %s has min %v above max %v", c.Name, c.AcceptMin, c.AcceptMax))
		}
	}
	return nil
}

// Catalog is an ordered, read-only list of board profiles.
type Catalog struct {
	profiles []*BoardProfile
}

// New builds a catalog from profiles, preserving their order.
func New(profiles ...BoardProfile) (*Catalog, error) {
	c := &Catalog{}
	for i := range profiles {
		p := profiles[i]
		c.profiles = append(c.profiles, &p)
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// Validate checks every profile. Identity codes claimed by more than one profile are allowed but
// only the first one can ever match.
func (c *Catalog) Validate() error {
	var err error
	for idx, p := range c.profiles {
		err = multierr.Combine(err, p.Validate(fmt.Sprintf("boards.%d", idx)))
	}
	return err
}

// Profiles returns the profiles in catalog order.
func (c *Catalog) Profiles() []*BoardProfile {
	return c.profiles
}

// Len returns the number of profiles.
func (c *Catalog) Len() int {
	return len(c.profiles)
}

// Lookup finds the first profile, in catalog order, claiming code and returns it with the
// revision index of the code within that profile.
func (c *Catalog) Lookup(code uint16) (*BoardProfile, int, bool) {
	if code == 0 {
		return nil, -1, false
	}
	for _, p := range c.profiles {
		if idx := lo.IndexOf(p.IdentityCodes, code); idx >= 0 {
			return p, idx, true
		}
	}
	return nil, -1, false
}

// RevisionLetter renders a revision index as a letter: 0 is A, 1 is B.
func RevisionLetter(idx int) string {
	if idx < 0 || idx > 'Z'-'A' {
		return "?"
	}
	return string(rune('A' + idx))
}
