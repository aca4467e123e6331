package catalog

import (
	"testing"

	"go.viam.com/test"
)

func TestLookup(t *testing.T) {
	c, err := New(
		BoardProfile{Name: "alpha", DesiredEngineConfig: NoPreference, IdentityCodes: []uint16{10, 20}},
		BoardProfile{Name: "beta", DesiredEngineConfig: NoPreference, IdentityCodes: []uint16{30, 20, 40}},
	)
	test.That(t, err, test.ShouldBeNil)

	p, rev, ok := c.Lookup(20)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, p.Name, test.ShouldEqual, "alpha")
	test.That(t, rev, test.ShouldEqual, 1)
	test.That(t, RevisionLetter(rev), test.ShouldEqual, "B")

	p, rev, ok = c.Lookup(40)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, p.Name, test.ShouldEqual, "beta")
	test.That(t, rev, test.ShouldEqual, 2)

	_, _, ok = c.Lookup(0)
	test.That(t, ok, test.ShouldBeFalse)

	p, rev, ok = c.Lookup(99)
	test.That(t, ok, test.ShouldBeFalse)
	test.That(t, p, test.ShouldBeNil)
	test.That(t, rev, test.ShouldEqual, -1)
}

func TestRevisionLetter(t *testing.T) {
	test.That(t, RevisionLetter(0), test.ShouldEqual, "A")
	test.That(t, RevisionLetter(25), test.ShouldEqual, "Z")
	test.That(t, RevisionLetter(26), test.ShouldEqual, "?")
	test.That(t, RevisionLetter(-1), test.ShouldEqual, "?")
}

func TestValidate(t *testing.T) {
	_, err := New(BoardProfile{Name: "x", DesiredEngineConfig: NoPreference})
	test.That(t, err, test.ShouldNotBeNil)

	_, err = New(BoardProfile{Name: "x", IdentityCodes: []uint16{1}, DesiredEngineConfig: 300})
	test.That(t, err, test.ShouldNotBeNil)

	_, err = New(BoardProfile{
		Name: "x", IdentityCodes: []uint16{1}, DesiredEngineConfig: NoPreference,
		Channels: []ChannelSpec{{Name: "BATT", Multiplier: 1, AcceptMin: 15, AcceptMax: 9}},
	})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "BATT")

	_, err = New(BoardProfile{Name: "x", IdentityCodes: []uint16{10, 0}, DesiredEngineConfig: NoPreference})
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "identity_codes.1")

	// Unused channels are never range checked.
	_, err = New(BoardProfile{
		Name: "x", IdentityCodes: []uint16{1}, DesiredEngineConfig: NoPreference,
		Channels: []ChannelSpec{{AcceptMin: 15, AcceptMax: 9}},
	})
	test.That(t, err, test.ShouldBeNil)
}

func TestChannel(t *testing.T) {
	p := &BoardProfile{Channels: []ChannelSpec{{Name: "TPS1_1", AcceptMin: 1, AcceptMax: 2}, {}}}
	spec, ok := p.Channel(0)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, spec.Accepts(1), test.ShouldBeTrue)
	test.That(t, spec.Accepts(2), test.ShouldBeTrue)
	test.That(t, spec.Accepts(2.0001), test.ShouldBeFalse)

	_, ok = p.Channel(1)
	test.That(t, ok, test.ShouldBeFalse)
	_, ok = p.Channel(8)
	test.That(t, ok, test.ShouldBeFalse)

	test.That(t, p.OutputName(2), test.ShouldEqual, "3")
	p.OutputNames = []string{"INJ1"}
	test.That(t, p.OutputName(0), test.ShouldEqual, "INJ1")
}

func TestDefault(t *testing.T) {
	c := Default()
	test.That(t, c.Len(), test.ShouldEqual, 5)
	names := []string{}
	for _, p := range c.Profiles() {
		names = append(names, p.Name)
		test.That(t, len(p.Channels), test.ShouldEqual, 8)
		spec, ok := p.Channel(7)
		test.That(t, ok, test.ShouldBeTrue)
		test.That(t, spec.Name, test.ShouldEqual, "BATT")
		test.That(t, spec.AcceptMin, test.ShouldEqual, 9.0)
		test.That(t, spec.AcceptMax, test.ShouldEqual, 15.0)
	}
	test.That(t, names, test.ShouldResemble, []string{"Hellen-Honda125K", "Proteus", "2chan", "4chan", "154HYUNDAI"})

	p, rev, ok := c.Lookup(BoardIDProteusH7)
	test.That(t, ok, test.ShouldBeTrue)
	test.That(t, p.Name, test.ShouldEqual, "Proteus")
	test.That(t, rev, test.ShouldEqual, 2)
	test.That(t, p.DesiredEngineConfig, test.ShouldEqual, EngineProteusStimQC)
	test.That(t, p.Channels[7].Multiplier, test.ShouldEqual, 9.2)

	hyundai := c.Profiles()[4]
	test.That(t, hyundai.Channels[1].Name, test.ShouldEqual, "TPS1_2")
	test.That(t, hyundai.Channels[4].Name, test.ShouldEqual, "MAP")
}

func TestTolerances(t *testing.T) {
	test.That(t, IATVoltage(HellenPullUp), test.ShouldAlmostEqual, 0.8772, 0.0001)
	test.That(t, CLTVoltage(Alpha2chPullUp), test.ShouldAlmostEqual, 2.1277, 0.0001)
	test.That(t, MAPMPX6400Voltage, test.ShouldAlmostEqual, 1.1841, 0.0001)

	spec := Around("TPS1_1", 1, 0.5)
	test.That(t, spec.AcceptMin, test.ShouldAlmostEqual, 0.4625)
	test.That(t, spec.AcceptMax, test.ShouldAlmostEqual, 0.5375)
}
