package report

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/fatih/color"
	"github.com/google/uuid"
	"go.viam.com/test"

	"go.viam.com/ecubench/catalog"
	"go.viam.com/ecubench/verify"
)

func init() {
	color.NoColor = true
}

func sampleVerdict(pass bool) verify.Verdict {
	cat := catalog.Default()
	board, rev, _ := cat.Lookup(catalog.BoardIDProteusF7)
	stuck := verify.ToggleResult{
		Kind: verify.DigitalOutput, Line: 1, Name: "2",
		Cycles: []verify.CycleResult{
			{Commanded: true, Voltage: 0.1},
			{Commanded: false, Voltage: 0.1, Pass: true},
			{Commanded: true, Err: errors.New("adc gone")},
			{Commanded: false, Voltage: 0.4, Pass: true},
		},
	}
	ok := verify.ToggleResult{
		Kind: verify.DCOutput, Line: 0, Name: "dc1.A", Pass: true,
		Cycles: []verify.CycleResult{
			{Commanded: true, High: true, Voltage: 1, Pass: true},
			{Commanded: false, Voltage: 0.2, Pass: true},
		},
	}
	v := verify.Verdict{
		Run:     3,
		ID:      uuid.MustParse("b5f2fdf5-0a79-4d6c-9b3c-7a1e0bb0cd3e"),
		Elapsed: 90 * time.Second,
		Board:   &verify.Resolution{Board: board, Revision: rev},
		Results: []verify.ToggleResult{stuck, ok},
	}
	v.InputsPass, v.DCPass, v.CANPass, v.CountersPass = true, true, true, true
	if pass {
		v.Results = v.Results[1:]
		v.OutputsPass, v.Pass = true, true
	}
	return v
}

func TestSummarize(t *testing.T) {
	sums := Summarize(sampleVerdict(false))
	test.That(t, sums, test.ShouldHaveLength, 2)

	test.That(t, sums[0].Name, test.ShouldEqual, "2")
	test.That(t, sums[0].CyclesPassed, test.ShouldEqual, 2)
	test.That(t, sums[0].Cycles, test.ShouldEqual, 4)
	test.That(t, sums[0].MinVoltage, test.ShouldAlmostEqual, 0.1)
	test.That(t, sums[0].MeanVoltage, test.ShouldAlmostEqual, 0.2)
	test.That(t, sums[0].MaxVoltage, test.ShouldAlmostEqual, 0.4)
	test.That(t, sums[0].Pass, test.ShouldBeFalse)

	test.That(t, sums[1].MeanVoltage, test.ShouldAlmostEqual, 0.6)
	test.That(t, sums[1].Pass, test.ShouldBeTrue)

	test.That(t, Summarize(verify.Verdict{}), test.ShouldBeEmpty)
}

func TestTable(t *testing.T) {
	v := sampleVerdict(false)
	all := Table(v, false)
	test.That(t, all, test.ShouldContainSubstring, "dc1.A")
	test.That(t, all, test.ShouldContainSubstring, "2/4")
	test.That(t, all, test.ShouldContainSubstring, "FAIL")

	failed := Table(v, true)
	test.That(t, failed, test.ShouldNotContainSubstring, "dc1.A")
	test.That(t, failed, test.ShouldContainSubstring, "output")
}

func TestBanner(t *testing.T) {
	var buf bytes.Buffer
	test.That(t, Write(&buf, sampleVerdict(false)), test.ShouldBeNil)
	out := buf.String()
	test.That(t, out, test.ShouldContainSubstring, "run #3 (b5f2fdf5-0a79-4d6c-9b3c-7a1e0bb0cd3e) Proteus rev.B")
	test.That(t, out, test.ShouldContainSubstring, "About a minute")
	test.That(t, out, test.ShouldContainSubstring, "outputs   FAILED")
	test.That(t, out, test.ShouldContainSubstring, "SOMETHING BAD SEE ABOVE")
	test.That(t, out, test.ShouldContainSubstring, "FAIL")

	buf.Reset()
	test.That(t, Write(&buf, sampleVerdict(true)), test.ShouldBeNil)
	out = buf.String()
	test.That(t, out, test.ShouldContainSubstring, "ALL GOOD")
	test.That(t, out, test.ShouldNotContainSubstring, "FAILED")
	test.That(t, out, test.ShouldNotContainSubstring, "dc1.A")

	buf.Reset()
	test.That(t, Banner(&buf, verify.Verdict{}), test.ShouldBeNil)
	test.That(t, buf.String(), test.ShouldContainSubstring, "unknown board")
}
