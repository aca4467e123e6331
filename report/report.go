// Package report renders run verdicts for the bench operator.
package report

import (
	"fmt"
	"io"

	units "github.com/docker/go-units"
	"github.com/fatih/color"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/montanaflynn/stats"

	"go.viam.com/ecubench/verify"
)

// LineSummary condenses the cycles of one toggle test.
type LineSummary struct {
	Kind         verify.LineKind
	Line         int
	Name         string
	CyclesPassed int
	Cycles       int
	// Voltages sampled over the cycles that could be sampled.
	MinVoltage  float64
	MeanVoltage float64
	MaxVoltage  float64
	Pass        bool
}

// Summarize returns one summary per toggle test of the verdict, in run order.
func Summarize(v verify.Verdict) []LineSummary {
	out := make([]LineSummary, 0, len(v.Results))
	for _, r := range v.Results {
		s := LineSummary{Kind: r.Kind, Line: r.Line, Name: r.Name, Cycles: len(r.Cycles), Pass: r.Pass}
		var volts stats.Float64Data
		for _, c := range r.Cycles {
			if c.Pass {
				s.CyclesPassed++
			}
			if c.Err == nil {
				volts = append(volts, c.Voltage)
			}
		}
		if len(volts) != 0 {
			// Errors are only returned for empty input.
			s.MinVoltage, _ = volts.Min()
			s.MeanVoltage, _ = volts.Mean()
			s.MaxVoltage, _ = volts.Max()
		}
		out = append(out, s)
	}
	return out
}

// Table renders the per-line summary. With failedOnly, passing lines are left out.
func Table(v verify.Verdict, failedOnly bool) string {
	t := table.NewWriter()
	t.AppendHeader(table.Row{"#", "Kind", "Line", "Name", "Cycles", "Min V", "Mean V", "Max V", "Result"})
	for i, s := range Summarize(v) {
		if failedOnly && s.Pass {
			continue
		}
		result := "ok"
		if !s.Pass {
			result = "FAIL"
		}
		t.AppendRow(table.Row{
			i + 1, s.Kind, s.Line, s.Name,
			fmt.Sprintf("%d/%d", s.CyclesPassed, s.Cycles),
			fmt.Sprintf("%1.3f", s.MinVoltage),
			fmt.Sprintf("%1.3f", s.MeanVoltage),
			fmt.Sprintf("%1.3f", s.MaxVoltage),
			result,
		})
	}
	return t.Render()
}

var (
	good = color.New(color.FgGreen, color.Bold)
	bad  = color.New(color.FgRed, color.Bold)
)

// Banner writes the verdict headline: which board ran, how long it took, and whether it passed.
func Banner(w io.Writer, v verify.Verdict) error {
	board := "unknown board"
	if v.Board != nil {
		board = fmt.Sprintf("%s rev.%s", v.Board.Board.Name, v.Board.RevisionLetter())
	}
	if _, err := fmt.Fprintf(w, "run #%d (%s) %s, took %s\n", v.Run, v.ID, board, units.HumanDuration(v.Elapsed)); err != nil {
		return err
	}
	for _, check := range []struct {
		name string
		pass bool
	}{
		{"outputs", v.OutputsPass},
		{"inputs", v.InputsPass},
		{"dc", v.DCPass},
		{"can", v.CANPass},
		{"counters", v.CountersPass},
	} {
		mark := good
		status := "ok"
		if !check.pass {
			mark, status = bad, "FAILED"
		}
		if _, err := mark.Fprintf(w, "  %-9s %s\n", check.name, status); err != nil {
			return err
		}
	}
	if v.Pass {
		_, err := good.Fprintln(w, "ALL GOOD")
		return err
	}
	_, err := bad.Fprintln(w, "SOMETHING BAD SEE ABOVE")
	return err
}

// Write writes the table of failed lines, if any, then the banner.
func Write(w io.Writer, v verify.Verdict) error {
	if len(v.Failed()) != 0 {
		if _, err := fmt.Fprintln(w, Table(v, true)); err != nil {
			return err
		}
	}
	return Banner(w, v)
}
