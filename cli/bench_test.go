package cli

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/fatih/color"
	"github.com/urfave/cli/v2"
	"go.viam.com/test"

	"go.viam.com/ecubench/verify"
)

func writeBenchConfig(t *testing.T, extra string) (string, string) {
	t.Helper()
	dir := t.TempDir()
	logFile := filepath.Join(dir, "bench.log")
	contents := fmt.Sprintf(`{
		"bus": {"type": "sim"},
		"run": {"settle": "1ms", "pause": "1ms", "inventory_polls": 500},
		"log": {"level": "info", "file": %q}%s
	}`, logFile, extra)
	path := filepath.Join(dir, "bench.json")
	test.That(t, os.WriteFile(path, []byte(contents), 0o600), test.ShouldBeNil)
	return path, logFile
}

func runApp(t *testing.T, args ...string) (string, error) {
	t.Helper()
	color.NoColor = true
	var out, errOut bytes.Buffer
	app := NewApp(&out, &errOut)
	app.ExitErrHandler = func(*cli.Context, error) {}
	err := app.Run(append([]string{"benchtest"}, args...))
	return out.String(), err
}

func TestSimulatedHealthyBoard(t *testing.T) {
	path, logFile := writeBenchConfig(t, "")
	out, err := runApp(t, "--config", path, "--simulate", "--runs", "2", "--quiet")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, out, test.ShouldContainSubstring, "run #1")
	test.That(t, out, test.ShouldContainSubstring, "run #2")
	test.That(t, out, test.ShouldContainSubstring, "Hellen-Honda125K rev.A")
	test.That(t, out, test.ShouldContainSubstring, "ALL GOOD")
	test.That(t, out, test.ShouldNotContainSubstring, "SOMETHING BAD")

	logs, err := os.ReadFile(logFile)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(logs), test.ShouldContainSubstring, "Board detected: Hellen-Honda125K rev.A")
}

func TestSimulatedUnknownBoard(t *testing.T) {
	path, _ := writeBenchConfig(t, `, "sim": {"board_id": 48879, "outputs": 2, "low_side": 1}`)
	out, err := runApp(t, "--config", path, "--runs", "1", "--quiet")
	test.That(t, err, test.ShouldEqual, errBenchFailed)
	test.That(t, err.(cli.ExitCoder).ExitCode(), test.ShouldEqual, 1)
	test.That(t, out, test.ShouldContainSubstring, "unknown board")
	test.That(t, out, test.ShouldContainSubstring, "SOMETHING BAD SEE ABOVE")
}

func TestMissingConfig(t *testing.T) {
	_, err := runApp(t, "--runs", "1")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "--config")

	_, err = runApp(t, "--config", filepath.Join(t.TempDir(), "nope.json"))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "cannot read config")
}

type fakeSpinner struct {
	texts   []string
	success []any
	fail    []any
}

func (s *fakeSpinner) Stop() error            { return nil }
func (s *fakeSpinner) Success(msg ...any)     { s.success = append(s.success, msg...) }
func (s *fakeSpinner) Fail(msg ...any)        { s.fail = append(s.fail, msg...) }
func (s *fakeSpinner) UpdateText(text string) { s.texts = append(s.texts, text) }

func TestRunProgress(t *testing.T) {
	spinner := &fakeSpinner{}
	var started []string
	rp := newRunProgress(false)
	rp.factory = func(text string) (progressSpinner, error) {
		started = append(started, text)
		return spinner, nil
	}

	result := verify.ToggleResult{Kind: verify.DigitalOutput, Name: "7"}
	rp.Update(verify.Progress{Run: 1, Step: 1, Total: 3, Result: result})
	rp.Update(verify.Progress{Run: 1, Step: 3, Total: 3, Result: result})
	test.That(t, started, test.ShouldResemble, []string{"run #1: 1/3 output 7"})
	test.That(t, spinner.texts, test.ShouldContain, "run #1: 3/3 output 7")

	rp.Done(verify.Verdict{Run: 1, Results: make([]verify.ToggleResult, 3)})
	test.That(t, spinner.fail, test.ShouldResemble, []any{"run #1: 3 lines tested"})

	rp.Update(verify.Progress{Run: 2, Step: 1, Total: 1, Result: result})
	rp.Done(verify.Verdict{Run: 2, Pass: true})
	test.That(t, started, test.ShouldHaveLength, 2)
	test.That(t, spinner.success, test.ShouldResemble, []any{"run #2: 0 lines tested"})

	quiet := newRunProgress(true)
	quiet.factory = func(string) (progressSpinner, error) {
		t.Fatal("quiet progress must not start a spinner")
		return nil, nil
	}
	quiet.Update(verify.Progress{Run: 1, Step: 1, Total: 1})
	quiet.Done(verify.Verdict{})
}

func TestTraceLogsEveryCycle(t *testing.T) {
	path, logFile := writeBenchConfig(t, "")
	_, err := runApp(t, "--config", path, "--simulate", "--runs", "1", "--quiet", "--trace")
	test.That(t, err, test.ShouldBeNil)

	logs, err := os.ReadFile(logFile)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(logs), test.ShouldContainSubstring, "sending line=")
	test.That(t, string(logs), test.ShouldContainSubstring, "sampled line=")
}
