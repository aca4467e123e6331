package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"go.viam.com/test"
)

type channelReading struct {
	Channel int
	Volts   float64
	raw     byte
}

// assertLogMatches will fuzzy match log lines. Notably, this checks the time format, but ignores
// the exact time. And it expects a match on the filename, but the exact line number can be wrong.
func assertLogMatches(t *testing.T, actual *bytes.Buffer, expected string) {
	t.Helper()

	output, err := actual.ReadString('\n')
	test.That(t, err, test.ShouldBeNil)

	actualTrimmed := strings.TrimSuffix(output, "\n")
	actualParts := strings.Split(actualTrimmed, "\t")
	expectedParts := strings.Split(expected, "\t")
	test.That(t, len(actualParts), test.ShouldEqual, len(expectedParts))
	// Use the length of the first string as a weak verification of checking that the result looks like a date.
	test.That(t, len(actualParts[0]), test.ShouldEqual, len(expectedParts[0]))
	// Log level and logger name.
	test.That(t, actualParts[1], test.ShouldEqual, expectedParts[1])
	test.That(t, actualParts[2], test.ShouldEqual, expectedParts[2])

	// Filename:line_number.
	actualFilename, actualLineNumber, found := strings.Cut(actualParts[3], ":")
	test.That(t, found, test.ShouldBeTrue)
	expectedFilename, _, found := strings.Cut(expectedParts[3], ":")
	test.That(t, found, test.ShouldBeTrue)
	test.That(t, actualFilename, test.ShouldEqual, expectedFilename)
	_, err = strconv.Atoi(actualLineNumber)
	test.That(t, err, test.ShouldBeNil)

	// Log message.
	test.That(t, actualParts[4], test.ShouldEqual, expectedParts[4])
	if len(actualParts) == 5 {
		return
	}

	expectedMap := make(map[string]any)
	err = json.Unmarshal([]byte(expectedParts[5]), &expectedMap)
	test.That(t, err, test.ShouldBeNil)

	actualMap := make(map[string]any)
	err = json.Unmarshal([]byte(actualParts[5]), &actualMap)
	test.That(t, err, test.ShouldBeNil)

	test.That(t, actualMap, test.ShouldResemble, expectedMap)
}

func TestConsoleOutputFormat(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := newImpl("bench", DEBUG, true, NewWriterAppender(notStdout))

	logger.Info("board detected")
	assertLogMatches(t, notStdout,
		`2023-10-30T09:12:09.459Z	INFO	bench	logging/impl_test.go:67	board detected`)

	logger.Infof("line %d %s", 3, "HIGH")
	assertLogMatches(t, notStdout,
		`2023-10-30T09:12:09.459Z	INFO	bench	logging/impl_test.go:71	line 3 HIGH`)

	logger.Errorw("bad channel", "channel", 7, "name", "BATT")
	assertLogMatches(t, notStdout,
		`2023-10-30T09:12:09.459Z	ERROR	bench	logging/impl_test.go:75	bad channel	{"channel":7,"name":"BATT"}`)

	// Only public struct fields are serialized.
	logger.Warnw("reading", "reading", channelReading{Channel: 4, Volts: 2.5, raw: 128})
	assertLogMatches(t, notStdout,
		`2023-10-30T09:12:09.459Z	WARN	bench	logging/impl_test.go:80	reading	{"reading":{"Channel":4,"Volts":2.5}}`)

	logger.Infow("unpaired", "lonely")
	assertLogMatches(t, notStdout,
		`2023-10-30T09:12:09.459Z	INFO	bench	logging/impl_test.go:84	unpaired	{"lonely":"unpaired log key"}`)
}

func TestLevelFiltering(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := newImpl("bench", WARN, true, NewWriterAppender(notStdout))

	logger.Debug("dropped")
	logger.Info("dropped")
	test.That(t, notStdout.Len(), test.ShouldEqual, 0)

	logger.Warn("kept")
	test.That(t, notStdout.String(), test.ShouldContainSubstring, "kept")

	notStdout.Reset()
	logger.SetLevel(DEBUG)
	logger.Debugf("raw frame %x", 0x770002)
	test.That(t, notStdout.String(), test.ShouldContainSubstring, "raw frame 770002")
	test.That(t, logger.GetLevel(), test.ShouldEqual, DEBUG)
}

func TestSublogger(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := newImpl("bench", INFO, true, NewWriterAppender(notStdout))

	sub := logger.Sublogger("rx")
	sub.Info("frame")
	assertLogMatches(t, notStdout,
		`2023-10-30T09:12:09.459Z	INFO	bench.rx	logging/impl_test.go:117	frame`)

	// Changing the child level does not affect the parent.
	sub.SetLevel(ERROR)
	test.That(t, logger.GetLevel(), test.ShouldEqual, INFO)
}

func TestLevelFromString(t *testing.T) {
	for _, tc := range []struct {
		in   string
		want Level
	}{
		{"debug", DEBUG},
		{"INFO", INFO},
		{"Warn", WARN},
		{"warning", WARN},
		{"error", ERROR},
	} {
		got, err := LevelFromString(tc.in)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, got, test.ShouldEqual, tc.want)
	}

	_, err := LevelFromString("verbose")
	test.That(t, err, test.ShouldNotBeNil)

	var level Level
	test.That(t, json.Unmarshal([]byte(`"error"`), &level), test.ShouldBeNil)
	test.That(t, level, test.ShouldEqual, ERROR)
	out, err := json.Marshal(WARN)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, string(out), test.ShouldEqual, `"warn"`)
}

func TestObservedTestLogger(t *testing.T) {
	logger, logs := NewObservedTestLogger(t)
	logger.Errorf("BAD channel %d", 7)
	logger.Info("ALL GOOD")

	test.That(t, logs.FilterMessageSnippet("BAD channel").Len(), test.ShouldEqual, 1)
	test.That(t, logs.FilterMessageSnippet("ALL GOOD").Len(), test.ShouldEqual, 1)
}

func TestDebugModeContext(t *testing.T) {
	notStdout := &bytes.Buffer{}
	logger := newImpl("bench", INFO, true, NewWriterAppender(notStdout))

	logger.CDebugf(context.Background(), "cycle %d", 1)
	test.That(t, notStdout.Len(), test.ShouldEqual, 0)

	ctx := EnableDebugMode(context.Background(), "trace")
	test.That(t, GetName(ctx), test.ShouldEqual, "trace")
	logger.CDebugf(ctx, "cycle %d", 2)
	test.That(t, notStdout.String(), test.ShouldContainSubstring, "cycle 2")

	test.That(t, IsDebugMode(EnableDebugMode(context.Background(), "")), test.ShouldBeTrue)
}
