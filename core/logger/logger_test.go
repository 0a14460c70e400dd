package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedTime() time.Time {
	return time.Date(2006, 1, 2, 3, 4, 5, 0, time.UTC)
}

func TestNewJsonLinesLogRecorder(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewJsonLinesLogRecorder(buf)
	l.Now = fixedTime

	session := l.Sessionless()
	require.NoError(t, session.Record(&RunCommand{Command: []string{"ls", "-l"}, ResolvedCommandPath: "/bin/ls"}))
	require.NoError(t, session.Record(&UnknownCommand{Command: []string{"nope"}, ErrorMessage: "command not found"}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	assert.Equal(t, []string{
		`{"timestamp_micros":1136171045000000,"run_command":{"command":["ls","-l"],"resolved_command_path":"/bin/ls","status":0}}`,
		`{"timestamp_micros":1136171045000000,"unknown_command":{"command":["nope"],"error_message":"command not found"}}`,
	}, lines)
}

func TestNewSession(t *testing.T) {
	buf := &bytes.Buffer{}
	l := NewJsonLinesLogRecorder(buf)

	session := l.NewSession()
	require.NoError(t, session.Record(&SyntaxError{Line: "ls |", Error: "bad"}))

	var entry LogEntry
	require.NoError(t, json.Unmarshal(buf.Bytes(), &entry))
	assert.NotEmpty(t, entry.SessionID)
	assert.Equal(t, &SyntaxError{Line: "ls |", Error: "bad"}, entry.SyntaxError)
}

func recordAll(t *testing.T, events map[string][]LogType) *bytes.Buffer {
	t.Helper()
	buf := &bytes.Buffer{}
	l := NewJsonLinesLogRecorder(buf)
	l.Now = fixedTime

	for session, evts := range events {
		sl := &SessionLogger{Logger: l, sessionID: session}
		for _, e := range evts {
			require.NoError(t, sl.Record(e))
		}
	}
	return buf
}

func TestReport(t *testing.T) {
	buf := recordAll(t, map[string][]LogType{
		"1": {
			&RunCommand{Command: []string{"ls"}, ResolvedCommandPath: "/bin/ls"},
			&RunCommand{Command: []string{"ls"}, ResolvedCommandPath: "/bin/ls", Status: 2},
			&RunCommand{Command: []string{"cd"}, Builtin: true},
			&UnknownCommand{Command: []string{"nope"}},
			&SyntaxError{Line: "|", Error: "bad"},
			&BackgroundJob{Command: "sleep 1", Pids: []int{10}},
			&BackgroundJob{Command: "sleep 1", Pids: []int{10}, Finished: true},
		},
	})

	var report Report
	require.NoError(t, ReadJSONLinesLog(buf, report.Update))

	assert.Equal(t, 7, report.LogEntries)
	assert.Equal(t, 2, report.RunCommand.ResolvedCommandPaths.Get("/bin/ls"))
	assert.Equal(t, 2, report.RunCommand.CommandNames.Get("ls"))
	assert.Equal(t, 1, report.RunCommand.Statuses.Get("2"))
	assert.Equal(t, 1, report.RunCommand.Builtins)
	assert.Equal(t, 1, report.UnknownCommand.CommandNames.Get("nope"))
	assert.Equal(t, 1, report.SyntaxError.Count)
	assert.Equal(t, 1, report.BackgroundJob.Started)
	assert.Equal(t, 1, report.BackgroundJob.Finished)
	assert.Equal(t, 1, report.BackgroundJob.Statuses.Get("0"))
}

func TestBugReport(t *testing.T) {
	buf := recordAll(t, map[string][]LogType{
		"": {
			&UnknownCommand{Command: []string{"nope"}, ErrorMessage: "not found"},
			&UnknownCommand{Command: []string{"nope"}, ErrorMessage: "not found"},
			&UnknownCommand{Command: []string{"other"}, ErrorMessage: "not found"},
			&SyntaxError{Line: "|", Error: "bad"},
		},
	})

	report := NewBugReport()
	require.NoError(t, ReadJSONLinesLog(buf, report.Update))

	out, err := json.Marshal(report)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"log_entries": 4,
		"unknown_commands": [
			{"count": 2, "event": {"command": "nope", "error": "not found"}},
			{"count": 1, "event": {"command": "other", "error": "not found"}}
		],
		"syntax_errors": [
			{"count": 1, "event": {"error": "bad"}}
		]
	}`, string(out))
}

func TestSessionReport(t *testing.T) {
	buf := recordAll(t, map[string][]LogType{
		"a": {
			&RunCommand{Command: []string{"ls", "-l"}},
			&BackgroundJob{Command: "sleep 1"},
		},
		"": {
			&RunCommand{Command: []string{"ignored"}},
		},
	})

	var report SessionReport
	require.NoError(t, ReadJSONLinesLog(buf, report.Update))

	out, err := json.Marshal(&report)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"a": {"log_entries": 2, "commands": ["ls -l"], "background_jobs": ["sleep 1"]}
	}`, string(out))
}

func TestReadJSONLinesLog_Invalid(t *testing.T) {
	err := ReadJSONLinesLog(strings.NewReader(`{"bogus": 1}`), func(*LogEntry) {})
	assert.Error(t, err)
}
