package logger

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"
)

// ReadJSONLinesLog parses a newline delimited JSON log.
func ReadJSONLinesLog(r io.Reader, handler func(le *LogEntry)) error {
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	for decoder.More() {
		var logEntry LogEntry
		if err := decoder.Decode(&logEntry); err != nil {
			return err
		}

		handler(&logEntry)
	}
	return nil
}

// NewBugReport creates an empty BugReport.
func NewBugReport() *BugReport {
	return &BugReport{
		UnknownCommands: NewPathCounter("command", "error"),
		SyntaxErrors:    NewPathCounter("error"),
	}
}

// BugReport pulls events that point at missing programs or lines the shell
// couldn't understand.
type BugReport struct {
	LogEntries int `json:"log_entries"`

	UnknownCommands *PathCounter `json:"unknown_commands"`
	SyntaxErrors    *PathCounter `json:"syntax_errors"`
}

// Update adds an entry to the report.
func (r *BugReport) Update(le *LogEntry) {
	r.LogEntries++

	switch event := le.event().(type) {
	case *UnknownCommand:
		r.UnknownCommands.Increment(firstArg(event.Command), event.ErrorMessage)
	case *SyntaxError:
		r.SyntaxErrors.Increment(event.Error)
	}
}

// SessionReport groups the commands run by session.
type SessionReport struct {
	// Map of sessionID -> session
	sessions map[string]*Session
}

// Session summarizes a single shell session.
type Session struct {
	LogEntries int      `json:"log_entries"`
	Commands   []string `json:"commands"`
	Jobs       []string `json:"background_jobs,omitempty"`
}

// Update adds an entry to the session.
func (s *Session) Update(le *LogEntry) {
	s.LogEntries++

	switch event := le.event().(type) {
	case *RunCommand:
		s.Commands = append(s.Commands, strings.Join(event.Command, " "))
	case *UnknownCommand:
		s.Commands = append(s.Commands, strings.Join(event.Command, " "))
	case *BackgroundJob:
		if !event.Finished {
			s.Jobs = append(s.Jobs, event.Command)
		}
	}
}

func (s *SessionReport) init() {
	if s.sessions == nil {
		s.sessions = make(map[string]*Session)
	}
}

// MarshalJSON implements custom JSON marshaler.
func (s *SessionReport) MarshalJSON() ([]byte, error) {
	s.init()

	return json.Marshal(s.sessions)
}

// Update adds an entry to the session it belongs to, entries without a
// session are ignored.
func (s *SessionReport) Update(le *LogEntry) {
	s.init()

	if le.SessionID == "" {
		return
	}
	session, ok := s.sessions[le.SessionID]
	if !ok {
		session = &Session{}
		s.sessions[le.SessionID] = session
	}

	session.Update(le)
}

// Report holds statistics about the logged events.
type Report struct {
	LogEntries     int        `json:"log_entries"`
	InvalidEntries StrCounter `json:"unknown_log_entries,omitempty"`

	RunCommand     RunCommandReport     `json:"run_command_report"`
	UnknownCommand UnknownCommandReport `json:"unknown_command_report"`
	SyntaxError    SyntaxErrorReport    `json:"syntax_error_report"`
	BackgroundJob  BackgroundJobReport  `json:"background_job_report"`
}

// Update adds an entry to the report.
func (r *Report) Update(le *LogEntry) {
	r.LogEntries++

	switch event := le.event().(type) {
	case *RunCommand:
		r.RunCommand.update(event)
	case *UnknownCommand:
		r.UnknownCommand.update(event)
	case *SyntaxError:
		r.SyntaxError.update(event)
	case *BackgroundJob:
		r.BackgroundJob.update(event)
	default:
		r.InvalidEntries.Increment(fmt.Sprintf("%T", event))
	}
}

type RunCommandReport struct {
	// Path of the resolved command, empty for builtins.
	ResolvedCommandPaths StrCounter `json:"resolved_command_paths"`
	// Name of the command
	CommandNames StrCounter `json:"command_names"`
	// Exit statuses
	Statuses StrCounter `json:"statuses"`
	Builtins int        `json:"builtins"`
}

func (r *RunCommandReport) update(rc *RunCommand) {
	if rc.Builtin {
		r.Builtins++
	} else {
		r.ResolvedCommandPaths.Increment(rc.ResolvedCommandPath)
	}
	r.CommandNames.Increment(firstArg(rc.Command))
	r.Statuses.Increment(fmt.Sprintf("%d", rc.Status))
}

type UnknownCommandReport struct {
	CommandNames StrCounter `json:"command_names"`
}

func (r *UnknownCommandReport) update(logEntry *UnknownCommand) {
	r.CommandNames.Increment(firstArg(logEntry.Command))
}

type SyntaxErrorReport struct {
	Count int `json:"count"`
}

func (r *SyntaxErrorReport) update(*SyntaxError) {
	r.Count++
}

type BackgroundJobReport struct {
	Started  int        `json:"started"`
	Finished int        `json:"finished"`
	Statuses StrCounter `json:"statuses"`
}

func (r *BackgroundJobReport) update(job *BackgroundJob) {
	if !job.Finished {
		r.Started++
		return
	}
	r.Finished++
	r.Statuses.Increment(fmt.Sprintf("%d", job.Status))
}

func firstArg(command []string) string {
	if len(command) == 0 {
		return ""
	}
	return command[0]
}

// StrCounter counts the number of strings seen.
type StrCounter struct {
	internal map[string]int
}

// Increment adds one to the given key.
func (s *StrCounter) Increment(toAdd string) {
	if s.internal == nil {
		s.internal = make(map[string]int)
	}

	s.internal[toAdd]++
}

// Get returns the count for the given key.
func (s *StrCounter) Get(key string) int {
	return s.internal[key]
}

// MarshalJSON implements custom JSON marshaler.
func (s StrCounter) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.internal)
}

func NewPathCounter(cols ...string) *PathCounter {
	return &PathCounter{
		cols:     cols,
		internal: make(map[string]int),
	}
}

// PathCounter counts the number of times each combination of column values
// was seen.
type PathCounter struct {
	cols     []string
	internal map[string]int
}

// Increment adds one to the given key.
func (ctr *PathCounter) Increment(toAdd ...string) {
	if len(toAdd) != len(ctr.cols) {
		panic("wrong number of columns to add")
	}

	ctr.internal[toKey(toAdd...)]++
}

// MarshalJSON implements custom JSON marshaler.
func (ctr *PathCounter) MarshalJSON() ([]byte, error) {
	type Count struct {
		Count  int               `json:"count"`
		Fields map[string]string `json:"event"`
		Path   string            `json:"-"`
	}

	out := []Count{}
	for k, v := range ctr.internal {
		count := Count{
			Count:  v,
			Path:   k,
			Fields: make(map[string]string),
		}

		splitPath := fromKey(k)
		for colNum, colVal := range ctr.cols {
			count.Fields[colVal] = splitPath[colNum]
		}

		out = append(out, count)
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Count == out[j].Count {
			return out[i].Path < out[j].Path
		}
		return out[i].Count > out[j].Count
	})

	return json.Marshal(out)
}

func toKey(vals ...string) string {
	key, _ := json.Marshal(vals)
	return string(key)
}

func fromKey(key string) (out []string) {
	json.Unmarshal([]byte(key), &out)
	return
}
