package logger

// LogEntry is a single line of the event log. Exactly one of the event fields
// is set.
type LogEntry struct {
	TimestampMicros int64  `json:"timestamp_micros"`
	SessionID       string `json:"session_id,omitempty"`

	RunCommand     *RunCommand     `json:"run_command,omitempty"`
	UnknownCommand *UnknownCommand `json:"unknown_command,omitempty"`
	SyntaxError    *SyntaxError    `json:"syntax_error,omitempty"`
	BackgroundJob  *BackgroundJob  `json:"background_job,omitempty"`
}

// LogType is implemented by every event that can be recorded.
type LogType interface {
	setOn(le *LogEntry)
}

// RunCommand is logged for every builtin or program the shell runs.
type RunCommand struct {
	Command             []string `json:"command"`
	ResolvedCommandPath string   `json:"resolved_command_path,omitempty"`
	Builtin             bool     `json:"builtin,omitempty"`
	Status              int      `json:"status"`
}

func (e *RunCommand) setOn(le *LogEntry) { le.RunCommand = e }

// UnknownCommand is logged when a command isn't a builtin and can't be found
// on the PATH.
type UnknownCommand struct {
	Command      []string `json:"command"`
	ErrorMessage string   `json:"error_message,omitempty"`
}

func (e *UnknownCommand) setOn(le *LogEntry) { le.UnknownCommand = e }

// SyntaxError is logged when a line can't be tokenized or parsed.
type SyntaxError struct {
	Line  string `json:"line"`
	Error string `json:"error"`
}

func (e *SyntaxError) setOn(le *LogEntry) { le.SyntaxError = e }

// BackgroundJob is logged when a job is sent to the background and again
// when it has been reaped.
type BackgroundJob struct {
	Command  string `json:"command"`
	Pids     []int  `json:"pids,omitempty"`
	Finished bool   `json:"finished,omitempty"`
	Status   int    `json:"status"`
}

func (e *BackgroundJob) setOn(le *LogEntry) { le.BackgroundJob = e }

// event returns the event set on the entry or nil.
func (le *LogEntry) event() LogType {
	switch {
	case le.RunCommand != nil:
		return le.RunCommand
	case le.UnknownCommand != nil:
		return le.UnknownCommand
	case le.SyntaxError != nil:
		return le.SyntaxError
	case le.BackgroundJob != nil:
		return le.BackgroundJob
	}
	return nil
}
