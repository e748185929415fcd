// Package history defines run history domain types and interfaces.
package history

import "time"

// Entry represents a recorded loop run.
type Entry struct {
	ID         string        `json:"id"`
	Prompt     string        `json:"prompt"`
	Plan       string        `json:"plan,omitempty"`
	Outcome    string        `json:"outcome"`
	Iterations int           `json:"iterations"`
	ExitCode   int           `json:"exit_code"`
	Error      string        `json:"error,omitempty"`
	LogFile    string        `json:"log_file,omitempty"`
	StartedAt  time.Time     `json:"started_at"`
	Duration   time.Duration `json:"duration"`
}

// Failed returns true if the run exited with a non-zero exit code.
func (e *Entry) Failed() bool {
	return e.ExitCode != 0
}
