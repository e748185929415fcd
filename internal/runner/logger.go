package runner

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dev-namespace/hydra/internal/core/config"
	"github.com/dev-namespace/hydra/internal/session"
	"github.com/dev-namespace/hydra/pkg/randid"
)

// SessionLog captures everything the agent printed during a run, plus
// timestamped lifecycle lines, in .hydra/logs/hydra-<timestamp>.log.
type SessionLog struct {
	path string
	file *os.File
	now  func() time.Time
}

// NewSessionLog creates the logs directory if needed and opens a fresh
// timestamped log file.
func NewSessionLog() (*SessionLog, error) {
	dir := config.LogsDir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create logs directory %s: %w", dir, err)
	}

	// randid suffix keeps runs started within the same second apart
	name := fmt.Sprintf("hydra-%s-%s.log", time.Now().Format("20060102-150405"), randid.Generate(6))
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("create log file %s: %w", path, err)
	}

	return &SessionLog{path: path, file: f, now: time.Now}, nil
}

// Path returns the log file location.
func (l *SessionLog) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Log writes a timestamped lifecycle line.
func (l *SessionLog) Log(msg string) {
	if l == nil {
		return
	}
	fmt.Fprintf(l.file, "[%s] %s\n", l.now().Format("15:04:05"), msg)
}

// Append writes raw agent output verbatim.
func (l *SessionLog) Append(data []byte) {
	if l == nil || len(data) == 0 {
		return
	}
	_, _ = l.file.Write(data)
}

// IterationStart writes the banner separating iterations.
func (l *SessionLog) IterationStart(iteration, max int) {
	if l == nil {
		return
	}
	sep := strings.Repeat("=", 80)
	fmt.Fprintf(l.file, "\n%s\n", sep)
	l.Log(fmt.Sprintf("ITERATION %d/%d START", iteration, max))
	fmt.Fprintf(l.file, "%s\n\n", sep)
}

// IterationEnd records how an iteration finished.
func (l *SessionLog) IterationEnd(iteration int, status session.Status, failReason string) {
	if l == nil {
		return
	}
	line := fmt.Sprintf("ITERATION %d END: %s", iteration, strings.ToUpper(status.String()))
	if failReason != "" {
		line += " (" + failReason + ")"
	}
	l.Log(line)
}

// Close flushes and closes the underlying file.
func (l *SessionLog) Close() error {
	if l == nil {
		return nil
	}
	return l.file.Close()
}
