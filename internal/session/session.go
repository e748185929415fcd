// Package session binds a pty child, a sentinel detector, and a
// terminal emulator into one pollable unit of work.
package session

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/dev-namespace/hydra/internal/pty"
	"github.com/dev-namespace/hydra/internal/sentinel"
	"github.com/dev-namespace/hydra/internal/vterm"
)

// Status is the lifecycle state of a session. Transitions are one-way;
// once a session leaves Running it never returns.
type Status int

const (
	StatusRunning Status = iota
	StatusTaskComplete
	StatusAllComplete
	StatusStopped
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusRunning:
		return "running"
	case StatusTaskComplete:
		return "task_complete"
	case StatusAllComplete:
		return "all_complete"
	case StatusStopped:
		return "stopped"
	case StatusFailed:
		return "failed"
	default:
		return fmt.Sprintf("status(%d)", int(s))
	}
}

// Terminal reports whether the status is a final state.
func (s Status) Terminal() bool {
	return s != StatusRunning
}

// Proc is the subset of pty.Session the session depends on, split out
// so tests can script child behavior.
type Proc interface {
	ReadOutput() []byte
	Write(data []byte) (int, error)
	Resize(rows, cols uint16) error
	Running() bool
	Terminate(graceful bool)
	Close() error
	Pid() int
}

var _ Proc = (*pty.Session)(nil)

// Options tune session behavior per mode.
type Options struct {
	// FailOnExit marks a child that exits without emitting a completion
	// marker as failed rather than stopped. Loop mode wants this; tabs
	// closed by the user do not.
	FailOnExit bool
}

// Session owns one agent child process plus the machinery that watches
// its output.
type Session struct {
	id   string
	slot int
	opts Options

	proc Proc
	det  *sentinel.Detector
	term vterm.Terminal

	status     Status
	failReason string

	log zerolog.Logger
}

// New wraps proc in a session. slot identifies the tab position in
// interactive mode; loop mode passes 0.
func New(proc Proc, term vterm.Terminal, slot int, opts Options, logger zerolog.Logger) *Session {
	id := uuid.New().String()
	return &Session{
		id:     id,
		slot:   slot,
		opts:   opts,
		proc:   proc,
		det:    sentinel.NewDetector(),
		term:   term,
		status: StatusRunning,
		log:    logger.With().Str("session", id[:8]).Int("slot", slot).Logger(),
	}
}

func (s *Session) ID() string           { return s.id }
func (s *Session) Slot() int            { return s.slot }
func (s *Session) Status() Status       { return s.status }
func (s *Session) FailReason() string   { return s.failReason }
func (s *Session) Term() vterm.Terminal { return s.term }
func (s *Session) Pid() int             { return s.proc.Pid() }

// Poll drains pending child output, feeds it to the screen and the
// sentinel detector, and advances the session state. It returns the raw
// bytes drained so callers can mirror or log them.
//
// Output is always processed before the exit check so markers in the
// final flush are never lost.
func (s *Session) Poll() []byte {
	if s.status.Terminal() {
		return nil
	}

	data := s.proc.ReadOutput()
	if len(data) > 0 {
		s.term.Feed(data)
		switch s.det.Feed(data) {
		case sentinel.SignalAllComplete:
			s.complete(StatusAllComplete)
			return data
		case sentinel.SignalTaskComplete:
			s.complete(StatusTaskComplete)
			return data
		}
	}

	if !s.proc.Running() {
		if s.opts.FailOnExit {
			s.Fail("process exited without completion signal")
		} else {
			s.transition(StatusStopped)
		}
	}
	return data
}

// SendInput forwards keyboard bytes to the child's terminal.
func (s *Session) SendInput(data []byte) error {
	if s.status.Terminal() {
		return pty.ErrProcessExited
	}
	if _, err := s.proc.Write(data); err != nil {
		return fmt.Errorf("send input: %w", err)
	}
	return nil
}

// Resize adjusts both the pty and the emulator so the child and the
// rendered screen agree on dimensions.
func (s *Session) Resize(rows, cols uint16) error {
	s.term.Resize(int(rows), int(cols))
	if err := s.proc.Resize(rows, cols); err != nil {
		return fmt.Errorf("resize pty: %w", err)
	}
	return nil
}

// Kill signals the child. Gracefulness follows pty.Session.Terminate.
func (s *Session) Kill(graceful bool) {
	s.proc.Terminate(graceful)
}

// Fail forces the session into the failed state with a reason. Used for
// timeouts and spawn-side errors detected after start.
func (s *Session) Fail(reason string) {
	if s.status.Terminal() {
		return
	}
	s.failReason = reason
	s.transition(StatusFailed)
}

// Close releases the pty. The session status is not changed; callers
// decide the final state before closing.
func (s *Session) Close() error {
	return s.proc.Close()
}

// complete records a marker-driven final state and terminates the
// child. The agent has said it is done; leaving it running would fill
// the output channel since terminal sessions are no longer drained.
func (s *Session) complete(to Status) {
	s.transition(to)
	s.proc.Terminate(true)
}

func (s *Session) transition(to Status) {
	if s.status.Terminal() {
		return
	}
	s.log.Debug().
		Str("from", s.status.String()).
		Str("to", to.String()).
		Msg("session state change")
	s.status = to
}
