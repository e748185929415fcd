// Package pty spawns child processes attached to a pseudo-terminal and
// pumps their output into a non-blocking channel.
package pty

import (
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
	"syscall"

	"github.com/creack/pty"
)

// ErrProcessExited is returned by Write after the child has exited.
var ErrProcessExited = errors.New("process has exited")

// SpawnError wraps failures to start the child process so callers can
// distinguish them from runtime failures.
type SpawnError struct {
	Command string
	Err     error
}

func (e *SpawnError) Error() string {
	return fmt.Sprintf("spawn %q: %v", e.Command, e.Err)
}

func (e *SpawnError) Unwrap() error { return e.Err }

const outputChanSize = 256

// Session is a child process running under a pseudo-terminal. Output is
// drained by a background reader into a buffered channel so that slow
// consumers never block the child.
type Session struct {
	cmd  *exec.Cmd
	ptmx *os.File

	output chan []byte
	done   chan struct{}

	closeOnce sync.Once
	termOnce  sync.Once

	mu       sync.Mutex
	exited   bool
	exitCode int
}

// Spawn starts command under a new pseudo-terminal with the given
// dimensions. The child is placed in its own session (and process group)
// so Terminate can signal the whole tree.
func Spawn(command string, args []string, rows, cols uint16) (*Session, error) {
	cmd := exec.Command(command, args...)
	cmd.Env = os.Environ()

	ptmx, err := pty.StartWithSize(cmd, &pty.Winsize{Rows: rows, Cols: cols})
	if err != nil {
		return nil, &SpawnError{Command: command, Err: err}
	}

	s := &Session{
		cmd:    cmd,
		ptmx:   ptmx,
		output: make(chan []byte, outputChanSize),
		done:   make(chan struct{}),
	}

	go s.readLoop()
	go s.waitLoop()

	return s, nil
}

func (s *Session) readLoop() {
	buf := make([]byte, 32*1024)
	for {
		n, err := s.ptmx.Read(buf)
		if n > 0 {
			data := make([]byte, n)
			copy(data, buf[:n])
			select {
			case s.output <- data:
			case <-s.done:
				return
			}
		}
		if err != nil {
			// EIO here means the child closed its side of the pty.
			return
		}
	}
}

func (s *Session) waitLoop() {
	err := s.cmd.Wait()

	s.mu.Lock()
	s.exited = true
	if err == nil {
		s.exitCode = 0
	} else {
		var ee *exec.ExitError
		if errors.As(err, &ee) {
			s.exitCode = ee.ExitCode()
		} else {
			s.exitCode = -1
		}
	}
	s.mu.Unlock()

	close(s.done)
}

// ReadOutput drains all output currently buffered without blocking.
// It returns nil when no output is pending.
func (s *Session) ReadOutput() []byte {
	var out []byte
	for {
		select {
		case data := <-s.output:
			out = append(out, data...)
		default:
			return out
		}
	}
}

// Write sends input bytes to the child's terminal.
func (s *Session) Write(data []byte) (int, error) {
	if !s.Running() {
		return 0, ErrProcessExited
	}
	return s.ptmx.Write(data)
}

// Resize changes the pseudo-terminal dimensions. The child receives
// SIGWINCH from the kernel.
func (s *Session) Resize(rows, cols uint16) error {
	return pty.Setsize(s.ptmx, &pty.Winsize{Rows: rows, Cols: cols})
}

// Running reports whether the child process is still alive.
func (s *Session) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return !s.exited
}

// ExitCode returns the child's exit status. Only meaningful once
// Running reports false; returns -1 otherwise.
func (s *Session) ExitCode() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.exited {
		return -1
	}
	return s.exitCode
}

// Done returns a channel closed when the child process exits.
func (s *Session) Done() <-chan struct{} {
	return s.done
}

// Pid returns the child's process id, or -1 if unavailable.
func (s *Session) Pid() int {
	if s.cmd.Process == nil {
		return -1
	}
	return s.cmd.Process.Pid
}

// Terminate signals the child's process group. When graceful is true it
// sends SIGTERM, otherwise SIGKILL. Safe to call more than once; only
// the first graceful call sends SIGTERM, but a later forced call still
// escalates to SIGKILL.
func (s *Session) Terminate(graceful bool) {
	if !s.Running() {
		return
	}
	pid := s.Pid()
	if pid <= 0 {
		return
	}
	if graceful {
		s.termOnce.Do(func() {
			// Negative pid targets the whole process group.
			_ = syscall.Kill(-pid, syscall.SIGTERM)
		})
		return
	}
	_ = syscall.Kill(-pid, syscall.SIGKILL)
}

// Close releases the pty master. If the child is still running it is
// killed first so the wait goroutine can finish.
func (s *Session) Close() error {
	var err error
	s.closeOnce.Do(func() {
		if s.Running() {
			s.Terminate(false)
		}
		err = s.ptmx.Close()
	})
	return err
}
