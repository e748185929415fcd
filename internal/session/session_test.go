package session

import (
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dev-namespace/hydra/internal/pty"
	"github.com/dev-namespace/hydra/internal/vterm"
)

// fakeProc scripts child output and exit behavior for the session under
// test.
type fakeProc struct {
	chunks    [][]byte
	running   bool
	writes    [][]byte
	writeErr  error
	resizes   [][2]uint16
	termCalls []bool
	closed    bool
}

func (f *fakeProc) ReadOutput() []byte {
	if len(f.chunks) == 0 {
		return nil
	}
	out := f.chunks[0]
	f.chunks = f.chunks[1:]
	return out
}

func (f *fakeProc) Write(data []byte) (int, error) {
	if f.writeErr != nil {
		return 0, f.writeErr
	}
	f.writes = append(f.writes, data)
	return len(data), nil
}

func (f *fakeProc) Resize(rows, cols uint16) error {
	f.resizes = append(f.resizes, [2]uint16{rows, cols})
	return nil
}

func (f *fakeProc) Running() bool           { return f.running }
func (f *fakeProc) Terminate(graceful bool) { f.termCalls = append(f.termCalls, graceful) }
func (f *fakeProc) Close() error            { f.closed = true; return nil }
func (f *fakeProc) Pid() int                { return 4242 }

func newTestSession(proc Proc, opts Options) *Session {
	return New(proc, vterm.New(24, 80), 0, opts, zerolog.Nop())
}

func TestSession_TaskComplete(t *testing.T) {
	proc := &fakeProc{
		chunks:  [][]byte{[]byte("working...\n"), []byte("done ###TASK_COMPLETE###\n")},
		running: true,
	}
	s := newTestSession(proc, Options{})

	s.Poll()
	assert.Equal(t, StatusRunning, s.Status())

	s.Poll()
	assert.Equal(t, StatusTaskComplete, s.Status())
	assert.Equal(t, []bool{true}, proc.termCalls, "completion must terminate the child gracefully")
}

func TestSession_AllComplete(t *testing.T) {
	proc := &fakeProc{
		chunks:  [][]byte{[]byte("###ALL_TASKS_COMPLETE###")},
		running: true,
	}
	s := newTestSession(proc, Options{})

	s.Poll()
	assert.Equal(t, StatusAllComplete, s.Status())
	assert.Equal(t, []bool{true}, proc.termCalls, "completion must terminate the child gracefully")
}

func TestSession_MarkerSplitAcrossPolls(t *testing.T) {
	proc := &fakeProc{
		chunks:  [][]byte{[]byte("###TASK_CO"), []byte("MPLETE###")},
		running: true,
	}
	s := newTestSession(proc, Options{})

	s.Poll()
	require.Equal(t, StatusRunning, s.Status())
	s.Poll()
	assert.Equal(t, StatusTaskComplete, s.Status())
}

func TestSession_ExitWithoutSignal(t *testing.T) {
	t.Run("loop mode fails", func(t *testing.T) {
		proc := &fakeProc{running: false}
		s := newTestSession(proc, Options{FailOnExit: true})

		s.Poll()
		assert.Equal(t, StatusFailed, s.Status())
		assert.NotEmpty(t, s.FailReason())
	})

	t.Run("interactive mode stops", func(t *testing.T) {
		proc := &fakeProc{running: false}
		s := newTestSession(proc, Options{})

		s.Poll()
		assert.Equal(t, StatusStopped, s.Status())
	})
}

func TestSession_FinalFlushBeatsExitCheck(t *testing.T) {
	// Marker arrives in the last drain after the child already exited.
	proc := &fakeProc{
		chunks:  [][]byte{[]byte("###TASK_COMPLETE###\n")},
		running: false,
	}
	s := newTestSession(proc, Options{FailOnExit: true})

	s.Poll()
	assert.Equal(t, StatusTaskComplete, s.Status())
}

func TestSession_StatusIsMonotonic(t *testing.T) {
	proc := &fakeProc{
		chunks:  [][]byte{[]byte("###ALL_TASKS_COMPLETE###"), []byte("###TASK_COMPLETE###")},
		running: true,
	}
	s := newTestSession(proc, Options{})

	s.Poll()
	require.Equal(t, StatusAllComplete, s.Status())

	// Later polls and failures cannot demote a final state.
	s.Poll()
	s.Fail("too late")
	assert.Equal(t, StatusAllComplete, s.Status())
	assert.Empty(t, s.FailReason())
}

func TestSession_PollAfterTerminalIsNoop(t *testing.T) {
	proc := &fakeProc{
		chunks:  [][]byte{[]byte("###TASK_COMPLETE###"), []byte("more output")},
		running: true,
	}
	s := newTestSession(proc, Options{})

	s.Poll()
	require.Equal(t, StatusTaskComplete, s.Status())

	data := s.Poll()
	assert.Nil(t, data, "terminal sessions drain nothing")
}

func TestSession_SendInput(t *testing.T) {
	proc := &fakeProc{running: true}
	s := newTestSession(proc, Options{})

	require.NoError(t, s.SendInput([]byte("y\n")))
	require.Len(t, proc.writes, 1)
	assert.Equal(t, []byte("y\n"), proc.writes[0])
}

func TestSession_SendInputAfterExit(t *testing.T) {
	proc := &fakeProc{running: false}
	s := newTestSession(proc, Options{})
	s.Poll()

	err := s.SendInput([]byte("x"))
	assert.ErrorIs(t, err, pty.ErrProcessExited)
}

func TestSession_ResizeKeepsPtyAndScreenInSync(t *testing.T) {
	proc := &fakeProc{running: true}
	term := vterm.New(24, 80)
	s := New(proc, term, 0, Options{}, zerolog.Nop())

	require.NoError(t, s.Resize(40, 120))

	require.Len(t, proc.resizes, 1)
	assert.Equal(t, [2]uint16{40, 120}, proc.resizes[0])

	rows, cols := term.Size()
	assert.Equal(t, 40, rows)
	assert.Equal(t, 120, cols)
}

func TestSession_Kill(t *testing.T) {
	proc := &fakeProc{running: true}
	s := newTestSession(proc, Options{})

	s.Kill(true)
	s.Kill(false)
	assert.Equal(t, []bool{true, false}, proc.termCalls)
}

func TestSession_FeedsScreen(t *testing.T) {
	proc := &fakeProc{
		chunks:  [][]byte{[]byte("visible text")},
		running: true,
	}
	term := vterm.New(24, 80)
	s := New(proc, term, 0, Options{}, zerolog.Nop())

	s.Poll()
	assert.Contains(t, term.Contents(), "visible text")
}
