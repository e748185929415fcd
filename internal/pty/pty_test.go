package pty

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collectOutput polls ReadOutput until pred is satisfied or the timeout
// elapses, returning everything read.
func collectOutput(t *testing.T, s *Session, timeout time.Duration, pred func([]byte) bool) []byte {
	t.Helper()
	var out []byte
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		out = append(out, s.ReadOutput()...)
		if pred(out) {
			return out
		}
		time.Sleep(10 * time.Millisecond)
	}
	return out
}

func TestSpawn_BadCommand(t *testing.T) {
	_, err := Spawn("/nonexistent/definitely-not-a-binary", nil, 24, 80)
	require.Error(t, err)

	var se *SpawnError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, "/nonexistent/definitely-not-a-binary", se.Command)
}

func TestSession_EchoOutput(t *testing.T) {
	s, err := Spawn("/bin/echo", []string{"hello pty"}, 24, 80)
	require.NoError(t, err)
	defer s.Close()

	out := collectOutput(t, s, 5*time.Second, func(b []byte) bool {
		return bytes.Contains(b, []byte("hello pty"))
	})
	assert.Contains(t, string(out), "hello pty")

	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("process did not exit")
	}
	assert.False(t, s.Running())
	assert.Equal(t, 0, s.ExitCode())
}

func TestSession_WriteRoundTrip(t *testing.T) {
	s, err := Spawn("/bin/cat", nil, 24, 80)
	require.NoError(t, err)
	defer s.Close()

	_, err = s.Write([]byte("ping\n"))
	require.NoError(t, err)

	out := collectOutput(t, s, 5*time.Second, func(b []byte) bool {
		return bytes.Contains(b, []byte("ping"))
	})
	assert.Contains(t, string(out), "ping")
}

func TestSession_TerminateGraceful(t *testing.T) {
	s, err := Spawn("/bin/cat", nil, 24, 80)
	require.NoError(t, err)
	defer s.Close()

	require.True(t, s.Running())
	s.Terminate(true)

	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("process did not exit after SIGTERM")
	}
	assert.False(t, s.Running())
}

func TestSession_TerminateForced(t *testing.T) {
	// sh ignoring TERM only dies to the forced kill.
	s, err := Spawn("/bin/sh", []string{"-c", "trap '' TERM; while :; do sleep 1; done"}, 24, 80)
	require.NoError(t, err)
	defer s.Close()

	s.Terminate(true)
	select {
	case <-s.Done():
		t.Fatal("process should have ignored SIGTERM")
	case <-time.After(500 * time.Millisecond):
	}

	s.Terminate(false)
	select {
	case <-s.Done():
	case <-time.After(5 * time.Second):
		t.Fatal("process did not exit after SIGKILL")
	}
}

func TestSession_WriteAfterExit(t *testing.T) {
	s, err := Spawn("/bin/true", nil, 24, 80)
	require.NoError(t, err)
	defer s.Close()

	<-s.Done()
	_, err = s.Write([]byte("x"))
	assert.ErrorIs(t, err, ErrProcessExited)
}

func TestSession_Resize(t *testing.T) {
	s, err := Spawn("/bin/cat", nil, 24, 80)
	require.NoError(t, err)
	defer s.Close()

	require.NoError(t, s.Resize(40, 120))
}

func TestSession_CloseIdempotent(t *testing.T) {
	s, err := Spawn("/bin/cat", nil, 24, 80)
	require.NoError(t, err)

	require.NoError(t, s.Close())
	assert.NoError(t, s.Close())
}
