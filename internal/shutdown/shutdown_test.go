package shutdown

import (
	"syscall"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestController() *Controller {
	c := New(zerolog.Nop())
	c.exitFn = func(code int) {} // keep the test process alive
	return c
}

func TestController_SigtermSetsFlagOnly(t *testing.T) {
	c := newTestController()

	var termCalls []bool
	c.SetTerminator(func(graceful bool) { termCalls = append(termCalls, graceful) })

	c.handle(syscall.SIGTERM)

	assert.True(t, c.Requested())
	assert.Empty(t, termCalls, "SIGTERM must not signal the child")
}

func TestController_FirstInterruptGraceful(t *testing.T) {
	c := newTestController()

	var termCalls []bool
	c.SetTerminator(func(graceful bool) { termCalls = append(termCalls, graceful) })

	c.handle(syscall.SIGINT)

	assert.True(t, c.Requested())
	require.Equal(t, []bool{true}, termCalls)
}

func TestController_SecondInterruptForcesAndExits(t *testing.T) {
	c := New(zerolog.Nop())

	var exitCode = -1
	c.exitFn = func(code int) { exitCode = code }

	var termCalls []bool
	c.SetTerminator(func(graceful bool) { termCalls = append(termCalls, graceful) })

	c.handle(syscall.SIGINT)
	c.handle(syscall.SIGINT)

	assert.Equal(t, []bool{true, false}, termCalls)
	assert.Equal(t, 1, exitCode)
}

func TestController_NoTerminatorRegistered(t *testing.T) {
	c := newTestController()

	// Must not panic with nothing registered.
	c.handle(syscall.SIGINT)
	assert.True(t, c.Requested())
}

func TestController_ClearTerminator(t *testing.T) {
	c := newTestController()

	called := false
	c.SetTerminator(func(bool) { called = true })
	c.ClearTerminator()

	c.handle(syscall.SIGINT)
	assert.False(t, called)
}
