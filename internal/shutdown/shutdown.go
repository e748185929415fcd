// Package shutdown centralizes signal handling. One controller lives
// for the entire process; modes hand it a terminator for whatever child
// is currently foreground.
package shutdown

import (
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"

	"github.com/rs/zerolog"
)

// Terminator is called to signal the active child process. graceful
// selects SIGTERM over SIGKILL.
type Terminator func(graceful bool)

// Controller translates process signals into an orderly stop request,
// escalating on a repeated interrupt.
//
// SIGTERM and the first SIGINT set the stop flag and gracefully signal
// the current child. A second SIGINT force-kills the child and exits
// immediately.
type Controller struct {
	requested  atomic.Bool
	interrupts atomic.Int32

	mu   sync.Mutex
	term Terminator

	exitFn func(code int)
	log    zerolog.Logger
}

func New(logger zerolog.Logger) *Controller {
	return &Controller{
		exitFn: os.Exit,
		log:    logger.With().Str("component", "shutdown").Logger(),
	}
}

// Start installs the signal handlers. The returned stop function
// removes them; it does not reset the flag.
func (c *Controller) Start() (stop func()) {
	ch := make(chan os.Signal, 4)
	signal.Notify(ch, syscall.SIGINT, syscall.SIGTERM)

	done := make(chan struct{})
	go func() {
		for {
			select {
			case sig := <-ch:
				c.handle(sig)
			case <-done:
				return
			}
		}
	}()

	return func() {
		signal.Stop(ch)
		close(done)
	}
}

func (c *Controller) handle(sig os.Signal) {
	if sig == syscall.SIGTERM {
		c.log.Info().Msg("received SIGTERM, stopping after current iteration")
		c.requested.Store(true)
		return
	}

	n := c.interrupts.Add(1)
	c.requested.Store(true)

	if n == 1 {
		c.log.Info().Msg("interrupt received, terminating child (press again to force)")
		c.signalChild(true)
		return
	}

	c.log.Warn().Msg("second interrupt, force killing")
	c.signalChild(false)
	c.exitFn(1)
}

func (c *Controller) signalChild(graceful bool) {
	c.mu.Lock()
	term := c.term
	c.mu.Unlock()
	if term != nil {
		term(graceful)
	}
}

// Requested reports whether a stop has been asked for.
func (c *Controller) Requested() bool {
	return c.requested.Load()
}

// SetTerminator registers the child to signal on interrupt. Overwrites
// any previous terminator.
func (c *Controller) SetTerminator(t Terminator) {
	c.mu.Lock()
	c.term = t
	c.mu.Unlock()
}

// ClearTerminator removes the registered terminator, typically once the
// child has exited.
func (c *Controller) ClearTerminator() {
	c.mu.Lock()
	c.term = nil
	c.mu.Unlock()
}
