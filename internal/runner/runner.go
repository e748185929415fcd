// Package runner drives loop mode: one headless agent session at a
// time, bounded by iteration count, per-iteration timeout, stop file,
// and the shutdown flag.
package runner

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/term"

	"github.com/dev-namespace/hydra/internal/core/config"
	"github.com/dev-namespace/hydra/internal/core/prompt"
	"github.com/dev-namespace/hydra/internal/printer"
	"github.com/dev-namespace/hydra/internal/pty"
	"github.com/dev-namespace/hydra/internal/session"
	"github.com/dev-namespace/hydra/internal/shutdown"
	"github.com/dev-namespace/hydra/internal/vterm"
)

// Outcome classifies how a run ended.
type Outcome int

const (
	// OutcomeAllComplete means the agent emitted the ALL marker.
	OutcomeAllComplete Outcome = iota
	// OutcomeMaxIterations means the iteration budget ran out.
	OutcomeMaxIterations
	// OutcomeStopped means the stop file or a signal ended the run.
	OutcomeStopped
	// OutcomeSpawnFailed means the agent process could not be started.
	OutcomeSpawnFailed
)

func (o Outcome) String() string {
	switch o {
	case OutcomeAllComplete:
		return "all_complete"
	case OutcomeMaxIterations:
		return "max_iterations"
	case OutcomeStopped:
		return "stopped"
	case OutcomeSpawnFailed:
		return "spawn_failed"
	default:
		return fmt.Sprintf("outcome(%d)", int(o))
	}
}

// ExitCode maps an outcome to the process exit status. Exhausting the
// iteration budget is normal termination.
func (o Outcome) ExitCode() int {
	switch o {
	case OutcomeAllComplete, OutcomeMaxIterations:
		return 0
	case OutcomeStopped:
		return 1
	default:
		return 2
	}
}

// Result is the final report of a loop run.
type Result struct {
	Outcome    Outcome
	Iterations int
	Err        error
}

// Stopper is the runner's view of the shutdown controller.
type Stopper interface {
	Requested() bool
	SetTerminator(shutdown.Terminator)
	ClearTerminator()
}

// SpawnFunc starts one agent session for an iteration. promptPath is
// the combined prompt file handed to the agent as its last argument.
type SpawnFunc func(promptPath string) (*session.Session, error)

const (
	pollInterval = 25 * time.Millisecond

	loopRows = 40
	loopCols = 120
)

// Runner executes the iteration loop.
type Runner struct {
	cfg     *config.Config
	prompt  *prompt.Resolved
	stop    Stopper
	spawn   SpawnFunc
	slog    *SessionLog
	out     io.Writer
	p       *printer.Printer
	log     zerolog.Logger
	poll    time.Duration
	timeout time.Duration
}

// New builds a runner. The session log is best-effort: failure to
// create it is reported and the run continues without one.
func New(cfg *config.Config, resolved *prompt.Resolved, stop Stopper, p *printer.Printer, logger zerolog.Logger) *Runner {
	r := &Runner{
		cfg:     cfg,
		prompt:  resolved,
		stop:    stop,
		out:     os.Stdout,
		p:       p,
		log:     logger.With().Str("component", "runner").Logger(),
		poll:    pollInterval,
		timeout: time.Duration(cfg.TimeoutSeconds) * time.Second,
	}
	r.spawn = r.spawnSession

	slog, err := NewSessionLog()
	if err != nil {
		p.Warnf("could not create session log: %v", err)
	} else {
		r.slog = slog
	}
	return r
}

// LogPath returns the session log file path, or "" when no log could
// be created.
func (r *Runner) LogPath() string {
	return r.slog.Path()
}

func (r *Runner) spawnSession(promptPath string) (*session.Session, error) {
	args, err := prompt.BuildArgs(r.cfg.CommandArgs, promptPath)
	if err != nil {
		return nil, err
	}
	rows, cols := terminalSize()
	proc, err := pty.Spawn(r.cfg.Command, args, rows, cols)
	if err != nil {
		return nil, err
	}
	screen := vterm.New(int(rows), int(cols))
	return session.New(proc, screen, 0, session.Options{FailOnExit: true}, r.log), nil
}

// terminalSize reports the controlling terminal's dimensions so the
// agent pty matches what the mirrored output is printed to. Falls back
// to a fixed size when stdout is not a terminal.
func terminalSize() (rows, cols uint16) {
	if w, h, err := term.GetSize(int(os.Stdout.Fd())); err == nil && w > 0 && h > 0 {
		return uint16(h), uint16(w)
	}
	return loopRows, loopCols
}

// Run executes up to MaxIterations agent sessions. The stop file and
// the shutdown flag are checked before every spawn; an observed stop
// file is removed.
func (r *Runner) Run(ctx context.Context) Result {
	max := r.cfg.MaxIterations

	r.p.Infof("starting automated task runner")
	r.p.Infof("prompt: %s (%s)", r.prompt.Path, r.prompt.Source)
	if r.slog != nil {
		r.p.Infof("session log: %s", r.slog.Path())
	}
	defer r.slog.Close()

	r.slog.Log(fmt.Sprintf("Session started - max iterations: %d", max))
	r.slog.Log(fmt.Sprintf("Prompt file: %s", r.prompt.Path))

	promptPath, err := prompt.WriteCombined(r.prompt)
	if err != nil {
		return Result{Outcome: OutcomeSpawnFailed, Err: err}
	}
	defer os.Remove(promptPath)

	for iteration := 1; iteration <= max; iteration++ {
		if r.consumeStopFile() {
			r.p.Infof("stop file detected, exiting gracefully")
			r.slog.Log("Session ended: stop file detected")
			return Result{Outcome: OutcomeStopped, Iterations: iteration - 1}
		}
		if r.stop.Requested() || ctx.Err() != nil {
			r.p.Infof("graceful shutdown complete")
			r.slog.Log("Session ended: graceful shutdown")
			return Result{Outcome: OutcomeStopped, Iterations: iteration - 1}
		}

		r.p.Printf("")
		r.p.Printf("=== Iteration %d/%d ===", iteration, max)
		r.slog.IterationStart(iteration, max)

		sess, err := r.spawn(promptPath)
		if err != nil {
			r.slog.Log(fmt.Sprintf("Session ended: spawn failed: %v", err))
			return Result{
				Outcome:    OutcomeSpawnFailed,
				Iterations: iteration - 1,
				Err:        fmt.Errorf("start agent: %w", err),
			}
		}

		stopped := r.runIteration(ctx, sess)

		r.slog.IterationEnd(iteration, sess.Status(), sess.FailReason())
		_ = sess.Close()

		if stopped {
			r.p.Infof("graceful shutdown complete")
			r.slog.Log("Session ended: terminated")
			return Result{Outcome: OutcomeStopped, Iterations: iteration}
		}

		switch sess.Status() {
		case session.StatusAllComplete:
			r.p.Successf("all tasks complete after %d iteration(s)", iteration)
			r.slog.Log(fmt.Sprintf("Session ended: all tasks complete after %d iterations", iteration))
			return Result{Outcome: OutcomeAllComplete, Iterations: iteration}
		case session.StatusTaskComplete:
			r.p.Infof("task complete, continuing")
		case session.StatusFailed:
			r.p.Warnf("iteration ended without completion signal (%s), continuing", sess.FailReason())
		}
	}

	r.p.Infof("max iterations reached")
	r.slog.Log(fmt.Sprintf("Session ended: max iterations (%d) reached", max))
	return Result{Outcome: OutcomeMaxIterations, Iterations: max}
}

// runIteration polls one session until it reaches a final state or a
// stop is requested. Returns true when the iteration ended because of a
// stop request.
func (r *Runner) runIteration(ctx context.Context, sess *session.Session) bool {
	r.stop.SetTerminator(func(graceful bool) { sess.Kill(graceful) })
	defer r.stop.ClearTerminator()

	deadline := time.Now().Add(r.timeout)

	for sess.Status() == session.StatusRunning {
		data := sess.Poll()
		if len(data) > 0 {
			_, _ = r.out.Write(data)
			r.slog.Append(data)
		}

		if sess.Status() != session.StatusRunning {
			break
		}

		if r.stop.Requested() || ctx.Err() != nil {
			sess.Kill(true)
			r.drainUntilExit(sess)
			return true
		}

		if time.Now().After(deadline) {
			r.log.Warn().Dur("timeout", r.timeout).Msg("iteration timed out")
			sess.Fail("iteration timeout")
			sess.Kill(true)
			return false
		}

		time.Sleep(r.poll)
	}

	// Completion markers terminate the iteration but the child may
	// still be alive; tell it to wind down.
	sess.Kill(true)
	return false
}

// drainUntilExit collects remaining output after a kill so the log
// captures the child's final words.
func (r *Runner) drainUntilExit(sess *session.Session) {
	waitUntil := time.Now().Add(2 * time.Second)
	for time.Now().Before(waitUntil) {
		data := sess.Poll()
		if len(data) > 0 {
			_, _ = r.out.Write(data)
			r.slog.Append(data)
		}
		if sess.Status() != session.StatusRunning {
			return
		}
		time.Sleep(r.poll)
	}
	sess.Kill(false)
}

// consumeStopFile reports whether the stop file exists, removing it so
// the next run starts clean.
func (r *Runner) consumeStopFile() bool {
	if _, err := os.Stat(r.cfg.StopFile); err != nil {
		return false
	}
	_ = os.Remove(r.cfg.StopFile)
	return true
}
