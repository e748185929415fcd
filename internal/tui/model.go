// Package tui is the interactive mode: up to MaxTabs concurrent agent
// sessions, each in its own pty, rendered through an in-memory
// terminal.
package tui

import (
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/dev-namespace/hydra/internal/core/config"
	"github.com/dev-namespace/hydra/internal/core/prompt"
	"github.com/dev-namespace/hydra/internal/pty"
	"github.com/dev-namespace/hydra/internal/session"
	"github.com/dev-namespace/hydra/internal/vterm"
)

const pollInterval = 25 * time.Millisecond

// tab bar takes three rows (text plus border); the content pane adds
// its own border.
const (
	tabBarHeight   = 3
	contentBorderX = 2
	contentBorderY = 2
	minContentRows = 1
	minContentCols = 1
)

// pollTickMsg triggers a poll of every session.
type pollTickMsg struct{}

func schedulePoll() tea.Cmd {
	return tea.Tick(pollInterval, func(time.Time) tea.Msg {
		return pollTickMsg{}
	})
}

// Stopper is the TUI's read-only view of the shutdown flag.
type Stopper interface {
	Requested() bool
}

// spawnFunc creates a session for a new tab at the given dimensions.
type spawnFunc func(slot int, rows, cols uint16) (*session.Session, error)

// Model is the Bubble Tea model for interactive mode.
type Model struct {
	cfg   *config.Config
	stop  Stopper
	spawn spawnFunc
	log   zerolog.Logger

	promptPath string // temp file handed to every spawned agent

	tabs   []*session.Session
	active int

	width, height            int
	contentRows, contentCols int
	sized                    bool

	status   string // transient message shown in the tab bar line
	quitting bool
	err      error

	keys keyMap
}

// New builds the model. The resolved prompt is written to a temp file
// once; every tab's agent receives that path as its final argument.
func New(cfg *config.Config, resolved *prompt.Resolved, stop Stopper, logger zerolog.Logger) (*Model, error) {
	f, err := os.CreateTemp("", "hydra-tui-prompt-*.md")
	if err != nil {
		return nil, fmt.Errorf("create prompt temp file: %w", err)
	}
	if _, err := f.WriteString(resolved.Content); err != nil {
		f.Close()
		os.Remove(f.Name())
		return nil, fmt.Errorf("write prompt temp file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(f.Name())
		return nil, fmt.Errorf("close prompt temp file: %w", err)
	}

	m := &Model{
		cfg:        cfg,
		stop:       stop,
		log:        logger.With().Str("component", "tui").Logger(),
		promptPath: f.Name(),
		keys:       defaultKeyMap(),
	}
	m.spawn = m.spawnSession
	return m, nil
}

func (m *Model) spawnSession(slot int, rows, cols uint16) (*session.Session, error) {
	args, err := prompt.BuildArgs(m.cfg.CommandArgs, m.promptPath)
	if err != nil {
		return nil, err
	}
	proc, err := pty.Spawn(m.cfg.Command, args, rows, cols)
	if err != nil {
		return nil, err
	}
	term := vterm.New(int(rows), int(cols))
	return session.New(proc, term, slot, session.Options{}, m.log), nil
}

// Cleanup kills remaining children and removes the prompt temp file.
// Called after the program exits.
func (m *Model) Cleanup() {
	for _, s := range m.tabs {
		s.Kill(true)
		_ = s.Close()
	}
	os.Remove(m.promptPath)
}

// Err reports a fatal error that ended the TUI, if any.
func (m *Model) Err() error {
	return m.err
}

func (m *Model) Init() tea.Cmd {
	return schedulePoll()
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.applySize(msg.Width, msg.Height)
		if !m.sized {
			m.sized = true
			// First size report; open the initial tab now that the
			// child's dimensions are known.
			if len(m.tabs) == 0 {
				m.openTab()
				if len(m.tabs) == 0 {
					// The very first spawn failing is fatal.
					m.err = fmt.Errorf("open initial tab: %s", m.status)
					return m.quit()
				}
			}
		}
		return m, nil

	case pollTickMsg:
		if m.stop.Requested() {
			return m.quit()
		}
		for _, s := range m.tabs {
			s.Poll()
		}
		return m, schedulePoll()

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m *Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""

	for i, b := range m.keys.SwitchTab {
		if key.Matches(msg, b) {
			if i < len(m.tabs) {
				m.active = i
			}
			return m, nil
		}
	}

	switch {
	case key.Matches(msg, m.keys.NextTab):
		m.cycleTab(1)
		return m, nil

	case key.Matches(msg, m.keys.PrevTab):
		m.cycleTab(-1)
		return m, nil

	case key.Matches(msg, m.keys.Quit):
		return m.quit()

	case key.Matches(msg, m.keys.CloseTab):
		m.closeActive()
		if len(m.tabs) == 0 {
			return m.quit()
		}
		return m, nil

	case key.Matches(msg, m.keys.NewTab):
		m.openTab()
		return m, nil

	case key.Matches(msg, m.keys.KillChild):
		if s := m.activeSession(); s != nil {
			s.Kill(true)
		}
		return m, nil
	}

	if s := m.activeSession(); s != nil {
		if b := keyToBytes(msg); len(b) > 0 {
			if err := s.SendInput(b); err != nil {
				m.log.Debug().Err(err).Msg("input dropped")
			}
		}
	}
	return m, nil
}

func (m *Model) quit() (tea.Model, tea.Cmd) {
	m.quitting = true
	for _, s := range m.tabs {
		s.Kill(true)
	}
	return m, tea.Quit
}

// openTab spawns a session in the next slot, respecting the tab cap.
func (m *Model) openTab() {
	if len(m.tabs) >= m.cfg.MaxTabs {
		m.status = fmt.Sprintf("tab limit reached (%d)", m.cfg.MaxTabs)
		return
	}

	rows, cols := m.contentDims()
	s, err := m.spawn(len(m.tabs)+1, rows, cols)
	if err != nil {
		m.status = fmt.Sprintf("spawn failed: %v", err)
		m.log.Error().Err(err).Msg("could not open tab")
		return
	}

	m.tabs = append(m.tabs, s)
	m.active = len(m.tabs) - 1
}

// cycleTab moves the active index by delta, wrapping at both ends.
func (m *Model) cycleTab(delta int) {
	n := len(m.tabs)
	if n == 0 {
		return
	}
	m.active = (m.active + delta + n) % n
}

// closeActive terminates and removes the active tab. Remaining tabs
// keep their order; the active index clamps to the new tail.
func (m *Model) closeActive() {
	s := m.activeSession()
	if s == nil {
		return
	}

	s.Kill(true)
	_ = s.Close()

	m.tabs = append(m.tabs[:m.active], m.tabs[m.active+1:]...)
	if m.active >= len(m.tabs) && m.active > 0 {
		m.active = len(m.tabs) - 1
	}
}

func (m *Model) activeSession() *session.Session {
	if m.active < 0 || m.active >= len(m.tabs) {
		return nil
	}
	return m.tabs[m.active]
}

// applySize recomputes the content area and resizes every session's
// pty and screen to the identical dimensions.
func (m *Model) applySize(width, height int) {
	m.width = width
	m.height = height

	rows := height - tabBarHeight - contentBorderY
	cols := width - contentBorderX
	if rows < minContentRows {
		rows = minContentRows
	}
	if cols < minContentCols {
		cols = minContentCols
	}
	m.contentRows = rows
	m.contentCols = cols

	for _, s := range m.tabs {
		if err := s.Resize(uint16(rows), uint16(cols)); err != nil {
			m.log.Debug().Err(err).Msg("resize failed")
		}
	}
}

func (m *Model) contentDims() (rows, cols uint16) {
	if m.contentRows <= 0 || m.contentCols <= 0 {
		return 24, 80
	}
	return uint16(m.contentRows), uint16(m.contentCols)
}
