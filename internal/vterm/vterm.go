// Package vterm maintains an in-memory terminal screen for a pty
// session so the TUI can render child output without owning the real
// terminal.
package vterm

import (
	"github.com/tuzig/vt10x"
)

// Cell is a single screen position with its resolved colors.
type Cell struct {
	Char rune
	FG   vt10x.Color
	BG   vt10x.Color
}

// DefaultFG and DefaultBG mark cells that carry no explicit color.
const (
	DefaultFG = vt10x.DefaultFG
	DefaultBG = vt10x.DefaultBG
)

// Terminal is the screen-state surface sessions write into.
type Terminal interface {
	// Feed interprets raw child output, advancing the screen state.
	Feed(p []byte)
	// Resize changes the screen dimensions, reflowing as the emulator
	// sees fit.
	Resize(rows, cols int)
	// Snapshot returns the current screen as a row-major cell grid.
	Snapshot() [][]Cell
	// Contents returns the screen as plain text, one line per row.
	Contents() string
	// Size returns the current rows and cols.
	Size() (rows, cols int)
}

// VT adapts a vt10x emulator to the Terminal interface. Safe for
// concurrent use.
type VT struct {
	term vt10x.Terminal
}

var _ Terminal = (*VT)(nil)

// New creates a terminal emulator with the given dimensions.
func New(rows, cols int) *VT {
	return &VT{
		term: vt10x.New(vt10x.WithSize(cols, rows)),
	}
}

func (v *VT) Feed(p []byte) {
	_, _ = v.term.Write(p)
}

func (v *VT) Resize(rows, cols int) {
	v.term.Resize(cols, rows)
}

func (v *VT) Size() (rows, cols int) {
	v.term.Lock()
	defer v.term.Unlock()
	c, r := v.term.Size()
	return r, c
}

func (v *VT) Snapshot() [][]Cell {
	v.term.Lock()
	defer v.term.Unlock()

	cols, rows := v.term.Size()
	grid := make([][]Cell, rows)
	for y := 0; y < rows; y++ {
		row := make([]Cell, cols)
		for x := 0; x < cols; x++ {
			g := v.term.Cell(x, y)
			ch := g.Char
			if ch == 0 {
				ch = ' '
			}
			row[x] = Cell{Char: ch, FG: g.FG, BG: g.BG}
		}
		grid[y] = row
	}
	return grid
}

func (v *VT) Contents() string {
	// vt10x's String locks internally; taking the lock here would deadlock.
	return v.term.String()
}
