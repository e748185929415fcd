// Package styles provides shared lipgloss styles for CLI and TUI components.
package styles

import (
	"github.com/charmbracelet/lipgloss"
)

// Terminal palette. Indexed colors keep the TUI readable on light and
// dark themes alike.
var (
	ColorActive = lipgloss.Color("11")
	ColorMuted  = lipgloss.Color("8")
	ColorStatus = lipgloss.Color("3")
)

// TabActive styles the label of the focused tab.
var TabActive = lipgloss.NewStyle().
	Bold(true).
	Foreground(ColorActive)

// TabInactive styles the labels of background tabs.
var TabInactive = lipgloss.NewStyle().
	Foreground(ColorMuted)

// TabBar frames the tab strip.
var TabBar = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder()).
	Padding(0, 1)

// Content frames the active session's screen.
var Content = lipgloss.NewStyle().
	Border(lipgloss.RoundedBorder())

// Help styles the key hint line.
var Help = lipgloss.NewStyle().
	Foreground(ColorMuted)

// Status styles transient status messages in the tab bar.
var Status = lipgloss.NewStyle().
	Foreground(ColorStatus)
