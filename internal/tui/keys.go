package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
)

// keyMap holds the bindings the TUI consumes itself. Anything that does
// not match is translated to bytes and forwarded to the active child.
type keyMap struct {
	SwitchTab []key.Binding
	NextTab   key.Binding
	PrevTab   key.Binding
	CloseTab  key.Binding
	Quit      key.Binding
	NewTab    key.Binding
	KillChild key.Binding
}

func defaultKeyMap() keyMap {
	switches := make([]key.Binding, 7)
	names := []string{"f1", "f2", "f3", "f4", "f5", "f6", "f7"}
	for i, n := range names {
		switches[i] = key.NewBinding(key.WithKeys(n))
	}
	return keyMap{
		SwitchTab: switches,
		NextTab:   key.NewBinding(key.WithKeys("ctrl+right"), key.WithHelp("ctrl+→", "next tab")),
		PrevTab:   key.NewBinding(key.WithKeys("ctrl+left"), key.WithHelp("ctrl+←", "prev tab")),
		CloseTab:  key.NewBinding(key.WithKeys("f8"), key.WithHelp("f8", "close tab")),
		Quit:      key.NewBinding(key.WithKeys("f9"), key.WithHelp("f9", "quit")),
		NewTab:    key.NewBinding(key.WithKeys("ctrl+o"), key.WithHelp("ctrl+o", "new tab")),
		KillChild: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "kill agent")),
	}
}

// keyToBytes converts a key event into the byte sequence a terminal
// would send, for forwarding to the child pty.
func keyToBytes(msg tea.KeyMsg) []byte {
	switch msg.Type {
	case tea.KeyRunes:
		b := []byte(string(msg.Runes))
		if msg.Alt {
			return append([]byte{0x1b}, b...)
		}
		return b
	case tea.KeySpace:
		return []byte{' '}
	case tea.KeyEnter:
		return []byte{'\r'}
	case tea.KeyTab:
		return []byte{'\t'}
	case tea.KeyShiftTab:
		return []byte("\x1b[Z")
	case tea.KeyBackspace:
		return []byte{0x7f}
	case tea.KeyEsc:
		return []byte{0x1b}
	case tea.KeyUp:
		return []byte("\x1b[A")
	case tea.KeyDown:
		return []byte("\x1b[B")
	case tea.KeyRight:
		return []byte("\x1b[C")
	case tea.KeyLeft:
		return []byte("\x1b[D")
	case tea.KeyHome:
		return []byte("\x1b[H")
	case tea.KeyEnd:
		return []byte("\x1b[F")
	case tea.KeyPgUp:
		return []byte("\x1b[5~")
	case tea.KeyPgDown:
		return []byte("\x1b[6~")
	case tea.KeyDelete:
		return []byte("\x1b[3~")
	default:
		// Control characters map onto their own key types.
		if msg.Type >= 0 && msg.Type < 32 {
			return []byte{byte(msg.Type)}
		}
		return nil
	}
}
