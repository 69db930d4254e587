package tui

import (
	"github.com/charmbracelet/bubbles/v2/key"
	"github.com/charmbracelet/carousel/internal/tui/components/core/layout"
)

// KeyMap defines the bindings owned by the application itself.
type KeyMap struct {
	Quit,
	Copy,
	Help key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// KeyBindings implements layout.KeyMapProvider
func (k KeyMap) KeyBindings() []key.Binding {
	return []key.Binding{
		k.Copy,
		k.Help,
		k.Quit,
	}
}

// QuizKeyMap defines the bindings of the quiz.
type QuizKeyMap struct {
	Reveal,
	Reset,
	Quit key.Binding
}

func DefaultQuizKeyMap() QuizKeyMap {
	return QuizKeyMap{
		Reveal: key.NewBinding(
			key.WithKeys("enter", "n"),
			key.WithHelp("enter", "next question"),
		),
		Reset: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "retry from here"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "esc", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

// KeyBindings implements layout.KeyMapProvider
func (k QuizKeyMap) KeyBindings() []key.Binding {
	return []key.Binding{
		k.Reveal,
		k.Reset,
		k.Quit,
	}
}

// helpKeyMap groups several binding sets for the help view.
type helpKeyMap struct {
	short []key.Binding
	full  [][]key.Binding
}

// newHelpKeyMap shows short in the compact help and one group per provider
// in the full help.
func newHelpKeyMap(short []key.Binding, providers ...layout.KeyMapProvider) helpKeyMap {
	full := make([][]key.Binding, 0, len(providers))
	for _, p := range providers {
		full = append(full, p.KeyBindings())
	}
	return helpKeyMap{short: short, full: full}
}

// ShortHelp implements help.KeyMap.
func (h helpKeyMap) ShortHelp() []key.Binding {
	return h.short
}

// FullHelp implements help.KeyMap.
func (h helpKeyMap) FullHelp() [][]key.Binding {
	m := [][]key.Binding{}
	for _, group := range h.full {
		for i := 0; i < len(group); i += 4 {
			end := min(i+4, len(group))
			m = append(m, group[i:end])
		}
	}
	return m
}
