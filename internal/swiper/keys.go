package swiper

import (
	"github.com/charmbracelet/bubbles/v2/key"
)

type KeyMap struct {
	Bottom,
	Next key.Binding
}

func DefaultKeyMap() KeyMap {
	return KeyMap{
		Bottom: key.NewBinding(
			key.WithKeys("G", "end"),
			key.WithHelp("G/end", "latest"),
		),
		Next: key.NewBinding(
			key.WithKeys("n", "space"),
			key.WithHelp("n/space", "next"),
		),
	}
}

// KeyBindings implements layout.KeyMapProvider
func (k KeyMap) KeyBindings() []key.Binding {
	return []key.Binding{
		k.Next,
		k.Bottom,
	}
}
