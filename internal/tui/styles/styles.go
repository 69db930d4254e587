package styles

import (
	"image/color"

	"github.com/charmbracelet/bubbles/v2/help"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/exp/charmtone"
)

type Theme struct {
	Primary   color.Color
	Secondary color.Color
	FgBase    color.Color
	FgMuted   color.Color
	BgSubtle  color.Color
	Error     color.Color
	Warning   color.Color
	Info      color.Color

	styles *Styles
}

type Styles struct {
	Base     lipgloss.Style
	Title    lipgloss.Style
	Body     lipgloss.Style
	Muted    lipgloss.Style
	Status   lipgloss.Style
	Badge    lipgloss.Style
	Selected lipgloss.Style

	InfoMsg  lipgloss.Style
	WarnMsg  lipgloss.Style
	ErrorMsg lipgloss.Style

	Help help.Styles
}

var current = defaultTheme()

// CurrentTheme returns the theme in use.
func CurrentTheme() *Theme {
	return current
}

func defaultTheme() *Theme {
	return &Theme{
		Primary:   charmtone.Charple,
		Secondary: charmtone.Dolly,
		FgBase:    charmtone.Ash,
		FgMuted:   charmtone.Squid,
		BgSubtle:  charmtone.Charcoal,
		Error:     charmtone.Sriracha,
		Warning:   charmtone.Zest,
		Info:      charmtone.Malibu,
	}
}

// S returns the styles derived from the theme, built once.
func (t *Theme) S() *Styles {
	if t.styles == nil {
		t.styles = t.buildStyles()
	}
	return t.styles
}

func (t *Theme) buildStyles() *Styles {
	base := lipgloss.NewStyle().Foreground(t.FgBase)
	return &Styles{
		Base:     base,
		Title:    base.Bold(true).Foreground(t.Primary),
		Body:     base,
		Muted:    base.Foreground(t.FgMuted),
		Status:   base.Background(t.BgSubtle).Padding(0, 1),
		Badge:    base.Bold(true).Foreground(t.FgBase).Background(t.Secondary).Padding(0, 1),
		Selected: base.Foreground(t.Secondary),
		InfoMsg:  base.Foreground(t.Info),
		WarnMsg:  base.Foreground(t.Warning),
		ErrorMsg: base.Foreground(t.Error),
		Help: help.Styles{
			ShortKey:       base.Foreground(t.FgMuted),
			ShortDesc:      base.Foreground(t.FgMuted).Faint(true),
			ShortSeparator: base.Foreground(t.BgSubtle),
			Ellipsis:       base.Foreground(t.BgSubtle),
			FullKey:        base.Foreground(t.FgMuted),
			FullDesc:       base.Foreground(t.FgMuted).Faint(true),
			FullSeparator:  base.Foreground(t.BgSubtle),
		},
	}
}
