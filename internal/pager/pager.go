package pager

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/v2/key"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/carousel/internal/tui/components/core/layout"
	"github.com/charmbracelet/carousel/internal/tui/util"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
)

type Item interface {
	util.Model
	layout.Sizeable
	ID() string
}

// Pager shows one mounted child per page and reports when children have
// been laid out and when the current page settles.
type Pager[T Item] interface {
	util.Model
	layout.Sizeable
	layout.Focusable

	SetChildren(generation int, children []T, index int) tea.Cmd
	SetEnabled(enabled bool)
	Enabled() bool
	ScrollTo(index int, animated bool) tea.Cmd
	ScrollBy(delta int, animated bool) tea.Cmd
	Index() int
	Generation() int
	Children() []T
}

// SettledMsg is sent when the pager comes to rest on a page.
type SettledMsg struct {
	Index int
}

// MeasuredMsg is sent once per child and generation, after the child has
// been rendered at the pager's size.
type MeasuredMsg struct {
	Generation int
	ID         string
}

// ContainerMeasuredMsg is sent once per generation when the pager itself
// has a size to lay children out in.
type ContainerMeasuredMsg struct {
	Generation int
}

type settleMsg struct {
	generation int
	index      int
}

const (
	NoIndex = -1

	DefaultSettleDelay = 120 * time.Millisecond
	defaultPageStep    = 5
)

type confOptions struct {
	width, height int
	keyMap        KeyMap
	settleDelay   time.Duration
	focused       bool
	enableMouse   bool
	indicator     bool
}

type pager[T Item] struct {
	*confOptions

	generation int
	children   []T
	index      int
	enabled    bool

	// heights of the children measured for the current generation
	measured          map[string]int
	containerMeasured bool
}

type Option func(*confOptions)

// WithSize sets the size of the pager.
func WithSize(width, height int) Option {
	return func(o *confOptions) {
		o.width = width
		o.height = height
	}
}

// WithSettleDelay sets how long an animated scroll takes to settle. Zero
// settles immediately.
func WithSettleDelay(d time.Duration) Option {
	return func(o *confOptions) {
		o.settleDelay = d
	}
}

func WithKeyMap(keyMap KeyMap) Option {
	return func(o *confOptions) {
		o.keyMap = keyMap
	}
}

func WithFocus(focus bool) Option {
	return func(o *confOptions) {
		o.focused = focus
	}
}

func WithEnableMouse() Option {
	return func(o *confOptions) {
		o.enableMouse = true
	}
}

// WithIndicator renders a "current/total" line under the page.
func WithIndicator() Option {
	return func(o *confOptions) {
		o.indicator = true
	}
}

func New[T Item](opts ...Option) Pager[T] {
	p := &pager[T]{
		confOptions: &confOptions{
			keyMap:      DefaultKeyMap(),
			settleDelay: DefaultSettleDelay,
			focused:     true,
		},
		index:    NoIndex,
		enabled:  true,
		measured: make(map[string]int),
	}
	for _, opt := range opts {
		opt(p.confOptions)
	}
	return p
}

// Init implements Pager.
func (p *pager[T]) Init() tea.Cmd {
	return p.measure()
}

// Update implements Pager.
func (p *pager[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case settleMsg:
		if msg.generation != p.generation || len(p.children) == 0 {
			return p, nil
		}
		p.index = p.clamp(msg.index)
		return p, util.CmdHandler(SettledMsg{Index: p.index})
	case tea.MouseWheelMsg:
		if !p.enableMouse || !p.enabled {
			return p, nil
		}
		switch msg.Button {
		case tea.MouseWheelDown:
			return p, p.ScrollBy(1, true)
		case tea.MouseWheelUp:
			return p, p.ScrollBy(-1, true)
		}
		return p, nil
	case tea.KeyPressMsg:
		if !p.focused || !p.enabled {
			return p, nil
		}
		switch {
		case key.Matches(msg, p.keyMap.Down):
			return p, p.ScrollBy(1, true)
		case key.Matches(msg, p.keyMap.Up):
			return p, p.ScrollBy(-1, true)
		case key.Matches(msg, p.keyMap.PageDown):
			return p, p.ScrollBy(defaultPageStep, false)
		case key.Matches(msg, p.keyMap.PageUp):
			return p, p.ScrollBy(-defaultPageStep, false)
		case key.Matches(msg, p.keyMap.Home):
			return p, p.ScrollTo(0, true)
		}
	}
	return p, nil
}

// View implements Pager.
func (p *pager[T]) View() string {
	if p.width <= 0 || p.height <= 0 || len(p.children) == 0 || p.index < 0 {
		return ""
	}

	height := p.height
	if p.indicator {
		height--
	}

	lines := strings.Split(p.children[p.index].View(), "\n")
	if len(lines) > height {
		lines = lines[:max(height, 0)]
	}
	for i, line := range lines {
		lines[i] = ansi.Truncate(line, p.width, "…")
	}
	view := lipgloss.NewStyle().
		Width(p.width).
		Height(height).
		Render(strings.Join(lines, "\n"))

	if !p.indicator {
		return view
	}
	indicator := lipgloss.NewStyle().
		Width(p.width).
		AlignHorizontal(lipgloss.Right).
		Render(fmt.Sprintf("%d/%d", p.index+1, len(p.children)))
	return lipgloss.JoinVertical(lipgloss.Left, view, indicator)
}

// SetChildren implements Pager. A new generation remounts the pager: the
// measurements are dropped and the page is moved to index. Within the same
// generation the children are updated in place and the current page is
// kept.
func (p *pager[T]) SetChildren(generation int, children []T, index int) tea.Cmd {
	if generation != p.generation || p.index == NoIndex {
		p.generation = generation
		p.measured = make(map[string]int)
		p.containerMeasured = false
		p.children = children
		p.index = p.clamp(index)
		return p.measure()
	}

	p.children = children
	p.index = p.clamp(p.index)
	return p.measure()
}

// measure lays out every child that has not been measured in this
// generation and reports it. Nothing is measured until the pager has a size.
func (p *pager[T]) measure() tea.Cmd {
	if p.width <= 0 || p.height <= 0 {
		return nil
	}

	var cmds []tea.Cmd
	for _, child := range p.children {
		id := child.ID()
		if _, ok := p.measured[id]; ok {
			continue
		}
		if cmd := child.SetSize(p.width, p.height); cmd != nil {
			cmds = append(cmds, cmd)
		}
		p.measured[id] = lipgloss.Height(child.View())
		cmds = append(cmds, util.CmdHandler(MeasuredMsg{Generation: p.generation, ID: id}))
	}
	if !p.containerMeasured {
		p.containerMeasured = true
		cmds = append(cmds, util.CmdHandler(ContainerMeasuredMsg{Generation: p.generation}))
	}
	return tea.Batch(cmds...)
}

func (p *pager[T]) clamp(index int) int {
	if len(p.children) == 0 {
		return NoIndex
	}
	return max(0, min(index, len(p.children)-1))
}

// ScrollTo implements Pager.
func (p *pager[T]) ScrollTo(index int, animated bool) tea.Cmd {
	if len(p.children) == 0 {
		return nil
	}
	index = p.clamp(index)
	if animated && p.settleDelay > 0 {
		generation := p.generation
		return tea.Tick(p.settleDelay, func(time.Time) tea.Msg {
			return settleMsg{generation: generation, index: index}
		})
	}
	p.index = index
	return util.CmdHandler(SettledMsg{Index: index})
}

// ScrollBy implements Pager.
func (p *pager[T]) ScrollBy(delta int, animated bool) tea.Cmd {
	return p.ScrollTo(p.index+delta, animated)
}

// SetEnabled implements Pager.
func (p *pager[T]) SetEnabled(enabled bool) {
	p.enabled = enabled
}

// Enabled implements Pager.
func (p *pager[T]) Enabled() bool {
	return p.enabled
}

// Index implements Pager.
func (p *pager[T]) Index() int {
	return p.index
}

// Generation implements Pager.
func (p *pager[T]) Generation() int {
	return p.generation
}

// Children implements Pager.
func (p *pager[T]) Children() []T {
	return p.children
}

// SetSize implements Pager.
func (p *pager[T]) SetSize(width int, height int) tea.Cmd {
	if width == p.width && height == p.height {
		return nil
	}
	p.width = width
	p.height = height
	// Children are laid out again at the new size, the generation stays.
	p.measured = make(map[string]int)
	return p.measure()
}

// GetSize implements Pager.
func (p *pager[T]) GetSize() (int, int) {
	return p.width, p.height
}

// Focus implements Pager.
func (p *pager[T]) Focus() tea.Cmd {
	p.focused = true
	return nil
}

// Blur implements Pager.
func (p *pager[T]) Blur() tea.Cmd {
	p.focused = false
	return nil
}

// IsFocused implements Pager.
func (p *pager[T]) IsFocused() bool {
	return p.focused
}
