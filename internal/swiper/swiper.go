package swiper

import (
	"slices"
	"sync/atomic"

	"github.com/charmbracelet/bubbles/v2/help"
	"github.com/charmbracelet/bubbles/v2/key"
	"github.com/charmbracelet/bubbles/v2/spinner"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/carousel/internal/pager"
	"github.com/charmbracelet/carousel/internal/tui/components/core/layout"
	"github.com/charmbracelet/carousel/internal/tui/util"
)

// minWindowLength keeps one neighbour mounted on each side of the displayed
// item, otherwise every settle would land on a window edge.
const minWindowLength = 3

// Item is anything the swiper can mount. Ids must be unique and stable.
type Item interface {
	ID() string
	View() string
}

// Pager is the paging primitive the swiper drives. It shows the mounted
// children, scrolls between them and reports pager.SettledMsg,
// pager.MeasuredMsg and pager.ContainerMeasuredMsg.
type Pager[T Item] interface {
	util.Model
	layout.Sizeable

	SetChildren(generation int, children []T, index int) tea.Cmd
	SetEnabled(enabled bool)
	ScrollTo(index int, animated bool) tea.Cmd
	ScrollBy(delta int, animated bool) tea.Cmd
}

// Swiper pages through a list of items while only a window of them is
// mounted in the pager.
type Swiper[T Item] interface {
	util.Model
	layout.Sizeable
	help.KeyMap

	// SetItems replaces the full list. Appending a single item to the tail
	// grows the window in place, any other change re-slices it.
	SetItems(items []T) tea.Cmd
	Items() []T

	// ScrollTo and ScrollBy are queued until their target is mounted and
	// measured. ScrollTo takes an index into the full list.
	ScrollTo(index int, animated bool) tea.Cmd
	ScrollBy(delta int, animated bool) tea.Cmd
	Next() tea.Cmd
	ScrollToBottom() tea.Cmd

	Index() int
	Current() (T, bool)
	Window() Window
	Children() []T
	IsRendering() bool
	HasUnread() bool
	Generation() int
	Pending() []Request
}

type overlayMsg struct {
	id  int
	seq int
}

// mount is what the pager was last given.
type mount struct {
	ok          bool
	generation  int
	fingerprint uint64
}

type confOptions struct {
	width, height  int
	initialIndex   int
	windowLength   int
	renderAll      bool
	skipBlocked    bool
	showSpinner    bool
	debug          bool
	keyMap         KeyMap
	reporter       Reporter
	onIndexChanged func(index int)
}

type Option func(*confOptions)

// WithIndex sets the item displayed first.
func WithIndex(index int) Option {
	return func(o *confOptions) {
		o.initialIndex = index
	}
}

// WithOnIndexChanged is called with the full list index every time the
// displayed item changes.
func WithOnIndexChanged(fn func(index int)) Option {
	return func(o *confOptions) {
		o.onIndexChanged = fn
	}
}

// WithWindowLength sets how many items are mounted at once.
func WithWindowLength(length int) Option {
	return func(o *confOptions) {
		if length <= 0 {
			return
		}
		o.windowLength = max(length, minWindowLength)
	}
}

// WithRenderAll mounts the whole list.
func WithRenderAll(renderAll bool) Option {
	return func(o *confOptions) {
		o.renderAll = renderAll
	}
}

// WithReporter sets where handled failures go. They are logged by default.
func WithReporter(r Reporter) Option {
	return func(o *confOptions) {
		o.reporter = r
	}
}

// WithSkipBlockedRequests lets queued scrolls run past a newer request
// whose target is not ready yet. By default the drain stops at the first
// blocked request, so older requests wait behind it even when their own
// target is ready.
func WithSkipBlockedRequests() Option {
	return func(o *confOptions) {
		o.skipBlocked = true
	}
}

// WithSpinner animates the loading indicator.
func WithSpinner() Option {
	return func(o *confOptions) {
		o.showSpinner = true
	}
}

// WithDebug shows the window bookkeeping under the pager.
func WithDebug(debug bool) Option {
	return func(o *confOptions) {
		o.debug = debug
	}
}

func WithKeyMap(keyMap KeyMap) Option {
	return func(o *confOptions) {
		o.keyMap = keyMap
	}
}

func WithSize(width, height int) Option {
	return func(o *confOptions) {
		o.width = width
		o.height = height
	}
}

var lastID atomic.Int64

type swiper[T Item] struct {
	*confOptions

	pager    Pager[T]
	items    []T
	indexMap map[string]int
	state    state[T]
	steps    []step[T]

	coalescer   coalescer
	forceFinish bool
	propagated  int
	// toBottom holds a ScrollToBottom made while rendering.
	toBottom   bool
	overlay    bool
	overlaySeq int
	mounted    mount

	spin spinner.Model
}

// New creates a swiper over items, driving p.
func New[T Item](p Pager[T], items []T, opts ...Option) Swiper[T] {
	s := &swiper[T]{
		confOptions: &confOptions{
			windowLength: DefaultWindowLength,
			keyMap:       DefaultKeyMap(),
			reporter:     slogReporter{},
		},
		pager:     p,
		items:     items,
		steps:     pipeline[T](),
		coalescer: coalescer{id: int(lastID.Add(1))},
		spin:      spinner.New(spinner.WithSpinner(spinner.MiniDot)),
	}
	for _, opt := range opts {
		opt(s.confOptions)
	}
	s.reindex()
	s.state = s.initialState(0)
	s.propagated = s.state.externalIndex
	return s
}

// initialState mounts the window around the initial index and starts out
// rendering it.
func (s *swiper[T]) initialState(generation int) state[T] {
	st := state[T]{
		generation:         generation,
		measuredGeneration: -1,
		index:              NotFound,
		externalIndex:      NotFound,
		registry:           make(map[string]struct{}),
		rendering:          true,
		direction:          1,
	}
	if len(s.items) == 0 {
		return st
	}

	external := max(0, min(s.initialIndex, len(s.items)-1))
	w, index, err := s.computeWindow(external)
	if err != nil {
		s.report(err)
		return st
	}
	st.window = w
	st.index = index
	st.externalIndex = external
	st.children = slices.Clone(s.items[w.Start:w.End])
	st.renderedWith = len(s.items)
	return st
}

// Init implements Swiper.
func (s *swiper[T]) Init() tea.Cmd {
	var cmds []tea.Cmd
	if s.width > 0 && s.height > 0 {
		cmds = append(cmds, s.SetSize(s.width, s.height))
	}
	cmds = append(cmds, s.pager.Init(), s.sync())
	return tea.Batch(cmds...)
}

// Update implements Swiper.
func (s *swiper[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pager.SettledMsg:
		return s, s.update(func() {
			s.state.index = msg.Index
		})
	case pager.MeasuredMsg:
		return s, s.registerChild(msg.Generation, msg.ID)
	case pager.ContainerMeasuredMsg:
		return s, s.containerMeasured(msg.Generation)
	case overlayMsg:
		if msg.id != s.coalescer.id || msg.seq != s.overlaySeq || !s.state.rendering {
			return s, nil
		}
		return s, s.rerender(s.state.index)
	case flushMsg:
		if !s.coalescer.take(msg) {
			return s, nil
		}
		switch msg.kind {
		case flushChildren:
			return s, s.updateChildren()
		case flushRendering:
			return s, s.finishRendering()
		}
		return s, nil
	case spinner.TickMsg:
		if !s.showSpinner || !s.state.rendering {
			return s, nil
		}
		var cmd tea.Cmd
		s.spin, cmd = s.spin.Update(msg)
		return s, cmd
	case tea.KeyPressMsg:
		switch {
		case key.Matches(msg, s.keyMap.Bottom):
			return s, s.ScrollToBottom()
		case key.Matches(msg, s.keyMap.Next):
			return s, s.Next()
		}
	}
	return s, s.forward(msg)
}

func (s *swiper[T]) forward(msg tea.Msg) tea.Cmd {
	u, cmd := s.pager.Update(msg)
	if p, ok := u.(Pager[T]); ok {
		s.pager = p
	}
	return cmd
}

// sync hands the mounted children and the interaction state to the pager,
// and raises the loading overlay when a rewindow is due.
func (s *swiper[T]) sync() tea.Cmd {
	var cmds []tea.Cmd
	s.pager.SetEnabled(!s.state.rendering)

	m := mount{ok: true, generation: s.state.generation, fingerprint: fingerprint(s.state.children)}
	if m != s.mounted {
		s.mounted = m
		cmds = append(cmds, s.pager.SetChildren(s.state.generation, slices.Clone(s.state.children), s.state.index))
	}

	switch {
	case s.state.rendering && !s.overlay:
		s.overlay = true
		s.overlaySeq++
		cmds = append(cmds, util.CmdHandler(overlayMsg{id: s.coalescer.id, seq: s.overlaySeq}))
		if s.showSpinner {
			cmds = append(cmds, s.spin.Tick)
		}
	case !s.state.rendering:
		s.overlay = false
	}
	return tea.Batch(cmds...)
}

// SetItems implements Swiper.
func (s *swiper[T]) SetItems(items []T) tea.Cmd {
	return s.update(func() {
		s.items = items
		s.reindex()
		if len(s.state.children) == 0 && len(items) > 0 {
			s.state = s.initialState(s.state.generation ^ 1)
		}
	})
}

// Items implements Swiper.
func (s *swiper[T]) Items() []T {
	return s.items
}

// ScrollTo implements Swiper.
func (s *swiper[T]) ScrollTo(index int, animated bool) tea.Cmd {
	if index < 0 || index >= len(s.items) {
		s.reportIndexError("scrollTo", index)
		return nil
	}
	return s.enqueue(Request{Op: OpScrollTo, Arg: index, Animated: animated})
}

// ScrollBy implements Swiper.
func (s *swiper[T]) ScrollBy(delta int, animated bool) tea.Cmd {
	return s.enqueue(Request{Op: OpScrollBy, Arg: delta, Animated: animated})
}

// Next implements Swiper.
func (s *swiper[T]) Next() tea.Cmd {
	return s.ScrollBy(1, true)
}

// ScrollToBottom implements Swiper. When the last item is not mounted, the
// window is first rebuilt to end at the tail while keeping the displayed
// item on screen. While rendering, the scroll runs once rendering finishes.
func (s *swiper[T]) ScrollToBottom() tea.Cmd {
	if len(s.items) == 0 {
		return nil
	}
	if s.state.rendering {
		s.toBottom = true
		return nil
	}
	s.toBottom = false
	last := len(s.items) - 1

	var cmds []tea.Cmd
	if n := len(s.state.children); n == 0 || s.state.children[n-1].ID() != s.items[last].ID() {
		cmds = append(cmds, s.update(func() {
			if err := s.rewindowToScrollTo(last); err != nil {
				s.report(err, "target", last)
			}
		}))
	}
	cmds = append(cmds, s.ScrollTo(last, true))
	return tea.Batch(cmds...)
}

// Index implements Swiper.
func (s *swiper[T]) Index() int {
	return s.state.externalIndex
}

// Current implements Swiper.
func (s *swiper[T]) Current() (T, bool) {
	var zero T
	if s.state.index < 0 || s.state.index >= len(s.state.children) {
		return zero, false
	}
	return s.state.children[s.state.index], true
}

// Window implements Swiper.
func (s *swiper[T]) Window() Window {
	return s.state.window
}

// Children implements Swiper.
func (s *swiper[T]) Children() []T {
	return s.state.children
}

// IsRendering implements Swiper.
func (s *swiper[T]) IsRendering() bool {
	return s.state.rendering
}

// HasUnread implements Swiper.
func (s *swiper[T]) HasUnread() bool {
	return s.state.unread
}

// Generation implements Swiper.
func (s *swiper[T]) Generation() int {
	return s.state.generation
}

// Pending implements Swiper.
func (s *swiper[T]) Pending() []Request {
	return slices.Clone(s.state.requests)
}

// SetSize implements Swiper.
func (s *swiper[T]) SetSize(width, height int) tea.Cmd {
	s.width = width
	s.height = height
	return s.pager.SetSize(width, max(height-s.chromeHeight(), 0))
}

// GetSize implements Swiper.
func (s *swiper[T]) GetSize() (int, int) {
	return s.width, s.height
}

// ShortHelp implements help.KeyMap.
func (s *swiper[T]) ShortHelp() []key.Binding {
	return []key.Binding{s.keyMap.Next, s.keyMap.Bottom}
}

// FullHelp implements help.KeyMap.
func (s *swiper[T]) FullHelp() [][]key.Binding {
	return [][]key.Binding{s.ShortHelp()}
}
