package swiper

import (
	"fmt"
	"slices"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/carousel/internal/pager"
	"github.com/charmbracelet/carousel/internal/tui/util"
	"github.com/charmbracelet/x/ansi"
	"github.com/charmbracelet/x/exp/golden"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwiperInitialRender(t *testing.T) {
	t.Parallel()

	p := newFakePager()
	var changes []int
	s := New(p, createItems(20),
		WithWindowLength(5),
		WithIndex(10),
		WithOnIndexChanged(func(index int) { changes = append(changes, index) }),
	).(*swiper[testItem])

	assert.True(t, s.IsRendering(), "starts out rendering")
	execCmd(t, s, s.Init())

	assert.False(t, s.IsRendering())
	assert.True(t, p.enabled)
	assert.Equal(t, Window{Start: 8, End: 13}, s.Window())
	assert.Equal(t, 10, s.Index())
	assert.Equal(t, 0, s.Generation(), "an already centered window is not rebuilt")
	assert.Equal(t, []string{"item-8", "item-9", "item-10", "item-11", "item-12"}, ids(p.children))
	assert.Equal(t, 2, p.index)
	assert.Empty(t, changes, "the initial index is not reported as a change")

	current, ok := s.Current()
	require.True(t, ok)
	assert.Equal(t, "item-10", current.ID())
}

func TestSwiperIdempotentUpdate(t *testing.T) {
	t.Parallel()

	p := newFakePager()
	s := newRenderedSwiper(t, p, createItems(20), WithWindowLength(5), WithIndex(10))
	before := s.state.clone()
	sets := p.sets

	execCmd(t, s, s.update(func() {}))

	assert.True(t, s.state.equal(before))
	assert.Equal(t, sets, p.sets, "the pager is not remounted")
}

func TestSwiperRoundTrip(t *testing.T) {
	t.Parallel()

	s := newRenderedSwiper(t, newFakePager(), createItems(20), WithWindowLength(5), WithIndex(4))
	for internal := range s.state.children {
		external := s.externalIndexOf(internal)
		require.NotEqual(t, NotFound, external)
		assert.Equal(t, internal, s.internalIndexOf(external))
	}
	assert.Equal(t, NotFound, s.internalIndexOf(15), "items outside the window are not resolvable")
}

func TestSwiperIndexResolutionFailure(t *testing.T) {
	t.Parallel()

	r := &reports{}
	s := newRenderedSwiper(t, newFakePager(), createItems(5), WithReporter(r))

	assert.Equal(t, NotFound, s.externalIndexOf(42))
	require.Len(t, r.errs, 1)
	assert.ErrorIs(t, r.errs[0], ErrIndexResolution)
	assert.Contains(t, r.args[0], "arg_index")
}

func TestSwiperRewindowAtEdge(t *testing.T) {
	t.Parallel()

	p := newFakePager()
	var changes []int
	s := newRenderedSwiper(t, p, createItems(10),
		WithWindowLength(5),
		WithIndex(6),
		WithOnIndexChanged(func(index int) { changes = append(changes, index) }),
	)
	require.Equal(t, Window{Start: 4, End: 9}, s.Window())

	execCmd(t, s, s.ScrollBy(2, true))

	assert.False(t, s.IsRendering())
	assert.Equal(t, 8, s.Index())
	assert.Equal(t, Window{Start: 6, End: 10}, s.Window())
	assert.Equal(t, 1, s.Generation())
	assert.Equal(t, []string{"item-6", "item-7", "item-8", "item-9"}, ids(p.children))
	assert.Equal(t, 2, p.index)
	assert.Equal(t, []int{8}, changes)
	assert.Equal(t, 1, s.state.direction)
}

func TestPrepareForRender(t *testing.T) {
	t.Parallel()

	t.Run("last mounted item with a next item", func(t *testing.T) {
		t.Parallel()
		s := newRenderedSwiper(t, newFakePager(), createItems(10), WithWindowLength(5), WithIndex(4))
		s.state.window = Window{Start: 2, End: 7}
		s.state.children = slices.Clone(s.items[2:7])
		s.state.index = 4
		s.state.externalIndex = 6

		changed, _ := s.prepareForRender(nil, nil)
		assert.True(t, changed)
		assert.True(t, s.state.rendering)
	})

	t.Run("middle of the window", func(t *testing.T) {
		t.Parallel()
		s := newRenderedSwiper(t, newFakePager(), createItems(10), WithWindowLength(5), WithIndex(4))

		changed, _ := s.prepareForRender(nil, nil)
		assert.False(t, changed)
		assert.False(t, s.state.rendering)
	})

	t.Run("first item of the list", func(t *testing.T) {
		t.Parallel()
		s := newRenderedSwiper(t, newFakePager(), createItems(10), WithWindowLength(5), WithIndex(0))

		changed, _ := s.prepareForRender(nil, nil)
		assert.False(t, changed)
	})

	t.Run("first mounted item while scrolling to a target", func(t *testing.T) {
		t.Parallel()
		s := newRenderedSwiper(t, newFakePager(), createItems(10), WithWindowLength(5), WithIndex(4))
		s.state.index = 0
		s.state.externalIndex = 2
		s.state.scrollTarget = &scrollTarget{Index: 4, Start: 2, End: 7}

		changed, _ := s.prepareForRender(nil, nil)
		assert.False(t, changed)
	})
}

func TestSwiperAppend(t *testing.T) {
	t.Parallel()

	t.Run("reader on the last item", func(t *testing.T) {
		t.Parallel()
		p := newFakePager()
		items := createItems(10)
		s := newRenderedSwiper(t, p, items, WithWindowLength(5), WithIndex(9))
		require.Equal(t, Window{Start: 7, End: 10}, s.Window())
		generation := s.Generation()

		execCmd(t, s, s.SetItems(append(slices.Clone(items), testItem{id: "item-10"})))

		assert.Equal(t, Window{Start: 7, End: 11}, s.Window())
		assert.Equal(t, generation, s.Generation(), "appending does not rewindow")
		assert.Equal(t, 11, s.state.renderedWith)
		assert.False(t, s.IsRendering())
		assert.False(t, s.HasUnread())
		assert.Len(t, s.state.registry, 4, "earlier measurements are kept")
		assert.Equal(t, []string{"item-7", "item-8", "item-9", "item-10"}, ids(p.children))
	})

	t.Run("reader behind the tail", func(t *testing.T) {
		t.Parallel()
		p := newFakePager()
		items := createItems(10)
		s := newRenderedSwiper(t, p, items, WithWindowLength(5), WithIndex(7))
		require.Equal(t, Window{Start: 5, End: 10}, s.Window())

		execCmd(t, s, s.SetItems(append(slices.Clone(items), testItem{id: "item-10"})))

		assert.Equal(t, Window{Start: 5, End: 11}, s.Window())
		assert.True(t, s.HasUnread())
		assert.Equal(t, 7, s.Index())

		execCmd(t, s, s.ScrollTo(10, true))

		assert.Equal(t, 10, s.Index())
		assert.False(t, s.HasUnread(), "reaching the last item reads it")
		assert.False(t, s.IsRendering())
	})

	t.Run("window away from the tail", func(t *testing.T) {
		t.Parallel()
		items := createItems(20)
		s := newRenderedSwiper(t, newFakePager(), items, WithWindowLength(5), WithIndex(5))

		execCmd(t, s, s.SetItems(append(slices.Clone(items), testItem{id: "item-20"})))

		assert.Equal(t, Window{Start: 3, End: 8}, s.Window())
		assert.True(t, s.HasUnread())
	})
}

func TestSwiperRequestQueue(t *testing.T) {
	t.Parallel()

	t.Run("newest request first", func(t *testing.T) {
		t.Parallel()
		p := newFakePager()
		s := New(p, createItems(20), WithWindowLength(5), WithIndex(6)).(*swiper[testItem])

		// Both are queued while the initial window is rendering.
		execCmd(t, s, tea.Batch(s.Init(), s.ScrollTo(5, false), s.ScrollTo(7, false)))

		assert.Empty(t, s.Pending())
		assert.Equal(t, []int{3, 1}, p.scrolls)
		assert.Equal(t, 5, s.Index())
	})

	t.Run("blocked newest request stops the drain", func(t *testing.T) {
		t.Parallel()
		p := newFakePager()
		s := New(p, createItems(20), WithWindowLength(5), WithIndex(6)).(*swiper[testItem])

		execCmd(t, s, tea.Batch(s.Init(), s.ScrollTo(5, false), s.ScrollTo(15, false)))

		assert.Equal(t, []Request{
			{Op: OpScrollTo, Arg: 5},
			{Op: OpScrollTo, Arg: 15},
		}, s.Pending())
		assert.Empty(t, p.scrolls)
		assert.Equal(t, 6, s.Index())
	})

	t.Run("blocked requests skipped", func(t *testing.T) {
		t.Parallel()
		p := newFakePager()
		s := New(p, createItems(20), WithWindowLength(5), WithIndex(6), WithSkipBlockedRequests()).(*swiper[testItem])

		execCmd(t, s, tea.Batch(s.Init(), s.ScrollTo(5, false), s.ScrollTo(15, false)))

		assert.Equal(t, []Request{{Op: OpScrollTo, Arg: 15}}, s.Pending())
		assert.Equal(t, []int{1}, p.scrolls)
		assert.Equal(t, 5, s.Index())
	})

	t.Run("unmeasured target waits", func(t *testing.T) {
		t.Parallel()
		p := newFakePager()
		p.autoMeasure = false
		s := New(p, createItems(20), WithWindowLength(5), WithIndex(6)).(*swiper[testItem])
		execCmd(t, s, s.Init())
		require.True(t, s.IsRendering())

		execCmd(t, s, s.ScrollBy(1, false))
		assert.Len(t, s.Pending(), 1)

		execCmd(t, s, p.measure())
		assert.False(t, s.IsRendering())
		assert.Empty(t, s.Pending())
		assert.Equal(t, 7, s.Index())
	})
}

func TestSwiperScrollToBottom(t *testing.T) {
	t.Parallel()

	p := newFakePager()
	s := newRenderedSwiper(t, p, createItems(30), WithWindowLength(5))
	require.Equal(t, Window{Start: 0, End: 3}, s.Window())

	execCmd(t, s, s.ScrollToBottom())

	assert.Equal(t, 29, s.Index())
	assert.Equal(t, Window{Start: 27, End: 30}, s.Window())
	assert.Nil(t, s.state.scrollTarget)
	assert.Empty(t, s.Pending())
	assert.False(t, s.IsRendering())
	assert.Equal(t, 1, s.Generation())
	assert.Equal(t, []string{"item-27", "item-28", "item-29"}, ids(p.children))
	assert.Equal(t, []int{2}, p.scrolls)
}

func TestSwiperScrollToBottomKeepsDisplayedItem(t *testing.T) {
	t.Parallel()

	s := newRenderedSwiper(t, newFakePager(), createItems(30), WithWindowLength(5))

	execCmd(t, s, s.update(func() {
		require.NoError(t, s.rewindowToScrollTo(29))
	}))

	assert.Equal(t, 0, s.state.index)
	assert.Equal(t, []string{"item-0", "item-28", "item-29"}, ids(s.state.children))
	assert.Equal(t, &scrollTarget{Index: 2, Start: 27, End: 30}, s.state.scrollTarget)
}

func TestSwiperScrollToBottomWhileRendering(t *testing.T) {
	t.Parallel()

	t.Run("before the first render", func(t *testing.T) {
		t.Parallel()

		s := New(newFakePager(), createItems(30), WithWindowLength(5)).(*swiper[testItem])
		cmd := s.ScrollToBottom()
		execCmd(t, s, tea.Batch(s.Init(), cmd))

		assert.Equal(t, 29, s.Index())
		assert.Empty(t, s.Pending())
		assert.False(t, s.IsRendering())
		assert.False(t, s.toBottom)
	})

	t.Run("waits for measurements", func(t *testing.T) {
		t.Parallel()

		p := newFakePager()
		p.autoMeasure = false
		s := New(p, createItems(30), WithWindowLength(5)).(*swiper[testItem])
		execCmd(t, s, s.Init())
		require.True(t, s.IsRendering())

		execCmd(t, s, s.ScrollToBottom())
		assert.Equal(t, 0, s.Index(), "nothing moves while rendering")
		assert.True(t, s.toBottom)

		p.autoMeasure = true
		execCmd(t, s, p.measure())

		assert.Equal(t, 29, s.Index())
		assert.Equal(t, Window{Start: 27, End: 30}, s.Window())
		assert.Equal(t, []int{2}, p.scrolls)
		assert.False(t, s.toBottom)
	})
}

func TestSwiperInvalidWindowResets(t *testing.T) {
	t.Parallel()

	r := &reports{}
	var changes []int
	items := createItems(10)
	s := newRenderedSwiper(t, newFakePager(), items,
		WithWindowLength(5),
		WithIndex(8),
		WithReporter(r),
		WithOnIndexChanged(func(index int) { changes = append(changes, index) }),
	)
	require.Equal(t, Window{Start: 6, End: 10}, s.Window())

	execCmd(t, s, s.SetItems(items[:5]))

	require.NotEmpty(t, r.errs)
	assert.ErrorIs(t, r.errs[0], ErrInvalidWindow)
	assert.Contains(t, r.args[0], "state.end")
	assert.Equal(t, Window{Start: 2, End: 5}, s.Window())
	assert.Equal(t, 4, s.Index())
	assert.Equal(t, 1, s.Generation())
	assert.False(t, s.IsRendering())
	assert.Equal(t, []int{4}, changes)
}

func TestSwiperReplacedItems(t *testing.T) {
	t.Parallel()

	t.Run("in place", func(t *testing.T) {
		t.Parallel()
		r := &reports{}
		p := newFakePager()
		items := createItems(10)
		s := newRenderedSwiper(t, p, items, WithWindowLength(5), WithIndex(5), WithReporter(r))

		replaced := slices.Clone(items)
		replaced[4] = testItem{id: "item-x"}
		execCmd(t, s, s.SetItems(replaced))

		assert.Empty(t, r.errs)
		assert.Equal(t, []string{"item-3", "item-x", "item-5", "item-6", "item-7"}, ids(p.children))
		assert.Equal(t, 0, s.Generation())
		assert.Equal(t, 5, s.Index())
	})

	t.Run("displayed item moved", func(t *testing.T) {
		t.Parallel()
		r := &reports{}
		p := newFakePager()
		items := createItems(10)
		s := newRenderedSwiper(t, p, items, WithWindowLength(5), WithIndex(5), WithReporter(r))

		swapped := slices.Clone(items)
		swapped[5], swapped[6] = swapped[6], swapped[5]
		execCmd(t, s, s.SetItems(swapped))

		require.NotEmpty(t, r.errs)
		assert.ErrorIs(t, r.errs[0], ErrUnsupportedMutation)
		assert.False(t, s.IsRendering())
		assert.Equal(t, 6, s.Index())
		assert.Equal(t, Window{Start: 4, End: 9}, s.Window())
		current, ok := s.Current()
		require.True(t, ok)
		assert.Equal(t, "item-5", current.ID())
	})
}

func TestSwiperStaleMeasurement(t *testing.T) {
	t.Parallel()

	s := newRenderedSwiper(t, newFakePager(), createItems(10), WithWindowLength(5), WithIndex(5))
	registered := len(s.state.registry)

	execCmd(t, s, util.CmdHandler(pager.MeasuredMsg{Generation: 1, ID: "item-0"}))

	assert.Len(t, s.state.registry, registered)
	assert.False(t, s.state.registered("item-0"))
}

func TestSwiperEmptyThenFilled(t *testing.T) {
	t.Parallel()

	r := &reports{}
	p := newFakePager()
	s := newRenderedSwiper(t, p, nil, WithReporter(r))
	assert.False(t, s.IsRendering())
	assert.Equal(t, NotFound, s.Index())
	assert.Empty(t, r.errs, "an empty list is not a failure")

	execCmd(t, s, s.SetItems(createItems(3)))

	assert.Equal(t, 0, s.Index())
	assert.Equal(t, []string{"item-0", "item-1", "item-2"}, ids(p.children))
	assert.False(t, s.IsRendering())
}

func TestSwiperRenderAll(t *testing.T) {
	t.Parallel()

	p := newFakePager()
	s := newRenderedSwiper(t, p, createItems(40), WithRenderAll(true), WithIndex(20))

	assert.Equal(t, Window{Start: 0, End: 40}, s.Window())
	assert.Equal(t, 20, p.index)

	execCmd(t, s, s.ScrollTo(39, false))
	assert.Equal(t, 39, s.Index())
	assert.Equal(t, 0, s.Generation())
}

func TestSwiperKeys(t *testing.T) {
	t.Parallel()

	p := newFakePager()
	s := newRenderedSwiper(t, p, createItems(10), WithWindowLength(5), WithIndex(4))

	execCmd(t, s, util.CmdHandler(tea.KeyPressMsg{Code: 'n', Text: "n"}))
	assert.Equal(t, 5, s.Index())

	execCmd(t, s, util.CmdHandler(tea.KeyPressMsg{Code: 'G', Text: "G"}))
	assert.Equal(t, 9, s.Index())
}

func TestDebugView(t *testing.T) {
	t.Parallel()

	s := newRenderedSwiper(t, newFakePager(), createItems(20), WithWindowLength(5), WithIndex(10), WithDebug(true))
	golden.RequireEqual(t, []byte(s.debugView()))
}

func TestSwiperView(t *testing.T) {
	t.Parallel()

	s := newRenderedSwiper(t, newFakePager(), createItems(10), WithWindowLength(5), WithIndex(7), WithSize(30, 6))
	view := ansi.Strip(s.View())
	assert.Contains(t, view, "item-7 body")
	assert.NotContains(t, view, unreadBadge)

	s.state.unread = true
	assert.Contains(t, ansi.Strip(s.View()), unreadBadge)

	s.state.rendering = true
	s.overlay = true
	s.state.direction = -1
	view = ansi.Strip(s.View())
	assert.Contains(t, view, loadingLabel)
	assert.Less(t, strings.Index(view, loadingLabel), strings.Index(view, "item-7 body"), "moving backwards shows the indicator on top")

	s.state.direction = 1
	view = ansi.Strip(s.View())
	assert.Greater(t, strings.Index(view, loadingLabel), strings.Index(view, "item-7 body"))
}

type testItem struct {
	id string
}

func (i testItem) ID() string {
	return i.id
}

func (i testItem) View() string {
	return i.id + " body"
}

func createItems(n int) []testItem {
	items := make([]testItem, n)
	for i := range items {
		items[i] = testItem{id: fmt.Sprintf("item-%d", i)}
	}
	return items
}

// fakePager mounts children like the real pager but settles immediately and
// can hold back measurements.
type fakePager struct {
	generation  int
	children    []testItem
	index       int
	enabled     bool
	autoMeasure bool
	mounted     bool
	measured    map[string]bool
	container   bool
	width       int
	height      int
	sets        int
	scrolls     []int
}

func newFakePager() *fakePager {
	return &fakePager{
		index:       pager.NoIndex,
		autoMeasure: true,
		measured:    make(map[string]bool),
	}
}

func (p *fakePager) Init() tea.Cmd { return nil }

func (p *fakePager) Update(tea.Msg) (tea.Model, tea.Cmd) { return p, nil }

func (p *fakePager) View() string {
	if p.index < 0 || p.index >= len(p.children) {
		return ""
	}
	return p.children[p.index].View()
}

func (p *fakePager) SetSize(width, height int) tea.Cmd {
	p.width, p.height = width, height
	return nil
}

func (p *fakePager) GetSize() (int, int) { return p.width, p.height }

func (p *fakePager) SetChildren(generation int, children []testItem, index int) tea.Cmd {
	p.sets++
	p.children = children
	if !p.mounted || generation != p.generation {
		p.mounted = true
		p.generation = generation
		p.index = index
		p.measured = make(map[string]bool)
		p.container = false
	}
	p.index = max(0, min(p.index, len(children)-1))
	if !p.autoMeasure {
		return nil
	}
	return p.measure()
}

func (p *fakePager) measure() tea.Cmd {
	var cmds []tea.Cmd
	for _, child := range p.children {
		if p.measured[child.ID()] {
			continue
		}
		p.measured[child.ID()] = true
		cmds = append(cmds, util.CmdHandler(pager.MeasuredMsg{Generation: p.generation, ID: child.ID()}))
	}
	if !p.container {
		p.container = true
		cmds = append(cmds, util.CmdHandler(pager.ContainerMeasuredMsg{Generation: p.generation}))
	}
	return tea.Batch(cmds...)
}

func (p *fakePager) SetEnabled(enabled bool) { p.enabled = enabled }

func (p *fakePager) ScrollTo(index int, _ bool) tea.Cmd {
	p.scrolls = append(p.scrolls, index)
	p.index = index
	return util.CmdHandler(pager.SettledMsg{Index: index})
}

func (p *fakePager) ScrollBy(delta int, animated bool) tea.Cmd {
	return p.ScrollTo(p.index+delta, animated)
}

type reports struct {
	errs []error
	args [][]any
}

func (r *reports) Report(err error, args ...any) {
	r.errs = append(r.errs, err)
	r.args = append(r.args, args)
}

func newRenderedSwiper(t *testing.T, p *fakePager, items []testItem, opts ...Option) *swiper[testItem] {
	t.Helper()
	s := New(p, items, opts...).(*swiper[testItem])
	execCmd(t, s, s.Init())
	require.False(t, s.IsRendering())
	p.scrolls = nil
	return s
}

// execCmd runs cmd and every command produced while handling its messages,
// breadth first like the runtime delivers them.
func execCmd(t *testing.T, m tea.Model, cmd tea.Cmd) {
	t.Helper()
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 10_000, "commands did not settle")
		next := queue[0]
		queue = queue[1:]
		if next == nil {
			continue
		}
		switch msg := next().(type) {
		case nil:
		case tea.BatchMsg:
			queue = append(queue, msg...)
		default:
			_, c := m.Update(msg)
			queue = append(queue, c)
		}
	}
}
