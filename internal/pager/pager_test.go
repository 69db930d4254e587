package pager

import (
	"fmt"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMeasureNeedsSize(t *testing.T) {
	t.Parallel()

	p := New[*page]()
	msgs := collect(t, p.SetChildren(0, createPages(3), 0))
	assert.Empty(t, msgs, "nothing is measured without a size")

	msgs = collect(t, p.SetSize(20, 5))
	assert.Equal(t, []tea.Msg{
		MeasuredMsg{Generation: 0, ID: "a"},
		MeasuredMsg{Generation: 0, ID: "b"},
		MeasuredMsg{Generation: 0, ID: "c"},
		ContainerMeasuredMsg{Generation: 0},
	}, msgs)

	w, h := p.Children()[1].GetSize()
	assert.Equal(t, 20, w)
	assert.Equal(t, 5, h)
}

func TestSetChildrenGenerations(t *testing.T) {
	t.Parallel()

	p := New[*page](WithSize(20, 5), WithSettleDelay(0))
	pages := createPages(4)
	collect(t, p.SetChildren(0, pages[:3], 1))
	require.Equal(t, 1, p.Index())

	t.Run("same generation keeps the page", func(t *testing.T) {
		msgs := collect(t, p.SetChildren(0, pages, 3))
		assert.Equal(t, 1, p.Index())
		assert.Equal(t, []tea.Msg{MeasuredMsg{Generation: 0, ID: "d"}}, msgs, "only the new child is measured")
	})

	t.Run("new generation remounts", func(t *testing.T) {
		msgs := collect(t, p.SetChildren(1, pages[2:], 1))
		assert.Equal(t, 1, p.Generation())
		assert.Equal(t, 1, p.Index())
		assert.Len(t, msgs, 3)
		assert.Contains(t, msgs, ContainerMeasuredMsg{Generation: 1})
	})

	t.Run("index is clamped", func(t *testing.T) {
		collect(t, p.SetChildren(0, pages[:2], 9))
		assert.Equal(t, 1, p.Index())
	})
}

func TestScroll(t *testing.T) {
	t.Parallel()

	p := New[*page](WithSize(20, 5), WithSettleDelay(0))
	collect(t, p.SetChildren(0, createPages(5), 0))

	msgs := collect(t, p.ScrollBy(2, true))
	assert.Equal(t, []tea.Msg{SettledMsg{Index: 2}}, msgs)
	assert.Equal(t, 2, p.Index())

	collect(t, p.ScrollTo(10, false))
	assert.Equal(t, 4, p.Index())

	collect(t, p.ScrollBy(-10, false))
	assert.Equal(t, 0, p.Index())

	empty := New[*page]()
	assert.Nil(t, empty.ScrollTo(1, false))
}

func TestSettleDropsStaleGeneration(t *testing.T) {
	t.Parallel()

	p := New[*page](WithSize(20, 5))
	collect(t, p.SetChildren(0, createPages(3), 0))
	collect(t, p.SetChildren(1, createPages(3), 0))

	_, cmd := p.Update(settleMsg{generation: 0, index: 2})
	assert.Nil(t, cmd)
	assert.Equal(t, 0, p.Index())

	_, cmd = p.Update(settleMsg{generation: 1, index: 2})
	assert.Equal(t, []tea.Msg{SettledMsg{Index: 2}}, collect(t, cmd))
	assert.Equal(t, 2, p.Index())
}

func TestKeys(t *testing.T) {
	t.Parallel()

	p := New[*page](WithSize(20, 5), WithSettleDelay(0))
	collect(t, p.SetChildren(0, createPages(10), 0))

	press := func(code rune, text string) {
		_, cmd := p.Update(tea.KeyPressMsg{Code: code, Text: text})
		collect(t, cmd)
	}

	press('j', "j")
	assert.Equal(t, 1, p.Index())
	press('f', "f")
	assert.Equal(t, 6, p.Index())
	press('k', "k")
	assert.Equal(t, 5, p.Index())
	press('g', "g")
	assert.Equal(t, 0, p.Index())

	p.SetEnabled(false)
	press('j', "j")
	assert.Equal(t, 0, p.Index(), "a disabled pager ignores keys")

	p.SetEnabled(true)
	p.Blur()
	press('j', "j")
	assert.Equal(t, 0, p.Index(), "a blurred pager ignores keys")
}

func TestView(t *testing.T) {
	t.Parallel()

	p := New[*page](WithSize(10, 3), WithIndicator())
	assert.Empty(t, p.View())

	pages := createPages(2)
	pages[0].text = "a very long first line\nsecond\nthird"
	collect(t, p.SetChildren(0, pages, 0))

	lines := strings.Split(ansi.Strip(p.View()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "a very lo…", lines[0])
	assert.Equal(t, "second", strings.TrimSpace(lines[1]))
	assert.Equal(t, "1/2", strings.TrimSpace(lines[2]))
}

type page struct {
	id            string
	text          string
	width, height int
}

func (p *page) ID() string                          { return p.id }
func (p *page) Init() tea.Cmd                       { return nil }
func (p *page) Update(tea.Msg) (tea.Model, tea.Cmd) { return p, nil }
func (p *page) GetSize() (int, int)                 { return p.width, p.height }

func (p *page) View() string {
	if p.text != "" {
		return p.text
	}
	return "page " + p.id
}

func (p *page) SetSize(width, height int) tea.Cmd {
	p.width, p.height = width, height
	return nil
}

func createPages(n int) []*page {
	pages := make([]*page, n)
	for i := range pages {
		pages[i] = &page{id: fmt.Sprintf("%c", 'a'+i)}
	}
	return pages
}

// collect runs cmd and returns the messages it produced, batches expanded.
func collect(t *testing.T, cmd tea.Cmd) []tea.Msg {
	t.Helper()
	var msgs []tea.Msg
	queue := []tea.Cmd{cmd}
	for steps := 0; len(queue) > 0; steps++ {
		require.Less(t, steps, 1_000, "commands did not settle")
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
			msgs = append(msgs, msg)
		}
	}
	return msgs
}
