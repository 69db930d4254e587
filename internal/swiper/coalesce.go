package swiper

import (
	tea "github.com/charmbracelet/bubbletea/v2"
)

type flushKind uint8

const (
	flushChildren flushKind = 1 << iota
	flushRendering
)

type flushMsg struct {
	id   int
	kind flushKind
}

// coalescer collapses repeated requests for the same deferred work into a
// single flush delivered on the next turn of the event loop.
type coalescer struct {
	id      int
	pending flushKind
}

func (c *coalescer) schedule(kind flushKind) tea.Cmd {
	if c.pending&kind != 0 {
		return nil
	}
	c.pending |= kind
	id := c.id
	return func() tea.Msg {
		return flushMsg{id: id, kind: kind}
	}
}

// take consumes a pending flush. It returns false for flushes that were
// already consumed or belong to another swiper.
func (c *coalescer) take(msg flushMsg) bool {
	if msg.id != c.id || c.pending&msg.kind == 0 {
		return false
	}
	c.pending &^= msg.kind
	return true
}
