package swiper

import (
	"fmt"
	"log/slog"
	"slices"

	tea "github.com/charmbracelet/bubbletea/v2"
)

// maxPasses bounds how many times the pipeline is re-run while it keeps
// changing state within a single event.
const maxPasses = 8

type step[T Item] struct {
	name string
	run  func(s *swiper[T], prev *state[T], prevItems []T) (bool, tea.Cmd)
	// halt stops the current pass when the step changed state.
	halt bool
}

func pipeline[T Item]() []step[T] {
	return []step[T]{
		{name: "verifyWindow", run: (*swiper[T]).verifyWindow, halt: true},
		{name: "updateIndex", run: (*swiper[T]).updateIndex},
		{name: "cleanupScrolling", run: (*swiper[T]).cleanupScrolling},
		{name: "updateRead", run: (*swiper[T]).updateRead},
		{name: "propagateIndex", run: (*swiper[T]).propagateIndex},
		{name: "tryToUpdateChildren", run: (*swiper[T]).tryToUpdateChildren},
		{name: "appendChild", run: (*swiper[T]).appendChild},
		{name: "prepareForRender", run: (*swiper[T]).prepareForRender},
		{name: "processRequests", run: (*swiper[T]).processRequests},
	}
}

// update applies fn as one event and runs the pipeline against the state
// and items from before it.
func (s *swiper[T]) update(fn func()) tea.Cmd {
	prev := s.state.clone()
	prevItems := s.items
	fn()
	return s.commit(prev, prevItems)
}

// commit runs the pipeline until a pass leaves the state untouched. Each
// pass compares against the state the previous pass started from. The
// pager is synced once at the end.
func (s *swiper[T]) commit(prev state[T], prevItems []T) tea.Cmd {
	var cmds []tea.Cmd
	for pass := 0; ; pass++ {
		if pass == maxPasses {
			slog.Warn("Swiper pipeline did not settle", "passes", pass)
			break
		}
		start := s.state.clone()
		for _, st := range s.steps {
			changed, cmd := st.run(s, &prev, prevItems)
			if cmd != nil {
				cmds = append(cmds, cmd)
			}
			if changed {
				slog.Debug("Swiper step changed state", "step", st.name, "pass", pass)
				if st.halt {
					break
				}
			}
		}
		if s.state.equal(start) {
			break
		}
		prev, prevItems = start, s.items
	}
	cmds = append(cmds, s.sync())
	return tea.Batch(cmds...)
}

// verifyWindow resets the swiper when the window reaches past the end of
// the list, which happens when the list shrank under it.
func (s *swiper[T]) verifyWindow(_ *state[T], _ []T) (bool, tea.Cmd) {
	if s.state.window.End <= len(s.items) {
		return false, nil
	}
	err := fmt.Errorf("%w: window ends at %d with %d items", ErrInvalidWindow, s.state.window.End, len(s.items))
	s.report(err)
	s.state = s.initialState(s.state.generation ^ 1)
	return true, nil
}

// updateIndex follows the pager: the external index is derived from the
// item now displayed.
func (s *swiper[T]) updateIndex(prev *state[T], _ []T) (bool, tea.Cmd) {
	if s.state.index == prev.index {
		return false, nil
	}
	external := s.externalIndexOf(s.state.index)
	if external < 0 || external == s.state.externalIndex {
		return false, nil
	}
	s.state.externalIndex = external
	s.state.direction = 1
	if s.state.index < prev.index {
		s.state.direction = -1
	}
	return true, nil
}

func (s *swiper[T]) cleanupScrolling(_ *state[T], _ []T) (bool, tea.Cmd) {
	t := s.state.scrollTarget
	if t == nil {
		return false, nil
	}
	if *t != (scrollTarget{Index: s.state.index, Start: s.state.window.Start, End: s.state.window.End}) {
		return false, nil
	}
	s.state.scrollTarget = nil
	return true, nil
}

func (s *swiper[T]) updateRead(_ *state[T], _ []T) (bool, tea.Cmd) {
	if !s.state.unread {
		return false, nil
	}
	if s.externalIndexOf(s.state.index)+1 != len(s.items) {
		return false, nil
	}
	s.state.unread = false
	return true, nil
}

// propagateIndex tells the owner about every distinct external index once.
func (s *swiper[T]) propagateIndex(_ *state[T], _ []T) (bool, tea.Cmd) {
	if s.state.externalIndex == s.propagated {
		return false, nil
	}
	s.propagated = s.state.externalIndex
	if s.onIndexChanged != nil {
		s.onIndexChanged(s.state.externalIndex)
	}
	return false, nil
}

// tryToUpdateChildren re-slices the mounted children from the list after
// the external index moved, or when the items under a stable window were
// replaced.
func (s *swiper[T]) tryToUpdateChildren(prev *state[T], _ []T) (bool, tea.Cmd) {
	if prev.externalIndex != s.state.externalIndex {
		return false, s.coalescer.schedule(flushChildren)
	}

	windowChanged := prev.index != s.state.index || prev.window != s.state.window
	if windowChanged || s.childrenChanged() || s.state.rendering || s.state.scrollTarget != nil {
		return false, nil
	}

	w := s.state.window
	if w.End > len(s.items) {
		return false, nil
	}
	if fingerprint(s.state.children) != fingerprint(s.items[w.Start:w.End]) {
		return false, s.coalescer.schedule(flushChildren)
	}
	return false, nil
}

// updateChildren is the coalesced re-slice. When the displayed item does
// not keep its mounted position, the list was mutated in a way the window
// cannot follow and the swiper re-enters rendering instead.
func (s *swiper[T]) updateChildren() tea.Cmd {
	return s.update(func() {
		w := s.state.window
		if w.End > len(s.items) {
			// verifyWindow resets on this commit.
			return
		}
		children := slices.Clone(s.items[w.Start:w.End])
		if s.state.index < 0 || s.state.index >= len(s.state.children) {
			s.state.children = children
			return
		}

		displayed := s.state.children[s.state.index].ID()
		if s.state.index < len(children) && children[s.state.index].ID() == displayed {
			s.state.children = children
			return
		}

		external, ok := s.indexMap[displayed]
		s.report(fmt.Errorf("%w: displayed item moved", ErrUnsupportedMutation), "id", displayed, "external_index_found", ok)
		if !ok {
			s.state = s.initialState(s.state.generation ^ 1)
			return
		}
		// The rerender that follows rebuilds the window around the new
		// position of the displayed item.
		slog.Debug("Rewindowing around moved item", "id", displayed, "external", external)
		s.state.rendering = true
	})
}

func (s *swiper[T]) childrenChanged() bool {
	return len(s.items) != s.state.renderedWith
}

// prepareForRender re-enters rendering when the displayed item reaches an
// edge of the window while more items exist past it, or the list length
// changed since the window was built.
func (s *swiper[T]) prepareForRender(_ *state[T], _ []T) (bool, tea.Cmd) {
	if s.state.rendering || len(s.state.children) == 0 {
		return false, nil
	}

	isFirst := s.state.index < 1
	isPrevExists := s.state.externalIndex > 0
	isLast := s.state.index == len(s.state.children)-1
	isNextExists := s.state.externalIndex < len(s.items)-1
	isChildrenChanged := s.childrenChanged()

	shouldRender := isFirst && s.state.scrollTarget == nil && (isPrevExists || isChildrenChanged) ||
		isLast && (isNextExists || isChildrenChanged)
	if !shouldRender {
		return false, nil
	}
	s.state.rendering = true
	return true, nil
}
