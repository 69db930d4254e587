package swiper

import (
	"slices"

	tea "github.com/charmbracelet/bubbletea/v2"
)

// enqueue defers a scroll until the targeted item is mounted and measured.
func (s *swiper[T]) enqueue(r Request) tea.Cmd {
	return s.update(func() {
		s.state.requests = append(slices.Clip(s.state.requests), r)
	})
}

// processRequests services queued scrolls newest first. A request whose
// target is not ready stops the drain and keeps every older request queued,
// unless blocked requests are skipped.
func (s *swiper[T]) processRequests(_ *state[T], _ []T) (bool, tea.Cmd) {
	if s.state.rendering || len(s.state.requests) == 0 {
		return false, nil
	}

	var cmds []tea.Cmd
	requests := slices.Clone(s.state.requests)
	for i := len(requests) - 1; i >= 0; i-- {
		cmd, ok := s.process(requests[i])
		if !ok {
			if s.skipBlocked {
				continue
			}
			break
		}
		cmds = append(cmds, cmd)
		requests = slices.Delete(requests, i, i+1)
	}

	if len(requests) == len(s.state.requests) {
		return false, nil
	}
	s.state.requests = requests
	return true, tea.Batch(cmds...)
}

func (s *swiper[T]) process(r Request) (tea.Cmd, bool) {
	switch r.Op {
	case OpScrollTo:
		internal := s.internalIndexOf(r.Arg)
		if internal < 0 {
			return nil, false
		}
		return s.pager.ScrollTo(internal, r.Animated), true
	case OpScrollBy:
		next := s.state.index + r.Arg
		if next < 0 || next >= len(s.state.children) || !s.state.registered(s.state.children[next].ID()) {
			return nil, false
		}
		return s.pager.ScrollBy(r.Arg, r.Animated), true
	}
	return nil, false
}
