package swiper

import (
	"slices"

	tea "github.com/charmbracelet/bubbletea/v2"
)

// detectAppend reports the item appended to prev when current is prev plus
// exactly one item at the tail. Only the last two ids are compared; any
// other change to the list goes undetected.
func detectAppend[T Item](prev, current []T) (T, bool) {
	var zero T
	if len(prev) == 0 || len(current) < 2 {
		return zero, false
	}
	last := current[len(current)-1]
	prevLast := prev[len(prev)-1].ID()
	if last.ID() == prevLast || current[len(current)-2].ID() != prevLast {
		return zero, false
	}
	return last, true
}

// appendChild extends the window in place when the list grew by one item
// and the window already reached the old tail. Readers not looking at the
// last mounted item get the unread flag.
func (s *swiper[T]) appendChild(_ *state[T], prevItems []T) (bool, tea.Cmd) {
	appended, ok := detectAppend(prevItems, s.items)
	if !ok {
		return false, nil
	}

	isLast := s.state.index+1 == len(s.state.children)
	changed := false
	if s.state.window.End+1 == len(s.items) {
		s.state.children = append(slices.Clip(s.state.children), appended)
		s.state.window.End++
		s.state.renderedWith++
		changed = true
	}
	if !isLast && !s.state.unread {
		s.state.unread = true
		changed = true
	}
	return changed, nil
}
