package swiper

import (
	"fmt"
	"log/slog"
	"slices"

	tea "github.com/charmbracelet/bubbletea/v2"
)

// registerChild records that a mounted child has been laid out. Reports
// from a generation that has since been replaced are dropped.
func (s *swiper[T]) registerChild(generation int, id string) tea.Cmd {
	if generation != s.state.generation {
		slog.Debug("Dropping stale measurement", "id", id, "generation", generation, "current", s.state.generation)
		return nil
	}
	return s.setRenderingState(func() {
		s.state.registry[id] = struct{}{}
	})
}

// containerMeasured records that the pager has been laid out for a
// generation.
func (s *swiper[T]) containerMeasured(generation int) tea.Cmd {
	return s.setRenderingState(func() {
		s.state.measuredGeneration = generation
	})
}

// setRenderingState applies a measurement and checks right away whether
// rendering can finish, without waiting for the next pipeline tick.
func (s *swiper[T]) setRenderingState(fn func()) tea.Cmd {
	var finish tea.Cmd
	cmd := s.update(func() {
		fn()
		if s.state.rendering && s.isRendered() {
			finish = s.coalescer.schedule(flushRendering)
		}
	})
	return tea.Batch(cmd, finish)
}

// isRendered reports whether the current generation and every mounted child
// have been measured.
func (s *swiper[T]) isRendered() bool {
	if s.state.measuredGeneration != s.state.generation {
		return false
	}
	for _, child := range s.state.children {
		if !s.state.registered(child.ID()) {
			return false
		}
	}
	return true
}

// forceFinishRendering leaves the rendering state on the next turn even if
// measurements are missing.
func (s *swiper[T]) forceFinishRendering() tea.Cmd {
	s.forceFinish = true
	return s.coalescer.schedule(flushRendering)
}

func (s *swiper[T]) finishRendering() tea.Cmd {
	force := s.forceFinish
	s.forceFinish = false
	if !s.state.rendering || (!force && !s.isRendered()) {
		return nil
	}
	s.overlay = false
	cmd := s.update(func() {
		s.state.rendering = false
	})
	if s.toBottom && !s.state.rendering {
		return tea.Batch(cmd, s.ScrollToBottom())
	}
	return cmd
}

// rerender rebuilds the window around the item mounted at internal index.
// It runs once the loading overlay is up.
func (s *swiper[T]) rerender(index int) tea.Cmd {
	if len(s.state.children) == 0 {
		return s.forceFinishRendering()
	}
	external := s.externalIndexOf(index)
	if external < 0 {
		return s.forceFinishRendering()
	}

	w, internal, err := s.computeWindow(external)
	if err != nil {
		s.report(err, "external_index_found", external)
		return s.forceFinishRendering()
	}
	if w == s.state.window && internal == s.state.index &&
		fingerprint(s.state.children) == fingerprint(s.items[w.Start:w.End]) {
		// Already mounted as it would be rebuilt: keep the generation and
		// its measurements.
		return s.setRenderingState(func() {
			s.state.renderedWith = len(s.items)
		})
	}

	var failed error
	cmd := s.update(func() {
		if err := s.rewindowAt(external); err != nil {
			failed = err
		}
	})
	if failed != nil {
		s.report(failed, "external_index_found", external)
		return tea.Batch(cmd, s.forceFinishRendering())
	}
	return cmd
}

// rewindowAt replaces the window, the mounted children and the registry,
// centered on the item at external index.
func (s *swiper[T]) rewindowAt(external int) error {
	w, index, err := s.computeWindow(external)
	if err != nil {
		return err
	}
	s.state.window = w
	s.state.index = index
	s.state.externalIndex = external
	s.state.children = slices.Clone(s.items[w.Start:w.End])
	s.state.renderedWith = len(s.items)
	s.nextGeneration()
	return nil
}

// rewindowToScrollTo builds a window that ends at the tail of the list and
// starts with the currently displayed item, so the pager can animate from
// what is on screen to target.
func (s *swiper[T]) rewindowToScrollTo(target int) error {
	w, index, err := s.computeWindow(target)
	if err != nil {
		return err
	}
	if s.state.index < 0 || s.state.index >= len(s.state.children) {
		return fmt.Errorf("%w: displayed index %d out of %d children", ErrInvalidWindow, s.state.index, len(s.state.children))
	}
	current := s.state.children[s.state.index]

	var children []T
	if external, ok := s.indexMap[current.ID()]; ok && w.Contains(external) {
		// The displayed item is already part of the target window: start the
		// window at it instead of mounting it twice.
		w.Start = external
		index = target - external
		children = slices.Clone(s.items[w.Start:w.End])
	} else {
		children = slices.Clone(s.items[w.Start:w.End])
		children[0] = current
	}

	s.state.window = w
	s.state.index = 0
	s.state.children = children
	s.state.renderedWith = len(s.items)
	s.state.scrollTarget = &scrollTarget{Index: index, Start: w.Start, End: w.End}
	s.nextGeneration()
	return nil
}

func (s *swiper[T]) nextGeneration() {
	s.state.generation ^= 1
	s.state.measuredGeneration = -1
	s.state.registry = make(map[string]struct{})
}

func (s *swiper[T]) computeWindow(external int) (Window, int, error) {
	length := s.windowLength
	if s.renderAll {
		length = 0
	}
	return ComputeWindow(s.items, external, length)
}
