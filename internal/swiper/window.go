package swiper

import "fmt"

// DefaultWindowLength is the number of items kept mounted around the
// displayed one.
const DefaultWindowLength = 15

// NotFound is returned by index lookups that cannot be resolved.
const NotFound = -1

// Window is a half-open range [Start, End) over the full item list.
type Window struct {
	Start int
	End   int
}

func (w Window) Len() int {
	return w.End - w.Start
}

// Contains reports whether the external index lies inside the window.
func (w Window) Contains(index int) bool {
	return index >= w.Start && index < w.End
}

// ComputeWindow returns the window of at most length items centered on the
// item at external index, and the position of that item inside the window.
// Items before the anchor get (length-1)/2 slots, the rest go after it.
// A non-positive length mounts the whole list.
func ComputeWindow[T Item](items []T, external, length int) (Window, int, error) {
	if external < 0 || external >= len(items) {
		return Window{}, NotFound, fmt.Errorf("%w: index %d out of %d items", ErrInvalidWindow, external, len(items))
	}
	if length <= 0 {
		return Window{Start: 0, End: len(items)}, external, nil
	}

	before := (length - 1) / 2
	after := length - before
	w := Window{
		Start: max(external-before, 0),
		End:   min(external+after, len(items)),
	}

	id := items[external].ID()
	for i, item := range items[w.Start:w.End] {
		if item.ID() == id {
			return w, i, nil
		}
	}
	// Unreachable while ids are unique.
	return w, NotFound, fmt.Errorf("%w: id %q not in window %d-%d", ErrInvalidWindow, id, w.Start, w.End)
}
