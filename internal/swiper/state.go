package swiper

import (
	"maps"
	"slices"
	"strings"

	"github.com/zeebo/xxh3"
)

// Operation is a deferred scroll intent.
type Operation int

const (
	OpScrollTo Operation = iota
	OpScrollBy
)

func (o Operation) String() string {
	switch o {
	case OpScrollTo:
		return "scrollTo"
	case OpScrollBy:
		return "scrollBy"
	default:
		return "unknown"
	}
}

// Request is a queued scroll. For OpScrollTo Arg is an external index, for
// OpScrollBy it is a delta.
type Request struct {
	Op       Operation
	Arg      int
	Animated bool
}

// scrollTarget marks a window that was built to reach a distant item. It is
// cleared once the pager settles on Index inside that same window.
type scrollTarget struct {
	Index int
	Start int
	End   int
}

type state[T Item] struct {
	// generation toggles between 0 and 1 on every rewindow and forces the
	// pager to remount.
	generation int
	// measuredGeneration is the last generation the pager reported as laid
	// out, -1 when none.
	measuredGeneration int

	window        Window
	index         int
	externalIndex int
	children      []T
	registry      map[string]struct{}
	requests      []Request
	renderedWith  int
	rendering     bool
	direction     int
	unread        bool
	scrollTarget  *scrollTarget
}

func (s state[T]) clone() state[T] {
	c := s
	c.children = slices.Clone(s.children)
	c.registry = maps.Clone(s.registry)
	c.requests = slices.Clone(s.requests)
	if s.scrollTarget != nil {
		t := *s.scrollTarget
		c.scrollTarget = &t
	}
	return c
}

func (s state[T]) equal(o state[T]) bool {
	if s.generation != o.generation ||
		s.measuredGeneration != o.measuredGeneration ||
		s.window != o.window ||
		s.index != o.index ||
		s.externalIndex != o.externalIndex ||
		s.renderedWith != o.renderedWith ||
		s.rendering != o.rendering ||
		s.direction != o.direction ||
		s.unread != o.unread {
		return false
	}
	if (s.scrollTarget == nil) != (o.scrollTarget == nil) {
		return false
	}
	if s.scrollTarget != nil && *s.scrollTarget != *o.scrollTarget {
		return false
	}
	if !slices.Equal(s.requests, o.requests) {
		return false
	}
	if len(s.registry) != len(o.registry) {
		return false
	}
	for id := range s.registry {
		if _, ok := o.registry[id]; !ok {
			return false
		}
	}
	return fingerprint(s.children) == fingerprint(o.children)
}

func (s state[T]) registered(id string) bool {
	_, ok := s.registry[id]
	return ok
}

// snapshot flattens the state into key/value pairs for failure reports.
func (s state[T]) snapshot() []any {
	registry := slices.Sorted(maps.Keys(s.registry))
	requests := make([]string, 0, len(s.requests))
	for _, r := range s.requests {
		requests = append(requests, r.Op.String())
	}
	args := []any{
		"state.key", s.generation,
		"state.key_rendered", s.measuredGeneration,
		"state.start", s.window.Start,
		"state.end", s.window.End,
		"state.index", s.index,
		"state.external_index", s.externalIndex,
		"state.children", ids(s.children),
		"state.render_registry", registry,
		"state.requests", requests,
		"state.rendered_with", s.renderedWith,
		"state.is_rendering", s.rendering,
		"state.direction", s.direction,
		"state.has_unread", s.unread,
	}
	if s.scrollTarget != nil {
		args = append(args, "state.scroll_to", *s.scrollTarget)
	}
	return args
}

func ids[T Item](items []T) []string {
	out := make([]string, len(items))
	for i, item := range items {
		out[i] = item.ID()
	}
	return out
}

// fingerprint hashes the id sequence of items, so two slices compare equal
// when they mount the same items in the same order.
func fingerprint[T Item](items []T) uint64 {
	return xxh3.HashString(strings.Join(ids(items), "\x00"))
}
