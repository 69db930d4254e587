package swiper

import (
	"fmt"
	"slices"
)

// externalIndexOf resolves a mounted position to its position in the full
// list by id.
func (s *swiper[T]) externalIndexOf(internal int) int {
	if internal < 0 || internal >= len(s.state.children) {
		s.reportIndexError("externalIndexOf", internal)
		return NotFound
	}
	external, ok := s.indexMap[s.state.children[internal].ID()]
	if !ok {
		s.reportIndexError("externalIndexOf", internal)
		return NotFound
	}
	return external
}

// internalIndexOf resolves a full list position to its mounted position.
// Items that are mounted but not measured yet resolve to NotFound: they
// cannot be scrolled to.
func (s *swiper[T]) internalIndexOf(external int) int {
	if external < 0 || external >= len(s.items) {
		s.reportIndexError("internalIndexOf", external)
		return NotFound
	}
	id := s.items[external].ID()
	if !s.state.registered(id) {
		return NotFound
	}
	return slices.IndexFunc(s.state.children, func(child T) bool {
		return child.ID() == id
	})
}

func (s *swiper[T]) reindex() {
	s.indexMap = make(map[string]int, len(s.items))
	for inx, item := range s.items {
		s.indexMap[item.ID()] = inx
	}
}

func (s *swiper[T]) reportIndexError(method string, index int) {
	s.report(fmt.Errorf("%w: evaluating %s", ErrIndexResolution, method), "arg_index", index)
}

func (s *swiper[T]) report(err error, args ...any) {
	s.reporter.Report(err, append(args, s.state.snapshot()...)...)
}
