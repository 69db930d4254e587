// Package questionary reveals slides one at a time, the way a quiz asks its
// questions. Hidden slides are not mounted, and scrolls wait until their
// target slide is visible and measured.
package questionary

import (
	"log/slog"
	"slices"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/carousel/internal/pager"
	"github.com/charmbracelet/carousel/internal/swiper"
	"github.com/charmbracelet/carousel/internal/tui/components/core/layout"
	"github.com/charmbracelet/carousel/internal/tui/util"
)

const maxPasses = 8

// Resolver returns the id of the slide that should be on screen.
type Resolver[T swiper.Item] func(slides []T, currentIndex int) string

// CurrentSlide is the default resolver: the slide at the current index.
func CurrentSlide[T swiper.Item](slides []T, currentIndex int) string {
	if currentIndex < 0 || currentIndex >= len(slides) {
		return ""
	}
	return slides[currentIndex].ID()
}

type Questionary[T swiper.Item] interface {
	util.Model
	layout.Sizeable

	SetSlides(slides []T) tea.Cmd
	ScrollTo(index int, animated bool) tea.Cmd
	ScrollBy(delta int, animated bool) tea.Cmd
	// ShowNext reveals one more slide.
	ShowNext() tea.Cmd
	// ResetAndScroll hides every slide after the next one, forgets its
	// measurement and moves to it.
	ResetAndScroll() tea.Cmd

	Index() int
	VisibleCount() int
	IsRendering() bool
	IsFirst() bool
	IsLast() bool
	Pending() []swiper.Request
}

type confOptions[T swiper.Item] struct {
	width, height  int
	showAll        bool
	initialIndex   int
	resolver       Resolver[T]
	onIndexChanged func(index int)
}

type Option[T swiper.Item] func(*confOptions[T])

// WithShowAll mounts every slide up front.
func WithShowAll[T swiper.Item](showAll bool) Option[T] {
	return func(o *confOptions[T]) {
		o.showAll = showAll
	}
}

func WithIndex[T swiper.Item](index int) Option[T] {
	return func(o *confOptions[T]) {
		o.initialIndex = index
	}
}

func WithResolver[T swiper.Item](r Resolver[T]) Option[T] {
	return func(o *confOptions[T]) {
		o.resolver = r
	}
}

func WithOnIndexChanged[T swiper.Item](fn func(index int)) Option[T] {
	return func(o *confOptions[T]) {
		o.onIndexChanged = fn
	}
}

func WithSize[T swiper.Item](width, height int) Option[T] {
	return func(o *confOptions[T]) {
		o.width = width
		o.height = height
	}
}

type questionary[T swiper.Item] struct {
	*confOptions[T]

	pager  swiper.Pager[T]
	slides []T

	generation   int
	visibleCount int
	currentIndex int
	currentSlide string
	requests     []swiper.Request
	// rendered keeps measured slide ids in the order they were measured.
	rendered []string

	mountedGeneration int
	mounted           []string
}

func New[T swiper.Item](p swiper.Pager[T], slides []T, opts ...Option[T]) Questionary[T] {
	q := &questionary[T]{
		confOptions: &confOptions[T]{
			resolver: CurrentSlide[T],
		},
		pager:             p,
		slides:            slides,
		visibleCount:      1,
		mountedGeneration: -1,
	}
	for _, opt := range opts {
		opt(q.confOptions)
	}
	q.currentIndex = q.initialIndex
	q.currentSlide = q.resolver(slides, q.currentIndex)
	return q
}

// Init implements Questionary.
func (q *questionary[T]) Init() tea.Cmd {
	var cmds []tea.Cmd
	if q.width > 0 && q.height > 0 {
		cmds = append(cmds, q.pager.SetSize(q.width, q.height))
	}
	cmds = append(cmds, q.pager.Init(), q.sync())
	return tea.Batch(cmds...)
}

// Update implements Questionary.
func (q *questionary[T]) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case pager.SettledMsg:
		cmd := q.update(func() {
			q.currentIndex = msg.Index
		})
		if q.onIndexChanged != nil {
			q.onIndexChanged(msg.Index)
		}
		return q, cmd
	case pager.MeasuredMsg:
		if msg.Generation != q.generation {
			return q, nil
		}
		return q, q.update(func() {
			if !slices.Contains(q.rendered, msg.ID) {
				q.rendered = append(q.rendered, msg.ID)
			}
		})
	}
	u, cmd := q.pager.Update(msg)
	if p, ok := u.(swiper.Pager[T]); ok {
		q.pager = p
	}
	return q, cmd
}

// View implements Questionary.
func (q *questionary[T]) View() string {
	return q.pager.View()
}

func (q *questionary[T]) visibleSlides() []T {
	if q.showAll {
		return q.slides
	}
	return q.slides[:min(q.visibleCount, len(q.slides))]
}

// IsRendering implements Questionary.
func (q *questionary[T]) IsRendering() bool {
	for _, slide := range q.visibleSlides() {
		if !slices.Contains(q.rendered, slide.ID()) {
			return true
		}
	}
	return false
}

// update applies fn and then brings the current slide, the pager position
// and the request queue back in line, one concern per pass.
func (q *questionary[T]) update(fn func()) tea.Cmd {
	prevIndex := q.currentIndex
	fn()

	var cmds []tea.Cmd
	for pass := 0; pass < maxPasses; pass++ {
		if q.syncSlide(prevIndex) {
			prevIndex = q.currentIndex
			continue
		}
		if cmd, ok := q.syncIndex(); ok {
			cmds = append(cmds, cmd)
			break
		}
		if q.IsRendering() {
			break
		}
		cmd, ok := q.processRequests()
		if !ok {
			break
		}
		cmds = append(cmds, cmd)
	}
	cmds = append(cmds, q.sync())
	return tea.Batch(cmds...)
}

func (q *questionary[T]) syncSlide(prevIndex int) bool {
	if prevIndex == q.currentIndex {
		return false
	}
	if q.currentIndex >= 0 && q.currentIndex < len(q.slides) {
		q.currentSlide = q.slides[q.currentIndex].ID()
	}
	return true
}

// syncIndex moves the pager back onto the current slide when the slides
// changed under it.
func (q *questionary[T]) syncIndex() (tea.Cmd, bool) {
	if q.resolver(q.slides, q.currentIndex) == q.currentSlide || q.IsRendering() {
		return nil, false
	}
	index := slices.IndexFunc(q.slides, func(slide T) bool {
		return slide.ID() == q.currentSlide
	})
	if index == -1 {
		return nil, false
	}
	slog.Debug("Following moved slide", "id", q.currentSlide, "index", index)
	return q.pager.ScrollTo(index, false), true
}

func (q *questionary[T]) processRequests() (tea.Cmd, bool) {
	var cmds []tea.Cmd
	n := len(q.requests)
	for len(q.requests) > 0 {
		r := q.requests[len(q.requests)-1]
		if !q.hasIndex(r) {
			break
		}
		switch r.Op {
		case swiper.OpScrollTo:
			cmds = append(cmds, q.pager.ScrollTo(r.Arg, r.Animated))
		case swiper.OpScrollBy:
			cmds = append(cmds, q.pager.ScrollBy(r.Arg, r.Animated))
		}
		q.requests = q.requests[:len(q.requests)-1]
	}
	return tea.Batch(cmds...), len(q.requests) != n
}

func (q *questionary[T]) hasIndex(r swiper.Request) bool {
	next := r.Arg
	if r.Op == swiper.OpScrollBy {
		next += q.currentIndex
	}
	return (q.showAll || next < q.visibleCount) && next < len(q.rendered)
}

// sync mounts the visible slides.
func (q *questionary[T]) sync() tea.Cmd {
	visible := q.visibleSlides()
	ids := make([]string, len(visible))
	for i, slide := range visible {
		ids[i] = slide.ID()
	}
	if q.mountedGeneration == q.generation && slices.Equal(ids, q.mounted) {
		return nil
	}
	q.mountedGeneration = q.generation
	q.mounted = ids
	return q.pager.SetChildren(q.generation, slices.Clone(visible), q.currentIndex)
}

// SetSlides implements Questionary.
func (q *questionary[T]) SetSlides(slides []T) tea.Cmd {
	return q.update(func() {
		q.slides = slides
	})
}

// ScrollTo implements Questionary.
func (q *questionary[T]) ScrollTo(index int, animated bool) tea.Cmd {
	return q.enqueue(swiper.Request{Op: swiper.OpScrollTo, Arg: index, Animated: animated})
}

// ScrollBy implements Questionary.
func (q *questionary[T]) ScrollBy(delta int, animated bool) tea.Cmd {
	return q.enqueue(swiper.Request{Op: swiper.OpScrollBy, Arg: delta, Animated: animated})
}

func (q *questionary[T]) enqueue(r swiper.Request) tea.Cmd {
	return q.update(func() {
		q.requests = append(slices.Clip(q.requests), r)
	})
}

// ShowNext implements Questionary.
func (q *questionary[T]) ShowNext() tea.Cmd {
	if q.showAll {
		return nil
	}
	return q.update(func() {
		q.visibleCount++
	})
}

// ResetAndScroll implements Questionary.
func (q *questionary[T]) ResetAndScroll() tea.Cmd {
	if q.showAll {
		return nil
	}
	reset := q.update(func() {
		q.visibleCount = q.currentIndex + 2
		q.rendered = slices.Clone(q.rendered[:min(len(q.rendered), q.visibleCount-1)])
		// Remount so the revealed slide is measured again.
		q.generation ^= 1
	})
	return tea.Batch(reset, q.ScrollBy(1, true))
}

// Index implements Questionary.
func (q *questionary[T]) Index() int {
	return q.currentIndex
}

// VisibleCount implements Questionary.
func (q *questionary[T]) VisibleCount() int {
	return len(q.visibleSlides())
}

// IsFirst implements Questionary.
func (q *questionary[T]) IsFirst() bool {
	return q.currentIndex == 0
}

// IsLast implements Questionary. It is the last revealed slide, not
// necessarily the last slide.
func (q *questionary[T]) IsLast() bool {
	return q.VisibleCount() == q.currentIndex+1
}

// Pending implements Questionary.
func (q *questionary[T]) Pending() []swiper.Request {
	return slices.Clone(q.requests)
}

// SetSize implements Questionary.
func (q *questionary[T]) SetSize(width, height int) tea.Cmd {
	q.width = width
	q.height = height
	return q.pager.SetSize(width, height)
}

// GetSize implements Questionary.
func (q *questionary[T]) GetSize() (int, int) {
	return q.width, q.height
}
