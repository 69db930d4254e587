package swiper

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
)

const (
	unreadBadge  = "↓ Latest messages"
	loadingLabel = "Loading…"
	// debugLines is the height of debugView, rendering line included.
	debugLines = 6
)

var (
	badgeStyle   = lipgloss.NewStyle().Bold(true).Reverse(true).Padding(0, 1)
	loadingStyle = lipgloss.NewStyle().Faint(true)
	debugStyle   = lipgloss.NewStyle().Faint(true).Border(lipgloss.NormalBorder(), true, false, false, false)
)

// chromeHeight is the number of lines the swiper draws around the pager.
func (s *swiper[T]) chromeHeight() int {
	h := 1
	if s.debug {
		h += debugLines + 1
	}
	return h
}

// View implements Swiper.
func (s *swiper[T]) View() string {
	parts := []string{s.body(), s.status()}
	if s.debug {
		parts = append(parts, debugStyle.Width(s.width).Render(s.debugView()))
	}
	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

// body is the pager, or while rendering the displayed item frozen under a
// loading indicator placed on the side the reader is moving to.
func (s *swiper[T]) body() string {
	if !s.state.rendering || !s.overlay {
		return s.pager.View()
	}

	height := max(s.height-s.chromeHeight(), 0)
	current, ok := s.Current()
	content := ""
	if ok {
		content = current.View()
	}
	indicator := loadingStyle.Width(s.width).AlignHorizontal(lipgloss.Center).Render(s.loading())
	lines := strings.Split(content, "\n")
	if len(lines) > height-1 {
		lines = lines[:max(height-1, 0)]
	}
	body := strings.Join(lines, "\n")

	var view string
	if s.state.direction < 0 {
		view = lipgloss.JoinVertical(lipgloss.Left, indicator, body)
	} else {
		view = lipgloss.JoinVertical(lipgloss.Left, body, indicator)
	}
	return lipgloss.NewStyle().Width(s.width).Height(height).MaxHeight(height).Render(view)
}

func (s *swiper[T]) loading() string {
	if s.showSpinner {
		return s.spin.View() + " " + loadingLabel
	}
	return loadingLabel
}

func (s *swiper[T]) status() string {
	if !s.state.unread {
		return ""
	}
	return lipgloss.PlaceHorizontal(s.width, lipgloss.Right, badgeStyle.Render(unreadBadge))
}

// debugView is the plain text bookkeeping panel.
func (s *swiper[T]) debugView() string {
	var b strings.Builder
	w := s.state.window
	fmt.Fprintln(&b, "development debug")
	fmt.Fprintf(&b, "swiper: %d/%d\n", s.state.index+1, len(s.state.children))
	fmt.Fprintf(&b, "external: %d/%d\n", s.state.externalIndex+1, len(s.items))
	fmt.Fprintf(&b, "window: %d-%d/%d\n", w.Start, w.End-1, len(s.items))
	fmt.Fprintf(&b, "rendered: %d", len(s.state.registry))
	if s.state.rendering {
		b.WriteString("\nrendering...")
	}
	return b.String()
}
