package feed

import (
	"log/slog"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/carousel/internal/tui/styles"
	"github.com/charmbracelet/lipgloss/v2"
)

// Entry is one page of a feed.
type Entry struct {
	Title string
	Body  string

	id            string
	markdown      bool
	width, height int
	rendered      string
}

func NewEntry(id, title, body string) *Entry {
	return &Entry{id: id, Title: title, Body: body}
}

// ID implements pager.Item.
func (e *Entry) ID() string {
	return e.id
}

// Init implements pager.Item.
func (e *Entry) Init() tea.Cmd {
	return nil
}

// Update implements pager.Item.
func (e *Entry) Update(tea.Msg) (tea.Model, tea.Cmd) {
	return e, nil
}

// View implements pager.Item.
func (e *Entry) View() string {
	if e.rendered == "" {
		e.rendered = e.render()
	}
	return e.rendered
}

func (e *Entry) render() string {
	t := styles.CurrentTheme().S()
	title := t.Title
	body := t.Body
	if e.width > 0 {
		title = title.Width(e.width)
		body = body.Width(e.width)
	}
	if e.Body == "" {
		return title.Render(e.Title)
	}
	if e.markdown {
		if md, ok := e.renderMarkdown(); ok {
			return lipgloss.JoinVertical(lipgloss.Left, title.Render(e.Title), "", md)
		}
	}
	return lipgloss.JoinVertical(lipgloss.Left, title.Render(e.Title), "", body.Render(e.Body))
}

func (e *Entry) renderMarkdown() (string, bool) {
	width := e.width
	if width <= 0 {
		width = 80
	}
	r, err := styles.MarkdownRenderer(width)
	if err != nil {
		slog.Debug("Failed to create markdown renderer", "error", err)
		return "", false
	}
	out, err := r.Render(e.Body)
	if err != nil {
		slog.Debug("Failed to render markdown", "id", e.id, "error", err)
		return "", false
	}
	return strings.TrimRight(out, "\n\r "), true
}

// Text is the plain content of the entry.
func (e *Entry) Text() string {
	if e.Body == "" {
		return e.Title
	}
	return strings.Join([]string{e.Title, e.Body}, "\n\n")
}

// SetSize implements pager.Item.
func (e *Entry) SetSize(width, height int) tea.Cmd {
	if width != e.width || height != e.height {
		e.width = width
		e.height = height
		e.rendered = ""
	}
	return nil
}

// GetSize implements pager.Item.
func (e *Entry) GetSize() (int, int) {
	return e.width, e.height
}
