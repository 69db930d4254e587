package tui

import (
	"fmt"

	"github.com/charmbracelet/bubbles/v2/help"
	"github.com/charmbracelet/bubbles/v2/key"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/carousel/internal/config"
	"github.com/charmbracelet/carousel/internal/feed"
	"github.com/charmbracelet/carousel/internal/pager"
	"github.com/charmbracelet/carousel/internal/questionary"
	"github.com/charmbracelet/carousel/internal/tui/styles"
	"github.com/charmbracelet/lipgloss/v2"
)

// QuizOptions configures the quiz model.
type QuizOptions struct {
	Config  *config.Config
	Feed    *feed.Feed
	ShowAll bool
}

type quizModel struct {
	width, height int

	entries     []*feed.Entry
	questionary questionary.Questionary[*feed.Entry]

	keyMap    QuizKeyMap
	pagerKeys pager.KeyMap
	help      help.Model
}

// NewQuiz creates a model that reveals the entries of a feed one at a time.
func NewQuiz(opts QuizOptions) tea.Model {
	pagerKeys := pager.DefaultKeyMap()
	p := pager.New[*feed.Entry](
		pager.WithSettleDelay(opts.Config.SettleDelay()),
		pager.WithKeyMap(pagerKeys),
	)
	entries := opts.Feed.Entries()
	h := help.New()
	h.Styles = styles.CurrentTheme().S().Help

	return &quizModel{
		entries:     entries,
		questionary: questionary.New(p, entries, questionary.WithShowAll[*feed.Entry](opts.ShowAll)),
		keyMap:      DefaultQuizKeyMap(),
		pagerKeys:   pagerKeys,
		help:        h,
	}
}

func (m *quizModel) Init() tea.Cmd {
	return m.questionary.Init()
}

func (m *quizModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, m.questionary.SetSize(m.width, max(m.height-2, 0))
	case tea.KeyPressMsg:
		switch {
		case key.Matches(msg, m.keyMap.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keyMap.Reveal):
			return m, m.reveal()
		case key.Matches(msg, m.keyMap.Reset):
			return m, m.questionary.ResetAndScroll()
		}
	}
	u, cmd := m.questionary.Update(msg)
	if q, ok := u.(questionary.Questionary[*feed.Entry]); ok {
		m.questionary = q
	}
	return m, cmd
}

// reveal moves to the next question, revealing it first when the last
// revealed one is displayed.
func (m *quizModel) reveal() tea.Cmd {
	q := m.questionary
	if !q.IsLast() {
		return q.ScrollTo(q.VisibleCount()-1, true)
	}
	if q.VisibleCount() >= len(m.entries) {
		return nil
	}
	return tea.Batch(q.ShowNext(), q.ScrollBy(1, true))
}

func (m *quizModel) done() bool {
	return len(m.entries) > 0 && m.questionary.IsLast() && m.questionary.VisibleCount() == len(m.entries)
}

func (m *quizModel) progressView() string {
	t := styles.CurrentTheme().S()
	if len(m.entries) == 0 {
		return t.Muted.Render("No questions")
	}
	progress := fmt.Sprintf("Question %d of %d", m.questionary.Index()+1, len(m.entries))
	if m.done() {
		return lipgloss.JoinHorizontal(lipgloss.Top, t.Muted.Render(progress+" "), t.Badge.Render("Done"))
	}
	return t.Muted.Render(progress)
}

func (m *quizModel) View() string {
	keys := newHelpKeyMap(m.keyMap.KeyBindings(), m.keyMap, m.pagerKeys)
	return lipgloss.JoinVertical(
		lipgloss.Left,
		m.progressView(),
		m.questionary.View(),
		lipgloss.NewStyle().MaxWidth(max(m.width, 0)).Render(m.help.View(keys)),
	)
}
