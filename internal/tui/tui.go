// Package tui hosts the swiper over a feed file and the quiz over a
// questionary.
package tui

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"slices"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/v2/help"
	"github.com/charmbracelet/bubbles/v2/key"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/carousel/internal/config"
	"github.com/charmbracelet/carousel/internal/feed"
	"github.com/charmbracelet/carousel/internal/notification"
	"github.com/charmbracelet/carousel/internal/pager"
	"github.com/charmbracelet/carousel/internal/swiper"
	"github.com/charmbracelet/carousel/internal/tui/components/logo"
	"github.com/charmbracelet/carousel/internal/tui/styles"
	"github.com/charmbracelet/carousel/internal/tui/util"
	"github.com/charmbracelet/lipgloss/v2"
)

const (
	statusTTL    = 3 * time.Second
	waitingLabel = "Waiting for entries…"
)

// Options configures the application model.
type Options struct {
	Config *config.Config
	Feed   *feed.Feed
	// Follower is optional. Appended entries are fed to the swiper.
	Follower *feed.Follower
	Reporter swiper.Reporter
	Notifier *notification.Notifier
	Index    int
	// Clipboard defaults to the system clipboard.
	Clipboard func(string) error
}

type clearStatusMsg struct {
	id int
}

type appModel struct {
	opts          Options
	width, height int

	items  []*feed.Entry
	swiper swiper.Swiper[*feed.Entry]

	keyMap     KeyMap
	pagerKeys  pager.KeyMap
	swiperKeys swiper.KeyMap
	help       help.Model
	logo       *logo.Logo

	status   *util.InfoMsg
	statusID int
}

// New creates the application model for a loaded feed.
func New(opts Options) tea.Model {
	cfg := opts.Config
	if opts.Clipboard == nil {
		opts.Clipboard = clipboard.WriteAll
	}

	pagerKeys := pager.DefaultKeyMap()
	p := pager.New[*feed.Entry](
		pager.WithSettleDelay(cfg.SettleDelay()),
		pager.WithKeyMap(pagerKeys),
		pager.WithIndicator(),
		pager.WithEnableMouse(),
	)

	swiperKeys := swiper.DefaultKeyMap()
	swiperOpts := []swiper.Option{
		swiper.WithIndex(opts.Index),
		swiper.WithKeyMap(swiperKeys),
		swiper.WithWindowLength(cfg.WindowLength),
		swiper.WithRenderAll(cfg.RenderAll),
		swiper.WithDebug(cfg.Options.Debug),
	}
	if opts.Reporter != nil {
		swiperOpts = append(swiperOpts, swiper.WithReporter(opts.Reporter))
	}
	if cfg.SkipBlockedRequests {
		swiperOpts = append(swiperOpts, swiper.WithSkipBlockedRequests())
	}
	if cfg.Options.Spinner {
		swiperOpts = append(swiperOpts, swiper.WithSpinner())
	}

	items := slices.Clone(opts.Feed.Entries())
	h := help.New()
	h.Styles = styles.CurrentTheme().S().Help

	return &appModel{
		opts:       opts,
		items:      items,
		swiper:     swiper.New(p, items, swiperOpts...),
		keyMap:     DefaultKeyMap(),
		pagerKeys:  pagerKeys,
		swiperKeys: swiperKeys,
		help:       h,
		logo:       logo.Standard(),
	}
}

func (m *appModel) Init() tea.Cmd {
	cmds := []tea.Cmd{m.swiper.Init()}
	if m.opts.Follower != nil {
		cmds = append(cmds, m.opts.Follower.Wait())
	}
	return tea.Batch(cmds...)
}

func (m *appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		return m, m.resize()
	case feed.AppendedMsg:
		return m, m.appendEntry(msg.Entry)
	case feed.ErrorMsg:
		cmds := []tea.Cmd{util.ReportError(msg.Err)}
		if m.opts.Follower != nil {
			cmds = append(cmds, m.opts.Follower.Wait())
		}
		return m, tea.Batch(cmds...)
	case util.InfoMsg:
		m.status = &msg
		m.statusID++
		id := m.statusID
		return m, tea.Tick(statusTTL, func(time.Time) tea.Msg {
			return clearStatusMsg{id: id}
		})
	case clearStatusMsg:
		if msg.id == m.statusID {
			m.status = nil
		}
		return m, nil
	case tea.KeyPressMsg:
		switch {
		case key.Matches(msg, m.keyMap.Quit):
			m.savePosition()
			return m, tea.Quit
		case key.Matches(msg, m.keyMap.Copy):
			return m, m.copyCurrent()
		case key.Matches(msg, m.keyMap.Help):
			m.help.ShowAll = !m.help.ShowAll
			return m, m.resize()
		}
	}
	return m, m.forward(msg)
}

func (m *appModel) forward(msg tea.Msg) tea.Cmd {
	u, cmd := m.swiper.Update(msg)
	if s, ok := u.(swiper.Swiper[*feed.Entry]); ok {
		m.swiper = s
	}
	return cmd
}

func (m *appModel) appendEntry(entry *feed.Entry) tea.Cmd {
	atEnd := m.swiper.Index() == len(m.items)-1
	m.items = append(m.items, entry)

	cmds := []tea.Cmd{m.swiper.SetItems(m.items)}
	if m.opts.Follower != nil {
		cmds = append(cmds, m.opts.Follower.Wait())
	}
	if !atEnd && m.opts.Notifier != nil {
		m.opts.Notifier.NotifyNewContent(context.Background(), filepath.Base(m.opts.Feed.Path()), 1)
	}
	return tea.Batch(cmds...)
}

func (m *appModel) copyCurrent() tea.Cmd {
	entry, ok := m.swiper.Current()
	if !ok {
		return nil
	}
	if err := m.opts.Clipboard(entry.Text()); err != nil {
		return util.ReportError(fmt.Errorf("failed to copy entry: %w", err))
	}
	return util.ReportInfo("Copied entry to clipboard")
}

func (m *appModel) savePosition() {
	if !m.opts.Config.Options.Resume {
		return
	}
	entry, ok := m.swiper.Current()
	if !ok {
		return
	}
	pos := config.Position{ID: entry.ID(), Index: m.swiper.Index()}
	if err := config.SavePosition(m.opts.Config, m.opts.Feed.Path(), pos); err != nil {
		slog.Warn("Failed to save position", "path", m.opts.Feed.Path(), "error", err)
	}
}

func (m *appModel) keys() help.KeyMap {
	bindings := slices.Concat(m.swiper.ShortHelp(), m.keyMap.KeyBindings())
	return newHelpKeyMap(bindings, m.pagerKeys, m.swiperKeys, m.keyMap)
}

func (m *appModel) helpView() string {
	return lipgloss.NewStyle().MaxWidth(max(m.width, 0)).Render(m.help.View(m.keys()))
}

// contentHeight is what is left for the swiper below the status and help
// lines.
func (m *appModel) contentHeight() int {
	return max(m.height-1-lipgloss.Height(m.helpView()), 0)
}

func (m *appModel) resize() tea.Cmd {
	return m.swiper.SetSize(m.width, m.contentHeight())
}

func (m *appModel) statusView() string {
	if m.status == nil {
		return ""
	}
	t := styles.CurrentTheme().S()
	style := t.InfoMsg
	switch m.status.Type {
	case util.InfoTypeWarn:
		style = t.WarnMsg
	case util.InfoTypeError:
		style = t.ErrorMsg
	}
	return style.MaxWidth(max(m.width, 0)).Render(m.status.Msg)
}

func (m *appModel) View() string {
	var body string
	if len(m.items) == 0 {
		t := styles.CurrentTheme().S()
		height := m.contentHeight()
		body = lipgloss.JoinVertical(
			lipgloss.Center,
			m.logo.Render(m.width, max(height-1, 0)),
			t.Muted.Width(max(m.width, 0)).AlignHorizontal(lipgloss.Center).Render(waitingLabel),
		)
	} else {
		body = m.swiper.View()
	}
	return lipgloss.JoinVertical(lipgloss.Left, body, m.statusView(), m.helpView())
}
