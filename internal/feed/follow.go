package feed

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/carousel/internal/log"
	"github.com/nxadm/tail"
)

// AppendedMsg carries an entry appended to the followed file.
type AppendedMsg struct {
	Entry *Entry
}

// ErrorMsg reports a line that could not be turned into an entry.
type ErrorMsg struct {
	Err error
}

// Follower tails a feed file from where Load stopped.
type Follower struct {
	feed  *Feed
	tail  *tail.Tail
	lines chan tea.Msg
}

// Follow starts tailing the feed file. The feed's parse state belongs to
// the follower from now on: entries are delivered through Wait only.
func (f *Feed) Follow(ctx context.Context) (*Follower, error) {
	t, err := tail.TailFile(f.path, tail.Config{
		Location:  &tail.SeekInfo{Offset: f.size, Whence: io.SeekStart},
		Follow:    true,
		ReOpen:    true,
		MustExist: true,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to follow feed: %w", err)
	}

	w := &Follower{
		feed:  f,
		tail:  t,
		lines: make(chan tea.Msg),
	}
	go w.run(ctx)
	return w, nil
}

func (w *Follower) run(ctx context.Context) {
	defer close(w.lines)
	defer log.RecoverPanic("feed.Follower.run", nil)
	defer w.tail.Cleanup()

	for {
		select {
		case <-ctx.Done():
			_ = w.tail.Stop()
			return
		case line, ok := <-w.tail.Lines:
			if !ok {
				return
			}
			msg := w.handle(line)
			if msg == nil {
				continue
			}
			select {
			case w.lines <- msg:
			case <-ctx.Done():
				_ = w.tail.Stop()
				return
			}
		}
	}
}

func (w *Follower) handle(line *tail.Line) tea.Msg {
	if line.Err != nil {
		slog.Warn("Failed to read feed line", "path", w.feed.path, "error", line.Err)
		return ErrorMsg{Err: line.Err}
	}
	entry, err := w.feed.parse(line.Text)
	if err != nil {
		slog.Warn("Skipping feed line", "path", w.feed.path, "line", w.feed.line, "error", err)
		return ErrorMsg{Err: err}
	}
	if entry == nil {
		return nil
	}
	slog.Debug("Feed entry appended", "id", entry.ID())
	return AppendedMsg{Entry: entry}
}

// Wait returns a command that blocks until the next appended entry. It
// yields nil once the follower stopped.
func (w *Follower) Wait() tea.Cmd {
	return func() tea.Msg {
		msg, ok := <-w.lines
		if !ok {
			return nil
		}
		return msg
	}
}

// Stop stops tailing the file.
func (w *Follower) Stop() error {
	return w.tail.Stop()
}
