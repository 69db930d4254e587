// Package notification sends native desktop notifications when followed
// content arrives while the reader is looking at something else.
package notification

import (
	"context"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"
	"sync"
	"time"
)

const (
	appName     = "Carousel"
	sendTimeout = 5 * time.Second
)

// SendFunc delivers a single notification.
type SendFunc func(ctx context.Context, title, message string) error

// Notifier handles sending native notifications
type Notifier struct {
	enabled  bool
	send     SendFunc
	interval time.Duration

	mu   sync.Mutex
	last time.Time
	wg   sync.WaitGroup
}

type Option func(*Notifier)

// WithSender replaces the platform sender.
func WithSender(send SendFunc) Option {
	return func(n *Notifier) {
		n.send = send
	}
}

// WithInterval drops notifications sent less than d after the previous one.
func WithInterval(d time.Duration) Option {
	return func(n *Notifier) {
		n.interval = d
	}
}

// New creates a new Notifier instance
func New(enabled bool, opts ...Option) *Notifier {
	n := &Notifier{
		enabled:  enabled,
		send:     sendNotification,
		interval: 10 * time.Second,
	}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NotifyNewContent tells the user that count entries were appended to the
// feed named source while they were not at the end of it.
func (n *Notifier) NotifyNewContent(ctx context.Context, source string, count int) bool {
	if !n.enabled || count <= 0 {
		slog.Debug("Notifications disabled, skipping notification")
		return false
	}

	n.mu.Lock()
	now := time.Now()
	if !n.last.IsZero() && now.Sub(n.last) < n.interval {
		n.mu.Unlock()
		return false
	}
	n.last = now
	n.mu.Unlock()

	title := appName
	message := fmt.Sprintf("%d new entries in %s", count, source)
	if count == 1 {
		message = fmt.Sprintf("1 new entry in %s", source)
	}

	slog.Debug("Sending notification", "title", title, "message", message)
	n.wg.Add(1)
	go func() {
		defer n.wg.Done()
		ctx, cancel := context.WithTimeout(ctx, sendTimeout)
		defer cancel()
		if err := n.send(ctx, title, message); err != nil {
			slog.Warn("Failed to send notification", "error", err, "title", title, "message", message)
		} else {
			slog.Debug("Notification sent successfully", "title", title)
		}
	}()
	return true
}

// Wait blocks until every notification in flight was handed off.
func (n *Notifier) Wait() {
	n.wg.Wait()
}

func sendNotification(ctx context.Context, title, message string) error {
	switch runtime.GOOS {
	case "darwin":
		return sendMacOSNotification(ctx, title, message)
	case "linux", "freebsd", "openbsd", "netbsd":
		return exec.CommandContext(ctx, "notify-send", "--app-name", appName, title, message).Run()
	case "windows":
		return sendWindowsNotification(ctx, title, message)
	default:
		return fmt.Errorf("notifications not supported on %s", runtime.GOOS)
	}
}

func sendMacOSNotification(ctx context.Context, title, message string) error {
	quote := strings.NewReplacer(`\`, `\\`, `"`, `\"`)
	script := fmt.Sprintf(`display notification "%s" with title "%s"`, quote.Replace(message), quote.Replace(title))
	output, err := exec.CommandContext(ctx, "osascript", "-e", script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("osascript failed: %w, output: %s", err, string(output))
	}
	return nil
}

// sendWindowsNotification shows a toast on Windows 10+ and falls back to msg.
func sendWindowsNotification(ctx context.Context, title, message string) error {
	script := fmt.Sprintf(`
		try {
			[Windows.UI.Notifications.ToastNotificationManager, Windows.UI.Notifications, ContentType = WindowsRuntime] | Out-Null
			$template = [Windows.UI.Notifications.ToastNotificationManager]::GetTemplateContent([Windows.UI.Notifications.ToastTemplateType]::ToastText02)
			$text = $template.GetElementsByTagName("text")
			$text.Item(0).AppendChild($template.CreateTextNode(%q)) | Out-Null
			$text.Item(1).AppendChild($template.CreateTextNode(%q)) | Out-Null
			$toast = New-Object Windows.UI.Notifications.ToastNotification $template
			[Windows.UI.Notifications.ToastNotificationManager]::CreateToastNotifier(%q).Show($toast)
		} catch {
			exit 1
		}
	`, title, message, appName)

	err := exec.CommandContext(ctx, "powershell", "-WindowStyle", "Hidden", "-Command", script).Run()
	if err == nil {
		return nil
	}
	slog.Debug("Windows toast notification failed, trying fallback", "error", err)
	return exec.CommandContext(ctx, "msg", "*", title+": "+message).Run()
}
