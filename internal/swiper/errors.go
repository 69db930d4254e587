package swiper

import (
	"errors"
	"log/slog"
)

var (
	// ErrInvalidWindow is reported when the mounted window no longer fits
	// the item list, or a window cannot be computed for an index.
	ErrInvalidWindow = errors.New("lazy window invalid")
	// ErrIndexResolution is reported when an index cannot be translated
	// between the full list and the mounted window.
	ErrIndexResolution = errors.New("index resolution failed")
	// ErrUnsupportedMutation is reported when the item list changed in a way
	// other than a single tail append and the mounted window had to be
	// rebuilt around the displayed item.
	ErrUnsupportedMutation = errors.New("unsupported list mutation")
)

// Reporter records handled failures together with key/value context. The
// swiper never returns these failures to its owner.
type Reporter interface {
	Report(err error, args ...any)
}

type slogReporter struct{}

func (slogReporter) Report(err error, args ...any) {
	slog.Warn("Handled swiper failure", append([]any{"error", err}, args...)...)
}
