package telemetry

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/charmbracelet/carousel/internal/swiper"
	"github.com/google/uuid"
	"github.com/tidwall/gjson"
	"github.com/tidwall/sjson"
)

type Kind string

const (
	KindInvalidWindow       Kind = "invalid_window"
	KindIndexResolution     Kind = "index_resolution"
	KindUnsupportedMutation Kind = "unsupported_mutation"
	KindOther               Kind = "other"
)

func kindOf(err error) Kind {
	switch {
	case errors.Is(err, swiper.ErrInvalidWindow):
		return KindInvalidWindow
	case errors.Is(err, swiper.ErrIndexResolution):
		return KindIndexResolution
	case errors.Is(err, swiper.ErrUnsupportedMutation):
		return KindUnsupportedMutation
	default:
		return KindOther
	}
}

// Report is a handled failure with the state it happened in.
type Report struct {
	ID        string         `json:"id" yaml:"id"`
	Kind      Kind           `json:"kind" yaml:"kind"`
	Error     string         `json:"error" yaml:"error"`
	Context   map[string]any `json:"context,omitempty" yaml:"context,omitempty"`
	CreatedAt int64          `json:"created_at" yaml:"created_at"`

	raw string
}

// NewReport builds a report from err and slog style key/value pairs.
// Dotted keys nest, so "state.start" ends up under "state".
func NewReport(err error, args ...any) Report {
	raw := "{}"
	for i := 0; i+1 < len(args); i += 2 {
		key, ok := args[i].(string)
		if !ok {
			key = fmt.Sprint(args[i])
		}
		next, setErr := sjson.Set(raw, key, args[i+1])
		if setErr != nil {
			slog.Debug("Dropping report context value", "key", key, "error", setErr)
			continue
		}
		raw = next
	}

	r := Report{
		ID:        uuid.NewString(),
		Kind:      kindOf(err),
		Error:     err.Error(),
		CreatedAt: time.Now().UnixMilli(),
	}
	r.setRawContext(raw)
	return r
}

// Get reads a context value by gjson path.
func (r Report) Get(path string) gjson.Result {
	return gjson.Get(r.rawContext(), path)
}

func (r Report) rawContext() string {
	if r.raw == "" {
		return "{}"
	}
	return r.raw
}

func (r *Report) setRawContext(raw string) {
	r.raw = raw
	if m, ok := gjson.Parse(raw).Value().(map[string]any); ok && len(m) > 0 {
		r.Context = m
	}
}

// Time is when the report was created.
func (r Report) Time() time.Time {
	return time.UnixMilli(r.CreatedAt)
}
