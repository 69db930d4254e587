package telemetry

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/charmbracelet/carousel/internal/log"
)

const (
	recordTimeout = 2 * time.Second
	queueSize     = 64
)

// Sink logs handled failures and persists them when it has a store. It
// satisfies swiper.Reporter. Reports are written in the background, so
// Report never waits on the database.
type Sink struct {
	store   *Store
	reports chan Report
	done    chan struct{}

	mu     sync.Mutex
	closed bool
}

func NewSink(store *Store) *Sink {
	s := &Sink{store: store}
	if store == nil {
		return s
	}
	s.reports = make(chan Report, queueSize)
	s.done = make(chan struct{})
	go s.run()
	return s
}

func (s *Sink) run() {
	defer close(s.done)
	defer log.RecoverPanic("telemetry.Sink.run", nil)

	for r := range s.reports {
		ctx, cancel := context.WithTimeout(context.Background(), recordTimeout)
		if err := s.store.Record(ctx, r); err != nil {
			slog.Error("Failed to record report", "error", err)
		}
		cancel()
	}
}

func (s *Sink) Report(err error, args ...any) {
	slog.Warn("Handled swiper failure", append([]any{"error", err}, args...)...)
	if s.reports == nil {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.reports <- NewReport(err, args...):
	default:
		slog.Warn("Dropping report, queue is full", "error", err)
	}
}

// Close stops accepting reports and waits for the queued ones to be
// written.
func (s *Sink) Close() {
	if s.reports == nil {
		return
	}
	s.mu.Lock()
	if !s.closed {
		s.closed = true
		close(s.reports)
	}
	s.mu.Unlock()
	<-s.done
}
