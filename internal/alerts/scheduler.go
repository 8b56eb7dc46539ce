package alerts

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron"
)

// Scheduler runs a Dispatcher on a cron schedule. Overlapping ticks are
// skipped while a run is still in flight.
type Scheduler struct {
	cron    *cron.Cron
	d       *Dispatcher
	timeout time.Duration

	mu      sync.Mutex
	running bool
}

// NewScheduler validates schedule (standard cron with seconds, or a descriptor
// such as "@every 15m").
func NewScheduler(d *Dispatcher, schedule string) (*Scheduler, error) {
	s := &Scheduler{cron: cron.New(), d: d, timeout: 2 * time.Minute}
	if err := s.cron.AddFunc(schedule, s.tick); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *Scheduler) Start() { s.cron.Start() }
func (s *Scheduler) Stop()  { s.cron.Stop() }

func (s *Scheduler) tick() {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		slog.Warn("alert dispatch still running; skipping tick")
		return
	}
	s.running = true
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	res, err := s.d.Run(ctx, time.Now())
	if err != nil {
		slog.Error("alert dispatch failed", "err", err)
		return
	}
	slog.Info("alert dispatch done",
		"derived", res.Derived, "published", res.Published, "emailed", res.Emailed, "failed", res.Failed)
}
