// Package timer drives session timelines in real time: a Clock that
// dispatches due cues, and a Supervisor that polls it in the background.
package timer

import (
	"context"
	"sync"
	"time"

	"github.com/hammamikhairi/ottocoach/internal/domain"
	"github.com/hammamikhairi/ottocoach/internal/logger"
)

// Option configures the supervisor.
type Option func(*Supervisor)

// WithTickInterval sets how often the supervisor polls the clock. It is
// independent of cue spacing; keep it well under a second.
func WithTickInterval(d time.Duration) Option {
	return func(s *Supervisor) {
		s.tickInterval = d
	}
}

// WithOnCancel sets a callback run when the parent context of an armed
// run is cancelled. It runs with the supervisor lock held and must not
// call back into the supervisor.
func WithOnCancel(fn func()) Option {
	return func(s *Supervisor) {
		s.onCancel = fn
	}
}

// Supervisor owns a Clock and the goroutine that polls it. Arm starts the
// polling loop, Disarm cancels it, and the loop exits on its own once the
// clock has run out of cues.
type Supervisor struct {
	clock        *Clock
	log          *logger.Logger
	tickInterval time.Duration
	onCancel     func()

	mu      sync.Mutex
	running bool
	runID   uint64
	cancel  context.CancelFunc
}

// New creates a supervisor around the given clock.
func New(clock *Clock, log *logger.Logger, opts ...Option) *Supervisor {
	s := &Supervisor{
		clock:        clock,
		log:          log,
		tickInterval: 50 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Clock returns the supervised clock.
func (s *Supervisor) Clock() *Clock { return s.clock }

// Arm installs a timeline and makes sure the polling loop is running.
// Arming while a loop is already active replaces the timeline without
// starting a second loop. Non-blocking.
func (s *Supervisor) Arm(ctx context.Context, timeline []domain.Cue) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.clock.Arm(timeline)

	if s.running {
		s.log.Debug("supervisor: re-armed while running")
		return
	}

	childCtx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.running = true
	s.runID++

	go s.loop(childCtx, s.runID)

	s.log.Info("supervisor started (tick=%s, cues=%d)", s.tickInterval, len(timeline))
}

// Disarm stops polling and disarms the clock. No cue fires afterwards.
func (s *Supervisor) Disarm() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.running {
		s.cancel()
		s.running = false
		s.log.Info("supervisor stopped")
	}
	s.clock.Disarm()
}

// Running reports whether the polling loop is active.
func (s *Supervisor) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running
}

// loop is the main tick loop.
func (s *Supervisor) loop(ctx context.Context, id uint64) {
	ticker := time.NewTicker(s.tickInterval)
	defer ticker.Stop()

	// First tick right away so the opening cue at t=0 is not delayed.
	if s.tick(ctx, id) {
		return
	}

	for {
		select {
		case <-ctx.Done():
			s.abandon(id)
			return
		case <-ticker.C:
			if s.tick(ctx, id) {
				return
			}
		}
	}
}

// tick runs one clock cycle and reports whether the loop should exit.
func (s *Supervisor) tick(ctx context.Context, id uint64) bool {
	if ctx.Err() != nil {
		s.abandon(id)
		return true
	}

	s.clock.Tick(s.clock.Now())
	if s.clock.Armed() {
		return false
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	// Arm may have installed a new timeline since the check above.
	if s.clock.Armed() {
		return false
	}
	if s.runID == id && s.running {
		s.cancel()
		s.running = false
		s.log.Info("supervisor finished: timeline exhausted")
	}
	return true
}

// abandon disarms the clock after the parent context of run id was
// cancelled. A run already stopped or replaced is left alone.
func (s *Supervisor) abandon(id uint64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.runID != id || !s.running {
		return
	}
	s.cancel()
	s.running = false
	s.clock.Disarm()
	s.log.Info("supervisor stopped: context cancelled")
	if s.onCancel != nil {
		s.onCancel()
	}
}
