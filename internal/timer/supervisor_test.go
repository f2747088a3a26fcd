package timer

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/hammamikhairi/ottocoach/internal/domain"
	"github.com/hammamikhairi/ottocoach/internal/logger"
)

func fastTimeline() []domain.Cue {
	return []domain.Cue{
		domain.Announcement(0, "a"),
		domain.Countdown(30*time.Millisecond, 1),
		domain.Announcement(60*time.Millisecond, "b"),
	}
}

func newFastSupervisor(rec *recorder) *Supervisor {
	log := logger.New(logger.LevelOff, nil)
	clock := NewClock(rec, rec, log, WithPostChimeDelay(time.Millisecond))
	return New(clock, log, WithTickInterval(10*time.Millisecond))
}

func contains(events []string, want string) bool {
	for _, e := range events {
		if e == want {
			return true
		}
	}
	return false
}

func TestSupervisorRunsTimelineToCompletion(t *testing.T) {
	rec := &recorder{}
	sup := newFastSupervisor(rec)

	sup.Arm(context.Background(), fastTimeline())
	time.Sleep(300 * time.Millisecond)

	if sup.Running() {
		t.Fatal("expected polling loop to stop after the timeline ran out")
	}
	if sup.Clock().Armed() {
		t.Fatal("expected clock to be idle")
	}
	if rec.endedCount() != 1 {
		t.Fatalf("expected one session-ended signal, got %d", rec.endedCount())
	}

	events := rec.snapshot()
	for _, want := range []string{"say:a", "short:1", "say:b"} {
		if !contains(events, want) {
			t.Fatalf("expected %q in %v", want, events)
		}
	}
}

func TestSupervisorDisarmCancelsPolling(t *testing.T) {
	rec := &recorder{}
	sup := newFastSupervisor(rec)

	cues := []domain.Cue{
		domain.Countdown(100*time.Millisecond, 1),
		domain.Announcement(150*time.Millisecond, "late"),
	}
	sup.Arm(context.Background(), cues)
	sup.Disarm()
	time.Sleep(250 * time.Millisecond)

	if sup.Running() {
		t.Fatal("expected supervisor to be stopped")
	}
	if n := len(rec.snapshot()); n != 0 {
		t.Fatalf("expected no effects after disarm, got %v", rec.snapshot())
	}
	if rec.endedCount() != 0 {
		t.Fatal("disarm must not report a natural end")
	}
}

func TestSupervisorRearmAfterCompletion(t *testing.T) {
	rec := &recorder{}
	sup := newFastSupervisor(rec)
	ctx := context.Background()

	sup.Arm(ctx, fastTimeline())
	time.Sleep(200 * time.Millisecond)
	sup.Arm(ctx, fastTimeline())
	time.Sleep(200 * time.Millisecond)

	if rec.endedCount() != 2 {
		t.Fatalf("expected two completed runs, got %d", rec.endedCount())
	}
}

func TestSupervisorStopsWithParentContext(t *testing.T) {
	rec := &recorder{}
	log := logger.New(logger.LevelOff, nil)
	clock := NewClock(rec, rec, log, WithPostChimeDelay(time.Millisecond))
	cancelled := make(chan struct{}, 1)
	sup := New(clock, log,
		WithTickInterval(10*time.Millisecond),
		WithOnCancel(func() { cancelled <- struct{}{} }),
	)
	ctx, cancel := context.WithCancel(context.Background())

	sup.Arm(ctx, []domain.Cue{domain.Announcement(time.Hour, "never")})
	cancel()

	select {
	case <-cancelled:
	case <-time.After(time.Second):
		t.Fatal("expected the cancel callback")
	}
	if sup.Running() {
		t.Fatal("expected polling loop stopped after the context was cancelled")
	}
	if sup.Clock().Armed() {
		t.Fatal("expected clock disarmed")
	}

	// A fresh run still plays.
	sup.Arm(context.Background(), []domain.Cue{domain.Announcement(0, "again")})
	time.Sleep(100 * time.Millisecond)
	if !contains(rec.snapshot(), "say:again") {
		t.Fatalf("expected re-armed timeline to play, got %v", rec.snapshot())
	}
	if contains(rec.snapshot(), "say:never") {
		t.Fatal("cancelled timeline must not play")
	}
	if rec.endedCount() != 1 {
		t.Fatalf("expected only the second run to end naturally, got %d", rec.endedCount())
	}
}

func TestSupervisorDisarmSkipsCancelCallback(t *testing.T) {
	rec := &recorder{}
	log := logger.New(logger.LevelOff, nil)
	clock := NewClock(rec, rec, log)
	calls := 0
	var mu sync.Mutex
	sup := New(clock, log,
		WithTickInterval(10*time.Millisecond),
		WithOnCancel(func() {
			mu.Lock()
			calls++
			mu.Unlock()
		}),
	)

	sup.Arm(context.Background(), []domain.Cue{domain.Announcement(time.Hour, "never")})
	sup.Disarm()
	time.Sleep(50 * time.Millisecond)

	mu.Lock()
	defer mu.Unlock()
	if calls != 0 {
		t.Fatalf("expected no cancel callback on Disarm, got %d", calls)
	}
}
