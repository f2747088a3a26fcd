package timer

import (
	"context"
	"math"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/hammamikhairi/ottocoach/internal/domain"
	"github.com/hammamikhairi/ottocoach/internal/logger"
)

// Stopper cancels a deferred callback. *time.Timer satisfies it.
type Stopper interface {
	Stop() bool
}

// AfterFunc schedules f to run once after d.
type AfterFunc func(d time.Duration, f func()) Stopper

// ClockOption configures the clock.
type ClockOption func(*Clock)

// WithTimeSource sets where the clock reads "now" from when armed.
func WithTimeSource(now func() time.Time) ClockOption {
	return func(c *Clock) {
		c.now = now
	}
}

// WithAfterFunc replaces time.AfterFunc for the post-chime delay.
func WithAfterFunc(after AfterFunc) ClockOption {
	return func(c *Clock) {
		c.after = after
	}
}

// WithPostChimeDelay sets the pause between the chime and the sentence.
func WithPostChimeDelay(d time.Duration) ClockOption {
	return func(c *Clock) {
		c.postChimeDelay = d
	}
}

// Clock walks a timeline: every Tick pops the cues that are due and hands
// them to the announcer, then refreshes the remaining-seconds readout.
//
// All state sits behind one mutex, so ticks never overlap. Effects are
// invoked with the lock held and must not call back into the clock.
type Clock struct {
	announcer      domain.Announcer
	presenter      domain.Presenter
	log            *logger.Logger
	now            func() time.Time
	after          AfterFunc
	postChimeDelay time.Duration

	mu         sync.Mutex
	armed      bool
	startedAt  time.Time
	queue      []domain.Cue
	remaining  string
	generation uint64    // bumped by Arm and Disarm
	deferred   []Stopper // pending sentences for the current generation
}

// NewClock creates an idle clock.
func NewClock(announcer domain.Announcer, presenter domain.Presenter, log *logger.Logger, opts ...ClockOption) *Clock {
	c := &Clock{
		announcer:      announcer,
		presenter:      presenter,
		log:            log,
		now:            time.Now,
		postChimeDelay: 800 * time.Millisecond,
		after: func(d time.Duration, f func()) Stopper {
			return time.AfterFunc(d, f)
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Now reads the clock's time source.
func (c *Clock) Now() time.Time {
	return c.now()
}

// Arm installs a timeline and starts counting from now. Arming an armed
// clock replaces both the start time and the timeline; sentences still
// pending from the previous run are cancelled.
func (c *Clock) Arm(timeline []domain.Cue) {
	queue := slices.Clone(timeline)
	slices.SortStableFunc(queue, func(a, b domain.Cue) int {
		return cmpDuration(a.At, b.At)
	})

	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelDeferredLocked()
	c.generation++
	c.armed = true
	c.startedAt = c.now()
	c.queue = queue
	// c.remaining keeps what the presenter shows so the first tick of the
	// new run clears or replaces it.

	c.log.Debug("clock: armed with %d cues (generation %d)", len(queue), c.generation)
}

// Disarm stops the run. Remaining cues are discarded and pending
// sentences are cancelled. Safe to call on an idle clock.
func (c *Clock) Disarm() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cancelDeferredLocked()
	c.generation++
	wasArmed := c.armed
	c.armed = false
	c.queue = nil

	if c.remaining != "" {
		c.remaining = ""
		c.presenter.DisplayRemaining("")
	}
	if wasArmed {
		c.log.Debug("clock: disarmed")
	}
}

// Armed reports whether the clock is running a timeline.
func (c *Clock) Armed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.armed
}

// Pending returns how many cues have not fired yet.
func (c *Clock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// ProjectedRemaining returns the last remaining-seconds readout, or ""
// when no announcement is ahead.
func (c *Clock) ProjectedRemaining() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.remaining
}

// Tick dispatches every cue due at now, in timeline order, and refreshes
// the readout. When the last cue has fired the clock goes idle and the
// presenter is told the session ended. Ticks on an idle clock do nothing.
func (c *Clock) Tick(now time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.armed {
		return
	}

	elapsed := now.Sub(c.startedAt)
	for len(c.queue) > 0 && c.queue[0].At <= elapsed {
		cue := c.queue[0]
		c.queue = c.queue[1:]
		c.dispatchLocked(cue, elapsed)
	}

	c.refreshRemainingLocked(elapsed)

	if len(c.queue) == 0 {
		c.armed = false
		c.queue = nil
		c.log.Info("clock: timeline finished after %s", elapsed.Round(time.Millisecond))
		c.presenter.SessionEnded()
	}
}

// dispatchLocked hands one cue to the announcer. Must be called with c.mu held.
func (c *Clock) dispatchLocked(cue domain.Cue, elapsed time.Duration) {
	ctx := context.Background()
	late := elapsed - cue.At

	switch cue.Kind {
	case domain.CueCountdown:
		c.log.Debug("clock: countdown %d at %s (late %s)", cue.Count, cue.At, late.Round(time.Millisecond))
		if err := c.announcer.SpeakShort(ctx, cue.Spoken()); err != nil {
			c.log.Error("clock: countdown speech: %v", err)
		}

	case domain.CueAnnouncement:
		c.log.Debug("clock: announcement %q at %s (late %s)", cue.Text, cue.At, late.Round(time.Millisecond))
		if err := c.announcer.PlayChime(ctx); err != nil {
			c.log.Error("clock: chime: %v", err)
		}
		c.deferSentenceLocked(cue.Text)
	}
}

// deferSentenceLocked schedules the sentence that follows a chime. The
// callback is dropped if the clock was re-armed or disarmed meanwhile.
func (c *Clock) deferSentenceLocked(text string) {
	gen := c.generation
	stopper := c.after(c.postChimeDelay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		if c.generation != gen {
			c.log.Debug("clock: dropped stale sentence %q", text)
			return
		}
		if err := c.announcer.SpeakSentence(context.Background(), text); err != nil {
			c.log.Error("clock: sentence speech: %v", err)
		}
	})
	c.deferred = append(c.deferred, stopper)
}

func (c *Clock) cancelDeferredLocked() {
	for _, s := range c.deferred {
		s.Stop()
	}
	c.deferred = nil
}

// refreshRemainingLocked pushes the seconds left until the next
// announcement, skipping countdowns, and only when the value changed.
func (c *Clock) refreshRemainingLocked(elapsed time.Duration) {
	next := ""
	for _, cue := range c.queue {
		if cue.Kind != domain.CueAnnouncement {
			continue
		}
		if secs := RemainingSeconds(cue.At, elapsed); secs > 0 {
			next = strconv.Itoa(secs)
		}
		break
	}

	if next == c.remaining {
		return
	}
	c.remaining = next
	c.presenter.DisplayRemaining(next)
}

// RemainingSeconds returns ceil(at - elapsed) in whole seconds.
func RemainingSeconds(at, elapsed time.Duration) int {
	return int(math.Ceil((at - elapsed).Seconds()))
}

func cmpDuration(a, b time.Duration) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	default:
		return 0
	}
}
