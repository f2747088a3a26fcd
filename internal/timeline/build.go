// Package timeline turns session parameters into the ordered list of
// cues a session speaks. Everything here is pure and deterministic.
package timeline

import (
	"sort"
	"time"

	"github.com/hammamikhairi/ottocoach/internal/domain"
)

const (
	// CountdownMax caps how many numerals precede a transition.
	CountdownMax = 5
	// Grace is the tail of a duration reserved so a countdown never
	// reaches back into the announcement it follows.
	Grace = 5
)

// CountdownLength returns how many countdown numerals precede a
// transition whose preceding interval lasts d seconds:
// max(0, min(CountdownMax, d-Grace)).
func CountdownLength(d int) int {
	return max(0, min(CountdownMax, d-Grace))
}

// HasLeadIn reports whether exercise j of repetition i gets a countdown.
// Only the very first exercise of the session starts cold.
func HasLeadIn(i, j int) bool {
	return i > 0 || j > 0
}

// Build produces the sorted cue timeline for a session. Negative inputs
// are treated as zero; Build never fails. The result always ends with the
// completion announcement.
func Build(p domain.Params) []domain.Cue {
	p = p.Normalized()

	b := &builder{}
	for i := 0; i < p.Repetitions; i++ {
		if i > 0 {
			b.countdown(p.PauseDuration)
			b.announce(LinePause(p.PauseDuration))
			b.advance(p.PauseDuration)
		}
		for j := 0; j < p.Exercises; j++ {
			if HasLeadIn(i, j) {
				b.countdown(p.ExerciseDuration)
			}
			b.announce(LineExercise(j+1, p.Exercises))
			b.advance(p.ExerciseDuration)
		}
	}
	b.countdown(p.ExerciseDuration)
	b.announce(LineComplete())

	sort.SliceStable(b.cues, func(x, y int) bool {
		return b.cues[x].At < b.cues[y].At
	})
	return b.cues
}

// builder keeps the running cursor while cues are emitted.
type builder struct {
	t     int // seconds from session start
	floor int // earliest second a countdown numeral may use
	cues  []domain.Cue
}

// countdown emits the numerals leading up to the cursor, sized by d.
// Numerals never reach back to or before the previous announcement, nor
// before the session start, so a short interval gets a shorter countdown.
func (b *builder) countdown(d int) {
	n := min(CountdownLength(d), b.t-b.floor)
	for k := n; k >= 1; k-- {
		b.cues = append(b.cues, domain.Countdown(seconds(b.t-k), k))
	}
}

func (b *builder) announce(text string) {
	b.cues = append(b.cues, domain.Announcement(seconds(b.t), text))
	b.floor = b.t + 1
}

func (b *builder) advance(d int) {
	b.t += d
}

func seconds(n int) time.Duration {
	return time.Duration(n) * time.Second
}

// Stats summarises a built timeline.
type Stats struct {
	Countdowns    int
	Announcements int
	Length        time.Duration // time of the last cue
}

// Summarize counts the cues in a timeline.
func Summarize(cues []domain.Cue) Stats {
	var s Stats
	for _, c := range cues {
		switch c.Kind {
		case domain.CueCountdown:
			s.Countdowns++
		case domain.CueAnnouncement:
			s.Announcements++
		}
		if c.At > s.Length {
			s.Length = c.At
		}
	}
	return s
}

// Texts returns the distinct spoken strings in a timeline, in first-use
// order. Useful for pre-warming a speech cache.
func Texts(cues []domain.Cue) []string {
	seen := make(map[string]bool, len(cues))
	var out []string
	for _, c := range cues {
		s := c.Spoken()
		if seen[s] {
			continue
		}
		seen[s] = true
		out = append(out, s)
	}
	return out
}
