// Package domain defines the core types and interfaces for the coach.
// All other packages depend on domain; domain depends on nothing.
package domain

import (
	"strconv"
	"time"
)

// CueKind distinguishes countdown numerals from full announcements.
type CueKind int

const (
	// CueCountdown is a short spoken numeral ahead of a transition.
	CueCountdown CueKind = iota
	// CueAnnouncement is a chime followed by a full sentence.
	CueAnnouncement
)

// String returns a human-readable cue kind.
func (k CueKind) String() string {
	switch k {
	case CueCountdown:
		return "countdown"
	case CueAnnouncement:
		return "announcement"
	default:
		return "unknown"
	}
}

// Cue is one scheduled point in a session timeline. At is measured from
// session start and may be negative when a countdown precedes an event
// scheduled at the very beginning.
type Cue struct {
	At    time.Duration
	Kind  CueKind
	Count int    // seconds remaining, countdown cues only
	Text  string // sentence, announcement cues only
}

// Countdown builds a countdown cue for n seconds before a transition.
func Countdown(at time.Duration, n int) Cue {
	return Cue{At: at, Kind: CueCountdown, Count: n}
}

// Announcement builds an announcement cue.
func Announcement(at time.Duration, text string) Cue {
	return Cue{At: at, Kind: CueAnnouncement, Text: text}
}

// Spoken returns what the cue says out loud.
func (c Cue) Spoken() string {
	if c.Kind == CueCountdown {
		return strconv.Itoa(c.Count)
	}
	return c.Text
}
