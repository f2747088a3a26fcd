package domain

import "time"

// Session is one run from start to natural completion or explicit stop.
type Session struct {
	ID        string
	Params    Params
	Preset    string // preset ID the params came from, empty for custom
	Cues      int    // number of cues in the built timeline
	Status    SessionStatus
	StartedAt time.Time
	EndedAt   time.Time
}

// SessionStatus tracks the lifecycle of a session.
type SessionStatus int

const (
	SessionRunning SessionStatus = iota
	SessionCompleted
	SessionAborted
)

// String returns a human-readable session status.
func (s SessionStatus) String() string {
	switch s {
	case SessionRunning:
		return "running"
	case SessionCompleted:
		return "completed"
	case SessionAborted:
		return "aborted"
	default:
		return "unknown"
	}
}

// Elapsed returns how long the session has been (or was) running.
func (s *Session) Elapsed(now time.Time) time.Duration {
	if !s.EndedAt.IsZero() {
		return s.EndedAt.Sub(s.StartedAt)
	}
	return now.Sub(s.StartedAt)
}

// Settings are the form values remembered between launches.
type Settings struct {
	Params Params
	Voice  string
	Preset string
}

// DefaultSettings returns the first-launch form values.
func DefaultSettings() Settings {
	return Settings{Params: DefaultParams()}
}

// Preset is a named, ready-made set of session parameters.
type Preset struct {
	ID          string
	Name        string
	Description string
	Params      Params
	Tags        []string
}
