package domain

import "context"

// Announcer speaks cues. Implementations swallow their own playback
// problems where they can; any error returned is logged by the caller
// and never stops a session.
type Announcer interface {
	// SpeakShort says a countdown numeral with the short voice profile.
	SpeakShort(ctx context.Context, numeral string) error
	// SpeakSentence says a full announcement.
	SpeakSentence(ctx context.Context, text string) error
	// PlayChime plays the short audio cue that precedes an announcement.
	PlayChime(ctx context.Context) error
}

// Presenter shows the live session state to the user.
type Presenter interface {
	// DisplayRemaining pushes the seconds left until the next announcement.
	// An empty string clears the readout.
	DisplayRemaining(text string)
	// SessionEnded fires once when a timeline runs out naturally.
	SessionEnded()
}

// PresetSource provides ready-made session parameters.
type PresetSource interface {
	List(ctx context.Context) ([]Preset, error)
	Get(ctx context.Context, id string) (*Preset, error)
	Search(ctx context.Context, query string) ([]Preset, error)
}

// SettingsStore remembers the last-used form values. Implementations can
// be in-memory or file-backed.
type SettingsStore interface {
	Load(ctx context.Context) (Settings, error)
	Save(ctx context.Context, settings Settings) error
}

// IntentParser converts raw user input into structured intents.
type IntentParser interface {
	Parse(ctx context.Context, input string, session *Session) (*Intent, error)
}
