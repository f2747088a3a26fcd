package speech

import (
	"fmt"
	"math/rand"
	"strings"
	"time"
)

// Coach lines. Timeline announcements live in package timeline; this file
// holds everything else the coach says. Keep lines short, the TTS engine
// handles inflection.

// ── Greeting / Global ────────────────────────────────────────────

func LineWelcome() string {
	return "Welcome to the sun salutation!"
}

// LineVoiceIntro is spoken right after the user picks a new voice.
func LineVoiceIntro() string {
	return "Hello! My name is Alfred: I am your personal coach."
}

func LineBye() string {
	return "Bye."
}

func LineNothingToRepeat() string {
	return "I haven't said anything yet."
}

func LineUnknown(input string) string {
	return fmt.Sprintf("Didn't catch that: %s.", input)
}

// ── Session ──────────────────────────────────────────────────────

func LineAborted() string {
	return "This session has been aborted!"
}

func LineNoSession() string {
	return "No session is running."
}

func LineEmptySession() string {
	return "There is nothing to do with these settings."
}

// LineStatus summarizes a running session.
func LineStatus(elapsed, total time.Duration, remaining string) string {
	s := fmt.Sprintf("%s of %s done.", FormatDurationSpeech(elapsed), FormatDurationSpeech(total))
	if remaining != "" {
		s += fmt.Sprintf(" Next change in %s seconds.", remaining)
	}
	return s
}

// ── Settings ─────────────────────────────────────────────────────

func LineSettingUpdated(field string, value int) string {
	return fmt.Sprintf("%s set to %d.", capitalize(field), value)
}

func LinePresetSelected(name string) string {
	return fmt.Sprintf("%s loaded. Say start when you're ready.", name)
}

func LineUnknownPreset(name string) string {
	return fmt.Sprintf("I don't know a preset called %s.", name)
}

func LineUnknownVoice(name string) string {
	return fmt.Sprintf("I don't know a voice called %s.", name)
}

// LineHelp lists the commands the coach understands.
func LineHelp() string {
	return "Say start, stop, or status. " +
		"Set exercises, duration, repetitions or pause with a number. " +
		"Say preset and a name, or voice and a name."
}

// ── Listening acknowledgment ─────────────────────────────────────
// Spoken when the wake word is detected, so the user knows they've
// been heard and should start talking.

var listeningFillers = []string{
	"I'm listening.",
	"Listening.",
	"Yes?",
	"What do you need?",
	"I'm here.",
	"Ready when you are.",
}

// LineListening returns a random acknowledgment for when the wake
// word is detected.
func LineListening() string {
	return listeningFillers[rand.Intn(len(listeningFillers))]
}

// ListeningFillers returns all listening acknowledgment strings so
// they can be prefetched into the TTS cache at startup.
func ListeningFillers() []string {
	out := make([]string, len(listeningFillers))
	copy(out, listeningFillers)
	return out
}

// ── Helpers ──────────────────────────────────────────────────────

// FormatDurationSpeech returns a human-friendly spoken duration.
func FormatDurationSpeech(d time.Duration) string {
	d = d.Round(time.Second)
	m := int(d.Minutes())
	s := int(d.Seconds()) % 60
	switch {
	case m == 0 && s == 1:
		return "1 second"
	case m == 0:
		return fmt.Sprintf("%d seconds", s)
	case s == 0 && m == 1:
		return "1 minute"
	case s == 0:
		return fmt.Sprintf("%d minutes", m)
	default:
		return fmt.Sprintf("%d minutes %d seconds", m, s)
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
