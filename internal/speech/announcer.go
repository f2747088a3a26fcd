package speech

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hammamikhairi/ottocoach/internal/domain"
	"github.com/hammamikhairi/ottocoach/internal/logger"
)

// Compile-time interface check.
var _ domain.Announcer = (*SpeakingAnnouncer)(nil)

// ChimePlayer plays a short effect without blocking. *Player implements it.
type ChimePlayer interface {
	PlayDetached(wav []byte) error
}

// VoiceSetter switches the synthesis voice. *AzureClient implements it.
type VoiceSetter interface {
	SetVoice(voice string)
}

// SpeakingAnnouncer wraps another announcer (usually the on-screen one)
// and also speaks every cue through the Mouth. Countdown numerals use the
// short profile; announcements use the sentence profile.
type SpeakingAnnouncer struct {
	inner  domain.Announcer // may be nil
	mouth  *Mouth
	chime  ChimePlayer
	voices *VoiceRegistry
	tts    VoiceSetter
	log    *logger.Logger
	wav    []byte
}

// NewSpeakingAnnouncer creates an announcer that speaks aloud. voices may
// be nil, in which case SelectVoice always fails.
func NewSpeakingAnnouncer(inner domain.Announcer, mouth *Mouth, chime ChimePlayer, voices *VoiceRegistry, tts VoiceSetter, log *logger.Logger) *SpeakingAnnouncer {
	return &SpeakingAnnouncer{
		inner:  inner,
		mouth:  mouth,
		chime:  chime,
		voices: voices,
		tts:    tts,
		log:    log,
		wav:    ChimeWAV(),
	}
}

// SpeakShort speaks a countdown numeral.
func (a *SpeakingAnnouncer) SpeakShort(ctx context.Context, numeral string) error {
	if a.inner != nil {
		if err := a.inner.SpeakShort(ctx, numeral); err != nil {
			a.log.Error("announcer: inner countdown: %v", err)
		}
	}
	a.mouth.Say(numeral, ProfileShort, PriorityHigh)
	return nil
}

// SpeakSentence speaks a full announcement.
func (a *SpeakingAnnouncer) SpeakSentence(ctx context.Context, text string) error {
	if a.inner != nil {
		if err := a.inner.SpeakSentence(ctx, text); err != nil {
			a.log.Error("announcer: inner sentence: %v", err)
		}
	}
	a.mouth.Say(text, ProfileSentence, PriorityHigh)
	return nil
}

// PlayChime plays the announcement chime over whatever is speaking.
func (a *SpeakingAnnouncer) PlayChime(ctx context.Context) error {
	if a.inner != nil {
		if err := a.inner.PlayChime(ctx); err != nil {
			a.log.Error("announcer: inner chime: %v", err)
		}
	}
	if err := a.chime.PlayDetached(a.wav); err != nil {
		return fmt.Errorf("playing chime: %w", err)
	}
	return nil
}

// Say speaks a coach line that is not part of the timeline.
func (a *SpeakingAnnouncer) Say(ctx context.Context, text string) {
	a.mouth.Say(text, ProfileSentence, PriorityNormal)
}

// Interrupt silences the mouth and drops anything queued.
func (a *SpeakingAnnouncer) Interrupt() {
	a.mouth.Interrupt()
}

// Repeat says the last spoken sentence again.
func (a *SpeakingAnnouncer) Repeat(ctx context.Context) bool {
	last := a.mouth.LastSpoken()
	if last == "" {
		return false
	}
	a.mouth.Say(last, ProfileSentence, PriorityNormal)
	return true
}

// Prefetch warms the audio cache with the given sentences and the
// countdown numerals.
func (a *SpeakingAnnouncer) Prefetch(ctx context.Context, sentences ...string) {
	a.mouth.Prefetch(ctx, ProfileSentence, sentences...)

	numerals := make([]string, 0, 5)
	for n := 1; n <= 5; n++ {
		numerals = append(numerals, strconv.Itoa(n))
	}
	a.mouth.Prefetch(ctx, ProfileShort, numerals...)
}

// Voices returns the selectable voice names.
func (a *SpeakingAnnouncer) Voices() []string {
	if a.voices == nil {
		return nil
	}
	return a.voices.Names()
}

// SelectVoice switches to the named voice and introduces it. Returns the
// canonical voice name.
func (a *SpeakingAnnouncer) SelectVoice(ctx context.Context, name string) (string, error) {
	if a.voices == nil {
		return "", fmt.Errorf("%w: %q", domain.ErrUnknownVoice, name)
	}
	v, err := a.voices.Lookup(name)
	if err != nil {
		return "", err
	}

	a.mouth.Interrupt()
	a.tts.SetVoice(v.ShortName)
	a.log.Info("announcer: voice set to %s (%s)", v.ShortName, v.Locale)
	a.mouth.Say(LineVoiceIntro(), ProfileSentence, PriorityNormal)
	return v.ShortName, nil
}
