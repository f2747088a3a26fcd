package speech

import "time"

// Default voice for TTS. Change this constant to switch voices.
// Full list: https://learn.microsoft.com/en-us/azure/ai-services/speech-service/language-support
const DefaultVoice = "en-US-AndrewNeural"

// Audio format returned by Azure and expected by the player.
const DefaultAudioFormat = "riff-24khz-16bit-mono-pcm"

// Audio parameters matching the default format.
const (
	SampleRate   = 24000
	ChannelCount = 1
	BitDepth     = 16
)

// Env var names for Azure Speech credentials.
const (
	EnvAzureSpeechKey    = "AZURE_SPEECH_KEY"
	EnvAzureSpeechRegion = "AZURE_SPEECH_REGION"
)

// Priority levels for speech requests. Higher value = speaks first.
type Priority int

const (
	PriorityLow      Priority = iota // idle chatter
	PriorityNormal                   // coach lines: welcome, status, help
	PriorityHigh                     // timeline cues
	PriorityCritical                 // wake-word acknowledgements
)

// Profile selects the prosody a line is spoken with. Countdown numerals
// are clipped and quick; sentences use the voice's natural delivery.
type Profile int

const (
	ProfileSentence Profile = iota
	ProfileShort
)

// String returns the profile name, used in cache keys and logs.
func (p Profile) String() string {
	if p == ProfileShort {
		return "short"
	}
	return "sentence"
}

// prosody returns the SSML rate and pitch for the profile.
func (p Profile) prosody() (rate, pitch string) {
	if p == ProfileShort {
		return "+25%", "+10%"
	}
	return "0%", "0%"
}

// SpeechRequest is a queued item waiting to be spoken.
type SpeechRequest struct {
	Text     string
	Profile  Profile
	Priority Priority
	QueuedAt time.Time
}
