package main

import (
	"context"
	"os"
	"time"

	"github.com/hammamikhairi/ottocoach/internal/domain"
	"github.com/hammamikhairi/ottocoach/internal/logger"
	"github.com/hammamikhairi/ottocoach/internal/speech"
)

const englishLocale = "en"

// voiceOutput is the speaking side of the coach. speaking and mouth are
// nil when speech is disabled; announcer is then the on-screen one, or a
// silent one when cues are not printed either.
type voiceOutput struct {
	announcer domain.Announcer
	speaking  *speech.SpeakingAnnouncer
	mouth     *speech.Mouth
}

type audioConfig struct {
	disabled  bool
	cacheDir  string
	diskCache bool
}

// buildVoiceOutput wires Azure TTS, the voice registry and the oto player
// around the text announcer. Any missing piece leaves the coach running
// with on-screen cues only. text may be nil.
func buildVoiceOutput(ctx context.Context, text domain.Announcer, cfg audioConfig, log *logger.Logger) voiceOutput {
	out := voiceOutput{announcer: text}
	if text == nil {
		out.announcer = speech.NewNoOp(log)
	}
	if cfg.disabled {
		return out
	}

	key := os.Getenv(speech.EnvAzureSpeechKey)
	region := os.Getenv(speech.EnvAzureSpeechRegion)
	if key == "" || region == "" {
		log.Info("TTS disabled: set %s and %s env vars to enable", speech.EnvAzureSpeechKey, speech.EnvAzureSpeechRegion)
		return out
	}

	player, err := speech.NewPlayer(log)
	if err != nil {
		log.Error("audio player init failed, speech disabled: %v", err)
		return out
	}

	tts := speech.NewAzureClient(key, region, log)

	var registry *speech.VoiceRegistry
	listCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	voices, err := tts.ListVoices(listCtx)
	cancel()
	if err != nil {
		log.Warn("voice list unavailable, keeping %s: %v", tts.Voice(), err)
	} else {
		registry = speech.NewVoiceRegistry(voices, englishLocale)
		if v, ok := registry.Default(speech.DefaultVoice); ok {
			tts.SetVoice(v.ShortName)
		}
		log.Info("%d English voices available", registry.Len())
	}

	mouth := speech.NewMouth(tts, player, log.With("component", "mouth"),
		speech.WithCacheDir(cfg.cacheDir),
		speech.WithDiskWrite(cfg.diskCache),
	)
	mouth.Start(ctx)
	mouth.Prefetch(ctx, speech.ProfileSentence, speech.ListeningFillers()...)

	out.mouth = mouth
	out.speaking = speech.NewSpeakingAnnouncer(text, mouth, player, registry, tts, log)
	out.announcer = out.speaking
	log.Info("TTS enabled (voice=%s, region=%s)", tts.Voice(), region)
	return out
}
