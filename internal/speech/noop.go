// Package speech provides text-to-speech output, the announcement chime
// and whisper-based voice input.
package speech

import (
	"context"
	"sync"

	"github.com/hammamikhairi/ottocoach/internal/domain"
	"github.com/hammamikhairi/ottocoach/internal/logger"
)

// Compile-time interface check.
var _ domain.Announcer = (*NoOp)(nil)

// NoOp is a silent announcer. Used when the audio device or the TTS
// credentials are missing: sessions still run, nothing is heard.
type NoOp struct {
	log  *logger.Logger
	once sync.Once
}

// NewNoOp creates a no-op announcer.
func NewNoOp(log *logger.Logger) *NoOp {
	return &NoOp{log: log}
}

func (n *NoOp) warn() {
	n.once.Do(func() {
		n.log.Warn("speech: audio unavailable, running silent")
	})
}

// SpeakShort does nothing.
func (n *NoOp) SpeakShort(ctx context.Context, numeral string) error {
	n.warn()
	n.log.Debug("speech no-op: would count %s", numeral)
	return nil
}

// SpeakSentence does nothing.
func (n *NoOp) SpeakSentence(ctx context.Context, text string) error {
	n.warn()
	n.log.Debug("speech no-op: would say %q", text)
	return nil
}

// PlayChime does nothing.
func (n *NoOp) PlayChime(ctx context.Context) error {
	n.warn()
	return nil
}
