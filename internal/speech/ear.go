package speech

import (
	"context"
	"os/exec"
	"strings"
	"sync"
	"time"

	audiotranscriber "github.com/sklyt/whisper/pkg"

	"github.com/hammamikhairi/ottocoach/internal/logger"
)

// earState represents the Ear's listening mode.
type earState int

const (
	// earDormant scans short clips for the wake word.
	earDormant earState = iota
	// earListening captures the command that follows the wake word.
	earListening
)

// EarOption configures the Ear.
type EarOption func(*Ear)

// WithRecordDuration sets how long each active-listening chunk lasts.
func WithRecordDuration(d time.Duration) EarOption {
	return func(e *Ear) { e.recordDuration = d }
}

// WithProbeDuration sets how long each dormant wake-word clip lasts.
func WithProbeDuration(d time.Duration) EarOption {
	return func(e *Ear) { e.probeDuration = d }
}

// WithTempDir sets the directory for temporary WAV files.
func WithTempDir(dir string) EarOption {
	return func(e *Ear) { e.tempDir = dir }
}

// WithWakeWords overrides the default wake phrases.
func WithWakeWords(words ...string) EarOption {
	return func(e *Ear) { e.wakeWords = words }
}

// WithListenTimeout sets how long the ear stays in active listening
// mode before giving up and returning to dormant.
func WithListenTimeout(d time.Duration) EarOption {
	return func(e *Ear) { e.listenTimeout = d }
}

// Ear turns microphone input into commands using a local whisper model.
//
// While dormant it records short clips and discards everything that does
// not contain a wake word ("hey coach"). On a wake word it silences the
// Mouth, and either forwards the command spoken in the same breath or
// acknowledges and records until the user goes quiet. Commands arrive on C.
//
// The ear never records while the Mouth is talking, so the coach does not
// hear its own countdowns.
type Ear struct {
	whisperBin string
	modelPath  string
	tempDir    string
	log        *logger.Logger
	mouth      *Mouth // optional

	wakeWords      []string
	recordDuration time.Duration
	probeDuration  time.Duration
	listenTimeout  time.Duration

	mu     sync.Mutex
	muted  bool
	state  earState
	textCh chan string
}

// NewEar creates a wake-word-triggered voice input listener. mouth may be
// nil.
func NewEar(whisperBin, modelPath string, mouth *Mouth, log *logger.Logger, opts ...EarOption) *Ear {
	e := &Ear{
		whisperBin:     whisperBin,
		modelPath:      modelPath,
		tempDir:        ".ottocoach-stt",
		log:            log,
		mouth:          mouth,
		wakeWords:      defaultWakeWords,
		recordDuration: 1500 * time.Millisecond,
		probeDuration:  3 * time.Second,
		listenTimeout:  10 * time.Second,
		state:          earDormant,
		textCh:         make(chan string, 8),
	}
	for _, opt := range opts {
		opt(e)
	}

	if _, err := exec.LookPath(e.whisperBin); err != nil {
		log.Error("ear: whisper binary %q not found in PATH: %v", e.whisperBin, err)
	}
	return e
}

// C returns the channel that receives transcribed commands.
func (e *Ear) C() <-chan string {
	return e.textCh
}

// Mute temporarily disables listening.
func (e *Ear) Mute() {
	e.mu.Lock()
	e.muted = true
	e.mu.Unlock()
	e.log.Debug("ear: muted")
}

// Unmute re-enables listening.
func (e *Ear) Unmute() {
	e.mu.Lock()
	e.muted = false
	e.mu.Unlock()
	e.log.Debug("ear: unmuted")
}

// Run starts the listening loop. Blocks until ctx is cancelled.
func (e *Ear) Run(ctx context.Context) {
	e.log.Info("ear: started (probe=%s, chunk=%s, timeout=%s)", e.probeDuration, e.recordDuration, e.listenTimeout)

	for ctx.Err() == nil {
		e.mu.Lock()
		muted, state := e.muted, e.state
		e.mu.Unlock()

		if muted || e.mouthBusy() {
			sleepCtx(ctx, 200*time.Millisecond)
			continue
		}

		switch state {
		case earDormant:
			e.probe(ctx)
		case earListening:
			e.listen(ctx)
		}
	}
	e.log.Info("ear: stopped")
}

func (e *Ear) setState(s earState) {
	e.mu.Lock()
	e.state = s
	e.mu.Unlock()
}

func (e *Ear) mouthBusy() bool {
	return e.mouth != nil && (e.mouth.IsSpeaking() || e.mouth.QueueLen() > 0)
}

// probe records one short clip and checks it for a wake word.
func (e *Ear) probe(ctx context.Context) {
	text := cleanTranscription(e.record(ctx, e.probeDuration))
	if e.mouthBusy() {
		// The clip overlaps our own speech.
		return
	}
	if text == "" {
		return
	}

	command, found := wakeMatch(text, e.wakeWords)
	if !found {
		return
	}
	e.log.Info("ear: wake word detected in %q", text)

	if e.mouth != nil {
		e.mouth.Interrupt()
	}

	if command = cleanTranscription(command); command != "" {
		e.emit(ctx, command)
		return
	}

	if e.mouth != nil {
		e.mouth.Say(LineListening(), ProfileSentence, PriorityCritical)
	}
	e.setState(earListening)
}

// listen records chunks until silence or timeout, then emits what it heard.
func (e *Ear) listen(ctx context.Context) {
	defer e.setState(earDormant)

	// Let the acknowledgment finish before recording.
	for e.mouthBusy() && ctx.Err() == nil {
		sleepCtx(ctx, 100*time.Millisecond)
	}

	// Before the user starts talking allow more silence; once they have,
	// a shorter gap means they're done.
	const silentBefore = 3
	const silentAfter = 1

	deadline := time.Now().Add(e.listenTimeout)
	var parts []string
	silent := 0
	for ctx.Err() == nil && time.Now().Before(deadline) {
		chunk := cleanTranscription(e.record(ctx, e.recordDuration))
		if chunk == "" {
			silent++
			if (len(parts) == 0 && silent >= silentBefore) || (len(parts) > 0 && silent >= silentAfter) {
				break
			}
			continue
		}
		silent = 0
		if chunk = stripWakeWords(chunk, e.wakeWords); chunk != "" {
			e.log.Debug("ear/listen: chunk %q", chunk)
			parts = append(parts, chunk)
		}
	}

	if command := strings.TrimSpace(strings.Join(parts, " ")); command != "" {
		e.emit(ctx, command)
		return
	}
	e.log.Debug("ear: listening ended with no input")
}

func (e *Ear) emit(ctx context.Context, command string) {
	e.log.Info("ear: heard command %q", command)
	select {
	case e.textCh <- command:
	case <-ctx.Done():
	}
}

// record runs one whisper recording of the given length and returns the
// raw transcription.
func (e *Ear) record(ctx context.Context, d time.Duration) string {
	var (
		result string
		wg     sync.WaitGroup
	)
	wg.Add(1)
	callback := func(text string) {
		result = text
		wg.Done()
	}

	verbose := e.log.GetLevel() >= logger.LevelVerbose
	t, err := audiotranscriber.NewTranscriber(e.whisperBin, e.modelPath, e.tempDir, "wav", callback, verbose)
	if err != nil {
		e.log.Error("ear: transcriber init failed: %v", err)
		sleepCtx(ctx, 2*time.Second)
		return ""
	}
	if err := t.Start(); err != nil {
		e.log.Error("ear: recording start failed: %v", err)
		sleepCtx(ctx, 2*time.Second)
		return ""
	}

	sleepCtx(ctx, d)
	t.Stop()
	wg.Wait()
	return result
}

func sleepCtx(ctx context.Context, d time.Duration) {
	select {
	case <-time.After(d):
	case <-ctx.Done():
	}
}
