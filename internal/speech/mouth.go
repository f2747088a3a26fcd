package speech

import (
	"context"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/hammamikhairi/ottocoach/internal/logger"
)

// Synthesizer turns text into WAV audio. *AzureClient implements it.
type Synthesizer interface {
	Synthesize(ctx context.Context, text string, profile Profile) ([]byte, error)
	Voice() string
}

// AudioOut plays WAV audio. *Player implements it.
type AudioOut interface {
	Play(wav []byte) error
	Stop()
}

// MouthOption configures the Mouth.
type MouthOption func(*Mouth)

// WithChunkSize sets the rough character limit per synthesis request.
// Longer text is cut at sentence ends and the pieces rendered in parallel.
func WithChunkSize(n int) MouthOption {
	return func(m *Mouth) {
		m.chunkSize = n
	}
}

// WithCacheDir sets where rendered audio is kept between runs. Empty keeps
// the cache in memory only.
func WithCacheDir(dir string) MouthOption {
	return func(m *Mouth) {
		m.cacheDir = dir
	}
}

// WithDiskWrite controls whether new renderings are saved to the cache
// directory. Existing files are read either way.
func WithDiskWrite(enabled bool) MouthOption {
	return func(m *Mouth) {
		m.diskWrite = enabled
	}
}

// speechQueue orders pending requests by priority, then arrival.
type speechQueue struct {
	items []SpeechRequest
}

func (q *speechQueue) push(r SpeechRequest) { q.items = append(q.items, r) }

func (q *speechQueue) len() int { return len(q.items) }

func (q *speechQueue) clear() { q.items = q.items[:0] }

// pop removes the earliest request among those with the highest priority.
func (q *speechQueue) pop() (SpeechRequest, bool) {
	if len(q.items) == 0 {
		return SpeechRequest{}, false
	}
	best := 0
	for i := 1; i < len(q.items); i++ {
		if q.items[i].Priority > q.items[best].Priority {
			best = i
		}
	}
	r := q.items[best]
	q.items = append(q.items[:best], q.items[best+1:]...)
	return r, true
}

// dropBelow discards every request under priority p and reports how many
// went.
func (q *speechQueue) dropBelow(p Priority) int {
	kept := q.items[:0]
	for _, r := range q.items {
		if r.Priority >= p {
			kept = append(kept, r)
		}
	}
	dropped := len(q.items) - len(kept)
	q.items = kept
	return dropped
}

// Mouth speaks one request at a time: it renders text through the
// synthesizer, caching the audio, and plays it. Higher priorities go
// first; equal priorities keep arrival order, so timeline cues are heard
// in the order they fired.
type Mouth struct {
	tts    Synthesizer
	player AudioOut
	log    *logger.Logger
	cache  *AudioCache
	wake   chan struct{}

	chunkSize int
	cacheDir  string
	diskWrite bool

	mu         sync.Mutex
	queue      speechQueue
	speaking   bool
	cut        bool   // Interrupt was called during the current request
	lastSpoken string // most recent sentence, numerals excluded
}

// NewMouth creates a Mouth. Call Start to begin speaking.
func NewMouth(tts Synthesizer, player AudioOut, log *logger.Logger, opts ...MouthOption) *Mouth {
	m := &Mouth{
		tts:       tts,
		player:    player,
		log:       log,
		wake:      make(chan struct{}, 1),
		chunkSize: 200,
		diskWrite: true,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.cache = NewAudioCache(m.cacheDir, m.diskWrite, log)
	return m
}

// Say queues text. A request at PriorityNormal or above discards pending
// PriorityLow chatter. Non-blocking.
func (m *Mouth) Say(text string, profile Profile, priority Priority) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}

	m.mu.Lock()
	if priority >= PriorityNormal {
		if n := m.queue.dropBelow(PriorityNormal); n > 0 {
			m.log.Debug("mouth: dropped %d low-priority lines", n)
		}
	}
	m.queue.push(SpeechRequest{Text: text, Profile: profile, Priority: priority, QueuedAt: time.Now()})
	pending := m.queue.len()
	m.mu.Unlock()

	m.log.Debug("mouth: queued %q (%s, p%d, %d pending)", preview(text), profile, priority, pending)

	select {
	case m.wake <- struct{}{}:
	default:
	}
}

// IsSpeaking reports whether a request is being rendered or played.
func (m *Mouth) IsSpeaking() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.speaking
}

// QueueLen returns the number of pending requests.
func (m *Mouth) QueueLen() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.queue.len()
}

// Interrupt silences the current request and drops everything pending.
func (m *Mouth) Interrupt() {
	m.mu.Lock()
	m.queue.clear()
	m.cut = true
	m.mu.Unlock()

	m.player.Stop()
	m.log.Debug("mouth: interrupted")
}

// Start runs the speaking goroutine until ctx is done. Non-blocking.
func (m *Mouth) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case <-ctx.Done():
				m.log.Info("mouth stopped")
				return
			case <-m.wake:
				for ctx.Err() == nil && m.speakNext(ctx) {
				}
			}
		}
	}()
	m.log.Info("mouth started (voice=%s)", m.tts.Voice())
}

// speakNext handles one queued request and reports whether there was one.
func (m *Mouth) speakNext(ctx context.Context) bool {
	m.mu.Lock()
	req, ok := m.queue.pop()
	if ok {
		m.speaking, m.cut = true, false
	}
	m.mu.Unlock()
	if !ok {
		return false
	}

	m.log.Debug("mouth: speaking %q after %s", preview(req.Text), time.Since(req.QueuedAt).Round(time.Millisecond))
	m.speak(ctx, req)

	m.mu.Lock()
	m.speaking = false
	if req.Profile == ProfileSentence {
		m.lastSpoken = req.Text
	}
	m.mu.Unlock()
	return true
}

func (m *Mouth) interrupted() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cut
}

// speak renders every chunk of req at once, then plays them in order
// until done or interrupted.
func (m *Mouth) speak(ctx context.Context, req SpeechRequest) {
	chunks := m.splitChunks(req.Text)
	rendered := make([][]byte, len(chunks))

	var wg sync.WaitGroup
	wg.Add(len(chunks))
	for i := range chunks {
		go func() {
			defer wg.Done()
			wav, err := m.synthesizeWithCache(ctx, chunks[i], req.Profile)
			if err != nil {
				m.log.Error("mouth: render chunk %d: %v", i, err)
				return
			}
			rendered[i] = wav
		}()
	}
	wg.Wait()

	for i, wav := range rendered {
		if ctx.Err() != nil || m.interrupted() {
			return
		}
		if wav == nil {
			continue
		}
		if err := m.player.Play(wav); err != nil {
			m.log.Error("mouth: play chunk %d: %v", i, err)
		}
	}
}

// synthesizeWithCache returns cached audio for text in the current voice,
// rendering and caching it on a miss. Safe for concurrent use.
func (m *Mouth) synthesizeWithCache(ctx context.Context, text string, profile Profile) ([]byte, error) {
	voice := m.tts.Voice()
	if wav, ok := m.cache.Get(voice, profile, text); ok {
		return wav, nil
	}
	wav, err := m.tts.Synthesize(ctx, text, profile)
	if err != nil {
		return nil, err
	}
	m.cache.Put(voice, profile, text, wav)
	return wav, nil
}

// Prefetch renders texts in the background so their cues play without a
// network round trip. Texts already cached are skipped. Non-blocking.
func (m *Mouth) Prefetch(ctx context.Context, profile Profile, texts ...string) {
	voice := m.tts.Voice()
	for _, text := range texts {
		for _, chunk := range m.splitChunks(text) {
			if chunk == "" || m.cache.Has(voice, profile, chunk) {
				continue
			}
			go func() {
				if _, err := m.synthesizeWithCache(ctx, chunk, profile); err != nil {
					m.log.Warn("mouth: prefetch %q: %v", preview(chunk), err)
				}
			}()
		}
	}
}

// LastSpoken returns the most recently spoken sentence.
func (m *Mouth) LastSpoken() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastSpoken
}

// Cache returns the audio cache.
func (m *Mouth) Cache() *AudioCache { return m.cache }

// splitChunks packs whole sentences into chunks of about chunkSize bytes.
// Text that already fits is returned as is.
func (m *Mouth) splitChunks(text string) []string {
	if m.chunkSize <= 0 || len(text) <= m.chunkSize {
		return []string{text}
	}

	var chunks []string
	pending := ""
	for _, s := range splitSentences(text) {
		if pending != "" && len(pending)+len(s) > m.chunkSize {
			chunks = append(chunks, strings.TrimSpace(pending))
			pending = ""
		}
		pending += s
	}
	if last := strings.TrimSpace(pending); last != "" {
		chunks = append(chunks, last)
	}
	return chunks
}

// splitSentences cuts text after each '.', '!' or '?', and the whitespace
// that follows it.
func splitSentences(text string) []string {
	var out []string
	for text != "" {
		i := strings.IndexAny(text, ".!?")
		if i < 0 {
			return append(out, text)
		}
		tail := text[i+1:]
		end := i + 1 + len(tail) - len(strings.TrimLeftFunc(tail, unicode.IsSpace))
		out = append(out, text[:end])
		text = text[end:]
	}
	return out
}

// preview shortens text for a log line.
func preview(text string) string {
	const width = 48
	if r := []rune(text); len(r) > width {
		return string(r[:width-3]) + "..."
	}
	return text
}
