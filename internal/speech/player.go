package speech

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
	"github.com/hammamikhairi/ottocoach/internal/logger"
)

// ErrBadWAV is returned for audio that is not a playable RIFF/WAVE buffer.
var ErrBadWAV = errors.New("invalid wav data")

// pollInterval is how often a playback is checked for completion; oto
// exposes no completion signal.
const pollInterval = 10 * time.Millisecond

// Player plays WAV buffers on the system audio device. Speech goes
// through Play and can be cut off with Stop. Effects go through
// PlayDetached and mix over the speech.
type Player struct {
	otoCtx *oto.Context
	log    *logger.Logger

	mu      sync.Mutex
	current *playback // speech in progress, nil when silent
}

// playback is one oto stream plus the signal that cuts it short.
type playback struct {
	stream *oto.Player
	halt   chan struct{}
	once   sync.Once
}

func (pb *playback) stop() {
	pb.once.Do(func() {
		pb.stream.Pause()
		close(pb.halt)
	})
}

// wait blocks until the stream drains or stop is called.
func (pb *playback) wait() {
	tick := time.NewTicker(pollInterval)
	defer tick.Stop()
	for pb.stream.IsPlaying() {
		select {
		case <-pb.halt:
			return
		case <-tick.C:
		}
	}
}

// NewPlayer opens the audio device. oto allows one context per process,
// so a program creates a single Player and shares it.
func NewPlayer(log *logger.Logger) (*Player, error) {
	otoCtx, ready, err := oto.NewContext(&oto.NewContextOptions{
		SampleRate:   SampleRate,
		ChannelCount: ChannelCount,
		Format:       oto.FormatSignedInt16LE,
	})
	if err != nil {
		return nil, fmt.Errorf("open audio device: %w", err)
	}
	<-ready

	log.Debug("player ready: %d Hz, %d ch", SampleRate, ChannelCount)
	return &Player{otoCtx: otoCtx, log: log}, nil
}

func (p *Player) start(wav []byte) (*playback, error) {
	pcm, err := extractPCM(wav)
	if err != nil {
		return nil, err
	}
	pb := &playback{
		stream: p.otoCtx.NewPlayer(bytes.NewReader(pcm)),
		halt:   make(chan struct{}),
	}
	pb.stream.Play()
	return pb, nil
}

// Play blocks while wav plays, or until Stop.
func (p *Player) Play(wav []byte) error {
	pb, err := p.start(wav)
	if err != nil {
		return err
	}

	p.mu.Lock()
	p.current = pb
	p.mu.Unlock()

	pb.wait()

	p.mu.Lock()
	if p.current == pb {
		p.current = nil
	}
	p.mu.Unlock()
	return pb.stream.Close()
}

// PlayDetached plays wav in the background. Stop does not affect it.
func (p *Player) PlayDetached(wav []byte) error {
	pb, err := p.start(wav)
	if err != nil {
		return err
	}
	go func() {
		pb.wait()
		if err := pb.stream.Close(); err != nil {
			p.log.Warn("player: close detached stream: %v", err)
		}
	}()
	return nil
}

// Stop cuts off the speech in progress. It is a no-op when silent.
func (p *Player) Stop() {
	p.mu.Lock()
	pb := p.current
	p.mu.Unlock()

	if pb != nil {
		pb.stop()
		p.log.Debug("player: speech cut off")
	}
}

// extractPCM returns the samples of the first data chunk in a RIFF/WAVE
// buffer. A data chunk that claims more bytes than remain is cut to fit.
func extractPCM(wav []byte) ([]byte, error) {
	const riffHeader = 12
	if len(wav) < riffHeader+8 || string(wav[:4]) != "RIFF" || string(wav[8:12]) != "WAVE" {
		return nil, ErrBadWAV
	}

	rest := wav[riffHeader:]
	for len(rest) >= 8 {
		id := string(rest[:4])
		size := int(binary.LittleEndian.Uint32(rest[4:8]))
		body := rest[8:]
		if id == "data" {
			return body[:min(size, len(body))], nil
		}
		// Chunk bodies are padded to an even length.
		skip := size + size%2
		if skip >= len(body) {
			break
		}
		rest = body[skip:]
	}
	return nil, fmt.Errorf("%w: no data chunk", ErrBadWAV)
}
