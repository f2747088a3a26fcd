package speech

import (
	"bytes"
	"encoding/binary"
	"math"
	"time"
)

// Chime tones: a bright fundamental with a softer fifth above it, the
// kind of bell a gym timer makes.
const (
	chimeFundamental = 880.0  // A5
	chimeOvertone    = 1318.5 // E6
	chimeLength      = 450 * time.Millisecond
	chimeDecay       = 7.0 // exponential decay rate per second
	chimeGain        = 0.45
)

// ChimeWAV renders the announcement chime as a 16-bit mono WAV at the
// player's sample rate.
func ChimeWAV() []byte {
	n := int(chimeLength.Seconds() * SampleRate)
	pcm := make([]byte, n*2)

	for i := 0; i < n; i++ {
		t := float64(i) / SampleRate
		env := math.Exp(-chimeDecay * t)
		// Short attack ramp avoids a click at the start.
		if attack := t / 0.005; attack < 1 {
			env *= attack
		}
		v := 0.7*math.Sin(2*math.Pi*chimeFundamental*t) + 0.3*math.Sin(2*math.Pi*chimeOvertone*t)
		sample := int16(chimeGain * env * v * math.MaxInt16)
		binary.LittleEndian.PutUint16(pcm[i*2:], uint16(sample))
	}

	return wrapWAV(pcm, SampleRate, ChannelCount, BitDepth)
}

// wrapWAV prefixes raw PCM with a canonical 44-byte RIFF header.
func wrapWAV(pcm []byte, rate, channels, bits int) []byte {
	var buf bytes.Buffer
	blockAlign := channels * bits / 8

	buf.WriteString("RIFF")
	binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	binary.Write(&buf, binary.LittleEndian, uint32(16))
	binary.Write(&buf, binary.LittleEndian, uint16(1)) // PCM
	binary.Write(&buf, binary.LittleEndian, uint16(channels))
	binary.Write(&buf, binary.LittleEndian, uint32(rate))
	binary.Write(&buf, binary.LittleEndian, uint32(rate*blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(blockAlign))
	binary.Write(&buf, binary.LittleEndian, uint16(bits))

	buf.WriteString("data")
	binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)

	return buf.Bytes()
}
