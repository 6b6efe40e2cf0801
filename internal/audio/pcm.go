// Package audio decodes narration payloads into playable buffers.
// Playback itself is the consumer's concern; this package only
// guarantees a decodable buffer and a player handle.
package audio

import (
	"encoding/binary"
	"fmt"
	"time"
)

// Buffer is a decoded mono audio clip
type Buffer struct {
	Samples    []float32
	SampleRate int
}

// Duration returns the clip length
func (b *Buffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(float64(len(b.Samples)) / float64(b.SampleRate) * float64(time.Second))
}

// DecodePCM16 converts raw little-endian 16-bit PCM into a mono Buffer
func DecodePCM16(data []byte, sampleRate int) (*Buffer, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty audio payload")
	}
	if len(data)%2 != 0 {
		return nil, fmt.Errorf("PCM16 payload has odd length %d", len(data))
	}

	samples := make([]float32, len(data)/2)
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(data[i*2:]))
		samples[i] = float32(v) / 32768.0
	}

	return &Buffer{Samples: samples, SampleRate: sampleRate}, nil
}

// Player is the playback contract handed to the presentation layer.
// It tracks position over a buffer; actual output is out of scope.
type Player struct {
	buffer  *Buffer
	started time.Time
	playing bool
}

// NewPlayer creates a player over a decoded buffer
func NewPlayer(b *Buffer) *Player {
	return &Player{buffer: b}
}

// Start begins playback position tracking
func (p *Player) Start() {
	p.started = time.Now()
	p.playing = true
}

// Stop halts playback
func (p *Player) Stop() {
	p.playing = false
}

// Playing reports whether the player is active. Playback ends on its
// own when the buffer duration has elapsed.
func (p *Player) Playing() bool {
	if !p.playing {
		return false
	}
	if time.Since(p.started) >= p.buffer.Duration() {
		p.playing = false
	}
	return p.playing
}

// Elapsed returns the current playback position, clamped to the
// buffer duration.
func (p *Player) Elapsed() time.Duration {
	if p.started.IsZero() {
		return 0
	}
	elapsed := time.Since(p.started)
	if d := p.buffer.Duration(); elapsed > d {
		return d
	}
	return elapsed
}
