package audio

import (
	"encoding/binary"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestDecodePCM16(t *testing.T) {
	// 0, max positive, min negative
	data := []byte{0x00, 0x00, 0xFF, 0x7F, 0x00, 0x80}

	buf, err := DecodePCM16(data, 24000)
	require.NoError(t, err)
	require.Equal(t, 24000, buf.SampleRate)
	require.Len(t, buf.Samples, 3)
	require.InDelta(t, 0.0, buf.Samples[0], 1e-6)
	require.InDelta(t, 32767.0/32768.0, buf.Samples[1], 1e-6)
	require.InDelta(t, -1.0, buf.Samples[2], 1e-6)
}

func TestDecodePCM16Rejects(t *testing.T) {
	_, err := DecodePCM16(nil, 24000)
	require.Error(t, err)

	_, err = DecodePCM16([]byte{0x01}, 24000)
	require.Error(t, err)
}

func TestBufferDuration(t *testing.T) {
	buf := &Buffer{Samples: make([]float32, 12000), SampleRate: 24000}
	require.Equal(t, 500*time.Millisecond, buf.Duration())

	empty := &Buffer{SampleRate: 0}
	require.Equal(t, time.Duration(0), empty.Duration())
}

func TestEncodeWAVHeader(t *testing.T) {
	pcm := []byte{0x01, 0x02, 0x03, 0x04}
	wav := EncodeWAV(pcm, 24000)

	require.Len(t, wav, 44+len(pcm))
	require.Equal(t, "RIFF", string(wav[0:4]))
	require.Equal(t, "WAVE", string(wav[8:12]))
	require.Equal(t, "fmt ", string(wav[12:16]))
	require.Equal(t, "data", string(wav[36:40]))

	require.Equal(t, uint32(36+len(pcm)), binary.LittleEndian.Uint32(wav[4:8]))
	require.Equal(t, uint16(1), binary.LittleEndian.Uint16(wav[22:24])) // mono
	require.Equal(t, uint32(24000), binary.LittleEndian.Uint32(wav[24:28]))
	require.Equal(t, uint16(16), binary.LittleEndian.Uint16(wav[34:36]))
	require.Equal(t, uint32(len(pcm)), binary.LittleEndian.Uint32(wav[40:44]))
	require.Equal(t, pcm, wav[44:])
}

func TestPlayerLifecycle(t *testing.T) {
	buf := &Buffer{Samples: make([]float32, 24), SampleRate: 24000} // 1ms clip
	p := NewPlayer(buf)

	require.False(t, p.Playing())
	require.Equal(t, time.Duration(0), p.Elapsed())

	p.Start()
	require.Eventually(t, func() bool { return !p.Playing() }, time.Second, time.Millisecond)
	require.Equal(t, buf.Duration(), p.Elapsed())
}
