package utils

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// AudioInfo describes a WAV recording
type AudioInfo struct {
	SampleRate int
	Channels   int
	BitDepth   int
	Duration   time.Duration
}

// InspectWAV reads the header of a WAV recording. ok is false when the data
// is not a WAV file; other containers are passed to transcribers untouched.
func InspectWAV(data []byte) (info AudioInfo, ok bool) {
	dec := wav.NewDecoder(bytes.NewReader(data))
	if !dec.IsValidFile() {
		return AudioInfo{}, false
	}

	info = AudioInfo{
		SampleRate: int(dec.SampleRate),
		Channels:   int(dec.NumChans),
		BitDepth:   int(dec.BitDepth),
	}
	if d, err := dec.Duration(); err == nil {
		info.Duration = d
	}
	return info, true
}

// IsRawPCM reports whether the filename marks headerless 16-bit PCM
func IsRawPCM(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return ext == ".pcm" || ext == ".raw"
}

// PCMToWAV wraps little-endian 16-bit PCM samples in a WAV container
func PCMToWAV(pcm []byte, sampleRate, channels int) ([]byte, error) {
	if len(pcm)%2 != 0 {
		return nil, fmt.Errorf("pcm payload not aligned")
	}
	if sampleRate <= 0 || channels <= 0 {
		return nil, fmt.Errorf("invalid pcm format: rate=%d channels=%d", sampleRate, channels)
	}

	samples := make([]int, len(pcm)/2)
	for i := range samples {
		samples[i] = int(int16(binary.LittleEndian.Uint16(pcm[i*2:])))
	}
	buf := &audio.IntBuffer{
		Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
		Data:           samples,
		SourceBitDepth: 16,
	}

	out := &seekBuffer{}
	enc := wav.NewEncoder(out, sampleRate, 16, channels, 1)
	if err := enc.Write(buf); err != nil {
		return nil, fmt.Errorf("write wav: %w", err)
	}
	if err := enc.Close(); err != nil {
		return nil, fmt.Errorf("close wav encoder: %w", err)
	}
	return out.data, nil
}

// seekBuffer is an in-memory io.WriteSeeker; the WAV encoder seeks back to
// patch chunk sizes on Close.
type seekBuffer struct {
	data []byte
	pos  int
}

func (b *seekBuffer) Write(p []byte) (int, error) {
	end := b.pos + len(p)
	if end > len(b.data) {
		b.data = append(b.data, make([]byte, end-len(b.data))...)
	}
	copy(b.data[b.pos:], p)
	b.pos = end
	return len(p), nil
}

func (b *seekBuffer) Seek(offset int64, whence int) (int64, error) {
	var base int
	switch whence {
	case io.SeekStart:
		base = 0
	case io.SeekCurrent:
		base = b.pos
	case io.SeekEnd:
		base = len(b.data)
	default:
		return 0, fmt.Errorf("invalid whence %d", whence)
	}
	next := base + int(offset)
	if next < 0 {
		return 0, fmt.Errorf("negative position %d", next)
	}
	b.pos = next
	return int64(next), nil
}
