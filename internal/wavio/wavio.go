package wavio

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"
)

// pcmFormat is the WAVE format tag for integer PCM.
const pcmFormat = 1

// Clip is a fully decoded PCM recording. Data is interleaved by channel.
type Clip struct {
	SampleRate int
	BitDepth   int
	Channels   int
	Data       []int
}

// Frames returns the number of sample frames (samples per channel).
func (c *Clip) Frames() int {
	if c == nil || c.Channels <= 0 {
		return 0
	}
	return len(c.Data) / c.Channels
}

// DurationMs returns the duration of n frames at the clip's sample rate.
func (c *Clip) DurationMs(frames int) float64 {
	if c == nil || c.SampleRate <= 0 {
		return 0
	}
	return float64(frames) * 1000 / float64(c.SampleRate)
}

// Load decodes a WAV file into memory.
func Load(path string) (*Clip, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open wav: %w", err)
	}
	defer file.Close()

	decoder := wav.NewDecoder(file)
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("decode wav %s: not a valid wav file", filepath.Base(path))
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read pcm %s: %w", filepath.Base(path), err)
	}

	channels := int(decoder.NumChans)
	if buf.Format != nil && buf.Format.NumChannels > 0 {
		channels = buf.Format.NumChannels
	}
	if channels <= 0 {
		channels = 1
	}
	bitDepth := int(decoder.BitDepth)
	if buf.SourceBitDepth > 0 {
		bitDepth = buf.SourceBitDepth
	}

	return &Clip{
		SampleRate: int(decoder.SampleRate),
		BitDepth:   bitDepth,
		Channels:   channels,
		Data:       buf.Data,
	}, nil
}

// WriteRange writes frames [start, end) of the clip to path, clamping end to
// the clip length. The output keeps the clip's rate, depth, and channels.
func (c *Clip) WriteRange(path string, start, end int) error {
	frames := c.Frames()
	if start < 0 {
		start = 0
	}
	if end > frames {
		end = frames
	}
	if start > end {
		start = end
	}
	sub := &Clip{
		SampleRate: c.SampleRate,
		BitDepth:   c.BitDepth,
		Channels:   c.Channels,
		Data:       c.Data[start*c.Channels : end*c.Channels],
	}
	return Write(path, sub)
}

// Write encodes the clip as integer PCM.
func Write(path string, clip *Clip) error {
	if clip == nil {
		return fmt.Errorf("write wav %s: nil clip", filepath.Base(path))
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create wav directory: %w", err)
		}
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create wav: %w", err)
	}

	encoder := wav.NewEncoder(file, clip.SampleRate, clip.BitDepth, clip.Channels, pcmFormat)
	buf := &audio.IntBuffer{
		Format: &audio.Format{
			NumChannels: clip.Channels,
			SampleRate:  clip.SampleRate,
		},
		Data:           clip.Data,
		SourceBitDepth: clip.BitDepth,
	}
	if err := encoder.Write(buf); err != nil {
		_ = file.Close()
		return fmt.Errorf("write wav %s: %w", filepath.Base(path), err)
	}
	if err := encoder.Close(); err != nil {
		_ = file.Close()
		return fmt.Errorf("finalize wav %s: %w", filepath.Base(path), err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close wav %s: %w", filepath.Base(path), err)
	}
	return nil
}
