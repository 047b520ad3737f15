package wavio_test

import (
	"os"
	"path/filepath"
	"testing"

	"laughprep/internal/wavio"
)

func ramp(frames, channels int) []int {
	data := make([]int, frames*channels)
	for i := range data {
		data[i] = (i / channels) % 1000
	}
	return data
}

func TestWriteLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rec.wav")
	clip := &wavio.Clip{SampleRate: 8000, BitDepth: 16, Channels: 1, Data: ramp(800, 1)}
	if err := wavio.Write(path, clip); err != nil {
		t.Fatalf("Write returned error: %v", err)
	}

	loaded, err := wavio.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.SampleRate != 8000 || loaded.BitDepth != 16 || loaded.Channels != 1 {
		t.Fatalf("unexpected format %+v", loaded)
	}
	if loaded.Frames() != 800 {
		t.Fatalf("expected 800 frames, got %d", loaded.Frames())
	}
	if loaded.Data[799] != 799 {
		t.Fatalf("unexpected last sample %d", loaded.Data[799])
	}
	if got := loaded.DurationMs(loaded.Frames()); got != 100 {
		t.Fatalf("expected 100ms, got %v", got)
	}
}

func TestWriteRangeClampsAndSlicesFrames(t *testing.T) {
	dir := t.TempDir()
	clip := &wavio.Clip{SampleRate: 8000, BitDepth: 16, Channels: 2, Data: ramp(100, 2)}

	path := filepath.Join(dir, "tail.wav")
	if err := clip.WriteRange(path, 90, 500); err != nil {
		t.Fatalf("WriteRange returned error: %v", err)
	}
	loaded, err := wavio.Load(path)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if loaded.Channels != 2 {
		t.Fatalf("expected stereo, got %d channels", loaded.Channels)
	}
	if loaded.Frames() != 10 {
		t.Fatalf("expected 10 frames after clamping, got %d", loaded.Frames())
	}
	if loaded.Data[0] != 90 || loaded.Data[1] != 90 {
		t.Fatalf("expected first frame to be source frame 90, got %v", loaded.Data[:2])
	}
}

func TestLoadRejectsNonWav(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.wav")
	if err := os.WriteFile(path, []byte("not a wav file at all"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := wavio.Load(path); err == nil {
		t.Fatal("expected error for invalid wav")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := wavio.Load(filepath.Join(t.TempDir(), "absent.wav")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
