package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

// SplitLayout lists every directory a split reads from or writes to.
type SplitLayout struct {
	Name           string
	SourceDir      string
	ConvertedDir   string
	LaughterDir    string
	NonLaughterDir string
	SubsetDir      string
	ManifestDir    string
}

// Utt2SpkPath returns the split's utterance-to-speaker manifest path.
func (l SplitLayout) Utt2SpkPath() string { return filepath.Join(l.ManifestDir, "utt2spk") }

// Spk2UttPath returns the split's speaker-to-utterances manifest path.
func (l SplitLayout) Spk2UttPath() string { return filepath.Join(l.ManifestDir, "spk2utt") }

// WavScpPath returns the split's audio-path manifest path.
func (l SplitLayout) WavScpPath() string { return filepath.Join(l.ManifestDir, "wav.scp") }

// ReportPath returns the split's YAML report path.
func (l SplitLayout) ReportPath() string { return filepath.Join(l.ManifestDir, "report.yaml") }

// Layout derives the directory layout for a split. Derived directories sit
// next to the source directory and carry the rate/bit-depth suffix, e.g.
// data/train/wav_laughter_16000Hz_16bits.
func (c *Config) Layout(split Split) SplitLayout {
	source := strings.TrimRight(split.DataDir, string(filepath.Separator))
	suffix := fmt.Sprintf("%dHz_%dbits", c.Audio.SampleRate, c.Audio.BitDepth)

	layout := SplitLayout{
		Name:           split.Name,
		SourceDir:      source,
		ConvertedDir:   source + "_" + suffix,
		LaughterDir:    source + "_laughter_" + suffix,
		NonLaughterDir: source + "_nonlaughter_" + suffix,
	}
	layout.SubsetDir = layout.NonLaughterDir + "_subset"
	layout.ManifestDir = split.ManifestDir
	if strings.TrimSpace(layout.ManifestDir) == "" {
		layout.ManifestDir = filepath.Dir(layout.ConvertedDir)
	}
	return layout
}
