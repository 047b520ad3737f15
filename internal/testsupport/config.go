package testsupport

import (
	"os"
	"path/filepath"
	"testing"

	"laughprep/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*configBuilder)

type configBuilder struct {
	t       testing.TB
	baseDir string
	cfg     *config.Config
}

// Spk2UttScript converts utt2spk ($1) to spk2utt on stdout, grouping
// utterances per speaker in first-seen order.
const Spk2UttScript = `awk '{ if (!($2 in seen)) { order[++n] = $2; seen[$2] = 1 } utts[$2] = utts[$2] " " $1 }
END { for (i = 1; i <= n; i++) print order[i] utts[order[i]] }' "$1"
`

// ResampleScript copies the source ($6) to the destination ($7) and logs
// each invocation to $LAUGHPREP_STUB_LOG when set.
const ResampleScript = `if [ -n "$LAUGHPREP_STUB_LOG" ]; then echo "$*" >> "$LAUGHPREP_STUB_LOG"; fi
cp "$6" "$7"
`

// NewConfig produces a config seeded with unique temp directories per test:
// a single "train" split under <base>/data/train/wav, 8000 Hz audio, and
// resampling disabled.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfgVal := config.Default()
	cfgVal.Paths.StateDir = filepath.Join(base, "state")
	cfgVal.Paths.LogDir = filepath.Join(base, "state", "logs")
	cfgVal.Paths.MasterLabels = filepath.Join(base, "labels", "master.csv")
	cfgVal.Paths.LabelsOut = filepath.Join(base, "data", "labels.csv")
	cfgVal.Audio.SampleRate = 8000
	cfgVal.Resample.Enabled = false
	cfgVal.Splits = []config.Split{{
		Name:    "train",
		DataDir: filepath.Join(base, "data", "train", "wav"),
	}}

	builder := &configBuilder{
		t:       t,
		baseDir: base,
		cfg:     &cfgVal,
	}

	for _, opt := range opts {
		opt(builder)
	}

	return builder.cfg
}

// WithSplits replaces the configured splits with the named ones, each under
// <base>/data/<name>/wav.
func WithSplits(names ...string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Splits = nil
		for _, name := range names {
			b.cfg.Splits = append(b.cfg.Splits, config.Split{
				Name:    name,
				DataDir: filepath.Join(b.baseDir, "data", name, "wav"),
			})
		}
	}
}

// WithDiscardPolicy sets the short-laughter discard policy.
func WithDiscardPolicy(policy string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Balance.DiscardPolicy = policy
	}
}

// WithCursorAdvance sets the non-laughter cursor rule.
func WithCursorAdvance(rule string) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Balance.CursorAdvance = rule
	}
}

// WithMinDuration sets the minimum segment duration in milliseconds.
func WithMinDuration(ms int) ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Audio.MinDurationMs = ms
	}
}

// WithStubbedSpk2Utt points the spk2utt converter at a shell script that
// behaves like the real one.
func WithStubbedSpk2Utt() ConfigOption {
	return func(b *configBuilder) {
		script := writeScript(b.t, filepath.Join(b.baseDir, "tools"), "utt2spk_to_spk2utt.sh", Spk2UttScript)
		b.cfg.Spk2Utt.Command = []string{"sh", script}
	}
}

// WithStubbedResampler enables resampling through a copying stub named
// after the configured tool and prepends it to PATH.
func WithStubbedResampler() ConfigOption {
	return func(b *configBuilder) {
		b.cfg.Resample.Enabled = true
		binDir := filepath.Join(b.baseDir, "bin")
		writeScript(b.t, binDir, b.cfg.Resample.Tool, ResampleScript)
		prependPath(b.t, binDir)
	}
}

// WithStubbedBinaries writes no-op executables for the provided names and
// prepends them to PATH. If names is empty, the configured resampler and
// spk2utt interpreter are stubbed.
func WithStubbedBinaries(names ...string) ConfigOption {
	return func(b *configBuilder) {
		if len(names) == 0 {
			names = []string{b.cfg.Resample.Tool}
			if len(b.cfg.Spk2Utt.Command) > 0 {
				names = append(names, b.cfg.Spk2Utt.Command[0])
			}
		}
		binDir := filepath.Join(b.baseDir, "bin")
		for _, name := range names {
			writeScript(b.t, binDir, name, "exit 0\n")
		}
		prependPath(b.t, binDir)
	}
}

// BaseDir returns the root temp directory backing the generated config.
func BaseDir(cfg *config.Config) string {
	return filepath.Dir(cfg.Paths.StateDir)
}

func writeScript(t testing.TB, dir, name, body string) string {
	t.Helper()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", dir, err)
	}
	target := filepath.Join(dir, name)
	if err := os.WriteFile(target, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return target
}

func prependPath(t testing.TB, dir string) {
	t.Helper()
	t.Setenv("PATH", dir+string(os.PathListSeparator)+os.Getenv("PATH"))
}
