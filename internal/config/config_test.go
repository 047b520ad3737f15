package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"laughprep/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("LAUGHPREP_SRC_TOOL", "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "laughprep")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if cfg.Paths.LogDir != filepath.Join(wantState, "logs") {
		t.Fatalf("unexpected log dir: %q", cfg.Paths.LogDir)
	}
	if cfg.Audio.SampleRate != 16000 || cfg.Audio.BitDepth != 16 {
		t.Fatalf("unexpected audio defaults: %+v", cfg.Audio)
	}
	if cfg.Audio.MinDurationMs != 100 {
		t.Fatalf("expected min duration 100ms, got %d", cfg.Audio.MinDurationMs)
	}
	if cfg.Balance.Seed != 777 {
		t.Fatalf("expected seed 777, got %d", cfg.Balance.Seed)
	}
	if cfg.Balance.DiscardPolicy != config.DiscardAbsorb {
		t.Fatalf("expected absorb discard policy, got %q", cfg.Balance.DiscardPolicy)
	}
	if cfg.Balance.CursorAdvance != config.CursorOnEmit {
		t.Fatalf("expected cursor to advance on emitted gaps, got %q", cfg.Balance.CursorAdvance)
	}
	if cfg.ResampleBinary() != "ssrc" {
		t.Fatalf("unexpected resample tool %q", cfg.ResampleBinary())
	}
	if err := cfg.ValidateForRun(); err == nil {
		t.Fatal("expected ValidateForRun to reject a config without splits")
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("EnsureDirectories failed: %v", err)
	}
	for _, dir := range []string{cfg.Paths.StateDir, cfg.Paths.LogDir} {
		info, err := os.Stat(dir)
		if err != nil {
			t.Fatalf("expected directory %q to exist: %v", dir, err)
		}
		if !info.IsDir() {
			t.Fatalf("expected %q to be directory", dir)
		}
	}
}

func TestLoadCustomPath(t *testing.T) {
	tempDir := t.TempDir()
	configPath := filepath.Join(tempDir, "laughprep.toml")

	type splitPayload struct {
		Name    string `toml:"name"`
		DataDir string `toml:"data_dir"`
	}
	type payload struct {
		Paths struct {
			MasterLabels string `toml:"master_labels"`
			LabelsOut    string `toml:"labels_out"`
			StateDir     string `toml:"state_dir"`
		} `toml:"paths"`
		Audio struct {
			SampleRate int `toml:"sample_rate"`
		} `toml:"audio"`
		Balance struct {
			DiscardPolicy string `toml:"discard_policy"`
			CursorAdvance string `toml:"cursor_advance"`
		} `toml:"balance"`
		Splits []splitPayload `toml:"splits"`
	}
	custom := payload{}
	custom.Paths.MasterLabels = filepath.Join(tempDir, "master.csv")
	custom.Paths.LabelsOut = filepath.Join(tempDir, "labels.csv")
	custom.Paths.StateDir = filepath.Join(tempDir, "state")
	custom.Audio.SampleRate = 8000
	custom.Balance.DiscardPolicy = " EXCLUDE "
	custom.Balance.CursorAdvance = "Kept"
	custom.Splits = []splitPayload{
		{Name: "train", DataDir: filepath.Join(tempDir, "train", "wav")},
		{Name: "test", DataDir: filepath.Join(tempDir, "test", "wav")},
	}

	data, err := toml.Marshal(custom)
	if err != nil {
		t.Fatalf("marshal config: %v", err)
	}
	if err := os.WriteFile(configPath, data, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists || resolved != configPath {
		t.Fatalf("expected custom config to be used, got %q (exists=%v)", resolved, exists)
	}
	if cfg.Audio.SampleRate != 8000 {
		t.Fatalf("unexpected sample rate %d", cfg.Audio.SampleRate)
	}
	if cfg.Audio.BitDepth != 16 {
		t.Fatalf("expected default bit depth to survive partial config, got %d", cfg.Audio.BitDepth)
	}
	if cfg.Balance.DiscardPolicy != config.DiscardExclude {
		t.Fatalf("expected normalized discard policy, got %q", cfg.Balance.DiscardPolicy)
	}
	if cfg.Balance.CursorAdvance != config.CursorOnKeep {
		t.Fatalf("expected normalized cursor rule, got %q", cfg.Balance.CursorAdvance)
	}
	if err := cfg.ValidateForRun(); err != nil {
		t.Fatalf("ValidateForRun: %v", err)
	}
	if got := cfg.SplitNames(); len(got) != 2 || got[0] != "train" || got[1] != "test" {
		t.Fatalf("unexpected split order %v", got)
	}
	if _, ok := cfg.SplitByName("dev"); ok {
		t.Fatal("did not expect a dev split")
	}
	if cfg.LedgerPath() != filepath.Join(tempDir, "state", "ledger.db") {
		t.Fatalf("unexpected ledger path %q", cfg.LedgerPath())
	}
}

func TestLayoutNamesDerivedDirectories(t *testing.T) {
	cfg := config.Default()
	cfg.Audio.SampleRate = 8000
	split := config.Split{Name: "train", DataDir: "/corpus/train/wav/"}

	layout := cfg.Layout(split)
	if layout.ConvertedDir != "/corpus/train/wav_8000Hz_16bits" {
		t.Fatalf("unexpected converted dir %q", layout.ConvertedDir)
	}
	if layout.LaughterDir != "/corpus/train/wav_laughter_8000Hz_16bits" {
		t.Fatalf("unexpected laughter dir %q", layout.LaughterDir)
	}
	if layout.NonLaughterDir != "/corpus/train/wav_nonlaughter_8000Hz_16bits" {
		t.Fatalf("unexpected non-laughter dir %q", layout.NonLaughterDir)
	}
	if layout.SubsetDir != layout.NonLaughterDir+"_subset" {
		t.Fatalf("unexpected subset dir %q", layout.SubsetDir)
	}
	if layout.ManifestDir != "/corpus/train" {
		t.Fatalf("unexpected manifest dir %q", layout.ManifestDir)
	}
	if layout.WavScpPath() != "/corpus/train/wav.scp" {
		t.Fatalf("unexpected wav.scp path %q", layout.WavScpPath())
	}

	split.ManifestDir = "/manifests/train"
	if got := cfg.Layout(split).Utt2SpkPath(); got != "/manifests/train/utt2spk" {
		t.Fatalf("manifest override ignored: %q", got)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"sample rate", func(c *config.Config) { c.Audio.SampleRate = 0 }, "audio.sample_rate"},
		{"bit depth", func(c *config.Config) { c.Audio.BitDepth = 12 }, "audio.bit_depth"},
		{"min duration", func(c *config.Config) { c.Audio.MinDurationMs = -1 }, "audio.min_duration_ms"},
		{"discard policy", func(c *config.Config) { c.Balance.DiscardPolicy = "drop" }, "balance.discard_policy"},
		{"cursor advance", func(c *config.Config) { c.Balance.CursorAdvance = "always" }, "balance.cursor_advance"},
		{"spk2utt", func(c *config.Config) { c.Spk2Utt.Command = nil }, "spk2utt.command"},
		{"split name", func(c *config.Config) { c.Splits = []config.Split{{DataDir: "/x"}} }, "splits[0].name"},
		{"split dup", func(c *config.Config) {
			c.Splits = []config.Split{{Name: "a", DataDir: "/x"}, {Name: "a", DataDir: "/y"}}
		}, "duplicated"},
		{"shared manifest dir", func(c *config.Config) {
			c.Splits = []config.Split{{Name: "a", DataDir: "/d/a/wav"}, {Name: "b", DataDir: "/d/b/wav", ManifestDir: "/d/a"}}
		}, "share manifest directory"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("error %q does not mention %q", err, tc.want)
			}
		})
	}
}

func TestLoadHonoursToolEnvironment(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Chdir(t.TempDir())
	t.Setenv("LAUGHPREP_SRC_TOOL", "/opt/ssrc/bin/ssrc")
	t.Setenv("LAUGHPREP_SPK2UTT_SCRIPT", "/opt/kaldi/utils/utt2spk_to_spk2utt.pl")

	cfg, _, _, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.ResampleBinary() != "/opt/ssrc/bin/ssrc" {
		t.Fatalf("unexpected resample tool %q", cfg.ResampleBinary())
	}
	command := cfg.Spk2UttCommand()
	if len(command) != 2 || command[1] != "/opt/kaldi/utils/utt2spk_to_spk2utt.pl" {
		t.Fatalf("unexpected spk2utt command %v", command)
	}
}

func TestCreateSampleIsLoadable(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "config.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	cfg, _, exists, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load sample: %v", err)
	}
	if !exists {
		t.Fatal("expected sample config to exist")
	}
	if len(cfg.Splits) != 2 {
		t.Fatalf("expected sample splits, got %d", len(cfg.Splits))
	}
}

func TestFingerprintTracksChanges(t *testing.T) {
	cfg := config.Default()
	first, err := cfg.Fingerprint()
	if err != nil {
		t.Fatalf("Fingerprint: %v", err)
	}
	again, _ := cfg.Fingerprint()
	if first != again || len(first) != 12 {
		t.Fatalf("expected stable 12-char fingerprint, got %q and %q", first, again)
	}
	cfg.Balance.Seed = 1
	changed, _ := cfg.Fingerprint()
	if changed == first {
		t.Fatal("expected fingerprint to change with the seed")
	}
}
