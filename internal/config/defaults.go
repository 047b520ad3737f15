package config

const (
	defaultStateDir      = "~/.local/share/laughprep"
	defaultLogDirName    = "logs"
	defaultSampleRate    = 16000
	defaultBitDepth      = 16
	defaultMinDurationMs = 100
	defaultSeed          = 777
	defaultDiscardPolicy = DiscardAbsorb
	defaultCursorAdvance = CursorOnEmit
	defaultResampleTool  = "ssrc"
	defaultSpk2UttScript = "utils/utt2spk_to_spk2utt.pl"
	defaultLogFormat     = "console"
	defaultLogLevel      = "info"
	defaultMinFreeMiB    = 512
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			StateDir: defaultStateDir,
		},
		Audio: Audio{
			SampleRate:    defaultSampleRate,
			BitDepth:      defaultBitDepth,
			MinDurationMs: defaultMinDurationMs,
		},
		Balance: Balance{
			Seed:          defaultSeed,
			DiscardPolicy: defaultDiscardPolicy,
			CursorAdvance: defaultCursorAdvance,
		},
		Resample: Resample{
			Enabled: true,
			Tool:    defaultResampleTool,
		},
		Spk2Utt: Spk2Utt{
			Command: []string{"perl", defaultSpk2UttScript},
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
		Preflight: Preflight{
			MinFreeMiB: defaultMinFreeMiB,
		},
	}
}
