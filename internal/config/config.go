package config

import (
	"crypto/sha256"
	_ "embed"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Discard policies for laughter intervals shorter than the minimum duration.
const (
	// DiscardAbsorb leaves a discarded interval inside the surrounding
	// non-laughter gap.
	DiscardAbsorb = "absorb"
	// DiscardExclude advances the non-laughter cursor past a discarded
	// interval so its samples never land in a non-laughter clip.
	DiscardExclude = "exclude"
)

// Cursor advance rules for the non-laughter cursor after a kept laughter
// interval.
const (
	// CursorOnEmit moves the cursor past a kept interval only when the gap
	// before it was long enough to become a non-laughter clip. A short gap
	// and its following laughter then stay inside the next emitted clip.
	CursorOnEmit = "emitted"
	// CursorOnKeep moves the cursor past every kept interval, so
	// non-laughter clips never contain kept laughter.
	CursorOnKeep = "kept"
)

// Paths contains file and directory locations shared by every split.
type Paths struct {
	MasterLabels string `toml:"master_labels"`
	LabelsOut    string `toml:"labels_out"`
	StateDir     string `toml:"state_dir"`
	LogDir       string `toml:"log_dir"`
}

// Audio describes the pipeline's expected audio format and segment floor.
type Audio struct {
	SampleRate    int `toml:"sample_rate"`
	BitDepth      int `toml:"bit_depth"`
	MinDurationMs int `toml:"min_duration_ms"`
}

// Balance controls non-laughter subsampling.
type Balance struct {
	Seed          uint64 `toml:"seed"`
	DiscardPolicy string `toml:"discard_policy"`
	CursorAdvance string `toml:"cursor_advance"`
}

// Resample configures the external sample-rate/bit-depth converter.
type Resample struct {
	Enabled bool   `toml:"enabled"`
	Tool    string `toml:"tool"`
}

// Spk2Utt configures the external utt2spk to spk2utt converter. The utt2spk
// path is appended as the final argument.
type Spk2Utt struct {
	Command []string `toml:"command"`
}

// Split names one dataset partition (train, test, ...).
type Split struct {
	Name        string `toml:"name"`
	DataDir     string `toml:"data_dir"`
	ManifestDir string `toml:"manifest_dir"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
}

// Preflight contains thresholds for the startup checks.
type Preflight struct {
	MinFreeMiB int `toml:"min_free_mib"`
}

// Config encapsulates all configuration values for laughprep.
//
// Configuration sections by subsystem:
//   - Paths: master label file, shared label list, state and log directories
//   - Audio: expected sample rate, bit depth, and minimum segment duration
//   - Balance: random seed and the short-laughter discard policy
//   - Resample: external converter used before extraction
//   - Spk2Utt: external utt2spk to spk2utt converter
//   - Splits: dataset partitions processed in order
//   - Logging: log format and level
//   - Preflight: startup check thresholds
type Config struct {
	Paths     Paths     `toml:"paths"`
	Audio     Audio     `toml:"audio"`
	Balance   Balance   `toml:"balance"`
	Resample  Resample  `toml:"resample"`
	Spk2Utt   Spk2Utt   `toml:"spk2utt"`
	Splits    []Split   `toml:"splits"`
	Logging   Logging   `toml:"logging"`
	Preflight Preflight `toml:"preflight"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath("~/.config/laughprep/config.toml")
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath("~/.config/laughprep/config.toml")
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("laughprep.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the state and log directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.StateDir, c.Paths.LogDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// SplitByName returns the configured split with the given name.
func (c *Config) SplitByName(name string) (Split, bool) {
	name = strings.TrimSpace(name)
	for _, split := range c.Splits {
		if split.Name == name {
			return split, true
		}
	}
	return Split{}, false
}

// SplitNames lists the configured split names in processing order.
func (c *Config) SplitNames() []string {
	names := make([]string, 0, len(c.Splits))
	for _, split := range c.Splits {
		names = append(names, split.Name)
	}
	return names
}

// ResampleBinary returns the converter executable name.
func (c *Config) ResampleBinary() string {
	return c.Resample.Tool
}

// Spk2UttCommand returns a copy of the converter command line.
func (c *Config) Spk2UttCommand() []string {
	return append([]string(nil), c.Spk2Utt.Command...)
}

// LedgerPath returns the location of the run ledger database.
func (c *Config) LedgerPath() string {
	return filepath.Join(c.Paths.StateDir, "ledger.db")
}

// LogPath returns the location of the persistent run log.
func (c *Config) LogPath() string {
	return filepath.Join(c.Paths.LogDir, "laughprep.log")
}

// LockPath returns the location of the run lock file.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "laughprep.lock")
}

// Fingerprint returns a short stable hash of the effective configuration so
// runs can be compared in the ledger.
func (c *Config) Fingerprint() (string, error) {
	data, err := toml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("encode config: %w", err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:])[:12], nil
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
