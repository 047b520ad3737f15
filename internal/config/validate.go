package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateBalance(); err != nil {
		return err
	}
	if err := c.validateTools(); err != nil {
		return err
	}
	if err := c.validateSplits(); err != nil {
		return err
	}
	if c.Preflight.MinFreeMiB < 0 {
		return errors.New("preflight.min_free_mib must be zero or positive")
	}
	return nil
}

// ValidateForRun checks the settings a processing run needs on top of
// Validate. Config scaffolding commands only need Validate.
func (c *Config) ValidateForRun() error {
	if strings.TrimSpace(c.Paths.MasterLabels) == "" {
		return errors.New("paths.master_labels must be set")
	}
	if strings.TrimSpace(c.Paths.LabelsOut) == "" {
		return errors.New("paths.labels_out must be set")
	}
	if len(c.Splits) == 0 {
		return errors.New("at least one [[splits]] entry is required")
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive (got %d)", c.Audio.SampleRate)
	}
	switch c.Audio.BitDepth {
	case 8, 16, 24, 32:
	default:
		return fmt.Errorf("audio.bit_depth must be one of 8, 16, 24, 32 (got %d)", c.Audio.BitDepth)
	}
	if c.Audio.MinDurationMs < 0 {
		return fmt.Errorf("audio.min_duration_ms must be zero or positive (got %d)", c.Audio.MinDurationMs)
	}
	return nil
}

func (c *Config) validateBalance() error {
	switch c.Balance.DiscardPolicy {
	case DiscardAbsorb, DiscardExclude:
	default:
		return fmt.Errorf("balance.discard_policy must be %q or %q (got %q)", DiscardAbsorb, DiscardExclude, c.Balance.DiscardPolicy)
	}
	switch c.Balance.CursorAdvance {
	case CursorOnEmit, CursorOnKeep:
		return nil
	default:
		return fmt.Errorf("balance.cursor_advance must be %q or %q (got %q)", CursorOnEmit, CursorOnKeep, c.Balance.CursorAdvance)
	}
}

func (c *Config) validateTools() error {
	if c.Resample.Enabled && c.Resample.Tool == "" {
		return errors.New("resample.tool must be set when resampling is enabled")
	}
	if len(c.Spk2Utt.Command) == 0 {
		return errors.New("spk2utt.command must not be empty")
	}
	return nil
}

func (c *Config) validateSplits() error {
	seen := make(map[string]struct{}, len(c.Splits))
	for i, split := range c.Splits {
		if split.Name == "" {
			return fmt.Errorf("splits[%d].name must be set", i)
		}
		if _, ok := seen[split.Name]; ok {
			return fmt.Errorf("splits[%d].name %q is duplicated", i, split.Name)
		}
		seen[split.Name] = struct{}{}
		if split.DataDir == "" {
			return fmt.Errorf("splits[%d].data_dir must be set", i)
		}
	}

	manifests := make(map[string]string, len(c.Splits))
	for _, split := range c.Splits {
		dir := c.Layout(split).ManifestDir
		if other, ok := manifests[dir]; ok {
			return fmt.Errorf("splits %q and %q share manifest directory %s", other, split.Name, dir)
		}
		manifests[dir] = split.Name
	}
	return nil
}
