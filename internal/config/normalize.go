package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizeSplits(); err != nil {
		return err
	}
	c.normalizeBalance()
	c.normalizeTools()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Paths.MasterLabels, err = expandPath(strings.TrimSpace(c.Paths.MasterLabels)); err != nil {
		return fmt.Errorf("paths.master_labels: %w", err)
	}
	if c.Paths.LabelsOut, err = expandPath(strings.TrimSpace(c.Paths.LabelsOut)); err != nil {
		return fmt.Errorf("paths.labels_out: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.StateDir, defaultLogDirName)
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizeSplits() error {
	for i := range c.Splits {
		split := &c.Splits[i]
		split.Name = strings.TrimSpace(split.Name)
		var err error
		if split.DataDir, err = expandPath(strings.TrimSpace(split.DataDir)); err != nil {
			return fmt.Errorf("splits[%d].data_dir: %w", i, err)
		}
		if split.ManifestDir, err = expandPath(strings.TrimSpace(split.ManifestDir)); err != nil {
			return fmt.Errorf("splits[%d].manifest_dir: %w", i, err)
		}
	}
	return nil
}

func (c *Config) normalizeBalance() {
	c.Balance.DiscardPolicy = strings.ToLower(strings.TrimSpace(c.Balance.DiscardPolicy))
	if c.Balance.DiscardPolicy == "" {
		c.Balance.DiscardPolicy = defaultDiscardPolicy
	}
	c.Balance.CursorAdvance = strings.ToLower(strings.TrimSpace(c.Balance.CursorAdvance))
	if c.Balance.CursorAdvance == "" {
		c.Balance.CursorAdvance = defaultCursorAdvance
	}
}

func (c *Config) normalizeTools() {
	c.Resample.Tool = strings.TrimSpace(c.Resample.Tool)
	if value, ok := os.LookupEnv("LAUGHPREP_SRC_TOOL"); ok && strings.TrimSpace(value) != "" {
		c.Resample.Tool = strings.TrimSpace(value)
	}
	if c.Resample.Tool == "" {
		c.Resample.Tool = defaultResampleTool
	}

	command := make([]string, 0, len(c.Spk2Utt.Command))
	for _, part := range c.Spk2Utt.Command {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			command = append(command, trimmed)
		}
	}
	if value, ok := os.LookupEnv("LAUGHPREP_SPK2UTT_SCRIPT"); ok && strings.TrimSpace(value) != "" {
		command = []string{"perl", strings.TrimSpace(value)}
	}
	c.Spk2Utt.Command = command
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	switch c.Logging.Format {
	case "", "console":
		c.Logging.Format = "console"
	case "json":
	default:
		c.Logging.Format = "console"
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
