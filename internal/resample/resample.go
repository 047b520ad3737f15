package resample

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"laughprep/internal/config"
	"laughprep/internal/failures"
	"laughprep/internal/ledger"
	"laughprep/internal/logging"
)

// Checkpoints records which source files were already converted.
type Checkpoints interface {
	ConversionCurrent(ctx context.Context, sourcePath string, info os.FileInfo, destPath string, rate, bits int) (bool, error)
	RecordConversion(ctx context.Context, c ledger.Conversion) error
}

// Result summarizes one conversion pass.
type Result struct {
	Converted int
	Skipped   int
}

// Converter runs the external sample-rate/bit-depth converter over a split.
type Converter struct {
	tool        string
	rate        int
	bits        int
	checkpoints Checkpoints
	logger      *slog.Logger
}

// New builds a converter from the configuration. checkpoints may be nil, in
// which case every file is converted.
func New(cfg *config.Config, checkpoints Checkpoints, logger *slog.Logger) *Converter {
	return &Converter{
		tool:        cfg.ResampleBinary(),
		rate:        cfg.Audio.SampleRate,
		bits:        cfg.Audio.BitDepth,
		checkpoints: checkpoints,
		logger:      logging.NewComponentLogger(logger, "resample"),
	}
}

// Args returns the converter arguments for one file.
func (c *Converter) Args(src, dst string) []string {
	return []string{
		"--quiet",
		"--rate", strconv.Itoa(c.rate),
		"--bits", strconv.Itoa(c.bits),
		src,
		dst,
	}
}

// Convert converts every .wav file of the split's source directory into the
// converted directory, skipping files whose checkpoint is current.
func (c *Converter) Convert(ctx context.Context, layout config.SplitLayout) (Result, error) {
	logger := logging.WithContext(ctx, c.logger)
	var result Result

	entries, err := os.ReadDir(layout.SourceDir)
	if err != nil {
		return result, failures.Wrap(failures.ErrNotFound, "resample", "list source", layout.SourceDir, err)
	}
	if err := os.MkdirAll(layout.ConvertedDir, 0o755); err != nil {
		return result, fmt.Errorf("create converted dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".wav") {
			continue
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		src := filepath.Join(layout.SourceDir, entry.Name())
		dst := filepath.Join(layout.ConvertedDir, entry.Name())
		info, err := entry.Info()
		if err != nil {
			return result, fmt.Errorf("stat %s: %w", entry.Name(), err)
		}

		if c.checkpoints != nil {
			current, err := c.checkpoints.ConversionCurrent(ctx, src, info, dst, c.rate, c.bits)
			if err != nil {
				return result, err
			}
			if current {
				result.Skipped++
				continue
			}
		}

		started := time.Now()
		if err := c.run(ctx, src, dst); err != nil {
			return result, err
		}
		result.Converted++
		logger.Debug("resampled recording",
			logging.String("file", entry.Name()),
			logging.Int64("source_bytes", info.Size()),
			logging.Duration("elapsed", time.Since(started)),
		)

		if c.checkpoints != nil {
			if err := c.checkpoints.RecordConversion(ctx, ledger.Conversion{
				Split:       layout.Name,
				SourcePath:  src,
				SourceSize:  info.Size(),
				SourceMtime: info.ModTime(),
				DestPath:    dst,
				SampleRate:  c.rate,
				BitDepth:    c.bits,
			}); err != nil {
				return result, err
			}
		}
	}

	logger.Info("resampling complete",
		logging.String("source", layout.SourceDir),
		logging.String("destination", layout.ConvertedDir),
		logging.Int("converted", result.Converted),
		logging.Int("skipped", result.Skipped),
	)
	return result, nil
}

func (c *Converter) run(ctx context.Context, src, dst string) error {
	cmd := exec.CommandContext(ctx, c.tool, c.Args(src, dst)...) //nolint:gosec
	if output, err := cmd.CombinedOutput(); err != nil {
		return failures.Wrap(failures.ErrExternalTool, "resample", filepath.Base(src),
			strings.TrimSpace(string(output)), fmt.Errorf("%s: %w", c.tool, err))
	}
	return nil
}
