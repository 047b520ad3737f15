package segment

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"laughprep/internal/annotations"
	"laughprep/internal/config"
	"laughprep/internal/failures"
	"laughprep/internal/fileutil"
	"laughprep/internal/logging"
	"laughprep/internal/wavio"
)

// Options controls extraction.
type Options struct {
	SampleRate    int
	MinDurationMs int
	DiscardPolicy string
	CursorAdvance string
}

// OptionsFromConfig derives extraction options from the configuration.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		SampleRate:    cfg.Audio.SampleRate,
		MinDurationMs: cfg.Audio.MinDurationMs,
		DiscardPolicy: cfg.Balance.DiscardPolicy,
		CursorAdvance: cfg.Balance.CursorAdvance,
	}
}

// Extractor cuts laughter and non-laughter clips out of a split's recordings.
type Extractor struct {
	opts   Options
	logger *slog.Logger
}

// NewExtractor constructs an extractor.
func NewExtractor(opts Options, logger *slog.Logger) *Extractor {
	if opts.DiscardPolicy == "" {
		opts.DiscardPolicy = config.DiscardAbsorb
	}
	if opts.CursorAdvance == "" {
		opts.CursorAdvance = config.CursorOnEmit
	}
	return &Extractor{opts: opts, logger: logging.NewComponentLogger(logger, "extract")}
}

// LaughterID names the n-th kept laughter segment of a recording.
func LaughterID(recordingID string, n int) string {
	return fmt.Sprintf("%s_L%02d", recordingID, n)
}

// NonLaughterID names the n-th non-laughter segment of a recording.
func NonLaughterID(recordingID string, n int) string {
	return fmt.Sprintf("%s_NL%02d", recordingID, n)
}

// Extract regenerates the split's laughter and non-laughter directories from
// every annotated recording found in the converted directory.
func (e *Extractor) Extract(ctx context.Context, layout config.SplitLayout, set *annotations.Set, acc *Accumulator) error {
	laughterDir, err := filepath.Abs(layout.LaughterDir)
	if err != nil {
		return fmt.Errorf("resolve laughter dir: %w", err)
	}
	nonLaughterDir, err := filepath.Abs(layout.NonLaughterDir)
	if err != nil {
		return fmt.Errorf("resolve non-laughter dir: %w", err)
	}
	for _, dir := range []string{laughterDir, nonLaughterDir} {
		if err := fileutil.ResetDir(dir); err != nil {
			return failures.Wrap(failures.ErrNotFound, "extract", "prepare output", dir, err)
		}
	}

	logger := logging.WithContext(ctx, e.logger)
	logger.Info("extracting segments",
		logging.String("source", layout.ConvertedDir),
		logging.Int("recordings", len(set.Records)),
		logging.String("discard_policy", e.opts.DiscardPolicy),
		logging.String("cursor_advance", e.opts.CursorAdvance),
	)

	for _, rec := range set.Records {
		if err := ctx.Err(); err != nil {
			return err
		}
		audioPath := filepath.Join(layout.ConvertedDir, rec.RecordingID+".wav")
		if _, err := os.Stat(audioPath); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				acc.counters.LaughterTotal += len(rec.Intervals)
				acc.counters.NotInSplit += len(rec.Intervals)
				logger.Debug("recording not in split",
					logging.String("recording_id", rec.RecordingID),
					logging.Int("intervals", len(rec.Intervals)),
				)
				continue
			}
			return failures.Wrap(failures.ErrNotFound, "extract", "stat audio", audioPath, err)
		}

		recCtx := logging.WithRecording(ctx, rec.RecordingID)
		if err := e.extractRecording(recCtx, rec, audioPath, laughterDir, nonLaughterDir, acc); err != nil {
			return err
		}
		acc.counters.Recordings++
	}

	c := acc.counters
	logger.Info("extraction complete",
		logging.Int("recordings", c.Recordings),
		logging.Int("not_in_split", c.NotInSplit),
		logging.Int("laughter_kept", c.LaughterKept),
		logging.Int("laughter_discarded", c.LaughterDiscarded),
		logging.Int("pool_size", c.PoolSize),
		logging.Float64("laughter_ms", c.LaughterMs),
	)
	return nil
}

func (e *Extractor) extractRecording(ctx context.Context, rec annotations.Record, audioPath, laughterDir, nonLaughterDir string, acc *Accumulator) error {
	logger := logging.WithContext(ctx, e.logger)

	clip, err := wavio.Load(audioPath)
	if err != nil {
		return failures.Wrap(failures.ErrNotFound, "extract", "load audio", rec.RecordingID, err)
	}
	if clip.SampleRate != e.opts.SampleRate {
		return failures.Wrap(failures.ErrSampleRate, "extract", rec.RecordingID,
			fmt.Sprintf("got %d Hz, expected %d Hz", clip.SampleRate, e.opts.SampleRate), nil)
	}

	n := clip.Frames()
	minMs := float64(e.opts.MinDurationMs)
	cursor := 0
	laughterIndex, nonLaughterIndex := 0, 0

	// emitGap writes [start, end-1) as the next non-laughter clip and reports
	// whether the gap was long enough to be kept.
	emitGap := func(start, end int) (bool, error) {
		if start >= end {
			return false, nil
		}
		gapMs := clip.DurationMs(end - start)
		if gapMs < minMs {
			return false, nil
		}
		nonLaughterIndex++
		id := NonLaughterID(rec.RecordingID, nonLaughterIndex)
		path := filepath.Join(nonLaughterDir, id+".wav")
		if err := clip.WriteRange(path, start, end-1); err != nil {
			return false, fmt.Errorf("write %s: %w", id, err)
		}
		acc.addCandidate(Candidate{
			ID:          id,
			RecordingID: rec.RecordingID,
			SpeakerID:   rec.SpeakerID,
			Path:        path,
			DurationMs:  gapMs,
		})
		return true, nil
	}

	for _, iv := range rec.Intervals {
		acc.counters.LaughterTotal++
		s, end := iv.Start, iv.End
		if end < s {
			return failures.Wrap(failures.ErrInvalidRange, "extract", rec.RecordingID,
				fmt.Sprintf("interval end %d before start %d", end, s), nil)
		}
		if s >= n {
			return failures.Wrap(failures.ErrInvalidRange, "extract", rec.RecordingID,
				fmt.Sprintf("interval start %d beyond %d samples", s, n), nil)
		}

		durationMs := clip.DurationMs(end - s + 1)
		if durationMs < minMs {
			acc.counters.LaughterDiscarded++
			logger.Debug("discarding short laughter",
				logging.Int("start", s),
				logging.Int("end", end),
				logging.Float64("duration_ms", durationMs),
			)
			if e.opts.DiscardPolicy == config.DiscardExclude && end+1 > cursor {
				cursor = end + 1
			}
			continue
		}

		laughterIndex++
		id := LaughterID(rec.RecordingID, laughterIndex)
		path := filepath.Join(laughterDir, id+".wav")
		if err := clip.WriteRange(path, s, end); err != nil {
			return fmt.Errorf("write %s: %w", id, err)
		}
		if err := acc.addLaughter(id, rec.SpeakerID, path, durationMs); err != nil {
			return err
		}

		emitted := false
		if cursor < s {
			if emitted, err = emitGap(cursor, s); err != nil {
				return err
			}
		}
		if emitted || e.opts.CursorAdvance == config.CursorOnKeep {
			cursor = end + 1
		}
	}

	if cursor < n {
		if _, err := emitGap(cursor, n); err != nil {
			return err
		}
	}

	logger.Debug("recording extracted",
		logging.Int("laughter", laughterIndex),
		logging.Int("non_laughter", nonLaughterIndex),
	)
	return nil
}
