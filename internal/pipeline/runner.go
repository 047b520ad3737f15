package pipeline

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"math/rand/v2"
	"os"
	"strings"
	"time"

	"laughprep/internal/annotations"
	"laughprep/internal/config"
	"laughprep/internal/failures"
	"laughprep/internal/fileutil"
	"laughprep/internal/ledger"
	"laughprep/internal/logging"
	"laughprep/internal/manifest"
	"laughprep/internal/preflight"
	"laughprep/internal/report"
	"laughprep/internal/resample"
	"laughprep/internal/segment"
)

// Result is the outcome of a batch or single-split run.
type Result struct {
	RunID   string
	Reports []report.Report
}

// Runner orchestrates resampling, extraction, balancing, and manifest
// finalization for the configured splits.
type Runner struct {
	cfg    *config.Config
	store  *ledger.Store
	logger *slog.Logger
}

// New constructs a runner. The store records runs and conversion checkpoints.
func New(cfg *config.Config, store *ledger.Store, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Runner{cfg: cfg, store: store, logger: logging.NewComponentLogger(logger, "pipeline")}
}

// Prepare runs the full batch: preflight, lock, then every split in order
// with one generator seeded once for the whole run. The shared label list is
// rebuilt from scratch.
func (r *Runner) Prepare(ctx context.Context) (Result, error) {
	if err := r.checkReady(ctx); err != nil {
		return Result{}, err
	}
	return r.withRun(ctx, func(ctx context.Context, runID string) ([]report.Report, error) {
		set, err := annotations.ParseFile(r.cfg.Paths.MasterLabels, r.cfg.Audio.SampleRate)
		if err != nil {
			return nil, err
		}
		if err := os.Remove(r.cfg.Paths.LabelsOut); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("remove label list: %w", err)
		}

		rng := segment.NewRand(r.cfg.Balance.Seed)
		var reports []report.Report
		for _, split := range r.cfg.Splits {
			rep, err := r.processSplit(ctx, runID, split, set, rng)
			if err != nil {
				return reports, err
			}
			reports = append(reports, rep)
		}
		return reports, nil
	})
}

// ExtractSplit reprocesses a single split with a generator seeded for this
// invocation. Rows the split previously contributed to the shared label list
// are replaced.
func (r *Runner) ExtractSplit(ctx context.Context, name string) (Result, error) {
	split, ok := r.cfg.SplitByName(name)
	if !ok {
		return Result{}, failures.Wrap(failures.ErrConfiguration, "extract", "", fmt.Sprintf("unknown split %q", name), nil)
	}
	if err := r.cfg.ValidateForRun(); err != nil {
		return Result{}, failures.Wrap(failures.ErrConfiguration, "extract", "validate", "", err)
	}
	return r.withRun(ctx, func(ctx context.Context, runID string) ([]report.Report, error) {
		set, err := annotations.ParseFile(r.cfg.Paths.MasterLabels, r.cfg.Audio.SampleRate)
		if err != nil {
			return nil, err
		}
		rep, err := r.processSplit(ctx, runID, split, set, segment.NewRand(r.cfg.Balance.Seed))
		if err != nil {
			return nil, err
		}
		return []report.Report{rep}, nil
	})
}

// Resample converts a single split's source audio.
func (r *Runner) Resample(ctx context.Context, name string) (resample.Result, error) {
	split, ok := r.cfg.SplitByName(name)
	if !ok {
		return resample.Result{}, failures.Wrap(failures.ErrConfiguration, "resample", "", fmt.Sprintf("unknown split %q", name), nil)
	}
	lock, err := ledger.AcquireLock(r.cfg.LockPath())
	if err != nil {
		return resample.Result{}, err
	}
	defer func() { _ = lock.Release() }()

	ctx = logging.WithSplit(ctx, split.Name)
	return resample.New(r.cfg, r.store, r.logger).Convert(ctx, r.cfg.Layout(split))
}

func (r *Runner) checkReady(ctx context.Context) error {
	if err := r.cfg.ValidateForRun(); err != nil {
		return failures.Wrap(failures.ErrConfiguration, "prepare", "validate", "", err)
	}
	if err := r.cfg.EnsureDirectories(); err != nil {
		return err
	}
	failed := preflight.Failed(preflight.RunAll(ctx, r.cfg))
	if len(failed) == 0 {
		return nil
	}
	details := make([]string, 0, len(failed))
	for _, f := range failed {
		details = append(details, fmt.Sprintf("%s: %s", f.Name, f.Detail))
	}
	return failures.Wrap(failures.ErrConfiguration, "prepare", "preflight", strings.Join(details, "; "), nil)
}

// withRun holds the run lock and brackets fn with ledger bookkeeping.
func (r *Runner) withRun(ctx context.Context, fn func(context.Context, string) ([]report.Report, error)) (result Result, err error) {
	lock, err := ledger.AcquireLock(r.cfg.LockPath())
	if err != nil {
		return Result{}, err
	}
	defer func() { _ = lock.Release() }()

	fingerprint, err := r.cfg.Fingerprint()
	if err != nil {
		return Result{}, err
	}
	run, err := r.store.BeginRun(ctx, r.cfg.Balance.Seed, fingerprint)
	if err != nil {
		return Result{}, err
	}
	ctx = logging.WithRunID(ctx, run.ID)
	logger := logging.WithContext(ctx, r.logger)
	logger.Info("run started",
		logging.Uint64("seed", r.cfg.Balance.Seed),
		logging.String("config_fingerprint", fingerprint),
		logging.Bool("resample_enabled", r.cfg.Resample.Enabled),
	)
	start := time.Now()

	defer func() {
		if finishErr := r.store.FinishRun(context.WithoutCancel(ctx), run.ID, err); finishErr != nil {
			logger.Error("failed to record run outcome", logging.Error(finishErr))
		}
		if err != nil {
			logger.Error("run failed",
				logging.Error(err),
				logging.String(logging.FieldEventType, "run_failed"),
				logging.String("error_hint", failures.Hint(err)),
				logging.Duration("elapsed", time.Since(start)),
			)
			return
		}
		logger.Info("run completed",
			logging.Int("splits", len(result.Reports)),
			logging.Duration("elapsed", time.Since(start)),
		)
	}()

	reports, err := fn(ctx, run.ID)
	return Result{RunID: run.ID, Reports: reports}, err
}

func (r *Runner) processSplit(ctx context.Context, runID string, split config.Split, set *annotations.Set, rng *rand.Rand) (report.Report, error) {
	ctx = logging.WithSplit(ctx, split.Name)
	layout := r.cfg.Layout(split)

	if r.cfg.Resample.Enabled {
		if _, err := resample.New(r.cfg, r.store, r.logger).Convert(ctx, layout); err != nil {
			return report.Report{}, err
		}
	} else if info, err := os.Stat(layout.ConvertedDir); err != nil || !info.IsDir() {
		return report.Report{}, failures.Wrap(failures.ErrNotFound, "extract", "converted audio", layout.ConvertedDir, err)
	}

	paths := manifest.Paths{
		Labels:  r.cfg.Paths.LabelsOut,
		Utt2Spk: layout.Utt2SpkPath(),
		Spk2Utt: layout.Spk2UttPath(),
		WavScp:  layout.WavScpPath(),
	}
	if err := resetSplitManifests(paths); err != nil {
		return report.Report{}, err
	}

	acc, err := segment.NewAccumulator(split.Name, paths)
	if err != nil {
		return report.Report{}, err
	}
	defer func() { _ = acc.Close() }()

	opts := segment.OptionsFromConfig(r.cfg)
	if err := segment.NewExtractor(opts, r.logger).Extract(ctx, layout, set, acc); err != nil {
		return report.Report{}, err
	}
	if _, err := segment.NewBalancer(rng, r.logger).Balance(ctx, layout, acc); err != nil {
		return report.Report{}, err
	}
	if err := acc.Close(); err != nil {
		return report.Report{}, fmt.Errorf("close manifests: %w", err)
	}
	if err := manifest.Finalize(ctx, paths, r.cfg.Spk2UttCommand(), r.logger); err != nil {
		return report.Report{}, err
	}

	rep := report.Build(runID, report.Settings{
		SampleRate:    r.cfg.Audio.SampleRate,
		MinDurationMs: r.cfg.Audio.MinDurationMs,
		DiscardPolicy: r.cfg.Balance.DiscardPolicy,
		CursorAdvance: r.cfg.Balance.CursorAdvance,
		Seed:          r.cfg.Balance.Seed,
	}, acc)
	if err := report.Write(layout.ReportPath(), rep); err != nil {
		return rep, err
	}

	c := acc.Counters()
	if err := r.store.RecordSplit(ctx, ledger.SplitSummary{
		RunID:             runID,
		Split:             split.Name,
		Recordings:        c.Recordings,
		NotInSplit:        c.NotInSplit,
		LaughterTotal:     c.LaughterTotal,
		LaughterKept:      c.LaughterKept,
		LaughterDiscarded: c.LaughterDiscarded,
		PoolSize:          c.PoolSize,
		Balanced:          c.Balanced,
		LaughterMs:        c.LaughterMs,
		BalancedMs:        c.BalancedMs,
		ShortfallMs:       c.ShortfallMs,
	}); err != nil {
		return rep, err
	}
	return rep, nil
}

// resetSplitManifests drops the split's previous rows from the shared label
// list (identified through its old utt2spk) and removes its own manifests.
func resetSplitManifests(paths manifest.Paths) error {
	previous, err := readIDs(paths.Utt2Spk)
	if err != nil {
		return err
	}
	if len(previous) > 0 {
		if err := dropLabelRows(paths.Labels, previous); err != nil {
			return err
		}
	}
	for _, path := range []string{paths.Utt2Spk, paths.Spk2Utt, paths.WavScp} {
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("remove %s: %w", path, err)
		}
	}
	return nil
}

func readIDs(utt2spk string) (map[string]struct{}, error) {
	file, err := os.Open(utt2spk)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("open utt2spk: %w", err)
	}
	defer file.Close()

	ids := make(map[string]struct{})
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		if fields := strings.Fields(scanner.Text()); len(fields) > 0 {
			ids[fields[0]] = struct{}{}
		}
	}
	return ids, scanner.Err()
}

func dropLabelRows(labels string, ids map[string]struct{}) error {
	data, err := os.ReadFile(labels)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read label list: %w", err)
	}
	return fileutil.WriteFileAtomic(labels, func(w io.Writer) error {
		for _, line := range strings.Split(string(data), "\n") {
			if strings.TrimSpace(line) == "" {
				continue
			}
			id, _, _ := strings.Cut(line, ",")
			if _, ok := ids[id]; ok {
				continue
			}
			if _, err := io.WriteString(w, line+"\n"); err != nil {
				return err
			}
		}
		return nil
	})
}
