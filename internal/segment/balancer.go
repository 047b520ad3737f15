package segment

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"path/filepath"
	"slices"

	"laughprep/internal/config"
	"laughprep/internal/failures"
	"laughprep/internal/fileutil"
	"laughprep/internal/logging"
)

// NewRand returns the generator shared by every split of a batch run.
func NewRand(seed uint64) *rand.Rand {
	return rand.New(rand.NewPCG(seed, seed))
}

// BalanceResult describes one balancing pass.
type BalanceResult struct {
	TargetMs    float64
	CopiedMs    float64
	Copied      int
	ShortfallMs float64
}

// Balancer subsamples the non-laughter pool down to the kept laughter duration.
type Balancer struct {
	rng    *rand.Rand
	logger *slog.Logger
}

// NewBalancer constructs a balancer drawing from rng.
func NewBalancer(rng *rand.Rand, logger *slog.Logger) *Balancer {
	return &Balancer{rng: rng, logger: logging.NewComponentLogger(logger, "balance")}
}

// Order returns the pool sorted by duration (stable) and permuted by a fresh
// draw of index positions. It consumes one permutation from the generator.
func (b *Balancer) Order(pool []Candidate) []Candidate {
	sorted := slices.Clone(pool)
	slices.SortStableFunc(sorted, func(x, y Candidate) int {
		return cmp.Compare(x.DurationMs, y.DurationMs)
	})
	perm := b.rng.Perm(len(sorted))
	ordered := make([]Candidate, 0, len(sorted))
	for _, idx := range perm {
		ordered = append(ordered, sorted[idx])
	}
	return ordered
}

// Balance copies candidates into the subset directory in permutation order
// until the copied duration reaches the kept laughter duration.
func (b *Balancer) Balance(ctx context.Context, layout config.SplitLayout, acc *Accumulator) (BalanceResult, error) {
	subsetDir, err := filepath.Abs(layout.SubsetDir)
	if err != nil {
		return BalanceResult{}, fmt.Errorf("resolve subset dir: %w", err)
	}
	if err := fileutil.ResetDir(subsetDir); err != nil {
		return BalanceResult{}, failures.Wrap(failures.ErrNotFound, "balance", "prepare output", subsetDir, err)
	}

	logger := logging.WithContext(ctx, b.logger)
	result := BalanceResult{TargetMs: acc.counters.LaughterMs}

	for _, c := range b.Order(acc.pool) {
		if result.CopiedMs >= result.TargetMs {
			break
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}
		dst := filepath.Join(subsetDir, filepath.Base(c.Path))
		if err := fileutil.CopyFile(c.Path, dst); err != nil {
			return result, fmt.Errorf("copy %s: %w", c.ID, err)
		}
		if err := acc.addBalanced(c, dst); err != nil {
			return result, err
		}
		result.Copied++
		result.CopiedMs += c.DurationMs
	}

	if result.CopiedMs < result.TargetMs {
		result.ShortfallMs = result.TargetMs - result.CopiedMs
		acc.counters.ShortfallMs = result.ShortfallMs
		logging.WarnWithContext(logger, "non-laughter pool exhausted before reaching laughter duration", "pool_exhausted",
			logging.Float64("target_ms", result.TargetMs),
			logging.Float64("copied_ms", result.CopiedMs),
			logging.Float64("shortfall_ms", result.ShortfallMs),
			logging.String(logging.FieldImpact, "split is imbalanced toward laughter"),
		)
	}

	logger.Info("balancing complete",
		logging.Int("copied", result.Copied),
		logging.Int("pool_size", len(acc.pool)),
		logging.Float64("target_ms", result.TargetMs),
		logging.Float64("copied_ms", result.CopiedMs),
	)
	return result, nil
}
