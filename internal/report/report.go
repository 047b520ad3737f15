package report

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"laughprep/internal/segment"
)

// Counts mirrors the split counters.
type Counts struct {
	Recordings        int     `yaml:"recordings" json:"recordings"`
	NotInSplit        int     `yaml:"not_in_split" json:"not_in_split"`
	LaughterTotal     int     `yaml:"laughter_total" json:"laughter_total"`
	LaughterKept      int     `yaml:"laughter_kept" json:"laughter_kept"`
	LaughterDiscarded int     `yaml:"laughter_discarded" json:"laughter_discarded"`
	PoolSize          int     `yaml:"pool_size" json:"pool_size"`
	Balanced          int     `yaml:"balanced" json:"balanced"`
	ShortfallMs       float64 `yaml:"shortfall_ms" json:"shortfall_ms"`
}

// Settings records the parameters the split was produced with.
type Settings struct {
	SampleRate    int    `yaml:"sample_rate" json:"sample_rate"`
	MinDurationMs int    `yaml:"min_duration_ms" json:"min_duration_ms"`
	DiscardPolicy string `yaml:"discard_policy" json:"discard_policy"`
	CursorAdvance string `yaml:"cursor_advance" json:"cursor_advance"`
	Seed          uint64 `yaml:"seed" json:"seed"`
}

// Report is the per-split summary written next to the manifests.
type Report struct {
	Split       string    `yaml:"split" json:"split"`
	RunID       string    `yaml:"run_id,omitempty" json:"run_id,omitempty"`
	GeneratedAt time.Time `yaml:"generated_at" json:"generated_at"`
	Settings    Settings  `yaml:"settings" json:"settings"`
	Counts      Counts    `yaml:"counts" json:"counts"`
	Laughter    Stats     `yaml:"laughter" json:"laughter"`
	Pool        Stats     `yaml:"non_laughter_pool" json:"non_laughter_pool"`
	Balanced    Stats     `yaml:"non_laughter_balanced" json:"non_laughter_balanced"`
}

// Build assembles a report from a finished accumulator.
func Build(runID string, settings Settings, acc *segment.Accumulator) Report {
	c := acc.Counters()
	poolDurations := make([]float64, 0, c.PoolSize)
	for _, candidate := range acc.Pool() {
		poolDurations = append(poolDurations, candidate.DurationMs)
	}
	return Report{
		Split:       acc.Split(),
		RunID:       runID,
		GeneratedAt: time.Now().UTC(),
		Settings:    settings,
		Counts: Counts{
			Recordings:        c.Recordings,
			NotInSplit:        c.NotInSplit,
			LaughterTotal:     c.LaughterTotal,
			LaughterKept:      c.LaughterKept,
			LaughterDiscarded: c.LaughterDiscarded,
			PoolSize:          c.PoolSize,
			Balanced:          c.Balanced,
			ShortfallMs:       c.ShortfallMs,
		},
		Laughter: Summarize(acc.LaughterDurations()),
		Pool:     Summarize(poolDurations),
		Balanced: Summarize(acc.BalancedDurations()),
	}
}

// Write stores the report as YAML.
func Write(path string, r Report) error {
	data, err := yaml.Marshal(r)
	if err != nil {
		return fmt.Errorf("encode report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create report directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write report: %w", err)
	}
	return nil
}

// Load reads a YAML report.
func Load(path string) (Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Report{}, fmt.Errorf("read report: %w", err)
	}
	var r Report
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Report{}, fmt.Errorf("decode report %s: %w", filepath.Base(path), err)
	}
	return r, nil
}
