package segment

import (
	"fmt"

	"laughprep/internal/manifest"
)

// Candidate is a generated non-laughter clip eligible for balancing.
type Candidate struct {
	ID          string
	RecordingID string
	SpeakerID   string
	Path        string
	DurationMs  float64
}

// Counters tracks what a split produced.
type Counters struct {
	Recordings int
	// NotInSplit counts laughter intervals whose recording has no audio in
	// the split. They are included in LaughterTotal.
	NotInSplit        int
	LaughterTotal     int
	LaughterKept      int
	LaughterDiscarded int
	LaughterMs        float64
	PoolSize          int
	PoolMs            float64
	Balanced          int
	BalancedMs        float64
	ShortfallMs       float64
}

// Accumulator is the per-split context: it owns the open manifest writer,
// the counters, and the non-laughter candidate pool. Close must be called on
// every exit path.
type Accumulator struct {
	split     string
	manifests *manifest.Writer
	counters  Counters
	pool      []Candidate

	laughterDurations []float64
	balancedDurations []float64
}

// NewAccumulator opens the split's manifests for appending.
func NewAccumulator(split string, paths manifest.Paths) (*Accumulator, error) {
	writer, err := manifest.Open(paths)
	if err != nil {
		return nil, fmt.Errorf("open manifests for %s: %w", split, err)
	}
	return &Accumulator{split: split, manifests: writer}, nil
}

// Split returns the split name.
func (a *Accumulator) Split() string { return a.split }

// Counters returns a snapshot of the running counters.
func (a *Accumulator) Counters() Counters { return a.counters }

// Pool returns the candidate pool in insertion order.
func (a *Accumulator) Pool() []Candidate {
	return append([]Candidate(nil), a.pool...)
}

// LaughterDurations returns the durations of kept laughter segments in ms.
func (a *Accumulator) LaughterDurations() []float64 {
	return append([]float64(nil), a.laughterDurations...)
}

// BalancedDurations returns the durations of copied non-laughter segments in ms.
func (a *Accumulator) BalancedDurations() []float64 {
	return append([]float64(nil), a.balancedDurations...)
}

// ManifestPaths returns the files the accumulator appends to.
func (a *Accumulator) ManifestPaths() manifest.Paths {
	return a.manifests.Paths()
}

func (a *Accumulator) addLaughter(id, speakerID, path string, durationMs float64) error {
	if err := a.manifests.Add(id, speakerID, path); err != nil {
		return err
	}
	a.counters.LaughterKept++
	a.counters.LaughterMs += durationMs
	a.laughterDurations = append(a.laughterDurations, durationMs)
	return nil
}

func (a *Accumulator) addCandidate(c Candidate) {
	a.pool = append(a.pool, c)
	a.counters.PoolSize++
	a.counters.PoolMs += c.DurationMs
}

func (a *Accumulator) addBalanced(c Candidate, path string) error {
	if err := a.manifests.Add(c.ID, c.SpeakerID, path); err != nil {
		return err
	}
	a.counters.Balanced++
	a.counters.BalancedMs += c.DurationMs
	a.balancedDurations = append(a.balancedDurations, c.DurationMs)
	return nil
}

// Close flushes and closes the manifests. It is safe to call more than once.
func (a *Accumulator) Close() error {
	if a == nil || a.manifests == nil {
		return nil
	}
	return a.manifests.Close()
}
