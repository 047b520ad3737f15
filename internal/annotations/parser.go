package annotations

import (
	"bufio"
	"fmt"
	"io"
	"math"
	"os"
	"strconv"
	"strings"

	"laughprep/internal/failures"
)

const laughterMarker = "laughter"

// Interval is a laughter span expressed in sample indices.
type Interval struct {
	Start int
	End   int
}

// Record holds the laughter annotations of one recording.
type Record struct {
	RecordingID string
	SpeakerID   string
	Intervals   []Interval
}

// Set is the parsed master label file. Records keep master-file order.
type Set struct {
	Records []Record
	index   map[string]int
}

// Lookup returns the record for a recording ID.
func (s *Set) Lookup(recordingID string) (Record, bool) {
	if s == nil || s.index == nil {
		return Record{}, false
	}
	i, ok := s.index[recordingID]
	if !ok {
		return Record{}, false
	}
	return s.Records[i], true
}

// Speakers returns the recording to speaker mapping.
func (s *Set) Speakers() map[string]string {
	out := make(map[string]string, len(s.Records))
	for _, rec := range s.Records {
		out[rec.RecordingID] = rec.SpeakerID
	}
	return out
}

// IntervalCount returns the number of laughter intervals across all records.
func (s *Set) IntervalCount() int {
	total := 0
	for _, rec := range s.Records {
		total += len(rec.Intervals)
	}
	return total
}

// ParseFile reads a master label file.
func ParseFile(path string, sampleRate int) (*Set, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, failures.Wrap(failures.ErrNotFound, "parse", "open master labels", path, err)
	}
	defer file.Close()
	return Parse(file, sampleRate)
}

// Parse reads master label lines of the form
//
//	recordingID, speakerID, label, start, end, label, start, end, ...
//
// Every label containing "laughter" contributes its start/end seconds,
// converted to sample indices. Lines without laughter are dropped.
func Parse(r io.Reader, sampleRate int) (*Set, error) {
	if sampleRate <= 0 {
		return nil, failures.Wrap(failures.ErrConfiguration, "parse", "", fmt.Sprintf("invalid sample rate %d", sampleRate), nil)
	}

	set := &Set{index: make(map[string]int)}
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	lineNo := 0
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		rec, err := parseLine(line, sampleRate)
		if err != nil {
			return nil, failures.Wrap(failures.ErrCorruptLabels, "parse", fmt.Sprintf("line %d", lineNo), "", err)
		}
		if len(rec.Intervals) == 0 {
			continue
		}
		if i, ok := set.index[rec.RecordingID]; ok {
			set.Records[i] = rec
			continue
		}
		set.index[rec.RecordingID] = len(set.Records)
		set.Records = append(set.Records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, failures.Wrap(failures.ErrCorruptLabels, "parse", "read", "", err)
	}
	return set, nil
}

func parseLine(line string, sampleRate int) (Record, error) {
	fields := strings.Split(line, ",")
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}
	if len(fields) < 2 || fields[0] == "" {
		return Record{}, fmt.Errorf("expected recording and speaker fields, got %q", line)
	}

	rec := Record{RecordingID: fields[0], SpeakerID: fields[1]}
	for i := 2; i < len(fields); i++ {
		if !strings.Contains(fields[i], laughterMarker) {
			continue
		}
		if i+2 >= len(fields) {
			return Record{}, fmt.Errorf("label %q at field %d is missing start/end", fields[i], i+1)
		}
		start, err := toSample(fields[i+1], sampleRate)
		if err != nil {
			return Record{}, fmt.Errorf("field %d: %w", i+2, err)
		}
		end, err := toSample(fields[i+2], sampleRate)
		if err != nil {
			return Record{}, fmt.Errorf("field %d: %w", i+3, err)
		}
		rec.Intervals = append(rec.Intervals, Interval{Start: start, End: end})
		i += 2
	}
	return rec, nil
}

func toSample(field string, sampleRate int) (int, error) {
	seconds, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, fmt.Errorf("malformed time %q", field)
	}
	if math.IsNaN(seconds) || math.IsInf(seconds, 0) {
		return 0, fmt.Errorf("non-finite time %q", field)
	}
	return int(math.Round(seconds * float64(sampleRate))), nil
}
