package manifest

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Paths locates the manifest files of one split. Labels is the label list
// shared by every split.
type Paths struct {
	Labels  string
	Utt2Spk string
	Spk2Utt string
	WavScp  string
}

// Writer appends rows to the label list, utt2spk, and wav.scp files.
type Writer struct {
	paths   Paths
	files   []*os.File
	labels  *bufio.Writer
	utt2spk *bufio.Writer
	wavScp  *bufio.Writer
	rows    int
	closed  bool
}

// Open opens the manifest files in append mode, creating them if needed.
func Open(paths Paths) (*Writer, error) {
	w := &Writer{paths: paths}
	var err error
	if w.labels, err = w.open(paths.Labels); err != nil {
		_ = w.Close()
		return nil, err
	}
	if w.utt2spk, err = w.open(paths.Utt2Spk); err != nil {
		_ = w.Close()
		return nil, err
	}
	if w.wavScp, err = w.open(paths.WavScp); err != nil {
		_ = w.Close()
		return nil, err
	}
	return w, nil
}

func (w *Writer) open(path string) (*bufio.Writer, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create manifest directory: %w", err)
		}
	}
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open manifest %s: %w", filepath.Base(path), err)
	}
	w.files = append(w.files, file)
	return bufio.NewWriter(file), nil
}

// Add appends one segment to all three manifests.
func (w *Writer) Add(segmentID, speakerID, audioPath string) error {
	if w.closed {
		return errors.New("manifest writer closed")
	}
	if _, err := fmt.Fprintf(w.labels, "%s,%s\n", segmentID, speakerID); err != nil {
		return fmt.Errorf("append label row: %w", err)
	}
	if _, err := fmt.Fprintf(w.utt2spk, "%s %s\n", segmentID, speakerID); err != nil {
		return fmt.Errorf("append utt2spk row: %w", err)
	}
	if _, err := fmt.Fprintf(w.wavScp, "%s %s\n", segmentID, audioPath); err != nil {
		return fmt.Errorf("append wav.scp row: %w", err)
	}
	w.rows++
	return nil
}

// Rows returns the number of segments appended through this writer.
func (w *Writer) Rows() int {
	return w.rows
}

// Paths returns the files this writer appends to.
func (w *Writer) Paths() Paths {
	return w.paths
}

// Close flushes and closes every open manifest. It is safe to call more than once.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	var errs []error
	for _, buf := range []*bufio.Writer{w.labels, w.utt2spk, w.wavScp} {
		if buf == nil {
			continue
		}
		if err := buf.Flush(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, file := range w.files {
		if err := file.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
