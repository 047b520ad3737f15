package runlog

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"strings"
	"time"
)

const pollInterval = 250 * time.Millisecond

// Filter selects log lines.
type Filter struct {
	RunID string
}

// Match reports whether line belongs to the filtered run.
func (f Filter) Match(line string) bool {
	if f.RunID == "" {
		return true
	}
	return strings.Contains(line, "run_id="+f.RunID) ||
		strings.Contains(line, `"run_id":"`+f.RunID+`"`)
}

// Result holds matching lines and the offset just past the bytes read.
type Result struct {
	Lines  []string
	Offset int64
}

// Tail returns up to limit trailing lines of path that match filter. A
// missing file yields an empty result. limit <= 0 returns no lines but still
// reports the end offset.
func Tail(path string, limit int, filter Filter) (Result, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Result{}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	if limit <= 0 {
		end, err := file.Seek(0, io.SeekEnd)
		if err != nil {
			return Result{}, fmt.Errorf("seek log file: %w", err)
		}
		return Result{Offset: end}, nil
	}

	ring := make([]string, limit)
	count, next := 0, 0
	offset, err := scan(file, filter, func(line string) {
		ring[next] = line
		next = (next + 1) % limit
		if count < limit {
			count++
		}
	})
	if err != nil {
		return Result{}, err
	}

	lines := make([]string, count)
	if count == limit {
		for i := range count {
			lines[i] = ring[(next+i)%limit]
		}
	} else {
		copy(lines, ring[:count])
	}
	return Result{Lines: lines, Offset: offset}, nil
}

// ReadFrom returns matching lines written at or after offset. An offset past
// the end of a truncated file restarts from the beginning.
func ReadFrom(path string, offset int64, filter Filter) (Result, error) {
	file, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Result{}, nil
	}
	if err != nil {
		return Result{}, fmt.Errorf("open log file: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return Result{}, fmt.Errorf("stat log file: %w", err)
	}
	if offset < 0 || offset > info.Size() {
		offset = 0
	}
	if _, err := file.Seek(offset, io.SeekStart); err != nil {
		return Result{}, fmt.Errorf("seek log file: %w", err)
	}

	var lines []string
	end, err := scan(file, filter, func(line string) { lines = append(lines, line) })
	if err != nil {
		return Result{}, err
	}
	return Result{Lines: lines, Offset: end}, nil
}

// Follow emits matching lines appended after offset until ctx is done.
func Follow(ctx context.Context, path string, offset int64, filter Filter, emit func(string)) error {
	ticker := time.NewTicker(pollInterval)
	defer ticker.Stop()

	for {
		result, err := ReadFrom(path, offset, filter)
		if err != nil {
			return err
		}
		for _, line := range result.Lines {
			emit(line)
		}
		if result.Offset > 0 {
			offset = result.Offset
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// scan feeds complete matching lines to fn and returns the offset after the
// last complete line. A trailing partial line is left for the next read.
func scan(file *os.File, filter Filter, fn func(string)) (int64, error) {
	start, err := file.Seek(0, io.SeekCurrent)
	if err != nil {
		return 0, fmt.Errorf("determine log offset: %w", err)
	}
	reader := bufio.NewReaderSize(file, 64*1024)
	offset := start
	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if errors.Is(err, io.EOF) {
				return offset, nil
			}
			return offset, fmt.Errorf("read log file: %w", err)
		}
		offset += int64(len(line))
		line = strings.TrimRight(line, "\r\n")
		if filter.Match(line) {
			fn(line)
		}
	}
}
