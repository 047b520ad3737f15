package ledger

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"time"
)

// Conversion is the checkpoint for one resampled source file.
type Conversion struct {
	Split       string
	SourcePath  string
	SourceSize  int64
	SourceMtime time.Time
	DestPath    string
	SampleRate  int
	BitDepth    int
	ConvertedAt time.Time
}

// RecordConversion stores or replaces the checkpoint for a source file.
func (s *Store) RecordConversion(ctx context.Context, c Conversion) error {
	if c.ConvertedAt.IsZero() {
		c.ConvertedAt = time.Now()
	}
	_, err := s.exec(ctx, `
INSERT INTO converted_files (
    source_path, sample_rate, bit_depth, split, source_size, source_mtime, dest_path, converted_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT (source_path, sample_rate, bit_depth) DO UPDATE SET
    split = excluded.split,
    source_size = excluded.source_size,
    source_mtime = excluded.source_mtime,
    dest_path = excluded.dest_path,
    converted_at = excluded.converted_at`,
		c.SourcePath, c.SampleRate, c.BitDepth, c.Split, c.SourceSize,
		formatTime(c.SourceMtime), c.DestPath, formatTime(c.ConvertedAt),
	)
	if err != nil {
		return fmt.Errorf("record conversion %s: %w", c.SourcePath, err)
	}
	return nil
}

// ConversionCurrent reports whether sourcePath was already converted to
// destPath at the given format and is unchanged since: the recorded size and
// mtime match and the destination file still exists.
func (s *Store) ConversionCurrent(ctx context.Context, sourcePath string, info os.FileInfo, destPath string, rate, bits int) (bool, error) {
	var (
		size     int64
		mtime    sql.NullString
		recorded string
	)
	err := s.db.QueryRowContext(ensureContext(ctx), `
SELECT source_size, source_mtime, dest_path FROM converted_files
WHERE source_path = ? AND sample_rate = ? AND bit_depth = ?`,
		sourcePath, rate, bits,
	).Scan(&size, &mtime, &recorded)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("query conversion: %w", err)
	}

	if recorded != destPath || size != info.Size() || !parseTime(mtime).Equal(info.ModTime().UTC()) {
		return false, nil
	}
	if _, err := os.Stat(destPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return false, nil
		}
		return false, fmt.Errorf("stat converted file: %w", err)
	}
	return true, nil
}

// ConversionCount returns the number of checkpoints recorded for a split.
func (s *Store) ConversionCount(ctx context.Context, split string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ensureContext(ctx),
		`SELECT COUNT(1) FROM converted_files WHERE split = ?`, split,
	).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("count conversions: %w", err)
	}
	return n, nil
}
