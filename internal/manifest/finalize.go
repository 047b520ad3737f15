package manifest

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"strings"

	"laughprep/internal/failures"
	"laughprep/internal/logging"
)

// Finalize sorts the label list, utt2spk, and wav.scp by segment ID, then
// regenerates spk2utt from the sorted utt2spk with the external converter.
func Finalize(ctx context.Context, paths Paths, spk2utt []string, logger *slog.Logger) error {
	logger = logging.NewComponentLogger(logging.WithContext(ctx, logger), "finalize")

	sorts := []struct {
		path      string
		delimiter rune
	}{
		{paths.Labels, ','},
		{paths.Utt2Spk, ' '},
		{paths.WavScp, ' '},
	}
	for _, s := range sorts {
		if err := SortFile(s.path, s.delimiter); err != nil {
			return failures.Wrap(failures.ErrNotFound, "finalize", "sort", s.path, err)
		}
	}

	if err := RunSpk2Utt(ctx, spk2utt, paths.Utt2Spk, paths.Spk2Utt); err != nil {
		return err
	}
	logger.Info("manifests finalized",
		logging.String("utt2spk", paths.Utt2Spk),
		logging.String("spk2utt", paths.Spk2Utt),
	)
	return nil
}

// RunSpk2Utt runs command with the utt2spk path appended and writes its
// standard output to spk2uttPath. A nonzero exit is fatal.
func RunSpk2Utt(ctx context.Context, command []string, utt2spkPath, spk2uttPath string) error {
	if len(command) == 0 || strings.TrimSpace(command[0]) == "" {
		return failures.Wrap(failures.ErrConfiguration, "finalize", "spk2utt", "converter command is empty", nil)
	}

	args := append(append([]string(nil), command[1:]...), utt2spkPath)
	cmd := exec.CommandContext(ctx, command[0], args...) //nolint:gosec
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return failures.Wrap(failures.ErrExternalTool, "finalize", "spk2utt",
			strings.TrimSpace(stderr.String()), fmt.Errorf("%s: %w", command[0], err))
	}

	if err := os.WriteFile(spk2uttPath, stdout.Bytes(), 0o644); err != nil {
		return fmt.Errorf("write spk2utt: %w", err)
	}
	return nil
}
