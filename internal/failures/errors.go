package failures

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrCorruptLabels = errors.New("corrupt labels")
	ErrSampleRate    = errors.New("sample rate mismatch")
	ErrExternalTool  = errors.New("external tool error")
	ErrConfiguration = errors.New("configuration error")
	ErrNotFound      = errors.New("not found")
	ErrInvalidRange  = errors.New("invalid interval")
)

// Wrap builds an error message that includes stage context while tagging it with
// the provided marker for later classification. The marker should be one of
// the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Hint returns a short operator-facing hint for a classified error.
func Hint(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrCorruptLabels):
		return "fix the master label file and rerun"
	case errors.Is(err, ErrSampleRate):
		return "resample the split or adjust audio.sample_rate"
	case errors.Is(err, ErrInvalidRange):
		return "check the laughter interval bounds for this recording"
	case errors.Is(err, ErrExternalTool):
		return "run `laughprep check` to verify external tools"
	case errors.Is(err, ErrConfiguration):
		return "run `laughprep config validate`"
	case errors.Is(err, ErrNotFound):
		return "verify the configured paths exist"
	default:
		return ""
	}
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "laughprep failure"
	}
	return strings.Join(parts, ": ")
}
