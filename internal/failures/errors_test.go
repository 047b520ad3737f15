package failures_test

import (
	"errors"
	"strings"
	"testing"

	"laughprep/internal/failures"
)

func TestWrapIncludesContext(t *testing.T) {
	base := errors.New("boom")
	err := failures.Wrap(failures.ErrExternalTool, "finalize", "spk2utt", "converter failed", base)
	if !errors.Is(err, failures.ErrExternalTool) {
		t.Fatalf("expected marker to be retained, got %v", err)
	}
	if !errors.Is(err, base) {
		t.Fatalf("expected wrapped error to contain base error, got %v", err)
	}
	msg := err.Error()
	for _, fragment := range []string{"finalize", "spk2utt", "converter failed", "boom"} {
		if !strings.Contains(msg, fragment) {
			t.Fatalf("expected %q in error string %q", fragment, msg)
		}
	}
}

func TestWrapWithoutCause(t *testing.T) {
	err := failures.Wrap(failures.ErrSampleRate, "extract", "", "rec01: got 8000 Hz", nil)
	if !errors.Is(err, failures.ErrSampleRate) {
		t.Fatalf("expected sample rate marker, got %v", err)
	}
	if got, want := err.Error(), "sample rate mismatch: extract: rec01: got 8000 Hz"; got != want {
		t.Fatalf("unexpected message %q, want %q", got, want)
	}
}

func TestWrapEmptyDetail(t *testing.T) {
	err := failures.Wrap(nil, "", "", "", nil)
	if !errors.Is(err, failures.ErrExternalTool) {
		t.Fatalf("expected default marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "laughprep failure") {
		t.Fatalf("expected fallback detail, got %q", err.Error())
	}
}

func TestHint(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "nil", err: nil, want: ""},
		{name: "labels", err: failures.Wrap(failures.ErrCorruptLabels, "parse", "", "", nil), want: "master label"},
		{name: "tool", err: failures.Wrap(failures.ErrExternalTool, "resample", "", "", nil), want: "laughprep check"},
		{name: "plain", err: errors.New("x"), want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := failures.Hint(tt.err)
			if tt.want == "" && got != "" {
				t.Fatalf("expected empty hint, got %q", got)
			}
			if !strings.Contains(got, tt.want) {
				t.Fatalf("hint %q does not contain %q", got, tt.want)
			}
		})
	}
}
