package testsupport

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"laughprep/internal/wavio"
)

// WriteWAV writes a mono 16-bit recording with a simple ramp pattern so
// clip boundaries are recognizable from sample values.
func WriteWAV(t testing.TB, path string, sampleRate, frames int) {
	t.Helper()

	data := make([]int, frames)
	for i := range data {
		data[i] = i % 30000
	}
	clip := &wavio.Clip{SampleRate: sampleRate, BitDepth: 16, Channels: 1, Data: data}
	if err := wavio.Write(path, clip); err != nil {
		t.Fatalf("write wav %s: %v", path, err)
	}
}

// WriteLines writes lines to path, one per line, creating parent directories.
func WriteLines(t testing.TB, path string, lines ...string) {
	t.Helper()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir for %s: %v", path, err)
	}
	content := strings.Join(lines, "\n")
	if len(lines) > 0 {
		content += "\n"
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// ReadLines returns the non-empty lines of path.
func ReadLines(t testing.TB, path string) []string {
	t.Helper()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	var lines []string
	for _, line := range strings.Split(string(data), "\n") {
		if strings.TrimSpace(line) != "" {
			lines = append(lines, line)
		}
	}
	return lines
}
