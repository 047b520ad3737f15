package manifest

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"

	"laughprep/internal/fileutil"
)

// SortFile rewrites a manifest with its lines stably ordered by the first
// delimiter-separated field. Line content is preserved byte for byte and
// blank lines are dropped.
func SortFile(path string, delimiter rune) error {
	lines, err := readLines(path)
	if err != nil {
		return err
	}

	slices.SortStableFunc(lines, func(a, b string) int {
		return strings.Compare(firstField(a, delimiter), firstField(b, delimiter))
	})

	return fileutil.WriteFileAtomic(path, func(w io.Writer) error {
		for _, line := range lines {
			if _, err := io.WriteString(w, line+"\n"); err != nil {
				return err
			}
		}
		return nil
	})
}

func readLines(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open manifest: %w", err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	return lines, nil
}

func firstField(line string, delimiter rune) string {
	if i := strings.IndexRune(line, delimiter); i >= 0 {
		return line[:i]
	}
	return line
}
