package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

type statusKind int

const (
	statusOK statusKind = iota
	statusWarn
	statusError
	statusInfo
)

const (
	ansiReset  = "\033[0m"
	ansiGreen  = "\033[32m"
	ansiYellow = "\033[33m"
	ansiRed    = "\033[31m"
	ansiBlue   = "\033[34m"
)

func renderStatusLine(label string, kind statusKind, message string, colorize bool) string {
	status := statusKindLabel(kind)
	if colorize {
		status = statusKindColor(kind) + status + ansiReset
	}
	if message == "" {
		return fmt.Sprintf("%-20s %s", label, status)
	}
	return fmt.Sprintf("%-20s %s  %s", label, status, message)
}

func statusKindLabel(kind statusKind) string {
	switch kind {
	case statusOK:
		return "[ OK ]"
	case statusWarn:
		return "[WARN]"
	case statusError:
		return "[FAIL]"
	default:
		return "[INFO]"
	}
}

func statusKindColor(kind statusKind) string {
	switch kind {
	case statusOK:
		return ansiGreen
	case statusWarn:
		return ansiYellow
	case statusError:
		return ansiRed
	default:
		return ansiBlue
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func splitTitle(name string) string {
	return cases.Title(language.Und).String(name)
}

// formatMs renders a millisecond total as a rounded duration, e.g. 1m2.5s.
func formatMs(ms float64) string {
	return (time.Duration(ms * float64(time.Millisecond))).Round(10 * time.Millisecond).String()
}

func formatTimestamp(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("2006-01-02 15:04:05")
}

func renderSectionHeader(title string, colorize bool) []string {
	line := title
	rule := strings.Repeat("-", len(line))
	if colorize {
		line = ansiBlue + line + ansiReset
		rule = ansiBlue + rule + ansiReset
	}
	return []string{line, rule}
}
