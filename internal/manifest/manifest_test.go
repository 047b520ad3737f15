package manifest_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"laughprep/internal/failures"
	"laughprep/internal/logging"
	"laughprep/internal/manifest"
)

func testPaths(t *testing.T) manifest.Paths {
	t.Helper()
	dir := t.TempDir()
	return manifest.Paths{
		Labels:  filepath.Join(dir, "labels.csv"),
		Utt2Spk: filepath.Join(dir, "train", "utt2spk"),
		Spk2Utt: filepath.Join(dir, "train", "spk2utt"),
		WavScp:  filepath.Join(dir, "train", "wav.scp"),
	}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read %s: %v", path, err)
	}
	return string(data)
}

func writeStub(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "spk2utt.sh")
	if err := os.WriteFile(path, []byte("#!/bin/sh\n"+body), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestWriterAppendsRows(t *testing.T) {
	paths := testPaths(t)
	w, err := manifest.Open(paths)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	if err := w.Add("rec01_L01", "spkA", "/data/rec01_L01.wav"); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("second Close returned error: %v", err)
	}
	if err := w.Add("x", "y", "z"); err == nil {
		t.Fatal("expected Add after Close to fail")
	}

	if got := readFile(t, paths.Labels); got != "rec01_L01,spkA\n" {
		t.Fatalf("unexpected labels %q", got)
	}
	if got := readFile(t, paths.Utt2Spk); got != "rec01_L01 spkA\n" {
		t.Fatalf("unexpected utt2spk %q", got)
	}
	if got := readFile(t, paths.WavScp); got != "rec01_L01 /data/rec01_L01.wav\n" {
		t.Fatalf("unexpected wav.scp %q", got)
	}
	if w.Rows() != 1 {
		t.Fatalf("expected 1 row, got %d", w.Rows())
	}

	w2, err := manifest.Open(paths)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if err := w2.Add("rec00_L01", "spkB", "/data/rec00_L01.wav"); err != nil {
		t.Fatalf("Add returned error: %v", err)
	}
	_ = w2.Close()
	if got := readFile(t, paths.Labels); got != "rec01_L01,spkA\nrec00_L01,spkB\n" {
		t.Fatalf("expected append mode, got %q", got)
	}
}

func TestSortFileStableAndIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "utt2spk")
	input := "b_L01 s1\na_NL01 s2\n\nb_L01 dup\na_L01 s2\n"
	if err := os.WriteFile(path, []byte(input), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := manifest.SortFile(path, ' '); err != nil {
		t.Fatalf("SortFile returned error: %v", err)
	}
	want := "a_L01 s2\na_NL01 s2\nb_L01 s1\nb_L01 dup\n"
	if got := readFile(t, path); got != want {
		t.Fatalf("unexpected sort result %q, want %q", got, want)
	}

	if err := manifest.SortFile(path, ' '); err != nil {
		t.Fatalf("second SortFile returned error: %v", err)
	}
	if got := readFile(t, path); got != want {
		t.Fatalf("sort not idempotent: %q", got)
	}
}

func TestSortFileCommaDelimiter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "labels.csv")
	if err := os.WriteFile(path, []byte("rec2_L01,z\nrec1_L01,y\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := manifest.SortFile(path, ','); err != nil {
		t.Fatalf("SortFile returned error: %v", err)
	}
	if got := readFile(t, path); got != "rec1_L01,y\nrec2_L01,z\n" {
		t.Fatalf("unexpected result %q", got)
	}
}

func TestSortFileMissing(t *testing.T) {
	if err := manifest.SortFile(filepath.Join(t.TempDir(), "absent"), ' '); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFinalizeSortsAndRunsConverter(t *testing.T) {
	paths := testPaths(t)
	w, err := manifest.Open(paths)
	if err != nil {
		t.Fatalf("Open returned error: %v", err)
	}
	_ = w.Add("rec02_L01", "spkB", "/x/rec02_L01.wav")
	_ = w.Add("rec01_NL01", "spkA", "/x/rec01_NL01.wav")
	_ = w.Add("rec01_L01", "spkA", "/x/rec01_L01.wav")
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}

	stub := writeStub(t, "echo \"args:$1\"\nsort -k2 \"$1\" | awk '{print $2\" \"$1}'\n")
	if err := manifest.Finalize(context.Background(), paths, []string{"sh", stub}, logging.NewNop()); err != nil {
		t.Fatalf("Finalize returned error: %v", err)
	}

	if got := readFile(t, paths.Utt2Spk); got != "rec01_L01 spkA\nrec01_NL01 spkA\nrec02_L01 spkB\n" {
		t.Fatalf("unexpected sorted utt2spk %q", got)
	}
	if got := readFile(t, paths.Labels); !strings.HasPrefix(got, "rec01_L01,spkA\n") {
		t.Fatalf("unexpected sorted labels %q", got)
	}
	spk2utt := readFile(t, paths.Spk2Utt)
	if !strings.Contains(spk2utt, "args:"+paths.Utt2Spk) {
		t.Fatalf("expected utt2spk path as final argument, got %q", spk2utt)
	}
	if !strings.Contains(spk2utt, "spkB rec02_L01") {
		t.Fatalf("expected converter stdout captured, got %q", spk2utt)
	}
}

func TestRunSpk2UttFailure(t *testing.T) {
	paths := testPaths(t)
	if err := os.MkdirAll(filepath.Dir(paths.Utt2Spk), 0o755); err != nil {
		t.Fatal(err)
	}
	stub := writeStub(t, "echo 'bad input' >&2\nexit 3\n")
	err := manifest.RunSpk2Utt(context.Background(), []string{"sh", stub}, paths.Utt2Spk, paths.Spk2Utt)
	if !errors.Is(err, failures.ErrExternalTool) {
		t.Fatalf("expected external tool marker, got %v", err)
	}
	if !strings.Contains(err.Error(), "bad input") {
		t.Fatalf("expected stderr in error, got %q", err.Error())
	}
}

func TestRunSpk2UttEmptyCommand(t *testing.T) {
	err := manifest.RunSpk2Utt(context.Background(), nil, "a", "b")
	if !errors.Is(err, failures.ErrConfiguration) {
		t.Fatalf("expected configuration marker, got %v", err)
	}
}
