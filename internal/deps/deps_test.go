package deps

import (
	"os"
	"path/filepath"
	"testing"
)

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := filepath.Join(binDir, "present")
	script := []byte("#!/bin/sh\nexit 0\n")
	if err := os.WriteFile(present, script, 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}

	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unset", Command: "  "},
	}
	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}
	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}
	if results[1].Available || results[1].Detail == "" {
		t.Fatalf("expected missing binary to be unavailable with detail, got %#v", results[1])
	}
	if results[1].Command != "clearly-not-present-binary" {
		t.Fatalf("unexpected command recorded: %s", results[1].Command)
	}
	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("expected unconfigured command, got %#v", results[2])
	}
}

func TestCheckBinariesCompanionFiles(t *testing.T) {
	dir := t.TempDir()
	interpreter := filepath.Join(dir, "perl")
	if err := os.WriteFile(interpreter, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	scriptPath := filepath.Join(dir, "utt2spk_to_spk2utt.pl")

	results := CheckBinaries([]Requirement{{Name: "spk2utt", Command: interpreter, Files: []string{scriptPath}}})
	if results[0].Available {
		t.Fatal("expected missing script to fail the requirement")
	}

	if err := os.WriteFile(scriptPath, []byte("print;\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	results = CheckBinaries([]Requirement{{Name: "spk2utt", Command: interpreter, Files: []string{scriptPath}}})
	if !results[0].Available {
		t.Fatalf("expected requirement to pass, got %q", results[0].Detail)
	}
}
